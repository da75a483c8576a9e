package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/influencer-os/internal/model"
)

func TestBuildPlan_Fixture(t *testing.T) {
	im := New(nil, fixtureOptions("brand-1"))
	v := Validate(ParseWorkbook(fixtureWorkbook(), im.Layouts()))
	plan := BuildPlan("brand-1", v, []string{"Q4 2025"})

	names := make([]string, 0, len(plan.Influencers))
	for _, inf := range plan.Influencers {
		names = append(names, inf.Name)
	}
	assert.Equal(t, []string{"Jane Doe", "Bob Smith", "Carol White", "Dana Lee"}, names)

	jane := plan.Influencers[0]
	assert.Equal(t, 600.0, *jane.Rate, "higher tracker rate wins over roster")
	assert.Equal(t, int64(17000), *jane.FollowerCount)
	assert.Equal(t, "Austin, TX", *jane.Location, "roster fills empty location")

	require.Len(t, plan.Campaigns, 3)
	wf := plan.Campaigns[0]
	assert.Equal(t, "Whole Foods - Holiday", wf.Name)
	assert.Equal(t, "Q4 2025", wf.Quarter)
	assert.Equal(t, model.CampaignCompleted, wf.Status)
	assert.Equal(t, "2025-10-30", *wf.PostingDeadline)
	assert.Equal(t, "Bars, Cookies", *wf.ProductsText())

	walmart := plan.Campaigns[2]
	assert.Equal(t, "Walmart - Protein Bars", walmart.Name)
	assert.Equal(t, model.CampaignActive, walmart.Status)

	assert.Len(t, plan.Assignments, 4)
}

func TestBuildPlan_ProductUnionAndDeadline(t *testing.T) {
	v := Validated{Assignments: []AssignmentRecord{
		{CampaignName: "Costco", Quarter: "Q1 2026", PostingDate: model.Ptr("2026-02-01")},
		{CampaignName: "Costco", Quarter: "Q1 2026", Product: model.Ptr("Bars"), PostingDate: nil},
		{CampaignName: "Costco", Quarter: "Q1 2026", Product: model.Ptr("Bars"), PostingDate: model.Ptr("2026-01-15")},
		{CampaignName: "Costco", Quarter: "Q1 2026", Product: model.Ptr("Cookies"), PostingDate: model.Ptr("2026-03-01")},
		{CampaignName: "Costco", Quarter: "Q4 2025", Product: model.Ptr("Bars")},
	}}

	plan := BuildPlan("b", v, nil)
	require.Len(t, plan.Campaigns, 2)

	c := plan.Campaigns[0]
	assert.Equal(t, []string{"Bars", "Cookies"}, c.Products)
	assert.Equal(t, "2026-03-01", *c.PostingDeadline)
	assert.Equal(t, model.CampaignActive, c.Status)
	assert.Equal(t, "Costco::Q1 2026", c.Key())

	assert.Nil(t, CampaignPlan{}.ProductsText())
}
