package importer

import (
	"slices"
	"strings"

	"github.com/sells-group/influencer-os/internal/model"
)

// CampaignPlan is one campaign to look up or create.
type CampaignPlan struct {
	Name            string
	Retailer        string
	Quarter         string
	Products        []string
	PostingDeadline *string
	Status          model.CampaignStatus
}

// Key identifies the campaign within an import run.
func (c CampaignPlan) Key() string {
	return CampaignKey(c.Name, c.Quarter)
}

// ProductsText joins the accumulated products, or nil when there are none.
func (c CampaignPlan) ProductsText() *string {
	if len(c.Products) == 0 {
		return nil
	}
	s := strings.Join(c.Products, ", ")
	return &s
}

// CampaignKey joins display name and quarter.
func CampaignKey(name, quarter string) string {
	return name + "::" + quarter
}

// Plan is everything an import run will apply, in apply order.
type Plan struct {
	BrandID     string
	Influencers []InfluencerRecord
	Campaigns   []CampaignPlan
	Assignments []AssignmentRecord
}

// BuildPlan merges influencers and de-duplicates campaigns by display name
// and quarter. The latest posting date becomes the deadline and products
// accumulate. Quarters listed in completed produce completed campaigns.
func BuildPlan(brandID string, v Validated, completed []string) *Plan {
	plan := &Plan{
		BrandID:     brandID,
		Influencers: MergeInfluencers(v.Influencers),
		Assignments: v.Assignments,
	}

	index := make(map[string]int)
	for _, a := range v.Assignments {
		key := CampaignKey(a.CampaignName, a.Quarter)
		i, ok := index[key]
		if !ok {
			status := model.CampaignActive
			if slices.Contains(completed, a.Quarter) {
				status = model.CampaignCompleted
			}
			c := CampaignPlan{
				Name:            a.CampaignName,
				Retailer:        a.Retailer,
				Quarter:         a.Quarter,
				PostingDeadline: a.PostingDate,
				Status:          status,
			}
			if a.Product != nil {
				c.Products = []string{*a.Product}
			}
			index[key] = len(plan.Campaigns)
			plan.Campaigns = append(plan.Campaigns, c)
			continue
		}

		c := &plan.Campaigns[i]
		if a.PostingDate != nil && (c.PostingDeadline == nil || *a.PostingDate > *c.PostingDeadline) {
			c.PostingDeadline = a.PostingDate
		}
		if a.Product != nil && !slices.Contains(c.Products, *a.Product) {
			c.Products = append(c.Products, *a.Product)
		}
	}
	return plan
}
