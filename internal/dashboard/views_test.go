package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/influencer-os/internal/model"
	"github.com/sells-group/influencer-os/internal/store"
)

func TestReports(t *testing.T) {
	f := newFixture(t)
	r, err := f.svc.Reports(context.Background(), f.session())
	require.NoError(t, err)

	assert.Equal(t, Summary{TotalCampaigns: 3, TotalInfluencers: 4, TotalBudget: 10000, TotalPaid: 1350}, r.Summary)

	require.Len(t, r.Campaigns, 3)
	assert.Equal(t, "Costco - Cookies", r.Campaigns[0].Name, "quarter descending")
	assert.Equal(t, 50, r.Campaigns[0].CompletionRate)
	assert.Equal(t, 800.0, r.Campaigns[0].PaidOut)
	assert.Equal(t, "Sprouts - Holiday", r.Campaigns[1].Name)
	assert.Equal(t, 0, r.Campaigns[1].CompletionRate)
	assert.Equal(t, "Walmart - Bars", r.Campaigns[2].Name)
	assert.Equal(t, 25, r.Campaigns[2].CompletionRate)
	assert.Equal(t, 4, r.Campaigns[2].InfluencerCount)
	assert.Equal(t, 550.0, r.Campaigns[2].PaidOut)

	require.Len(t, r.Pipeline, 7)
	got := map[model.Stage]int{}
	for _, p := range r.Pipeline {
		got[p.Stage] = p.Count
	}
	assert.Equal(t, map[model.Stage]int{
		model.StageContacted:       1,
		model.StageBriefSent:       1,
		model.StageContentReceived: 1,
		model.StageW9Done:          1,
		model.StageInvoiceReceived: 0,
		model.StagePaid:            0,
		model.StagePosted:          1,
	}, got, "completed campaigns are excluded from the distribution")
	assert.Equal(t, "Brief Sent", r.Pipeline[1].Label)

	require.Len(t, r.TopInfluencers, 4)
	jane, bob := r.TopInfluencers[0], r.TopInfluencers[1]
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, 3, jane.CampaignCount)
	assert.Equal(t, 1, jane.AvgStageIndex)
	assert.Equal(t, "Brief Sent", jane.AvgStageLabel)
	assert.Equal(t, "Bob Smith", bob.Name)
	assert.Equal(t, 2, bob.CampaignCount)
	assert.Equal(t, 4, bob.AvgStageIndex, "3.5 rounds up")
	assert.Equal(t, 800.0, bob.TotalEarned)
}

func TestTopInfluencersLimit(t *testing.T) {
	sc := &scope{influencers: map[string]model.Influencer{}, paid: map[string]float64{}}
	for i := 0; i < 12; i++ {
		sc.assignments = append(sc.assignments, model.Assignment{
			ID: fmt.Sprintf("a%d", i), CampaignID: "c", InfluencerID: fmt.Sprintf("i%d", i), PipelineStage: model.StagePosted,
		})
	}
	top := topInfluencers(sc)
	assert.Len(t, top, 10)
	assert.Equal(t, unknownName, top[0].Name)
	assert.Equal(t, "i0", top[0].ID)
	assert.Equal(t, 6, top[0].AvgStageIndex)
}

func TestRolodex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.svc.Rolodex(ctx, f.session(), RolodexQuery{})
	require.NoError(t, err)
	require.Len(t, page.Rows, 4)
	assert.Equal(t, []string{"Bob Smith", "Carol White", "Dana Lee", "Jane Doe"}, rowNames(page.Rows))
	assert.Equal(t, 1, page.ShowingFrom)
	assert.Equal(t, 4, page.ShowingTo)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 3, page.Rows[3].CampaignCount)

	page, err = f.svc.Rolodex(ctx, f.session(), RolodexQuery{Search: "JANE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Doe"}, rowNames(page.Rows))

	page, err = f.svc.Rolodex(ctx, f.session(), RolodexQuery{Search: "tt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob Smith"}, rowNames(page.Rows), "handle substring")

	page, err = f.svc.Rolodex(ctx, f.session(), RolodexQuery{Platform: "TikTok"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob Smith"}, rowNames(page.Rows))

	page, err = f.svc.Rolodex(ctx, f.session(), RolodexQuery{ContentType: "recipe"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Doe"}, rowNames(page.Rows))

	page, err = f.svc.Rolodex(ctx, f.session(), RolodexQuery{Sort: SortRate, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob Smith", "Jane Doe", "Dana Lee", "Carol White"}, rowNames(page.Rows))

	page, err = f.svc.Rolodex(ctx, f.session(), RolodexQuery{Sort: SortCampaignCount, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", page.Rows[0].Name)

	page, err = f.svc.Rolodex(ctx, f.session(), RolodexQuery{Search: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
	assert.Zero(t, page.ShowingFrom)
	assert.Zero(t, page.ShowingTo)
	assert.Equal(t, 1, page.TotalPages)
}

func TestRolodex_CampaignCountsPerBrand(t *testing.T) {
	f := newFixture(t)
	page, err := f.svc.Rolodex(context.Background(), Session{BrandID: f.other}, RolodexQuery{Search: "dana"})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, 1, page.Rows[0].CampaignCount)

	page, err = f.svc.Rolodex(context.Background(), Session{}, RolodexQuery{Search: "dana"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Rows[0].CampaignCount)
}

func TestPageRolodex_Paging(t *testing.T) {
	rows := make([]RolodexRow, 0, 60)
	for i := 0; i < 60; i++ {
		rows = append(rows, RolodexRow{Influencer: model.Influencer{Name: fmt.Sprintf("Influencer %02d", i)}})
	}

	p := pageRolodex(rows, RolodexQuery{Page: 3})
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 51, p.ShowingFrom)
	assert.Equal(t, 60, p.ShowingTo)
	assert.Len(t, p.Rows, 10)

	p = pageRolodex(rows, RolodexQuery{Page: 99})
	assert.Equal(t, 3, p.Page, "clamped to last page")

	p = pageRolodex(rows, RolodexQuery{Page: 0})
	assert.Equal(t, 1, p.Page)
	assert.Len(t, p.Rows, PageSize)
	assert.Equal(t, "Influencer 00", p.Rows[0].Name)
}

func TestParseSortField(t *testing.T) {
	f, err := ParseSortField("")
	require.NoError(t, err)
	assert.Equal(t, SortName, f)

	f, err = ParseSortField("performance_rating")
	require.NoError(t, err)
	assert.Equal(t, SortPerformanceRating, f)

	_, err = ParseSortField("followers")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func rowNames(rows []RolodexRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Profile(context.Background(), f.session(), f.jane)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", p.Influencer.Name)
	require.Len(t, p.Assignments, 3)
	assert.Equal(t, "Sprouts - Holiday", p.Assignments[0].CampaignName, "newest first")
	require.NotNil(t, p.Current)
	assert.Equal(t, "Sprouts - Holiday", p.Current.CampaignName)
	assert.Equal(t, 3, p.Stats.Campaigns)
	assert.Equal(t, 4.5, p.Stats.AvgRating)
	assert.Zero(t, p.Stats.TotalEarned)
	assert.Empty(t, p.Payments)

	p, err = f.svc.Profile(context.Background(), f.session(), f.carol)
	require.NoError(t, err)
	require.Len(t, p.Assignments, 1)
	assert.True(t, p.Assignments[0].ReadyToPay)
	assert.Equal(t, 300.0, p.Stats.TotalEarned)
	assert.Len(t, p.Payments, 1)
}

func TestProfile_ScopedToBrand(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Profile(context.Background(), Session{BrandID: f.other}, f.dana)
	require.NoError(t, err)
	require.Len(t, p.Assignments, 1)
	assert.Equal(t, "Target", p.Assignments[0].CampaignName)
	assert.Equal(t, 99.0, p.Stats.TotalEarned)

	p, err = f.svc.Profile(context.Background(), Session{}, f.dana)
	require.NoError(t, err)
	assert.Len(t, p.Assignments, 2)
	assert.Equal(t, "Target", p.Current.CampaignName, "posted assignments are never current")
}

func TestProfile_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Profile(context.Background(), f.session(), "missing")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestUpdateProfileAndNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inf, err := f.svc.SaveNotes(ctx, f.bob, "prefers DMs")
	require.NoError(t, err)
	assert.Equal(t, "prefers DMs", *inf.Notes)

	inf, err = f.svc.UpdateProfile(ctx, f.bob, store.InfluencerUpdate{
		Name:              model.Ptr("  Bobby Smith "),
		PerformanceRating: model.Ptr(3.5),
	})
	require.NoError(t, err)
	assert.Equal(t, "Bobby Smith", inf.Name)
	assert.Equal(t, 3.5, *inf.PerformanceRating)
	assert.Equal(t, "prefers DMs", *inf.Notes)

	_, err = f.svc.UpdateProfile(ctx, f.bob, store.InfluencerUpdate{Name: model.Ptr(" ")})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = f.svc.UpdateProfile(ctx, f.bob, store.InfluencerUpdate{Platform: model.Ptr(model.Platform("myspace"))})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = f.svc.UpdateProfile(ctx, f.bob, store.InfluencerUpdate{PerformanceRating: model.Ptr(7.0)})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestCreateInfluencer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inf, err := f.svc.CreateInfluencer(ctx, NewInfluencer{Name: " Erin ", Handle: "@erin", Platform: "YouTube", Rate: model.Ptr(90.0)})
	require.NoError(t, err)
	assert.Equal(t, "Erin", inf.Name)
	assert.Equal(t, "erin", *inf.Handle)
	assert.Equal(t, model.PlatformYouTube, *inf.Platform)
	assert.Nil(t, inf.Email)

	_, err = f.svc.CreateInfluencer(ctx, NewInfluencer{Name: ""})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = f.svc.CreateInfluencer(ctx, NewInfluencer{Name: "X", Platform: "myspace"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
