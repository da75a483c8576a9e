package dashboard

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/influencer-os/internal/model"
	"github.com/sells-group/influencer-os/internal/store"
)

// needsAttentionLimit caps the overview's overdue list.
const needsAttentionLimit = 10

// AttentionItem is an overdue assignment shown on the overview.
type AttentionItem struct {
	AssignmentID  string      `json:"id"`
	InfluencerID  string      `json:"influencer_id"`
	Name          string      `json:"name"`
	Handle        *string     `json:"handle"`
	PipelineStage model.Stage `json:"pipeline_stage"`
	CampaignName  string      `json:"campaign_name"`
}

// ActiveCampaign is an active campaign with its roster size.
type ActiveCampaign struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Quarter         *string `json:"quarter"`
	InfluencerCount int     `json:"influencer_count"`
}

// Overview is the home page summary.
type Overview struct {
	TotalInfluencers int              `json:"total_influencers"`
	ActiveInCampaign int              `json:"active_in_campaign"`
	BudgetAllocated  float64          `json:"budget_allocated"`
	PaidOut          float64          `json:"paid_out"`
	Overdue          int              `json:"overdue"`
	NeedsAttention   []AttentionItem  `json:"needs_attention"`
	ActiveCampaigns  []ActiveCampaign `json:"active_campaigns"`
}

// Overview summarizes the session's active campaigns. The influencer total
// covers the whole roster.
func (s *Service) Overview(ctx context.Context, sess Session) (*Overview, error) {
	today := s.Today()
	return cached(ctx, s, cacheKey("overview", sess, today), func() (*Overview, error) {
		var (
			counts *store.Counts
			sc     *scope
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			counts, err = s.store.Counts(gctx)
			return eris.Wrap(err, "dashboard: count influencers")
		})
		g.Go(func() error {
			var err error
			sc, err = s.load(gctx, sess, scopeQuery{status: model.CampaignActive, payments: true})
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return buildOverview(counts.Influencers, sc, today), nil
	})
}

func buildOverview(totalInfluencers int, sc *scope, today string) *Overview {
	ov := &Overview{
		TotalInfluencers: totalInfluencers,
		ActiveInCampaign: len(sc.assignments),
		NeedsAttention:   []AttentionItem{},
		ActiveCampaigns:  make([]ActiveCampaign, 0, len(sc.campaigns)),
	}

	perCampaign := make(map[string]int, len(sc.campaigns))
	for _, a := range sc.assignments {
		perCampaign[a.CampaignID]++
		ov.PaidOut += sc.paid[a.ID]

		c := sc.campaignsBy[a.CampaignID]
		if !model.Overdue(a.PipelineStage, c.PostingDeadline, today) {
			continue
		}
		ov.Overdue++
		if len(ov.NeedsAttention) < needsAttentionLimit {
			ov.NeedsAttention = append(ov.NeedsAttention, AttentionItem{
				AssignmentID:  a.ID,
				InfluencerID:  a.InfluencerID,
				Name:          sc.influencerName(a.InfluencerID),
				Handle:        sc.influencerHandle(a.InfluencerID),
				PipelineStage: a.PipelineStage,
				CampaignName:  c.Name,
			})
		}
	}

	for _, c := range sc.campaigns {
		ov.BudgetAllocated += model.Deref(c.Budget)
		ov.ActiveCampaigns = append(ov.ActiveCampaigns, ActiveCampaign{
			ID:              c.ID,
			Name:            c.Name,
			Quarter:         c.Quarter,
			InfluencerCount: perCampaign[c.ID],
		})
	}
	return ov
}
