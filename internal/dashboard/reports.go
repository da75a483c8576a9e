package dashboard

import (
	"context"
	"math"
	"sort"

	"github.com/sells-group/influencer-os/internal/model"
)

const topInfluencerLimit = 10

// Summary is the headline numbers of the reports page.
type Summary struct {
	TotalCampaigns   int     `json:"total_campaigns"`
	TotalInfluencers int     `json:"total_influencers"`
	TotalBudget      float64 `json:"total_budget"`
	TotalPaid        float64 `json:"total_paid"`
}

// CampaignReport is one row of campaign performance.
type CampaignReport struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Retailer        *string `json:"retailer"`
	Quarter         *string `json:"quarter"`
	Status          string  `json:"status"`
	InfluencerCount int     `json:"influencer_count"`
	Budget          float64 `json:"budget"`
	PaidOut         float64 `json:"paid_out"`
	CompletionRate  int     `json:"completion_rate"`
}

// StageCount is one bar of the pipeline distribution.
type StageCount struct {
	Stage model.Stage `json:"stage"`
	Label string      `json:"label"`
	Count int         `json:"count"`
}

// TopInfluencer ranks influencers by how many campaigns they joined.
type TopInfluencer struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Handle        *string `json:"handle"`
	CampaignCount int     `json:"campaign_count"`
	TotalEarned   float64 `json:"total_earned"`
	AvgStageIndex int     `json:"avg_stage_index"`
	AvgStageLabel string  `json:"avg_stage_label"`
	Assignments   int     `json:"assignments"`
}

// Reports is the full reports page.
type Reports struct {
	Summary        Summary          `json:"summary"`
	Campaigns      []CampaignReport `json:"campaigns"`
	Pipeline       []StageCount     `json:"pipeline"`
	TopInfluencers []TopInfluencer  `json:"top_influencers"`
}

// Reports aggregates every campaign in the session.
func (s *Service) Reports(ctx context.Context, sess Session) (*Reports, error) {
	return cached(ctx, s, cacheKey("reports", sess), func() (*Reports, error) {
		sc, err := s.load(ctx, sess, scopeQuery{payments: true})
		if err != nil {
			return nil, err
		}
		return buildReports(sc), nil
	})
}

func buildReports(sc *scope) *Reports {
	r := &Reports{
		Campaigns:      make([]CampaignReport, 0, len(sc.campaigns)),
		Pipeline:       make([]StageCount, len(model.Stages)),
		TopInfluencers: []TopInfluencer{},
	}

	unique := make(map[string]bool)
	for _, a := range sc.assignments {
		unique[a.InfluencerID] = true
		r.Summary.TotalPaid += sc.paid[a.ID]
	}
	r.Summary.TotalCampaigns = len(sc.campaigns)
	r.Summary.TotalInfluencers = len(unique)

	byCampaign := make(map[string][]model.Assignment, len(sc.campaigns))
	for _, a := range sc.assignments {
		byCampaign[a.CampaignID] = append(byCampaign[a.CampaignID], a)
	}

	for i, st := range model.Stages {
		r.Pipeline[i] = StageCount{Stage: st, Label: st.Label()}
	}

	for _, c := range sc.campaigns {
		r.Summary.TotalBudget += model.Deref(c.Budget)
		row := CampaignReport{
			ID:       c.ID,
			Name:     c.Name,
			Retailer: c.Retailer,
			Quarter:  c.Quarter,
			Status:   string(c.Status),
			Budget:   model.Deref(c.Budget),
		}
		posted := 0
		for _, a := range byCampaign[c.ID] {
			row.InfluencerCount++
			row.PaidOut += sc.paid[a.ID]
			if a.PipelineStage == model.StagePosted {
				posted++
			}
			if c.Status == model.CampaignActive {
				if i := a.PipelineStage.Index(); i >= 0 {
					r.Pipeline[i].Count++
				}
			}
		}
		if row.InfluencerCount > 0 {
			row.CompletionRate = int(math.Round(float64(posted) / float64(row.InfluencerCount) * 100))
		}
		r.Campaigns = append(r.Campaigns, row)
	}
	sort.SliceStable(r.Campaigns, func(i, j int) bool {
		qi, qj := model.Deref(r.Campaigns[i].Quarter), model.Deref(r.Campaigns[j].Quarter)
		if qi != qj {
			return qi > qj
		}
		return r.Campaigns[i].Name < r.Campaigns[j].Name
	})

	r.TopInfluencers = topInfluencers(sc)
	return r
}

func topInfluencers(sc *scope) []TopInfluencer {
	type tally struct {
		campaigns map[string]bool
		earned    float64
		stageSum  int
		count     int
	}
	var order []string
	tallies := make(map[string]*tally)
	for _, a := range sc.assignments {
		t, ok := tallies[a.InfluencerID]
		if !ok {
			t = &tally{campaigns: make(map[string]bool)}
			tallies[a.InfluencerID] = t
			order = append(order, a.InfluencerID)
		}
		t.campaigns[a.CampaignID] = true
		t.earned += sc.paid[a.ID]
		t.stageSum += max(0, a.PipelineStage.Index())
		t.count++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return len(tallies[order[i]].campaigns) > len(tallies[order[j]].campaigns)
	})
	if len(order) > topInfluencerLimit {
		order = order[:topInfluencerLimit]
	}

	out := make([]TopInfluencer, 0, len(order))
	for _, id := range order {
		t := tallies[id]
		avg := int(math.Floor(float64(t.stageSum)/float64(t.count) + 0.5))
		out = append(out, TopInfluencer{
			ID:            id,
			Name:          sc.influencerName(id),
			Handle:        sc.influencerHandle(id),
			CampaignCount: len(t.campaigns),
			TotalEarned:   t.earned,
			AvgStageIndex: avg,
			AvgStageLabel: model.Stages[avg].Label(),
			Assignments:   t.count,
		})
	}
	return out
}
