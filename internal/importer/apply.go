package importer

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/influencer-os/internal/model"
	"github.com/sells-group/influencer-os/internal/store"
)

// Counter tallies one entity's outcome during apply.
type Counter struct {
	Inserted  int `json:"inserted"`
	Skipped   int `json:"skipped"`
	Unmatched int `json:"unmatched"`
}

// Total is every record considered.
func (c Counter) Total() int {
	return c.Inserted + c.Skipped + c.Unmatched
}

// ApplyResult is the outcome of a committed import.
type ApplyResult struct {
	Influencers Counter `json:"influencers"`
	Campaigns   Counter `json:"campaigns"`
	Assignments Counter `json:"assignments"`
}

// Apply writes the plan in one transaction: influencers, then campaigns, then
// assignments. Existing rows are reused, duplicate assignments are skipped and
// unresolved references are counted. Any store error rolls everything back.
func Apply(ctx context.Context, st store.Store, plan *Plan) (*ApplyResult, error) {
	var res ApplyResult
	err := st.WithImportTx(ctx, func(tx store.ImportTx) error {
		res = ApplyResult{}

		influencerIDs, err := applyInfluencers(ctx, tx, plan.Influencers, &res.Influencers)
		if err != nil {
			return err
		}
		campaignIDs, err := applyCampaigns(ctx, tx, plan, &res.Campaigns)
		if err != nil {
			return err
		}
		return applyAssignments(ctx, tx, plan.Assignments, influencerIDs, campaignIDs, &res.Assignments)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func applyInfluencers(ctx context.Context, tx store.ImportTx, records []InfluencerRecord, c *Counter) (map[string]string, error) {
	ids := make(map[string]string, len(records))
	for _, rec := range records {
		key := NameKey(rec.Name)
		id, found, err := tx.FindInfluencerID(ctx, rec.Name)
		if err != nil {
			return nil, err
		}
		if found {
			ids[key] = id
			c.Skipped++
			continue
		}

		inf := &model.Influencer{
			Name:          rec.Name,
			Handle:        rec.Handle,
			Email:         rec.Email,
			Platform:      rec.Platform,
			ContentType:   rec.ContentType,
			Location:      rec.Location,
			Rate:          rec.Rate,
			FollowerCount: rec.FollowerCount,
		}
		if err := tx.InsertInfluencer(ctx, inf); err != nil {
			return nil, err
		}
		ids[key] = inf.ID
		c.Inserted++
		zap.L().Debug("import: inserted influencer",
			zap.String("name", rec.Name),
			zap.String("sheet", rec.Sheet),
			zap.Int("row", rec.Row),
		)
	}
	return ids, nil
}

func applyCampaigns(ctx context.Context, tx store.ImportTx, plan *Plan, c *Counter) (map[string]string, error) {
	ids := make(map[string]string, len(plan.Campaigns))
	for _, cp := range plan.Campaigns {
		id, found, err := tx.FindCampaignID(ctx, cp.Name, cp.Quarter, plan.BrandID)
		if err != nil {
			return nil, err
		}
		if found {
			ids[cp.Key()] = id
			c.Skipped++
			continue
		}

		campaign := &model.Campaign{
			BrandID:         plan.BrandID,
			Retailer:        optional(cp.Retailer),
			Name:            cp.Name,
			Quarter:         optional(cp.Quarter),
			Products:        cp.ProductsText(),
			PostingDeadline: cp.PostingDeadline,
			Status:          cp.Status,
		}
		if err := tx.InsertCampaign(ctx, campaign); err != nil {
			return nil, err
		}
		ids[cp.Key()] = campaign.ID
		c.Inserted++
		zap.L().Debug("import: inserted campaign",
			zap.String("name", cp.Name),
			zap.String("quarter", cp.Quarter),
		)
	}
	return ids, nil
}

func applyAssignments(ctx context.Context, tx store.ImportTx, records []AssignmentRecord, influencerIDs, campaignIDs map[string]string, c *Counter) error {
	for _, rec := range records {
		influencerID, ok := influencerIDs[NameKey(rec.InfluencerName)]
		if !ok {
			zap.L().Warn("import: no influencer match",
				zap.String("name", rec.InfluencerName),
				zap.String("sheet", rec.Sheet),
				zap.Int("row", rec.Row),
			)
			c.Unmatched++
			continue
		}
		campaignID, ok := campaignIDs[CampaignKey(rec.CampaignName, rec.Quarter)]
		if !ok {
			zap.L().Warn("import: no campaign match",
				zap.String("campaign", rec.CampaignName),
				zap.String("quarter", rec.Quarter),
				zap.String("sheet", rec.Sheet),
				zap.Int("row", rec.Row),
			)
			c.Unmatched++
			continue
		}

		exists, err := tx.AssignmentExists(ctx, campaignID, influencerID)
		if err != nil {
			return err
		}
		if exists {
			c.Skipped++
			continue
		}

		a := model.NewAssignment(campaignID, influencerID)
		a.PipelineStage = rec.Stage
		a.Deliverable = rec.Deliverable
		a.W9Status = rec.W9
		a.InvoiceStatus = rec.Invoice
		a.PaymentStatus = rec.Payment
		if err := tx.InsertAssignment(ctx, &a); err != nil {
			return err
		}
		c.Inserted++
	}
	return nil
}
