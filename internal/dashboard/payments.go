package dashboard

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/influencer-os/internal/model"
	"github.com/sells-group/influencer-os/internal/store"
)

// QueueItem is an assignment awaiting payment.
type QueueItem struct {
	AssignmentID  string              `json:"id"`
	InfluencerID  string              `json:"influencer_id"`
	CampaignID    string              `json:"campaign_id"`
	Name          string              `json:"name"`
	Handle        *string             `json:"handle"`
	CampaignName  string              `json:"campaign_name"`
	W9Status      model.W9Status      `json:"w9_status"`
	InvoiceStatus model.InvoiceStatus `json:"invoice_status"`
	Rate          *float64            `json:"rate"`
	PipelineStage model.Stage         `json:"pipeline_stage"`
	ReadyToPay    bool                `json:"ready_to_pay"`
}

var queueStages = []model.Stage{model.StageContentReceived, model.StageW9Done, model.StageInvoiceReceived}

// PaymentQueue lists assignments between content receipt and payment.
// Ready-to-pay items come first; order is otherwise preserved.
func (s *Service) PaymentQueue(ctx context.Context, sess Session) ([]QueueItem, error) {
	return cached(ctx, s, cacheKey("queue", sess), func() ([]QueueItem, error) {
		sc, err := s.load(ctx, sess, scopeQuery{stages: queueStages})
		if err != nil {
			return nil, err
		}
		return buildQueue(sc), nil
	})
}

func buildQueue(sc *scope) []QueueItem {
	items := make([]QueueItem, 0, len(sc.assignments))
	for _, a := range sc.assignments {
		item := QueueItem{
			AssignmentID:  a.ID,
			InfluencerID:  a.InfluencerID,
			CampaignID:    a.CampaignID,
			Name:          sc.influencerName(a.InfluencerID),
			Handle:        sc.influencerHandle(a.InfluencerID),
			CampaignName:  sc.campaignName(a.CampaignID),
			W9Status:      a.W9Status,
			InvoiceStatus: a.InvoiceStatus,
			PipelineStage: a.PipelineStage,
			ReadyToPay:    a.ReadyToPay(),
		}
		if inf, ok := sc.influencers[a.InfluencerID]; ok {
			item.Rate = inf.Rate
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ReadyToPay && !items[j].ReadyToPay
	})
	return items
}

// RequestInvoice marks the assignment's invoice as requested.
func (s *Service) RequestInvoice(ctx context.Context, assignmentID string) (*model.Assignment, error) {
	sent := model.InvoiceSent
	return s.UpdateAssignment(ctx, assignmentID, store.AssignmentUpdate{InvoiceStatus: &sent})
}

// NewPayment is the record-payment form.
type NewPayment struct {
	Amount   *float64 `json:"amount" validate:"omitempty,gte=0"`
	DateSent string   `json:"date_sent"`
	Method   string   `json:"method"`
	Notes    string   `json:"notes"`
}

// RecordPayment appends a payment to an assignment. A blank date means today.
func (s *Service) RecordPayment(ctx context.Context, assignmentID string, in NewPayment) (*model.Payment, error) {
	if _, err := s.store.GetAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	date := trimmed(in.DateSent)
	if date == nil {
		today := s.Today()
		date = &today
	} else if _, err := model.ParseDate(*date); err != nil {
		return nil, eris.Wrap(ErrInvalidInput, err.Error())
	}
	if in.Amount != nil && *in.Amount < 0 {
		return nil, invalid("amount must not be negative")
	}

	p, err := s.store.CreatePayment(ctx, model.Payment{
		AssignmentID: assignmentID,
		Amount:       in.Amount,
		DateSent:     date,
		Method:       trimmed(in.Method),
		Notes:        trimmed(in.Notes),
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	zap.L().Info("dashboard: payment recorded",
		zap.String("assignment_id", assignmentID),
		zap.Float64("amount", model.Deref(in.Amount)),
	)
	return p, nil
}
