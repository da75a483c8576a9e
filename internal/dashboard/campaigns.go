package dashboard

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/influencer-os/internal/board"
	"github.com/sells-group/influencer-os/internal/model"
	"github.com/sells-group/influencer-os/internal/store"
)

// CampaignStats are the counters above a campaign board.
type CampaignStats struct {
	InfluencerCount int     `json:"influencer_count"`
	Budget          float64 `json:"budget"`
	ContentReceived int     `json:"content_received"`
	PaidOut         float64 `json:"paid_out"`
	Overdue         int     `json:"overdue"`
}

// CampaignBoard is one campaign's pipeline board.
type CampaignBoard struct {
	Campaign model.Campaign `json:"campaign"`
	Cards    []board.Card   `json:"-"`
	Columns  []board.Column `json:"columns"`
	Stats    CampaignStats  `json:"stats"`
}

// ListCampaigns returns the session's campaigns, newest first. An empty
// status returns all.
func (s *Service) ListCampaigns(ctx context.Context, sess Session, status model.CampaignStatus) ([]model.Campaign, error) {
	return s.store.ListCampaigns(ctx, store.CampaignFilter{BrandID: sess.BrandID, Status: status})
}

// CampaignBoard loads a campaign's cards and stats.
func (s *Service) CampaignBoard(ctx context.Context, sess Session, campaignID string) (*CampaignBoard, error) {
	c, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if err := checkBrand(sess, c); err != nil {
		return nil, err
	}

	assignments, err := s.store.ListAssignments(ctx, store.AssignmentFilter{CampaignIDs: []string{c.ID}})
	if err != nil {
		return nil, eris.Wrapf(err, "dashboard: board assignments for %s", c.ID)
	}

	influencers := make(map[string]model.Influencer)
	paid := make(map[string]float64)
	if len(assignments) > 0 {
		infIDs := make([]string, 0, len(assignments))
		ids := make([]string, 0, len(assignments))
		for _, a := range assignments {
			infIDs = append(infIDs, a.InfluencerID)
			ids = append(ids, a.ID)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			infs, err := s.store.ListInfluencers(gctx, store.InfluencerFilter{IDs: infIDs})
			for _, inf := range infs {
				influencers[inf.ID] = inf
			}
			return eris.Wrap(err, "dashboard: board influencers")
		})
		g.Go(func() error {
			payments, err := s.store.ListPayments(gctx, store.PaymentFilter{AssignmentIDs: ids})
			for _, p := range payments {
				paid[p.AssignmentID] += model.Deref(p.Amount)
			}
			return eris.Wrap(err, "dashboard: board payments")
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	cards := make([]board.Card, 0, len(assignments))
	for _, a := range assignments {
		card := board.Card{
			InfluencerID:  a.InfluencerID,
			AssignmentID:  a.ID,
			Name:          unknownName,
			Deliverable:   a.Deliverable,
			PipelineStage: a.PipelineStage,
		}
		if inf, ok := influencers[a.InfluencerID]; ok {
			card.Name = inf.Name
			card.Handle = inf.Handle
			card.FollowerCount = inf.FollowerCount
			card.Rate = inf.Rate
		}
		cards = append(cards, card)
	}

	return &CampaignBoard{
		Campaign: *c,
		Cards:    cards,
		Columns:  board.Group(cards),
		Stats:    campaignStats(c, assignments, paid, s.Today()),
	}, nil
}

func campaignStats(c *model.Campaign, assignments []model.Assignment, paid map[string]float64, today string) CampaignStats {
	st := CampaignStats{
		InfluencerCount: len(assignments),
		Budget:          model.Deref(c.Budget),
	}
	for _, a := range assignments {
		if a.PipelineStage.ContentReceivedOrLater() {
			st.ContentReceived++
		}
		if model.Overdue(a.PipelineStage, c.PostingDeadline, today) {
			st.Overdue++
		}
		st.PaidOut += paid[a.ID]
	}
	return st
}

// Board opens a pipeline board over a campaign. Successful drops write the
// stage through the store and flush cached aggregates.
func (s *Service) Board(ctx context.Context, sess Session, campaignID string) (*board.Board, *CampaignBoard, error) {
	view, err := s.CampaignBoard(ctx, sess, campaignID)
	if err != nil {
		return nil, nil, err
	}
	b := board.New(board.Config{
		Writer: board.StageWriterFunc(s.writeStage),
		OnStageChange: func(id string, stage model.Stage) {
			zap.L().Info("dashboard: stage changed",
				zap.String("campaign_id", campaignID),
				zap.String("assignment_id", id),
				zap.String("stage", string(stage)),
			)
		},
	}, view.Cards)
	return b, view, nil
}

func (s *Service) writeStage(ctx context.Context, assignmentID string, stage model.Stage) error {
	_, err := s.UpdateAssignment(ctx, assignmentID, store.AssignmentUpdate{PipelineStage: &stage})
	return err
}

// MoveCard drops one card on a stage column or another card and returns the
// refreshed board.
func (s *Service) MoveCard(ctx context.Context, sess Session, campaignID, assignmentID, overID string) (*CampaignBoard, error) {
	b, _, err := s.Board(ctx, sess, campaignID)
	if err != nil {
		return nil, err
	}
	if !b.DragStart(assignmentID) {
		return nil, eris.Wrapf(store.ErrNotFound, "assignment %s on campaign %s", assignmentID, campaignID)
	}
	if err := b.Drop(ctx, assignmentID, overID); err != nil {
		return nil, err
	}
	return s.CampaignBoard(ctx, sess, campaignID)
}

// UpdateAssignment applies a partial stage or sub-status update.
func (s *Service) UpdateAssignment(ctx context.Context, id string, u store.AssignmentUpdate) (*model.Assignment, error) {
	if u.Empty() {
		return nil, invalid("no fields to update")
	}
	if err := u.Validate(); err != nil {
		return nil, eris.Wrap(ErrInvalidInput, err.Error())
	}
	a, err := s.store.UpdateAssignment(ctx, id, u)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return a, nil
}

// NewAssignment is one influencer added to a new campaign.
type NewAssignment struct {
	InfluencerID string `json:"influencer_id" validate:"required"`
	Deliverable  string `json:"deliverable"`
}

// NewCampaign is the create-campaign form.
type NewCampaign struct {
	BrandID         string          `json:"brand_id"`
	Name            string          `json:"name" validate:"required"`
	Retailer        string          `json:"retailer"`
	Region          string          `json:"region"`
	Quarter         string          `json:"quarter"`
	Products        string          `json:"products"`
	Budget          *float64        `json:"budget" validate:"omitempty,gte=0"`
	PostingDeadline string          `json:"posting_deadline"`
	Influencers     []NewAssignment `json:"influencers" validate:"dive"`
}

// CreateCampaign creates an active campaign and its initial contacted
// assignments in one transaction. The brand comes from the form or else the
// session.
func (s *Service) CreateCampaign(ctx context.Context, sess Session, in NewCampaign) (*model.Campaign, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("campaign name is required")
	}
	brandID := in.BrandID
	if brandID == "" {
		brandID = sess.BrandID
	}
	if brandID == "" {
		return nil, invalid("brand is required")
	}
	deadline := trimmed(in.PostingDeadline)
	if deadline != nil {
		if _, err := model.ParseDate(*deadline); err != nil {
			return nil, eris.Wrap(ErrInvalidInput, err.Error())
		}
	}

	c := model.Campaign{
		BrandID:         brandID,
		Retailer:        trimmed(in.Retailer),
		Region:          trimmed(in.Region),
		Name:            name,
		Quarter:         trimmed(in.Quarter),
		Products:        trimmed(in.Products),
		Budget:          in.Budget,
		PostingDeadline: deadline,
		Status:          model.CampaignActive,
	}
	assignments := make([]model.Assignment, 0, len(in.Influencers))
	for _, na := range in.Influencers {
		a := model.NewAssignment("", na.InfluencerID)
		a.Deliverable = trimmed(na.Deliverable)
		assignments = append(assignments, a)
	}

	created, err := s.store.CreateCampaign(ctx, c, assignments)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	zap.L().Info("dashboard: campaign created",
		zap.String("campaign_id", created.ID),
		zap.String("brand_id", brandID),
		zap.Int("influencers", len(assignments)),
	)
	return created, nil
}

// AddToCampaign assigns an influencer to one of the session's active campaigns.
func (s *Service) AddToCampaign(ctx context.Context, sess Session, influencerID, campaignID, deliverable string) (*model.Assignment, error) {
	c, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if err := checkBrand(sess, c); err != nil {
		return nil, err
	}
	if c.Status != model.CampaignActive {
		return nil, invalid("campaign %s is not active", c.Name)
	}
	if _, err := s.store.GetInfluencer(ctx, influencerID); err != nil {
		return nil, err
	}

	a := model.NewAssignment(c.ID, influencerID)
	a.Deliverable = trimmed(deliverable)
	created, err := s.store.CreateAssignment(ctx, a)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

// trimmed returns nil for blank input.
func trimmed(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
