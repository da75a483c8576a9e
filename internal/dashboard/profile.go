package dashboard

import (
	"context"
	"slices"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/influencer-os/internal/model"
	"github.com/sells-group/influencer-os/internal/store"
)

// ProfileAssignment is one campaign in an influencer's history.
type ProfileAssignment struct {
	model.Assignment
	CampaignName string `json:"campaign_name"`
	ReadyToPay   bool   `json:"ready_to_pay"`
}

// ProfileStats are the counters in the profile header.
type ProfileStats struct {
	Campaigns   int     `json:"campaigns"`
	AvgRating   float64 `json:"avg_rating"`
	TotalEarned float64 `json:"total_earned"`
}

// Profile is an influencer with campaign history and payments.
type Profile struct {
	Influencer  model.Influencer    `json:"influencer"`
	Current     *ProfileAssignment  `json:"current"`
	Assignments []ProfileAssignment `json:"assignments"`
	Payments    []model.Payment     `json:"payments"`
	Stats       ProfileStats        `json:"stats"`
}

// Profile loads one influencer. History is newest first and limited to the
// session's campaigns. Current is the newest assignment not yet posted.
func (s *Service) Profile(ctx context.Context, sess Session, influencerID string) (*Profile, error) {
	inf, err := s.store.GetInfluencer(ctx, influencerID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.store.ListAssignments(ctx, store.AssignmentFilter{InfluencerID: influencerID})
	if err != nil {
		return nil, eris.Wrapf(err, "dashboard: profile assignments for %s", influencerID)
	}

	p := &Profile{
		Influencer:  *inf,
		Assignments: []ProfileAssignment{},
		Payments:    []model.Payment{},
		Stats:       ProfileStats{AvgRating: model.Deref(inf.PerformanceRating)},
	}
	if len(assignments) == 0 {
		return p, nil
	}

	campaignIDs := make([]string, 0, len(assignments))
	for _, a := range assignments {
		campaignIDs = append(campaignIDs, a.CampaignID)
	}
	campaigns, err := s.store.ListCampaigns(ctx, store.CampaignFilter{BrandID: sess.BrandID, IDs: campaignIDs})
	if err != nil {
		return nil, eris.Wrapf(err, "dashboard: profile campaigns for %s", influencerID)
	}
	names := make(map[string]string, len(campaigns))
	for _, c := range campaigns {
		names[c.ID] = c.Name
	}

	slices.Reverse(assignments)
	ids := make([]string, 0, len(assignments))
	unique := make(map[string]bool)
	for _, a := range assignments {
		name, ok := names[a.CampaignID]
		if !ok {
			continue
		}
		p.Assignments = append(p.Assignments, ProfileAssignment{Assignment: a, CampaignName: name, ReadyToPay: a.ReadyToPay()})
		ids = append(ids, a.ID)
		unique[a.CampaignID] = true
	}
	p.Stats.Campaigns = len(unique)

	for i := range p.Assignments {
		if p.Assignments[i].PipelineStage != model.StagePosted {
			p.Current = &p.Assignments[i]
			break
		}
	}
	if p.Current == nil && len(p.Assignments) > 0 {
		p.Current = &p.Assignments[0]
	}

	if len(ids) > 0 {
		payments, err := s.store.ListPayments(ctx, store.PaymentFilter{AssignmentIDs: ids})
		if err != nil {
			return nil, eris.Wrapf(err, "dashboard: profile payments for %s", influencerID)
		}
		p.Payments = payments
		p.Stats.TotalEarned = model.SumPayments(payments)
	}
	return p, nil
}

// NewInfluencer is the add-influencer form.
type NewInfluencer struct {
	Name          string   `json:"name" validate:"required"`
	Handle        string   `json:"handle"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Platform      string   `json:"platform" validate:"omitempty,oneof=instagram tiktok youtube twitter"`
	ContentType   string   `json:"content_type"`
	Location      string   `json:"location"`
	Rate          *float64 `json:"rate" validate:"omitempty,gte=0"`
	FollowerCount *int64   `json:"follower_count" validate:"omitempty,gte=0"`
}

// CreateInfluencer adds a roster entry.
func (s *Service) CreateInfluencer(ctx context.Context, in NewInfluencer) (*model.Influencer, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	inf := model.Influencer{
		Name:          name,
		Handle:        trimmed(strings.TrimPrefix(strings.TrimSpace(in.Handle), "@")),
		Email:         trimmed(in.Email),
		ContentType:   trimmed(in.ContentType),
		Location:      trimmed(in.Location),
		Rate:          in.Rate,
		FollowerCount: in.FollowerCount,
	}
	if p := strings.TrimSpace(in.Platform); p != "" {
		platform, err := model.ParsePlatform(strings.ToLower(p))
		if err != nil {
			return nil, eris.Wrap(ErrInvalidInput, err.Error())
		}
		inf.Platform = &platform
	}

	created, err := s.store.CreateInfluencer(ctx, inf)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

// UpdateProfile applies profile edits and notes.
func (s *Service) UpdateProfile(ctx context.Context, id string, u store.InfluencerUpdate) (*model.Influencer, error) {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, invalid("name must not be blank")
		}
		u.Name = &name
	}
	if u.Platform != nil {
		if _, err := model.ParsePlatform(string(*u.Platform)); err != nil {
			return nil, eris.Wrap(ErrInvalidInput, err.Error())
		}
	}
	if u.PerformanceRating != nil && (*u.PerformanceRating < 0 || *u.PerformanceRating > 5) {
		return nil, invalid("performance rating must be between 0 and 5")
	}

	inf, err := s.store.UpdateInfluencer(ctx, id, u)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return inf, nil
}

// SaveNotes replaces an influencer's notes.
func (s *Service) SaveNotes(ctx context.Context, id, notes string) (*model.Influencer, error) {
	return s.UpdateProfile(ctx, id, store.InfluencerUpdate{Notes: &notes})
}
