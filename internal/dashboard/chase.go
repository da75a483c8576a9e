package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/influencer-os/internal/model"
)

// ChaseItem is an assignment that has missed its posting deadline.
type ChaseItem struct {
	AssignmentID    string      `json:"id"`
	InfluencerID    string      `json:"influencer_id"`
	Name            string      `json:"name"`
	Handle          *string     `json:"handle"`
	Email           *string     `json:"email"`
	PipelineStage   model.Stage `json:"pipeline_stage"`
	Deliverable     *string     `json:"deliverable"`
	CampaignName    string      `json:"campaign_name"`
	PostingDeadline string      `json:"posting_deadline"`
	DaysOverdue     int         `json:"days_overdue"`
	EmailPreview    string      `json:"email_preview"`
}

// ChaseList returns contacted and brief_sent assignments on campaigns whose
// deadline has passed, most overdue first. Campaign status is not filtered.
func (s *Service) ChaseList(ctx context.Context, sess Session) ([]ChaseItem, error) {
	today := s.Today()
	return cached(ctx, s, cacheKey("chase", sess, today), func() ([]ChaseItem, error) {
		sc, err := s.load(ctx, sess, scopeQuery{
			stages: []model.Stage{model.StageContacted, model.StageBriefSent},
			keep: func(c model.Campaign) bool {
				return c.PostingDeadline != nil && *c.PostingDeadline != "" && *c.PostingDeadline < today
			},
		})
		if err != nil {
			return nil, err
		}
		return buildChaseList(sc, today), nil
	})
}

func buildChaseList(sc *scope, today string) []ChaseItem {
	items := make([]ChaseItem, 0, len(sc.assignments))
	for _, a := range sc.assignments {
		c := sc.campaignsBy[a.CampaignID]
		deadline := model.Deref(c.PostingDeadline)
		item := ChaseItem{
			AssignmentID:    a.ID,
			InfluencerID:    a.InfluencerID,
			Name:            sc.influencerName(a.InfluencerID),
			Handle:          sc.influencerHandle(a.InfluencerID),
			PipelineStage:   a.PipelineStage,
			Deliverable:     a.Deliverable,
			CampaignName:    c.Name,
			PostingDeadline: deadline,
			DaysOverdue:     max(0, model.DaysBetween(deadline, today)),
		}
		if inf, ok := sc.influencers[a.InfluencerID]; ok {
			item.Email = inf.Email
		}
		item.EmailPreview = ReminderEmail(item)
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DaysOverdue > items[j].DaysOverdue
	})
	return items
}

// ReminderEmail renders the chase email for one overdue assignment.
func ReminderEmail(item ChaseItem) string {
	var b strings.Builder
	to := "(no email on file)"
	if item.Email != nil {
		to = *item.Email
	}
	fmt.Fprintf(&b, "To: %s\n", to)
	fmt.Fprintf(&b, "Subject: Reminder: %s content was due %s\n\n", item.CampaignName, item.PostingDeadline)
	fmt.Fprintf(&b, "Hi %s,\n\n", firstName(item.Name))
	what := "your content"
	if item.Deliverable != nil {
		what = *item.Deliverable
	}
	fmt.Fprintf(&b, "Just checking in on %s for %s. The posting deadline was %s (%d days ago).\n",
		what, item.CampaignName, item.PostingDeadline, item.DaysOverdue)
	b.WriteString("Could you send over an update or let us know if anything is blocking you?\n\nThanks!\n")
	return b.String()
}

func firstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return "there"
}
