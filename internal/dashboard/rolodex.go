package dashboard

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/influencer-os/internal/model"
	"github.com/sells-group/influencer-os/internal/store"
)

// PageSize is the number of rolodex rows per page.
const PageSize = 25

// SortField names a sortable rolodex column.
type SortField string

const (
	SortName              SortField = "name"
	SortHandle            SortField = "handle"
	SortPlatform          SortField = "platform"
	SortContentType       SortField = "content_type"
	SortLocation          SortField = "location"
	SortRate              SortField = "rate"
	SortCampaignCount     SortField = "campaign_count"
	SortPerformanceRating SortField = "performance_rating"
)

var sortFields = []SortField{
	SortName, SortHandle, SortPlatform, SortContentType,
	SortLocation, SortRate, SortCampaignCount, SortPerformanceRating,
}

// ParseSortField validates a sort column. Empty means name.
func ParseSortField(s string) (SortField, error) {
	if s == "" {
		return SortName, nil
	}
	for _, f := range sortFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", eris.Wrapf(ErrInvalidInput, "unknown sort field %q", s)
}

// RolodexQuery filters, sorts and pages the roster.
type RolodexQuery struct {
	Search      string    `json:"search"`
	Platform    string    `json:"platform"`
	ContentType string    `json:"content_type"`
	Sort        SortField `json:"sort"`
	Desc        bool      `json:"desc"`
	Page        int       `json:"page"`
}

// RolodexRow is an influencer with the number of campaigns they are on.
type RolodexRow struct {
	model.Influencer
	CampaignCount int `json:"campaign_count"`
}

// RolodexPage is one page of results.
type RolodexPage struct {
	Rows        []RolodexRow `json:"rows"`
	Total       int          `json:"total"`
	Page        int          `json:"page"`
	TotalPages  int          `json:"total_pages"`
	ShowingFrom int          `json:"showing_from"`
	ShowingTo   int          `json:"showing_to"`
}

// Rolodex searches the whole roster. Campaign counts cover the session's
// campaigns.
func (s *Service) Rolodex(ctx context.Context, sess Session, q RolodexQuery) (*RolodexPage, error) {
	infs, err := s.store.ListInfluencers(ctx, store.InfluencerFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "dashboard: rolodex influencers")
	}
	counts, err := s.campaignCounts(ctx, sess)
	if err != nil {
		return nil, err
	}

	rows := make([]RolodexRow, 0, len(infs))
	for _, inf := range infs {
		rows = append(rows, RolodexRow{Influencer: inf, CampaignCount: counts[inf.ID]})
	}
	return pageRolodex(rows, q), nil
}

func (s *Service) campaignCounts(ctx context.Context, sess Session) (map[string]int, error) {
	filter := store.AssignmentFilter{}
	if sess.BrandID != "" {
		campaigns, err := s.store.ListCampaigns(ctx, store.CampaignFilter{BrandID: sess.BrandID})
		if err != nil {
			return nil, eris.Wrap(err, "dashboard: rolodex campaigns")
		}
		if len(campaigns) == 0 {
			return map[string]int{}, nil
		}
		for _, c := range campaigns {
			filter.CampaignIDs = append(filter.CampaignIDs, c.ID)
		}
	}
	assignments, err := s.store.ListAssignments(ctx, filter)
	if err != nil {
		return nil, eris.Wrap(err, "dashboard: rolodex assignments")
	}
	counts := make(map[string]int)
	for _, a := range assignments {
		counts[a.InfluencerID]++
	}
	return counts, nil
}

func pageRolodex(rows []RolodexRow, q RolodexQuery) *RolodexPage {
	filtered := rows[:0:0]
	search := strings.ToLower(strings.TrimSpace(q.Search))
	for _, r := range rows {
		if search != "" && !strings.Contains(strings.ToLower(r.Name), search) &&
			!strings.Contains(strings.ToLower(model.Deref(r.Handle)), search) {
			continue
		}
		if q.Platform != "" && !strings.EqualFold(string(model.Deref(r.Platform)), q.Platform) {
			continue
		}
		if q.ContentType != "" && !strings.EqualFold(model.Deref(r.ContentType), q.ContentType) {
			continue
		}
		filtered = append(filtered, r)
	}

	field := q.Sort
	if field == "" {
		field = SortName
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		c := compareRows(filtered[i], filtered[j], field)
		if q.Desc {
			return c > 0
		}
		return c < 0
	})

	total := len(filtered)
	pages := max(1, (total+PageSize-1)/PageSize)
	page := min(max(1, q.Page), pages)
	from := (page - 1) * PageSize
	to := min(from+PageSize, total)

	p := &RolodexPage{
		Rows:       filtered[from:to],
		Total:      total,
		Page:       page,
		TotalPages: pages,
		ShowingTo:  to,
	}
	if total > 0 {
		p.ShowingFrom = from + 1
	}
	return p
}

func compareRows(a, b RolodexRow, field SortField) int {
	switch field {
	case SortHandle:
		return strings.Compare(strings.ToLower(model.Deref(a.Handle)), strings.ToLower(model.Deref(b.Handle)))
	case SortPlatform:
		return strings.Compare(strings.ToLower(string(model.Deref(a.Platform))), strings.ToLower(string(model.Deref(b.Platform))))
	case SortContentType:
		return strings.Compare(strings.ToLower(model.Deref(a.ContentType)), strings.ToLower(model.Deref(b.ContentType)))
	case SortLocation:
		return strings.Compare(strings.ToLower(model.Deref(a.Location)), strings.ToLower(model.Deref(b.Location)))
	case SortRate:
		return compareFloat(model.Deref(a.Rate), model.Deref(b.Rate))
	case SortCampaignCount:
		return a.CampaignCount - b.CampaignCount
	case SortPerformanceRating:
		return compareFloat(model.Deref(a.PerformanceRating), model.Deref(b.PerformanceRating))
	default:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
