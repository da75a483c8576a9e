// Package dashboard assembles the views behind the brand dashboard: the
// overview, campaign boards, chase list, payment queue, reports, rolodex and
// influencer profiles. Every query takes an explicit Session.
package dashboard

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/influencer-os/internal/cache"
	"github.com/sells-group/influencer-os/internal/model"
	"github.com/sells-group/influencer-os/internal/store"
)

// unknownName is shown when an assignment's influencer row is missing.
const unknownName = "Unknown"

// ErrInvalidInput marks caller mistakes such as a missing campaign name.
var ErrInvalidInput = eris.New("dashboard: invalid input")

// Session scopes queries to a brand. An empty BrandID means all brands.
type Session struct {
	BrandID string `json:"brand_id"`
}

// Service answers dashboard queries against a store.
type Service struct {
	store store.Store
	cache cache.Cache
	now   func() time.Time
}

// New creates a Service. A nil cache disables caching.
func New(st store.Store, c cache.Cache) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{store: st, cache: c, now: time.Now}
}

// Store exposes the underlying store.
func (s *Service) Store() store.Store {
	return s.store
}

// Today is the current calendar date, YYYY-MM-DD.
func (s *Service) Today() string {
	return model.DateOf(s.now())
}

// ListBrands returns every brand.
func (s *Service) ListBrands(ctx context.Context) ([]model.Brand, error) {
	return s.store.ListBrands(ctx)
}

// invalid wraps ErrInvalidInput with a message.
func invalid(format string, args ...any) error {
	return eris.Wrapf(ErrInvalidInput, format, args...)
}

// cached serves key from the cache or computes and stores it. Cache
// failures are logged and never fail the request.
func cached[T any](ctx context.Context, s *Service, key string, load func() (T, error)) (T, error) {
	var v T
	ok, err := s.cache.Get(ctx, key, &v)
	if err != nil {
		zap.L().Warn("dashboard: cache get failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		return v, nil
	}
	v, err = load()
	if err != nil {
		return v, err
	}
	if err := s.cache.Set(ctx, key, v); err != nil {
		zap.L().Warn("dashboard: cache set failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// invalidate drops cached aggregates after a write.
func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Flush(ctx); err != nil {
		zap.L().Warn("dashboard: cache flush failed", zap.Error(err))
	}
}

func cacheKey(view string, sess Session, extra ...string) string {
	key := view + ":" + sess.BrandID
	for _, e := range extra {
		key += ":" + e
	}
	return key
}

// scope is one brand's campaigns with their assignments and the rows those
// assignments reference.
type scope struct {
	campaigns   []model.Campaign
	campaignsBy map[string]model.Campaign
	assignments []model.Assignment
	influencers map[string]model.Influencer
	paid        map[string]float64
}

type scopeQuery struct {
	status   model.CampaignStatus
	stages   []model.Stage
	keep     func(model.Campaign) bool
	payments bool
}

// load fetches campaigns, then their assignments, then influencers and
// payments concurrently.
func (s *Service) load(ctx context.Context, sess Session, q scopeQuery) (*scope, error) {
	all, err := s.store.ListCampaigns(ctx, store.CampaignFilter{BrandID: sess.BrandID, Status: q.status})
	if err != nil {
		return nil, eris.Wrap(err, "dashboard: load campaigns")
	}

	sc := &scope{
		campaignsBy: make(map[string]model.Campaign, len(all)),
		influencers: make(map[string]model.Influencer),
		paid:        make(map[string]float64),
	}
	ids := make([]string, 0, len(all))
	for _, c := range all {
		if q.keep != nil && !q.keep(c) {
			continue
		}
		sc.campaigns = append(sc.campaigns, c)
		sc.campaignsBy[c.ID] = c
		ids = append(ids, c.ID)
	}
	// An empty filter matches everything, so stop before listing.
	if len(ids) == 0 {
		return sc, nil
	}

	sc.assignments, err = s.store.ListAssignments(ctx, store.AssignmentFilter{CampaignIDs: ids, Stages: q.stages})
	if err != nil {
		return nil, eris.Wrap(err, "dashboard: load assignments")
	}
	if len(sc.assignments) == 0 {
		return sc, nil
	}

	influencerIDs := make([]string, 0, len(sc.assignments))
	assignmentIDs := make([]string, 0, len(sc.assignments))
	seen := make(map[string]bool, len(sc.assignments))
	for _, a := range sc.assignments {
		assignmentIDs = append(assignmentIDs, a.ID)
		if !seen[a.InfluencerID] {
			seen[a.InfluencerID] = true
			influencerIDs = append(influencerIDs, a.InfluencerID)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		infs, err := s.store.ListInfluencers(gctx, store.InfluencerFilter{IDs: influencerIDs})
		if err != nil {
			return eris.Wrap(err, "dashboard: load influencers")
		}
		for _, inf := range infs {
			sc.influencers[inf.ID] = inf
		}
		return nil
	})
	if q.payments {
		g.Go(func() error {
			payments, err := s.store.ListPayments(gctx, store.PaymentFilter{AssignmentIDs: assignmentIDs})
			if err != nil {
				return eris.Wrap(err, "dashboard: load payments")
			}
			for _, p := range payments {
				if p.Amount != nil {
					sc.paid[p.AssignmentID] += *p.Amount
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *scope) influencerName(id string) string {
	if inf, ok := sc.influencers[id]; ok {
		return inf.Name
	}
	return unknownName
}

func (sc *scope) influencerHandle(id string) *string {
	if inf, ok := sc.influencers[id]; ok {
		return inf.Handle
	}
	return nil
}

func (sc *scope) campaignName(id string) string {
	if c, ok := sc.campaignsBy[id]; ok {
		return c.Name
	}
	return unknownName
}

// checkBrand rejects campaigns outside the session's brand as not found.
func checkBrand(sess Session, c *model.Campaign) error {
	if sess.BrandID != "" && c.BrandID != sess.BrandID {
		return eris.Wrapf(store.ErrNotFound, "campaign %s", c.ID)
	}
	return nil
}
