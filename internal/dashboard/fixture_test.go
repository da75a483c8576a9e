package dashboard

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/influencer-os/internal/cache"
	"github.com/sells-group/influencer-os/internal/model"
	"github.com/sells-group/influencer-os/internal/store"
)

var fixtureNow = time.Date(2026, 1, 20, 15, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	st    store.Store
	cache *cache.Memory

	brand, other string

	jane, bob, carol, dana string

	walmart, costco, sprouts, target string

	// assignment ids keyed "<influencer>@<campaign>"
	a map[string]string
}

func assignment(inf string, stage model.Stage, w9 model.W9Status, inv model.InvoiceStatus) model.Assignment {
	a := model.NewAssignment("", inf)
	a.PipelineStage = stage
	a.W9Status = w9
	a.InvoiceStatus = inv
	return a
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "dashboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(ctx))

	mem := cache.NewMemory(time.Hour)
	f := &fixture{svc: New(st, mem), st: st, cache: mem, a: make(map[string]string)}
	f.svc.now = func() time.Time { return fixtureNow }

	brand, err := st.CreateBrand(ctx, model.Brand{Name: "Miss Jones"})
	require.NoError(t, err)
	other, err := st.CreateBrand(ctx, model.Brand{Name: "Other Co"})
	require.NoError(t, err)
	f.brand, f.other = brand.ID, other.ID

	mk := func(inf model.Influencer) string {
		created, err := st.CreateInfluencer(ctx, inf)
		require.NoError(t, err)
		return created.ID
	}
	f.jane = mk(model.Influencer{Name: "Jane Doe", Handle: model.Ptr("janedoe"), Email: model.Ptr("jane@x.com"),
		Platform: model.Ptr(model.PlatformInstagram), ContentType: model.Ptr("Recipe"), Rate: model.Ptr(500.0),
		PerformanceRating: model.Ptr(4.5)})
	f.bob = mk(model.Influencer{Name: "Bob Smith", Handle: model.Ptr("bobtt"), Platform: model.Ptr(model.PlatformTikTok),
		ContentType: model.Ptr("Video"), Rate: model.Ptr(800.0)})
	f.carol = mk(model.Influencer{Name: "Carol White", Handle: model.Ptr("carolw"), Platform: model.Ptr(model.PlatformInstagram)})
	f.dana = mk(model.Influencer{Name: "Dana Lee", Location: model.Ptr("LA"), Rate: model.Ptr(150.0)})

	mkCampaign := func(c model.Campaign, key string, as ...model.Assignment) string {
		created, err := st.CreateCampaign(ctx, c, as)
		require.NoError(t, err)
		list, err := st.ListAssignments(ctx, store.AssignmentFilter{CampaignIDs: []string{created.ID}})
		require.NoError(t, err)
		for _, a := range list {
			f.a[f.nameOf(a.InfluencerID)+"@"+key] = a.ID
		}
		return created.ID
	}

	f.walmart = mkCampaign(model.Campaign{BrandID: f.brand, Name: "Walmart - Bars", Quarter: model.Ptr("Q1 2026"),
		Budget: model.Ptr(5000.0), PostingDeadline: model.Ptr("2026-01-10"), Status: model.CampaignActive}, "walmart",
		assignment(f.jane, model.StageContacted, model.W9Pending, model.InvoicePending),
		assignment(f.bob, model.StageBriefSent, model.W9Pending, model.InvoicePending),
		assignment(f.carol, model.StageContentReceived, model.W9Received, model.InvoiceReceived),
		assignment(f.dana, model.StagePosted, model.W9Received, model.InvoicePaid),
	)
	f.costco = mkCampaign(model.Campaign{BrandID: f.brand, Name: "Costco - Cookies", Quarter: model.Ptr("Q4 2025"),
		Budget: model.Ptr(3000.0), PostingDeadline: model.Ptr("2025-12-01"), Status: model.CampaignCompleted}, "costco",
		assignment(f.jane, model.StageContacted, model.W9Pending, model.InvoicePending),
		assignment(f.bob, model.StagePosted, model.W9Received, model.InvoicePaid),
	)
	f.sprouts = mkCampaign(model.Campaign{BrandID: f.brand, Name: "Sprouts - Holiday", Quarter: model.Ptr("Q1 2026"),
		Budget: model.Ptr(2000.0), PostingDeadline: model.Ptr("2026-03-01"), Status: model.CampaignActive}, "sprouts",
		assignment(f.jane, model.StageW9Done, model.W9Received, model.InvoicePending),
	)
	f.target = mkCampaign(model.Campaign{BrandID: f.other, Name: "Target", Quarter: model.Ptr("Q1 2026"),
		Budget: model.Ptr(100.0), PostingDeadline: model.Ptr("2026-01-01"), Status: model.CampaignActive}, "target",
		assignment(f.dana, model.StageContacted, model.W9Pending, model.InvoicePending),
	)

	pay := func(key string, amount *float64) {
		_, err := st.CreatePayment(ctx, model.Payment{AssignmentID: f.a[key], Amount: amount, DateSent: model.Ptr("2026-01-05")})
		require.NoError(t, err)
	}
	pay("carol@walmart", model.Ptr(300.0))
	pay("dana@walmart", model.Ptr(250.0))
	pay("dana@walmart", nil)
	pay("bob@costco", model.Ptr(800.0))
	pay("dana@target", model.Ptr(99.0))

	return f
}

func (f *fixture) nameOf(id string) string {
	switch id {
	case f.jane:
		return "jane"
	case f.bob:
		return "bob"
	case f.carol:
		return "carol"
	case f.dana:
		return "dana"
	}
	return id
}

func (f *fixture) session() Session {
	return Session{BrandID: f.brand}
}
