package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/influencer-os/internal/model"
	"github.com/sells-group/influencer-os/internal/store"
)

func TestCampaignBoard(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.CampaignBoard(context.Background(), f.session(), f.walmart)
	require.NoError(t, err)

	assert.Equal(t, "Walmart - Bars", view.Campaign.Name)
	assert.Equal(t, CampaignStats{
		InfluencerCount: 4,
		Budget:          5000,
		ContentReceived: 2,
		PaidOut:         550,
		Overdue:         2,
	}, view.Stats)

	require.Len(t, view.Columns, 7)
	require.Len(t, view.Columns[0].Cards, 1)
	jane := view.Columns[0].Cards[0]
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, "janedoe", *jane.Handle)
	assert.Equal(t, 500.0, *jane.Rate)
	assert.Equal(t, f.a["jane@walmart"], jane.AssignmentID)
	assert.Len(t, view.Columns[6].Cards, 1)
}

func TestCampaignBoard_OtherBrandIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CampaignBoard(context.Background(), Session{BrandID: f.other}, f.walmart)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	_, err = f.svc.CampaignBoard(context.Background(), f.session(), "missing")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestMoveCard_ToColumn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.MoveCard(ctx, f.session(), f.walmart, f.a["jane@walmart"], string(model.StageContentReceived))
	require.NoError(t, err)
	assert.Equal(t, 3, view.Stats.ContentReceived)
	assert.Equal(t, 1, view.Stats.Overdue)

	a, err := f.st.GetAssignment(ctx, f.a["jane@walmart"])
	require.NoError(t, err)
	assert.Equal(t, model.StageContentReceived, a.PipelineStage)
}

func TestMoveCard_OntoCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.MoveCard(ctx, f.session(), f.walmart, f.a["bob@walmart"], f.a["dana@walmart"])
	require.NoError(t, err)

	a, err := f.st.GetAssignment(ctx, f.a["bob@walmart"])
	require.NoError(t, err)
	assert.Equal(t, model.StagePosted, a.PipelineStage)
}

func TestMoveCard_CancelWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.MoveCard(ctx, f.session(), f.walmart, f.a["jane@walmart"], "")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Stats.Overdue)

	a, err := f.st.GetAssignment(ctx, f.a["jane@walmart"])
	require.NoError(t, err)
	assert.Equal(t, model.StageContacted, a.PipelineStage)
}

func TestMoveCard_CardFromAnotherCampaign(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.MoveCard(context.Background(), f.session(), f.walmart, f.a["jane@sprouts"], "posted")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestBoard_WritesThroughStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, view, err := f.svc.Board(ctx, f.session(), f.sprouts)
	require.NoError(t, err)
	require.Len(t, view.Cards, 1)

	id := view.Cards[0].AssignmentID
	require.True(t, b.DragStart(id))
	b.DragOver(id, "invoice_received")
	require.NoError(t, b.Drop(ctx, id, "invoice_received"))

	a, err := f.st.GetAssignment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StageInvoiceReceived, a.PipelineStage)
	assert.Equal(t, model.StageInvoiceReceived, b.Snapshot()[0].PipelineStage)
}

func TestCreateCampaign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.CreateCampaign(ctx, f.session(), NewCampaign{
		Name:            " Sprouts - Spring ",
		Retailer:        "Sprouts",
		Quarter:         "Q2 2026",
		Budget:          model.Ptr(4000.0),
		PostingDeadline: "2026-05-01",
		Influencers: []NewAssignment{
			{InfluencerID: f.carol, Deliverable: "1 reel"},
			{InfluencerID: f.dana},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Sprouts - Spring", c.Name)
	assert.Equal(t, f.brand, c.BrandID)
	assert.Equal(t, model.CampaignActive, c.Status)
	assert.Nil(t, c.Region)

	list, err := f.st.ListAssignments(ctx, store.AssignmentFilter{CampaignIDs: []string{c.ID}})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, a := range list {
		assert.Equal(t, model.StageContacted, a.PipelineStage)
		assert.Equal(t, model.PaymentUnpaid, a.PaymentStatus)
		if a.InfluencerID == f.carol {
			assert.Equal(t, "1 reel", *a.Deliverable)
		} else {
			assert.Nil(t, a.Deliverable)
		}
	}
}

func TestCreateCampaign_Invalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateCampaign(ctx, f.session(), NewCampaign{Name: "  "})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = f.svc.CreateCampaign(ctx, Session{}, NewCampaign{Name: "No brand"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = f.svc.CreateCampaign(ctx, f.session(), NewCampaign{Name: "Bad date", PostingDeadline: "May 1"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = f.svc.CreateCampaign(ctx, f.session(), NewCampaign{
		Name:        "Dup",
		Influencers: []NewAssignment{{InfluencerID: f.bob}, {InfluencerID: f.bob}},
	})
	require.Error(t, err)
	campaigns, err := f.svc.ListCampaigns(ctx, f.session(), "")
	require.NoError(t, err)
	assert.Len(t, campaigns, 3, "failed create leaves nothing behind")
}

func TestAddToCampaign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.AddToCampaign(ctx, f.session(), f.bob, f.sprouts, "2 stories")
	require.NoError(t, err)
	assert.Equal(t, model.StageContacted, a.PipelineStage)
	assert.Equal(t, "2 stories", *a.Deliverable)

	_, err = f.svc.AddToCampaign(ctx, f.session(), f.carol, f.costco, "")
	assert.True(t, errors.Is(err, ErrInvalidInput), "completed campaign")

	_, err = f.svc.AddToCampaign(ctx, f.session(), f.carol, f.target, "")
	assert.True(t, errors.Is(err, store.ErrNotFound), "other brand")

	_, err = f.svc.AddToCampaign(ctx, f.session(), "missing", f.sprouts, "")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestListCampaigns(t *testing.T) {
	f := newFixture(t)
	active, err := f.svc.ListCampaigns(context.Background(), f.session(), model.CampaignActive)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := f.svc.ListCampaigns(context.Background(), Session{}, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
