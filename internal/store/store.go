package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/influencer-os/internal/model"
)

// ErrNotFound is returned when a single-row lookup or update matches nothing.
var ErrNotFound = eris.New("store: not found")

// InfluencerFilter narrows ListInfluencers. Empty fields match everything.
type InfluencerFilter struct {
	IDs []string `json:"ids,omitempty"`
}

// CampaignFilter narrows ListCampaigns. Empty fields match everything.
type CampaignFilter struct {
	BrandID string               `json:"brand_id,omitempty"`
	Status  model.CampaignStatus `json:"status,omitempty"`
	IDs     []string             `json:"ids,omitempty"`
}

// AssignmentFilter narrows ListAssignments. Empty fields match everything.
type AssignmentFilter struct {
	CampaignIDs  []string      `json:"campaign_ids,omitempty"`
	InfluencerID string        `json:"influencer_id,omitempty"`
	Stages       []model.Stage `json:"stages,omitempty"`
}

// PaymentFilter narrows ListPayments. Empty fields match everything.
type PaymentFilter struct {
	AssignmentIDs []string `json:"assignment_ids,omitempty"`
}

// AssignmentUpdate is a partial update; nil fields are left unchanged.
type AssignmentUpdate struct {
	PipelineStage *model.Stage         `json:"pipeline_stage,omitempty"`
	Deliverable   *string              `json:"deliverable,omitempty"`
	W9Status      *model.W9Status      `json:"w9_status,omitempty"`
	InvoiceStatus *model.InvoiceStatus `json:"invoice_status,omitempty"`
	PaymentStatus *model.PaymentStatus `json:"payment_status,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u AssignmentUpdate) Empty() bool {
	return u.PipelineStage == nil && u.Deliverable == nil && u.W9Status == nil &&
		u.InvoiceStatus == nil && u.PaymentStatus == nil
}

// Validate rejects values outside the closed enumerations.
func (u AssignmentUpdate) Validate() error {
	if u.PipelineStage != nil {
		if _, err := model.ParseStage(string(*u.PipelineStage)); err != nil {
			return err
		}
	}
	if u.W9Status != nil {
		if _, err := model.ParseW9Status(string(*u.W9Status)); err != nil {
			return err
		}
	}
	if u.InvoiceStatus != nil {
		if _, err := model.ParseInvoiceStatus(string(*u.InvoiceStatus)); err != nil {
			return err
		}
	}
	if u.PaymentStatus != nil {
		if _, err := model.ParsePaymentStatus(string(*u.PaymentStatus)); err != nil {
			return err
		}
	}
	return nil
}

// InfluencerUpdate is a partial profile edit; nil fields are left unchanged.
type InfluencerUpdate struct {
	Name              *string         `json:"name,omitempty"`
	Handle            *string         `json:"handle,omitempty"`
	Email             *string         `json:"email,omitempty"`
	Platform          *model.Platform `json:"platform,omitempty"`
	ContentType       *string         `json:"content_type,omitempty"`
	Location          *string         `json:"location,omitempty"`
	Rate              *float64        `json:"rate,omitempty"`
	FollowerCount     *int64          `json:"follower_count,omitempty"`
	Notes             *string         `json:"notes,omitempty"`
	PerformanceRating *float64        `json:"performance_rating,omitempty"`
}

// Counts holds per-table row counts, printed after an import.
type Counts struct {
	Brands      int `json:"brands"`
	Influencers int `json:"influencers"`
	Campaigns   int `json:"campaigns"`
	Assignments int `json:"campaign_influencers"`
	Payments    int `json:"payments"`
}

// ImportTx is the narrow write surface the spreadsheet importer uses inside
// its single transaction. Lookups follow the importer's matching rules.
type ImportTx interface {
	// FindInfluencerID matches on case-insensitive exact name.
	FindInfluencerID(ctx context.Context, name string) (string, bool, error)
	InsertInfluencer(ctx context.Context, inf *model.Influencer) error
	// FindCampaignID matches on case-insensitive name plus exact quarter and brand.
	FindCampaignID(ctx context.Context, name, quarter, brandID string) (string, bool, error)
	InsertCampaign(ctx context.Context, c *model.Campaign) error
	AssignmentExists(ctx context.Context, campaignID, influencerID string) (bool, error)
	InsertAssignment(ctx context.Context, a *model.Assignment) error
}

// Store defines the persistence interface for brands, the roster and campaign workflow.
type Store interface {
	// Brands
	CreateBrand(ctx context.Context, b model.Brand) (*model.Brand, error)
	GetBrand(ctx context.Context, id string) (*model.Brand, error)
	ListBrands(ctx context.Context) ([]model.Brand, error)

	// Influencers
	CreateInfluencer(ctx context.Context, inf model.Influencer) (*model.Influencer, error)
	GetInfluencer(ctx context.Context, id string) (*model.Influencer, error)
	ListInfluencers(ctx context.Context, filter InfluencerFilter) ([]model.Influencer, error)
	UpdateInfluencer(ctx context.Context, id string, u InfluencerUpdate) (*model.Influencer, error)

	// Campaigns
	CreateCampaign(ctx context.Context, c model.Campaign, assignments []model.Assignment) (*model.Campaign, error)
	GetCampaign(ctx context.Context, id string) (*model.Campaign, error)
	ListCampaigns(ctx context.Context, filter CampaignFilter) ([]model.Campaign, error)

	// Assignments
	CreateAssignment(ctx context.Context, a model.Assignment) (*model.Assignment, error)
	GetAssignment(ctx context.Context, id string) (*model.Assignment, error)
	ListAssignments(ctx context.Context, filter AssignmentFilter) ([]model.Assignment, error)
	UpdateAssignment(ctx context.Context, id string, u AssignmentUpdate) (*model.Assignment, error)

	// Payments
	CreatePayment(ctx context.Context, p model.Payment) (*model.Payment, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]model.Payment, error)

	// Import
	WithImportTx(ctx context.Context, fn func(tx ImportTx) error) error
	Counts(ctx context.Context) (*Counts, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
