package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// Brand scopes campaigns. Brands are created out of band.
type Brand struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	InvoiceEmail        *string   `json:"invoice_email"`
	InvoiceInstructions *string   `json:"invoice_instructions"`
	CreatedAt           time.Time `json:"created_at"`
}

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
)

// ParseCampaignStatus validates a raw campaign status.
func ParseCampaignStatus(s string) (CampaignStatus, error) {
	switch CampaignStatus(s) {
	case CampaignActive, CampaignCompleted:
		return CampaignStatus(s), nil
	}
	return "", eris.Errorf("model: invalid campaign status %q", s)
}

// Campaign is a brand-scoped effort for one retailer and quarter.
type Campaign struct {
	ID              string         `json:"id"`
	BrandID         string         `json:"brand_id"`
	Retailer        *string        `json:"retailer"`
	Region          *string        `json:"region"`
	Name            string         `json:"name"`
	Quarter         *string        `json:"quarter"`
	Products        *string        `json:"products"`
	Budget          *float64       `json:"budget"`
	PostingDeadline *string        `json:"posting_deadline"`
	Status          CampaignStatus `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
