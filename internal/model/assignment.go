package model

import "time"

// Assignment links one influencer to one campaign and carries all workflow
// state. Persisted in campaign_influencers.
type Assignment struct {
	ID            string        `json:"id"`
	CampaignID    string        `json:"campaign_id"`
	InfluencerID  string        `json:"influencer_id"`
	PipelineStage Stage         `json:"pipeline_stage"`
	Deliverable   *string       `json:"deliverable"`
	W9Status      W9Status      `json:"w9_status"`
	InvoiceStatus InvoiceStatus `json:"invoice_status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ReadyToPay reports whether both W9 and invoice are received.
func (a Assignment) ReadyToPay() bool {
	return ReadyToPay(a.W9Status, a.InvoiceStatus)
}

// NewAssignment returns an assignment with the default workflow state.
func NewAssignment(campaignID, influencerID string) Assignment {
	return Assignment{
		CampaignID:    campaignID,
		InfluencerID:  influencerID,
		PipelineStage: StageContacted,
		W9Status:      W9Pending,
		InvoiceStatus: InvoicePending,
		PaymentStatus: PaymentUnpaid,
	}
}

// Payment is an append-only record of money sent for an assignment.
type Payment struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"campaign_influencer_id"`
	Amount       *float64  `json:"amount"`
	DateSent     *string   `json:"date_sent"`
	Method       *string   `json:"method"`
	Notes        *string   `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

// SumPayments totals payment amounts, treating null amounts as zero.
func SumPayments(payments []Payment) float64 {
	var total float64
	for _, p := range payments {
		if p.Amount != nil {
			total += *p.Amount
		}
	}
	return total
}
