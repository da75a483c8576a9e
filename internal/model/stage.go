package model

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Stage is the primary workflow position of an assignment.
type Stage string

const (
	StageContacted       Stage = "contacted"
	StageBriefSent       Stage = "brief_sent"
	StageContentReceived Stage = "content_received"
	StageW9Done          Stage = "w9_done"
	StageInvoiceReceived Stage = "invoice_received"
	StagePaid            Stage = "paid"
	StagePosted          Stage = "posted"
)

// Stages lists every pipeline stage in board order.
var Stages = []Stage{
	StageContacted,
	StageBriefSent,
	StageContentReceived,
	StageW9Done,
	StageInvoiceReceived,
	StagePaid,
	StagePosted,
}

// ParseStage validates a raw pipeline_stage value.
func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	if !st.Valid() {
		return "", eris.Errorf("model: invalid pipeline stage %q", s)
	}
	return st, nil
}

// Valid reports whether s is one of the seven known stages.
func (s Stage) Valid() bool {
	return s.Index() >= 0
}

// Index returns the position of s in Stages, or -1 for unknown values.
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// Label returns the display name, e.g. "Brief Sent".
func (s Stage) Label() string {
	// Casers carry state and are not safe to share.
	return cases.Title(language.English).String(strings.ReplaceAll(string(s), "_", " "))
}

// Early reports whether the stage still counts toward the chase list.
func (s Stage) Early() bool {
	return s == StageContacted || s == StageBriefSent
}

// ContentReceivedOrLater reports whether content has been delivered.
func (s Stage) ContentReceivedOrLater() bool {
	return s.Index() >= StageContentReceived.Index()
}

// InPaymentQueue reports whether the assignment belongs in the payment queue.
func (s Stage) InPaymentQueue() bool {
	return s == StageContentReceived || s == StageW9Done || s == StageInvoiceReceived
}

// W9Status tracks tax paperwork independently of the pipeline stage.
type W9Status string

const (
	W9NotRequired W9Status = "not_required"
	W9Pending     W9Status = "pending"
	W9Sent        W9Status = "sent"
	W9Received    W9Status = "received"
	W9Complete    W9Status = "complete"
)

// W9Statuses lists the valid w9_status values.
var W9Statuses = []W9Status{W9NotRequired, W9Pending, W9Sent, W9Received, W9Complete}

// ParseW9Status validates a raw w9_status value.
func ParseW9Status(s string) (W9Status, error) {
	for _, v := range W9Statuses {
		if string(v) == s {
			return v, nil
		}
	}
	return "", eris.Errorf("model: invalid w9 status %q", s)
}

// InvoiceStatus tracks the influencer's invoice.
type InvoiceStatus string

const (
	InvoicePending  InvoiceStatus = "pending"
	InvoiceSent     InvoiceStatus = "sent"
	InvoiceReceived InvoiceStatus = "received"
	InvoicePaid     InvoiceStatus = "paid"
)

// InvoiceStatuses lists the valid invoice_status values.
var InvoiceStatuses = []InvoiceStatus{InvoicePending, InvoiceSent, InvoiceReceived, InvoicePaid}

// ParseInvoiceStatus validates a raw invoice_status value.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	for _, v := range InvoiceStatuses {
		if string(v) == s {
			return v, nil
		}
	}
	return "", eris.Errorf("model: invalid invoice status %q", s)
}

// PaymentStatus tracks money movement for an assignment.
type PaymentStatus string

const (
	PaymentUnpaid     PaymentStatus = "unpaid"
	PaymentProcessing PaymentStatus = "processing"
	PaymentPaid       PaymentStatus = "paid"
)

// PaymentStatuses lists the valid payment_status values.
var PaymentStatuses = []PaymentStatus{PaymentUnpaid, PaymentProcessing, PaymentPaid}

// ParsePaymentStatus validates a raw payment_status value.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for _, v := range PaymentStatuses {
		if string(v) == s {
			return v, nil
		}
	}
	return "", eris.Errorf("model: invalid payment status %q", s)
}

// ReadyToPay is true only when both the W9 and the invoice have been received.
func ReadyToPay(w9 W9Status, invoice InvoiceStatus) bool {
	return w9 == W9Received && invoice == InvoiceReceived
}
