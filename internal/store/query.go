package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/influencer-os/internal/model"
)

// placeholder renders the n-th (1-based) bind parameter for a dialect.
type placeholder func(n int) string

func sqlitePlaceholder(int) string { return "?" }

func postgresPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

// clause accumulates conditions or assignments together with their args so
// the same filter logic serves both dialects.
type clause struct {
	ph    placeholder
	parts []string
	args  []any
}

func newClause(ph placeholder) *clause {
	return &clause{ph: ph}
}

func (c *clause) next(v any) string {
	c.args = append(c.args, v)
	return c.ph(len(c.args))
}

func (c *clause) add(expr string, v any) {
	c.parts = append(c.parts, fmt.Sprintf(expr, c.next(v)))
}

func (c *clause) in(col string, vals []string) {
	if len(vals) == 0 {
		return
	}
	phs := make([]string, len(vals))
	for i, v := range vals {
		phs[i] = c.next(v)
	}
	c.parts = append(c.parts, col+" IN ("+strings.Join(phs, ", ")+")")
}

func (c *clause) where() string {
	if len(c.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.parts, " AND ")
}

func (c *clause) set() string {
	return strings.Join(c.parts, ", ")
}

func stageStrings(stages []model.Stage) []string {
	out := make([]string, len(stages))
	for i, s := range stages {
		out[i] = string(s)
	}
	return out
}

func campaignWhere(ph placeholder, f CampaignFilter) *clause {
	c := newClause(ph)
	if f.BrandID != "" {
		c.add("brand_id = %s", f.BrandID)
	}
	if f.Status != "" {
		c.add("status = %s", string(f.Status))
	}
	c.in("id", f.IDs)
	return c
}

func assignmentWhere(ph placeholder, f AssignmentFilter) *clause {
	c := newClause(ph)
	c.in("campaign_id", f.CampaignIDs)
	if f.InfluencerID != "" {
		c.add("influencer_id = %s", f.InfluencerID)
	}
	c.in("pipeline_stage", stageStrings(f.Stages))
	return c
}

func assignmentSet(ph placeholder, u AssignmentUpdate) *clause {
	c := newClause(ph)
	if u.PipelineStage != nil {
		c.add("pipeline_stage = %s", string(*u.PipelineStage))
	}
	if u.Deliverable != nil {
		c.add("deliverable = %s", *u.Deliverable)
	}
	if u.W9Status != nil {
		c.add("w9_status = %s", string(*u.W9Status))
	}
	if u.InvoiceStatus != nil {
		c.add("invoice_status = %s", string(*u.InvoiceStatus))
	}
	if u.PaymentStatus != nil {
		c.add("payment_status = %s", string(*u.PaymentStatus))
	}
	return c
}

func influencerSet(ph placeholder, u InfluencerUpdate) *clause {
	c := newClause(ph)
	if u.Name != nil {
		c.add("name = %s", *u.Name)
	}
	if u.Handle != nil {
		c.add("handle = %s", *u.Handle)
	}
	if u.Email != nil {
		c.add("email = %s", *u.Email)
	}
	if u.Platform != nil {
		c.add("platform = %s", string(*u.Platform))
	}
	if u.ContentType != nil {
		c.add("content_type = %s", *u.ContentType)
	}
	if u.Location != nil {
		c.add("location = %s", *u.Location)
	}
	if u.Rate != nil {
		c.add("rate = %s", *u.Rate)
	}
	if u.FollowerCount != nil {
		c.add("follower_count = %s", *u.FollowerCount)
	}
	if u.Notes != nil {
		c.add("notes = %s", *u.Notes)
	}
	if u.PerformanceRating != nil {
		c.add("performance_rating = %s", *u.PerformanceRating)
	}
	return c
}

// isNoRows matches the no-rows sentinel of either driver.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

type scannable interface {
	Scan(dest ...any) error
}

const (
	brandColumns      = `id, name, invoice_email, invoice_instructions, created_at`
	influencerColumns = `id, name, handle, email, platform, content_type, location, rate, follower_count, notes, performance_rating, created_at, updated_at`
	assignmentColumns = `id, campaign_id, influencer_id, pipeline_stage, deliverable, w9_status, invoice_status, payment_status, created_at, updated_at`
)

func scanBrand(row scannable) (*model.Brand, error) {
	var b model.Brand
	if err := row.Scan(&b.ID, &b.Name, &b.InvoiceEmail, &b.InvoiceInstructions, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanInfluencer(row scannable) (*model.Influencer, error) {
	var inf model.Influencer
	var platform *string
	err := row.Scan(&inf.ID, &inf.Name, &inf.Handle, &inf.Email, &platform,
		&inf.ContentType, &inf.Location, &inf.Rate, &inf.FollowerCount,
		&inf.Notes, &inf.PerformanceRating, &inf.CreatedAt, &inf.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if platform != nil {
		p := model.Platform(*platform)
		inf.Platform = &p
	}
	return &inf, nil
}

func scanCampaign(row scannable) (*model.Campaign, error) {
	var c model.Campaign
	var status string
	err := row.Scan(&c.ID, &c.BrandID, &c.Retailer, &c.Region, &c.Name, &c.Quarter,
		&c.Products, &c.Budget, &c.PostingDeadline, &status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Status = model.CampaignStatus(status)
	return &c, nil
}

func scanAssignment(row scannable) (*model.Assignment, error) {
	var a model.Assignment
	var stage, w9, invoice, payment string
	err := row.Scan(&a.ID, &a.CampaignID, &a.InfluencerID, &stage, &a.Deliverable,
		&w9, &invoice, &payment, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.PipelineStage = model.Stage(stage)
	a.W9Status = model.W9Status(w9)
	a.InvoiceStatus = model.InvoiceStatus(invoice)
	a.PaymentStatus = model.PaymentStatus(payment)
	return &a, nil
}

func scanPayment(row scannable) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.AssignmentID, &p.Amount, &p.DateSent, &p.Method, &p.Notes, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func platformArg(p *model.Platform) *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}

func validateNewCampaign(c model.Campaign, assignments []model.Assignment) error {
	if strings.TrimSpace(c.Name) == "" {
		return eris.New("store: campaign name is required")
	}
	if c.BrandID == "" {
		return eris.New("store: campaign brand is required")
	}
	for _, a := range assignments {
		if _, err := model.ParseStage(string(a.PipelineStage)); err != nil {
			return err
		}
	}
	return nil
}

func validateNewAssignment(a model.Assignment) error {
	if a.CampaignID == "" || a.InfluencerID == "" {
		return eris.New("store: assignment needs a campaign and an influencer")
	}
	_, err := model.ParseStage(string(a.PipelineStage))
	return err
}
