package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/influencer-os/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	// Pragmas above are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS brands (
	id                   TEXT PRIMARY KEY,
	name                 TEXT NOT NULL,
	invoice_email        TEXT,
	invoice_instructions TEXT,
	created_at           DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS influencers (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	handle             TEXT,
	email              TEXT,
	platform           TEXT CHECK (platform IN ('instagram', 'tiktok', 'youtube', 'twitter')),
	content_type       TEXT,
	location           TEXT,
	rate               REAL,
	follower_count     INTEGER,
	notes              TEXT,
	performance_rating REAL,
	created_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS campaigns (
	id               TEXT PRIMARY KEY,
	brand_id         TEXT NOT NULL REFERENCES brands(id),
	retailer         TEXT,
	region           TEXT,
	name             TEXT NOT NULL,
	quarter          TEXT,
	products         TEXT,
	budget           REAL,
	posting_deadline TEXT,
	status           TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'completed')),
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS campaign_influencers (
	id             TEXT PRIMARY KEY,
	campaign_id    TEXT NOT NULL REFERENCES campaigns(id),
	influencer_id  TEXT NOT NULL REFERENCES influencers(id),
	pipeline_stage TEXT NOT NULL DEFAULT 'contacted' CHECK (pipeline_stage IN
		('contacted', 'brief_sent', 'content_received', 'w9_done', 'invoice_received', 'paid', 'posted')),
	deliverable    TEXT,
	w9_status      TEXT NOT NULL DEFAULT 'pending' CHECK (w9_status IN
		('not_required', 'pending', 'sent', 'received', 'complete')),
	invoice_status TEXT NOT NULL DEFAULT 'pending' CHECK (invoice_status IN ('pending', 'sent', 'received', 'paid')),
	payment_status TEXT NOT NULL DEFAULT 'unpaid' CHECK (payment_status IN ('unpaid', 'processing', 'paid')),
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (campaign_id, influencer_id)
);

CREATE TABLE IF NOT EXISTS payments (
	id                     TEXT PRIMARY KEY,
	campaign_influencer_id TEXT NOT NULL REFERENCES campaign_influencers(id),
	amount                 REAL,
	date_sent              TEXT,
	method                 TEXT,
	notes                  TEXT,
	created_at             DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS documents (
	id                     TEXT PRIMARY KEY,
	campaign_influencer_id TEXT NOT NULL REFERENCES campaign_influencers(id),
	type                   TEXT NOT NULL,
	file_url               TEXT,
	uploaded_at            DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_influencers_name ON influencers(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_campaigns_brand ON campaigns(brand_id);
CREATE INDEX IF NOT EXISTS idx_campaigns_name_quarter ON campaigns(LOWER(name), quarter);
CREATE INDEX IF NOT EXISTS idx_ci_campaign ON campaign_influencers(campaign_id);
CREATE INDEX IF NOT EXISTS idx_ci_influencer ON campaign_influencers(influencer_id);
CREATE INDEX IF NOT EXISTS idx_payments_ci ON payments(campaign_influencer_id);
`

const (
	sqliteCampaignColumns = `id, brand_id, retailer, region, name, quarter, products, budget, posting_deadline, status, created_at, updated_at`
	sqlitePaymentColumns  = `id, campaign_influencer_id, amount, date_sent, method, notes, created_at`
)

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Brands

func (s *SQLiteStore) CreateBrand(ctx context.Context, b model.Brand) (*model.Brand, error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO brands (id, name, invoice_email, invoice_instructions, created_at) VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.InvoiceEmail, b.InvoiceInstructions, b.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert brand")
	}
	return &b, nil
}

func (s *SQLiteStore) GetBrand(ctx context.Context, id string) (*model.Brand, error) {
	b, err := scanBrand(s.db.QueryRowContext(ctx, `SELECT `+brandColumns+` FROM brands WHERE id = ?`, id))
	if isNoRows(err) {
		return nil, eris.Wrapf(ErrNotFound, "brand %s", id)
	}
	return b, eris.Wrapf(err, "sqlite: get brand %s", id)
}

func (s *SQLiteStore) ListBrands(ctx context.Context) ([]model.Brand, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+brandColumns+` FROM brands ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list brands")
	}
	defer rows.Close() //nolint:errcheck

	var brands []model.Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan brand")
		}
		brands = append(brands, *b)
	}
	return brands, eris.Wrap(rows.Err(), "sqlite: list brands iterate")
}

// Influencers

func (s *SQLiteStore) CreateInfluencer(ctx context.Context, inf model.Influencer) (*model.Influencer, error) {
	if err := insertInfluencerSQLite(ctx, s.db, &inf); err != nil {
		return nil, err
	}
	return &inf, nil
}

func (s *SQLiteStore) GetInfluencer(ctx context.Context, id string) (*model.Influencer, error) {
	inf, err := scanInfluencer(s.db.QueryRowContext(ctx, `SELECT `+influencerColumns+` FROM influencers WHERE id = ?`, id))
	if isNoRows(err) {
		return nil, eris.Wrapf(ErrNotFound, "influencer %s", id)
	}
	return inf, eris.Wrapf(err, "sqlite: get influencer %s", id)
}

func (s *SQLiteStore) ListInfluencers(ctx context.Context, filter InfluencerFilter) ([]model.Influencer, error) {
	where := newClause(sqlitePlaceholder)
	where.in("id", filter.IDs)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+influencerColumns+` FROM influencers`+where.where()+` ORDER BY name`,
		where.args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list influencers")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Influencer
	for rows.Next() {
		inf, err := scanInfluencer(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan influencer")
		}
		out = append(out, *inf)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list influencers iterate")
}

func (s *SQLiteStore) UpdateInfluencer(ctx context.Context, id string, u InfluencerUpdate) (*model.Influencer, error) {
	set := influencerSet(sqlitePlaceholder, u)
	if len(set.parts) > 0 {
		set.add("updated_at = %s", time.Now().UTC())
		idPh := set.next(id)
		res, err := s.db.ExecContext(ctx, `UPDATE influencers SET `+set.set()+` WHERE id = `+idPh, set.args...)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: update influencer %s", id)
		}
		if err := checkRowsAffected(res, "influencer", id); err != nil {
			return nil, err
		}
	}
	return s.GetInfluencer(ctx, id)
}

// Campaigns

func (s *SQLiteStore) CreateCampaign(ctx context.Context, c model.Campaign, assignments []model.Assignment) (*model.Campaign, error) {
	if err := validateNewCampaign(c, assignments); err != nil {
		return nil, err
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertCampaignSQLite(ctx, tx, &c); err != nil {
			return err
		}
		for i := range assignments {
			assignments[i].CampaignID = c.ID
			if err := insertAssignmentSQLite(ctx, tx, &assignments[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *SQLiteStore) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	c, err := scanCampaign(s.db.QueryRowContext(ctx, `SELECT `+sqliteCampaignColumns+` FROM campaigns WHERE id = ?`, id))
	if isNoRows(err) {
		return nil, eris.Wrapf(ErrNotFound, "campaign %s", id)
	}
	return c, eris.Wrapf(err, "sqlite: get campaign %s", id)
}

func (s *SQLiteStore) ListCampaigns(ctx context.Context, filter CampaignFilter) ([]model.Campaign, error) {
	where := campaignWhere(sqlitePlaceholder, filter)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteCampaignColumns+` FROM campaigns`+where.where()+` ORDER BY created_at DESC, name`,
		where.args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list campaigns")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan campaign")
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list campaigns iterate")
}

// Assignments

func (s *SQLiteStore) CreateAssignment(ctx context.Context, a model.Assignment) (*model.Assignment, error) {
	if err := validateNewAssignment(a); err != nil {
		return nil, err
	}
	if err := insertAssignmentSQLite(ctx, s.db, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *SQLiteStore) GetAssignment(ctx context.Context, id string) (*model.Assignment, error) {
	a, err := scanAssignment(s.db.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM campaign_influencers WHERE id = ?`, id))
	if isNoRows(err) {
		return nil, eris.Wrapf(ErrNotFound, "assignment %s", id)
	}
	return a, eris.Wrapf(err, "sqlite: get assignment %s", id)
}

func (s *SQLiteStore) ListAssignments(ctx context.Context, filter AssignmentFilter) ([]model.Assignment, error) {
	where := assignmentWhere(sqlitePlaceholder, filter)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM campaign_influencers`+where.where()+` ORDER BY created_at, id`,
		where.args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list assignments")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan assignment")
		}
		out = append(out, *a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list assignments iterate")
}

func (s *SQLiteStore) UpdateAssignment(ctx context.Context, id string, u AssignmentUpdate) (*model.Assignment, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if !u.Empty() {
		set := assignmentSet(sqlitePlaceholder, u)
		set.add("updated_at = %s", time.Now().UTC())
		idPh := set.next(id)
		res, err := s.db.ExecContext(ctx, `UPDATE campaign_influencers SET `+set.set()+` WHERE id = `+idPh, set.args...)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: update assignment %s", id)
		}
		if err := checkRowsAffected(res, "assignment", id); err != nil {
			return nil, err
		}
	}
	return s.GetAssignment(ctx, id)
}

// Payments

func (s *SQLiteStore) CreatePayment(ctx context.Context, p model.Payment) (*model.Payment, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (`+sqlitePaymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.AssignmentID, p.Amount, p.DateSent, p.Method, p.Notes, p.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert payment for assignment %s", p.AssignmentID)
	}
	return &p, nil
}

func (s *SQLiteStore) ListPayments(ctx context.Context, filter PaymentFilter) ([]model.Payment, error) {
	where := newClause(sqlitePlaceholder)
	where.in("campaign_influencer_id", filter.AssignmentIDs)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqlitePaymentColumns+` FROM payments`+where.where()+` ORDER BY date_sent DESC, created_at DESC`,
		where.args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list payments")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan payment")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list payments iterate")
}

// Import

func (s *SQLiteStore) WithImportTx(ctx context.Context, fn func(tx ImportTx) error) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return fn(&sqliteImportTx{tx: tx})
	})
}

func (s *SQLiteStore) Counts(ctx context.Context) (*Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM brands),
		(SELECT COUNT(*) FROM influencers),
		(SELECT COUNT(*) FROM campaigns),
		(SELECT COUNT(*) FROM campaign_influencers),
		(SELECT COUNT(*) FROM payments)`,
	).Scan(&c.Brands, &c.Influencers, &c.Campaigns, &c.Assignments, &c.Payments)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: counts")
	}
	return &c, nil
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			zap.L().Warn("sqlite: rollback failed", zap.Error(rbErr))
		}
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit tx")
}

// sqliteImportTx implements ImportTx on an open transaction.
type sqliteImportTx struct {
	tx *sql.Tx
}

func (t *sqliteImportTx) FindInfluencerID(ctx context.Context, name string) (string, bool, error) {
	return sqliteLookupID(ctx, t.tx, "find influencer",
		`SELECT id FROM influencers WHERE LOWER(name) = LOWER(?) LIMIT 1`, name)
}

func (t *sqliteImportTx) InsertInfluencer(ctx context.Context, inf *model.Influencer) error {
	return insertInfluencerSQLite(ctx, t.tx, inf)
}

func (t *sqliteImportTx) FindCampaignID(ctx context.Context, name, quarter, brandID string) (string, bool, error) {
	return sqliteLookupID(ctx, t.tx, "find campaign",
		`SELECT id FROM campaigns WHERE LOWER(name) = LOWER(?) AND quarter = ? AND brand_id = ? LIMIT 1`,
		name, quarter, brandID)
}

func (t *sqliteImportTx) InsertCampaign(ctx context.Context, c *model.Campaign) error {
	return insertCampaignSQLite(ctx, t.tx, c)
}

func (t *sqliteImportTx) AssignmentExists(ctx context.Context, campaignID, influencerID string) (bool, error) {
	_, found, err := sqliteLookupID(ctx, t.tx, "find assignment",
		`SELECT id FROM campaign_influencers WHERE campaign_id = ? AND influencer_id = ? LIMIT 1`,
		campaignID, influencerID)
	return found, err
}

func (t *sqliteImportTx) InsertAssignment(ctx context.Context, a *model.Assignment) error {
	return insertAssignmentSQLite(ctx, t.tx, a)
}

// helpers

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func sqliteLookupID(ctx context.Context, q execer, op, query string, args ...any) (string, bool, error) {
	var id string
	err := q.QueryRowContext(ctx, query, args...).Scan(&id)
	if isNoRows(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrapf(err, "sqlite: %s", op)
	}
	return id, true, nil
}

func insertInfluencerSQLite(ctx context.Context, q execer, inf *model.Influencer) error {
	if inf.ID == "" {
		inf.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	inf.CreatedAt, inf.UpdatedAt = now, now
	_, err := q.ExecContext(ctx,
		`INSERT INTO influencers (`+influencerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inf.ID, inf.Name, inf.Handle, inf.Email, platformArg(inf.Platform), inf.ContentType,
		inf.Location, inf.Rate, inf.FollowerCount, inf.Notes, inf.PerformanceRating, now, now,
	)
	return eris.Wrapf(err, "sqlite: insert influencer %q", inf.Name)
}

func insertCampaignSQLite(ctx context.Context, q execer, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = model.CampaignActive
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := q.ExecContext(ctx,
		`INSERT INTO campaigns (`+sqliteCampaignColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.BrandID, c.Retailer, c.Region, c.Name, c.Quarter, c.Products, c.Budget,
		c.PostingDeadline, string(c.Status), now, now,
	)
	return eris.Wrapf(err, "sqlite: insert campaign %q", c.Name)
}

func insertAssignmentSQLite(ctx context.Context, q execer, a *model.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	_, err := q.ExecContext(ctx,
		`INSERT INTO campaign_influencers (`+assignmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CampaignID, a.InfluencerID, string(a.PipelineStage), a.Deliverable,
		string(a.W9Status), string(a.InvoiceStatus), string(a.PaymentStatus), now, now,
	)
	return eris.Wrapf(err, "sqlite: insert assignment %s/%s", a.CampaignID, a.InfluencerID)
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}
