package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/influencer-os/internal/db"
	"github.com/sells-group/influencer-os/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const (
	pgCampaignColumns = `id, brand_id, retailer, region, name, quarter, products, budget, posting_deadline::text, status, created_at, updated_at`
	pgPaymentColumns  = `id, campaign_influencer_id, amount, date_sent::text, method, notes, created_at`
)

// preparedStatements lists the importer lookups, prepared on each new
// connection since they run once per spreadsheet row.
var preparedStatements = map[string]string{
	"find_influencer": `SELECT id FROM influencers WHERE LOWER(name) = LOWER($1) LIMIT 1`,
	"find_campaign":   `SELECT id FROM campaigns WHERE LOWER(name) = LOWER($1) AND quarter = $2 AND brand_id = $3 LIMIT 1`,
	"find_assignment": `SELECT id FROM campaign_influencers WHERE campaign_id = $1 AND influencer_id = $2 LIMIT 1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS brands (
	id                   TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name                 TEXT NOT NULL,
	invoice_email        TEXT,
	invoice_instructions TEXT,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS influencers (
	id                 TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name               TEXT NOT NULL,
	handle             TEXT,
	email              TEXT,
	platform           TEXT CHECK (platform IN ('instagram', 'tiktok', 'youtube', 'twitter')),
	content_type       TEXT,
	location           TEXT,
	rate               DOUBLE PRECISION,
	follower_count     BIGINT,
	notes              TEXT,
	performance_rating DOUBLE PRECISION,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS campaigns (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	brand_id         TEXT NOT NULL REFERENCES brands(id),
	retailer         TEXT,
	region           TEXT,
	name             TEXT NOT NULL,
	quarter          TEXT,
	products         TEXT,
	budget           DOUBLE PRECISION,
	posting_deadline DATE,
	status           TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'completed')),
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS campaign_influencers (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	campaign_id    TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
	influencer_id  TEXT NOT NULL REFERENCES influencers(id) ON DELETE CASCADE,
	pipeline_stage TEXT NOT NULL DEFAULT 'contacted' CHECK (pipeline_stage IN
		('contacted', 'brief_sent', 'content_received', 'w9_done', 'invoice_received', 'paid', 'posted')),
	deliverable    TEXT,
	w9_status      TEXT NOT NULL DEFAULT 'pending' CHECK (w9_status IN
		('not_required', 'pending', 'sent', 'received', 'complete')),
	invoice_status TEXT NOT NULL DEFAULT 'pending' CHECK (invoice_status IN ('pending', 'sent', 'received', 'paid')),
	payment_status TEXT NOT NULL DEFAULT 'unpaid' CHECK (payment_status IN ('unpaid', 'processing', 'paid')),
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (campaign_id, influencer_id)
);

CREATE TABLE IF NOT EXISTS payments (
	id                     TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	campaign_influencer_id TEXT NOT NULL REFERENCES campaign_influencers(id) ON DELETE CASCADE,
	amount                 DOUBLE PRECISION,
	date_sent              DATE,
	method                 TEXT,
	notes                  TEXT,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS documents (
	id                     TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	campaign_influencer_id TEXT NOT NULL REFERENCES campaign_influencers(id) ON DELETE CASCADE,
	type                   TEXT NOT NULL,
	file_url               TEXT,
	uploaded_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_influencers_name ON influencers(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_campaigns_brand ON campaigns(brand_id);
CREATE INDEX IF NOT EXISTS idx_campaigns_name_quarter ON campaigns(LOWER(name), quarter);
CREATE INDEX IF NOT EXISTS idx_ci_campaign ON campaign_influencers(campaign_id);
CREATE INDEX IF NOT EXISTS idx_ci_influencer ON campaign_influencers(influencer_id);
CREATE INDEX IF NOT EXISTS idx_payments_ci ON payments(campaign_influencer_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Brands

func (s *PostgresStore) CreateBrand(ctx context.Context, b model.Brand) (*model.Brand, error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO brands (id, name, invoice_email, invoice_instructions, created_at) VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.Name, b.InvoiceEmail, b.InvoiceInstructions, b.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert brand")
	}
	return &b, nil
}

func (s *PostgresStore) GetBrand(ctx context.Context, id string) (*model.Brand, error) {
	b, err := scanBrand(s.pool.QueryRow(ctx, `SELECT `+brandColumns+` FROM brands WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, eris.Wrapf(ErrNotFound, "brand %s", id)
	}
	return b, eris.Wrapf(err, "postgres: get brand %s", id)
}

func (s *PostgresStore) ListBrands(ctx context.Context) ([]model.Brand, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+brandColumns+` FROM brands ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list brands")
	}
	defer rows.Close()

	var brands []model.Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan brand")
		}
		brands = append(brands, *b)
	}
	return brands, eris.Wrap(rows.Err(), "postgres: list brands iterate")
}

// Influencers

func (s *PostgresStore) CreateInfluencer(ctx context.Context, inf model.Influencer) (*model.Influencer, error) {
	if err := insertInfluencerPostgres(ctx, s.pool, &inf); err != nil {
		return nil, err
	}
	return &inf, nil
}

func (s *PostgresStore) GetInfluencer(ctx context.Context, id string) (*model.Influencer, error) {
	inf, err := scanInfluencer(s.pool.QueryRow(ctx, `SELECT `+influencerColumns+` FROM influencers WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, eris.Wrapf(ErrNotFound, "influencer %s", id)
	}
	return inf, eris.Wrapf(err, "postgres: get influencer %s", id)
}

func (s *PostgresStore) ListInfluencers(ctx context.Context, filter InfluencerFilter) ([]model.Influencer, error) {
	where := newClause(postgresPlaceholder)
	where.in("id", filter.IDs)

	rows, err := s.pool.Query(ctx,
		`SELECT `+influencerColumns+` FROM influencers`+where.where()+` ORDER BY name`,
		where.args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list influencers")
	}
	defer rows.Close()

	var out []model.Influencer
	for rows.Next() {
		inf, err := scanInfluencer(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan influencer")
		}
		out = append(out, *inf)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list influencers iterate")
}

func (s *PostgresStore) UpdateInfluencer(ctx context.Context, id string, u InfluencerUpdate) (*model.Influencer, error) {
	set := influencerSet(postgresPlaceholder, u)
	if len(set.parts) > 0 {
		set.add("updated_at = %s", time.Now().UTC())
		idPh := set.next(id)
		tag, err := s.pool.Exec(ctx, `UPDATE influencers SET `+set.set()+` WHERE id = `+idPh, set.args...)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: update influencer %s", id)
		}
		if tag.RowsAffected() == 0 {
			return nil, eris.Wrapf(ErrNotFound, "influencer %s", id)
		}
	}
	return s.GetInfluencer(ctx, id)
}

// Campaigns

func (s *PostgresStore) CreateCampaign(ctx context.Context, c model.Campaign, assignments []model.Assignment) (*model.Campaign, error) {
	if err := validateNewCampaign(c, assignments); err != nil {
		return nil, err
	}
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := insertCampaignPostgres(ctx, tx, &c); err != nil {
			return err
		}
		for i := range assignments {
			assignments[i].CampaignID = c.ID
			if err := insertAssignmentPostgres(ctx, tx, &assignments[i]); err != nil {
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

func (s *PostgresStore) GetCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	c, err := scanCampaign(s.pool.QueryRow(ctx, `SELECT `+pgCampaignColumns+` FROM campaigns WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, eris.Wrapf(ErrNotFound, "campaign %s", id)
	}
	return c, eris.Wrapf(err, "postgres: get campaign %s", id)
}

func (s *PostgresStore) ListCampaigns(ctx context.Context, filter CampaignFilter) ([]model.Campaign, error) {
	where := campaignWhere(postgresPlaceholder, filter)
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgCampaignColumns+` FROM campaigns`+where.where()+` ORDER BY created_at DESC, name`,
		where.args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list campaigns")
	}
	defer rows.Close()

	var out []model.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan campaign")
		}
		out = append(out, *c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list campaigns iterate")
}

// Assignments

func (s *PostgresStore) CreateAssignment(ctx context.Context, a model.Assignment) (*model.Assignment, error) {
	if err := validateNewAssignment(a); err != nil {
		return nil, err
	}
	if err := insertAssignmentPostgres(ctx, s.pool, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) GetAssignment(ctx context.Context, id string) (*model.Assignment, error) {
	a, err := scanAssignment(s.pool.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM campaign_influencers WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, eris.Wrapf(ErrNotFound, "assignment %s", id)
	}
	return a, eris.Wrapf(err, "postgres: get assignment %s", id)
}

func (s *PostgresStore) ListAssignments(ctx context.Context, filter AssignmentFilter) ([]model.Assignment, error) {
	where := assignmentWhere(postgresPlaceholder, filter)
	rows, err := s.pool.Query(ctx,
		`SELECT `+assignmentColumns+` FROM campaign_influencers`+where.where()+` ORDER BY created_at, id`,
		where.args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list assignments")
	}
	defer rows.Close()

	var out []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan assignment")
		}
		out = append(out, *a)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list assignments iterate")
}

func (s *PostgresStore) UpdateAssignment(ctx context.Context, id string, u AssignmentUpdate) (*model.Assignment, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if !u.Empty() {
		set := assignmentSet(postgresPlaceholder, u)
		set.add("updated_at = %s", time.Now().UTC())
		idPh := set.next(id)
		tag, err := s.pool.Exec(ctx, `UPDATE campaign_influencers SET `+set.set()+` WHERE id = `+idPh, set.args...)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: update assignment %s", id)
		}
		if tag.RowsAffected() == 0 {
			return nil, eris.Wrapf(ErrNotFound, "assignment %s", id)
		}
	}
	return s.GetAssignment(ctx, id)
}

// Payments

func (s *PostgresStore) CreatePayment(ctx context.Context, p model.Payment) (*model.Payment, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO payments (id, campaign_influencer_id, amount, date_sent, method, notes, created_at)
		 VALUES ($1, $2, $3, $4::date, $5, $6, $7)`,
		p.ID, p.AssignmentID, p.Amount, p.DateSent, p.Method, p.Notes, p.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert payment for assignment %s", p.AssignmentID)
	}
	return &p, nil
}

func (s *PostgresStore) ListPayments(ctx context.Context, filter PaymentFilter) ([]model.Payment, error) {
	where := newClause(postgresPlaceholder)
	where.in("campaign_influencer_id", filter.AssignmentIDs)
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgPaymentColumns+` FROM payments`+where.where()+` ORDER BY date_sent DESC NULLS LAST, created_at DESC`,
		where.args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list payments")
	}
	defer rows.Close()

	var out []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan payment")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list payments iterate")
}

// Import

func (s *PostgresStore) WithImportTx(ctx context.Context, fn func(tx ImportTx) error) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&postgresImportTx{tx: tx})
	})
}

func (s *PostgresStore) Counts(ctx context.Context) (*Counts, error) {
	var c Counts
	err := s.pool.QueryRow(ctx, `SELECT
		(SELECT COUNT(*) FROM brands),
		(SELECT COUNT(*) FROM influencers),
		(SELECT COUNT(*) FROM campaigns),
		(SELECT COUNT(*) FROM campaign_influencers),
		(SELECT COUNT(*) FROM payments)`,
	).Scan(&c.Brands, &c.Influencers, &c.Campaigns, &c.Assignments, &c.Payments)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: counts")
	}
	return &c, nil
}

// postgresImportTx implements ImportTx on an open transaction.
type postgresImportTx struct {
	tx pgx.Tx
}

func (t *postgresImportTx) FindInfluencerID(ctx context.Context, name string) (string, bool, error) {
	return pgLookupID(ctx, t.tx, "find influencer", preparedStatements["find_influencer"], name)
}

func (t *postgresImportTx) InsertInfluencer(ctx context.Context, inf *model.Influencer) error {
	return insertInfluencerPostgres(ctx, t.tx, inf)
}

func (t *postgresImportTx) FindCampaignID(ctx context.Context, name, quarter, brandID string) (string, bool, error) {
	return pgLookupID(ctx, t.tx, "find campaign", preparedStatements["find_campaign"], name, quarter, brandID)
}

func (t *postgresImportTx) InsertCampaign(ctx context.Context, c *model.Campaign) error {
	return insertCampaignPostgres(ctx, t.tx, c)
}

func (t *postgresImportTx) AssignmentExists(ctx context.Context, campaignID, influencerID string) (bool, error) {
	_, found, err := pgLookupID(ctx, t.tx, "find assignment", preparedStatements["find_assignment"], campaignID, influencerID)
	return found, err
}

func (t *postgresImportTx) InsertAssignment(ctx context.Context, a *model.Assignment) error {
	return insertAssignmentPostgres(ctx, t.tx, a)
}

// helpers

// pgExecer is satisfied by db.Pool and pgx.Tx.
type pgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func pgLookupID(ctx context.Context, q pgExecer, op, query string, args ...any) (string, bool, error) {
	var id string
	err := q.QueryRow(ctx, query, args...).Scan(&id)
	if isNoRows(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrapf(err, "postgres: %s", op)
	}
	return id, true, nil
}

func insertInfluencerPostgres(ctx context.Context, q pgExecer, inf *model.Influencer) error {
	if inf.ID == "" {
		inf.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	inf.CreatedAt, inf.UpdatedAt = now, now
	_, err := q.Exec(ctx,
		`INSERT INTO influencers (`+influencerColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		inf.ID, inf.Name, inf.Handle, inf.Email, platformArg(inf.Platform), inf.ContentType,
		inf.Location, inf.Rate, inf.FollowerCount, inf.Notes, inf.PerformanceRating, now, now,
	)
	return eris.Wrapf(err, "postgres: insert influencer %q", inf.Name)
}

func insertCampaignPostgres(ctx context.Context, q pgExecer, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = model.CampaignActive
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := q.Exec(ctx,
		`INSERT INTO campaigns (id, brand_id, retailer, region, name, quarter, products, budget, posting_deadline, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::date, $10, $11, $12)`,
		c.ID, c.BrandID, c.Retailer, c.Region, c.Name, c.Quarter, c.Products, c.Budget,
		c.PostingDeadline, string(c.Status), now, now,
	)
	return eris.Wrapf(err, "postgres: insert campaign %q", c.Name)
}

func insertAssignmentPostgres(ctx context.Context, q pgExecer, a *model.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	_, err := q.Exec(ctx,
		`INSERT INTO campaign_influencers (`+assignmentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.CampaignID, a.InfluencerID, string(a.PipelineStage), a.Deliverable,
		string(a.W9Status), string(a.InvoiceStatus), string(a.PaymentStatus), now, now,
	)
	return eris.Wrapf(err, "postgres: insert assignment %s/%s", a.CampaignID, a.InfluencerID)
}
