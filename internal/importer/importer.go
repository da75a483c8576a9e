// Package importer loads the legacy coordination workbook into the store.
//
// A run is staged: every tab is parsed, the records are validated, influencers
// are merged across tabs, a plan is built and finally applied in a single
// transaction. Nothing is written unless the whole plan applies.
package importer

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/influencer-os/internal/store"
)

// TrackerSheet names a tracker tab and the quarter its rows belong to.
type TrackerSheet struct {
	Sheet   string `yaml:"sheet" mapstructure:"sheet"`
	Quarter string `yaml:"quarter" mapstructure:"quarter"`
}

// Options configures an import run.
type Options struct {
	BrandID           string
	RosterSheet       string
	Trackers          []TrackerSheet
	CompletedQuarters []string
	Retailers         RetailerAliases
	DryRun            bool
}

// Importer runs the staged import against a store.
type Importer struct {
	store store.Store
	opts  Options
}

// New creates an Importer. st may be nil for dry runs.
func New(st store.Store, opts Options) *Importer {
	if opts.Retailers.Exact == nil && opts.Retailers.Prefix == nil {
		opts.Retailers = DefaultRetailerAliases()
	}
	return &Importer{store: st, opts: opts}
}

// Layouts returns the tab readers in merge order: trackers, then the roster.
func (im *Importer) Layouts() []Layout {
	layouts := make([]Layout, 0, len(im.opts.Trackers)+1)
	for _, t := range im.opts.Trackers {
		layouts = append(layouts, TrackerLayout{Sheet: t.Sheet, Quarter: t.Quarter, Retailers: im.opts.Retailers})
	}
	if im.opts.RosterSheet != "" {
		layouts = append(layouts, RosterLayout{Sheet: im.opts.RosterSheet})
	}
	return layouts
}

// Run parses, validates, plans and (unless DryRun) applies wb.
func (im *Importer) Run(ctx context.Context, wb Workbook) (*Report, error) {
	log := zap.L().With(zap.String("brand_id", im.opts.BrandID), zap.Bool("dry_run", im.opts.DryRun))

	rep := &Report{Sheets: wb.SheetNames(), DryRun: im.opts.DryRun}

	parsed := ParseWorkbook(wb, im.Layouts())
	for _, p := range parsed {
		rep.Sources = append(rep.Sources, SourceSummary{
			Sheet:       p.Sheet,
			Influencers: len(p.Influencers),
			Assignments: len(p.Assignments),
		})
		log.Info("import: parsed sheet",
			zap.String("sheet", p.Sheet),
			zap.Int("influencers", len(p.Influencers)),
			zap.Int("assignments", len(p.Assignments)),
			zap.Int("rejections", len(p.Rejections)),
		)
	}

	validated := Validate(parsed)
	rep.Rejections = validated.Rejections

	plan := BuildPlan(im.opts.BrandID, validated, im.opts.CompletedQuarters)
	rep.UniqueInfluencers = len(plan.Influencers)
	rep.PlannedCampaigns = len(plan.Campaigns)
	rep.PlannedAssignments = len(plan.Assignments)

	if im.opts.DryRun {
		log.Info("import: dry run, nothing written")
		return rep, nil
	}

	if im.store == nil {
		return nil, eris.New("importer: store is required unless dry run")
	}
	if _, err := im.store.GetBrand(ctx, im.opts.BrandID); err != nil {
		return nil, eris.Wrapf(err, "importer: brand %q", im.opts.BrandID)
	}

	res, err := Apply(ctx, im.store, plan)
	if err != nil {
		return nil, eris.Wrap(err, "importer: apply (rolled back)")
	}
	rep.Result = res
	log.Info("import: committed",
		zap.Int("influencers_inserted", res.Influencers.Inserted),
		zap.Int("campaigns_inserted", res.Campaigns.Inserted),
		zap.Int("assignments_inserted", res.Assignments.Inserted),
		zap.Int("assignments_unmatched", res.Assignments.Unmatched),
	)

	counts, err := im.store.Counts(ctx)
	if err != nil {
		return nil, err
	}
	rep.Counts = counts
	return rep, nil
}
