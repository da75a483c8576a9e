package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/sells-group/influencer-os/internal/store"
)

// SourceSummary counts what one tab produced.
type SourceSummary struct {
	Sheet       string `json:"sheet"`
	Influencers int    `json:"influencers"`
	Assignments int    `json:"assignments"`
}

// Report summarizes an import run.
type Report struct {
	Sheets             []string        `json:"sheets"`
	Sources            []SourceSummary `json:"sources"`
	Rejections         []Rejection     `json:"rejections"`
	UniqueInfluencers  int             `json:"unique_influencers"`
	PlannedCampaigns   int             `json:"planned_campaigns"`
	PlannedAssignments int             `json:"planned_assignments"`
	DryRun             bool            `json:"dry_run"`
	Result             *ApplyResult    `json:"result,omitempty"`
	Counts             *store.Counts   `json:"counts,omitempty"`
}

const rule = "=============================================="

// Write prints the human-readable summary.
func (r *Report) Write(w io.Writer) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "  InfluencerOS spreadsheet import")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[1] Workbook")
	fmt.Fprintf(w, "    Sheets found: %s\n\n", strings.Join(r.Sheets, ", "))

	fmt.Fprintln(w, "[2] Parsed")
	for _, s := range r.Sources {
		fmt.Fprintf(w, "    %-28s %4d influencers, %4d assignments\n", s.Sheet+":", s.Influencers, s.Assignments)
	}
	fmt.Fprintf(w, "    After de-duplication: %d unique influencers\n", r.UniqueInfluencers)
	fmt.Fprintf(w, "    Campaigns planned:    %d\n", r.PlannedCampaigns)
	fmt.Fprintf(w, "    Assignments planned:  %d\n\n", r.PlannedAssignments)

	fmt.Fprintf(w, "[3] Rejected rows: %d\n", len(r.Rejections))
	for _, rej := range r.Rejections {
		if rej.Row > 0 {
			fmt.Fprintf(w, "    %s row %d: %s\n", rej.Sheet, rej.Row, rej.Reason)
		} else {
			fmt.Fprintf(w, "    %s: %s\n", rej.Sheet, rej.Reason)
		}
	}
	fmt.Fprintln(w)

	if r.DryRun || r.Result == nil {
		fmt.Fprintln(w, "[4] Dry run: nothing written.")
		return
	}

	fmt.Fprintln(w, "[4] Applied (transaction committed)")
	writeCounter(w, "Influencers", r.Result.Influencers)
	writeCounter(w, "Campaigns", r.Result.Campaigns)
	writeCounter(w, "Assignments", r.Result.Assignments)
	fmt.Fprintln(w)

	if r.Counts != nil {
		fmt.Fprintln(w, rule)
		fmt.Fprintln(w, "  IMPORT SUMMARY")
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "  Influencers in DB:      %d\n", r.Counts.Influencers)
		fmt.Fprintf(w, "  Campaigns in DB:        %d\n", r.Counts.Campaigns)
		fmt.Fprintf(w, "  Assignments in DB:      %d\n", r.Counts.Assignments)
		fmt.Fprintf(w, "  Payments in DB:         %d\n", r.Counts.Payments)
		fmt.Fprintln(w, rule)
	}
}

func writeCounter(w io.Writer, label string, c Counter) {
	fmt.Fprintf(w, "    %-12s %d inserted, %d skipped, %d unmatched\n", label+":", c.Inserted, c.Skipped, c.Unmatched)
}
