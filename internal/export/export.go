// Package export renders dashboard reports as spreadsheets.
package export

import (
	"bytes"
	"io"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/sells-group/influencer-os/internal/dashboard"
	"github.com/sells-group/influencer-os/internal/model"
)

// Sheet names in workbook order.
const (
	SheetSummary        = "Summary"
	SheetCampaigns      = "Campaigns"
	SheetPipeline       = "Pipeline"
	SheetTopInfluencers = "Top Influencers"
)

// ContentType is the MIME type of an .xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Filename is the suggested download name for a reports workbook.
const Filename = "influencer-reports.xlsx"

// ReportsWorkbook builds a workbook with one sheet per reports section.
func ReportsWorkbook(r *dashboard.Reports) (*excelize.File, error) {
	if r == nil {
		return nil, eris.New("export: nil reports")
	}

	xl := excelize.NewFile()
	if err := xl.SetSheetName(xl.GetSheetName(0), SheetSummary); err != nil {
		_ = xl.Close()
		return nil, eris.Wrap(err, "export: rename default sheet")
	}
	for _, name := range []string{SheetCampaigns, SheetPipeline, SheetTopInfluencers} {
		if _, err := xl.NewSheet(name); err != nil {
			_ = xl.Close()
			return nil, eris.Wrapf(err, "export: new sheet %s", name)
		}
	}

	w := &sheetWriter{xl: xl}
	w.rows(SheetSummary, []any{"Metric", "Value"}, [][]any{
		{"Total campaigns", r.Summary.TotalCampaigns},
		{"Total influencers", r.Summary.TotalInfluencers},
		{"Total budget", r.Summary.TotalBudget},
		{"Total paid", r.Summary.TotalPaid},
	})

	campaigns := make([][]any, 0, len(r.Campaigns))
	for _, c := range r.Campaigns {
		campaigns = append(campaigns, []any{
			c.Name, model.Deref(c.Retailer), model.Deref(c.Quarter), c.Status,
			c.InfluencerCount, c.Budget, c.PaidOut, c.CompletionRate,
		})
	}
	w.rows(SheetCampaigns, []any{
		"Campaign", "Retailer", "Quarter", "Status", "Influencers", "Budget", "Paid out", "Completion %",
	}, campaigns)

	pipeline := make([][]any, 0, len(r.Pipeline))
	for _, p := range r.Pipeline {
		pipeline = append(pipeline, []any{p.Label, p.Count})
	}
	w.rows(SheetPipeline, []any{"Stage", "Count"}, pipeline)

	top := make([][]any, 0, len(r.TopInfluencers))
	for _, t := range r.TopInfluencers {
		top = append(top, []any{
			t.Name, model.Deref(t.Handle), t.CampaignCount, t.TotalEarned, t.AvgStageLabel,
		})
	}
	w.rows(SheetTopInfluencers, []any{"Influencer", "Handle", "Campaigns", "Total earned", "Avg stage"}, top)

	if w.err != nil {
		_ = xl.Close()
		return nil, w.err
	}
	xl.SetActiveSheet(0)
	return xl, nil
}

// WriteReports writes the reports workbook to out.
func WriteReports(out io.Writer, r *dashboard.Reports) error {
	xl, err := ReportsWorkbook(r)
	if err != nil {
		return err
	}
	defer xl.Close() //nolint:errcheck

	_, err = xl.WriteTo(out)
	return eris.Wrap(err, "export: write workbook")
}

// ReportsBytes renders the reports workbook in memory.
func ReportsBytes(r *dashboard.Reports) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteReports(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveReports writes the reports workbook to path.
func SaveReports(path string, r *dashboard.Reports) error {
	xl, err := ReportsWorkbook(r)
	if err != nil {
		return err
	}
	defer xl.Close() //nolint:errcheck

	return eris.Wrapf(xl.SaveAs(path), "export: save %s", path)
}

// sheetWriter keeps the first error so callers check once.
type sheetWriter struct {
	xl  *excelize.File
	err error
}

func (w *sheetWriter) rows(sheet string, header []any, rows [][]any) {
	w.row(sheet, 1, header)
	for i, r := range rows {
		w.row(sheet, i+2, r)
	}
}

func (w *sheetWriter) row(sheet string, n int, values []any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		w.err = eris.Wrapf(err, "export: %s row %d", sheet, n)
		return
	}
	if err := w.xl.SetSheetRow(sheet, cell, &values); err != nil {
		w.err = eris.Wrapf(err, "export: %s row %d", sheet, n)
	}
}
