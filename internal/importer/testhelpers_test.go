package importer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/influencer-os/internal/model"
	"github.com/sells-group/influencer-os/internal/store"
)

const (
	rosterSheet = "Influencers"
	sheet2025   = "2025 Influencer Tracker"
	sheet2026   = "2026 Influencer Tracker"
)

func row(cells ...Cell) Row { return Row(cells) }

func texts(vals ...string) Row {
	r := make(Row, len(vals))
	for i, v := range vals {
		r[i] = Text(v)
	}
	return r
}

func rosterRows() []Row {
	return []Row{
		texts("Name", "Email", "IG Handle", "IG Followers", "TikTok Handle", "TikTok Followers", "Content Type", "Location", "Rates"),
		row(Text("Jane Doe"), Text("Jane Doe <JANE@X.COM>"), Text("@janedoe"), Num(15000), Text(""), Text(""),
			Text("Recipe"), Text("Austin, TX"), Text("$450 reel\n$200 story")),
		row(Text("Dana Lee"), Text("dana@y.com"), Text(""), Text(""), Text("@danalee (main)"), Text("218k"),
			Text("Beauty"), Text("LA"), Text("")),
		texts("", "orphan@y.com"),
	}
}

func tracker2025Rows() []Row {
	header := texts("Name", "Email", "IG Handle", "Follower Count (~)", "TikTok Handle", "Follower Count (~)",
		"Content Type", "Retailer", "Campaign", "Product", "Deliverables", "Price", "Posting Date",
		"Content Recieved", "W9 Recieved", "Invoice", "Paid?", "Partnership Post")
	return []Row{
		texts("Miss Jones 2025 Influencer Tracker"),
		header,
		row(Text("Jane Doe"), Text("jane@x.com"), Text("@janedoe"), Text("16.2K"), Text(""), Text(""),
			Text("Recipe"), Text("WF"), Text("Holiday"), Text("Bars"), Text("1 reel"), Text("$500"), Num(45945),
			Text("yes"), Text("yes"), Text("yes"), Text("yes"), Text("")),
		texts("Q4 TTL"),
		row(Text("Bob Smith"), Text(""), Text(""), Text(""), Text("@bobtt"), Text("1.1M"),
			Text("Lifestyle"), Text(""), Text("Costco"), Text("Cookies"), Text("2 TikToks"), Num(800), Num(45950),
			Text("yes"), Text(""), Text(""), Text(""), Text("")),
		texts("Carol White", "carol@z.com", "@carolw"),
		texts(""),
		texts("", "stray@z.com"),
		row(Text("Jane Doe"), Text(""), Text("@janedoe"), Text(""), Text(""), Text(""),
			Text(""), Text("Whole Foods "), Text("Holiday"), Text("Cookies"), Text(""), Text(""), Num(45960),
			Text(""), Text(""), Text(""), Text(""), Text("y")),
	}
}

func tracker2026Rows() []Row {
	return []Row{
		texts("Name", "Email", "IG Handle", "Follower Count (~)", "Campaign", "Product", "Deliverables",
			"Price", "Posting Date", "Paid", "Invoice", "W9 Recieved"),
		row(Text("jane  doe"), Text(""), Text("@janedoe"), Text("17K"), Text("Walmart "), Text("Protein Bars"),
			Text("1 reel"), Text("$600"), Num(46040), Text(""), Text(""), Text("y")),
	}
}

func fixtureWorkbook() *MemoryWorkbook {
	wb := NewMemoryWorkbook()
	wb.AddSheet(rosterSheet, rosterRows())
	wb.AddSheet(sheet2025, tracker2025Rows())
	wb.AddSheet(sheet2026, tracker2026Rows())
	wb.AddSheet("Budget", []Row{texts("ignored")})
	return wb
}

func fixtureOptions(brandID string) Options {
	return Options{
		BrandID:     brandID,
		RosterSheet: rosterSheet,
		Trackers: []TrackerSheet{
			{Sheet: sheet2025, Quarter: "Q4 2025"},
			{Sheet: sheet2026, Quarter: "Q1 2026"},
		},
		CompletedQuarters: []string{"Q4 2025"},
	}
}

// writeXLSX saves wb as an .xlsx file, keeping numeric cells numeric.
func writeXLSX(t *testing.T, wb *MemoryWorkbook) string {
	t.Helper()
	f := xlsx.NewFile()
	for _, name := range wb.SheetNames() {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		rows, _ := wb.Sheet(name)
		for _, r := range rows {
			xr := sheet.AddRow()
			for _, c := range r {
				cell := xr.AddCell()
				if c.IsNumber {
					cell.SetFloat(c.Number)
				} else {
					cell.SetString(c.Text)
				}
			}
		}
	}
	path := filepath.Join(t.TempDir(), "coordination.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func newTestStore(t *testing.T) (store.Store, *model.Brand) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	brand, err := st.CreateBrand(context.Background(), model.Brand{Name: "Miss Jones"})
	require.NoError(t, err)
	return st, brand
}
