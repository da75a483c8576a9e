package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/influencer-os/internal/model"
)

func TestParseFollowerCount(t *testing.T) {
	tests := []struct {
		name string
		in   Cell
		want *int64
	}{
		{"thousands upper", Text("16.2K"), model.Ptr(int64(16200))},
		{"millions", Text("1.1M"), model.Ptr(int64(1100000))},
		{"thousands lower", Text("218k"), model.Ptr(int64(218000))},
		{"space before suffix", Text("45 k"), model.Ptr(int64(45000))},
		{"number", Num(11000), model.Ptr(int64(11000))},
		{"fractional number rounds", Num(1234.5), model.Ptr(int64(1235))},
		{"commas", Text("11,000"), model.Ptr(int64(11000))},
		{"text with trailing words", Text("12000 followers"), model.Ptr(int64(12000))},
		{"empty", Text(""), nil},
		{"whitespace", Text("   "), nil},
		{"garbage", Text("abc"), nil},
		{"unset cell", Cell{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFollowerCount(tt.in))
		})
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		name string
		in   Cell
		want *float64
	}{
		{"dollars and commas", Text("$1,200"), model.Ptr(1200.0)},
		{"plain", Text("500"), model.Ptr(500.0)},
		{"number passes through", Num(350.5), model.Ptr(350.5)},
		{"empty", Text(""), nil},
		{"text", Text("TBD"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRate(tt.in))
		})
	}
}

func TestParseRosterRate(t *testing.T) {
	assert.Equal(t, model.Ptr(500.0), ParseRosterRate(Text("$500 reel\n$300 story")))
	assert.Equal(t, model.Ptr(1500.0), ParseRosterRate(Text("1,500 per post")))
	assert.Equal(t, model.Ptr(250.0), ParseRosterRate(Num(250)))
	assert.Nil(t, ParseRosterRate(Text("ask manager")))
	assert.Nil(t, ParseRosterRate(Text("")))
}

func TestCleanHandle(t *testing.T) {
	tests := []struct {
		in   string
		want *string
	}{
		{"@ginafoodie", model.Ptr("ginafoodie")},
		{"ginafoodie (YT)", model.Ptr("ginafoodie")},
		{"  @snack.queen  ", model.Ptr("snack.queen")},
		{"someone@example.com", nil},
		{"http://x.com", nil},
		{"linktr.ee/foo.com", nil},
		{"@", nil},
		{"", nil},
		{"(TikTok)", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanHandle(tt.in))
		})
	}
}

func TestCleanEmail(t *testing.T) {
	assert.Equal(t, model.Ptr("jane@example.com"), CleanEmail("Jane@Example.com"))
	assert.Equal(t, model.Ptr("mgr+ugc@agency.co"), CleanEmail("Manager: Bob - mgr+ugc@agency.co (cc jane)"))
	assert.Nil(t, CleanEmail("no email on file"))
	assert.Nil(t, CleanEmail(""))
}

func TestDetectPlatform(t *testing.T) {
	ig := model.Ptr(model.PlatformInstagram)
	tt := model.Ptr(model.PlatformTikTok)

	assert.Equal(t, ig, DetectPlatform(Text("@gina"), Text("")))
	assert.Equal(t, ig, DetectPlatform(Text("@gina"), Text("@gina.tt")))
	assert.Equal(t, tt, DetectPlatform(Text(" "), Text("@gina.tt")))
	assert.Nil(t, DetectPlatform(Text(""), Text("")))
}

func TestPickByPlatform(t *testing.T) {
	ig := model.Ptr(model.PlatformInstagram)
	tt := model.Ptr(model.PlatformTikTok)

	assert.Equal(t, "ig", *pickByPlatform(ig, model.Ptr("ig"), model.Ptr("tt")))
	assert.Equal(t, "tt", *pickByPlatform(tt, model.Ptr("ig"), model.Ptr("tt")))
	assert.Equal(t, "ig", *pickByPlatform(tt, model.Ptr("ig"), nil))
	assert.Equal(t, int64(5), *pickByPlatform(ig, model.Ptr(int64(0)), model.Ptr(int64(5))))
	assert.Nil(t, pickByPlatform[string](nil, nil, nil))
}

func TestSerialToDate(t *testing.T) {
	assert.Equal(t, model.Ptr("2025-10-15"), SerialToDate(Num(45945)))
	assert.Equal(t, model.Ptr("1970-01-01"), SerialToDate(Num(25569)))
	assert.Equal(t, model.Ptr("2025-10-15"), SerialToDate(Num(45945.75)))
	assert.Nil(t, SerialToDate(Num(0)))
	assert.Nil(t, SerialToDate(Text("10/15/2025")))
	assert.Nil(t, SerialToDate(Cell{}))
}

func TestInferStatuses(t *testing.T) {
	row := func(cells map[string]string) (func(string) string, func(string) bool) {
		get := func(label string) string { return cells[label] }
		has := func(label string) bool { _, ok := cells[label]; return ok }
		return get, has
	}

	tests := []struct {
		name  string
		cells map[string]string
		want  Statuses
	}{
		{
			name:  "nothing checked",
			cells: map[string]string{},
			want:  Statuses{model.StageContacted, model.W9Pending, model.InvoicePending, model.PaymentUnpaid},
		},
		{
			name:  "paid wins",
			cells: map[string]string{"Paid?": "YES", "Invoice": "y", "W9 Recieved": "yes"},
			want:  Statuses{model.StagePaid, model.W9Received, model.InvoiceReceived, model.PaymentPaid},
		},
		{
			name:  "invoice before w9",
			cells: map[string]string{"Invoice": "Y", "W9 Recieved": "yes", "Paid?": "no"},
			want:  Statuses{model.StageInvoiceReceived, model.W9Received, model.InvoiceReceived, model.PaymentUnpaid},
		},
		{
			name:  "content received",
			cells: map[string]string{"Content Recieved": "yes", "Partnership Post": "yes"},
			want:  Statuses{model.StageContentReceived, model.W9Pending, model.InvoicePending, model.PaymentUnpaid},
		},
		{
			name:  "partnership post means brief sent",
			cells: map[string]string{"Partnership Post": " y "},
			want:  Statuses{model.StageBriefSent, model.W9Pending, model.InvoicePending, model.PaymentUnpaid},
		},
		{
			name:  "stage falls back to Paid when Paid? empty",
			cells: map[string]string{"Paid?": "", "Paid": "yes"},
			want:  Statuses{model.StagePaid, model.W9Pending, model.InvoicePending, model.PaymentUnpaid},
		},
		{
			name:  "legacy Paid column only",
			cells: map[string]string{"Paid": "yes"},
			want:  Statuses{model.StagePaid, model.W9Pending, model.InvoicePending, model.PaymentPaid},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			get, has := row(tt.cells)
			assert.Equal(t, tt.want, InferStatuses(get, has))
		})
	}
}

func TestRetailerCanonical(t *testing.T) {
	a := DefaultRetailerAliases()
	tests := map[string]string{
		"WF":                  "Whole Foods",
		"WFM":                 "Whole Foods",
		"Whole Foods ":        "Whole Foods",
		"Whole Foods Market":  "Whole Foods",
		"WM":                  "Walmart",
		"WMT":                 "Walmart",
		"Walmart Q1 Reset":    "Walmart",
		"Costco Roadshow":     "Costco",
		"Sprouts Farmers Mkt": "Sprouts",
		"Target":              "Target",
		"":                    "",
		"   ":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, a.Canonical(in), "input %q", in)
	}
}

func TestLoadRetailerAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
exact:
  TGT: Target
prefix:
  "H-E-B": HEB
`), 0o600))

	a, err := LoadRetailerAliases(path)
	require.NoError(t, err)
	assert.Equal(t, "Target", a.Canonical("TGT"))
	assert.Equal(t, "HEB", a.Canonical("H-E-B Central"))
	assert.Equal(t, "Walmart", a.Canonical("WMT"))

	_, err = LoadRetailerAliases(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	def, err := LoadRetailerAliases("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRetailerAliases(), def)
}

func TestCampaignDisplayName(t *testing.T) {
	assert.Equal(t, "Whole Foods - Holiday Bars", CampaignDisplayName("Whole Foods", "Holiday Bars", "Bars"))
	assert.Equal(t, "Walmart - Protein Bars", CampaignDisplayName("Walmart", "Walmart", "Protein  Bars"))
	assert.Equal(t, "Costco", CampaignDisplayName("Costco", "", ""))
	assert.Equal(t, "Sprouts - Cookies", CampaignDisplayName("Sprouts", "", "Cookies"))
}

func TestNameKey(t *testing.T) {
	assert.Equal(t, "jane doe", NameKey("Jane   Doe"))
	assert.Equal(t, NameKey("JANE\tDOE"), NameKey("jane doe"))
}

func TestSectionRow(t *testing.T) {
	assert.True(t, sectionRow("GIRL SCOUTS"))
	assert.True(t, sectionRow("Q4 Total"))
	assert.True(t, sectionRow("WF TTL"))
	assert.False(t, sectionRow("Jane Doe"))
}
