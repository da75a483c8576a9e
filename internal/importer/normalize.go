package importer

import (
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/influencer-os/internal/model"
)

var (
	thousandsRe   = regexp.MustCompile(`^([\d.]+)\s*[kK]$`)
	millionsRe    = regexp.MustCompile(`^([\d.]+)\s*[mM]$`)
	floatPrefixRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	emailRe       = regexp.MustCompile(`[\w.+-]+@[\w.-]+\.\w+`)
	parentheticRe = regexp.MustCompile(`\s*\(.*?\)\s*$`)
	rosterRateRe  = regexp.MustCompile(`\$?([\d,]+)`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// excelEpochDays is the serial number of 1970-01-01.
const excelEpochDays = 25569.0

// parseFloatPrefix reads the longest leading decimal number, ignoring
// leading whitespace and any trailing text ("12.5 followers" -> 12.5).
func parseFloatPrefix(s string) (float64, bool) {
	m := floatPrefixRe.FindString(strings.TrimLeft(s, " \t\r\n"))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// round rounds half toward positive infinity.
func round(f float64) int64 {
	return int64(math.Floor(f + 0.5))
}

// ParseFollowerCount converts "16.2K", "1.1M", "218k", "11,000" or a numeric
// cell into a whole number. Unparseable or empty input yields nil.
func ParseFollowerCount(c Cell) *int64 {
	if c.IsNumber {
		return model.Ptr(round(c.Number))
	}
	s := strings.ReplaceAll(c.String(), ",", "")
	if s == "" {
		return nil
	}
	if m := thousandsRe.FindStringSubmatch(s); m != nil {
		if f, ok := parseFloatPrefix(m[1]); ok {
			return model.Ptr(round(f * 1_000))
		}
		return nil
	}
	if m := millionsRe.FindStringSubmatch(s); m != nil {
		if f, ok := parseFloatPrefix(m[1]); ok {
			return model.Ptr(round(f * 1_000_000))
		}
		return nil
	}
	if f, ok := parseFloatPrefix(s); ok {
		return model.Ptr(round(f))
	}
	return nil
}

// ParseRate strips "$" and "," from a text cell and parses the amount.
// Numeric cells pass through unchanged.
func ParseRate(c Cell) *float64 {
	if c.IsNumber {
		return model.Ptr(c.Number)
	}
	s := strings.NewReplacer("$", "", ",", "").Replace(c.String())
	if s == "" {
		return nil
	}
	if f, ok := parseFloatPrefix(s); ok {
		return model.Ptr(f)
	}
	return nil
}

// ParseRosterRate takes the first dollar figure of a free-text rates cell,
// e.g. "$500 reel\n$300 story" -> 500.
func ParseRosterRate(c Cell) *float64 {
	s := c.String()
	if s == "" {
		return nil
	}
	m := rosterRateRe.FindString(s)
	if m == "" {
		return nil
	}
	return ParseRate(Text(m))
}

// CleanHandle strips a leading "@" and a trailing parenthetical note.
// Values that look like an email or URL are discarded.
func CleanHandle(raw string) *string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "@")
	if strings.Contains(s, "@") || strings.Contains(s, "http") || strings.Contains(s, ".com") {
		return nil
	}
	s = strings.TrimSpace(parentheticRe.ReplaceAllString(s, ""))
	if s == "" {
		return nil
	}
	return &s
}

// CleanEmail extracts the first address from a cell that may also hold
// manager names or notes.
func CleanEmail(raw string) *string {
	m := emailRe.FindString(strings.TrimSpace(raw))
	if m == "" {
		return nil
	}
	m = strings.ToLower(m)
	return &m
}

// DetectPlatform infers the primary platform from the raw handle cells.
// Instagram wins when both are present.
func DetectPlatform(ig, tiktok Cell) *model.Platform {
	hasIG, hasTT := !ig.Blank(), !tiktok.Blank()
	switch {
	case hasIG:
		return model.Ptr(model.PlatformInstagram)
	case hasTT:
		return model.Ptr(model.PlatformTikTok)
	}
	return nil
}

// pickByPlatform returns the value for the inferred platform, falling back to
// the other platform's value when the preferred one is empty.
func pickByPlatform[T comparable](platform *model.Platform, ig, tiktok *T) *T {
	var zero T
	empty := func(v *T) bool { return v == nil || *v == zero }
	if platform != nil && *platform == model.PlatformTikTok {
		if empty(tiktok) {
			return ig
		}
		return tiktok
	}
	if empty(ig) {
		return tiktok
	}
	return ig
}

// SerialToDate converts an Excel serial day number into YYYY-MM-DD. Text,
// blank and zero cells yield nil. The 1900 leap-year bug is not corrected.
func SerialToDate(c Cell) *string {
	if !c.IsNumber || c.Number == 0 || math.IsNaN(c.Number) {
		return nil
	}
	days := int64(math.Floor(c.Number - excelEpochDays))
	d := time.Unix(days*86400, 0).UTC().Format(model.DateLayout)
	return &d
}

func yes(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "yes" || v == "y"
}

// Statuses is the workflow state inferred from a tracker row's checkbox columns.
type Statuses struct {
	Stage   model.Stage
	W9      model.W9Status
	Invoice model.InvoiceStatus
	Payment model.PaymentStatus
}

// InferStatuses derives stage and sub-statuses from the legacy yes/no columns.
// get returns the cell text for a header label, or "" when the column is absent.
// has reports whether the header exists.
func InferStatuses(get func(label string) string, has func(label string) bool) Statuses {
	paid := get("Paid?")
	if strings.TrimSpace(paid) == "" {
		paid = get("Paid")
	}

	st := Statuses{
		Stage:   model.StageContacted,
		W9:      model.W9Pending,
		Invoice: model.InvoicePending,
		Payment: model.PaymentUnpaid,
	}
	switch {
	case yes(paid):
		st.Stage = model.StagePaid
	case yes(get("Invoice")):
		st.Stage = model.StageInvoiceReceived
	case yes(get("W9 Recieved")):
		st.Stage = model.StageW9Done
	case yes(get("Content Recieved")):
		st.Stage = model.StageContentReceived
	case yes(get("Partnership Post")):
		st.Stage = model.StageBriefSent
	}

	if yes(get("W9 Recieved")) {
		st.W9 = model.W9Received
	}
	if yes(get("Invoice")) {
		st.Invoice = model.InvoiceReceived
	}

	// Payment reads "Paid?" when that header exists, without falling back.
	paymentCol := "Paid"
	if has("Paid?") {
		paymentCol = "Paid?"
	}
	if yes(get(paymentCol)) {
		st.Payment = model.PaymentPaid
	}
	return st
}

// NameKey is the de-duplication key for influencer names.
func NameKey(name string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(name), " ")
}

// collapse squeezes internal whitespace and trims.
func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// sectionRow reports tracker rows that are headings or subtotals, not people.
func sectionRow(name string) bool {
	return name == "GIRL SCOUTS" || strings.HasPrefix(name, "Q") || strings.Contains(name, "TTL")
}

// CampaignDisplayName builds "{retailer} - {campaign}" or "{retailer} - {product}".
func CampaignDisplayName(retailer, campaign, product string) string {
	var name string
	switch {
	case campaign != "" && campaign != retailer:
		name = retailer + " - " + campaign
	case product != "":
		name = retailer + " - " + product
	default:
		name = retailer
	}
	return collapse(name)
}

// RetailerAliases maps raw retailer spellings to canonical names.
type RetailerAliases struct {
	Exact  map[string]string `yaml:"exact"`
	Prefix map[string]string `yaml:"prefix"`
}

// DefaultRetailerAliases returns the built-in retailer spellings.
func DefaultRetailerAliases() RetailerAliases {
	return RetailerAliases{
		Exact: map[string]string{
			"WF":  "Whole Foods",
			"WFM": "Whole Foods",
			"WM":  "Walmart",
			"WMT": "Walmart",
		},
		Prefix: map[string]string{
			"Whole Foods": "Whole Foods",
			"Walmart":     "Walmart",
			"Costco":      "Costco",
			"Sprouts":     "Sprouts",
		},
	}
}

// LoadRetailerAliases merges a YAML alias file over the defaults. An empty
// path returns the defaults.
func LoadRetailerAliases(path string) (RetailerAliases, error) {
	aliases := DefaultRetailerAliases()
	if path == "" {
		return aliases, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return aliases, eris.Wrapf(err, "importer: read retailer aliases %s", path)
	}
	var extra RetailerAliases
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return aliases, eris.Wrapf(err, "importer: parse retailer aliases %s", path)
	}
	for k, v := range extra.Exact {
		aliases.Exact[k] = v
	}
	for k, v := range extra.Prefix {
		aliases.Prefix[k] = v
	}
	return aliases, nil
}

// Canonical normalizes a raw retailer cell. Exact aliases win over prefixes;
// longer prefixes win over shorter ones.
func (a RetailerAliases) Canonical(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if v, ok := a.Exact[s]; ok {
		return v
	}
	prefixes := make([]string, 0, len(a.Prefix))
	for p := range a.Prefix {
		prefixes = append(prefixes, p)
	}
	sort.Slice(prefixes, func(i, j int) bool {
		if len(prefixes[i]) != len(prefixes[j]) {
			return len(prefixes[i]) > len(prefixes[j])
		}
		return prefixes[i] < prefixes[j]
	})
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return a.Prefix[p]
		}
	}
	return s
}
