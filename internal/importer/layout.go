package importer

import (
	"strings"

	"github.com/sells-group/influencer-os/internal/model"
)

// InfluencerRecord is one influencer as read from a single row.
type InfluencerRecord struct {
	Name          string
	Handle        *string
	Email         *string
	Platform      *model.Platform
	ContentType   *string
	Location      *string
	Rate          *float64
	FollowerCount *int64
	Sheet         string
	Row           int
}

// AssignmentRecord is one tracker row's campaign participation.
type AssignmentRecord struct {
	InfluencerName string
	Retailer       string
	CampaignName   string
	Product        *string
	Deliverable    *string
	Price          *float64
	PostingDate    *string
	Quarter        string
	Statuses
	Sheet string
	Row   int
}

// Rejection records a dropped row. Rejections are reported, never fatal.
type Rejection struct {
	Sheet  string
	Row    int
	Reason string
}

// Rejection reasons.
const (
	ReasonNoSheet     = "sheet not found"
	ReasonNoHeader    = "no header row"
	ReasonMissingName = "missing name"
	ReasonSectionRow  = "section row"
	ReasonNoRetailer  = "no retailer"
)

// Parsed is the output of one layout over one tab.
type Parsed struct {
	Sheet       string
	Influencers []InfluencerRecord
	Assignments []AssignmentRecord
	Rejections  []Rejection
}

func (p *Parsed) reject(row int, reason string) {
	p.Rejections = append(p.Rejections, Rejection{Sheet: p.Sheet, Row: row, Reason: reason})
}

// Layout knows how to read one kind of tab.
type Layout interface {
	SheetName() string
	Parse(rows []Row) Parsed
}

// ParseWorkbook runs each layout against its tab. Missing tabs produce a
// rejection instead of an error.
func ParseWorkbook(wb Workbook, layouts []Layout) []Parsed {
	out := make([]Parsed, 0, len(layouts))
	for _, l := range layouts {
		rows, ok := wb.Sheet(l.SheetName())
		if !ok {
			p := Parsed{Sheet: l.SheetName()}
			p.reject(0, ReasonNoSheet)
			out = append(out, p)
			continue
		}
		out = append(out, l.Parse(rows))
	}
	return out
}

// RosterLayout reads the master roster tab: header on the first row and
// fixed column positions.
type RosterLayout struct {
	Sheet string
}

// Roster columns.
const (
	rosterName = iota
	rosterEmail
	rosterIGHandle
	rosterIGFollowers
	rosterTikTokHandle
	rosterTikTokFollowers
	rosterContentType
	rosterLocation
	rosterRates
)

func (l RosterLayout) SheetName() string { return l.Sheet }

func (l RosterLayout) Parse(rows []Row) Parsed {
	p := Parsed{Sheet: l.Sheet}
	for i := 1; i < len(rows); i++ {
		r := rows[i]
		rowNum := i + 1
		name := r.At(rosterName).String()
		if name == "" {
			if !r.Blank() {
				p.reject(rowNum, ReasonMissingName)
			}
			continue
		}

		igHandle := CleanHandle(r.At(rosterIGHandle).String())
		ttHandle := CleanHandle(r.At(rosterTikTokHandle).String())
		platform := DetectPlatform(r.At(rosterIGHandle), r.At(rosterTikTokHandle))

		p.Influencers = append(p.Influencers, InfluencerRecord{
			Name:        name,
			Handle:      pickByPlatform(platform, igHandle, ttHandle),
			Email:       CleanEmail(r.At(rosterEmail).String()),
			Platform:    platform,
			ContentType: optional(r.At(rosterContentType).String()),
			Location:    optional(r.At(rosterLocation).String()),
			Rate:        ParseRosterRate(r.At(rosterRates)),
			FollowerCount: pickByPlatform(platform,
				ParseFollowerCount(r.At(rosterIGFollowers)),
				ParseFollowerCount(r.At(rosterTikTokFollowers))),
			Sheet: l.Sheet,
			Row:   rowNum,
		})
	}
	return p
}

// TrackerLayout reads a yearly tracker tab. Columns are located by header
// label; the header row is found among the first five rows.
type TrackerLayout struct {
	Sheet     string
	Quarter   string
	Retailers RetailerAliases
}

const headerScanRows = 5

// header maps labels to column positions, keeping every occurrence so
// repeated labels such as "Follower Count (~)" can be addressed.
type header map[string][]int

func newHeader(r Row) header {
	h := make(header)
	for i, c := range r {
		label := c.Text
		h[label] = append(h[label], i)
	}
	return h
}

// col returns the n-th (0-based) column labelled label, or -1.
func (h header) col(label string, n int) int {
	idx := h[label]
	if n < len(idx) {
		return idx[n]
	}
	return -1
}

func (h header) has(label string) bool {
	return len(h[label]) > 0
}

func findHeader(rows []Row) int {
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		h := newHeader(rows[i])
		if h.has("Name") && h.has("Email") {
			return i
		}
	}
	return -1
}

func (l TrackerLayout) SheetName() string { return l.Sheet }

func (l TrackerLayout) Parse(rows []Row) Parsed {
	p := Parsed{Sheet: l.Sheet}
	hi := findHeader(rows)
	if hi < 0 {
		p.reject(0, ReasonNoHeader)
		return p
	}

	h := newHeader(rows[hi])
	var (
		nameIdx        = h.col("Name", 0)
		emailIdx       = h.col("Email", 0)
		igHandleIdx    = h.col("IG Handle", 0)
		igFollowerIdx  = h.col("Follower Count (~)", 0)
		ttHandleIdx    = h.col("TikTok Handle", 0)
		ttFollowerIdx  = h.col("Follower Count (~)", 1)
		contentTypeIdx = h.col("Content Type", 0)
		priceIdx       = h.col("Price", 0)
		retailerIdx    = h.col("Retailer", 0)
		campaignIdx    = h.col("Campaign", 0)
		productIdx     = h.col("Product", 0)
		deliverableIdx = h.col("Deliverables", 0)
		postingIdx     = h.col("Posting Date", 0)
	)

	for i := hi + 1; i < len(rows); i++ {
		r := rows[i]
		rowNum := i + 1
		name := r.At(nameIdx).String()
		if name == "" {
			if !r.Blank() {
				p.reject(rowNum, ReasonMissingName)
			}
			continue
		}
		if sectionRow(name) {
			p.reject(rowNum, ReasonSectionRow)
			continue
		}

		igHandle := CleanHandle(r.At(igHandleIdx).String())
		ttHandle := CleanHandle(r.At(ttHandleIdx).String())
		platform := DetectPlatform(r.At(igHandleIdx), r.At(ttHandleIdx))
		price := ParseRate(r.At(priceIdx))

		p.Influencers = append(p.Influencers, InfluencerRecord{
			Name:        name,
			Handle:      pickByPlatform(platform, igHandle, ttHandle),
			Email:       CleanEmail(r.At(emailIdx).String()),
			Platform:    platform,
			ContentType: optional(r.At(contentTypeIdx).String()),
			Rate:        price,
			FollowerCount: pickByPlatform(platform,
				ParseFollowerCount(r.At(igFollowerIdx)),
				ParseFollowerCount(r.At(ttFollowerIdx))),
			Sheet: l.Sheet,
			Row:   rowNum,
		})

		campaign := r.At(campaignIdx).String()
		product := r.At(productIdx).String()
		retailer := r.At(retailerIdx).String()
		if retailer == "" {
			// The 2026 tab has no Retailer column; its Campaign column holds the retailer.
			retailer = campaign
		}
		retailer = l.Retailers.Canonical(retailer)
		if retailer == "" {
			p.reject(rowNum, ReasonNoRetailer)
			continue
		}

		get := func(label string) string { return r.At(h.col(label, 0)).String() }
		p.Assignments = append(p.Assignments, AssignmentRecord{
			InfluencerName: name,
			Retailer:       retailer,
			CampaignName:   CampaignDisplayName(retailer, campaign, product),
			Product:        optional(product),
			Deliverable:    optional(r.At(deliverableIdx).String()),
			Price:          price,
			PostingDate:    SerialToDate(r.At(postingIdx)),
			Quarter:        l.Quarter,
			Statuses:       InferStatuses(get, h.has),
			Sheet:          l.Sheet,
			Row:            rowNum,
		})
	}
	return p
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
