package importer

import (
	"github.com/sells-group/influencer-os/internal/model"
)

// Validated is the combined, checked output of every parsed tab, in source order.
type Validated struct {
	Influencers []InfluencerRecord
	Assignments []AssignmentRecord
	Rejections  []Rejection
}

// Validate flattens parsed tabs and drops records whose values fall outside
// the closed enumerations. Every dropped record becomes a rejection.
func Validate(parsed []Parsed) Validated {
	var v Validated
	for _, p := range parsed {
		v.Rejections = append(v.Rejections, p.Rejections...)

		for _, rec := range p.Influencers {
			if collapse(rec.Name) == "" {
				v.Rejections = append(v.Rejections, Rejection{Sheet: rec.Sheet, Row: rec.Row, Reason: ReasonMissingName})
				continue
			}
			if rec.Platform != nil {
				if _, err := model.ParsePlatform(string(*rec.Platform)); err != nil {
					v.Rejections = append(v.Rejections, Rejection{Sheet: rec.Sheet, Row: rec.Row, Reason: err.Error()})
					continue
				}
			}
			v.Influencers = append(v.Influencers, rec)
		}

		for _, rec := range p.Assignments {
			if reason := checkStatuses(rec.Statuses); reason != "" {
				v.Rejections = append(v.Rejections, Rejection{Sheet: rec.Sheet, Row: rec.Row, Reason: reason})
				continue
			}
			v.Assignments = append(v.Assignments, rec)
		}
	}
	return v
}

func checkStatuses(s Statuses) string {
	if _, err := model.ParseStage(string(s.Stage)); err != nil {
		return err.Error()
	}
	if _, err := model.ParseW9Status(string(s.W9)); err != nil {
		return err.Error()
	}
	if _, err := model.ParseInvoiceStatus(string(s.Invoice)); err != nil {
		return err.Error()
	}
	if _, err := model.ParsePaymentStatus(string(s.Payment)); err != nil {
		return err.Error()
	}
	return ""
}
