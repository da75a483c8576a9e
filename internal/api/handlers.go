package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/influencer-os/internal/dashboard"
	"github.com/sells-group/influencer-os/internal/export"
	"github.com/sells-group/influencer-os/internal/model"
	"github.com/sells-group/influencer-os/internal/store"
)

func (s *Server) listBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := s.svc.ListBrands(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, brands)
}

func (s *Server) overview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.svc.Overview(r.Context(), session(r))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, ov)
}

func (s *Server) listCampaigns(w http.ResponseWriter, r *http.Request) {
	var status model.CampaignStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := model.ParseCampaignStatus(raw)
		if err != nil {
			writeFailure(w, r, eris.Wrap(errBadRequest, err.Error()))
			return
		}
		status = parsed
	}
	campaigns, err := s.svc.ListCampaigns(r.Context(), session(r), status)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, campaigns)
}

func (s *Server) createCampaign(w http.ResponseWriter, r *http.Request) {
	var req dashboard.NewCampaign
	if err := s.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	c, err := s.svc.CreateCampaign(r.Context(), session(r), req)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, c)
}

func (s *Server) campaignBoard(w http.ResponseWriter, r *http.Request) {
	view, err := s.svc.CampaignBoard(r.Context(), session(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, view)
}

type moveRequest struct {
	AssignmentID string `json:"assignment_id" validate:"required"`
	OverID       string `json:"over_id"`
}

func (s *Server) moveCard(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := s.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	view, err := s.svc.MoveCard(r.Context(), session(r), chi.URLParam(r, "id"), req.AssignmentID, req.OverID)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, view)
}

func (s *Server) addToCampaign(w http.ResponseWriter, r *http.Request) {
	var req dashboard.NewAssignment
	if err := s.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	a, err := s.svc.AddToCampaign(r.Context(), session(r), req.InfluencerID, chi.URLParam(r, "id"), req.Deliverable)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, a)
}

func (s *Server) updateAssignment(w http.ResponseWriter, r *http.Request) {
	var req store.AssignmentUpdate
	if err := s.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	a, err := s.svc.UpdateAssignment(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, a)
}

func (s *Server) requestInvoice(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.RequestInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, a)
}

func (s *Server) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req dashboard.NewPayment
	if err := s.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	p, err := s.svc.RecordPayment(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (s *Server) chaseList(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.ChaseList(r.Context(), session(r))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (s *Server) paymentQueue(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.PaymentQueue(r.Context(), session(r))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, items)
}

func (s *Server) reports(w http.ResponseWriter, r *http.Request) {
	rep, err := s.svc.Reports(r.Context(), session(r))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, rep)
}

func (s *Server) exportReports(w http.ResponseWriter, r *http.Request) {
	rep, err := s.svc.Reports(r.Context(), session(r))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	data, err := export.ReportsBytes(rep)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		zap.L().Debug("api: write export", zap.Error(err))
	}
}

func (s *Server) rolodex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sort, err := dashboard.ParseSortField(q.Get("sort"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	query := dashboard.RolodexQuery{
		Search:      q.Get("search"),
		Platform:    q.Get("platform"),
		ContentType: q.Get("content_type"),
		Sort:        sort,
		Page:        1,
	}
	if raw := q.Get("desc"); raw != "" {
		if query.Desc, err = strconv.ParseBool(raw); err != nil {
			writeFailure(w, r, eris.Wrapf(errBadRequest, "desc: %q is not a boolean", raw))
			return
		}
	}
	if raw := q.Get("page"); raw != "" {
		if query.Page, err = strconv.Atoi(raw); err != nil {
			writeFailure(w, r, eris.Wrapf(errBadRequest, "page: %q is not a number", raw))
			return
		}
	}

	page, err := s.svc.Rolodex(r.Context(), session(r), query)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, page)
}

func (s *Server) createInfluencer(w http.ResponseWriter, r *http.Request) {
	var req dashboard.NewInfluencer
	if err := s.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	inf, err := s.svc.CreateInfluencer(r.Context(), req)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, inf)
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profile(r.Context(), session(r), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req store.InfluencerUpdate
	if err := s.decode(r, &req); err != nil {
		writeFailure(w, r, err)
		return
	}
	inf, err := s.svc.UpdateProfile(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, http.StatusOK, inf)
}
