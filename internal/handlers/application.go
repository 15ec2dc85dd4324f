package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vglug/intake-backend/internal/dto"
	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/models"
	"github.com/vglug/intake-backend/internal/response"
)

type applicationService interface {
	Submit(ctx context.Context, req dto.SubmitApplicationRequest) (*models.Application, error)
	Get(ctx context.Context, candidateID string) (*models.Application, error)
	List(ctx context.Context, q dto.ListApplicationsQuery) (dto.ApplicationListResponse, error)
	UpdateStatus(ctx context.Context, candidateID, status string) (*models.Application, error)
	Shortlist(ctx context.Context, candidateID string, shortlisted bool) error
	BulkShortlist(ctx context.Context, req dto.BulkShortlistRequest) error
	CheckIn(ctx context.Context, candidateID string, appeared bool) error
	Stats(ctx context.Context) (dto.DashboardStatsResponse, error)
}

type applicationHandlers struct {
	ResponseHandler response.ResponseHandler
	ApplicationSvc  applicationService
}

func NewApplicationHandlers(deps *Deps) *applicationHandlers {
	return &applicationHandlers{
		ResponseHandler: deps.ResponseHandler,
		ApplicationSvc:  deps.ApplicationSvc,
	}
}

// PublicRoutes is the unauthenticated intake surface.
func (h *applicationHandlers) PublicRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/submit", h.Submit)
	return r
}

// AdminRoutes is the review surface, mounted behind auth.
func (h *applicationHandlers) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListApplications)
	r.Get("/stats", h.Stats)
	r.Put("/bulk-shortlist", h.BulkShortlist) // must be before /{candidateId}
	r.Get("/{candidateId}", h.GetApplication)
	r.Put("/{candidateId}/status", h.UpdateStatus)
	r.Put("/{candidateId}/shortlist", h.Shortlist)
	r.Put("/{candidateId}/check-in", h.CheckIn)
	return r
}

func (h *applicationHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	app, err := h.ApplicationSvc.Submit(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, dto.SubmitApplicationResponse{
		CandidateID: app.CandidateID,
		Status:      app.Status,
	})
}

func (h *applicationHandlers) ListApplications(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	list, err := h.ApplicationSvc.List(r.Context(), q)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, list)
}

func parseListQuery(r *http.Request) (dto.ListApplicationsQuery, error) {
	params := r.URL.Query()
	q := dto.ListApplicationsQuery{
		Status: params.Get("status"),
		Search: params.Get("search"),
	}
	if raw := params.Get("candidate_ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				q.CandidateIDs = append(q.CandidateIDs, id)
			}
		}
	}
	if raw := params.Get("shortlisted"); raw != "" {
		shortlisted, err := strconv.ParseBool(raw)
		if err != nil {
			return q, errs.NewValidationError("shortlisted must be true or false")
		}
		q.Shortlisted = &shortlisted
	}
	var err error
	if raw := params.Get("limit"); raw != "" {
		if q.Limit, err = strconv.Atoi(raw); err != nil {
			return q, errs.NewValidationError("limit must be numeric")
		}
	}
	if raw := params.Get("offset"); raw != "" {
		if q.Offset, err = strconv.Atoi(raw); err != nil {
			return q, errs.NewValidationError("offset must be numeric")
		}
	}
	return q, nil
}

func (h *applicationHandlers) GetApplication(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateId")
	app, err := h.ApplicationSvc.Get(r.Context(), candidateID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, app)
}

func (h *applicationHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateId")
	var req dto.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	app, err := h.ApplicationSvc.UpdateStatus(r.Context(), candidateID, req.Status)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, app)
}

func (h *applicationHandlers) Shortlist(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateId")
	var req dto.ShortlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.ApplicationSvc.Shortlist(r.Context(), candidateID, req.Shortlisted); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *applicationHandlers) BulkShortlist(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkShortlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.ApplicationSvc.BulkShortlist(r.Context(), req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *applicationHandlers) CheckIn(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateId")
	var req dto.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.ApplicationSvc.CheckIn(r.Context(), candidateID, req.Appeared); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *applicationHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ApplicationSvc.Stats(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, stats)
}
