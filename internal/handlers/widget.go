package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vglug/intake-backend/internal/dto"
	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/middleware"
	"github.com/vglug/intake-backend/internal/models"
	"github.com/vglug/intake-backend/internal/query"
	"github.com/vglug/intake-backend/internal/response"
)

type widgetService interface {
	ListWidgets(ctx context.Context, activeOnly bool) ([]*models.Widget, error)
	GetWidget(ctx context.Context, id int64) (*models.Widget, error)
	CreateWidget(ctx context.Context, uid string, req dto.CreateWidgetRequest) (*models.Widget, error)
	UpdateWidget(ctx context.Context, id int64, req dto.UpdateWidgetRequest) (*models.Widget, error)
	DeleteWidget(ctx context.Context, id int64) error
	ReorderWidgets(ctx context.Context, req dto.ReorderWidgetsRequest) error
	ValidateConfig(cfg models.WidgetConfig) query.Result
	PreviewWidget(ctx context.Context, req dto.PreviewWidgetRequest) (dto.WidgetDataResponse, error)
	GetWidgetData(ctx context.Context, id int64) (dto.WidgetDataResponse, error)
	WidgetCandidates(ctx context.Context, id int64, limit int) (dto.CandidateListResponse, error)
	SegmentCandidates(ctx context.Context, id int64, req dto.SegmentCandidatesRequest) (dto.CandidateListResponse, error)
	Metadata() dto.MetadataResponse
}

type widgetHandlers struct {
	ResponseHandler response.ResponseHandler
	WidgetSvc       widgetService
}

func NewWidgetHandlers(deps *Deps) *widgetHandlers {
	return &widgetHandlers{
		ResponseHandler: deps.ResponseHandler,
		WidgetSvc:       deps.WidgetSvc,
	}
}

func (h *widgetHandlers) WidgetRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListWidgets)
	r.Post("/", h.CreateWidget)
	r.Get("/metadata", h.Metadata)
	r.Post("/validate", h.ValidateConfig)
	r.Post("/preview", h.PreviewWidget)
	r.Put("/reorder", h.ReorderWidgets) // must be before /{widgetId}
	r.Get("/{widgetId}", h.GetWidget)
	r.Put("/{widgetId}", h.UpdateWidget)
	r.Delete("/{widgetId}", h.DeleteWidget)
	r.Get("/{widgetId}/data", h.GetWidgetData)
	r.Get("/{widgetId}/candidates", h.WidgetCandidates)
	r.Post("/{widgetId}/segment-candidates", h.SegmentCandidates)
	return r
}

func widgetIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "widgetId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errs.NewValidationError("widget id must be numeric")
	}
	return id, nil
}

func (h *widgetHandlers) ListWidgets(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	widgets, err := h.WidgetSvc.ListWidgets(r.Context(), activeOnly)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widgets)
}

func (h *widgetHandlers) CreateWidget(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	widget, err := h.WidgetSvc.CreateWidget(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, widget)
}

func (h *widgetHandlers) GetWidget(w http.ResponseWriter, r *http.Request) {
	id, err := widgetIDParam(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	widget, err := h.WidgetSvc.GetWidget(r.Context(), id)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widget)
}

func (h *widgetHandlers) UpdateWidget(w http.ResponseWriter, r *http.Request) {
	id, err := widgetIDParam(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	var req dto.UpdateWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	widget, err := h.WidgetSvc.UpdateWidget(r.Context(), id, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, widget)
}

func (h *widgetHandlers) DeleteWidget(w http.ResponseWriter, r *http.Request) {
	id, err := widgetIDParam(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.WidgetSvc.DeleteWidget(r.Context(), id); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *widgetHandlers) ReorderWidgets(w http.ResponseWriter, r *http.Request) {
	var req dto.ReorderWidgetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	if err := h.WidgetSvc.ReorderWidgets(r.Context(), req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, nil)
}

func (h *widgetHandlers) ValidateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.WidgetConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.WidgetSvc.ValidateConfig(cfg))
}

func (h *widgetHandlers) PreviewWidget(w http.ResponseWriter, r *http.Request) {
	var req dto.PreviewWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	data, err := h.WidgetSvc.PreviewWidget(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, data)
}

func (h *widgetHandlers) GetWidgetData(w http.ResponseWriter, r *http.Request) {
	id, err := widgetIDParam(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	data, err := h.WidgetSvc.GetWidgetData(r.Context(), id)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, data)
}

func (h *widgetHandlers) WidgetCandidates(w http.ResponseWriter, r *http.Request) {
	id, err := widgetIDParam(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("limit must be numeric"))
			return
		}
	}
	list, err := h.WidgetSvc.WidgetCandidates(r.Context(), id, limit)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, list)
}

func (h *widgetHandlers) SegmentCandidates(w http.ResponseWriter, r *http.Request) {
	id, err := widgetIDParam(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	var req dto.SegmentCandidatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	list, err := h.WidgetSvc.SegmentCandidates(r.Context(), id, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, list)
}

func (h *widgetHandlers) Metadata(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.WidgetSvc.Metadata())
}
