package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vglug/intake-backend/internal/dto"
	"github.com/vglug/intake-backend/internal/response"
)

type agentService interface {
	GenerateWidget(ctx context.Context, req dto.GenerateWidgetRequest) (dto.GeneratedWidget, error)
	RefineWidget(ctx context.Context, req dto.RefineWidgetRequest) (dto.GeneratedWidget, error)
}

type agentHandlers struct {
	ResponseHandler response.ResponseHandler
	AgentSvc        agentService
}

func NewAgentHandlers(deps *Deps) *agentHandlers {
	return &agentHandlers{
		ResponseHandler: deps.ResponseHandler,
		AgentSvc:        deps.AgentSvc,
	}
}

func (h *agentHandlers) AgentRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/generate", h.GenerateWidget)
	r.Post("/refine", h.RefineWidget)
	return r
}

func (h *agentHandlers) GenerateWidget(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	draft, err := h.AgentSvc.GenerateWidget(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, draft)
}

func (h *agentHandlers) RefineWidget(w http.ResponseWriter, r *http.Request) {
	var req dto.RefineWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	draft, err := h.AgentSvc.RefineWidget(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, draft)
}
