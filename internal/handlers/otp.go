package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vglug/intake-backend/internal/dto"
	"github.com/vglug/intake-backend/internal/response"
)

type otpService interface {
	SendOTP(ctx context.Context, req dto.SendOTPRequest) (dto.SendOTPResponse, error)
	VerifyOTP(ctx context.Context, req dto.VerifyOTPRequest) (dto.VerifyOTPResponse, error)
}

type otpHandlers struct {
	ResponseHandler response.ResponseHandler
	OTPSvc          otpService
}

func NewOTPHandlers(deps *Deps) *otpHandlers {
	return &otpHandlers{
		ResponseHandler: deps.ResponseHandler,
		OTPSvc:          deps.OTPSvc,
	}
}

func (h *otpHandlers) OTPRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/send-otp", h.SendOTP)
	r.Post("/verify-otp", h.VerifyOTP)
	return r
}

func (h *otpHandlers) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	resp, err := h.OTPSvc.SendOTP(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *otpHandlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	resp, err := h.OTPSvc.VerifyOTP(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}
