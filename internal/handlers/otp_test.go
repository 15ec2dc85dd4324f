package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vglug/intake-backend/internal/dto"
	"github.com/vglug/intake-backend/internal/errs"
)

type stubOTPService struct {
	sendResp   dto.SendOTPResponse
	sendErr    error
	verifyResp dto.VerifyOTPResponse
	verifyErr  error

	lastSendReq   dto.SendOTPRequest
	lastVerifyReq dto.VerifyOTPRequest
}

func (s *stubOTPService) SendOTP(_ context.Context, req dto.SendOTPRequest) (dto.SendOTPResponse, error) {
	s.lastSendReq = req
	return s.sendResp, s.sendErr
}

func (s *stubOTPService) VerifyOTP(_ context.Context, req dto.VerifyOTPRequest) (dto.VerifyOTPResponse, error) {
	s.lastVerifyReq = req
	return s.verifyResp, s.verifyErr
}

func TestSendOTP_OK(t *testing.T) {
	svc := &stubOTPService{sendResp: dto.SendOTPResponse{Email: "priya@example.com"}}
	resp := &stubResponseHandler{}
	h := NewOTPHandlers(&Deps{ResponseHandler: resp, OTPSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/send-otp", strings.NewReader(`{"email":"priya@example.com"}`))
	rr := httptest.NewRecorder()
	h.SendOTP(rr, req)

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("expected WriteSuccess with 200, got called=%v status=%d", resp.writeSuccessCalled, resp.writeSuccessStatus)
	}
	if svc.lastSendReq.Email != "priya@example.com" {
		t.Fatalf("unexpected send request: %+v", svc.lastSendReq)
	}
}

func TestSendOTP_ServiceError(t *testing.T) {
	svc := &stubOTPService{sendErr: errs.NewValidationError("a valid email address is required")}
	resp := &stubResponseHandler{}
	h := NewOTPHandlers(&Deps{ResponseHandler: resp, OTPSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/send-otp", strings.NewReader(`{"email":"nope"}`))
	rr := httptest.NewRecorder()
	h.SendOTP(rr, req)

	if !resp.handleErrorCalled {
		t.Fatal("expected HandleError to be called")
	}
}

func TestVerifyOTP_OK(t *testing.T) {
	svc := &stubOTPService{verifyResp: dto.VerifyOTPResponse{Email: "priya@example.com", Verified: true}}
	resp := &stubResponseHandler{}
	h := NewOTPHandlers(&Deps{ResponseHandler: resp, OTPSvc: svc})

	body := `{"email":"priya@example.com","code":"482913"}`
	req := httptest.NewRequest(http.MethodPost, "/verify-otp", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, req)

	if !resp.writeSuccessCalled {
		t.Fatal("expected WriteSuccess to be called")
	}
	if svc.lastVerifyReq.Code != "482913" {
		t.Fatalf("unexpected verify request: %+v", svc.lastVerifyReq)
	}
	out, ok := resp.writeSuccessData.(dto.VerifyOTPResponse)
	if !ok || !out.Verified {
		t.Fatalf("unexpected payload: %+v", resp.writeSuccessData)
	}
}

func TestVerifyOTP_BadJSON(t *testing.T) {
	svc := &stubOTPService{}
	resp := &stubResponseHandler{}
	h := NewOTPHandlers(&Deps{ResponseHandler: resp, OTPSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/verify-otp", strings.NewReader("{bad"))
	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, req)

	if !resp.handleErrorCalled {
		t.Fatal("expected HandleError to be called")
	}
}
