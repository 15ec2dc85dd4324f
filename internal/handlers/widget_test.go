package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vglug/intake-backend/internal/dto"
	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/middleware"
	"github.com/vglug/intake-backend/internal/models"
	"github.com/vglug/intake-backend/internal/query"
)

// --- Stub response handler, shared by the handler tests ---

type stubResponseHandler struct {
	writeSuccessCalled bool
	writeSuccessStatus int
	writeSuccessData   any

	handleErrorCalled bool
	handleError       error

	writeErrorCalled bool
	writeErrorStatus int
	writeErrorCode   string
	writeErrorMsg    string
}

func (s *stubResponseHandler) WriteSuccess(w http.ResponseWriter, _ *http.Request, status int, data any) {
	s.writeSuccessCalled = true
	s.writeSuccessStatus = status
	s.writeSuccessData = data

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success":true}`))
}

func (s *stubResponseHandler) WriteError(w http.ResponseWriter, _ *http.Request, status int, code, message string) {
	s.writeErrorCalled = true
	s.writeErrorStatus = status
	s.writeErrorCode = code
	s.writeErrorMsg = message

	w.WriteHeader(status)
}

func (s *stubResponseHandler) HandleError(w http.ResponseWriter, _ *http.Request, err error) {
	s.handleErrorCalled = true
	s.handleError = err

	w.WriteHeader(http.StatusInternalServerError)
}

// withUID injects a UID into the request context.
func withUID(r *http.Request, uid string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UIDKey, uid)
	return r.WithContext(ctx)
}

// withChiParam injects a chi URL parameter into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// --- Stub widget service ---

type stubWidgetService struct {
	widgets    []*models.Widget
	widget     *models.Widget
	data       dto.WidgetDataResponse
	candidates dto.CandidateListResponse
	metadata   dto.MetadataResponse
	validation query.Result
	err        error

	lastActiveOnly bool
	lastID         int64
	lastUID        string
	lastCreateReq  dto.CreateWidgetRequest
	lastUpdateReq  dto.UpdateWidgetRequest
	lastReorderReq dto.ReorderWidgetsRequest
	lastLimit      int
	lastSegmentReq dto.SegmentCandidatesRequest
}

func (s *stubWidgetService) ListWidgets(_ context.Context, activeOnly bool) ([]*models.Widget, error) {
	s.lastActiveOnly = activeOnly
	return s.widgets, s.err
}

func (s *stubWidgetService) GetWidget(_ context.Context, id int64) (*models.Widget, error) {
	s.lastID = id
	return s.widget, s.err
}

func (s *stubWidgetService) CreateWidget(_ context.Context, uid string, req dto.CreateWidgetRequest) (*models.Widget, error) {
	s.lastUID = uid
	s.lastCreateReq = req
	return s.widget, s.err
}

func (s *stubWidgetService) UpdateWidget(_ context.Context, id int64, req dto.UpdateWidgetRequest) (*models.Widget, error) {
	s.lastID = id
	s.lastUpdateReq = req
	return s.widget, s.err
}

func (s *stubWidgetService) DeleteWidget(_ context.Context, id int64) error {
	s.lastID = id
	return s.err
}

func (s *stubWidgetService) ReorderWidgets(_ context.Context, req dto.ReorderWidgetsRequest) error {
	s.lastReorderReq = req
	return s.err
}

func (s *stubWidgetService) ValidateConfig(_ models.WidgetConfig) query.Result {
	return s.validation
}

func (s *stubWidgetService) PreviewWidget(_ context.Context, _ dto.PreviewWidgetRequest) (dto.WidgetDataResponse, error) {
	return s.data, s.err
}

func (s *stubWidgetService) GetWidgetData(_ context.Context, id int64) (dto.WidgetDataResponse, error) {
	s.lastID = id
	return s.data, s.err
}

func (s *stubWidgetService) WidgetCandidates(_ context.Context, id int64, limit int) (dto.CandidateListResponse, error) {
	s.lastID = id
	s.lastLimit = limit
	return s.candidates, s.err
}

func (s *stubWidgetService) SegmentCandidates(_ context.Context, id int64, req dto.SegmentCandidatesRequest) (dto.CandidateListResponse, error) {
	s.lastID = id
	s.lastSegmentReq = req
	return s.candidates, s.err
}

func (s *stubWidgetService) Metadata() dto.MetadataResponse {
	return s.metadata
}

// --- Tests ---

func TestListWidgets_OK(t *testing.T) {
	svc := &stubWidgetService{widgets: []*models.Widget{{ID: 1, Title: "Gender split"}}}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/widgets?active=true", nil)
	rr := httptest.NewRecorder()
	h.ListWidgets(rr, req)

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("expected WriteSuccess with 200, got called=%v status=%d", resp.writeSuccessCalled, resp.writeSuccessStatus)
	}
	if !svc.lastActiveOnly {
		t.Fatal("expected active=true to be forwarded")
	}
}

func TestCreateWidget_OK(t *testing.T) {
	svc := &stubWidgetService{widget: &models.Widget{ID: 7, Title: "Gender split"}}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	body := `{"title":"Gender split","widget_type":"pie","config":{"data_source":{"base_table":"application"}}}`
	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader(body))
	req = withUID(req, "admin1")
	rr := httptest.NewRecorder()
	h.CreateWidget(rr, req)

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusCreated {
		t.Fatalf("expected WriteSuccess with 201, got called=%v status=%d", resp.writeSuccessCalled, resp.writeSuccessStatus)
	}
	if svc.lastUID != "admin1" {
		t.Fatalf("expected uid admin1, got %q", svc.lastUID)
	}
	if svc.lastCreateReq.Title != "Gender split" {
		t.Fatalf("unexpected create request: %+v", svc.lastCreateReq)
	}
}

func TestCreateWidget_BadJSON(t *testing.T) {
	svc := &stubWidgetService{}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.CreateWidget(rr, req)

	if !resp.handleErrorCalled {
		t.Fatal("expected HandleError to be called")
	}
}

func TestGetWidget_BadID(t *testing.T) {
	svc := &stubWidgetService{}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/widgets/abc", nil)
	req = withChiParam(req, "widgetId", "abc")
	rr := httptest.NewRecorder()
	h.GetWidget(rr, req)

	if !resp.handleErrorCalled {
		t.Fatal("expected HandleError to be called")
	}
	var verr *errs.ValidationError
	if !errors.As(resp.handleError, &verr) {
		t.Fatalf("expected validation error, got %v", resp.handleError)
	}
}

func TestUpdateWidget_OK(t *testing.T) {
	svc := &stubWidgetService{widget: &models.Widget{ID: 3}}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodPut, "/widgets/3", strings.NewReader(`{"title":"Renamed"}`))
	req = withChiParam(req, "widgetId", "3")
	rr := httptest.NewRecorder()
	h.UpdateWidget(rr, req)

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("expected WriteSuccess with 200, got called=%v status=%d", resp.writeSuccessCalled, resp.writeSuccessStatus)
	}
	if svc.lastID != 3 {
		t.Fatalf("expected id 3, got %d", svc.lastID)
	}
	if svc.lastUpdateReq.Title == nil || *svc.lastUpdateReq.Title != "Renamed" {
		t.Fatalf("unexpected update request: %+v", svc.lastUpdateReq)
	}
}

func TestDeleteWidget_ServiceError(t *testing.T) {
	svc := &stubWidgetService{err: errors.New("store down")}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodDelete, "/widgets/5", nil)
	req = withChiParam(req, "widgetId", "5")
	rr := httptest.NewRecorder()
	h.DeleteWidget(rr, req)

	if !resp.handleErrorCalled {
		t.Fatal("expected HandleError to be called")
	}
}

func TestReorderWidgets_OK(t *testing.T) {
	svc := &stubWidgetService{}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	body := `{"widget_order":[{"id":2,"position":1},{"id":1,"position":2}]}`
	req := httptest.NewRequest(http.MethodPut, "/widgets/reorder", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ReorderWidgets(rr, req)

	if !resp.writeSuccessCalled {
		t.Fatal("expected WriteSuccess to be called")
	}
	if len(svc.lastReorderReq.WidgetOrder) != 2 || svc.lastReorderReq.WidgetOrder[0].ID != 2 {
		t.Fatalf("unexpected reorder request: %+v", svc.lastReorderReq)
	}
}

func TestValidateConfig_ReturnsResult(t *testing.T) {
	svc := &stubWidgetService{validation: query.Result{Valid: false, Issues: []errs.ValidationIssue{{Code: "no_fields"}}}}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodPost, "/widgets/validate", strings.NewReader(`{"data_source":{"base_table":"application"}}`))
	rr := httptest.NewRecorder()
	h.ValidateConfig(rr, req)

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("expected WriteSuccess with 200, got called=%v status=%d", resp.writeSuccessCalled, resp.writeSuccessStatus)
	}
	result, ok := resp.writeSuccessData.(query.Result)
	if !ok || result.Valid || len(result.Issues) != 1 {
		t.Fatalf("unexpected payload: %+v", resp.writeSuccessData)
	}
}

func TestWidgetCandidates_ForwardsLimit(t *testing.T) {
	svc := &stubWidgetService{candidates: dto.CandidateListResponse{WidgetID: 4, Count: 2}}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/widgets/4/candidates?limit=200", nil)
	req = withChiParam(req, "widgetId", "4")
	rr := httptest.NewRecorder()
	h.WidgetCandidates(rr, req)

	if !resp.writeSuccessCalled {
		t.Fatal("expected WriteSuccess to be called")
	}
	if svc.lastID != 4 || svc.lastLimit != 200 {
		t.Fatalf("expected id=4 limit=200, got id=%d limit=%d", svc.lastID, svc.lastLimit)
	}
}

func TestSegmentCandidates_OK(t *testing.T) {
	svc := &stubWidgetService{candidates: dto.CandidateListResponse{WidgetID: 4}}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	body := `{"segment_field":"gender","segment_value":"Female"}`
	req := httptest.NewRequest(http.MethodPost, "/widgets/4/segment-candidates", strings.NewReader(body))
	req = withChiParam(req, "widgetId", "4")
	rr := httptest.NewRecorder()
	h.SegmentCandidates(rr, req)

	if !resp.writeSuccessCalled {
		t.Fatal("expected WriteSuccess to be called")
	}
	if svc.lastSegmentReq.SegmentField != "gender" || svc.lastSegmentReq.SegmentValue != "Female" {
		t.Fatalf("unexpected segment request: %+v", svc.lastSegmentReq)
	}
}

func TestMetadata_OK(t *testing.T) {
	svc := &stubWidgetService{metadata: dto.MetadataResponse{WidgetTypes: dto.WidgetTypes}}
	resp := &stubResponseHandler{}
	h := NewWidgetHandlers(&Deps{ResponseHandler: resp, WidgetSvc: svc})

	req := httptest.NewRequest(http.MethodGet, "/widgets/metadata", nil)
	rr := httptest.NewRecorder()
	h.Metadata(rr, req)

	if !resp.writeSuccessCalled || resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("expected WriteSuccess with 200, got called=%v status=%d", resp.writeSuccessCalled, resp.writeSuccessStatus)
	}
}
