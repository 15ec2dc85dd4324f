package services

import (
	"context"
	"time"

	"github.com/vglug/intake-backend/internal/catalog"
	"github.com/vglug/intake-backend/internal/dto"
	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/models"
	"github.com/vglug/intake-backend/internal/query"
	"github.com/vglug/intake-backend/pkg/logger"
)

// widgetStore is the Firestore storage interface for widgets.
type widgetStore interface {
	NextID(ctx context.Context) (int64, error)
	Create(ctx context.Context, w *models.Widget) error
	Get(ctx context.Context, id int64) (*models.Widget, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Widget, error)
	Update(ctx context.Context, w *models.Widget) error
	Delete(ctx context.Context, id int64) error
	MaxPosition(ctx context.Context) (int, error)
	BulkUpdatePositions(ctx context.Context, positions map[int64]int) error
}

// widgetEngine compiles and runs widget configs against the
// application database.
type widgetEngine interface {
	Run(ctx context.Context, cfg models.WidgetConfig) ([]query.Row, error)
	AllCandidates(ctx context.Context, cfg models.WidgetConfig, limit int) ([]string, error)
	SegmentCandidates(ctx context.Context, cfg models.WidgetConfig, segmentField string, segmentValue any, limit int) ([]string, error)
}

type widgetService struct {
	store  widgetStore
	engine widgetEngine
}

func NewWidgetService(store widgetStore, engine widgetEngine) *widgetService {
	return &widgetService{store: store, engine: engine}
}

func (s *widgetService) ListWidgets(ctx context.Context, activeOnly bool) ([]*models.Widget, error) {
	return s.store.List(ctx, activeOnly)
}

func (s *widgetService) GetWidget(ctx context.Context, id int64) (*models.Widget, error) {
	return s.store.Get(ctx, id)
}

func (s *widgetService) CreateWidget(ctx context.Context, uid string, req dto.CreateWidgetRequest) (*models.Widget, error) {
	if req.Title == "" {
		return nil, errs.NewValidationError("title is required")
	}
	if err := validateWidgetType(req.WidgetType); err != nil {
		return nil, err
	}
	width := req.Width
	if width == "" {
		width = dto.WidthHalf
	}
	if err := validateWidth(width); err != nil {
		return nil, err
	}
	if res := query.Validate(req.Config); !res.Valid {
		return nil, errs.NewValidationIssues(res.Issues)
	}

	id, err := s.store.NextID(ctx)
	if err != nil {
		return nil, err
	}
	maxPos, err := s.store.MaxPosition(ctx)
	if err != nil {
		return nil, err
	}

	w := &models.Widget{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		WidgetType:  req.WidgetType,
		Config:      req.Config,
		Position:    maxPos + 1,
		Width:       width,
		CreatedBy:   uid,
		IsActive:    true,
	}
	if err := s.store.Create(ctx, w); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("widget created", "widget_id", w.ID, "widget_type", w.WidgetType)
	return w, nil
}

func (s *widgetService) UpdateWidget(ctx context.Context, id int64, req dto.UpdateWidgetRequest) (*models.Widget, error) {
	w, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, errs.NewValidationError("title is required")
		}
		w.Title = *req.Title
	}
	if req.Description != nil {
		w.Description = *req.Description
	}
	if req.WidgetType != nil {
		if err := validateWidgetType(*req.WidgetType); err != nil {
			return nil, err
		}
		w.WidgetType = *req.WidgetType
	}
	if req.Width != nil {
		if err := validateWidth(*req.Width); err != nil {
			return nil, err
		}
		w.Width = *req.Width
	}
	if req.IsActive != nil {
		w.IsActive = *req.IsActive
	}
	if req.Config != nil {
		if res := query.Validate(*req.Config); !res.Valid {
			return nil, errs.NewValidationIssues(res.Issues)
		}
		w.Config = *req.Config
	}

	if err := s.store.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *widgetService) DeleteWidget(ctx context.Context, id int64) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *widgetService) ReorderWidgets(ctx context.Context, req dto.ReorderWidgetsRequest) error {
	if len(req.WidgetOrder) == 0 {
		return errs.NewValidationError("widget_order is required")
	}
	positions := make(map[int64]int, len(req.WidgetOrder))
	for _, item := range req.WidgetOrder {
		positions[item.ID] = item.Position
	}
	return s.store.BulkUpdatePositions(ctx, positions)
}

// ValidateConfig checks a config without saving or running it. The
// full issue list comes back so the builder UI can annotate each
// problem.
func (s *widgetService) ValidateConfig(cfg models.WidgetConfig) query.Result {
	return query.Validate(cfg)
}

// PreviewWidget runs an unsaved config.
func (s *widgetService) PreviewWidget(ctx context.Context, req dto.PreviewWidgetRequest) (dto.WidgetDataResponse, error) {
	if res := query.Validate(req.Config); !res.Valid {
		return dto.WidgetDataResponse{}, errs.NewValidationIssues(res.Issues)
	}
	rows, err := s.engine.Run(ctx, req.Config)
	if err != nil {
		return dto.WidgetDataResponse{}, err
	}
	return dto.WidgetDataResponse{
		Chart:       req.Config.Chart,
		Rows:        rows,
		RowCount:    len(rows),
		LastUpdated: time.Now(),
	}, nil
}

// GetWidgetData executes a saved widget's query.
func (s *widgetService) GetWidgetData(ctx context.Context, id int64) (dto.WidgetDataResponse, error) {
	w, err := s.store.Get(ctx, id)
	if err != nil {
		return dto.WidgetDataResponse{}, err
	}
	rows, err := s.engine.Run(ctx, w.Config)
	if err != nil {
		return dto.WidgetDataResponse{}, err
	}
	return dto.WidgetDataResponse{
		WidgetID:    w.ID,
		WidgetType:  w.WidgetType,
		Title:       w.Title,
		Chart:       w.Config.Chart,
		Rows:        rows,
		RowCount:    len(rows),
		LastUpdated: time.Now(),
	}, nil
}

// WidgetCandidates resolves every candidate behind a saved widget.
func (s *widgetService) WidgetCandidates(ctx context.Context, id int64, limit int) (dto.CandidateListResponse, error) {
	w, err := s.store.Get(ctx, id)
	if err != nil {
		return dto.CandidateListResponse{}, err
	}
	ids, err := s.engine.AllCandidates(ctx, w.Config, limit)
	if err != nil {
		return dto.CandidateListResponse{}, err
	}
	return dto.CandidateListResponse{
		WidgetID:     w.ID,
		CandidateIDs: ids,
		Count:        len(ids),
	}, nil
}

// SegmentCandidates resolves the candidates behind one chart segment of
// a saved widget.
func (s *widgetService) SegmentCandidates(ctx context.Context, id int64, req dto.SegmentCandidatesRequest) (dto.CandidateListResponse, error) {
	if req.SegmentField == "" {
		return dto.CandidateListResponse{}, errs.NewValidationError("segment_field is required")
	}
	w, err := s.store.Get(ctx, id)
	if err != nil {
		return dto.CandidateListResponse{}, err
	}
	ids, err := s.engine.SegmentCandidates(ctx, w.Config, req.SegmentField, req.SegmentValue, req.Limit)
	if err != nil {
		return dto.CandidateListResponse{}, err
	}
	return dto.CandidateListResponse{
		WidgetID:     w.ID,
		SegmentField: req.SegmentField,
		SegmentValue: req.SegmentValue,
		CandidateIDs: ids,
		Count:        len(ids),
	}, nil
}

// Metadata describes the catalog the widget builder works against.
func (s *widgetService) Metadata() dto.MetadataResponse {
	return dto.MetadataResponse{
		Tables:       catalog.Tables(),
		Operators:    catalog.Operators(),
		Aggregations: catalog.Aggregations(),
		WidgetTypes:  dto.WidgetTypes,
	}
}

func validateWidgetType(t string) error {
	for _, known := range dto.WidgetTypes {
		if t == known {
			return nil
		}
	}
	return errs.NewValidationError("unknown widget type: " + t)
}

func validateWidth(w string) error {
	if w == dto.WidthHalf || w == dto.WidthFull {
		return nil
	}
	return errs.NewValidationError(`width must be "half" or "full"`)
}
