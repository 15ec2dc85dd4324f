package dto

import (
	"time"

	"github.com/vglug/intake-backend/internal/catalog"
	"github.com/vglug/intake-backend/internal/models"
	"github.com/vglug/intake-backend/internal/query"
)

// Widget chart types.
const (
	WidgetTypePie    = "pie"
	WidgetTypeBar    = "bar"
	WidgetTypeLine   = "line"
	WidgetTypeNumber = "number"
	WidgetTypeTable  = "table"
)

// WidgetTypes lists every supported chart type, in display order.
var WidgetTypes = []string{WidgetTypePie, WidgetTypeBar, WidgetTypeLine, WidgetTypeNumber, WidgetTypeTable}

// Widget widths.
const (
	WidthHalf = "half"
	WidthFull = "full"
)

type CreateWidgetRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	WidgetType  string              `json:"widget_type"`
	Config      models.WidgetConfig `json:"config"`
	Width       string              `json:"width,omitempty"`
}

type UpdateWidgetRequest struct {
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	WidgetType  *string              `json:"widget_type,omitempty"`
	Config      *models.WidgetConfig `json:"config,omitempty"`
	Width       *string              `json:"width,omitempty"`
	IsActive    *bool                `json:"is_active,omitempty"`
}

type ReorderWidgetsRequest struct {
	WidgetOrder []WidgetOrderItem `json:"widget_order"`
}

type WidgetOrderItem struct {
	ID       int64 `json:"id"`
	Position int   `json:"position"`
}

// PreviewWidgetRequest runs a config without saving it.
type PreviewWidgetRequest struct {
	Config models.WidgetConfig `json:"config"`
}

// WidgetDataResponse carries one widget's executed result set. Rows are
// uniform alias-keyed maps for every chart type; the frontend shapes
// them using the chart config.
type WidgetDataResponse struct {
	WidgetID    int64              `json:"widget_id,omitempty"`
	WidgetType  string             `json:"widget_type,omitempty"`
	Title       string             `json:"title,omitempty"`
	Chart       models.ChartConfig `json:"chart_config"`
	Rows        []query.Row        `json:"rows"`
	RowCount    int                `json:"row_count"`
	LastUpdated time.Time          `json:"last_updated"`
}

// SegmentCandidatesRequest resolves the candidates behind one rendered
// chart segment.
type SegmentCandidatesRequest struct {
	SegmentField string `json:"segment_field"`
	SegmentValue any    `json:"segment_value"`
	Limit        int    `json:"limit,omitempty"`
}

type CandidateListResponse struct {
	WidgetID     int64    `json:"widget_id,omitempty"`
	SegmentField string   `json:"segment_field,omitempty"`
	SegmentValue any      `json:"segment_value,omitempty"`
	CandidateIDs []string `json:"candidate_ids"`
	Count        int      `json:"count"`
}

// MetadataResponse describes what the widget builder may reference:
// the table catalog, the operator set, and the aggregation set.
type MetadataResponse struct {
	Tables       []catalog.Table       `json:"tables"`
	Operators    []catalog.Operator    `json:"operators"`
	Aggregations []catalog.Aggregation `json:"aggregations"`
	WidgetTypes  []string              `json:"widget_types"`
}
