package query

import (
	"context"
	"database/sql"

	"github.com/vglug/intake-backend/internal/models"
)

// Engine bundles compilation and execution against one data store
// handle. It is stateless beyond the handle and safe for concurrent use;
// each call compiles and runs independently.
type Engine struct {
	db *sql.DB
}

func NewEngine(db *sql.DB) *Engine {
	return &Engine{db: db}
}

// Run compiles a validated config and executes it. Callers must have
// validated the config already.
func (e *Engine) Run(ctx context.Context, cfg models.WidgetConfig) ([]Row, error) {
	p, err := Compile(cfg)
	if err != nil {
		return nil, err
	}
	return Execute(ctx, e.db, p)
}

// AllCandidates returns every candidate identifier matching the
// widget's filters.
func (e *Engine) AllCandidates(ctx context.Context, cfg models.WidgetConfig, limit int) ([]string, error) {
	return ResolveAllMatching(ctx, e.db, cfg, limit)
}

// SegmentCandidates returns the candidate identifiers behind one chart
// segment.
func (e *Engine) SegmentCandidates(ctx context.Context, cfg models.WidgetConfig, segmentField string, segmentValue any, limit int) ([]string, error) {
	return ResolveSegment(ctx, e.db, cfg, segmentField, segmentValue, limit)
}
