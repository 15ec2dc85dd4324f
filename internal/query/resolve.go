package query

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/vglug/intake-backend/internal/catalog"
	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/models"
)

// DefaultIdentifierLimit caps drill-down result sizes; the identifier
// list feeds a UI listing, so it stays bounded regardless of the
// widget's own limit.
const DefaultIdentifierLimit = 1000

const maxIdentifierLimit = 5000

// ResolveAllMatching reruns a widget's join and filter logic without
// aggregation and returns the distinct candidate identifiers behind the
// whole widget.
func ResolveAllMatching(ctx context.Context, db *sql.DB, cfg models.WidgetConfig, limit int) ([]string, error) {
	p, err := identifierPlan(cfg, nil, limit)
	if err != nil {
		return nil, err
	}
	return collectIdentifiers(ctx, db, p)
}

// ResolveSegment is ResolveAllMatching narrowed to one rendered chart
// segment: the field alias is mapped back to its underlying table and
// column, and an extra parameterized equality (or NULL test) is added on
// top of the widget's own conditions.
func ResolveSegment(ctx context.Context, db *sql.DB, cfg models.WidgetConfig, segmentField string, segmentValue any, limit int) ([]string, error) {
	base := cfg.Base(catalog.BaseTable)
	table, column, ok := locateSegmentColumn(cfg, base, segmentField)
	if !ok {
		return nil, errs.NewValidationError("segment field " + segmentField + " not found in widget configuration")
	}

	seg, err := segmentPredicate(base, table, column, segmentValue)
	if err != nil {
		return nil, err
	}
	p, err := identifierPlan(cfg, &segmentRef{table: table, predicate: seg}, limit)
	if err != nil {
		return nil, err
	}
	return collectIdentifiers(ctx, db, p)
}

type segmentRef struct {
	table     string
	predicate Predicate
}

// identifierPlan builds the join+filter portion of a widget's plan with
// the projection replaced by the distinct base identifier. Join
// resolution and predicate compilation are shared with Compile.
func identifierPlan(cfg models.WidgetConfig, seg *segmentRef, limit int) (*Plan, error) {
	base := cfg.Base(catalog.BaseTable)
	if _, ok := catalog.Get(base); !ok {
		return nil, errs.NewCompilationError("unknown base table " + base)
	}

	referenced := map[string]bool{base: true}
	for _, j := range cfg.DataSource.Joins {
		referenced[j] = true
	}
	for _, c := range cfg.Conditions {
		referenced[tableOrBase(c.Table, base)] = true
	}
	if seg != nil {
		referenced[seg.table] = true
	}
	names := make([]string, 0, len(referenced))
	for n := range referenced {
		names = append(names, n)
	}
	sort.Strings(names)

	joins, err := resolveJoins(base, names)
	if err != nil {
		return nil, err
	}

	p := &Plan{
		BaseTable: base,
		Distinct:  true,
		Joins:     joins,
		Projections: []Projection{
			{Expr: columnRef(base, identifierColumn), Alias: identifierColumn},
		},
		Limit: identifierLimit(limit),
	}

	for i, c := range cfg.Conditions {
		pred, err := compilePredicate(base, c)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			pred.Logic = ""
		}
		p.Predicates = append(p.Predicates, pred)
	}
	if seg != nil {
		pred := seg.predicate
		if len(p.Predicates) == 0 {
			pred.Logic = ""
		}
		p.Predicates = append(p.Predicates, pred)
	}

	return p, nil
}

// locateSegmentColumn maps a segment alias to its {table, column} via
// the field list, falling back to a catalog column match among the
// widget's referenced tables.
func locateSegmentColumn(cfg models.WidgetConfig, base, segmentField string) (string, string, bool) {
	if f, ok := cfg.FieldFor(segmentField); ok {
		return tableOrBase(f.Table, base), f.Column, true
	}
	for _, name := range cfg.ReferencedTables(base) {
		t, ok := catalog.Get(name)
		if !ok {
			continue
		}
		if _, ok := t.Field(segmentField); ok {
			return name, segmentField, true
		}
	}
	return "", "", false
}

// segmentPredicate builds the extra constraint for a clicked segment.
// Chart layers serialize missing and boolean values as strings, so
// "null", "true" and "false" are mapped back before comparison.
func segmentPredicate(base, table, column string, value any) (Predicate, error) {
	t, ok := catalog.Get(table)
	if !ok {
		return Predicate{}, errs.NewCompilationError("unknown table " + table)
	}
	field, ok := t.Field(column)
	if !ok {
		return Predicate{}, errs.NewCompilationError("unknown column " + table + "." + column)
	}
	ref := columnRef(table, column)

	if value == nil {
		return Predicate{Logic: "AND", Expr: ref + " IS NULL"}, nil
	}
	if s, isString := value.(string); isString {
		switch strings.ToLower(s) {
		case "null", "none":
			return Predicate{Logic: "AND", Expr: ref + " IS NULL"}, nil
		}
	}
	v, err := coerceValue(field, value)
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{Logic: "AND", Expr: ref + " = ?", Args: []any{v}}, nil
}

func collectIdentifiers(ctx context.Context, db *sql.DB, p *Plan) ([]string, error) {
	rows, err := Execute(ctx, db, p)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if id, ok := row[identifierColumn].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func identifierLimit(limit int) int {
	if limit <= 0 {
		return DefaultIdentifierLimit
	}
	if limit > maxIdentifierLimit {
		return maxIdentifierLimit
	}
	return limit
}
