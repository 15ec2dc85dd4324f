package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vglug/intake-backend/internal/catalog"
	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/models"
)

const identifierColumn = catalog.IdentifierColumn

// Compile turns a validated widget config into a query plan. It is
// deterministic: the same config always yields a structurally identical
// plan. Configs must pass Validate first; anything Compile rejects after
// that indicates a catalog or compiler defect, so failures surface as
// CompilationError rather than user-facing validation errors.
func Compile(cfg models.WidgetConfig) (*Plan, error) {
	base := cfg.Base(catalog.BaseTable)
	if _, ok := catalog.Get(base); !ok {
		return nil, errs.NewCompilationError("unknown base table " + base)
	}

	joins, err := resolveJoins(base, cfg.ReferencedTables(base))
	if err != nil {
		return nil, err
	}

	p := &Plan{
		BaseTable: base,
		Joins:     joins,
		Limit:     effectiveLimit(cfg.Limit),
	}

	for _, f := range cfg.Fields {
		proj, err := buildProjection(base, f)
		if err != nil {
			return nil, err
		}
		p.Projections = append(p.Projections, proj)
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

	for _, g := range cfg.GroupBy {
		table, column, _, ok := resolveGroupRef(cfg, base, g)
		if !ok {
			return nil, errs.NewCompilationError("unresolvable group_by entry " + g)
		}
		p.GroupBy = append(p.GroupBy, columnRef(table, column))
	}

	for _, o := range cfg.OrderBy {
		f, ok := cfg.FieldFor(o.Column)
		if !ok {
			return nil, errs.NewCompilationError("unresolvable order_by column " + o.Column)
		}
		p.OrderBy = append(p.OrderBy, OrderTerm{
			Alias: f.EffectiveAlias(),
			Desc:  strings.EqualFold(o.Direction, "DESC"),
		})
	}

	return p, nil
}

// resolveJoins maps every referenced non-base table to its
// catalog-declared join column. Tables join the base directly; the
// result is sorted so plans are deterministic.
func resolveJoins(base string, referenced []string) ([]Join, error) {
	var joins []Join
	for _, name := range referenced {
		if name == base {
			continue
		}
		t, ok := catalog.Get(name)
		if !ok {
			return nil, errs.NewCompilationError("unknown table " + name)
		}
		if t.JoinColumn == "" {
			return nil, errs.NewCompilationError("table " + name + " has no join column")
		}
		joins = append(joins, Join{Table: name, Column: t.JoinColumn})
	}
	sort.Slice(joins, func(i, j int) bool { return joins[i].Table < joins[j].Table })
	return joins, nil
}

func buildProjection(base string, f models.FieldRef) (Projection, error) {
	table := tableOrBase(f.Table, base)
	t, ok := catalog.Get(table)
	if !ok {
		return Projection{}, errs.NewCompilationError("unknown table " + table)
	}
	if _, ok := t.Field(f.Column); !ok {
		return Projection{}, errs.NewCompilationError("unknown column " + table + "." + f.Column)
	}
	alias := f.EffectiveAlias()
	if !identPattern.MatchString(alias) {
		return Projection{}, errs.NewCompilationError("invalid alias " + alias)
	}

	expr := columnRef(table, f.Column)
	if f.Aggregation != "" {
		if !catalog.IsAggregation(f.Aggregation) {
			return Projection{}, errs.NewCompilationError("unknown aggregation " + f.Aggregation)
		}
		expr = f.Aggregation + "(" + expr + ")"
	}
	return Projection{Expr: expr, Alias: alias}, nil
}

// compilePredicate renders one condition to a parameterized SQL
// fragment. Values never reach the SQL text: they are coerced to the
// column's declared type and carried as bind arguments.
func compilePredicate(base string, c models.Condition) (Predicate, error) {
	table := tableOrBase(c.Table, base)
	t, ok := catalog.Get(table)
	if !ok {
		return Predicate{}, errs.NewCompilationError("unknown table " + table)
	}
	field, ok := t.Field(c.Column)
	if !ok {
		return Predicate{}, errs.NewCompilationError("unknown column " + table + "." + c.Column)
	}

	logic := c.Logic
	if logic != "OR" {
		logic = "AND"
	}
	ref := columnRef(table, c.Column)

	switch c.Operator {
	case "=", "!=", "<", ">", "<=", ">=":
		v, err := coerceValue(field, c.Value)
		if err != nil {
			return Predicate{}, err
		}
		return Predicate{Logic: logic, Expr: ref + " " + c.Operator + " ?", Args: []any{v}}, nil

	case "LIKE":
		return Predicate{Logic: logic, Expr: ref + " LIKE ?", Args: []any{containsPattern(c.Value)}}, nil

	case "NOT LIKE":
		return Predicate{Logic: logic, Expr: ref + " NOT LIKE ?", Args: []any{containsPattern(c.Value)}}, nil

	case "IN", "NOT IN":
		items := enumerateListValue(c.Value)
		if len(items) == 0 {
			return Predicate{}, errs.NewCompilationError("empty value list for " + c.Operator)
		}
		args := make([]any, 0, len(items))
		for _, item := range items {
			v, err := coerceValue(field, item)
			if err != nil {
				return Predicate{}, err
			}
			args = append(args, v)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
		return Predicate{Logic: logic, Expr: ref + " " + c.Operator + " (" + placeholders + ")", Args: args}, nil

	case "IS NULL":
		return Predicate{Logic: logic, Expr: ref + " IS NULL"}, nil

	case "IS NOT NULL":
		return Predicate{Logic: logic, Expr: ref + " IS NOT NULL"}, nil
	}

	return Predicate{}, errs.NewCompilationError("unknown operator " + c.Operator)
}

// coerceValue converts a raw condition value to the column's declared
// type so bind parameters compare correctly against stored values.
func coerceValue(field catalog.Field, v any) (any, error) {
	switch field.Type {
	case catalog.TypeBoolean:
		switch val := v.(type) {
		case bool:
			return val, nil
		case string:
			b, err := strconv.ParseBool(strings.ToLower(val))
			if err != nil {
				return nil, errs.NewCompilationError("value " + val + " is not a boolean")
			}
			return b, nil
		case float64:
			return val != 0, nil
		}
	case catalog.TypeInteger:
		switch val := v.(type) {
		case float64:
			return int64(val), nil
		case int:
			return int64(val), nil
		case int64:
			return val, nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
			if err != nil {
				return nil, errs.NewCompilationError("value " + val + " is not an integer")
			}
			return n, nil
		}
	}
	return v, nil
}

func containsPattern(v any) string {
	return "%" + fmt.Sprint(v) + "%"
}

func effectiveLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
