package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vglug/intake-backend/internal/catalog"
	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/models"
)

// identPattern restricts aliases to plain identifiers. Aliases are the
// only user-chosen token that reaches rendered SQL, so they get the
// strictest check.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Result is the outcome of validating a widget config.
type Result struct {
	Valid  bool                   `json:"valid"`
	Issues []errs.ValidationIssue `json:"errors,omitempty"`
}

// Validate checks a widget config against the catalog and the
// structural rules, collecting every violation rather than stopping at
// the first. It is pure: no data-store access, no mutation.
func Validate(cfg models.WidgetConfig) Result {
	var issues []errs.ValidationIssue
	add := func(code, format string, a ...any) {
		issues = append(issues, errs.ValidationIssue{Code: code, Message: fmt.Sprintf(format, a...)})
	}

	base := cfg.Base(catalog.BaseTable)
	if base != catalog.BaseTable {
		add("invalid_base_table", "base table must be %q, got %q", catalog.BaseTable, base)
	}

	// Joinable set: base plus declared joins. Declared joins must be
	// catalog tables with a join column.
	joined := map[string]bool{base: true}
	for _, j := range cfg.DataSource.Joins {
		t, ok := catalog.Get(j)
		switch {
		case !ok:
			add("unknown_table", "unknown join table %q", j)
		case t.JoinColumn == "":
			add("invalid_join", "table %q cannot be joined: no join column declared", j)
		}
		joined[j] = true
	}

	if len(cfg.Fields) == 0 {
		add("no_fields", "at least one field is required")
	}

	// One error per offending reference: a table that is neither the
	// base nor declared as a join is reported where it is used.
	checkRef := func(where, table, column string) {
		t, ok := catalog.Get(table)
		if !ok {
			add("unknown_table", "%s references unknown table %q", where, table)
			return
		}
		if !joined[table] {
			add("table_not_joined", "%s references table %q which is not the base table or a declared join", where, table)
		}
		if column != "" {
			if _, ok := t.Field(column); !ok {
				add("unknown_column", "%s references unknown column %q in table %q", where, column, table)
			}
		}
	}

	seenAliases := make(map[string]bool)
	for i, f := range cfg.Fields {
		where := fmt.Sprintf("field %d", i+1)
		checkRef(where, tableOrBase(f.Table, base), f.Column)
		if f.Column == "" {
			add("unknown_column", "%s has no column", where)
		}
		alias := f.EffectiveAlias()
		if alias != "" && !identPattern.MatchString(alias) {
			add("invalid_alias", "%s alias %q is not a valid identifier", where, alias)
		}
		if alias != "" {
			if seenAliases[alias] {
				add("duplicate_alias", "alias %q is used by more than one field", alias)
			}
			seenAliases[alias] = true
		}
		if f.Aggregation != "" && !catalog.IsAggregation(f.Aggregation) {
			add("invalid_aggregation", "%s has unknown aggregation %q", where, f.Aggregation)
		}
	}

	for i, c := range cfg.Conditions {
		where := fmt.Sprintf("condition %d", i+1)
		checkRef(where, tableOrBase(c.Table, base), c.Column)
		if c.Column == "" {
			add("unknown_column", "%s has no column", where)
		}
		if i > 0 && c.Logic != "" && c.Logic != "AND" && c.Logic != "OR" {
			add("invalid_logic", "%s has unknown connective %q", where, c.Logic)
		}

		op, ok := catalog.LookupOperator(c.Operator)
		if !ok {
			add("invalid_operator", "%s has unknown operator %q", where, c.Operator)
			continue
		}
		if op.Unary {
			if c.Value != nil {
				add("unexpected_value", "%s: operator %q takes no value", where, c.Operator)
			}
			continue
		}
		if c.Value == nil {
			add("missing_value", "%s: operator %q requires a value", where, c.Operator)
			continue
		}
		validateEnumValue(c, base, where, add)
	}

	validateGroupBy(cfg, base, joined, add)
	validateOrderBy(cfg, add)

	if cfg.Limit < 0 {
		add("invalid_limit", "limit must be a positive integer")
	} else if cfg.Limit > MaxLimit {
		add("invalid_limit", "limit %d exceeds the maximum of %d", cfg.Limit, MaxLimit)
	}

	validateChart(cfg, add)

	return Result{Valid: len(issues) == 0, Issues: issues}
}

// validateEnumValue rejects equality and IN filters whose value is
// outside a column's closed value set. Range and LIKE operators are
// left alone.
func validateEnumValue(c models.Condition, base, where string, add func(code, format string, a ...any)) {
	t, ok := catalog.Get(tableOrBase(c.Table, base))
	if !ok {
		return
	}
	field, ok := t.Field(c.Column)
	if !ok || len(field.Values) == 0 {
		return
	}

	switch c.Operator {
	case "=", "!=":
		if !containsValue(field.Values, c.Value) {
			add("invalid_value", "%s: %v is not an allowed value for %s.%s", where, c.Value, t.Name, c.Column)
		}
	case "IN", "NOT IN":
		for _, v := range enumerateListValue(c.Value) {
			if !containsValue(field.Values, v) {
				add("invalid_value", "%s: %v is not an allowed value for %s.%s", where, v, t.Name, c.Column)
			}
		}
	}
}

func validateGroupBy(cfg models.WidgetConfig, base string, joined map[string]bool, add func(code, format string, a ...any)) {
	for _, g := range cfg.GroupBy {
		table, _, _, ok := resolveGroupRef(cfg, base, g)
		if !ok {
			add("unknown_group_by", "group_by entry %q does not match any field or known column", g)
			continue
		}
		// Bare entries resolve through the field list and are already
		// covered by the field checks above; qualified entries need
		// their own join check.
		if _, _, qualified := splitTableColumn(g); qualified && !joined[table] {
			add("table_not_joined", "group_by entry %q references table %q which is not the base table or a declared join", g, table)
		}
	}

	if !cfg.IsAggregate() {
		return
	}
	// With any aggregate present, every plain field must be a grouping
	// key, otherwise its value per group would be ambiguous.
	for _, f := range cfg.Fields {
		if f.Aggregation != "" {
			continue
		}
		if !groupByCovers(cfg, base, f) {
			add("missing_group_by", "field %q must appear in group_by when aggregated fields are present", f.EffectiveAlias())
		}
	}
}

func validateOrderBy(cfg models.WidgetConfig, add func(code, format string, a ...any)) {
	for i, o := range cfg.OrderBy {
		dir := strings.ToUpper(o.Direction)
		if dir != "" && dir != "ASC" && dir != "DESC" {
			add("invalid_order", "order_by %d has unknown direction %q", i+1, o.Direction)
		}
		if _, ok := cfg.FieldFor(o.Column); !ok {
			add("unknown_order_column", "order_by %d references %q which is not an output field", i+1, o.Column)
		}
	}
}

// validateChart cross-checks chart_config aliases against the field
// list at save time, so a widget cannot render or drill down against an
// alias that does not exist.
func validateChart(cfg models.WidgetConfig, add func(code, format string, a ...any)) {
	aliases := make(map[string]bool)
	for _, a := range cfg.OutputAliases() {
		aliases[a] = true
	}
	if nf := cfg.Chart.NameField; nf != "" && !aliases[nf] {
		add("unknown_chart_field", "chart_config.name_field %q is not an output field alias", nf)
	}
	if vf := cfg.Chart.ValueField; vf != "" && !aliases[vf] {
		add("unknown_chart_field", "chart_config.value_field %q is not an output field alias", vf)
	}
}

// groupByCovers reports whether a group_by entry names the field by
// alias, bare column, or qualified table.column.
func groupByCovers(cfg models.WidgetConfig, base string, f models.FieldRef) bool {
	table := tableOrBase(f.Table, base)
	for _, g := range cfg.GroupBy {
		if g == f.EffectiveAlias() || g == f.Column || g == table+"."+f.Column {
			return true
		}
	}
	return false
}

// resolveGroupRef maps a group_by entry to a concrete table and column.
// Qualified entries resolve through the catalog; bare entries resolve
// through the field list (alias first, then column).
func resolveGroupRef(cfg models.WidgetConfig, base, ref string) (table, column string, field catalog.Field, ok bool) {
	if t, c, isQualified := splitTableColumn(ref); isQualified {
		tbl, found := catalog.Get(t)
		if !found {
			return "", "", catalog.Field{}, false
		}
		fld, found := tbl.Field(c)
		if !found {
			return "", "", catalog.Field{}, false
		}
		return t, c, fld, true
	}

	fr, found := cfg.FieldFor(ref)
	if !found {
		return "", "", catalog.Field{}, false
	}
	table = tableOrBase(fr.Table, base)
	tbl, found := catalog.Get(table)
	if !found {
		return "", "", catalog.Field{}, false
	}
	fld, found := tbl.Field(fr.Column)
	if !found {
		return "", "", catalog.Field{}, false
	}
	return table, fr.Column, fld, true
}

func tableOrBase(t, base string) string {
	if t != "" {
		return t
	}
	return base
}

func splitTableColumn(ref string) (table, column string, ok bool) {
	i := strings.IndexByte(ref, '.')
	if i <= 0 || i == len(ref)-1 {
		return "", "", false
	}
	return ref[:i], ref[i+1:], true
}

func containsValue(allowed []string, v any) bool {
	s := fmt.Sprint(v)
	for _, a := range allowed {
		if a == s {
			return true
		}
	}
	return false
}

// enumerateListValue normalizes an IN/NOT IN value: JSON arrays pass
// through element-wise, strings split on commas.
func enumerateListValue(v any) []any {
	switch val := v.(type) {
	case []any:
		return val
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = strings.TrimSpace(s)
		}
		return out
	case string:
		parts := strings.Split(val, ",")
		out := make([]any, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		return out
	default:
		return []any{v}
	}
}
