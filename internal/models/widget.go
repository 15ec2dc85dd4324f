package models

import (
	"sort"
	"time"
)

// Widget is a saved dashboard widget: a declarative query plus chart
// presentation, owned by the admin who created it.
type Widget struct {
	ID          int64        `firestore:"id" json:"id"`
	Title       string       `firestore:"title" json:"title"`
	Description string       `firestore:"description,omitempty" json:"description,omitempty"`
	WidgetType  string       `firestore:"widgetType" json:"widget_type"` // "pie","bar","line","number","table"
	Config      WidgetConfig `firestore:"config" json:"config"`
	Position    int          `firestore:"position" json:"position"`
	Width       string       `firestore:"width" json:"width"`
	CreatedBy   string       `firestore:"createdBy" json:"created_by"`
	IsActive    bool         `firestore:"isActive" json:"is_active"`
	CreatedAt   time.Time    `firestore:"createdAt" json:"created_at"`
	UpdatedAt   time.Time    `firestore:"updatedAt" json:"updated_at"`
}

// WidgetConfig is the declarative query specification a widget carries.
// It is validated against the catalog and compiled into SQL; it never
// contains query text itself.
type WidgetConfig struct {
	DataSource DataSource  `firestore:"dataSource" json:"data_source"`
	Fields     []FieldRef  `firestore:"fields" json:"fields"`
	Conditions []Condition `firestore:"conditions,omitempty" json:"conditions,omitempty"`
	GroupBy    []string    `firestore:"groupBy,omitempty" json:"group_by,omitempty"`
	OrderBy    []OrderBy   `firestore:"orderBy,omitempty" json:"order_by,omitempty"`
	Limit      int         `firestore:"limit,omitempty" json:"limit,omitempty"`
	Chart      ChartConfig `firestore:"chart,omitempty" json:"chart_config,omitempty"`
}

// DataSource names the base table and the tables joined to it.
type DataSource struct {
	BaseTable string   `firestore:"baseTable" json:"base_table"`
	Joins     []string `firestore:"joins,omitempty" json:"joins,omitempty"`
}

// FieldRef is one projected output column, optionally aggregated.
type FieldRef struct {
	Table       string `firestore:"table" json:"table"`
	Column      string `firestore:"column" json:"column"`
	Alias       string `firestore:"alias,omitempty" json:"alias,omitempty"`
	Aggregation string `firestore:"aggregation,omitempty" json:"aggregation,omitempty"` // "", "COUNT","SUM","AVG","MIN","MAX"
}

// Condition is one filter predicate. Logic connects it to the previous
// condition ("AND"/"OR"); the first condition's logic is ignored.
type Condition struct {
	Logic    string `firestore:"logic,omitempty" json:"logic,omitempty"`
	Table    string `firestore:"table" json:"table"`
	Column   string `firestore:"column" json:"column"`
	Operator string `firestore:"operator" json:"operator"`
	Value    any    `firestore:"value,omitempty" json:"value,omitempty"`
}

type OrderBy struct {
	Column    string `firestore:"column" json:"column"`
	Direction string `firestore:"direction" json:"direction"` // "ASC" or "DESC"
}

// ChartConfig is presentation-only; the compiler never reads it.
type ChartConfig struct {
	NameField  string   `firestore:"nameField,omitempty" json:"name_field,omitempty"`
	ValueField string   `firestore:"valueField,omitempty" json:"value_field,omitempty"`
	Colors     []string `firestore:"colors,omitempty" json:"colors,omitempty"`
	ShowLegend bool     `firestore:"showLegend,omitempty" json:"show_legend,omitempty"`
	ShowLabels bool     `firestore:"showLabels,omitempty" json:"show_labels,omitempty"`
}

// Base returns the configured base table, defaulting to fallback when
// the config leaves it empty.
func (c WidgetConfig) Base(fallback string) string {
	if c.DataSource.BaseTable != "" {
		return c.DataSource.BaseTable
	}
	return fallback
}

// EffectiveAlias is the output alias of a field, defaulting to its
// column name.
func (f FieldRef) EffectiveAlias() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Column
}

// IsAggregate reports whether any field carries an aggregation.
func (c WidgetConfig) IsAggregate() bool {
	for _, f := range c.Fields {
		if f.Aggregation != "" {
			return true
		}
	}
	return false
}

// ReferencedTables returns the sorted union of the base table, the
// declared joins, and every table named by a field, condition, or
// group_by entry. Empty per-item tables fall back to the base.
func (c WidgetConfig) ReferencedTables(base string) []string {
	b := c.Base(base)
	set := map[string]bool{b: true}
	for _, j := range c.DataSource.Joins {
		set[j] = true
	}
	for _, f := range c.Fields {
		set[tableOr(f.Table, b)] = true
	}
	for _, cond := range c.Conditions {
		set[tableOr(cond.Table, b)] = true
	}
	for _, g := range c.GroupBy {
		if t, _, ok := splitQualified(g); ok {
			set[t] = true
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// OutputAliases returns the aliases of every field in declaration order.
func (c WidgetConfig) OutputAliases() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = f.EffectiveAlias()
	}
	return out
}

// FieldFor resolves an alias (or bare column name) back to its field
// declaration, the mapping drill-down uses to locate a segment column.
func (c WidgetConfig) FieldFor(alias string) (FieldRef, bool) {
	for _, f := range c.Fields {
		if f.EffectiveAlias() == alias {
			return f, true
		}
	}
	for _, f := range c.Fields {
		if f.Column == alias {
			return f, true
		}
	}
	return FieldRef{}, false
}

func tableOr(t, fallback string) string {
	if t != "" {
		return t
	}
	return fallback
}

func splitQualified(ref string) (table, column string, ok bool) {
	for i := 0; i < len(ref); i++ {
		if ref[i] == '.' {
			if i == 0 || i == len(ref)-1 {
				return "", "", false
			}
			return ref[:i], ref[i+1:], true
		}
	}
	return "", "", false
}
