// Package query turns validated widget configurations into
// parameterized SQL plans, executes them, and maps aggregated results
// back to the underlying candidate identifiers. Configurations are
// checked against the catalog before compilation; the compiler only ever
// emits identifiers taken from the catalog whitelist, and every filter
// value travels as a bind parameter.
package query

import (
	"strconv"
	"strings"
)

// DefaultLimit is applied when a config leaves its limit unset.
const DefaultLimit = 100

// MaxLimit bounds the rows any single widget query may return.
const MaxLimit = 1000

// Plan is the compiled, ephemeral form of a widget query. It is
// deterministic for a given config and carries no user-supplied query
// text: identifiers come from the catalog, values ride in Args.
type Plan struct {
	BaseTable   string
	Distinct    bool
	Joins       []Join
	Projections []Projection
	Predicates  []Predicate
	GroupBy     []string
	OrderBy     []OrderTerm
	Limit       int
}

// Join is one resolved join clause: LEFT JOIN Table ON
// base.identifier = Table.Column. Every join targets the base table
// directly (star shape); chained joins are out of scope.
type Join struct {
	Table  string
	Column string
}

// Projection pairs a rendered column or aggregate expression with its
// output alias.
type Projection struct {
	Expr  string
	Alias string
}

// Predicate is one compiled condition. Logic connects it to the
// previous predicate; the first predicate's logic is ignored. Predicates
// combine strictly left to right with no parenthesization.
type Predicate struct {
	Logic string // "AND" or "OR"
	Expr  string
	Args  []any
}

type OrderTerm struct {
	Alias string
	Desc  bool
}

// SQL renders the plan to a single parameterized statement plus its
// ordered bind arguments. Rendering is purely mechanical; all safety
// decisions were made at compile time.
func (p *Plan) SQL() (string, []any) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT ")
	if p.Distinct {
		b.WriteString("DISTINCT ")
	}
	for i, proj := range p.Projections {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(proj.Expr)
		b.WriteString(" AS ")
		b.WriteString(quoteIdent(proj.Alias))
	}

	b.WriteString(" FROM ")
	b.WriteString(quoteIdent(p.BaseTable))

	baseID := columnRef(p.BaseTable, identifierColumn)
	for _, j := range p.Joins {
		b.WriteString(" LEFT JOIN ")
		b.WriteString(quoteIdent(j.Table))
		b.WriteString(" ON ")
		b.WriteString(baseID)
		b.WriteString(" = ")
		b.WriteString(columnRef(j.Table, j.Column))
	}

	if len(p.Predicates) > 0 {
		b.WriteString(" WHERE ")
		for i, pred := range p.Predicates {
			if i > 0 {
				b.WriteString(" ")
				b.WriteString(pred.Logic)
				b.WriteString(" ")
			}
			b.WriteString(pred.Expr)
			args = append(args, pred.Args...)
		}
	}

	if len(p.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(p.GroupBy, ", "))
	}

	if len(p.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")
		for i, o := range p.OrderBy {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quoteIdent(o.Alias))
			if o.Desc {
				b.WriteString(" DESC")
			} else {
				b.WriteString(" ASC")
			}
		}
	}

	if p.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(p.Limit))
	}

	return b.String(), args
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}

func columnRef(table, column string) string {
	return quoteIdent(table) + "." + quoteIdent(column)
}
