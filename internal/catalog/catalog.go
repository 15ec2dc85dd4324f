// Package catalog describes the queryable application schema for the
// widget engine: which tables exist, how they join to the base
// application table, which columns may be projected or filtered, and
// which operators and aggregations are allowed. The catalog is static
// and read-only; every widget config is checked against it before any
// SQL is built.
package catalog

// BaseTable is the primary application entity. Every widget query
// implicitly starts from it.
const BaseTable = "application"

// IdentifierColumn relates every section table back to the base table
// and is the identifier returned by drill-down resolution.
const IdentifierColumn = "candidate_id"

type FieldType string

const (
	TypeString   FieldType = "string"
	TypeInteger  FieldType = "integer"
	TypeBoolean  FieldType = "boolean"
	TypeDate     FieldType = "date"
	TypeDateTime FieldType = "datetime"
)

// Field describes one queryable column.
type Field struct {
	Name    string    `json:"name"`
	Type    FieldType `json:"type"`
	Display string    `json:"display"`
	// Values, when set, is the closed set of allowed filter values.
	Values []string `json:"values,omitempty"`
}

// Table describes one queryable table. JoinColumn is empty only for the
// base table; every other table joins to the base on it.
type Table struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	JoinColumn  string  `json:"join_column,omitempty"`
	Fields      []Field `json:"fields"`
}

// Field returns the descriptor for a column, if the table has it.
func (t Table) Field(column string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == column {
			return f, true
		}
	}
	return Field{}, false
}

// Operator is a filter operator allowed in widget conditions.
type Operator struct {
	Value string `json:"value"`
	Label string `json:"label"`
	// Unary operators (IS NULL, IS NOT NULL) take no comparison value.
	Unary bool `json:"unary,omitempty"`
}

// Aggregation is an aggregate function allowed on widget fields.
type Aggregation struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var tables = []Table{
	{
		Name:        "application",
		DisplayName: "Application",
		Fields: []Field{
			{Name: "id", Type: TypeInteger, Display: "ID"},
			{Name: "candidate_id", Type: TypeString, Display: "Candidate ID"},
			{Name: "status", Type: TypeString, Display: "Status", Values: []string{"submitted", "reviewed", "approved", "rejected"}},
			{Name: "created_at", Type: TypeDateTime, Display: "Created At"},
			{Name: "updated_at", Type: TypeDateTime, Display: "Updated At"},
		},
	},
	{
		Name:        "basic_info",
		DisplayName: "Basic Info",
		JoinColumn:  "candidate_id",
		Fields: []Field{
			{Name: "full_name", Type: TypeString, Display: "Full Name"},
			{Name: "gender", Type: TypeString, Display: "Gender", Values: []string{"Male", "Female", "Other"}},
			{Name: "dob", Type: TypeDate, Display: "Date of Birth"},
			{Name: "email", Type: TypeString, Display: "Email"},
			{Name: "contact", Type: TypeString, Display: "Contact"},
			{Name: "differently_abled", Type: TypeBoolean, Display: "Differently Abled"},
			{Name: "has_laptop", Type: TypeBoolean, Display: "Has Laptop"},
			{Name: "laptop_ram", Type: TypeString, Display: "Laptop RAM"},
			{Name: "considered", Type: TypeBoolean, Display: "Considered"},
			{Name: "selected", Type: TypeBoolean, Display: "Selected"},
			{Name: "shortlisted", Type: TypeBoolean, Display: "Shortlisted"},
			{Name: "appeared_for_one_to_one", Type: TypeBoolean, Display: "Appeared for One-to-One"},
		},
	},
	{
		Name:        "educational_info",
		DisplayName: "Educational Info",
		JoinColumn:  "candidate_id",
		Fields: []Field{
			{Name: "college_name", Type: TypeString, Display: "College Name"},
			{Name: "degree", Type: TypeString, Display: "Degree"},
			{Name: "department", Type: TypeString, Display: "Department"},
			{Name: "year", Type: TypeString, Display: "Year of Study"},
			{Name: "tamil_medium", Type: TypeBoolean, Display: "Tamil Medium"},
			{Name: "six_to_8_govt_school", Type: TypeBoolean, Display: "6-8 Govt School"},
			{Name: "nine_to_10_govt_school", Type: TypeBoolean, Display: "9-10 Govt School"},
			{Name: "eleven_to_12_govt_school", Type: TypeBoolean, Display: "11-12 Govt School"},
			{Name: "received_scholarship", Type: TypeBoolean, Display: "Received Scholarship"},
			{Name: "transport_mode", Type: TypeString, Display: "Transport Mode"},
			{Name: "applied_before", Type: TypeString, Display: "Applied Before"},
		},
	},
	{
		Name:        "family_info",
		DisplayName: "Family Info",
		JoinColumn:  "candidate_id",
		Fields: []Field{
			{Name: "family_environment", Type: TypeString, Display: "Family Environment"},
			{Name: "single_parent_info", Type: TypeString, Display: "Single Parent Info"},
			{Name: "family_members_count", Type: TypeInteger, Display: "Family Members"},
			{Name: "earning_members_count", Type: TypeInteger, Display: "Earning Members"},
		},
	},
	{
		Name:        "income_info",
		DisplayName: "Income Info",
		JoinColumn:  "candidate_id",
		Fields: []Field{
			{Name: "total_family_income", Type: TypeString, Display: "Total Family Income"},
			{Name: "house_ownership", Type: TypeString, Display: "House Ownership"},
			{Name: "district", Type: TypeString, Display: "District"},
			{Name: "pincode", Type: TypeString, Display: "Pincode"},
			{Name: "own_land_size", Type: TypeString, Display: "Own Land Size"},
		},
	},
	{
		Name:        "course_info",
		DisplayName: "Course Info",
		JoinColumn:  "candidate_id",
		Fields: []Field{
			{Name: "preferred_course", Type: TypeString, Display: "Preferred Course"},
			{Name: "heard_about_us", Type: TypeBoolean, Display: "Heard About Us"},
			{Name: "participated_in_events", Type: TypeBoolean, Display: "Participated in Events"},
		},
	},
}

var operators = []Operator{
	{Value: "=", Label: "Equals"},
	{Value: "!=", Label: "Not Equals"},
	{Value: "<", Label: "Less Than"},
	{Value: ">", Label: "Greater Than"},
	{Value: "<=", Label: "Less or Equal"},
	{Value: ">=", Label: "Greater or Equal"},
	{Value: "LIKE", Label: "Contains"},
	{Value: "NOT LIKE", Label: "Not Contains"},
	{Value: "IN", Label: "In List"},
	{Value: "NOT IN", Label: "Not In List"},
	{Value: "IS NULL", Label: "Is Empty", Unary: true},
	{Value: "IS NOT NULL", Label: "Is Not Empty", Unary: true},
}

var aggregations = []Aggregation{
	{Value: "COUNT", Label: "Count"},
	{Value: "SUM", Label: "Sum"},
	{Value: "AVG", Label: "Average"},
	{Value: "MIN", Label: "Minimum"},
	{Value: "MAX", Label: "Maximum"},
}

// Tables returns every queryable table, base table first.
func Tables() []Table {
	out := make([]Table, len(tables))
	copy(out, tables)
	return out
}

// Get looks up a table by name.
func Get(name string) (Table, bool) {
	for _, t := range tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// Operators returns the allowed condition operators.
func Operators() []Operator {
	out := make([]Operator, len(operators))
	copy(out, operators)
	return out
}

// Aggregations returns the allowed aggregate functions.
func Aggregations() []Aggregation {
	out := make([]Aggregation, len(aggregations))
	copy(out, aggregations)
	return out
}

// LookupOperator returns the operator descriptor, if allowed.
func LookupOperator(op string) (Operator, bool) {
	for _, o := range operators {
		if o.Value == op {
			return o, true
		}
	}
	return Operator{}, false
}

// IsAggregation reports whether agg is an allowed aggregate function.
func IsAggregation(agg string) bool {
	for _, a := range aggregations {
		if a.Value == agg {
			return true
		}
	}
	return false
}
