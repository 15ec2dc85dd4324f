package query

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/vglug/intake-backend/internal/models"
)

const testSchema = `
CREATE TABLE application (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uuid TEXT NOT NULL,
	candidate_id TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL DEFAULT 'submitted',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE basic_info (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	candidate_id TEXT NOT NULL UNIQUE,
	full_name TEXT NOT NULL,
	dob TEXT,
	gender TEXT,
	email TEXT,
	contact TEXT,
	differently_abled INTEGER NOT NULL DEFAULT 0,
	has_laptop INTEGER NOT NULL DEFAULT 0,
	laptop_ram TEXT,
	considered INTEGER NOT NULL DEFAULT 0,
	selected INTEGER NOT NULL DEFAULT 0,
	shortlisted INTEGER NOT NULL DEFAULT 0,
	appeared_for_one_to_one INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE educational_info (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	candidate_id TEXT NOT NULL UNIQUE,
	college_name TEXT,
	degree TEXT,
	department TEXT,
	year TEXT,
	tamil_medium INTEGER NOT NULL DEFAULT 0,
	six_to_8_govt_school INTEGER NOT NULL DEFAULT 0,
	nine_to_10_govt_school INTEGER NOT NULL DEFAULT 0,
	eleven_to_12_govt_school INTEGER NOT NULL DEFAULT 0,
	received_scholarship INTEGER NOT NULL DEFAULT 0,
	transport_mode TEXT,
	applied_before TEXT
);
CREATE TABLE family_info (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	candidate_id TEXT NOT NULL UNIQUE,
	family_environment TEXT,
	single_parent_info TEXT,
	family_members_count INTEGER,
	earning_members_count INTEGER
);
CREATE TABLE income_info (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	candidate_id TEXT NOT NULL UNIQUE,
	total_family_income TEXT,
	house_ownership TEXT,
	district TEXT,
	pincode TEXT,
	own_land_size TEXT
);
CREATE TABLE course_info (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	candidate_id TEXT NOT NULL UNIQUE,
	preferred_course TEXT,
	heard_about_us INTEGER NOT NULL DEFAULT 0,
	participated_in_events INTEGER NOT NULL DEFAULT 0
);
`

type seedRow struct {
	candidateID string
	status      string
	gender      string
	hasLaptop   int
	college     string // empty = no educational_info row
}

var seedRows = []seedRow{
	{"CID20250001", "submitted", "Female", 1, "St. Xavier's College"},
	{"CID20250002", "approved", "Female", 0, "St. Xavier's College"},
	{"CID20250003", "submitted", "Male", 1, "Govt Arts College"},
	{"CID20250004", "submitted", "Other", 0, "Govt Arts College"},
	{"CID20250005", "reviewed", "Female", 1, "Loyola College"},
	{"CID20250006", "rejected", "Male", 0, "Loyola College"},
	{"CID20250007", "submitted", "Male", 1, ""},
}

// newTestDB opens an in-memory SQLite database seeded with a small,
// known population of applications.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A single connection keeps every statement on the same in-memory
	// database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	for i, r := range seedRows {
		if _, err := db.Exec(
			`INSERT INTO application (uuid, candidate_id, status) VALUES (?, ?, ?)`,
			r.candidateID+"-uuid", r.candidateID, r.status,
		); err != nil {
			t.Fatalf("seed application %d: %v", i, err)
		}
		if _, err := db.Exec(
			`INSERT INTO basic_info (candidate_id, full_name, gender, has_laptop) VALUES (?, ?, ?, ?)`,
			r.candidateID, "Applicant "+r.candidateID, r.gender, r.hasLaptop,
		); err != nil {
			t.Fatalf("seed basic_info %d: %v", i, err)
		}
		if r.college != "" {
			if _, err := db.Exec(
				`INSERT INTO educational_info (candidate_id, college_name) VALUES (?, ?)`,
				r.candidateID, r.college,
			); err != nil {
				t.Fatalf("seed educational_info %d: %v", i, err)
			}
		}
	}

	return db
}

// genderCountConfig is the canonical aggregate widget: applicants per
// gender, largest groups first.
func genderCountConfig() models.WidgetConfig {
	return models.WidgetConfig{
		DataSource: models.DataSource{
			BaseTable: "application",
			Joins:     []string{"basic_info"},
		},
		Fields: []models.FieldRef{
			{Table: "basic_info", Column: "gender", Alias: "gender"},
			{Table: "application", Column: "id", Alias: "count", Aggregation: "COUNT"},
		},
		GroupBy: []string{"basic_info.gender"},
		OrderBy: []models.OrderBy{{Column: "count", Direction: "DESC"}},
		Chart:   models.ChartConfig{NameField: "gender", ValueField: "count"},
	}
}

func collegeCountConfig() models.WidgetConfig {
	return models.WidgetConfig{
		DataSource: models.DataSource{
			BaseTable: "application",
			Joins:     []string{"educational_info"},
		},
		Fields: []models.FieldRef{
			{Table: "educational_info", Column: "college_name", Alias: "college"},
			{Table: "application", Column: "id", Alias: "count", Aggregation: "COUNT"},
		},
		GroupBy: []string{"educational_info.college_name"},
	}
}

func mustCompile(t *testing.T, cfg models.WidgetConfig) *Plan {
	t.Helper()
	if res := Validate(cfg); !res.Valid {
		t.Fatalf("config unexpectedly invalid: %+v", res.Issues)
	}
	p, err := Compile(cfg)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return p
}

func testCtx() context.Context {
	return context.Background()
}
