package query

import (
	"errors"
	"sort"
	"testing"

	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/models"
)

func sorted(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

func TestResolveAllMatchingWithoutConditions(t *testing.T) {
	db := newTestDB(t)

	ids, err := ResolveAllMatching(testCtx(), db, genderCountConfig(), 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(ids) != len(seedRows) {
		t.Fatalf("ids = %v, want all %d candidates", ids, len(seedRows))
	}
}

func TestResolveAllMatchingAppliesWidgetFilters(t *testing.T) {
	db := newTestDB(t)
	cfg := genderCountConfig()
	cfg.Conditions = []models.Condition{
		{Table: "basic_info", Column: "has_laptop", Operator: "=", Value: true},
	}

	ids, err := ResolveAllMatching(testCtx(), db, cfg, 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{"CID20250001", "CID20250003", "CID20250005", "CID20250007"}
	if got := sorted(ids); len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	} else {
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("ids = %v, want %v", got, want)
			}
		}
	}
}

func TestResolveSegmentByAlias(t *testing.T) {
	db := newTestDB(t)

	ids, err := ResolveSegment(testCtx(), db, collegeCountConfig(), "college", "St. Xavier's College", 0)
	if err != nil {
		t.Fatalf("resolve segment: %v", err)
	}
	want := []string{"CID20250001", "CID20250002"}
	got := sorted(ids)
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
}

func TestResolveSegmentNullValues(t *testing.T) {
	db := newTestDB(t)

	// Chart layers render a missing college as the string "null"; both
	// that and a true nil map to an IS NULL probe.
	for _, value := range []any{nil, "null", "None"} {
		ids, err := ResolveSegment(testCtx(), db, collegeCountConfig(), "college", value, 0)
		if err != nil {
			t.Fatalf("resolve segment (%v): %v", value, err)
		}
		if len(ids) != 1 || ids[0] != "CID20250007" {
			t.Fatalf("segment %v ids = %v, want [CID20250007]", value, ids)
		}
	}
}

func TestResolveSegmentBooleanStrings(t *testing.T) {
	db := newTestDB(t)
	cfg := models.WidgetConfig{
		DataSource: models.DataSource{BaseTable: "application", Joins: []string{"basic_info"}},
		Fields: []models.FieldRef{
			{Table: "basic_info", Column: "has_laptop", Alias: "has_laptop"},
			{Table: "application", Column: "id", Alias: "count", Aggregation: "COUNT"},
		},
		GroupBy: []string{"basic_info.has_laptop"},
	}

	ids, err := ResolveSegment(testCtx(), db, cfg, "has_laptop", "false", 0)
	if err != nil {
		t.Fatalf("resolve segment: %v", err)
	}
	want := []string{"CID20250002", "CID20250004", "CID20250006"}
	got := sorted(ids)
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

// Segments of a grouped widget partition its matching population: the
// identifiers behind each rendered group, taken together, are exactly
// the all-matching set, and each segment's size equals its COUNT value.
func TestResolveSegmentsPartitionAllMatching(t *testing.T) {
	db := newTestDB(t)
	eng := NewEngine(db)
	cfg := genderCountConfig()

	rows, err := eng.Run(testCtx(), cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	all, err := eng.AllCandidates(testCtx(), cfg, 0)
	if err != nil {
		t.Fatalf("all candidates: %v", err)
	}

	seen := make(map[string]bool)
	for _, row := range rows {
		ids, err := eng.SegmentCandidates(testCtx(), cfg, "gender", row["gender"], 0)
		if err != nil {
			t.Fatalf("segment %v: %v", row["gender"], err)
		}
		if int64(len(ids)) != row["count"].(int64) {
			t.Errorf("segment %v has %d candidates, chart says %v", row["gender"], len(ids), row["count"])
		}
		for _, id := range ids {
			if seen[id] {
				t.Errorf("candidate %s appears in more than one segment", id)
			}
			seen[id] = true
		}
	}
	if len(seen) != len(all) {
		t.Errorf("segments cover %d candidates, all-matching has %d", len(seen), len(all))
	}
	for _, id := range all {
		if !seen[id] {
			t.Errorf("candidate %s missing from every segment", id)
		}
	}
}

func TestResolveSegmentUnknownFieldIsValidationError(t *testing.T) {
	db := newTestDB(t)

	_, err := ResolveSegment(testCtx(), db, genderCountConfig(), "shoe_size", "42", 0)
	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestIdentifierLimitClamps(t *testing.T) {
	if got := identifierLimit(0); got != DefaultIdentifierLimit {
		t.Errorf("identifierLimit(0) = %d", got)
	}
	if got := identifierLimit(200); got != 200 {
		t.Errorf("identifierLimit(200) = %d", got)
	}
	if got := identifierLimit(999999); got != maxIdentifierLimit {
		t.Errorf("identifierLimit(999999) = %d", got)
	}
}
