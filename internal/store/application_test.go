package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/vglug/intake-backend/internal/dto"
	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/models"
)

func newAppStore(t *testing.T) *applicationStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return NewApplicationStore(db)
}

func testApplication(candidateID, name, email string) *models.Application {
	return &models.Application{
		UUID:        candidateID + "-uuid",
		CandidateID: candidateID,
		Status:      models.StatusSubmitted,
		BasicInfo: &models.BasicInfo{
			FullName: name,
			Gender:   "Female",
			Email:    email,
			Contact:  "9000000000",
			DOB:      "2004-06-01",
		},
		EducationalInfo: &models.EducationalInfo{
			CollegeName: "Loyola College",
			Degree:      "BSc",
			Department:  "Computer Science",
			Year:        "2",
		},
		FamilyInfo: &models.FamilyInfo{
			FamilyEnvironment:   "joint",
			FamilyMembersCount:  5,
			EarningMembersCount: 1,
		},
		IncomeInfo: &models.IncomeInfo{
			TotalFamilyIncome: "below_1l",
			HouseOwnership:    "rented",
			District:          "Chennai",
			Pincode:           "600001",
		},
		CourseInfo: &models.CourseInfo{
			PreferredCourse: "golang",
			HeardAboutUs:    true,
		},
	}
}

func TestApplicationCreateAndGet(t *testing.T) {
	s := newAppStore(t)
	ctx := context.Background()

	app := testApplication("CID20261001", "Priya S", "priya@example.com")
	if err := s.Create(ctx, app); err != nil {
		t.Fatalf("create: %v", err)
	}
	if app.ID == 0 {
		t.Error("create should fill in the row id")
	}

	got, err := s.Get(ctx, "CID20261001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusSubmitted {
		t.Errorf("status = %q", got.Status)
	}
	if got.BasicInfo == nil || got.BasicInfo.FullName != "Priya S" {
		t.Errorf("basic info = %+v", got.BasicInfo)
	}
	if got.EducationalInfo == nil || got.EducationalInfo.CollegeName != "Loyola College" {
		t.Errorf("educational info = %+v", got.EducationalInfo)
	}
	if got.CourseInfo == nil || !got.CourseInfo.HeardAboutUs {
		t.Errorf("course info = %+v", got.CourseInfo)
	}
}

func TestApplicationGetMissing(t *testing.T) {
	s := newAppStore(t)

	_, err := s.Get(context.Background(), "CID20269999")
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestMaxCandidateSequence(t *testing.T) {
	s := newAppStore(t)
	ctx := context.Background()

	seq, err := s.MaxCandidateSequence(ctx, 2026)
	if err != nil {
		t.Fatalf("sequence: %v", err)
	}
	if seq != 0 {
		t.Fatalf("empty store sequence = %d, want 0", seq)
	}

	for _, id := range []string{"CID20261001", "CID20261002", "CID20251005"} {
		if err := s.Create(ctx, testApplication(id, "A", id+"@example.com")); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	seq, err = s.MaxCandidateSequence(ctx, 2026)
	if err != nil {
		t.Fatalf("sequence: %v", err)
	}
	if seq != 1002 {
		t.Errorf("sequence for 2026 = %d, want 1002", seq)
	}
	seq, err = s.MaxCandidateSequence(ctx, 2025)
	if err != nil {
		t.Fatalf("sequence: %v", err)
	}
	if seq != 1005 {
		t.Errorf("sequence for 2025 = %d, want 1005", seq)
	}
}

func TestEmailExists(t *testing.T) {
	s := newAppStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, testApplication("CID20261001", "Priya S", "priya@example.com")); err != nil {
		t.Fatalf("create: %v", err)
	}

	exists, err := s.EmailExists(ctx, "PRIYA@example.com")
	if err != nil {
		t.Fatalf("email exists: %v", err)
	}
	if !exists {
		t.Error("lookup should be case insensitive")
	}
	exists, err = s.EmailExists(ctx, "other@example.com")
	if err != nil {
		t.Fatalf("email exists: %v", err)
	}
	if exists {
		t.Error("unknown email reported as existing")
	}
}

func TestApplicationListFilters(t *testing.T) {
	s := newAppStore(t)
	ctx := context.Background()

	for _, row := range []struct{ id, name, email, status string }{
		{"CID20261001", "Priya S", "priya@example.com", models.StatusSubmitted},
		{"CID20261002", "Arun K", "arun@example.com", models.StatusApproved},
		{"CID20261003", "Meena R", "meena@example.com", models.StatusSubmitted},
	} {
		app := testApplication(row.id, row.name, row.email)
		app.Status = row.status
		if err := s.Create(ctx, app); err != nil {
			t.Fatalf("create %s: %v", row.id, err)
		}
	}
	if err := s.SetShortlisted(ctx, "CID20261003", true); err != nil {
		t.Fatalf("shortlist: %v", err)
	}

	apps, total, err := s.List(ctx, dto.ListApplicationsQuery{Status: models.StatusSubmitted})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(apps) != 2 {
		t.Fatalf("status filter: total=%d len=%d", total, len(apps))
	}

	apps, total, err = s.List(ctx, dto.ListApplicationsQuery{Search: "aru"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || apps[0].CandidateID != "CID20261002" {
		t.Fatalf("search filter: total=%d apps=%+v", total, apps)
	}

	apps, total, err = s.List(ctx, dto.ListApplicationsQuery{
		CandidateIDs: []string{"CID20261001", "CID20261003"},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 {
		t.Fatalf("candidate id filter: total=%d", total)
	}
	for _, a := range apps {
		if a.CandidateID == "CID20261002" {
			t.Error("candidate id filter returned an excluded row")
		}
	}

	shortlisted := true
	apps, total, err = s.List(ctx, dto.ListApplicationsQuery{Shortlisted: &shortlisted})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || apps[0].CandidateID != "CID20261003" {
		t.Fatalf("shortlist filter: total=%d apps=%+v", total, apps)
	}

	apps, total, err = s.List(ctx, dto.ListApplicationsQuery{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(apps) != 1 {
		t.Fatalf("pagination: total=%d len=%d", total, len(apps))
	}
}

func TestApplicationStatusAndCheckIn(t *testing.T) {
	s := newAppStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, testApplication("CID20261001", "Priya S", "priya@example.com")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.UpdateStatus(ctx, "CID20261001", models.StatusReviewed); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := s.SetAppeared(ctx, "CID20261001", true); err != nil {
		t.Fatalf("check in: %v", err)
	}

	got, err := s.Get(ctx, "CID20261001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusReviewed {
		t.Errorf("status = %q", got.Status)
	}
	if !got.BasicInfo.AppearedForOneToOne {
		t.Error("check-in flag not persisted")
	}

	var nf *errs.NotFoundError
	if err := s.UpdateStatus(ctx, "CID20269999", models.StatusReviewed); !errors.As(err, &nf) {
		t.Errorf("update of missing application = %v, want NotFoundError", err)
	}
}

func TestBulkSetShortlistedRollsBackOnUnknownID(t *testing.T) {
	s := newAppStore(t)
	ctx := context.Background()

	if err := s.Create(ctx, testApplication("CID20261001", "Priya S", "priya@example.com")); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := s.BulkSetShortlisted(ctx, []string{"CID20261001", "CID20269999"}, true)
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}

	got, err := s.Get(ctx, "CID20261001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.BasicInfo.Shortlisted {
		t.Error("partial bulk update was not rolled back")
	}
}

func TestStats(t *testing.T) {
	s := newAppStore(t)
	ctx := context.Background()

	for i, status := range []string{models.StatusSubmitted, models.StatusSubmitted, models.StatusApproved} {
		id := "CID2026100" + string(rune('1'+i))
		app := testApplication(id, "A", id+"@example.com")
		app.Status = status
		if err := s.Create(ctx, app); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := s.SetShortlisted(ctx, "CID20261001", true); err != nil {
		t.Fatalf("shortlist: %v", err)
	}
	if err := s.SetAppeared(ctx, "CID20261002", true); err != nil {
		t.Fatalf("check in: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalApplications != 3 {
		t.Errorf("total = %d", stats.TotalApplications)
	}
	if stats.ByStatus[models.StatusSubmitted] != 2 || stats.ByStatus[models.StatusApproved] != 1 {
		t.Errorf("by status = %v", stats.ByStatus)
	}
	if stats.Shortlisted != 1 || stats.CheckedIn != 1 {
		t.Errorf("shortlisted = %d, checked in = %d", stats.Shortlisted, stats.CheckedIn)
	}
}
