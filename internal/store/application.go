package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vglug/intake-backend/internal/dto"
	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/models"
)

// Schema is the relational layout the widget engine queries. Every
// section table carries the candidate ID so widgets can join any
// section straight onto the application row.
const Schema = `
CREATE TABLE IF NOT EXISTS application (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	uuid TEXT NOT NULL,
	candidate_id TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL DEFAULT 'submitted',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS basic_info (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	candidate_id TEXT NOT NULL UNIQUE REFERENCES application(candidate_id),
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
CREATE TABLE IF NOT EXISTS educational_info (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	candidate_id TEXT NOT NULL UNIQUE REFERENCES application(candidate_id),
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
CREATE TABLE IF NOT EXISTS family_info (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	candidate_id TEXT NOT NULL UNIQUE REFERENCES application(candidate_id),
	family_environment TEXT,
	single_parent_info TEXT,
	family_members_count INTEGER,
	earning_members_count INTEGER
);
CREATE TABLE IF NOT EXISTS income_info (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	candidate_id TEXT NOT NULL UNIQUE REFERENCES application(candidate_id),
	total_family_income TEXT,
	house_ownership TEXT,
	district TEXT,
	pincode TEXT,
	own_land_size TEXT
);
CREATE TABLE IF NOT EXISTS course_info (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	candidate_id TEXT NOT NULL UNIQUE REFERENCES application(candidate_id),
	preferred_course TEXT,
	heard_about_us INTEGER NOT NULL DEFAULT 0,
	participated_in_events INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_application_status ON application(status);
CREATE INDEX IF NOT EXISTS idx_basic_info_email ON basic_info(email);
`

type applicationStore struct {
	db *sql.DB
}

func NewApplicationStore(db *sql.DB) *applicationStore {
	return &applicationStore{db: db}
}

// EnsureSchema creates the application tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return errs.NewDatabaseError("migrate", "failed to apply application schema", err)
	}
	return nil
}

// DB exposes the underlying handle for the widget engine, which runs
// its own compiled statements against the same database.
func (s *applicationStore) DB() *sql.DB {
	return s.db
}

// MaxCandidateSequence returns the highest sequence number issued for a
// given year, 0 when none were. Candidate IDs are CID<year><seq>.
func (s *applicationStore) MaxCandidateSequence(ctx context.Context, year int) (int, error) {
	prefix := fmt.Sprintf("CID%d", year)
	var last sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(candidate_id) FROM application WHERE candidate_id LIKE ?`,
		prefix+"%",
	).Scan(&last)
	if err != nil {
		return 0, errs.NewDatabaseError("read", "failed to read candidate sequence", err)
	}
	if !last.Valid || len(last.String) <= len(prefix) {
		return 0, nil
	}
	seq, err := strconv.Atoi(last.String[len(prefix):])
	if err != nil {
		return 0, errs.NewDatabaseError("read", "malformed candidate id "+last.String, err)
	}
	return seq, nil
}

// EmailExists reports whether any application was submitted with this
// email.
func (s *applicationStore) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM basic_info WHERE LOWER(email) = LOWER(?)`, email,
	).Scan(&n)
	if err != nil {
		return false, errs.NewDatabaseError("read", "failed to check email", err)
	}
	return n > 0, nil
}

// Create persists a full application in one transaction: the base row
// plus every section table.
func (s *applicationStore) Create(ctx context.Context, app *models.Application) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.NewDatabaseError("create", "failed to begin transaction", err)
	}
	defer tx.Rollback()

	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	res, err := tx.ExecContext(ctx,
		`INSERT INTO application (uuid, candidate_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		app.UUID, app.CandidateID, app.Status, now, now,
	)
	if err != nil {
		return errs.NewDatabaseError("create", "failed to insert application", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		app.ID = id
	}

	b := app.BasicInfo
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO basic_info (candidate_id, full_name, dob, gender, email, contact,
			differently_abled, has_laptop, laptop_ram, considered, selected, shortlisted, appeared_for_one_to_one)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.CandidateID, b.FullName, b.DOB, b.Gender, b.Email, b.Contact,
		b.DifferentlyAbled, b.HasLaptop, b.LaptopRAM, b.Considered, b.Selected, b.Shortlisted, b.AppearedForOneToOne,
	); err != nil {
		return errs.NewDatabaseError("create", "failed to insert basic info", err)
	}

	e := app.EducationalInfo
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO educational_info (candidate_id, college_name, degree, department, year,
			tamil_medium, six_to_8_govt_school, nine_to_10_govt_school, eleven_to_12_govt_school,
			received_scholarship, transport_mode, applied_before)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.CandidateID, e.CollegeName, e.Degree, e.Department, e.Year,
		e.TamilMedium, e.SixTo8GovtSchool, e.NineTo10GovtSchool, e.ElevenTo12GovtSchool,
		e.ReceivedScholarship, e.TransportMode, e.AppliedBefore,
	); err != nil {
		return errs.NewDatabaseError("create", "failed to insert educational info", err)
	}

	f := app.FamilyInfo
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO family_info (candidate_id, family_environment, single_parent_info, family_members_count, earning_members_count)
		 VALUES (?, ?, ?, ?, ?)`,
		app.CandidateID, f.FamilyEnvironment, f.SingleParentInfo, f.FamilyMembersCount, f.EarningMembersCount,
	); err != nil {
		return errs.NewDatabaseError("create", "failed to insert family info", err)
	}

	in := app.IncomeInfo
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO income_info (candidate_id, total_family_income, house_ownership, district, pincode, own_land_size)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		app.CandidateID, in.TotalFamilyIncome, in.HouseOwnership, in.District, in.Pincode, in.OwnLandSize,
	); err != nil {
		return errs.NewDatabaseError("create", "failed to insert income info", err)
	}

	c := app.CourseInfo
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO course_info (candidate_id, preferred_course, heard_about_us, participated_in_events)
		 VALUES (?, ?, ?, ?)`,
		app.CandidateID, c.PreferredCourse, c.HeardAboutUs, c.ParticipatedInEvents,
	); err != nil {
		return errs.NewDatabaseError("create", "failed to insert course info", err)
	}

	if err := tx.Commit(); err != nil {
		return errs.NewDatabaseError("create", "failed to commit application", err)
	}
	return nil
}

// Get loads one application with every section attached.
func (s *applicationStore) Get(ctx context.Context, candidateID string) (*models.Application, error) {
	var app models.Application
	err := s.db.QueryRowContext(ctx,
		`SELECT id, uuid, candidate_id, status, created_at, updated_at FROM application WHERE candidate_id = ?`,
		candidateID,
	).Scan(&app.ID, &app.UUID, &app.CandidateID, &app.Status, &app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewNotFoundError("application not found")
	}
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to get application", err)
	}
	if err := s.loadSections(ctx, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *applicationStore) loadSections(ctx context.Context, app *models.Application) error {
	var b models.BasicInfo
	err := s.db.QueryRowContext(ctx,
		`SELECT full_name, dob, gender, email, contact, differently_abled, has_laptop, laptop_ram,
			considered, selected, shortlisted, appeared_for_one_to_one
		 FROM basic_info WHERE candidate_id = ?`, app.CandidateID,
	).Scan(&b.FullName, &b.DOB, &b.Gender, &b.Email, &b.Contact, &b.DifferentlyAbled, &b.HasLaptop,
		&b.LaptopRAM, &b.Considered, &b.Selected, &b.Shortlisted, &b.AppearedForOneToOne)
	if err == nil {
		app.BasicInfo = &b
	} else if !errors.Is(err, sql.ErrNoRows) {
		return errs.NewDatabaseError("read", "failed to load basic info", err)
	}

	var e models.EducationalInfo
	err = s.db.QueryRowContext(ctx,
		`SELECT college_name, degree, department, year, tamil_medium, six_to_8_govt_school,
			nine_to_10_govt_school, eleven_to_12_govt_school, received_scholarship, transport_mode, applied_before
		 FROM educational_info WHERE candidate_id = ?`, app.CandidateID,
	).Scan(&e.CollegeName, &e.Degree, &e.Department, &e.Year, &e.TamilMedium, &e.SixTo8GovtSchool,
		&e.NineTo10GovtSchool, &e.ElevenTo12GovtSchool, &e.ReceivedScholarship, &e.TransportMode, &e.AppliedBefore)
	if err == nil {
		app.EducationalInfo = &e
	} else if !errors.Is(err, sql.ErrNoRows) {
		return errs.NewDatabaseError("read", "failed to load educational info", err)
	}

	var f models.FamilyInfo
	err = s.db.QueryRowContext(ctx,
		`SELECT family_environment, single_parent_info, family_members_count, earning_members_count
		 FROM family_info WHERE candidate_id = ?`, app.CandidateID,
	).Scan(&f.FamilyEnvironment, &f.SingleParentInfo, &f.FamilyMembersCount, &f.EarningMembersCount)
	if err == nil {
		app.FamilyInfo = &f
	} else if !errors.Is(err, sql.ErrNoRows) {
		return errs.NewDatabaseError("read", "failed to load family info", err)
	}

	var in models.IncomeInfo
	err = s.db.QueryRowContext(ctx,
		`SELECT total_family_income, house_ownership, district, pincode, own_land_size
		 FROM income_info WHERE candidate_id = ?`, app.CandidateID,
	).Scan(&in.TotalFamilyIncome, &in.HouseOwnership, &in.District, &in.Pincode, &in.OwnLandSize)
	if err == nil {
		app.IncomeInfo = &in
	} else if !errors.Is(err, sql.ErrNoRows) {
		return errs.NewDatabaseError("read", "failed to load income info", err)
	}

	var c models.CourseInfo
	err = s.db.QueryRowContext(ctx,
		`SELECT preferred_course, heard_about_us, participated_in_events
		 FROM course_info WHERE candidate_id = ?`, app.CandidateID,
	).Scan(&c.PreferredCourse, &c.HeardAboutUs, &c.ParticipatedInEvents)
	if err == nil {
		app.CourseInfo = &c
	} else if !errors.Is(err, sql.ErrNoRows) {
		return errs.NewDatabaseError("read", "failed to load course info", err)
	}

	return nil
}

// List returns applications matching the query plus the total count
// before limit and offset.
func (s *applicationStore) List(ctx context.Context, q dto.ListApplicationsQuery) ([]*models.Application, int, error) {
	where, args := listFilters(q)

	var total int
	countStmt := `SELECT COUNT(1) FROM application a JOIN basic_info b ON a.candidate_id = b.candidate_id` + where
	if err := s.db.QueryRowContext(ctx, countStmt, args...).Scan(&total); err != nil {
		return nil, 0, errs.NewDatabaseError("read", "failed to count applications", err)
	}

	stmt := `SELECT a.id, a.uuid, a.candidate_id, a.status, a.created_at, a.updated_at,
		b.full_name, b.dob, b.gender, b.email, b.contact, b.differently_abled, b.has_laptop,
		b.laptop_ram, b.considered, b.selected, b.shortlisted, b.appeared_for_one_to_one
		FROM application a JOIN basic_info b ON a.candidate_id = b.candidate_id` + where +
		` ORDER BY a.candidate_id ASC`
	listArgs := append([]any(nil), args...)
	if q.Limit > 0 {
		stmt += ` LIMIT ? OFFSET ?`
		listArgs = append(listArgs, q.Limit, q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, stmt, listArgs...)
	if err != nil {
		return nil, 0, errs.NewDatabaseError("read", "failed to list applications", err)
	}
	defer rows.Close()

	apps := make([]*models.Application, 0)
	for rows.Next() {
		var app models.Application
		var b models.BasicInfo
		if err := rows.Scan(&app.ID, &app.UUID, &app.CandidateID, &app.Status, &app.CreatedAt, &app.UpdatedAt,
			&b.FullName, &b.DOB, &b.Gender, &b.Email, &b.Contact, &b.DifferentlyAbled, &b.HasLaptop,
			&b.LaptopRAM, &b.Considered, &b.Selected, &b.Shortlisted, &b.AppearedForOneToOne); err != nil {
			return nil, 0, errs.NewDatabaseError("read", "failed to read application row", err)
		}
		app.BasicInfo = &b
		apps = append(apps, &app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errs.NewDatabaseError("read", "failed to read application rows", err)
	}
	return apps, total, nil
}

func listFilters(q dto.ListApplicationsQuery) (string, []any) {
	var clauses []string
	var args []any

	if q.Status != "" {
		clauses = append(clauses, `a.status = ?`)
		args = append(args, q.Status)
	}
	if q.Search != "" {
		clauses = append(clauses, `(b.full_name LIKE ? OR b.email LIKE ? OR a.candidate_id LIKE ?)`)
		pattern := "%" + q.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if q.Shortlisted != nil {
		clauses = append(clauses, `b.shortlisted = ?`)
		args = append(args, *q.Shortlisted)
	}
	if len(q.CandidateIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(q.CandidateIDs)), ", ")
		clauses = append(clauses, `a.candidate_id IN (`+placeholders+`)`)
		for _, id := range q.CandidateIDs {
			args = append(args, id)
		}
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *applicationStore) UpdateStatus(ctx context.Context, candidateID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE application SET status = ?, updated_at = ? WHERE candidate_id = ?`,
		status, time.Now(), candidateID,
	)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update status", err)
	}
	return requireRow(res, "application not found")
}

func (s *applicationStore) SetShortlisted(ctx context.Context, candidateID string, shortlisted bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE basic_info SET shortlisted = ? WHERE candidate_id = ?`,
		shortlisted, candidateID,
	)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update shortlist flag", err)
	}
	return requireRow(res, "application not found")
}

// BulkSetShortlisted updates the shortlist flag for a set of candidates
// in one transaction. Unknown candidate IDs are reported, not silently
// skipped.
func (s *applicationStore) BulkSetShortlisted(ctx context.Context, candidateIDs []string, shortlisted bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to begin transaction", err)
	}
	defer tx.Rollback()

	for _, id := range candidateIDs {
		res, err := tx.ExecContext(ctx,
			`UPDATE basic_info SET shortlisted = ? WHERE candidate_id = ?`, shortlisted, id,
		)
		if err != nil {
			return errs.NewDatabaseError("update", "failed to update shortlist flag", err)
		}
		if err := requireRow(res, "application "+id+" not found"); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return errs.NewDatabaseError("update", "failed to commit shortlist update", err)
	}
	return nil
}

func (s *applicationStore) SetAppeared(ctx context.Context, candidateID string, appeared bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE basic_info SET appeared_for_one_to_one = ? WHERE candidate_id = ?`,
		appeared, candidateID,
	)
	if err != nil {
		return errs.NewDatabaseError("update", "failed to update check-in flag", err)
	}
	return requireRow(res, "application not found")
}

// Stats aggregates the fixed dashboard summary counters.
func (s *applicationStore) Stats(ctx context.Context) (dto.DashboardStatsResponse, error) {
	stats := dto.DashboardStatsResponse{ByStatus: make(map[string]int64)}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM application GROUP BY status`)
	if err != nil {
		return stats, errs.NewDatabaseError("read", "failed to read status counts", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return stats, errs.NewDatabaseError("read", "failed to read status counts", err)
		}
		stats.ByStatus[status] = n
		stats.TotalApplications += n
	}
	if err := rows.Err(); err != nil {
		return stats, errs.NewDatabaseError("read", "failed to read status counts", err)
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM basic_info WHERE shortlisted = 1`,
	).Scan(&stats.Shortlisted); err != nil {
		return stats, errs.NewDatabaseError("read", "failed to read shortlist count", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM basic_info WHERE appeared_for_one_to_one = 1`,
	).Scan(&stats.CheckedIn); err != nil {
		return stats, errs.NewDatabaseError("read", "failed to read check-in count", err)
	}
	return stats, nil
}

func requireRow(res sql.Result, message string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errs.NewDatabaseError("update", "failed to read affected rows", err)
	}
	if n == 0 {
		return errs.NewNotFoundError(message)
	}
	return nil
}
