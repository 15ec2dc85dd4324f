package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/vglug/intake-backend/internal/dto"
	"github.com/vglug/intake-backend/internal/errs"
	"github.com/vglug/intake-backend/internal/models"
	"github.com/vglug/intake-backend/pkg/logger"
)

const firstCandidateSequence = 1001

const defaultListLimit = 50

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// applicationStore is the relational storage interface for
// applications.
type applicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	Get(ctx context.Context, candidateID string) (*models.Application, error)
	List(ctx context.Context, q dto.ListApplicationsQuery) ([]*models.Application, int, error)
	UpdateStatus(ctx context.Context, candidateID, status string) error
	SetShortlisted(ctx context.Context, candidateID string, shortlisted bool) error
	BulkSetShortlisted(ctx context.Context, candidateIDs []string, shortlisted bool) error
	SetAppeared(ctx context.Context, candidateID string, appeared bool) error
	Stats(ctx context.Context) (dto.DashboardStatsResponse, error)
	MaxCandidateSequence(ctx context.Context, year int) (int, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// emailVerifier gates submission on a completed OTP verification.
type emailVerifier interface {
	IsVerified(ctx context.Context, email string) (bool, error)
}

type mailSender interface {
	Send(to, subject, body string) error
}

type applicationService struct {
	store    applicationStore
	verifier emailVerifier
	mailer   mailSender
	now      func() time.Time
}

func NewApplicationService(store applicationStore, verifier emailVerifier, mailer mailSender) *applicationService {
	return &applicationService{
		store:    store,
		verifier: verifier,
		mailer:   mailer,
		now:      time.Now,
	}
}

// Submit validates and persists a new application, assigning the next
// candidate ID for the current year. The confirmation email is best
// effort: the application stands even when delivery fails.
func (s *applicationService) Submit(ctx context.Context, req dto.SubmitApplicationRequest) (*models.Application, error) {
	log := logger.FromContext(ctx)

	if issues := validateSubmission(req); len(issues) > 0 {
		return nil, errs.NewValidationIssues(issues)
	}

	verified, err := s.verifier.IsVerified(ctx, req.BasicInfo.Email)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, errs.NewValidationError("email is not verified")
	}

	exists, err := s.store.EmailExists(ctx, req.BasicInfo.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.NewAlreadyExistsError("an application with this email already exists")
	}

	candidateID, err := s.nextCandidateID(ctx)
	if err != nil {
		return nil, err
	}

	app := &models.Application{
		UUID:            uuid.New().String(),
		CandidateID:     candidateID,
		Status:          models.StatusSubmitted,
		BasicInfo:       &req.BasicInfo,
		EducationalInfo: &req.EducationalInfo,
		FamilyInfo:      &req.FamilyInfo,
		IncomeInfo:      &req.IncomeInfo,
		CourseInfo:      &req.CourseInfo,
	}
	if err := s.store.Create(ctx, app); err != nil {
		return nil, err
	}
	log.Info("application submitted", "candidate_id", candidateID)

	if s.mailer != nil {
		subject := "Application received: " + candidateID
		body := fmt.Sprintf("Dear %s,\n\nYour application has been received. Your candidate ID is %s. Keep it for all further correspondence.\n",
			req.BasicInfo.FullName, candidateID)
		if err := s.mailer.Send(req.BasicInfo.Email, subject, body); err != nil {
			log.Error("failed to send confirmation email", "candidate_id", candidateID, "error", err)
		}
	}
	return app, nil
}

// nextCandidateID issues CID<year><seq>, where seq starts at 1001 each
// year.
func (s *applicationService) nextCandidateID(ctx context.Context) (string, error) {
	year := s.now().Year()
	seq, err := s.store.MaxCandidateSequence(ctx, year)
	if err != nil {
		return "", err
	}
	if seq == 0 {
		seq = firstCandidateSequence - 1
	}
	return fmt.Sprintf("CID%d%d", year, seq+1), nil
}

func validateSubmission(req dto.SubmitApplicationRequest) []errs.ValidationIssue {
	var issues []errs.ValidationIssue
	add := func(code, message string) {
		issues = append(issues, errs.ValidationIssue{Code: code, Message: message})
	}

	b := req.BasicInfo
	if b.FullName == "" {
		add("missing_field", "basic_info.full_name is required")
	}
	if b.Email == "" {
		add("missing_field", "basic_info.email is required")
	} else if !emailPattern.MatchString(b.Email) {
		add("invalid_field", "basic_info.email is not a valid address")
	}
	if b.Contact == "" {
		add("missing_field", "basic_info.contact is required")
	}
	switch b.Gender {
	case "Male", "Female", "Other":
	case "":
		add("missing_field", "basic_info.gender is required")
	default:
		add("invalid_field", "basic_info.gender must be Male, Female or Other")
	}
	if b.DOB != "" {
		if _, err := time.Parse("2006-01-02", b.DOB); err != nil {
			add("invalid_field", "basic_info.dob must be YYYY-MM-DD")
		}
	}
	if req.EducationalInfo.CollegeName == "" {
		add("missing_field", "educational_info.college_name is required")
	}
	if req.CourseInfo.PreferredCourse == "" {
		add("missing_field", "course_info.preferred_course is required")
	}
	return issues
}

func (s *applicationService) Get(ctx context.Context, candidateID string) (*models.Application, error) {
	return s.store.Get(ctx, candidateID)
}

func (s *applicationService) List(ctx context.Context, q dto.ListApplicationsQuery) (dto.ApplicationListResponse, error) {
	if q.Status != "" && !models.ValidStatus(q.Status) {
		return dto.ApplicationListResponse{}, errs.NewValidationError("unknown status: " + q.Status)
	}
	if q.Limit <= 0 {
		q.Limit = defaultListLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	apps, total, err := s.store.List(ctx, q)
	if err != nil {
		return dto.ApplicationListResponse{}, err
	}
	return dto.ApplicationListResponse{Applications: apps, Total: total}, nil
}

func (s *applicationService) UpdateStatus(ctx context.Context, candidateID, status string) (*models.Application, error) {
	if !models.ValidStatus(status) {
		return nil, errs.NewValidationError("unknown status: " + status)
	}
	if err := s.store.UpdateStatus(ctx, candidateID, status); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("application status updated", "candidate_id", candidateID, "status", status)
	return s.store.Get(ctx, candidateID)
}

func (s *applicationService) Shortlist(ctx context.Context, candidateID string, shortlisted bool) error {
	return s.store.SetShortlisted(ctx, candidateID, shortlisted)
}

func (s *applicationService) BulkShortlist(ctx context.Context, req dto.BulkShortlistRequest) error {
	if len(req.CandidateIDs) == 0 {
		return errs.NewValidationError("candidate_ids is required")
	}
	return s.store.BulkSetShortlisted(ctx, req.CandidateIDs, req.Shortlisted)
}

// CheckIn records whether a candidate appeared for the one-to-one
// round.
func (s *applicationService) CheckIn(ctx context.Context, candidateID string, appeared bool) error {
	return s.store.SetAppeared(ctx, candidateID, appeared)
}

func (s *applicationService) Stats(ctx context.Context) (dto.DashboardStatsResponse, error) {
	return s.store.Stats(ctx)
}
