package dto

import "github.com/vglug/intake-backend/internal/models"

// SubmitApplicationRequest is the public intake payload. Every section
// arrives together; the service assigns the candidate ID.
type SubmitApplicationRequest struct {
	BasicInfo       models.BasicInfo       `json:"basic_info"`
	EducationalInfo models.EducationalInfo `json:"educational_info"`
	FamilyInfo      models.FamilyInfo      `json:"family_info"`
	IncomeInfo      models.IncomeInfo      `json:"income_info"`
	CourseInfo      models.CourseInfo      `json:"course_info"`
}

type SubmitApplicationResponse struct {
	CandidateID string `json:"candidate_id"`
	Status      string `json:"status"`
}

// ListApplicationsQuery filters the admin listing. CandidateIDs narrows
// the result to an explicit set, which is how widget drill-downs land
// on the applications screen.
type ListApplicationsQuery struct {
	Status       string   `json:"status,omitempty"`
	Search       string   `json:"search,omitempty"`
	CandidateIDs []string `json:"candidate_ids,omitempty"`
	Shortlisted  *bool    `json:"shortlisted,omitempty"`
	Limit        int      `json:"limit,omitempty"`
	Offset       int      `json:"offset,omitempty"`
}

type ApplicationListResponse struct {
	Applications []*models.Application `json:"applications"`
	Total        int                   `json:"total"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type ShortlistRequest struct {
	Shortlisted bool `json:"shortlisted"`
}

type BulkShortlistRequest struct {
	CandidateIDs []string `json:"candidate_ids"`
	Shortlisted  bool     `json:"shortlisted"`
}

// CheckInRequest marks whether a candidate appeared for the one-to-one
// round.
type CheckInRequest struct {
	Appeared bool `json:"appeared"`
}

// DashboardStatsResponse is the fixed summary strip above the widget
// grid.
type DashboardStatsResponse struct {
	TotalApplications int64            `json:"total_applications"`
	ByStatus          map[string]int64 `json:"by_status"`
	Shortlisted       int64            `json:"shortlisted"`
	CheckedIn         int64            `json:"checked_in"`
}
