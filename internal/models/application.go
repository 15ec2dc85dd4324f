package models

import "time"

// Application statuses.
const (
	StatusSubmitted = "submitted"
	StatusReviewed  = "reviewed"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

// Application is the normalized application record. Section structs are
// stored in their own tables, related by candidate ID.
type Application struct {
	ID          int64     `json:"id"`
	UUID        string    `json:"uuid"`
	CandidateID string    `json:"candidate_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	BasicInfo       *BasicInfo       `json:"basic_info,omitempty"`
	EducationalInfo *EducationalInfo `json:"educational_info,omitempty"`
	FamilyInfo      *FamilyInfo      `json:"family_info,omitempty"`
	IncomeInfo      *IncomeInfo      `json:"income_info,omitempty"`
	CourseInfo      *CourseInfo      `json:"course_info,omitempty"`
}

// BasicInfo holds the applicant's personal details section.
type BasicInfo struct {
	FullName            string `json:"full_name"`
	DOB                 string `json:"dob"` // YYYY-MM-DD
	Gender              string `json:"gender"`
	Email               string `json:"email"`
	Contact             string `json:"contact"`
	DifferentlyAbled    bool   `json:"differently_abled"`
	HasLaptop           bool   `json:"has_laptop"`
	LaptopRAM           string `json:"laptop_ram,omitempty"`
	Considered          bool   `json:"considered"`
	Selected            bool   `json:"selected"`
	Shortlisted         bool   `json:"shortlisted"`
	AppearedForOneToOne bool   `json:"appeared_for_one_to_one"`
}

type EducationalInfo struct {
	CollegeName          string `json:"college_name"`
	Degree               string `json:"degree"`
	Department           string `json:"department"`
	Year                 string `json:"year"`
	TamilMedium          bool   `json:"tamil_medium"`
	SixTo8GovtSchool     bool   `json:"six_to_8_govt_school"`
	NineTo10GovtSchool   bool   `json:"nine_to_10_govt_school"`
	ElevenTo12GovtSchool bool   `json:"eleven_to_12_govt_school"`
	ReceivedScholarship  bool   `json:"received_scholarship"`
	TransportMode        string `json:"transport_mode"`
	AppliedBefore        string `json:"applied_before"`
}

type FamilyInfo struct {
	FamilyEnvironment   string `json:"family_environment"`
	SingleParentInfo    string `json:"single_parent_info,omitempty"`
	FamilyMembersCount  int    `json:"family_members_count"`
	EarningMembersCount int    `json:"earning_members_count"`
}

type IncomeInfo struct {
	TotalFamilyIncome string `json:"total_family_income"`
	HouseOwnership    string `json:"house_ownership"`
	District          string `json:"district"`
	Pincode           string `json:"pincode"`
	OwnLandSize       string `json:"own_land_size,omitempty"`
}

type CourseInfo struct {
	PreferredCourse      string `json:"preferred_course"`
	HeardAboutUs         bool   `json:"heard_about_us"`
	ParticipatedInEvents bool   `json:"participated_in_events"`
}

// ValidStatus reports whether s is a known application status.
func ValidStatus(s string) bool {
	switch s {
	case StatusSubmitted, StatusReviewed, StatusApproved, StatusRejected:
		return true
	}
	return false
}
