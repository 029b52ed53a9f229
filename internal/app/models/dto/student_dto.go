package dto

import (
	"time"

	"github.com/nbilal/scholarbridge/internal/app/models"
)

// UpdateStudentRequest mutates a student's academic profile. All fields are
// optional; absent fields are left untouched.
type UpdateStudentRequest struct {
	University     *string  `json:"university,omitempty"`
	Program        *string  `json:"program,omitempty"`
	GPA            *float64 `json:"gpa,omitempty" binding:"omitempty,gte=0,lte=4"`
	GraduationYear *int     `json:"graduationYear,omitempty" binding:"omitempty,gte=2000"`
}

// StudentFilterRequest represents filtering and pagination for listings
type StudentFilterRequest struct {
	Sponsored *bool  `form:"sponsored"`
	Search    string `form:"search"`
	Page      int    `form:"page"`
	PageSize  int    `form:"size"`
}

// StudentResponse represents a student as returned by the API. NeedUSD and
// PercentFunded are derived from the student's approved application.
type StudentResponse struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	University     string    `json:"university"`
	Program        string    `json:"program"`
	GPA            *float64  `json:"gpa,omitempty"`
	GraduationYear int       `json:"graduationYear"`
	NeedUSD        float64   `json:"needUsd"`
	FundedUSD      float64   `json:"fundedUsd"`
	PercentFunded  float64   `json:"percentFunded"`
	Sponsored      bool      `json:"sponsored"`
	CreatedAt      time.Time `json:"createdAt"`
}

// StudentListResponse represents a paginated list of students
type StudentListResponse struct {
	Students   []StudentResponse `json:"students"`
	Pagination PaginationInfo    `json:"pagination"`
}

// ToStudentResponse converts a model to its API representation. needUSD comes
// from the student's approved application; zero when none exists.
func ToStudentResponse(s *models.Student, needUSD float64) StudentResponse {
	if s == nil {
		return StudentResponse{}
	}
	resp := StudentResponse{
		ID:             s.ID,
		UserID:         s.UserID,
		University:     s.University,
		Program:        s.Program,
		GPA:            s.GPA,
		GraduationYear: s.GraduationYear,
		NeedUSD:        needUSD,
		FundedUSD:      s.FundedUSD,
		Sponsored:      s.Sponsored,
		CreatedAt:      s.CreatedAt,
	}
	if s.User != nil {
		resp.FirstName = s.User.FirstName
		resp.LastName = s.User.LastName
	}
	if needUSD > 0 {
		resp.PercentFunded = s.FundedUSD / needUSD * 100
		if resp.PercentFunded > 100 {
			resp.PercentFunded = 100
		}
	}
	return resp
}
