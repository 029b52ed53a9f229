package models

import "time"

// FieldReviewStatus represents the state of a verification pass
type FieldReviewStatus string

const (
	FieldReviewStatusPending FieldReviewStatus = "PENDING"
	// FieldReviewStatusInfoRequested is the side-state entered when the
	// officer asks the student for missing information.
	FieldReviewStatusInfoRequested FieldReviewStatus = "INFO_REQUESTED"
	FieldReviewStatusCompleted     FieldReviewStatus = "COMPLETED"
)

// Recommendation is the officer's advisory outcome. It is consumed by an
// admin performing the application transition but never applied automatically.
type Recommendation string

const (
	RecommendationApprove       Recommendation = "APPROVE"
	RecommendationReject        Recommendation = "REJECT"
	RecommendationNeedsMoreInfo Recommendation = "NEEDS_MORE_INFO"
)

// IsValidRecommendation reports whether the value is a known recommendation
func IsValidRecommendation(r Recommendation) bool {
	switch r {
	case RecommendationApprove, RecommendationReject, RecommendationNeedsMoreInfo:
		return true
	}
	return false
}

// FieldReview represents the assignment of an application to a verifying
// officer. Several reviews may exist per application after reassignment; the
// newest is authoritative for display.
type FieldReview struct {
	ID             int64             `json:"id" db:"id"`
	ApplicationID  int64             `json:"applicationId" db:"application_id"`
	StudentID      int64             `json:"studentId" db:"student_id"`
	OfficerID      int64             `json:"officerId" db:"officer_id"`
	Status         FieldReviewStatus `json:"status" db:"status"`
	Recommendation *Recommendation   `json:"recommendation,omitempty" db:"recommendation"`
	Notes          string            `json:"notes" db:"notes"`
	CreatedAt      time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time         `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Officer  *User                `json:"officer,omitempty"`
	Requests []FieldReviewRequest `json:"requests,omitempty"`
}

// FieldReviewRequest is a structured missing-information request visible to
// the student. It never changes the application's status.
type FieldReviewRequest struct {
	ID            int64     `json:"id" db:"id"`
	FieldReviewID int64     `json:"fieldReviewId" db:"field_review_id"`
	Items         []string  `json:"items" db:"items"`
	Note          string    `json:"note" db:"note"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}
