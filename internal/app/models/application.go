package models

import "time"

// ApplicationStatus represents the lifecycle state of a funding application
type ApplicationStatus string

const (
	ApplicationStatusPending    ApplicationStatus = "PENDING"
	ApplicationStatusProcessing ApplicationStatus = "PROCESSING"
	ApplicationStatusApproved   ApplicationStatus = "APPROVED"
	ApplicationStatusRejected   ApplicationStatus = "REJECTED"
)

// IsValidApplicationStatus reports whether the value is a known status
func IsValidApplicationStatus(s ApplicationStatus) bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusProcessing,
		ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	}
	return false
}

// legalTransitions lists the allowed next states for each status. APPROVED and
// REJECTED are terminal on the normal path; the PENDING entry for both is the
// administrative reset used to re-open an application after missing documents
// are added.
var legalTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusPending:    {ApplicationStatusProcessing, ApplicationStatusApproved, ApplicationStatusRejected},
	ApplicationStatusProcessing: {ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected},
	ApplicationStatusApproved:   {ApplicationStatusPending},
	ApplicationStatusRejected:   {ApplicationStatusPending},
}

// CanTransition reports whether moving from one status to another is legal.
// Setting the same status again is treated as a no-op update and allowed.
func CanTransition(from, to ApplicationStatus) bool {
	if from == to {
		return true
	}
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Application represents a student's funding request for a specific term.
// AmountLocal is the requested amount in the student's local currency;
// AmountUSD is its USD equivalent through FxRate, snapshotted at approval.
type Application struct {
	ID            int64             `json:"id" db:"id" example:"1"`
	StudentID     int64             `json:"studentId" db:"student_id" example:"3"`
	Term          string            `json:"term" db:"term" example:"Fall 2026"`
	AmountLocal   float64           `json:"amountLocal" db:"amount_local" example:"280000"`
	Currency      string            `json:"currency" db:"currency" example:"PKR"`
	AmountUSD     *float64          `json:"amountUsd,omitempty" db:"amount_usd" example:"1000"`
	FxRate        *float64          `json:"fxRate,omitempty" db:"fx_rate" example:"280"`
	Status        ApplicationStatus `json:"status" db:"status" example:"PENDING"`
	Notes         string            `json:"notes" db:"notes"`
	ForceApproved bool              `json:"forceApproved" db:"force_approved" example:"false"`
	ApprovedAt    *time.Time        `json:"approvedAt,omitempty" db:"approved_at"`
	CreatedAt     time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time         `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Student *Student `json:"student,omitempty"`
}

// NeedUSD returns the application's need in normalized USD. It prefers the
// stored USD snapshot and falls back to converting the local amount.
func (a *Application) NeedUSD() float64 {
	if a.AmountUSD != nil {
		return *a.AmountUSD
	}
	if a.FxRate != nil && *a.FxRate > 0 {
		return a.AmountLocal / *a.FxRate
	}
	return 0
}
