package dto

import (
	"time"

	"github.com/nbilal/scholarbridge/internal/app/models"
)

// --- Request DTOs ---

// CreateApplicationRequest represents a student's funding request submission
type CreateApplicationRequest struct {
	Term        string  `json:"term" binding:"required"`
	AmountLocal float64 `json:"amountLocal" binding:"required,gt=0"`
	Currency    string  `json:"currency" binding:"required,currencycode"`
	FxRate      *float64 `json:"fxRate,omitempty" binding:"omitempty,gt=0"`
	Notes       string  `json:"notes"`
}

// UpdateApplicationStatusRequest is the admin PATCH body driving the state
// machine. ForceApprove bypasses the document-completeness gate; the bypass is
// recorded in the application's audit trail.
type UpdateApplicationStatusRequest struct {
	Status       string   `json:"status" binding:"required,appstatus"`
	Notes        *string  `json:"notes,omitempty"`
	FxRate       *float64 `json:"fxRate,omitempty" binding:"omitempty,gt=0"`
	ForceApprove bool     `json:"forceApprove"`
}

// ApplicationFilterRequest represents filtering and pagination for listings
type ApplicationFilterRequest struct {
	Status    *string `form:"status" binding:"omitempty,appstatus"`
	StudentID *int64  `form:"studentId" binding:"omitempty,gt=0"`
	Page      int     `form:"page"`
	PageSize  int     `form:"size"`
}

// --- Response DTOs ---

// ApplicationResponse represents an application as returned by the API
type ApplicationResponse struct {
	ID            int64      `json:"id"`
	StudentID     int64      `json:"studentId"`
	Term          string     `json:"term"`
	AmountLocal   float64    `json:"amountLocal"`
	Currency      string     `json:"currency"`
	AmountUSD     *float64   `json:"amountUsd,omitempty"`
	FxRate        *float64   `json:"fxRate,omitempty"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes"`
	ForceApproved bool       `json:"forceApproved"`
	ApprovedAt    *time.Time `json:"approvedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ApplicationListResponse represents a paginated list of applications
type ApplicationListResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Pagination   PaginationInfo        `json:"pagination"`
}

// CompletenessResponse answers "is this application complete?" with the
// precise missing-type list for remediation.
type CompletenessResponse struct {
	Complete bool     `json:"complete"`
	Missing  []string `json:"missing"`
}

// ToApplicationResponse converts a model to its API representation
func ToApplicationResponse(a *models.Application) ApplicationResponse {
	if a == nil {
		return ApplicationResponse{}
	}
	return ApplicationResponse{
		ID:            a.ID,
		StudentID:     a.StudentID,
		Term:          a.Term,
		AmountLocal:   a.AmountLocal,
		Currency:      a.Currency,
		AmountUSD:     a.AmountUSD,
		FxRate:        a.FxRate,
		Status:        string(a.Status),
		Notes:         a.Notes,
		ForceApproved: a.ForceApproved,
		ApprovedAt:    a.ApprovedAt,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
