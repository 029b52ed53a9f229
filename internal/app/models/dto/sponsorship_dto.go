package dto

import (
	"time"

	"github.com/nbilal/scholarbridge/internal/app/models"
)

// --- Request DTOs ---

// CreateSponsorshipRequest commits donor funding against a student. DonorID
// is optional for donors (their own identity is taken from the token) and
// required when an admin records a sponsorship on a donor's behalf.
type CreateSponsorshipRequest struct {
	DonorID   *int64  `json:"donorId,omitempty" binding:"omitempty,gt=0"`
	StudentID int64   `json:"studentId" binding:"required,gt=0"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Currency  string  `json:"currency" binding:"required,currencycode"`
}

// PaymentCallbackRequest is what the payment gateway posts after a completed
// charge. It is the only external trigger allowed to create a sponsorship on
// behalf of a charge.
type PaymentCallbackRequest struct {
	DonorID   int64   `json:"donorId" binding:"required,gt=0"`
	StudentID int64   `json:"studentId" binding:"required,gt=0"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Currency  string  `json:"currency" binding:"required,currencycode"`
	Reference string  `json:"reference" binding:"required"`
}

// SponsorshipFilterRequest represents filtering and pagination for listings
type SponsorshipFilterRequest struct {
	StudentID *int64 `form:"studentId" binding:"omitempty,gt=0"`
	DonorID   *int64 `form:"donorId" binding:"omitempty,gt=0"`
	Page      int    `form:"page"`
	PageSize  int    `form:"size"`
}

// --- Response DTOs ---

// SponsorshipResponse represents a sponsorship as returned by the API
type SponsorshipResponse struct {
	ID            int64     `json:"id"`
	DonorID       int64     `json:"donorId"`
	StudentID     int64     `json:"studentId"`
	ApplicationID int64     `json:"applicationId"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	AmountUSD     float64   `json:"amountUsd"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SponsorshipListResponse represents a paginated list of sponsorships
type SponsorshipListResponse struct {
	Sponsorships []SponsorshipResponse `json:"sponsorships"`
	Pagination   PaginationInfo        `json:"pagination"`
}

// SponsorshipCheckResponse answers whether the caller sponsors a student
type SponsorshipCheckResponse struct {
	HasSponsorship bool `json:"hasSponsorship"`
}

// ToSponsorshipResponse converts a model to its API representation
func ToSponsorshipResponse(s *models.Sponsorship) SponsorshipResponse {
	if s == nil {
		return SponsorshipResponse{}
	}
	return SponsorshipResponse{
		ID:            s.ID,
		DonorID:       s.DonorID,
		StudentID:     s.StudentID,
		ApplicationID: s.ApplicationID,
		Amount:        s.Amount,
		Currency:      s.Currency,
		AmountUSD:     s.AmountUSD,
		Status:        string(s.Status),
		CreatedAt:     s.CreatedAt,
	}
}
