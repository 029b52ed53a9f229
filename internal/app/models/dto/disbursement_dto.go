package dto

import (
	"time"

	"github.com/nbilal/scholarbridge/internal/app/models"
)

// CreateDisbursementRequest releases money from a student's funded pool
type CreateDisbursementRequest struct {
	StudentID int64   `json:"studentId" binding:"required,gt=0"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Purpose   string  `json:"purpose" binding:"required"`
}

// DisbursementResponse represents a disbursement as returned by the API
type DisbursementResponse struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"studentId"`
	AmountUSD float64   `json:"amountUsd"`
	Purpose   string    `json:"purpose"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisbursementListResponse represents a student's disbursement history with
// the remaining undisbursed balance.
type DisbursementListResponse struct {
	Disbursements []DisbursementResponse `json:"disbursements"`
	FundedUSD     float64                `json:"fundedUsd"`
	Undisbursed   float64                `json:"undisbursedUsd"`
}

// ToDisbursementResponse converts a model to its API representation
func ToDisbursementResponse(d *models.Disbursement) DisbursementResponse {
	if d == nil {
		return DisbursementResponse{}
	}
	return DisbursementResponse{
		ID:        d.ID,
		StudentID: d.StudentID,
		AmountUSD: d.AmountUSD,
		Purpose:   d.Purpose,
		Status:    string(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
