package models

import "time"

// DisbursementStatus represents the state of an outbound payment
type DisbursementStatus string

const (
	DisbursementStatusInitiated DisbursementStatus = "INITIATED"
	DisbursementStatusCompleted DisbursementStatus = "COMPLETED"
)

// Disbursement records money released from a student's funded pool. It draws
// against the aggregate, not against any single sponsorship.
type Disbursement struct {
	ID        int64              `json:"id" db:"id"`
	StudentID int64              `json:"studentId" db:"student_id"`
	AmountUSD float64            `json:"amountUsd" db:"amount_usd"`
	Purpose   string             `json:"purpose" db:"purpose"`
	Status    DisbursementStatus `json:"status" db:"status"`
	CreatedAt time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" db:"updated_at"`
}
