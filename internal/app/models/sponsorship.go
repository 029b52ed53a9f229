package models

import "time"

// SponsorshipStatus represents the state of a funding commitment
type SponsorshipStatus string

const (
	SponsorshipStatusActive    SponsorshipStatus = "ACTIVE"
	SponsorshipStatusCompleted SponsorshipStatus = "COMPLETED"
)

// Sponsorship links one donor to one student. AmountUSD is the amount
// converted to USD through the approved application's fx rate at commit time;
// all funding aggregation uses AmountUSD only.
type Sponsorship struct {
	ID            int64             `json:"id" db:"id"`
	DonorID       int64             `json:"donorId" db:"donor_id"`
	StudentID     int64             `json:"studentId" db:"student_id"`
	ApplicationID int64             `json:"applicationId" db:"application_id"`
	Amount        float64           `json:"amount" db:"amount"`
	Currency      string            `json:"currency" db:"currency"`
	AmountUSD     float64           `json:"amountUsd" db:"amount_usd"`
	Reference     string            `json:"reference" db:"reference"`
	Status        SponsorshipStatus `json:"status" db:"status"`
	CreatedAt     time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time         `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Donor   *User    `json:"donor,omitempty"`
	Student *Student `json:"student,omitempty"`
}
