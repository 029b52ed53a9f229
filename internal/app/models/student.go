package models

import "time"

// Student defines the student model based on the 'students' table.
// FundedUSD is the running total of sponsorships converted to USD at commit
// time; Sponsored flips to true once the total meets the student's need and
// is never cleared automatically.
type Student struct {
	ID             int64     `json:"id" db:"id" example:"1"`
	UserID         int64     `json:"userId" db:"user_id" example:"5"`
	University     string    `json:"university" db:"university" example:"NUST"`
	Program        string    `json:"program" db:"program" example:"BS Computer Science"`
	GPA            *float64  `json:"gpa,omitempty" db:"gpa" example:"3.4"`
	GraduationYear int       `json:"graduationYear" db:"graduation_year" example:"2027"`
	FundedUSD      float64   `json:"fundedUsd" db:"funded_usd" example:"600"`
	Sponsored      bool      `json:"sponsored" db:"sponsored" example:"false"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	User *User `json:"user,omitempty"`
}
