package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name  string
		from  ApplicationStatus
		to    ApplicationStatus
		legal bool
	}{
		{"pending to processing", ApplicationStatusPending, ApplicationStatusProcessing, true},
		{"pending straight to approved", ApplicationStatusPending, ApplicationStatusApproved, true},
		{"pending straight to rejected", ApplicationStatusPending, ApplicationStatusRejected, true},
		{"processing to approved", ApplicationStatusProcessing, ApplicationStatusApproved, true},
		{"processing to rejected", ApplicationStatusProcessing, ApplicationStatusRejected, true},
		{"processing back to pending", ApplicationStatusProcessing, ApplicationStatusPending, true},
		{"approved reset to pending", ApplicationStatusApproved, ApplicationStatusPending, true},
		{"rejected reset to pending", ApplicationStatusRejected, ApplicationStatusPending, true},
		{"approved to rejected is illegal", ApplicationStatusApproved, ApplicationStatusRejected, false},
		{"rejected to approved is illegal", ApplicationStatusRejected, ApplicationStatusApproved, false},
		{"approved back to processing is illegal", ApplicationStatusApproved, ApplicationStatusProcessing, false},
		{"same status is a no-op", ApplicationStatusApproved, ApplicationStatusApproved, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.legal, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsValidApplicationStatus(t *testing.T) {
	assert.True(t, IsValidApplicationStatus(ApplicationStatusProcessing))
	assert.False(t, IsValidApplicationStatus(ApplicationStatus("SHIPPED")))
	assert.False(t, IsValidApplicationStatus(ApplicationStatus("")))
}

func TestApplicationNeedUSD(t *testing.T) {
	fx := 280.0
	usd := 950.0

	t.Run("prefers the stored snapshot", func(t *testing.T) {
		app := &Application{AmountLocal: 280000, FxRate: &fx, AmountUSD: &usd}
		assert.Equal(t, 950.0, app.NeedUSD())
	})

	t.Run("falls back to fx conversion", func(t *testing.T) {
		app := &Application{AmountLocal: 280000, FxRate: &fx}
		assert.Equal(t, 1000.0, app.NeedUSD())
	})

	t.Run("zero without rate or snapshot", func(t *testing.T) {
		app := &Application{AmountLocal: 280000}
		assert.Equal(t, 0.0, app.NeedUSD())
	})
}
