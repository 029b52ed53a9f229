package services

import (
	"context"

	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/db"
)

// Services defined in this package:
// - AuthService: authentication and token issuance
// - StudentService: student profiles and funding progress
// - DocumentService: the evidence ledger and completeness checks
// - ApplicationService: the application lifecycle state machine
// - FieldReviewService: officer assignments and recommendations
// - SponsorshipService: funding commitments and the settlement ledger
// - DisbursementService: releasing money from funded pools
// - ConversationService: sponsorship-gated donor-student messaging

// Caller identifies the authenticated principal making a request
type Caller struct {
	UserID int64
	Role   models.RoleType
}

// IsAdmin reports whether the caller holds the admin role
func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// IsStaff reports whether the caller is an admin or a field officer
func (c Caller) IsStaff() bool {
	return c.Role == models.RoleAdmin || c.Role == models.RoleSubAdmin
}

// txRunner runs a function inside a database transaction. Repositories called
// with the context it passes down share that transaction.
type txRunner interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}
