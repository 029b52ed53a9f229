package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/cache"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
	"github.com/nbilal/scholarbridge/internal/pkg/currency"
	"github.com/nbilal/scholarbridge/internal/pkg/email"
)

// SponsorshipService defines the interface for the settlement ledger
type SponsorshipService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateSponsorshipRequest) (*dto.SponsorshipResponse, error)
	HandlePaymentCallback(ctx context.Context, req *dto.PaymentCallbackRequest) (*dto.SponsorshipResponse, error)
	GetByID(ctx context.Context, caller Caller, id int64) (*dto.SponsorshipResponse, error)
	ListByStudent(ctx context.Context, caller Caller, studentID int64) (*dto.SponsorshipListResponse, error)
	ListByDonor(ctx context.Context, caller Caller, donorID int64) (*dto.SponsorshipListResponse, error)
	HasActiveSponsorship(ctx context.Context, donorID, studentID int64) (bool, error)
}

type sponsorshipStore interface {
	Create(ctx context.Context, sp *models.Sponsorship) error
	GetByID(ctx context.Context, id int64) (*models.Sponsorship, error)
	GetByReference(ctx context.Context, reference string) (*models.Sponsorship, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Sponsorship, error)
	ListByDonor(ctx context.Context, donorID int64) ([]*models.Sponsorship, error)
	ExistsActivePair(ctx context.Context, donorID, studentID int64) (bool, error)
}

type studentLedger interface {
	studentReader
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Student, error)
	UpdateFunding(ctx context.Context, id int64, fundedUSD float64, sponsored bool) error
}

type approvedApplicationFinder interface {
	GetLatestApprovedByStudent(ctx context.Context, studentID int64) (*models.Application, error)
}

// sponsorshipServiceImpl implements SponsorshipService
type sponsorshipServiceImpl struct {
	sponsorshipRepo sponsorshipStore
	studentRepo     studentLedger
	applicationRepo approvedApplicationFinder
	tx              txRunner
	gateCache       cache.GateCache
	notifier        email.Notifier
	logger          zerolog.Logger
}

// NewSponsorshipService creates a new SponsorshipService. gateCache may be
// nil when redis is disabled.
func NewSponsorshipService(
	sponsorshipRepo sponsorshipStore,
	studentRepo studentLedger,
	applicationRepo approvedApplicationFinder,
	tx txRunner,
	gateCache cache.GateCache,
	notifier email.Notifier,
	logger zerolog.Logger,
) SponsorshipService {
	return &sponsorshipServiceImpl{
		sponsorshipRepo: sponsorshipRepo,
		studentRepo:     studentRepo,
		applicationRepo: applicationRepo,
		tx:              tx,
		gateCache:       gateCache,
		notifier:        notifier,
		logger:          logger,
	}
}

// Create commits donor funding against a student. Donors sponsor as
// themselves; admins may record a sponsorship on a donor's behalf.
func (s *sponsorshipServiceImpl) Create(ctx context.Context, caller Caller, req *dto.CreateSponsorshipRequest) (*dto.SponsorshipResponse, error) {
	donorID := caller.UserID
	switch caller.Role {
	case models.RoleDonor:
		if req.DonorID != nil && *req.DonorID != caller.UserID {
			return nil, apperrors.ErrPermissionDenied
		}
	case models.RoleAdmin:
		if req.DonorID == nil {
			return nil, apperrors.NewValidationError("donorId is required when recording on a donor's behalf")
		}
		donorID = *req.DonorID
	default:
		return nil, apperrors.ErrPermissionDenied
	}

	sp, err := s.commit(ctx, donorID, req.StudentID, req.Amount, req.Currency, "")
	if err != nil {
		return nil, err
	}

	resp := dto.ToSponsorshipResponse(sp)
	return &resp, nil
}

// HandlePaymentCallback records the sponsorship behind a completed gateway
// charge. Callbacks are retried by the gateway, so the payment reference
// makes the operation idempotent: a reference already on file returns the
// existing sponsorship unchanged.
func (s *sponsorshipServiceImpl) HandlePaymentCallback(ctx context.Context, req *dto.PaymentCallbackRequest) (*dto.SponsorshipResponse, error) {
	existing, err := s.sponsorshipRepo.GetByReference(ctx, req.Reference)
	if err == nil {
		resp := dto.ToSponsorshipResponse(existing)
		return &resp, nil
	}
	if !errors.Is(err, apperrors.ErrSponsorshipNotFound) {
		return nil, err
	}

	sp, err := s.commit(ctx, req.DonorID, req.StudentID, req.Amount, req.Currency, req.Reference)
	if err != nil {
		return nil, err
	}

	resp := dto.ToSponsorshipResponse(sp)
	return &resp, nil
}

// commit performs the settlement: it locks the student row, converts the
// amount to USD through the approved application's fx rate, writes the
// sponsorship and folds the amount into the student's funded aggregate, all
// in one transaction. Direct sponsorships carry no gateway reference, so one
// is minted here to satisfy the column's unique constraint.
func (s *sponsorshipServiceImpl) commit(ctx context.Context, donorID, studentID int64, amount float64, currencyCode, reference string) (*models.Sponsorship, error) {
	if reference == "" {
		reference = "direct_" + uuid.NewString()
	}
	var sp *models.Sponsorship
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		student, err := s.studentRepo.GetByIDForUpdate(txCtx, studentID)
		if err != nil {
			return err
		}

		app, err := s.applicationRepo.GetLatestApprovedByStudent(txCtx, studentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrApplicationNotFound) {
				return apperrors.ErrApplicationNotApproved
			}
			return err
		}

		amountUSD, err := currency.ToUSD(amount, currencyCode, app.FxRate)
		if err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		amountUSD = currency.Round(amountUSD)

		sp = &models.Sponsorship{
			DonorID:       donorID,
			StudentID:     studentID,
			ApplicationID: app.ID,
			Amount:        amount,
			Currency:      currencyCode,
			AmountUSD:     amountUSD,
			Reference:     reference,
			Status:        models.SponsorshipStatusActive,
		}
		if err := s.sponsorshipRepo.Create(txCtx, sp); err != nil {
			return err
		}

		funded := currency.Round(student.FundedUSD + amountUSD)
		sponsored := student.Sponsored || funded >= app.NeedUSD()
		return s.studentRepo.UpdateFunding(txCtx, studentID, funded, sponsored)
	})
	if err != nil {
		return nil, err
	}

	if s.gateCache != nil {
		s.gateCache.Set(ctx, donorID, studentID, true)
	}
	s.notifySponsorship(sp)

	return sp, nil
}

// GetByID retrieves a sponsorship. Staff, the donor, or the sponsored
// student's owner may read it.
func (s *sponsorshipServiceImpl) GetByID(ctx context.Context, caller Caller, id int64) (*dto.SponsorshipResponse, error) {
	sp, err := s.sponsorshipRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canRead(ctx, caller, sp.DonorID, sp.StudentID); err != nil {
		return nil, err
	}

	resp := dto.ToSponsorshipResponse(sp)
	return &resp, nil
}

// ListByStudent returns the sponsorships received by a student
func (s *sponsorshipServiceImpl) ListByStudent(ctx context.Context, caller Caller, studentID int64) (*dto.SponsorshipListResponse, error) {
	if !caller.IsStaff() {
		student, err := s.studentRepo.GetByUserID(ctx, caller.UserID)
		if err != nil || student.ID != studentID {
			return nil, apperrors.ErrPermissionDenied
		}
	}

	sponsorships, err := s.sponsorshipRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return toSponsorshipList(sponsorships), nil
}

// ListByDonor returns the sponsorships a donor has made
func (s *sponsorshipServiceImpl) ListByDonor(ctx context.Context, caller Caller, donorID int64) (*dto.SponsorshipListResponse, error) {
	if !caller.IsAdmin() && caller.UserID != donorID {
		return nil, apperrors.ErrPermissionDenied
	}

	sponsorships, err := s.sponsorshipRepo.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	return toSponsorshipList(sponsorships), nil
}

// HasActiveSponsorship reports whether the donor actively sponsors the
// student. Results are served from the gate cache when available.
func (s *sponsorshipServiceImpl) HasActiveSponsorship(ctx context.Context, donorID, studentID int64) (bool, error) {
	if s.gateCache != nil {
		if has, ok := s.gateCache.Get(ctx, donorID, studentID); ok {
			return has, nil
		}
	}

	has, err := s.sponsorshipRepo.ExistsActivePair(ctx, donorID, studentID)
	if err != nil {
		return false, err
	}

	if s.gateCache != nil {
		s.gateCache.Set(ctx, donorID, studentID, has)
	}
	return has, nil
}

func (s *sponsorshipServiceImpl) canRead(ctx context.Context, caller Caller, donorID, studentID int64) error {
	if caller.IsStaff() || caller.UserID == donorID {
		return nil
	}
	if caller.Role == models.RoleStudent {
		student, err := s.studentRepo.GetByUserID(ctx, caller.UserID)
		if err == nil && student.ID == studentID {
			return nil
		}
	}
	return apperrors.ErrPermissionDenied
}

func toSponsorshipList(sponsorships []*models.Sponsorship) *dto.SponsorshipListResponse {
	resp := &dto.SponsorshipListResponse{}
	for _, sp := range sponsorships {
		resp.Sponsorships = append(resp.Sponsorships, dto.ToSponsorshipResponse(sp))
	}
	return resp
}

func (s *sponsorshipServiceImpl) notifySponsorship(sp *models.Sponsorship) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		student, err := s.studentRepo.GetByID(ctx, sp.StudentID)
		if err != nil || student.User == nil {
			s.logger.Warn().Err(err).Int64("studentID", sp.StudentID).Msg("Skipping sponsorship notification")
			return
		}

		name := student.User.FirstName + " " + student.User.LastName
		if err := s.notifier.SendSponsorshipReceived(student.User.Email, name, sp.AmountUSD); err != nil {
			s.logger.Warn().Err(err).Int64("sponsorshipID", sp.ID).Msg("Failed to send sponsorship notification")
		}
	}()
}
