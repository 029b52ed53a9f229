package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
	"github.com/nbilal/scholarbridge/internal/pkg/currency"
)

// DisbursementService defines the interface for releasing funds
type DisbursementService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateDisbursementRequest) (*dto.DisbursementResponse, error)
	Complete(ctx context.Context, caller Caller, id int64) (*dto.DisbursementResponse, error)
	ListByStudent(ctx context.Context, caller Caller, studentID int64) (*dto.DisbursementListResponse, error)
}

type disbursementStore interface {
	Create(ctx context.Context, d *models.Disbursement) error
	GetByID(ctx context.Context, id int64) (*models.Disbursement, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Disbursement, error)
	SumByStudent(ctx context.Context, studentID int64) (float64, error)
	UpdateStatus(ctx context.Context, id int64, status models.DisbursementStatus) error
}

// disbursementServiceImpl implements DisbursementService
type disbursementServiceImpl struct {
	disbursementRepo disbursementStore
	studentRepo      studentLedger
	tx               txRunner
	logger           zerolog.Logger
}

// NewDisbursementService creates a new DisbursementService
func NewDisbursementService(
	disbursementRepo disbursementStore,
	studentRepo studentLedger,
	tx txRunner,
	logger zerolog.Logger,
) DisbursementService {
	return &disbursementServiceImpl{
		disbursementRepo: disbursementRepo,
		studentRepo:      studentRepo,
		tx:               tx,
		logger:           logger,
	}
}

// Create releases money from a student's funded pool. Admin only. The
// transaction holds the student row lock while comparing the amount against
// the undisbursed balance, so two concurrent disbursements cannot both pass
// the check.
func (s *disbursementServiceImpl) Create(ctx context.Context, caller Caller, req *dto.CreateDisbursementRequest) (*dto.DisbursementResponse, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	var d *models.Disbursement
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		student, err := s.studentRepo.GetByIDForUpdate(txCtx, req.StudentID)
		if err != nil {
			return err
		}

		disbursed, err := s.disbursementRepo.SumByStudent(txCtx, req.StudentID)
		if err != nil {
			return err
		}

		available := currency.Round(student.FundedUSD - disbursed)
		if req.Amount > available {
			return apperrors.NewCustomError(apperrors.ErrInsufficientFunds,
				fmt.Sprintf("requested %.2f USD but only %.2f USD is undisbursed", req.Amount, available)).
				WithDetails(map[string]interface{}{
					"requested":   req.Amount,
					"undisbursed": available,
				})
		}

		d = &models.Disbursement{
			StudentID: req.StudentID,
			AmountUSD: currency.Round(req.Amount),
			Purpose:   req.Purpose,
			Status:    models.DisbursementStatusInitiated,
		}
		return s.disbursementRepo.Create(txCtx, d)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("studentID", d.StudentID).
		Float64("amountUSD", d.AmountUSD).
		Msg("Disbursement initiated")

	resp := dto.ToDisbursementResponse(d)
	return &resp, nil
}

// Complete marks an initiated disbursement as paid out. Admin only.
func (s *disbursementServiceImpl) Complete(ctx context.Context, caller Caller, id int64) (*dto.DisbursementResponse, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	d, err := s.disbursementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status == models.DisbursementStatusCompleted {
		resp := dto.ToDisbursementResponse(d)
		return &resp, nil
	}

	if err := s.disbursementRepo.UpdateStatus(ctx, id, models.DisbursementStatusCompleted); err != nil {
		return nil, err
	}
	d.Status = models.DisbursementStatusCompleted

	resp := dto.ToDisbursementResponse(d)
	return &resp, nil
}

// ListByStudent returns a student's disbursement history with the remaining
// undisbursed balance. Staff, or the student themselves.
func (s *disbursementServiceImpl) ListByStudent(ctx context.Context, caller Caller, studentID int64) (*dto.DisbursementListResponse, error) {
	if !caller.IsStaff() {
		student, err := s.studentRepo.GetByUserID(ctx, caller.UserID)
		if err != nil || student.ID != studentID {
			return nil, apperrors.ErrPermissionDenied
		}
	}

	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	disbursements, err := s.disbursementRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	disbursed, err := s.disbursementRepo.SumByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	resp := &dto.DisbursementListResponse{
		FundedUSD:   student.FundedUSD,
		Undisbursed: currency.Round(student.FundedUSD - disbursed),
	}
	for _, d := range disbursements {
		resp.Disbursements = append(resp.Disbursements, dto.ToDisbursementResponse(d))
	}
	return resp, nil
}
