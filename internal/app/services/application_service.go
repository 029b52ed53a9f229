package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
	"github.com/nbilal/scholarbridge/internal/pkg/currency"
	"github.com/nbilal/scholarbridge/internal/pkg/email"
	"github.com/nbilal/scholarbridge/internal/pkg/helpers"
)

// ApplicationService defines the interface for the application lifecycle
type ApplicationService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error)
	GetByID(ctx context.Context, caller Caller, id int64) (*dto.ApplicationResponse, error)
	List(ctx context.Context, caller Caller, filter *dto.ApplicationFilterRequest) (*dto.ApplicationListResponse, error)
	UpdateStatus(ctx context.Context, caller Caller, id int64, req *dto.UpdateApplicationStatusRequest) (*dto.ApplicationResponse, error)
}

type applicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Application, error)
	UpdateStatus(ctx context.Context, app *models.Application) error
	List(ctx context.Context, studentID *int64, status models.ApplicationStatus, offset uint64, limit int) ([]*models.Application, error)
	Count(ctx context.Context, studentID *int64, status models.ApplicationStatus) (int64, error)
}

type studentReader interface {
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
}

type missingTypesChecker interface {
	MissingTypes(ctx context.Context, studentID, applicationID int64) ([]string, error)
}

// applicationServiceImpl implements ApplicationService
type applicationServiceImpl struct {
	applicationRepo applicationStore
	studentRepo     studentReader
	documentService missingTypesChecker
	tx              txRunner
	notifier        email.Notifier
	logger          zerolog.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(
	applicationRepo applicationStore,
	studentRepo studentReader,
	documentService missingTypesChecker,
	tx txRunner,
	notifier email.Notifier,
	logger zerolog.Logger,
) ApplicationService {
	return &applicationServiceImpl{
		applicationRepo: applicationRepo,
		studentRepo:     studentRepo,
		documentService: documentService,
		tx:              tx,
		notifier:        notifier,
		logger:          logger,
	}
}

// Create submits a new funding application. The caller must be a student; the
// application starts in PENDING and belongs to the caller's own record.
func (s *applicationServiceImpl) Create(ctx context.Context, caller Caller, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error) {
	if caller.Role != models.RoleStudent {
		return nil, apperrors.ErrPermissionDenied
	}

	student, err := s.studentRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	app := &models.Application{
		StudentID:   student.ID,
		Term:        req.Term,
		AmountLocal: req.AmountLocal,
		Currency:    req.Currency,
		FxRate:      req.FxRate,
		Notes:       req.Notes,
	}

	if err := s.applicationRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	resp := dto.ToApplicationResponse(app)
	return &resp, nil
}

// GetByID retrieves an application. Staff see everything; a student sees
// only their own.
func (s *applicationServiceImpl) GetByID(ctx context.Context, caller Caller, id int64) (*dto.ApplicationResponse, error) {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !caller.IsStaff() {
		student, err := s.studentRepo.GetByUserID(ctx, caller.UserID)
		if err != nil || student.ID != app.StudentID {
			return nil, apperrors.ErrPermissionDenied
		}
	}

	resp := dto.ToApplicationResponse(app)
	return &resp, nil
}

// List retrieves applications. Students are always scoped to their own
// record regardless of the filter they send.
func (s *applicationServiceImpl) List(ctx context.Context, caller Caller, filter *dto.ApplicationFilterRequest) (*dto.ApplicationListResponse, error) {
	studentID := filter.StudentID
	if !caller.IsStaff() {
		student, err := s.studentRepo.GetByUserID(ctx, caller.UserID)
		if err != nil {
			return nil, apperrors.ErrPermissionDenied
		}
		studentID = &student.ID
	}

	var status models.ApplicationStatus
	if filter.Status != nil {
		status = models.ApplicationStatus(*filter.Status)
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)

	apps, err := s.applicationRepo.List(ctx, studentID, status, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.applicationRepo.Count(ctx, studentID, status)
	if err != nil {
		return nil, err
	}

	resp := &dto.ApplicationListResponse{
		Pagination: helpers.NewPaginationInfo(total, filter.Page, limit),
	}
	for _, app := range apps {
		resp.Applications = append(resp.Applications, dto.ToApplicationResponse(app))
	}
	return resp, nil
}

// UpdateStatus drives the application state machine. Admin only. The whole
// transition runs in one transaction holding the application row lock, so
// concurrent transitions on the same application serialize and the
// completeness check cannot race a document deletion.
func (s *applicationServiceImpl) UpdateStatus(ctx context.Context, caller Caller, id int64, req *dto.UpdateApplicationStatusRequest) (*dto.ApplicationResponse, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	target := models.ApplicationStatus(req.Status)
	if !models.IsValidApplicationStatus(target) {
		return nil, apperrors.ErrInvalidStatus
	}

	var app *models.Application
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		app, err = s.applicationRepo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		if !models.CanTransition(app.Status, target) {
			return apperrors.NewCustomError(apperrors.ErrInvalidTransition,
				fmt.Sprintf("cannot move application from %s to %s", app.Status, target)).
				WithDetails(map[string]interface{}{"from": string(app.Status), "to": string(target)})
		}

		if target == models.ApplicationStatusApproved {
			if err := s.approve(txCtx, app, req); err != nil {
				return err
			}
		} else {
			app.Status = target
			// A reset back to PENDING clears the approval snapshot.
			if target == models.ApplicationStatusPending {
				app.ApprovedAt = nil
				app.ForceApproved = false
				app.AmountUSD = nil
			}
		}

		if req.Notes != nil {
			app.Notes = *req.Notes
		}
		if target == models.ApplicationStatusApproved && req.ForceApprove {
			line := fmt.Sprintf("Document gate bypassed by user %d on %s",
				caller.UserID, time.Now().UTC().Format(time.RFC3339))
			if app.Notes != "" {
				app.Notes += "\n"
			}
			app.Notes += line
		}

		return s.applicationRepo.UpdateStatus(txCtx, app)
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatusChange(app)

	resp := dto.ToApplicationResponse(app)
	return &resp, nil
}

// approve applies the APPROVED-specific rules: the document-completeness gate
// (unless overridden) and the USD snapshot through the fx rate.
func (s *applicationServiceImpl) approve(ctx context.Context, app *models.Application, req *dto.UpdateApplicationStatusRequest) error {
	if !req.ForceApprove {
		missing, err := s.documentService.MissingTypes(ctx, app.StudentID, app.ID)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return apperrors.NewIncompleteDocumentsError(missing)
		}
	}

	fxRate := app.FxRate
	if req.FxRate != nil {
		fxRate = req.FxRate
	}

	amountUSD, err := currency.ToUSD(app.AmountLocal, app.Currency, fxRate)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	amountUSD = currency.Round(amountUSD)

	now := time.Now()
	app.Status = models.ApplicationStatusApproved
	app.FxRate = fxRate
	app.AmountUSD = &amountUSD
	app.ForceApproved = req.ForceApprove
	app.ApprovedAt = &now
	return nil
}

// notifyStatusChange emails the student off the request path. Delivery
// failure never fails the transition.
func (s *applicationServiceImpl) notifyStatusChange(app *models.Application) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		student, err := s.studentRepo.GetByID(ctx, app.StudentID)
		if err != nil || student.User == nil {
			s.logger.Warn().Err(err).Int64("studentID", app.StudentID).Msg("Skipping status notification")
			return
		}

		name := student.User.FirstName + " " + student.User.LastName
		if err := s.notifier.SendApplicationStatusChanged(student.User.Email, name, app.Term, string(app.Status)); err != nil {
			s.logger.Warn().Err(err).Int64("applicationID", app.ID).Msg("Failed to send status notification")
		}
	}()
}
