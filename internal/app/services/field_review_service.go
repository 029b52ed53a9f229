package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
	"github.com/nbilal/scholarbridge/internal/pkg/email"
)

// FieldReviewService defines the interface for field verification workflows
type FieldReviewService interface {
	Assign(ctx context.Context, caller Caller, req *dto.AssignFieldReviewRequest) (*dto.FieldReviewResponse, error)
	GetByApplication(ctx context.Context, caller Caller, applicationID int64) (*dto.FieldReviewResponse, error)
	ListByOfficer(ctx context.Context, caller Caller, officerID int64) (*dto.FieldReviewListResponse, error)
	RequestMissingInfo(ctx context.Context, caller Caller, reviewID int64, req *dto.RequestMissingInfoRequest) (*dto.FieldReviewResponse, error)
	Complete(ctx context.Context, caller Caller, reviewID int64, req *dto.CompleteFieldReviewRequest) (*dto.FieldReviewResponse, error)
}

type fieldReviewStore interface {
	Create(ctx context.Context, review *models.FieldReview) error
	GetByID(ctx context.Context, id int64) (*models.FieldReview, error)
	GetLatestByApplication(ctx context.Context, applicationID int64) (*models.FieldReview, error)
	ListByOfficer(ctx context.Context, officerID int64) ([]*models.FieldReview, error)
	Update(ctx context.Context, review *models.FieldReview) error
	CreateInfoRequest(ctx context.Context, request *models.FieldReviewRequest) error
	ListInfoRequests(ctx context.Context, fieldReviewID int64) ([]models.FieldReviewRequest, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// fieldReviewServiceImpl implements FieldReviewService
type fieldReviewServiceImpl struct {
	reviewRepo      fieldReviewStore
	applicationRepo applicationGetter
	studentRepo     studentReader
	userRepo        userFinder
	notifier        email.Notifier
	logger          zerolog.Logger
}

// NewFieldReviewService creates a new FieldReviewService
func NewFieldReviewService(
	reviewRepo fieldReviewStore,
	applicationRepo applicationGetter,
	studentRepo studentReader,
	userRepo userFinder,
	notifier email.Notifier,
	logger zerolog.Logger,
) FieldReviewService {
	return &fieldReviewServiceImpl{
		reviewRepo:      reviewRepo,
		applicationRepo: applicationRepo,
		studentRepo:     studentRepo,
		userRepo:        userRepo,
		notifier:        notifier,
		logger:          logger,
	}
}

// Assign attaches an application to a verifying officer. Admin only; the
// assignee must hold the field officer role. Reassignment creates a new
// review, leaving the earlier one in place.
func (s *fieldReviewServiceImpl) Assign(ctx context.Context, caller Caller, req *dto.AssignFieldReviewRequest) (*dto.FieldReviewResponse, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	app, err := s.applicationRepo.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return nil, err
	}
	if app.StudentID != req.StudentID {
		return nil, apperrors.NewValidationError("application does not belong to the student")
	}

	officer, err := s.userRepo.FindByID(ctx, req.OfficerUserID)
	if err != nil {
		return nil, err
	}
	if officer.RoleType != models.RoleSubAdmin {
		return nil, apperrors.ErrNotAFieldOfficer
	}

	review := &models.FieldReview{
		ApplicationID: req.ApplicationID,
		StudentID:     req.StudentID,
		OfficerID:     req.OfficerUserID,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	resp := dto.ToFieldReviewResponse(review)
	return &resp, nil
}

// GetByApplication returns the newest review on an application together with
// its info requests.
func (s *fieldReviewServiceImpl) GetByApplication(ctx context.Context, caller Caller, applicationID int64) (*dto.FieldReviewResponse, error) {
	if !caller.IsStaff() {
		return nil, apperrors.ErrPermissionDenied
	}

	review, err := s.reviewRepo.GetLatestByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	requests, err := s.reviewRepo.ListInfoRequests(ctx, review.ID)
	if err != nil {
		return nil, err
	}
	review.Requests = requests

	resp := dto.ToFieldReviewResponse(review)
	return &resp, nil
}

// ListByOfficer returns an officer's assignments. Officers see their own
// queue; admins can inspect anyone's.
func (s *fieldReviewServiceImpl) ListByOfficer(ctx context.Context, caller Caller, officerID int64) (*dto.FieldReviewListResponse, error) {
	if !caller.IsAdmin() && caller.UserID != officerID {
		return nil, apperrors.ErrPermissionDenied
	}

	reviews, err := s.reviewRepo.ListByOfficer(ctx, officerID)
	if err != nil {
		return nil, err
	}

	resp := &dto.FieldReviewListResponse{}
	for _, review := range reviews {
		resp.Reviews = append(resp.Reviews, dto.ToFieldReviewResponse(review))
	}
	return resp, nil
}

// ownedOpenReview loads a review and checks the caller is its assigned
// officer and the review is still open.
func (s *fieldReviewServiceImpl) ownedOpenReview(ctx context.Context, caller Caller, reviewID int64) (*models.FieldReview, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.OfficerID != caller.UserID {
		return nil, apperrors.ErrPermissionDenied
	}
	if review.Status == models.FieldReviewStatusCompleted {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidTransition, "field review is already completed")
	}
	return review, nil
}

// RequestMissingInfo records a structured list of items the officer needs
// from the student. It moves the review to INFO_REQUESTED and never touches
// the application's status.
func (s *fieldReviewServiceImpl) RequestMissingInfo(ctx context.Context, caller Caller, reviewID int64, req *dto.RequestMissingInfoRequest) (*dto.FieldReviewResponse, error) {
	review, err := s.ownedOpenReview(ctx, caller, reviewID)
	if err != nil {
		return nil, err
	}

	request := &models.FieldReviewRequest{
		FieldReviewID: review.ID,
		Items:         req.Items,
		Note:          req.Note,
	}
	if err := s.reviewRepo.CreateInfoRequest(ctx, request); err != nil {
		return nil, err
	}

	review.Status = models.FieldReviewStatusInfoRequested
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	review.Requests = append([]models.FieldReviewRequest{*request}, review.Requests...)

	s.notifyMissingInfo(review, req)

	resp := dto.ToFieldReviewResponse(review)
	return &resp, nil
}

// Complete closes a review with the officer's advisory recommendation. The
// recommendation informs the admin's decision; it never transitions the
// application by itself.
func (s *fieldReviewServiceImpl) Complete(ctx context.Context, caller Caller, reviewID int64, req *dto.CompleteFieldReviewRequest) (*dto.FieldReviewResponse, error) {
	review, err := s.ownedOpenReview(ctx, caller, reviewID)
	if err != nil {
		return nil, err
	}

	recommendation := models.Recommendation(req.Recommendation)
	if !models.IsValidRecommendation(recommendation) {
		return nil, apperrors.NewValidationError("unknown recommendation")
	}

	review.Status = models.FieldReviewStatusCompleted
	review.Recommendation = &recommendation
	if req.Notes != "" {
		review.Notes = req.Notes
	}
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	resp := dto.ToFieldReviewResponse(review)
	return &resp, nil
}

func (s *fieldReviewServiceImpl) notifyMissingInfo(review *models.FieldReview, req *dto.RequestMissingInfoRequest) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		student, err := s.studentRepo.GetByID(ctx, review.StudentID)
		if err != nil || student.User == nil {
			s.logger.Warn().Err(err).Int64("studentID", review.StudentID).Msg("Skipping missing-info notification")
			return
		}

		name := student.User.FirstName + " " + student.User.LastName
		if err := s.notifier.SendMissingInfoRequest(student.User.Email, name, req.Items, req.Note); err != nil {
			s.logger.Warn().Err(err).Int64("reviewID", review.ID).Msg("Failed to send missing-info notification")
		}
	}()
}
