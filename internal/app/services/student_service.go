package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
	"github.com/nbilal/scholarbridge/internal/pkg/helpers"
)

// StudentService defines the interface for student profiles
type StudentService interface {
	GetByID(ctx context.Context, id int64) (*dto.StudentResponse, error)
	GetOwn(ctx context.Context, caller Caller) (*dto.StudentResponse, error)
	List(ctx context.Context, filter *dto.StudentFilterRequest) (*dto.StudentListResponse, error)
	UpdateProfile(ctx context.Context, caller Caller, studentID int64, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error)
}

type studentProfileStore interface {
	studentReader
	UpdateProfile(ctx context.Context, student *models.Student) error
	List(ctx context.Context, sponsored *bool, search string, offset uint64, limit int) ([]*models.Student, error)
	Count(ctx context.Context, sponsored *bool, search string) (int64, error)
}

// studentServiceImpl implements StudentService
type studentServiceImpl struct {
	studentRepo     studentProfileStore
	applicationRepo approvedApplicationFinder
	logger          zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	studentRepo studentProfileStore,
	applicationRepo approvedApplicationFinder,
	logger zerolog.Logger,
) StudentService {
	return &studentServiceImpl{
		studentRepo:     studentRepo,
		applicationRepo: applicationRepo,
		logger:          logger,
	}
}

// needUSD resolves the student's need from their approved application; zero
// when none exists.
func (s *studentServiceImpl) needUSD(ctx context.Context, studentID int64) float64 {
	app, err := s.applicationRepo.GetLatestApprovedByStudent(ctx, studentID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrApplicationNotFound) {
			s.logger.Warn().Err(err).Int64("studentID", studentID).Msg("Failed to resolve student need")
		}
		return 0
	}
	return app.NeedUSD()
}

// GetByID retrieves a student's public funding profile
func (s *studentServiceImpl) GetByID(ctx context.Context, id int64) (*dto.StudentResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := dto.ToStudentResponse(student, s.needUSD(ctx, student.ID))
	return &resp, nil
}

// GetOwn retrieves the caller's own student record
func (s *studentServiceImpl) GetOwn(ctx context.Context, caller Caller) (*dto.StudentResponse, error) {
	student, err := s.studentRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, student.ID)
}

// List retrieves students with filtering and pagination
func (s *studentServiceImpl) List(ctx context.Context, filter *dto.StudentFilterRequest) (*dto.StudentListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)

	students, err := s.studentRepo.List(ctx, filter.Sponsored, filter.Search, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.studentRepo.Count(ctx, filter.Sponsored, filter.Search)
	if err != nil {
		return nil, err
	}

	resp := &dto.StudentListResponse{
		Pagination: helpers.NewPaginationInfo(total, filter.Page, limit),
	}
	for _, student := range students {
		resp.Students = append(resp.Students, dto.ToStudentResponse(student, s.needUSD(ctx, student.ID)))
	}
	return resp, nil
}

// UpdateProfile mutates a student's academic profile. The owning student or
// an admin may update it; funding fields are never touched here.
func (s *studentServiceImpl) UpdateProfile(ctx context.Context, caller Caller, studentID int64, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if !caller.IsAdmin() && !(caller.Role == models.RoleStudent && student.UserID == caller.UserID) {
		return nil, apperrors.ErrPermissionDenied
	}

	if req.University != nil {
		student.University = *req.University
	}
	if req.Program != nil {
		student.Program = *req.Program
	}
	if req.GPA != nil {
		student.GPA = req.GPA
	}
	if req.GraduationYear != nil {
		student.GraduationYear = *req.GraduationYear
	}

	if err := s.studentRepo.UpdateProfile(ctx, student); err != nil {
		return nil, err
	}

	resp := dto.ToStudentResponse(student, s.needUSD(ctx, student.ID))
	return &resp, nil
}
