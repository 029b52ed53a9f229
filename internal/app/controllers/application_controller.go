package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/app/services"
	"github.com/nbilal/scholarbridge/internal/middleware"
)

// ApplicationController handles funding application operations
type ApplicationController struct {
	applicationService services.ApplicationService
	documentService    services.DocumentService
	logger             zerolog.Logger
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(
	applicationService services.ApplicationService,
	documentService services.DocumentService,
	logger zerolog.Logger,
) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
		documentService:    documentService,
		logger:             logger,
	}
}

func caller(ctx *gin.Context) services.Caller {
	userID, role := middleware.CallerFrom(ctx)
	return services.Caller{UserID: userID, Role: role}
}

func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid path parameter").
			WithField(name)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// Create handles application submission
// @Summary Submit a funding application
// @Description Creates a new application in PENDING state for the authenticated student
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateApplicationRequest true "Application details"
// @Success 201 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a student"
// @Router /applications [post]
func (c *ApplicationController) Create(ctx *gin.Context) {
	var req dto.CreateApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.applicationService.Create(ctx.Request.Context(), caller(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("applicationID", resp.ID).Int64("studentID", resp.StudentID).Msg("Application submitted")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// GetByID handles application retrieval
// @Summary Get an application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id} [get]
func (c *ApplicationController) GetByID(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.applicationService.GetByID(ctx.Request.Context(), caller(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// List handles application listing
// @Summary List applications
// @Description Lists applications with optional status and student filters. Students only see their own.
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param studentId query int false "Filter by student"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationListResponse}
// @Router /applications [get]
func (c *ApplicationController) List(ctx *gin.Context) {
	var filter dto.ApplicationFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.applicationService.List(ctx.Request.Context(), caller(ctx), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// UpdateStatus handles status transitions
// @Summary Transition an application
// @Description Moves an application through the review state machine. Approval enforces the document-completeness gate unless forceApprove is set.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.UpdateApplicationStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse} "Transition applied"
// @Failure 409 {object} dto.ErrorResponse "Illegal transition or missing documents"
// @Router /applications/{id}/status [patch]
func (c *ApplicationController) UpdateStatus(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.applicationService.UpdateStatus(ctx.Request.Context(), caller(ctx), id, &req)
	if err != nil {
		c.logger.Warn().Err(err).Int64("applicationID", id).Str("target", req.Status).Msg("Status transition rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("applicationID", id).Str("status", resp.Status).Bool("forceApproved", resp.ForceApproved).Msg("Application status updated")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// CheckCompleteness handles the document gate preview
// @Summary Check document completeness
// @Description Reports whether the application's ledger covers every required document type, with the missing list
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.CompletenessResponse}
// @Router /applications/{id}/completeness [get]
func (c *ApplicationController) CheckCompleteness(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.documentService.CheckCompleteness(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
