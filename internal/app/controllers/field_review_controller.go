package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/app/services"
	"github.com/nbilal/scholarbridge/internal/middleware"
)

// FieldReviewController handles field verification operations
type FieldReviewController struct {
	reviewService services.FieldReviewService
	logger        zerolog.Logger
}

// NewFieldReviewController creates a new FieldReviewController
func NewFieldReviewController(reviewService services.FieldReviewService, logger zerolog.Logger) *FieldReviewController {
	return &FieldReviewController{
		reviewService: reviewService,
		logger:        logger,
	}
}

// Assign handles review assignment
// @Summary Assign a field review
// @Description Assigns an application to a field officer for on-site verification. Admin only.
// @Tags field-reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AssignFieldReviewRequest true "Assignment details"
// @Success 201 {object} dto.APIResponse{data=dto.FieldReviewResponse} "Review assigned"
// @Failure 400 {object} dto.ErrorResponse "Assignee is not a field officer"
// @Router /field-reviews [post]
func (c *FieldReviewController) Assign(ctx *gin.Context) {
	var req dto.AssignFieldReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.reviewService.Assign(ctx.Request.Context(), caller(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("reviewID", resp.ID).Int64("officerID", resp.OfficerID).Msg("Field review assigned")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// GetByApplication handles review lookup by application
// @Summary Get the review on an application
// @Tags field-reviews
// @Produce json
// @Security BearerAuth
// @Param applicationId path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.FieldReviewResponse}
// @Failure 404 {object} dto.ErrorResponse "No review on this application"
// @Router /applications/{applicationId}/field-review [get]
func (c *FieldReviewController) GetByApplication(ctx *gin.Context) {
	applicationID, ok := pathID(ctx, "applicationId")
	if !ok {
		return
	}

	resp, err := c.reviewService.GetByApplication(ctx.Request.Context(), caller(ctx), applicationID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListOwn handles the officer's own queue
// @Summary List my assigned reviews
// @Tags field-reviews
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.FieldReviewListResponse}
// @Router /field-reviews/mine [get]
func (c *FieldReviewController) ListOwn(ctx *gin.Context) {
	who := caller(ctx)
	resp, err := c.reviewService.ListByOfficer(ctx.Request.Context(), who, who.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// RequestMissingInfo handles a missing-information request
// @Summary Request missing information
// @Description Records a structured list of items needed from the student. Never changes the application status.
// @Tags field-reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Field review ID"
// @Param request body dto.RequestMissingInfoRequest true "Items needed"
// @Success 200 {object} dto.APIResponse{data=dto.FieldReviewResponse}
// @Router /field-reviews/{id}/request-info [post]
func (c *FieldReviewController) RequestMissingInfo(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.RequestMissingInfoRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.reviewService.RequestMissingInfo(ctx.Request.Context(), caller(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("reviewID", id).Int("items", len(req.Items)).Msg("Missing info requested")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Complete handles review completion
// @Summary Complete a field review
// @Description Closes the review with an advisory recommendation for the admin
// @Tags field-reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Field review ID"
// @Param request body dto.CompleteFieldReviewRequest true "Recommendation"
// @Success 200 {object} dto.APIResponse{data=dto.FieldReviewResponse}
// @Router /field-reviews/{id}/complete [post]
func (c *FieldReviewController) Complete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.CompleteFieldReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.reviewService.Complete(ctx.Request.Context(), caller(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("reviewID", id).Str("recommendation", req.Recommendation).Msg("Field review completed")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
