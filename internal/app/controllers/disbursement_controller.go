package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/app/services"
	"github.com/nbilal/scholarbridge/internal/middleware"
)

// DisbursementController handles fund release operations
type DisbursementController struct {
	disbursementService services.DisbursementService
	logger              zerolog.Logger
}

// NewDisbursementController creates a new DisbursementController
func NewDisbursementController(disbursementService services.DisbursementService, logger zerolog.Logger) *DisbursementController {
	return &DisbursementController{
		disbursementService: disbursementService,
		logger:              logger,
	}
}

// Create handles disbursement initiation
// @Summary Initiate a disbursement
// @Description Releases money from a student's funded pool. Fails when the amount exceeds the undisbursed balance. Admin only.
// @Tags disbursements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateDisbursementRequest true "Disbursement details"
// @Success 201 {object} dto.APIResponse{data=dto.DisbursementResponse} "Disbursement initiated"
// @Failure 409 {object} dto.ErrorResponse "Amount exceeds undisbursed balance"
// @Router /disbursements [post]
func (c *DisbursementController) Create(ctx *gin.Context) {
	var req dto.CreateDisbursementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.disbursementService.Create(ctx.Request.Context(), caller(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// Complete handles disbursement completion
// @Summary Complete a disbursement
// @Description Marks an initiated disbursement as paid out. Admin only.
// @Tags disbursements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Disbursement ID"
// @Success 200 {object} dto.APIResponse{data=dto.DisbursementResponse}
// @Router /disbursements/{id}/complete [post]
func (c *DisbursementController) Complete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.disbursementService.Complete(ctx.Request.Context(), caller(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("disbursementID", id).Msg("Disbursement completed")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListByStudent handles disbursement history
// @Summary List a student's disbursements
// @Description Returns the disbursement history with the remaining undisbursed balance
// @Tags disbursements
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.DisbursementListResponse}
// @Router /students/{studentId}/disbursements [get]
func (c *DisbursementController) ListByStudent(ctx *gin.Context) {
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}

	resp, err := c.disbursementService.ListByStudent(ctx.Request.Context(), caller(ctx), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
