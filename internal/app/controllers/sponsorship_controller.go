package controllers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/app/services"
	"github.com/nbilal/scholarbridge/internal/middleware"
)

// SponsorshipController handles sponsorship and payment callback operations
type SponsorshipController struct {
	sponsorshipService services.SponsorshipService
	paymentSecret      string
	logger             zerolog.Logger
}

// NewSponsorshipController creates a new SponsorshipController
func NewSponsorshipController(sponsorshipService services.SponsorshipService, paymentSecret string, logger zerolog.Logger) *SponsorshipController {
	return &SponsorshipController{
		sponsorshipService: sponsorshipService,
		paymentSecret:      paymentSecret,
		logger:             logger,
	}
}

// Create handles direct sponsorship creation
// @Summary Sponsor a student
// @Description Commits funding against a student with an approved application. Donors sponsor as themselves; admins may record on a donor's behalf.
// @Tags sponsorships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSponsorshipRequest true "Sponsorship details"
// @Success 201 {object} dto.APIResponse{data=dto.SponsorshipResponse} "Sponsorship recorded"
// @Failure 409 {object} dto.ErrorResponse "Student has no approved application"
// @Router /sponsorships [post]
func (c *SponsorshipController) Create(ctx *gin.Context) {
	var req dto.CreateSponsorshipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.sponsorshipService.Create(ctx.Request.Context(), caller(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("sponsorshipID", resp.ID).
		Int64("studentID", resp.StudentID).
		Float64("amountUSD", resp.AmountUSD).
		Msg("Sponsorship recorded")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// PaymentCallback handles gateway charge notifications
// @Summary Payment gateway callback
// @Description Records the sponsorship behind a completed charge. Authenticated by the shared gateway secret; idempotent per payment reference.
// @Tags sponsorships
// @Accept json
// @Produce json
// @Param X-Payment-Signature header string true "Shared gateway secret"
// @Param request body dto.PaymentCallbackRequest true "Charge details"
// @Success 200 {object} dto.APIResponse{data=dto.SponsorshipResponse} "Sponsorship recorded or already on file"
// @Failure 401 {object} dto.ErrorResponse "Bad signature"
// @Router /payments/callback [post]
func (c *SponsorshipController) PaymentCallback(ctx *gin.Context) {
	signature := ctx.GetHeader("X-Payment-Signature")
	if subtle.ConstantTimeCompare([]byte(signature), []byte(c.paymentSecret)) != 1 {
		c.logger.Warn().Str("clientIP", ctx.ClientIP()).Msg("Payment callback with bad signature")
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Invalid payment signature")
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.PaymentCallbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.sponsorshipService.HandlePaymentCallback(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Error().Err(err).Str("reference", req.Reference).Msg("Payment callback failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("reference", req.Reference).Int64("sponsorshipID", resp.ID).Msg("Payment callback processed")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetByID handles single sponsorship retrieval
// @Summary Get a sponsorship
// @Tags sponsorships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sponsorship ID"
// @Success 200 {object} dto.APIResponse{data=dto.SponsorshipResponse}
// @Failure 404 {object} dto.ErrorResponse "Sponsorship not found"
// @Router /sponsorships/{id} [get]
func (c *SponsorshipController) GetByID(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.sponsorshipService.GetByID(ctx.Request.Context(), caller(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListByStudent handles a student's received sponsorships
// @Summary List sponsorships received by a student
// @Tags sponsorships
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.SponsorshipListResponse}
// @Router /students/{studentId}/sponsorships [get]
func (c *SponsorshipController) ListByStudent(ctx *gin.Context) {
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}

	resp, err := c.sponsorshipService.ListByStudent(ctx.Request.Context(), caller(ctx), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListOwn handles the donor's own sponsorships
// @Summary List my sponsorships
// @Tags sponsorships
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SponsorshipListResponse}
// @Router /sponsorships/mine [get]
func (c *SponsorshipController) ListOwn(ctx *gin.Context) {
	who := caller(ctx)
	resp, err := c.sponsorshipService.ListByDonor(ctx.Request.Context(), who, who.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// CheckGate answers whether the caller actively sponsors a student
// @Summary Check sponsorship gate
// @Description Reports whether the authenticated donor holds an active sponsorship for the student
// @Tags sponsorships
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.SponsorshipCheckResponse}
// @Router /students/{studentId}/sponsorship-check [get]
func (c *SponsorshipController) CheckGate(ctx *gin.Context) {
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}

	who := caller(ctx)
	has, err := c.sponsorshipService.HasActiveSponsorship(ctx.Request.Context(), who.UserID, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SponsorshipCheckResponse{HasSponsorship: has}))
}
