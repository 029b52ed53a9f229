package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/app/services"
	"github.com/nbilal/scholarbridge/internal/middleware"
)

// ConversationController handles donor-student messaging operations
type ConversationController struct {
	conversationService services.ConversationService
	logger              zerolog.Logger
}

// NewConversationController creates a new ConversationController
func NewConversationController(conversationService services.ConversationService, logger zerolog.Logger) *ConversationController {
	return &ConversationController{
		conversationService: conversationService,
		logger:              logger,
	}
}

// Start handles conversation creation
// @Summary Start a conversation
// @Description Opens the donor's thread with a sponsored student and posts the first message. Requires an active sponsorship; reuses the thread when one already exists.
// @Tags conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StartConversationRequest true "Student and first message"
// @Success 201 {object} dto.APIResponse{data=dto.ConversationResponse} "Conversation ready"
// @Failure 403 {object} dto.ErrorResponse "No active sponsorship for this student"
// @Router /conversations [post]
func (c *ConversationController) Start(ctx *gin.Context) {
	var req dto.StartConversationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.conversationService.Start(ctx.Request.Context(), caller(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("conversationID", resp.ID).Int64("studentID", req.StudentID).Msg("Conversation started")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// List handles conversation listing
// @Summary List my conversations
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ConversationListResponse}
// @Router /conversations [get]
func (c *ConversationController) List(ctx *gin.Context) {
	resp, err := c.conversationService.List(ctx.Request.Context(), caller(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// SendMessage handles posting a message
// @Summary Send a message
// @Tags conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Param request body dto.SendMessageRequest true "Message content"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 403 {object} dto.ErrorResponse "Caller is not a participant"
// @Router /conversations/{id}/messages [post]
func (c *ConversationController) SendMessage(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.conversationService.SendMessage(ctx.Request.Context(), caller(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// GetMessages handles message history
// @Summary Get messages
// @Description Returns a page of messages, oldest first, with optional before/after time cursors
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Conversation ID"
// @Param before query string false "Only messages before this RFC3339 time"
// @Param after query string false "Only messages after this RFC3339 time"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.MessageListResponse}
// @Router /conversations/{id}/messages [get]
func (c *ConversationController) GetMessages(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.GetMessagesRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.conversationService.GetMessages(ctx.Request.Context(), caller(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
