package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/app/services"
	"github.com/nbilal/scholarbridge/internal/middleware"
)

// DocumentController handles evidence ledger operations
type DocumentController struct {
	documentService services.DocumentService
	logger          zerolog.Logger
}

// NewDocumentController creates a new DocumentController
func NewDocumentController(documentService services.DocumentService, logger zerolog.Logger) *DocumentController {
	return &DocumentController{
		documentService: documentService,
		logger:          logger,
	}
}

// Upload handles document upload
// @Summary Upload a document
// @Description Adds an evidence file to the student's ledger. The form carries the file under "file" plus documentType and optional applicationId fields.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Param file formData file true "Document file"
// @Param documentType formData string true "Document type"
// @Param applicationId formData int false "Application to attach to"
// @Success 201 {object} dto.APIResponse{data=dto.DocumentResponse} "Document recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid document type or file"
// @Router /students/{studentId}/documents [post]
func (c *DocumentController) Upload(ctx *gin.Context) {
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}

	var req dto.UploadDocumentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Missing file").
			WithDetails("The multipart form must include a \"file\" part")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.documentService.Upload(ctx.Request.Context(), caller(ctx), studentID, &req, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("studentID", studentID).Str("documentType", resp.DocumentType).Msg("Document uploaded")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// List handles ledger listing
// @Summary List a student's documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.DocumentListResponse}
// @Router /students/{studentId}/documents [get]
func (c *DocumentController) List(ctx *gin.Context) {
	studentID, ok := pathID(ctx, "studentId")
	if !ok {
		return
	}

	resp, err := c.documentService.ListByStudent(ctx.Request.Context(), caller(ctx), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Delete handles document removal
// @Summary Delete a document
// @Description Removes a ledger entry and its stored file. Admin only.
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Router /documents/{id} [delete]
func (c *DocumentController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.documentService.Delete(ctx.Request.Context(), caller(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("documentID", id).Msg("Document deleted")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Document deleted"}))
}
