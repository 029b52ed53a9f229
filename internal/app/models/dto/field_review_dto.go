package dto

import (
	"time"

	"github.com/nbilal/scholarbridge/internal/app/models"
)

// --- Request DTOs ---

// AssignFieldReviewRequest assigns an application to a verifying officer
type AssignFieldReviewRequest struct {
	ApplicationID int64 `json:"applicationId" binding:"required,gt=0"`
	StudentID     int64 `json:"studentId" binding:"required,gt=0"`
	OfficerUserID int64 `json:"officerUserId" binding:"required,gt=0"`
}

// RequestMissingInfoRequest appends a structured missing-information request
type RequestMissingInfoRequest struct {
	Items []string `json:"items" binding:"required,min=1,dive,required"`
	Note  string   `json:"note"`
}

// CompleteFieldReviewRequest closes a review with an advisory recommendation
type CompleteFieldReviewRequest struct {
	Recommendation string `json:"recommendation" binding:"required,oneof=APPROVE REJECT NEEDS_MORE_INFO"`
	Notes          string `json:"notes"`
}

// --- Response DTOs ---

// FieldReviewRequestResponse represents a missing-information request entry
type FieldReviewRequestResponse struct {
	ID        int64     `json:"id"`
	Items     []string  `json:"items"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

// FieldReviewResponse represents a review as returned by the API
type FieldReviewResponse struct {
	ID             int64                        `json:"id"`
	ApplicationID  int64                        `json:"applicationId"`
	StudentID      int64                        `json:"studentId"`
	OfficerID      int64                        `json:"officerId"`
	Status         string                       `json:"status"`
	Recommendation *string                      `json:"recommendation,omitempty"`
	Notes          string                       `json:"notes"`
	Requests       []FieldReviewRequestResponse `json:"requests,omitempty"`
	CreatedAt      time.Time                    `json:"createdAt"`
	UpdatedAt      time.Time                    `json:"updatedAt"`
}

// FieldReviewListResponse represents the reviews attached to an application,
// newest first.
type FieldReviewListResponse struct {
	Reviews []FieldReviewResponse `json:"reviews"`
}

// ToFieldReviewResponse converts a model to its API representation
func ToFieldReviewResponse(fr *models.FieldReview) FieldReviewResponse {
	if fr == nil {
		return FieldReviewResponse{}
	}
	resp := FieldReviewResponse{
		ID:            fr.ID,
		ApplicationID: fr.ApplicationID,
		StudentID:     fr.StudentID,
		OfficerID:     fr.OfficerID,
		Status:        string(fr.Status),
		Notes:         fr.Notes,
		CreatedAt:     fr.CreatedAt,
		UpdatedAt:     fr.UpdatedAt,
	}
	if fr.Recommendation != nil {
		rec := string(*fr.Recommendation)
		resp.Recommendation = &rec
	}
	for _, req := range fr.Requests {
		resp.Requests = append(resp.Requests, FieldReviewRequestResponse{
			ID:        req.ID,
			Items:     req.Items,
			Note:      req.Note,
			CreatedAt: req.CreatedAt,
		})
	}
	return resp
}
