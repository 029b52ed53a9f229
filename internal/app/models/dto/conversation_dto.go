package dto

import (
	"time"

	"github.com/nbilal/scholarbridge/internal/app/models"
)

// --- Request DTOs ---

// StartConversationRequest opens (or reuses) the donor's thread with a
// student and posts the initial message.
type StartConversationRequest struct {
	StudentID int64  `json:"studentId" binding:"required,gt=0"`
	Message   string `json:"message" binding:"required"`
}

// SendMessageRequest posts a message into an existing conversation
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// GetMessagesRequest represents message listing filters
type GetMessagesRequest struct {
	Before *time.Time `form:"before" time_format:"2006-01-02T15:04:05Z07:00"`
	After  *time.Time `form:"after" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit  int        `form:"limit,default=50" binding:"omitempty,min=1,max=100"`
}

// --- Response DTOs ---

// MessageResponse represents a message as returned by the API
type MessageResponse struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversationId"`
	SenderID       int64     `json:"senderId"`
	SenderRole     string    `json:"senderRole"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ConversationResponse represents a conversation as returned by the API
type ConversationResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	DonorID   int64     `json:"donorId"`
	StudentID int64     `json:"studentId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversationListResponse represents the caller's conversations
type ConversationListResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
}

// MessageListResponse represents a page of messages, oldest first
type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
}

// ToMessageResponse converts a model to its API representation
func ToMessageResponse(m *models.Message) MessageResponse {
	if m == nil {
		return MessageResponse{}
	}
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		SenderRole:     string(m.SenderRole),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

// ToConversationResponse converts a model to its API representation
func ToConversationResponse(c *models.Conversation) ConversationResponse {
	if c == nil {
		return ConversationResponse{}
	}
	return ConversationResponse{
		ID:        c.ID,
		Type:      string(c.Type),
		DonorID:   c.DonorID,
		StudentID: c.StudentID,
		CreatedAt: c.CreatedAt,
	}
}
