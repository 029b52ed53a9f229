package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
	"github.com/nbilal/scholarbridge/internal/pkg/dberrors"
)

// ConversationService defines the interface for donor-student messaging
type ConversationService interface {
	Start(ctx context.Context, caller Caller, req *dto.StartConversationRequest) (*dto.ConversationResponse, error)
	List(ctx context.Context, caller Caller) (*dto.ConversationListResponse, error)
	SendMessage(ctx context.Context, caller Caller, conversationID int64, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	GetMessages(ctx context.Context, caller Caller, conversationID int64, req *dto.GetMessagesRequest) (*dto.MessageListResponse, error)
}

type conversationStore interface {
	Create(ctx context.Context, c *models.Conversation) error
	GetByID(ctx context.Context, id int64) (*models.Conversation, error)
	GetByPair(ctx context.Context, donorID, studentID int64) (*models.Conversation, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Conversation, error)
	Touch(ctx context.Context, id int64) error
	CreateMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, conversationID int64, before, after *time.Time, limit int) ([]*models.Message, error)
}

type sponsorshipGate interface {
	HasActiveSponsorship(ctx context.Context, donorID, studentID int64) (bool, error)
}

// conversationServiceImpl implements ConversationService
type conversationServiceImpl struct {
	conversationRepo conversationStore
	studentRepo      studentReader
	gate             sponsorshipGate
	logger           zerolog.Logger
}

// NewConversationService creates a new ConversationService
func NewConversationService(
	conversationRepo conversationStore,
	studentRepo studentReader,
	gate sponsorshipGate,
	logger zerolog.Logger,
) ConversationService {
	return &conversationServiceImpl{
		conversationRepo: conversationRepo,
		studentRepo:      studentRepo,
		gate:             gate,
		logger:           logger,
	}
}

// Start opens the donor's thread with a student and posts the initial
// message. Creation is gated on an active sponsorship; once the thread
// exists, a later sponsorship change does not close it. Starting an existing
// thread reuses it, so the operation is idempotent per pair.
func (s *conversationServiceImpl) Start(ctx context.Context, caller Caller, req *dto.StartConversationRequest) (*dto.ConversationResponse, error) {
	if caller.Role != models.RoleDonor {
		return nil, apperrors.ErrPermissionDenied
	}

	conversation, err := s.conversationRepo.GetByPair(ctx, caller.UserID, req.StudentID)
	if err != nil && !errors.Is(err, apperrors.ErrConversationNotFound) {
		return nil, err
	}

	if conversation == nil {
		has, err := s.gate.HasActiveSponsorship(ctx, caller.UserID, req.StudentID)
		if err != nil {
			return nil, err
		}
		if !has {
			return nil, apperrors.ErrSponsorshipRequired
		}

		conversation = &models.Conversation{
			Type:      models.ConversationTypeDonorStudent,
			DonorID:   caller.UserID,
			StudentID: req.StudentID,
		}
		if err := s.conversationRepo.Create(ctx, conversation); err != nil {
			// A concurrent Start for the same pair can win the insert race;
			// the unique constraint turns that into a reuse.
			if dberrors.IsUniqueViolation(err) {
				conversation, err = s.conversationRepo.GetByPair(ctx, caller.UserID, req.StudentID)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       caller.UserID,
		SenderRole:     caller.Role,
		Content:        req.Message,
	}
	if err := s.conversationRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	if err := s.conversationRepo.Touch(ctx, conversation.ID); err != nil {
		s.logger.Warn().Err(err).Int64("conversationID", conversation.ID).Msg("Failed to bump conversation")
	}

	resp := dto.ToConversationResponse(conversation)
	return &resp, nil
}

// List returns the caller's conversations, most recently active first
func (s *conversationServiceImpl) List(ctx context.Context, caller Caller) (*dto.ConversationListResponse, error) {
	conversations, err := s.conversationRepo.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ConversationListResponse{}
	for _, c := range conversations {
		resp.Conversations = append(resp.Conversations, dto.ToConversationResponse(c))
	}
	return resp, nil
}

// participant checks the caller belongs to the conversation, on either side
func (s *conversationServiceImpl) participant(ctx context.Context, caller Caller, c *models.Conversation) error {
	if caller.UserID == c.DonorID {
		return nil
	}
	if caller.Role == models.RoleStudent {
		student, err := s.studentRepo.GetByUserID(ctx, caller.UserID)
		if err == nil && student.ID == c.StudentID {
			return nil
		}
	}
	return apperrors.ErrNotAParticipant
}

// SendMessage appends a message to a conversation the caller participates
// in. Messages are immutable once written.
func (s *conversationServiceImpl) SendMessage(ctx context.Context, caller Caller, conversationID int64, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := s.participant(ctx, caller, conversation); err != nil {
		return nil, err
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       caller.UserID,
		SenderRole:     caller.Role,
		Content:        req.Content,
	}
	if err := s.conversationRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	if err := s.conversationRepo.Touch(ctx, conversation.ID); err != nil {
		s.logger.Warn().Err(err).Int64("conversationID", conversation.ID).Msg("Failed to bump conversation")
	}

	resp := dto.ToMessageResponse(message)
	return &resp, nil
}

// GetMessages returns a page of messages, oldest first within the page
func (s *conversationServiceImpl) GetMessages(ctx context.Context, caller Caller, conversationID int64, req *dto.GetMessagesRequest) (*dto.MessageListResponse, error) {
	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := s.participant(ctx, caller, conversation); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	messages, err := s.conversationRepo.ListMessages(ctx, conversationID, req.Before, req.After, limit)
	if err != nil {
		return nil, err
	}

	// Repo returns newest first; flip so clients render chronologically.
	resp := &dto.MessageListResponse{}
	for i := len(messages) - 1; i >= 0; i-- {
		resp.Messages = append(resp.Messages, dto.ToMessageResponse(messages[i]))
	}
	return resp, nil
}
