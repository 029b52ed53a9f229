package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/db"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
)

// ConversationRepository handles database operations for donor-student conversations
type ConversationRepository struct {
	db db.Queryer
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: pool}
}

func (r *ConversationRepository) q(ctx context.Context) db.Queryer {
	return db.QueryerFromContext(ctx, r.db)
}

const conversationColumns = `id, donor_id, student_id, conversation_type, created_at, updated_at`

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	var c models.Conversation
	err := row.Scan(
		&c.ID,
		&c.DonorID,
		&c.StudentID,
		&c.Type,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new conversation. The unique (donor_id, student_id)
// constraint enforces one conversation per pair.
func (r *ConversationRepository) Create(ctx context.Context, c *models.Conversation) error {
	query := `
		INSERT INTO conversations (donor_id, student_id, conversation_type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.q(ctx).QueryRow(ctx, query,
		c.DonorID,
		c.StudentID,
		c.Type,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating conversation: %w", err)
	}
	return nil
}

// GetByID retrieves a conversation by its primary key
func (r *ConversationRepository) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`

	c, err := scanConversation(r.q(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		return nil, fmt.Errorf("error retrieving conversation: %w", err)
	}
	return c, nil
}

// GetByPair retrieves the conversation between a donor and a student, if any
func (r *ConversationRepository) GetByPair(ctx context.Context, donorID, studentID int64) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE donor_id = $1 AND student_id = $2`

	c, err := scanConversation(r.q(ctx).QueryRow(ctx, query, donorID, studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		return nil, fmt.Errorf("error retrieving conversation pair: %w", err)
	}
	return c, nil
}

// ListByUser retrieves conversations the user participates in, donor or student side
func (r *ConversationRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Conversation, error) {
	query := `
		SELECT c.id, c.donor_id, c.student_id, c.conversation_type, c.created_at, c.updated_at
		FROM conversations c
		JOIN students s ON c.student_id = s.id
		WHERE c.donor_id = $1 OR s.user_id = $1
		ORDER BY c.updated_at DESC
	`

	rows, err := r.q(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning conversation row: %w", err)
		}
		conversations = append(conversations, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation rows: %w", err)
	}

	return conversations, nil
}

// Touch bumps a conversation's updated_at so recently active conversations sort first
func (r *ConversationRepository) Touch(ctx context.Context, id int64) error {
	_, err := r.q(ctx).Exec(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error touching conversation: %w", err)
	}
	return nil
}

// CreateMessage appends a message to a conversation
func (r *ConversationRepository) CreateMessage(ctx context.Context, m *models.Message) error {
	query := `
		INSERT INTO messages (conversation_id, sender_id, sender_role, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q(ctx).QueryRow(ctx, query,
		m.ConversationID,
		m.SenderID,
		m.SenderRole,
		m.Content,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating message: %w", err)
	}
	return nil
}

// ListMessages retrieves messages in a conversation with time cursor filters
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID int64, before, after *time.Time, limit int) ([]*models.Message, error) {
	queryBuilder := squirrel.Select("id", "conversation_id", "sender_id", "sender_role", "content", "created_at").
		From("messages").
		Where("conversation_id = ?", conversationID).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	if before != nil {
		queryBuilder = queryBuilder.Where("created_at < ?", *before)
	}
	if after != nil {
		queryBuilder = queryBuilder.Where("created_at > ?", *after)
	}

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderRole, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message row: %w", err)
		}
		messages = append(messages, &m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return messages, nil
}
