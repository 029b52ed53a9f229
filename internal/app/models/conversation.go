package models

import "time"

// ConversationType classifies who talks to whom
type ConversationType string

const (
	ConversationTypeDonorStudent ConversationType = "DONOR_STUDENT"
)

// Conversation is a donor-student message thread. At most one exists per
// donor/student pair; creation requires an active sponsorship between them.
type Conversation struct {
	ID        int64            `json:"id" db:"id"`
	Type      ConversationType `json:"type" db:"conversation_type"`
	DonorID   int64            `json:"donorId" db:"donor_id"`
	StudentID int64            `json:"studentId" db:"student_id"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time        `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Donor    *User    `json:"donor,omitempty"`
	Student  *Student `json:"student,omitempty"`
	LastMsg  *Message `json:"lastMessage,omitempty"`
}

// Message is an immutable entry in a conversation, totally ordered by
// creation time. No edit-after-send.
type Message struct {
	ID             int64     `json:"id" db:"id"`
	ConversationID int64     `json:"conversationId" db:"conversation_id"`
	SenderID       int64     `json:"senderId" db:"sender_id"`
	SenderRole     RoleType  `json:"senderRole" db:"sender_role"`
	Content        string    `json:"content" db:"content"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	Sender *User `json:"sender,omitempty"`
}
