package models

import (
	"strings"
	"time"
)

// MessageKind is derived at read time from the message content; it is never
// stored. Shared-form messages carry a sentinel-prefixed payload in Content.
type MessageKind string

const (
	MessageKindText       MessageKind = "text"
	MessageKindSharedForm MessageKind = "shared_form"
)

// ChatMessage is the record handed to the messaging subsystem. This service
// only ever writes Content; delivery and threading stay with messaging.
type ChatMessage struct {
	ID         string `json:"id" gorm:"primaryKey;size:36"`
	SenderID   string `json:"sender_id" gorm:"not null;size:255;index"`
	ReceiverID string `json:"receiver_id" gorm:"not null;size:255;index"`
	ThreadID   string `json:"thread_id" gorm:"not null;size:520;index"`
	Content    string `json:"content" gorm:"type:text;not null"`
	IsRead     bool   `json:"is_read" gorm:"default:false"`

	Timestamp time.Time `json:"timestamp" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// ThreadID derives the deterministic thread identifier for a user pair. Both
// directions of a conversation map to the same thread.
func ThreadID(userA, userB string) string {
	if strings.Compare(userA, userB) > 0 {
		userA, userB = userB, userA
	}
	return userA + "_" + userB
}
