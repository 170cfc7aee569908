package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of evaluation form events
type EventType string

const (
	// Catalog events
	EventCatalogSeeded EventType = "catalog.seeded"

	// Response events
	EventResponseSubmitted EventType = "response.submitted"
	EventResponseShared    EventType = "response.shared"
	EventResponseDeleted   EventType = "response.deleted"
)

// FormEvent is the base event structure for all evaluation form events
type FormEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewFormEvent wraps a payload in the standard event envelope.
func NewFormEvent(eventType EventType, data interface{}) *FormEvent {
	return &FormEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "evalform-service",
		Version:   "1.0",
		Data:      data,
	}
}

// Catalog event payloads

type CatalogSeededEvent struct {
	FormIDs   []string  `json:"form_ids"`
	FormCount int       `json:"form_count"`
	SeededAt  time.Time `json:"seeded_at"`
}

// Response event payloads

type ResponseSubmittedEvent struct {
	ResponseID string    `json:"response_id"`
	FormID     string    `json:"form_id"`
	FormTitle  string    `json:"form_title"`
	UserID     string    `json:"user_id"`
	Score      int       `json:"score"`
	MaxScore   int       `json:"max_score"`
	Completed  time.Time `json:"completed_at"`
}

type ResponseSharedEvent struct {
	ResponseID  string    `json:"response_id"`
	FormID      string    `json:"form_id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	MessageID   string    `json:"message_id"`
	SharedAt    time.Time `json:"shared_at"`
}

type ResponseDeletedEvent struct {
	ResponseID string    `json:"response_id"`
	FormID     string    `json:"form_id"`
	UserID     string    `json:"user_id"`
	DeletedAt  time.Time `json:"deleted_at"`
}
