package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/physiotrack/evalform-service/internal/models"
	"github.com/physiotrack/evalform-service/internal/repositories"
	"github.com/physiotrack/evalform-service/internal/sharing"
	"github.com/physiotrack/evalform-service/internal/validator"
)

// SendMessageRequest is a plain text message to one recipient.
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Content     string `json:"content" validate:"required,max=10000"`
}

// MessageView is a thread entry as rendered to clients. Shared-form messages
// carry the decoded payload so they can be displayed distinctly from text.
type MessageView struct {
	*models.ChatMessage
	Kind       models.MessageKind `json:"kind"`
	SharedForm *sharing.Payload   `json:"shared_form,omitempty"`
}

type messageService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewMessageService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) MessageService {
	return &messageService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *messageService) Send(ctx context.Context, req *SendMessageRequest, senderID string) (*models.ChatMessage, error) {
	if senderID == "" {
		return nil, ErrAuthRequired
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	message := &models.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: req.RecipientID,
		ThreadID:   models.ThreadID(senderID, req.RecipientID),
		Content:    req.Content,
		IsRead:     false,
		Timestamp:  time.Now(),
	}

	if err := s.repo.Message().Create(ctx, message); err != nil {
		return nil, fmt.Errorf("%w: send message: %v", ErrPersistFailed, err)
	}

	s.logger.Info("Message sent",
		"message_id", message.ID,
		"thread_id", message.ThreadID)

	return message, nil
}

// GetThread returns the conversation with a partner, oldest first, each
// message tagged as plain text or a decoded shared form.
func (s *messageService) GetThread(ctx context.Context, partnerID, userID string, filters repositories.MessageFilters) ([]*MessageView, int64, error) {
	if userID == "" {
		return nil, 0, ErrAuthRequired
	}

	threadID := models.ThreadID(userID, partnerID)
	messages, total, err := s.repo.Message().GetThread(ctx, threadID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: get thread: %v", ErrFetchFailed, err)
	}

	views := make([]*MessageView, len(messages))
	for i, message := range messages {
		views[i] = s.buildMessageView(message)
	}
	return views, total, nil
}

func (s *messageService) ListThreads(ctx context.Context, userID string) ([]*repositories.ThreadSummary, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	threads, err := s.repo.Message().ListThreads(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list threads: %v", ErrFetchFailed, err)
	}
	return threads, nil
}

func (s *messageService) MarkThreadRead(ctx context.Context, partnerID, userID string) error {
	if userID == "" {
		return ErrAuthRequired
	}

	threadID := models.ThreadID(userID, partnerID)
	if err := s.repo.Message().MarkThreadRead(ctx, threadID, userID); err != nil {
		return fmt.Errorf("%w: mark thread read: %v", ErrPersistFailed, err)
	}
	return nil
}

// buildMessageView sniffs the sentinel and decodes shared payloads. A message
// that carries the sentinel but fails strict decoding is rendered as plain
// text rather than dropped; the sentinel can be typed by hand.
func (s *messageService) buildMessageView(message *models.ChatMessage) *MessageView {
	view := &MessageView{
		ChatMessage: message,
		Kind:        models.MessageKindText,
	}

	if !sharing.Detect(message.Content) {
		return view
	}

	payload, err := sharing.Decode(message.Content)
	if err != nil {
		if errors.Is(err, sharing.ErrMalformedPayload) {
			s.logger.Warn("Sentinel-prefixed message failed payload decoding",
				"message_id", message.ID, "error", err)
		}
		return view
	}

	view.Kind = models.MessageKindSharedForm
	view.SharedForm = payload
	return view
}
