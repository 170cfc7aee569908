package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/physiotrack/evalform-service/internal/events"
	"github.com/physiotrack/evalform-service/internal/models"
	"github.com/physiotrack/evalform-service/internal/repositories"
	"github.com/physiotrack/evalform-service/internal/sharing"
	"github.com/physiotrack/evalform-service/internal/validator"
)

// ShareResponseRequest addresses one stored response to one recipient.
type ShareResponseRequest struct {
	ResponseID  string `json:"response_id" validate:"required,uuid"`
	RecipientID string `json:"recipient_id" validate:"required"`
}

type shareService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewShareService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) ShareService {
	return &shareService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// Share encodes a persisted response into the sentinel payload and sends it
// as an ordinary message. Question prompts are re-fetched from the form at
// share time so wording edits are reflected; a form that no longer exists
// degrades to an empty prompt map instead of failing the share.
func (s *shareService) Share(ctx context.Context, req *ShareResponseRequest, userID string) (*models.ChatMessage, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if req.RecipientID == userID {
		return nil, fmt.Errorf("%w: %w", ErrShareFailed, ErrShareToSelf)
	}

	s.logger.Info("Sharing form response",
		"response_id", req.ResponseID,
		"sender_id", userID,
		"recipient_id", req.RecipientID)

	response, err := s.repo.Response().GetByID(ctx, req.ResponseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %v", ErrShareFailed, ErrResponseNotFound)
		}
		return nil, fmt.Errorf("%w: get response: %v", ErrShareFailed, err)
	}

	if response.UserID != userID {
		return nil, NewPermissionError(userID, req.ResponseID, "response", "share", "not owned by user")
	}

	prompts, err := s.loadPrompts(ctx, response.FormID)
	if err != nil {
		return nil, err
	}

	content, err := sharing.Encode(response, prompts)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %v", ErrShareFailed, err)
	}

	message := &models.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   userID,
		ReceiverID: req.RecipientID,
		ThreadID:   models.ThreadID(userID, req.RecipientID),
		Content:    content,
		IsRead:     false,
		Timestamp:  time.Now(),
	}

	if err := s.repo.Message().Create(ctx, message); err != nil {
		return nil, fmt.Errorf("%w: send message: %v", ErrShareFailed, err)
	}

	s.logger.Info("Form response shared",
		"response_id", response.ID,
		"message_id", message.ID,
		"recipient_id", req.RecipientID)

	event := events.NewFormEvent(events.EventResponseShared, events.ResponseSharedEvent{
		ResponseID:  response.ID,
		FormID:      response.FormID,
		SenderID:    userID,
		RecipientID: req.RecipientID,
		MessageID:   message.ID,
		SharedAt:    message.Timestamp,
	})
	if err := s.publisher.PublishFormEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish response shared event", "response_id", response.ID, "error", err)
	}

	return message, nil
}

// loadPrompts rebuilds the question-id to prompt-text map from the current
// form. "Form missing" yields an empty map (degraded display, not an error);
// any other fetch failure aborts the share.
func (s *shareService) loadPrompts(ctx context.Context, formID string) (map[string]string, error) {
	form, err := s.repo.Form().GetByIDWithQuestions(ctx, formID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.logger.Warn("Sharing response whose form no longer exists", "form_id", formID)
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: get form: %v", ErrShareFailed, err)
	}

	prompts := make(map[string]string, len(form.Questions))
	for _, question := range form.Questions {
		prompts[question.ID] = question.Text
	}
	return prompts, nil
}
