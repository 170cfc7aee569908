package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/physiotrack/evalform-service/internal/cache"
	"github.com/physiotrack/evalform-service/internal/events"
	"github.com/physiotrack/evalform-service/internal/models"
	"github.com/physiotrack/evalform-service/internal/repositories"
	"github.com/physiotrack/evalform-service/internal/validator"
)

// SubmitResponseRequest carries an in-progress answer mapping for one form.
type SubmitResponseRequest struct {
	FormID  string            `json:"form_id" validate:"required,uuid"`
	Answers map[string]string `json:"answers" validate:"required"`
	Notes   string            `json:"notes" validate:"omitempty,max=2000"`
}

type responseService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	notifier  *CatalogNotifier
}

func NewResponseService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
	notifier *CatalogNotifier,
) ResponseService {
	return &responseService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		validator: v,
		notifier:  notifier,
	}
}

// Submit validates the answer mapping against the form, scores it, and
// persists a new response. The required-question gate runs before any write;
// a rejected submission leaves no side effects.
func (s *responseService) Submit(ctx context.Context, req *SubmitResponseRequest, userID string) (*models.FormResponse, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	s.logger.Info("Submitting form response",
		"form_id", req.FormID,
		"user_id", userID,
		"answers_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	form, err := s.repo.Form().GetByIDWithQuestions(ctx, req.FormID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("%w: get form: %v", ErrFetchFailed, err)
	}

	if missing := missingRequiredAnswers(form.Questions, req.Answers); len(missing) > 0 {
		return nil, validationErrorForMissing(missing)
	}

	response := &models.FormResponse{
		ID:            uuid.NewString(),
		FormID:        form.ID,
		UserID:        userID,
		Score:         ScoreAnswers(form.Questions, req.Answers),
		MaxScore:      form.MaxScore,
		Notes:         req.Notes,
		FormTitle:     form.Title,
		DateCompleted: time.Now(),
	}
	if err := response.SetAnswers(req.Answers); err != nil {
		return nil, fmt.Errorf("%w: encode answers: %v", ErrPersistFailed, err)
	}

	if err := s.repo.Response().Create(ctx, response); err != nil {
		return nil, fmt.Errorf("%w: create response: %v", ErrPersistFailed, err)
	}

	s.logger.Info("Form response submitted",
		"response_id", response.ID,
		"form_id", form.ID,
		"user_id", userID,
		"score", response.Score,
		"max_score", response.MaxScore)

	event := events.NewFormEvent(events.EventResponseSubmitted, events.ResponseSubmittedEvent{
		ResponseID: response.ID,
		FormID:     form.ID,
		FormTitle:  form.Title,
		UserID:     userID,
		Score:      response.Score,
		MaxScore:   response.MaxScore,
		Completed:  response.DateCompleted,
	})
	if err := s.publisher.PublishFormEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish response submitted event", "response_id", response.ID, "error", err)
	}

	s.invalidateCatalog(ctx, userID)
	return response, nil
}

func (s *responseService) GetByID(ctx context.Context, responseID, userID string) (*models.FormResponse, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	response, err := s.repo.Response().GetByID(ctx, responseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("%w: get response: %v", ErrFetchFailed, err)
	}

	if response.UserID != userID {
		return nil, NewPermissionError(userID, responseID, "response", "read", "not owned by user")
	}

	return response, nil
}

func (s *responseService) ListByUser(ctx context.Context, userID string, filters repositories.ResponseFilters) ([]*models.FormResponse, int64, error) {
	if userID == "" {
		return nil, 0, ErrAuthRequired
	}

	responses, total, err := s.repo.Response().GetByUser(ctx, userID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list responses: %v", ErrFetchFailed, err)
	}
	return responses, total, nil
}

// Delete removes a response owned by the requesting user. Messages that
// already shared this response carry immutable snapshots and are untouched.
func (s *responseService) Delete(ctx context.Context, responseID, userID string) error {
	if userID == "" {
		return ErrAuthRequired
	}

	response, err := s.repo.Response().GetByID(ctx, responseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("%w: %v", ErrDeleteFailed, ErrResponseNotFound)
		}
		return fmt.Errorf("%w: get response: %v", ErrDeleteFailed, err)
	}

	if response.UserID != userID {
		return NewPermissionError(userID, responseID, "response", "delete", "not owned by user")
	}

	if err := s.repo.Response().Delete(ctx, responseID); err != nil {
		if repositories.IsNotFoundError(err) {
			return fmt.Errorf("%w: %v", ErrDeleteFailed, ErrResponseNotFound)
		}
		return fmt.Errorf("%w: delete response: %v", ErrDeleteFailed, err)
	}

	s.logger.Info("Form response deleted", "response_id", responseID, "user_id", userID)

	event := events.NewFormEvent(events.EventResponseDeleted, events.ResponseDeletedEvent{
		ResponseID: responseID,
		FormID:     response.FormID,
		UserID:     userID,
		DeletedAt:  time.Now(),
	})
	if err := s.publisher.PublishFormEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish response deleted event", "response_id", responseID, "error", err)
	}

	s.invalidateCatalog(ctx, userID)
	return nil
}

func (s *responseService) invalidateCatalog(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, catalogCacheKey(userID)); err != nil {
		s.logger.Warn("Catalog cache invalidation failed", "user_id", userID, "error", err)
	}
	s.notifier.Nudge()
}

// missingRequiredAnswers returns, in form order, the ids of required
// questions whose answers are blank or absent.
func missingRequiredAnswers(questions []models.FormQuestion, answers map[string]string) []string {
	var missing []string
	for _, question := range questions {
		if !question.Required {
			continue
		}
		if strings.TrimSpace(answers[question.ID]) == "" {
			missing = append(missing, question.ID)
		}
	}
	return missing
}

func validationErrorForMissing(missing []string) error {
	errs := make(ValidationErrors, 0, len(missing))
	for _, questionID := range missing {
		errs = append(errs, *NewValidationError(questionID, "required question is unanswered", nil))
	}
	return fmt.Errorf("%w: %w", ErrValidationFailed, errs)
}
