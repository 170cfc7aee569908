package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/physiotrack/evalform-service/internal/cache"
	"github.com/physiotrack/evalform-service/internal/events"
	"github.com/physiotrack/evalform-service/internal/models"
	"github.com/physiotrack/evalform-service/internal/repositories"
	"github.com/physiotrack/evalform-service/internal/validator"
)

const catalogCacheTTL = 5 * time.Minute

// CatalogSnapshot is one emission of the catalog stream: the full form list
// with per-user completion flags, replaced wholesale on every change.
type CatalogSnapshot struct {
	Forms       []*models.EvaluationForm `json:"forms"`
	GeneratedAt time.Time                `json:"generated_at"`
	Err         error                    `json:"-"`
}

type catalogService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	notifier  *CatalogNotifier
}

func NewCatalogService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
	notifier *CatalogNotifier,
) CatalogService {
	return &catalogService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		validator: v,
		notifier:  notifier,
	}
}

// EnsureDefaults seeds the baseline form set when the catalog is empty. The
// check-then-seed is idempotent: a non-empty catalog is left untouched.
func (s *catalogService) EnsureDefaults(ctx context.Context) error {
	count, err := s.repo.Form().Count(ctx)
	if err != nil {
		return fmt.Errorf("%w: count forms: %v", ErrFetchFailed, err)
	}
	if count > 0 {
		return nil
	}

	forms, err := buildDefaultForms()
	if err != nil {
		return fmt.Errorf("%w: build default forms: %v", ErrPersistFailed, err)
	}

	formIDs := make([]string, 0, len(forms))
	for _, form := range forms {
		if err := s.validator.Question().ValidateQuestions(form.Questions); err != nil {
			return fmt.Errorf("%w: seed form %q: %v", ErrValidationFailed, form.Title, err)
		}
		if err := s.repo.Form().Create(ctx, form); err != nil {
			return fmt.Errorf("%w: seed form %q: %v", ErrPersistFailed, form.Title, err)
		}
		formIDs = append(formIDs, form.ID)
	}

	s.logger.Info("Seeded default evaluation forms", "form_count", len(forms))

	event := events.NewFormEvent(events.EventCatalogSeeded, events.CatalogSeededEvent{
		FormIDs:   formIDs,
		FormCount: len(formIDs),
		SeededAt:  time.Now(),
	})
	if err := s.publisher.PublishFormEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish catalog seeded event", "error", err)
	}

	s.notifier.Nudge()
	return nil
}

// List returns the catalog with the per-user completion flag. The whole call
// succeeds or fails atomically; there is no partial catalog.
func (s *catalogService) List(ctx context.Context, userID string) ([]*models.EvaluationForm, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	cacheKey := catalogCacheKey(userID)
	var cached []*models.EvaluationForm
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Catalog cache read failed", "user_id", userID, "error", err)
	}

	forms, err := s.repo.Form().List(ctx, repositories.FormFilters{SortBy: "created_at", SortOrder: "asc"})
	if err != nil {
		return nil, fmt.Errorf("%w: list forms: %v", ErrFetchFailed, err)
	}

	completedIDs, err := s.repo.Response().CompletedFormIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load completed forms: %v", ErrFetchFailed, err)
	}

	completed := make(map[string]bool, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = true
	}
	for _, form := range forms {
		form.Completed = completed[form.ID]
	}

	if err := s.cache.Set(ctx, cacheKey, forms, catalogCacheTTL); err != nil {
		s.logger.Warn("Catalog cache write failed", "user_id", userID, "error", err)
	}

	return forms, nil
}

func (s *catalogService) GetForm(ctx context.Context, formID string) (*models.EvaluationForm, error) {
	form, err := s.repo.Form().GetByIDWithQuestions(ctx, formID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("%w: get form: %v", ErrFetchFailed, err)
	}
	return form, nil
}

// Watch emits a catalog snapshot immediately and again after every change
// nudge. The stream ends when ctx is cancelled; consumers restart it by
// calling Watch again. Emissions replace the previous snapshot wholesale, so
// a slow consumer only ever sees the freshest state.
func (s *catalogService) Watch(ctx context.Context, userID string) <-chan CatalogSnapshot {
	out := make(chan CatalogSnapshot, 1)
	signal := s.notifier.Subscribe()

	go func() {
		defer close(out)
		defer s.notifier.Unsubscribe(signal)

		emit := func() {
			forms, err := s.List(ctx, userID)
			snapshot := CatalogSnapshot{Forms: forms, GeneratedAt: time.Now(), Err: err}
			// Discard an undelivered snapshot before queueing the new one.
			select {
			case <-out:
			default:
			}
			select {
			case out <- snapshot:
			case <-ctx.Done():
			}
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
				emit()
			}
		}
	}()

	return out
}

func catalogCacheKey(userID string) string {
	return "catalog:user:" + userID
}
