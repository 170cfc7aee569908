package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/physiotrack/evalform-service/internal/cache"
	"github.com/physiotrack/evalform-service/internal/models"
	"github.com/physiotrack/evalform-service/internal/repositories"
	"github.com/physiotrack/evalform-service/internal/validator"
)

// MockFormRepository is a mock implementation of FormRepository
type MockFormRepository struct {
	mock.Mock
}

func (m *MockFormRepository) Create(ctx context.Context, form *models.EvaluationForm) error {
	args := m.Called(ctx, form)
	return args.Error(0)
}

func (m *MockFormRepository) GetByID(ctx context.Context, id string) (*models.EvaluationForm, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EvaluationForm), args.Error(1)
}

func (m *MockFormRepository) GetByIDWithQuestions(ctx context.Context, id string) (*models.EvaluationForm, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EvaluationForm), args.Error(1)
}

func (m *MockFormRepository) List(ctx context.Context, filters repositories.FormFilters) ([]*models.EvaluationForm, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.EvaluationForm), args.Error(1)
}

func (m *MockFormRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockResponseRepository is a mock implementation of ResponseRepository
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Create(ctx context.Context, response *models.FormResponse) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) GetByID(ctx context.Context, id string) (*models.FormResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FormResponse), args.Error(1)
}

func (m *MockResponseRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockResponseRepository) List(ctx context.Context, filters repositories.ResponseFilters) ([]*models.FormResponse, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.FormResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockResponseRepository) GetByUser(ctx context.Context, userID string, filters repositories.ResponseFilters) ([]*models.FormResponse, int64, error) {
	args := m.Called(ctx, userID, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.FormResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockResponseRepository) CompletedFormIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockMessageRepository is a mock implementation of MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockMessageRepository) GetByID(ctx context.Context, id string) (*models.ChatMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatMessage), args.Error(1)
}

func (m *MockMessageRepository) GetThread(ctx context.Context, threadID string, filters repositories.MessageFilters) ([]*models.ChatMessage, int64, error) {
	args := m.Called(ctx, threadID, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.ChatMessage), args.Get(1).(int64), args.Error(2)
}

func (m *MockMessageRepository) ListThreads(ctx context.Context, userID string) ([]*repositories.ThreadSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repositories.ThreadSummary), args.Error(1)
}

func (m *MockMessageRepository) MarkThreadRead(ctx context.Context, threadID, readerID string) error {
	args := m.Called(ctx, threadID, readerID)
	return args.Error(0)
}

// MockRepository aggregates the per-collection mocks behind the Repository
// interface. Collections a test does not touch stay nil.
type MockRepository struct {
	formRepo     *MockFormRepository
	responseRepo *MockResponseRepository
	messageRepo  *MockMessageRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		formRepo:     &MockFormRepository{},
		responseRepo: &MockResponseRepository{},
		messageRepo:  &MockMessageRepository{},
	}
}

func (m *MockRepository) Form() repositories.FormRepository         { return m.formRepo }
func (m *MockRepository) Response() repositories.ResponseRepository { return m.responseRepo }
func (m *MockRepository) Message() repositories.MessageRepository   { return m.messageRepo }
func (m *MockRepository) User() repositories.UserRepository         { return nil }

// memoryCache is an in-process CacheService so service tests do not need a
// Redis instance.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	data, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testValidator() *validator.Validator {
	return validator.New()
}
