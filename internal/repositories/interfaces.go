package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/physiotrack/evalform-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type FormFilters struct {
	Title     *string `json:"title"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
	SortBy    string  `json:"sort_by"`    // "created_at", "title"
	SortOrder string  `json:"sort_order"` // "asc", "desc"
}

type ResponseFilters struct {
	FormID    *string    `json:"form_id"`
	UserID    *string    `json:"user_id"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "date_completed", "score"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

type MessageFilters struct {
	Before *time.Time `json:"before"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// ===== SHARED HELPER STRUCTS =====

// ThreadSummary is one row of a user's conversation list.
type ThreadSummary struct {
	ThreadID        string    `json:"thread_id"`
	PartnerID       string    `json:"partner_id"`
	LastMessageText string    `json:"last_message_text"`
	LastMessageAt   time.Time `json:"last_message_at"`
	UnreadCount     int       `json:"unread_count"`
}

// ===== REPOSITORY INTERFACES =====

// FormRepository covers the read-mostly evaluation form catalog. Forms are
// created only by seeding; the response flow never mutates them.
type FormRepository interface {
	Create(ctx context.Context, form *models.EvaluationForm) error
	GetByID(ctx context.Context, id string) (*models.EvaluationForm, error)
	GetByIDWithQuestions(ctx context.Context, id string) (*models.EvaluationForm, error)
	List(ctx context.Context, filters FormFilters) ([]*models.EvaluationForm, error)
	Count(ctx context.Context) (int64, error)
}

type ResponseRepository interface {
	Create(ctx context.Context, response *models.FormResponse) error
	GetByID(ctx context.Context, id string) (*models.FormResponse, error)
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filters ResponseFilters) ([]*models.FormResponse, int64, error)
	GetByUser(ctx context.Context, userID string, filters ResponseFilters) ([]*models.FormResponse, int64, error)

	// CompletedFormIDs returns the distinct form ids the user has responded
	// to, for the per-user completion join on the catalog.
	CompletedFormIDs(ctx context.Context, userID string) ([]string, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	GetByID(ctx context.Context, id string) (*models.ChatMessage, error)
	GetThread(ctx context.Context, threadID string, filters MessageFilters) ([]*models.ChatMessage, int64, error)
	ListThreads(ctx context.Context, userID string) ([]*ThreadSummary, error)
	MarkThreadRead(ctx context.Context, threadID, readerID string) error
}

// UserRepository is minimal: this service does not own user data, it only
// resolves identities issued by the auth provider.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	Upsert(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, loginTime time.Time) error
}

// Repository aggregates the per-collection repositories.
type Repository interface {
	Form() FormRepository
	Response() ResponseRepository
	Message() MessageRepository
	User() UserRepository
}

// IsNotFoundError reports whether a repository error means "no such record".
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
