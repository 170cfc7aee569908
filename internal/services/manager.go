package services

import (
	"context"
	"log/slog"

	"github.com/physiotrack/evalform-service/internal/cache"
	"github.com/physiotrack/evalform-service/internal/events"
	"github.com/physiotrack/evalform-service/internal/models"
	"github.com/physiotrack/evalform-service/internal/repositories"
	"github.com/physiotrack/evalform-service/internal/validator"
)

// ===== SERVICE INTERFACES =====

// CatalogService owns the evaluation form catalog: idempotent default
// seeding, per-user snapshots, and the restartable snapshot stream.
type CatalogService interface {
	EnsureDefaults(ctx context.Context) error
	List(ctx context.Context, userID string) ([]*models.EvaluationForm, error)
	GetForm(ctx context.Context, formID string) (*models.EvaluationForm, error)
	Watch(ctx context.Context, userID string) <-chan CatalogSnapshot
}

// ResponseService records, reads, and deletes scored form submissions.
type ResponseService interface {
	Submit(ctx context.Context, req *SubmitResponseRequest, userID string) (*models.FormResponse, error)
	GetByID(ctx context.Context, responseID, userID string) (*models.FormResponse, error)
	ListByUser(ctx context.Context, userID string, filters repositories.ResponseFilters) ([]*models.FormResponse, int64, error)
	Delete(ctx context.Context, responseID, userID string) error
}

// ShareService encodes a stored response into the sentinel payload and hands
// it to the messaging subsystem.
type ShareService interface {
	Share(ctx context.Context, req *ShareResponseRequest, userID string) (*models.ChatMessage, error)
}

// MessageService is the thin messaging surface: plain sends, thread reads
// with shared-payload tagging, thread listing.
type MessageService interface {
	Send(ctx context.Context, req *SendMessageRequest, senderID string) (*models.ChatMessage, error)
	GetThread(ctx context.Context, partnerID, userID string, filters repositories.MessageFilters) ([]*MessageView, int64, error)
	ListThreads(ctx context.Context, userID string) ([]*repositories.ThreadSummary, error)
	MarkThreadRead(ctx context.Context, partnerID, userID string) error
}

// ExportService renders a user's responses to downloadable spreadsheets.
type ExportService interface {
	ExportResponsesToExcel(ctx context.Context, userID string) ([]byte, error)
	ExportResponsesToCSV(ctx context.Context, userID string) ([]byte, error)
}

// ServiceManager aggregates all services for handler wiring
type ServiceManager interface {
	Catalog() CatalogService
	Response() ResponseService
	Share() ShareService
	Message() MessageService
	Export() ExportService
}

type serviceManager struct {
	catalog  CatalogService
	response ResponseService
	share    ShareService
	message  MessageService
	export   ExportService
}

func NewServiceManager(
	repo repositories.Repository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) ServiceManager {
	notifier := NewCatalogNotifier()
	catalog := NewCatalogService(repo, cacheService, publisher, logger, v, notifier)
	response := NewResponseService(repo, cacheService, publisher, logger, v, notifier)
	message := NewMessageService(repo, logger, v)
	share := NewShareService(repo, publisher, logger, v)
	export := NewExportService(repo, logger)

	return &serviceManager{
		catalog:  catalog,
		response: response,
		share:    share,
		message:  message,
		export:   export,
	}
}

func (m *serviceManager) Catalog() CatalogService   { return m.catalog }
func (m *serviceManager) Response() ResponseService { return m.response }
func (m *serviceManager) Share() ShareService       { return m.share }
func (m *serviceManager) Message() MessageService   { return m.message }
func (m *serviceManager) Export() ExportService     { return m.export }
