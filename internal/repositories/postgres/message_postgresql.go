package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/physiotrack/evalform-service/internal/models"
	"github.com/physiotrack/evalform-service/internal/repositories"
)

type MessagePostgreSQL struct {
	db *gorm.DB
}

func NewMessagePostgreSQL(db *gorm.DB) repositories.MessageRepository {
	return &MessagePostgreSQL{db: db}
}

func (m *MessagePostgreSQL) Create(ctx context.Context, message *models.ChatMessage) error {
	return m.db.WithContext(ctx).Create(message).Error
}

func (m *MessagePostgreSQL) GetByID(ctx context.Context, id string) (*models.ChatMessage, error) {
	var message models.ChatMessage
	if err := m.db.WithContext(ctx).First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (m *MessagePostgreSQL) GetThread(ctx context.Context, threadID string, filters repositories.MessageFilters) ([]*models.ChatMessage, int64, error) {
	var messages []*models.ChatMessage
	var total int64

	query := m.db.WithContext(ctx).Model(&models.ChatMessage{}).Where("thread_id = ?", threadID)
	if filters.Before != nil {
		query = query.Where("timestamp < ?", *filters.Before)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("timestamp ASC")
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&messages).Error; err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

func (m *MessagePostgreSQL) ListThreads(ctx context.Context, userID string) ([]*repositories.ThreadSummary, error) {
	var messages []*models.ChatMessage

	// Newest message per thread plus unread counts, resolved in memory; a
	// user's thread list stays small in practice.
	if err := m.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("timestamp DESC").
		Find(&messages).Error; err != nil {
		return nil, err
	}

	byThread := make(map[string]*repositories.ThreadSummary)
	var order []string
	for _, msg := range messages {
		summary, seen := byThread[msg.ThreadID]
		if !seen {
			partner := msg.SenderID
			if partner == userID {
				partner = msg.ReceiverID
			}
			summary = &repositories.ThreadSummary{
				ThreadID:        msg.ThreadID,
				PartnerID:       partner,
				LastMessageText: msg.Content,
				LastMessageAt:   msg.Timestamp,
			}
			byThread[msg.ThreadID] = summary
			order = append(order, msg.ThreadID)
		}
		if !msg.IsRead && msg.ReceiverID == userID {
			summary.UnreadCount++
		}
	}

	summaries := make([]*repositories.ThreadSummary, 0, len(order))
	for _, threadID := range order {
		summaries = append(summaries, byThread[threadID])
	}
	return summaries, nil
}

func (m *MessagePostgreSQL) MarkThreadRead(ctx context.Context, threadID, readerID string) error {
	return m.db.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("thread_id = ? AND receiver_id = ? AND is_read = ?", threadID, readerID, false).
		Update("is_read", true).Error
}
