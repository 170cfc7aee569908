package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/physiotrack/evalform-service/internal/models"
	"github.com/physiotrack/evalform-service/internal/repositories"
	"github.com/physiotrack/evalform-service/internal/sharing"
)

func TestMessageService_Send(t *testing.T) {
	senderID := uuid.NewString()
	recipientID := uuid.NewString()

	repo := newMockRepository()
	service := NewMessageService(repo, testLogger(), testValidator())

	repo.messageRepo.On("Create", mock.Anything, mock.MatchedBy(func(msg *models.ChatMessage) bool {
		return msg.SenderID == senderID && msg.ReceiverID == recipientID && !msg.IsRead
	})).Return(nil)

	message, err := service.Send(context.Background(), &SendMessageRequest{
		RecipientID: recipientID,
		Content:     "How did this week's sessions go?",
	}, senderID)

	require.NoError(t, err)
	assert.Equal(t, models.ThreadID(senderID, recipientID), message.ThreadID)
	assert.NotEmpty(t, message.ID)
}

func TestMessageService_Send_Rejections(t *testing.T) {
	service := NewMessageService(newMockRepository(), testLogger(), testValidator())

	_, err := service.Send(context.Background(), &SendMessageRequest{
		RecipientID: uuid.NewString(),
		Content:     "hello",
	}, "")
	assert.ErrorIs(t, err, ErrAuthRequired)

	_, err = service.Send(context.Background(), &SendMessageRequest{
		RecipientID: uuid.NewString(),
		Content:     "",
	}, uuid.NewString())
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestMessageService_GetThread_TagsMessageKinds(t *testing.T) {
	form := painForm(t)
	userID := uuid.NewString()
	partnerID := uuid.NewString()
	threadID := models.ThreadID(userID, partnerID)

	response := storedResponse(t, form, userID)
	prompts := map[string]string{form.Questions[0].ID: form.Questions[0].Text}
	sharedContent, err := sharing.Encode(response, prompts)
	require.NoError(t, err)

	stored := []*models.ChatMessage{
		{ID: uuid.NewString(), SenderID: userID, ReceiverID: partnerID, ThreadID: threadID,
			Content: "Here are my results", Timestamp: time.Now().Add(-2 * time.Minute)},
		{ID: uuid.NewString(), SenderID: userID, ReceiverID: partnerID, ThreadID: threadID,
			Content: sharedContent, Timestamp: time.Now().Add(-time.Minute)},
		{ID: uuid.NewString(), SenderID: partnerID, ReceiverID: userID, ThreadID: threadID,
			Content: sharing.Sentinel + "\n{not json", Timestamp: time.Now()},
	}

	repo := newMockRepository()
	service := NewMessageService(repo, testLogger(), testValidator())
	repo.messageRepo.On("GetThread", mock.Anything, threadID, mock.Anything).Return(stored, int64(3), nil)

	views, total, err := service.GetThread(context.Background(), partnerID, userID, repositories.MessageFilters{})

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, views, 3)

	assert.Equal(t, models.MessageKindText, views[0].Kind)
	assert.Nil(t, views[0].SharedForm)

	assert.Equal(t, models.MessageKindSharedForm, views[1].Kind)
	require.NotNil(t, views[1].SharedForm)
	assert.Equal(t, response.ID, views[1].SharedForm.ResponseID)
	assert.Equal(t, form.Title, views[1].SharedForm.FormTitle)

	// A hand-typed sentinel with a broken payload renders as plain text.
	assert.Equal(t, models.MessageKindText, views[2].Kind)
	assert.Nil(t, views[2].SharedForm)
}

func TestMessageService_MarkThreadRead(t *testing.T) {
	userID := uuid.NewString()
	partnerID := uuid.NewString()

	repo := newMockRepository()
	service := NewMessageService(repo, testLogger(), testValidator())
	repo.messageRepo.On("MarkThreadRead", mock.Anything, models.ThreadID(userID, partnerID), userID).Return(nil)

	require.NoError(t, service.MarkThreadRead(context.Background(), partnerID, userID))
	repo.messageRepo.AssertExpectations(t)
}

func TestMessageService_ListThreads(t *testing.T) {
	userID := uuid.NewString()
	summaries := []*repositories.ThreadSummary{
		{ThreadID: "a_b", PartnerID: uuid.NewString(), LastMessageText: "see you Friday", UnreadCount: 2},
	}

	repo := newMockRepository()
	service := NewMessageService(repo, testLogger(), testValidator())
	repo.messageRepo.On("ListThreads", mock.Anything, userID).Return(summaries, nil)

	threads, err := service.ListThreads(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, 2, threads[0].UnreadCount)
}
