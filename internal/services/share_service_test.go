package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/physiotrack/evalform-service/internal/events"
	"github.com/physiotrack/evalform-service/internal/models"
	"github.com/physiotrack/evalform-service/internal/sharing"
)

func storedResponse(t *testing.T, form *models.EvaluationForm, userID string) *models.FormResponse {
	t.Helper()

	response := &models.FormResponse{
		ID:            uuid.NewString(),
		FormID:        form.ID,
		UserID:        userID,
		Score:         6,
		MaxScore:      form.MaxScore,
		Notes:         "Shared for review",
		FormTitle:     form.Title,
		DateCompleted: time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, response.SetAnswers(map[string]string{
		form.Questions[0].ID: "5",
		form.Questions[1].ID: models.AnswerYes,
	}))
	return response
}

func TestShareService_Share(t *testing.T) {
	form := painForm(t)
	senderID := uuid.NewString()
	recipientID := uuid.NewString()
	response := storedResponse(t, form, senderID)

	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	service := NewShareService(repo, publisher, testLogger(), testValidator())

	repo.responseRepo.On("GetByID", mock.Anything, response.ID).Return(response, nil)
	repo.formRepo.On("GetByIDWithQuestions", mock.Anything, form.ID).Return(form, nil)
	repo.messageRepo.On("Create", mock.Anything, mock.MatchedBy(func(msg *models.ChatMessage) bool {
		return msg.SenderID == senderID && msg.ReceiverID == recipientID
	})).Return(nil)

	message, err := service.Share(context.Background(), &ShareResponseRequest{
		ResponseID:  response.ID,
		RecipientID: recipientID,
	}, senderID)

	require.NoError(t, err)
	require.NotNil(t, message)
	assert.Equal(t, models.ThreadID(senderID, recipientID), message.ThreadID)
	assert.False(t, message.IsRead)

	// The message body is the full sentinel payload with current prompts.
	require.True(t, sharing.Detect(message.Content))
	payload, err := sharing.Decode(message.Content)
	require.NoError(t, err)
	assert.Equal(t, response.ID, payload.ResponseID)
	assert.Equal(t, form.Title, payload.FormTitle)
	assert.Equal(t, form.Questions[0].Text, payload.Questions[form.Questions[0].ID])

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventResponseShared, published[0].Type)
}

func TestShareService_Share_FormGoneDegradesPrompts(t *testing.T) {
	form := painForm(t)
	senderID := uuid.NewString()
	response := storedResponse(t, form, senderID)

	repo := newMockRepository()
	service := NewShareService(repo, events.NewMockEventPublisher(testLogger()), testLogger(), testValidator())

	repo.responseRepo.On("GetByID", mock.Anything, response.ID).Return(response, nil)
	repo.formRepo.On("GetByIDWithQuestions", mock.Anything, form.ID).Return(nil, gorm.ErrRecordNotFound)
	repo.messageRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	message, err := service.Share(context.Background(), &ShareResponseRequest{
		ResponseID:  response.ID,
		RecipientID: uuid.NewString(),
	}, senderID)

	require.NoError(t, err)
	payload, err := sharing.Decode(message.Content)
	require.NoError(t, err)
	assert.Empty(t, payload.Questions)
	assert.NotEmpty(t, payload.Answers) // answers still travel with the share
}

func TestShareService_Share_FormFetchErrorAborts(t *testing.T) {
	form := painForm(t)
	senderID := uuid.NewString()
	response := storedResponse(t, form, senderID)

	repo := newMockRepository()
	service := NewShareService(repo, events.NewMockEventPublisher(testLogger()), testLogger(), testValidator())

	repo.responseRepo.On("GetByID", mock.Anything, response.ID).Return(response, nil)
	repo.formRepo.On("GetByIDWithQuestions", mock.Anything, form.ID).Return(nil, errors.New("connection reset"))

	_, err := service.Share(context.Background(), &ShareResponseRequest{
		ResponseID:  response.ID,
		RecipientID: uuid.NewString(),
	}, senderID)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShareFailed)
	repo.messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestShareService_Share_Rejections(t *testing.T) {
	senderID := uuid.NewString()
	responseID := uuid.NewString()

	tests := []struct {
		name      string
		setup     func(repo *MockRepository)
		request   *ShareResponseRequest
		userID    string
		wantErrIs error
	}{
		{
			name:      "unauthenticated",
			setup:     func(repo *MockRepository) {},
			request:   &ShareResponseRequest{ResponseID: responseID, RecipientID: uuid.NewString()},
			userID:    "",
			wantErrIs: ErrAuthRequired,
		},
		{
			name:      "share to self",
			setup:     func(repo *MockRepository) {},
			request:   &ShareResponseRequest{ResponseID: responseID, RecipientID: senderID},
			userID:    senderID,
			wantErrIs: ErrShareToSelf,
		},
		{
			name: "response not found",
			setup: func(repo *MockRepository) {
				repo.responseRepo.On("GetByID", mock.Anything, responseID).Return(nil, gorm.ErrRecordNotFound)
			},
			request:   &ShareResponseRequest{ResponseID: responseID, RecipientID: uuid.NewString()},
			userID:    senderID,
			wantErrIs: ErrShareFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepository()
			tt.setup(repo)
			service := NewShareService(repo, events.NewMockEventPublisher(testLogger()), testLogger(), testValidator())

			message, err := service.Share(context.Background(), tt.request, tt.userID)

			assert.Nil(t, message)
			assert.ErrorIs(t, err, tt.wantErrIs)
		})
	}
}

func TestShareService_Share_NotOwner(t *testing.T) {
	form := painForm(t)
	owner := uuid.NewString()
	response := storedResponse(t, form, owner)

	repo := newMockRepository()
	service := NewShareService(repo, events.NewMockEventPublisher(testLogger()), testLogger(), testValidator())
	repo.responseRepo.On("GetByID", mock.Anything, response.ID).Return(response, nil)

	_, err := service.Share(context.Background(), &ShareResponseRequest{
		ResponseID:  response.ID,
		RecipientID: uuid.NewString(),
	}, uuid.NewString())

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	repo.messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
