package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/physiotrack/evalform-service/internal/events"
	"github.com/physiotrack/evalform-service/internal/models"
)

func painForm(t *testing.T) *models.EvaluationForm {
	t.Helper()

	pain := models.FormQuestion{
		ID:       uuid.NewString(),
		Text:     "Rate your pain from 1 to 10",
		Type:     models.QuestionScale,
		Required: true,
		ScaleMin: intPtr(1),
		ScaleMax: intPtr(10),
		Order:    1,
	}
	sleep := models.FormQuestion{
		ID:       uuid.NewString(),
		Text:     "Did the pain wake you up at night?",
		Type:     models.QuestionYesNo,
		Required: true,
		Order:    2,
	}
	require.NoError(t, sleep.SetOptions([]string{models.AnswerYes, models.AnswerNo}))
	notes := models.FormQuestion{
		ID:       uuid.NewString(),
		Text:     "Anything else to add?",
		Type:     models.QuestionText,
		Required: false,
		Order:    3,
	}

	form := &models.EvaluationForm{
		ID:          uuid.NewString(),
		Title:       "Pain Assessment",
		Description: strPtr("Weekly pain check-in"),
		Questions:   []models.FormQuestion{pain, sleep, notes},
	}
	form.MaxScore = models.MaxPossibleScore(form.Questions)
	return form
}

func newResponseServiceForTest(repo *MockRepository, cacheService *memoryCache, publisher *events.MockEventPublisher) ResponseService {
	return NewResponseService(repo, cacheService, publisher, testLogger(), testValidator(), NewCatalogNotifier())
}

func TestResponseService_Submit(t *testing.T) {
	form := painForm(t)
	userID := uuid.NewString()

	repo := newMockRepository()
	cacheService := newMemoryCache()
	publisher := events.NewMockEventPublisher(testLogger())
	service := newResponseServiceForTest(repo, cacheService, publisher)

	repo.formRepo.On("GetByIDWithQuestions", mock.Anything, form.ID).Return(form, nil)
	repo.responseRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.FormResponse) bool {
		return r.FormID == form.ID && r.UserID == userID && r.FormTitle == form.Title
	})).Return(nil)

	answers := map[string]string{
		form.Questions[0].ID: "7",
		form.Questions[1].ID: models.AnswerYes,
	}
	response, err := service.Submit(context.Background(), &SubmitResponseRequest{
		FormID:  form.ID,
		Answers: answers,
		Notes:   "Morning stiffness is improving",
	}, userID)

	require.NoError(t, err)
	require.NotNil(t, response)
	assert.NotEmpty(t, response.ID)
	assert.Equal(t, 8, response.Score) // scale 7 + yes 1
	assert.Equal(t, form.MaxScore, response.MaxScore)
	assert.Equal(t, answers, response.AnswerMap())
	assert.WithinDuration(t, time.Now(), response.DateCompleted, 5*time.Second)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventResponseSubmitted, published[0].Type)

	repo.responseRepo.AssertExpectations(t)
}

func TestResponseService_Submit_MissingRequiredAnswer(t *testing.T) {
	form := painForm(t)
	userID := uuid.NewString()

	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	service := newResponseServiceForTest(repo, newMemoryCache(), publisher)

	repo.formRepo.On("GetByIDWithQuestions", mock.Anything, form.ID).Return(form, nil)

	tests := []struct {
		name    string
		answers map[string]string
	}{
		{name: "absent answer", answers: map[string]string{form.Questions[0].ID: "5"}},
		{name: "blank answer", answers: map[string]string{
			form.Questions[0].ID: "5",
			form.Questions[1].ID: "   ",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response, err := service.Submit(context.Background(), &SubmitResponseRequest{
				FormID:  form.ID,
				Answers: tt.answers,
			}, userID)

			require.Error(t, err)
			assert.Nil(t, response)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}

	// The gate fires before any write: no response row, no event.
	repo.responseRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestResponseService_Submit_OptionalAnswersSkippable(t *testing.T) {
	form := painForm(t)
	userID := uuid.NewString()

	repo := newMockRepository()
	service := newResponseServiceForTest(repo, newMemoryCache(), events.NewMockEventPublisher(testLogger()))

	repo.formRepo.On("GetByIDWithQuestions", mock.Anything, form.ID).Return(form, nil)
	repo.responseRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	// Both required questions answered, the optional text question skipped.
	response, err := service.Submit(context.Background(), &SubmitResponseRequest{
		FormID: form.ID,
		Answers: map[string]string{
			form.Questions[0].ID: "3",
			form.Questions[1].ID: models.AnswerNo,
		},
	}, userID)

	require.NoError(t, err)
	assert.Equal(t, 3, response.Score) // "Hayır" contributes nothing
}

func TestResponseService_Submit_FormNotFound(t *testing.T) {
	repo := newMockRepository()
	service := newResponseServiceForTest(repo, newMemoryCache(), events.NewMockEventPublisher(testLogger()))

	formID := uuid.NewString()
	repo.formRepo.On("GetByIDWithQuestions", mock.Anything, formID).Return(nil, gorm.ErrRecordNotFound)

	_, err := service.Submit(context.Background(), &SubmitResponseRequest{
		FormID:  formID,
		Answers: map[string]string{"q": "a"},
	}, uuid.NewString())

	assert.ErrorIs(t, err, ErrFormNotFound)
}

func TestResponseService_Submit_RequiresAuth(t *testing.T) {
	service := newResponseServiceForTest(newMockRepository(), newMemoryCache(), events.NewMockEventPublisher(testLogger()))

	_, err := service.Submit(context.Background(), &SubmitResponseRequest{
		FormID:  uuid.NewString(),
		Answers: map[string]string{"q": "a"},
	}, "")

	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestResponseService_Submit_InvalidatesCatalogCache(t *testing.T) {
	form := painForm(t)
	userID := uuid.NewString()

	repo := newMockRepository()
	cacheService := newMemoryCache()
	service := newResponseServiceForTest(repo, cacheService, events.NewMockEventPublisher(testLogger()))

	require.NoError(t, cacheService.Set(context.Background(), catalogCacheKey(userID), []string{"stale"}, time.Minute))

	repo.formRepo.On("GetByIDWithQuestions", mock.Anything, form.ID).Return(form, nil)
	repo.responseRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := service.Submit(context.Background(), &SubmitResponseRequest{
		FormID: form.ID,
		Answers: map[string]string{
			form.Questions[0].ID: "2",
			form.Questions[1].ID: models.AnswerNo,
		},
	}, userID)

	require.NoError(t, err)
	assert.False(t, cacheService.has(catalogCacheKey(userID)))
}

func TestResponseService_Delete(t *testing.T) {
	userID := uuid.NewString()
	responseID := uuid.NewString()
	stored := &models.FormResponse{ID: responseID, FormID: uuid.NewString(), UserID: userID}

	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	service := newResponseServiceForTest(repo, newMemoryCache(), publisher)

	repo.responseRepo.On("GetByID", mock.Anything, responseID).Return(stored, nil)
	repo.responseRepo.On("Delete", mock.Anything, responseID).Return(nil)

	err := service.Delete(context.Background(), responseID, userID)

	require.NoError(t, err)
	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventResponseDeleted, published[0].Type)
}

func TestResponseService_Delete_NotOwner(t *testing.T) {
	responseID := uuid.NewString()
	stored := &models.FormResponse{ID: responseID, UserID: uuid.NewString()}

	repo := newMockRepository()
	service := newResponseServiceForTest(repo, newMemoryCache(), events.NewMockEventPublisher(testLogger()))

	repo.responseRepo.On("GetByID", mock.Anything, responseID).Return(stored, nil)

	err := service.Delete(context.Background(), responseID, uuid.NewString())

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	repo.responseRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestResponseService_Delete_AlreadyGone(t *testing.T) {
	responseID := uuid.NewString()

	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	service := newResponseServiceForTest(repo, newMemoryCache(), publisher)

	repo.responseRepo.On("GetByID", mock.Anything, responseID).Return(nil, gorm.ErrRecordNotFound)

	err := service.Delete(context.Background(), responseID, uuid.NewString())

	// A second delete of the same response reports failure without touching
	// anything else; shared snapshots in message history stay intact.
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeleteFailed)
	assert.Empty(t, publisher.GetPublishedEvents())
}

func TestResponseService_GetByID_OwnershipEnforced(t *testing.T) {
	responseID := uuid.NewString()
	owner := uuid.NewString()
	stored := &models.FormResponse{ID: responseID, UserID: owner}

	repo := newMockRepository()
	service := newResponseServiceForTest(repo, newMemoryCache(), events.NewMockEventPublisher(testLogger()))
	repo.responseRepo.On("GetByID", mock.Anything, responseID).Return(stored, nil)

	got, err := service.GetByID(context.Background(), responseID, owner)
	require.NoError(t, err)
	assert.Equal(t, responseID, got.ID)

	_, err = service.GetByID(context.Background(), responseID, uuid.NewString())
	assert.True(t, IsUnauthorized(err))
}
