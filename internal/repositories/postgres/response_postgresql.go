package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/physiotrack/evalform-service/internal/models"
	"github.com/physiotrack/evalform-service/internal/repositories"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{db: db}
}

func (r *ResponsePostgreSQL) Create(ctx context.Context, response *models.FormResponse) error {
	return r.db.WithContext(ctx).Create(response).Error
}

func (r *ResponsePostgreSQL) GetByID(ctx context.Context, id string) (*models.FormResponse, error) {
	var response models.FormResponse
	if err := r.db.WithContext(ctx).First(&response, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *ResponsePostgreSQL) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.FormResponse{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ResponsePostgreSQL) List(ctx context.Context, filters repositories.ResponseFilters) ([]*models.FormResponse, int64, error) {
	var responses []*models.FormResponse
	var total int64

	// apply filter first
	query := r.db.WithContext(ctx).Model(&models.FormResponse{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = applySort(query, filters.SortBy, filters.SortOrder, "date_completed", map[string]string{
		"date_completed": "date_completed",
		"score":          "score",
	})
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&responses).Error; err != nil {
		return nil, 0, err
	}

	return responses, total, nil
}

func (r *ResponsePostgreSQL) GetByUser(ctx context.Context, userID string, filters repositories.ResponseFilters) ([]*models.FormResponse, int64, error) {
	filters.UserID = &userID
	return r.List(ctx, filters)
}

func (r *ResponsePostgreSQL) CompletedFormIDs(ctx context.Context, userID string) ([]string, error) {
	var formIDs []string
	if err := r.db.WithContext(ctx).
		Model(&models.FormResponse{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("form_id", &formIDs).Error; err != nil {
		return nil, err
	}
	return formIDs, nil
}

func (r *ResponsePostgreSQL) applyFilters(query *gorm.DB, filters repositories.ResponseFilters) *gorm.DB {
	if filters.FormID != nil {
		query = query.Where("form_id = ?", *filters.FormID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.DateFrom != nil {
		query = query.Where("date_completed >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("date_completed <= ?", *filters.DateTo)
	}
	return query
}
