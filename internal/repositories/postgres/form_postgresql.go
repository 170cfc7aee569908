package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/physiotrack/evalform-service/internal/models"
	"github.com/physiotrack/evalform-service/internal/repositories"
)

type FormPostgreSQL struct {
	db *gorm.DB
}

func NewFormPostgreSQL(db *gorm.DB) repositories.FormRepository {
	return &FormPostgreSQL{db: db}
}

func (f *FormPostgreSQL) Create(ctx context.Context, form *models.EvaluationForm) error {
	return f.db.WithContext(ctx).Create(form).Error
}

func (f *FormPostgreSQL) GetByID(ctx context.Context, id string) (*models.EvaluationForm, error) {
	var form models.EvaluationForm
	if err := f.db.WithContext(ctx).First(&form, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

func (f *FormPostgreSQL) GetByIDWithQuestions(ctx context.Context, id string) (*models.EvaluationForm, error) {
	var form models.EvaluationForm
	if err := f.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order ASC")
		}).
		First(&form, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

func (f *FormPostgreSQL) List(ctx context.Context, filters repositories.FormFilters) ([]*models.EvaluationForm, error) {
	var forms []*models.EvaluationForm

	query := f.db.WithContext(ctx).Model(&models.EvaluationForm{})
	if filters.Title != nil {
		query = query.Where("title ILIKE ?", "%"+*filters.Title+"%")
	}

	query = applySort(query, filters.SortBy, filters.SortOrder, "created_at", map[string]string{
		"created_at": "created_at",
		"title":      "title",
	})
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order ASC")
		}).
		Find(&forms).Error; err != nil {
		return nil, err
	}

	return forms, nil
}

func (f *FormPostgreSQL) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := f.db.WithContext(ctx).Model(&models.EvaluationForm{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
