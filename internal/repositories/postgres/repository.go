package postgres

import (
	"gorm.io/gorm"

	"github.com/physiotrack/evalform-service/internal/repositories"
)

type gormRepository struct {
	db       *gorm.DB
	form     repositories.FormRepository
	response repositories.ResponseRepository
	message  repositories.MessageRepository
	user     repositories.UserRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:       db,
		form:     NewFormPostgreSQL(db),
		response: NewResponsePostgreSQL(db),
		message:  NewMessagePostgreSQL(db),
		user:     NewUserPostgreSQL(db),
	}
}

func (r *gormRepository) Form() repositories.FormRepository         { return r.form }
func (r *gormRepository) Response() repositories.ResponseRepository { return r.response }
func (r *gormRepository) Message() repositories.MessageRepository   { return r.message }
func (r *gormRepository) User() repositories.UserRepository         { return r.user }

// applySort appends an ORDER BY clause from filter fields, defaulting to the
// given column descending. Only known columns are accepted.
func applySort(query *gorm.DB, sortBy, sortOrder, defaultColumn string, allowed map[string]string) *gorm.DB {
	column, ok := allowed[sortBy]
	if !ok {
		column = defaultColumn
	}
	order := "DESC"
	if sortOrder == "asc" {
		order = "ASC"
	}
	return query.Order(column + " " + order)
}

func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
