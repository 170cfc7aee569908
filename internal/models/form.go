package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionText           QuestionType = "TEXT"
	QuestionNumber         QuestionType = "NUMBER"
	QuestionScale          QuestionType = "SCALE"
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionYesNo          QuestionType = "YES_NO"
)

// Answer tokens for YES_NO questions. Scoring matches AnswerYes literally,
// case included.
const (
	AnswerYes = "Evet"
	AnswerNo  = "Hayır"
)

// EvaluationForm is a named questionnaire template. Forms are seeded once and
// read-only to end users; the response flow never mutates them.
type EvaluationForm struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	Title       string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	MaxScore    int     `json:"max_score" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Questions []FormQuestion `json:"questions" gorm:"foreignKey:FormID;constraint:OnDelete:CASCADE" validate:"dive"`

	// Computed per requesting user (not stored)
	Completed bool `json:"completed" gorm:"-"`
}

// FormQuestion is one item in a form. Options applies to MULTIPLE_CHOICE,
// ScaleMin/ScaleMax to SCALE.
type FormQuestion struct {
	ID       string       `json:"id" gorm:"primaryKey;size:36"`
	FormID   string       `json:"form_id" gorm:"not null;size:36;index"`
	Order    int          `json:"order" gorm:"not null;column:question_order"`
	Text     string       `json:"text" gorm:"not null;type:text" validate:"required"`
	Type     QuestionType `json:"type" gorm:"not null;size:20" validate:"required,question_type,choice_options"`
	Required bool         `json:"required" gorm:"default:false"`

	Options  datatypes.JSON `json:"options,omitempty" gorm:"type:jsonb"`
	ScaleMin *int           `json:"scale_min,omitempty"`
	ScaleMax *int           `json:"scale_max,omitempty" validate:"scale_range"`
}

func (EvaluationForm) TableName() string {
	return "evaluation_forms"
}

func (FormQuestion) TableName() string {
	return "form_questions"
}

// OptionList decodes the JSONB option column. A missing or malformed column
// yields an empty list.
func (q *FormQuestion) OptionList() []string {
	if len(q.Options) == 0 {
		return nil
	}
	var options []string
	if err := json.Unmarshal(q.Options, &options); err != nil {
		return nil
	}
	return options
}

// SetOptions encodes the option list into the JSONB column.
func (q *FormQuestion) SetOptions(options []string) error {
	data, err := json.Marshal(options)
	if err != nil {
		return err
	}
	q.Options = data
	return nil
}

// MaxPossibleScore returns the highest total an answer set can reach against
// the given questions: scale max for SCALE, 1 for YES_NO, option count for
// MULTIPLE_CHOICE. TEXT and NUMBER never score.
func MaxPossibleScore(questions []FormQuestion) int {
	total := 0
	for _, q := range questions {
		switch q.Type {
		case QuestionScale:
			if q.ScaleMax != nil {
				total += *q.ScaleMax
			}
		case QuestionYesNo:
			total++
		case QuestionMultipleChoice:
			total += len(q.OptionList())
		}
	}
	return total
}
