package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// FormResponse is one user's scored submission against one form. Answers are
// stored as strings keyed by question id regardless of question type; numbers
// and scale values are stringified. Score and MaxScore are frozen at creation
// and never recomputed.
type FormResponse struct {
	ID     string `json:"id" gorm:"primaryKey;size:36"`
	FormID string `json:"form_id" gorm:"not null;size:36;index"`
	UserID string `json:"user_id" gorm:"not null;size:255;index"`

	Answers  datatypes.JSON `json:"answers" gorm:"type:jsonb;not null"`
	Score    int            `json:"score" gorm:"not null"`
	MaxScore int            `json:"max_score" gorm:"not null"`
	Notes    string         `json:"notes" gorm:"type:text"`

	// Denormalized for display without a join.
	FormTitle string `json:"form_title" gorm:"not null;size:200"`

	DateCompleted time.Time `json:"date_completed" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
}

func (FormResponse) TableName() string {
	return "form_responses"
}

// AnswerMap decodes the stored answer mapping. A missing column yields an
// empty map rather than nil so callers can range and index safely.
func (r *FormResponse) AnswerMap() map[string]string {
	answers := make(map[string]string)
	if len(r.Answers) == 0 {
		return answers
	}
	if err := json.Unmarshal(r.Answers, &answers); err != nil {
		return make(map[string]string)
	}
	return answers
}

// SetAnswers encodes the answer mapping into the JSONB column.
func (r *FormResponse) SetAnswers(answers map[string]string) error {
	data, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	r.Answers = data
	return nil
}
