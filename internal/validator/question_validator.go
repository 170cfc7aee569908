package validator

import (
	"fmt"

	"github.com/physiotrack/evalform-service/internal/models"
)

// QuestionValidator enforces the per-type question invariants: SCALE
// questions need min < max, MULTIPLE_CHOICE questions need a non-empty
// option list.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.FormQuestion) error {
	if question.Text == "" {
		return NewQuestionError(question.ID, "question text is required")
	}

	switch question.Type {
	case models.QuestionScale:
		if question.ScaleMin == nil || question.ScaleMax == nil {
			return NewQuestionError(question.ID, "scale questions require min and max bounds")
		}
		if *question.ScaleMin >= *question.ScaleMax {
			return NewQuestionError(question.ID,
				fmt.Sprintf("scale min (%d) must be lower than scale max (%d)", *question.ScaleMin, *question.ScaleMax))
		}

	case models.QuestionMultipleChoice:
		if len(question.OptionList()) == 0 {
			return NewQuestionError(question.ID, "multiple choice questions require at least one option")
		}

	case models.QuestionText, models.QuestionNumber, models.QuestionYesNo:
		// No extra structure beyond the prompt.

	default:
		return NewQuestionError(question.ID, fmt.Sprintf("unsupported question type: %s", question.Type))
	}

	return nil
}

// ValidateQuestions validates an ordered question set
func (v *QuestionValidator) ValidateQuestions(questions []models.FormQuestion) error {
	seen := make(map[string]bool, len(questions))
	for i := range questions {
		question := &questions[i]
		if seen[question.ID] {
			return NewQuestionError(question.ID, "duplicate question id within form")
		}
		seen[question.ID] = true

		if err := v.ValidateQuestion(question); err != nil {
			return err
		}
	}
	return nil
}

// QuestionError reports a structural problem with one question.
type QuestionError struct {
	QuestionID string `json:"question_id"`
	Message    string `json:"message"`
}

func (e *QuestionError) Error() string {
	return fmt.Sprintf("invalid question '%s': %s", e.QuestionID, e.Message)
}

func NewQuestionError(questionID, message string) *QuestionError {
	return &QuestionError{QuestionID: questionID, Message: message}
}
