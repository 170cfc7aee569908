package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("answers", "missing required answer", "q1")

	assert.Equal(t, "answers", err.Field)
	assert.Equal(t, "missing required answer", err.Message)
	assert.Equal(t, "q1", err.Value)
	assert.Equal(t, "validation error on field 'answers': missing required answer", err.Error())
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("q1", "is required", nil))
	assert.Equal(t, "validation failed: q1 is required", errs.Error())

	errs = append(errs, *NewValidationError("q2", "is required", nil))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("type", "must be a valid question type", "question_type", "ESSAY")

	assert.Equal(t, "question_type", err.Rule)
	assert.Equal(t, "type", err.Field)
}
