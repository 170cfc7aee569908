package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/physiotrack/evalform-service/internal/models"
)

// Validator combines struct-tag validation with question-level invariants.
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate performs struct validation and converts failures to the shared
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if converted := ToValidationErrors(err); len(converted) > 0 {
			return converted
		}
		return err
	}
	return nil
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("scale_range", validateScaleRange)
	validate.RegisterValidation("choice_options", validateChoiceOptions)

	// Use json field names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.QuestionText,
		models.QuestionNumber,
		models.QuestionScale,
		models.QuestionMultipleChoice,
		models.QuestionYesNo,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

// validateScaleRange checks ScaleMin < ScaleMax on the enclosing question. A
// question without scale bounds passes; a max without a min does not.
func validateScaleRange(fl validator.FieldLevel) bool {
	question, ok := parentQuestion(fl)
	if !ok {
		return false
	}
	if question.ScaleMax == nil {
		return true
	}
	return question.ScaleMin != nil && *question.ScaleMin < *question.ScaleMax
}

// validateChoiceOptions requires at least one option on MULTIPLE_CHOICE
// questions; other types pass unconditionally.
func validateChoiceOptions(fl validator.FieldLevel) bool {
	if fl.Field().String() != string(models.QuestionMultipleChoice) {
		return true
	}
	question, ok := parentQuestion(fl)
	if !ok {
		return false
	}
	return len(question.OptionList()) > 0
}

func parentQuestion(fl validator.FieldLevel) (models.FormQuestion, bool) {
	parent := fl.Parent()
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}
	question, ok := parent.Interface().(models.FormQuestion)
	return question, ok
}

func validateUserRole(fl validator.FieldLevel) bool {
	validRoles := []models.UserRole{
		models.RolePatient,
		models.RolePhysiotherapist,
		models.RoleAdmin,
	}

	value := fl.Field().String()
	for _, validRole := range validRoles {
		if string(validRole) == value {
			return true
		}
	}
	return false
}
