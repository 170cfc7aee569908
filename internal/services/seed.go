package services

import (
	"github.com/google/uuid"

	"github.com/physiotrack/evalform-service/internal/models"
)

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

type seedQuestion struct {
	text     string
	qType    models.QuestionType
	required bool
	options  []string
	scaleMin *int
	scaleMax *int
}

type seedForm struct {
	title       string
	description string
	questions   []seedQuestion
}

// defaultSeedForms is the baseline catalog guaranteed to exist for every
// deployment. Yes/no options use the literal answer tokens the scorer
// matches.
var defaultSeedForms = []seedForm{
	{
		title:       "Pain Assessment",
		description: "Baseline questionnaire about current pain level and pattern.",
		questions: []seedQuestion{
			{text: "How severe is your pain right now?", qType: models.QuestionScale, required: true, scaleMin: intPtr(0), scaleMax: intPtr(10)},
			{text: "How often do you feel this pain?", qType: models.QuestionMultipleChoice, required: true,
				options: []string{"Constantly", "Several times a day", "Occasionally", "Rarely"}},
			{text: "Did you take pain medication in the last 24 hours?", qType: models.QuestionYesNo, required: true},
			{text: "Where is the pain located?", qType: models.QuestionText, required: false},
		},
	},
	{
		title:       "Functional Mobility",
		description: "Daily movement and independence check-in.",
		questions: []seedQuestion{
			{text: "How difficult was walking today?", qType: models.QuestionScale, required: true, scaleMin: intPtr(0), scaleMax: intPtr(10)},
			{text: "Which support did you need to move around?", qType: models.QuestionMultipleChoice, required: true,
				options: []string{"None", "Cane", "Walker", "Wheelchair"}},
			{text: "Were you able to climb stairs without resting?", qType: models.QuestionYesNo, required: false},
			{text: "How many exercise sessions did you complete this week?", qType: models.QuestionNumber, required: false},
		},
	},
	{
		title:       "Treatment Satisfaction",
		description: "Feedback on the current exercise plan.",
		questions: []seedQuestion{
			{text: "How satisfied are you with your progress?", qType: models.QuestionScale, required: true, scaleMin: intPtr(1), scaleMax: intPtr(5)},
			{text: "Would you recommend this exercise plan?", qType: models.QuestionYesNo, required: true},
			{text: "What would you change about the plan?", qType: models.QuestionText, required: false},
		},
	},
}

// buildDefaultForms materializes the seed catalog with fresh identifiers.
func buildDefaultForms() ([]*models.EvaluationForm, error) {
	forms := make([]*models.EvaluationForm, 0, len(defaultSeedForms))

	for _, seed := range defaultSeedForms {
		form := &models.EvaluationForm{
			ID:          uuid.NewString(),
			Title:       seed.title,
			Description: strPtr(seed.description),
		}

		for i, sq := range seed.questions {
			question := models.FormQuestion{
				ID:       uuid.NewString(),
				FormID:   form.ID,
				Order:    i,
				Text:     sq.text,
				Type:     sq.qType,
				Required: sq.required,
				ScaleMin: sq.scaleMin,
				ScaleMax: sq.scaleMax,
			}
			if sq.qType == models.QuestionYesNo {
				if err := question.SetOptions([]string{models.AnswerYes, models.AnswerNo}); err != nil {
					return nil, err
				}
			} else if len(sq.options) > 0 {
				if err := question.SetOptions(sq.options); err != nil {
					return nil, err
				}
			}
			form.Questions = append(form.Questions, question)
		}

		form.MaxScore = models.MaxPossibleScore(form.Questions)
		forms = append(forms, form)
	}

	return forms, nil
}
