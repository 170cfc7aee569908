package services

import (
	"strconv"

	"github.com/physiotrack/evalform-service/internal/models"
)

// ScoreAnswers computes the total score of an answer mapping against the
// form's questions, in question order. The result is frozen into the response
// at submission time and never recomputed.
//
// Per-question contribution:
//   - SCALE: the parsed integer value of the answer; an unparseable answer
//     contributes 0.
//   - YES_NO: 1 if the answer equals the affirmative token exactly (literal
//     match, case included), otherwise 0.
//   - MULTIPLE_CHOICE: an answer at 0-based position i of N options is worth
//     N-i, so the first-listed option scores highest and the last scores 1;
//     an answer outside the option list contributes 0.
//   - TEXT, NUMBER: always 0.
func ScoreAnswers(questions []models.FormQuestion, answers map[string]string) int {
	total := 0
	for _, question := range questions {
		total += scoreQuestion(question, answers[question.ID])
	}
	return total
}

func scoreQuestion(question models.FormQuestion, answer string) int {
	switch question.Type {
	case models.QuestionScale:
		value, err := strconv.Atoi(answer)
		if err != nil {
			return 0
		}
		return value

	case models.QuestionYesNo:
		if answer == models.AnswerYes {
			return 1
		}
		return 0

	case models.QuestionMultipleChoice:
		options := question.OptionList()
		for i, option := range options {
			if option == answer {
				return len(options) - i
			}
		}
		return 0

	default:
		// TEXT and NUMBER never score.
		return 0
	}
}
