package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/physiotrack/evalform-service/internal/repositories"
)

var exportHeader = []string{
	"Response ID", "Form", "Score", "Max Score", "Date Completed", "Notes", "Question", "Answer",
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportResponsesToExcel renders every response of the user as an xlsx sheet,
// one row per answered question, prompts resolved against the current form.
func (s *exportService) ExportResponsesToExcel(ctx context.Context, userID string) ([]byte, error) {
	rows, err := s.buildRows(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Responses"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("%w: rename sheet: %v", ErrInternalError, err)
	}

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, fmt.Errorf("%w: write header: %v", ErrInternalError, err)
		}
	}

	for i, row := range rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("%w: write row %d: %v", ErrInternalError, i+2, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("%w: write workbook: %v", ErrInternalError, err)
	}

	s.logger.Info("Exported responses to Excel", "user_id", userID, "row_count", len(rows))
	return buf.Bytes(), nil
}

func (s *exportService) ExportResponsesToCSV(ctx context.Context, userID string) ([]byte, error) {
	rows, err := s.buildRows(ctx, userID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("%w: write header: %v", ErrInternalError, err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("%w: write row: %v", ErrInternalError, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("%w: flush csv: %v", ErrInternalError, err)
	}

	s.logger.Info("Exported responses to CSV", "user_id", userID, "row_count", len(rows))
	return buf.Bytes(), nil
}

func (s *exportService) buildRows(ctx context.Context, userID string) ([][]string, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	responses, _, err := s.repo.Response().GetByUser(ctx, userID, repositories.ResponseFilters{
		SortBy:    "date_completed",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list responses: %v", ErrFetchFailed, err)
	}

	prompts := make(map[string]map[string]string)
	var rows [][]string

	for _, response := range responses {
		formPrompts, ok := prompts[response.FormID]
		if !ok {
			formPrompts = s.promptsForForm(ctx, response.FormID)
			prompts[response.FormID] = formPrompts
		}

		base := []string{
			response.ID,
			response.FormTitle,
			strconv.Itoa(response.Score),
			strconv.Itoa(response.MaxScore),
			response.DateCompleted.Format("2006-01-02 15:04"),
			response.Notes,
		}

		answers := response.AnswerMap()
		if len(answers) == 0 {
			rows = append(rows, append(base, "", ""))
			continue
		}
		for questionID, answer := range answers {
			prompt := formPrompts[questionID]
			if prompt == "" {
				prompt = questionID
			}
			rows = append(rows, append(append([]string{}, base...), prompt, answer))
		}
	}

	return rows, nil
}

// promptsForForm is best effort: a deleted form leaves question ids in place
// of prompts, mirroring the degraded-display behavior of sharing.
func (s *exportService) promptsForForm(ctx context.Context, formID string) map[string]string {
	form, err := s.repo.Form().GetByIDWithQuestions(ctx, formID)
	if err != nil {
		if !repositories.IsNotFoundError(err) {
			s.logger.Warn("Failed to resolve form prompts for export", "form_id", formID, "error", err)
		}
		return map[string]string{}
	}

	prompts := make(map[string]string, len(form.Questions))
	for _, question := range form.Questions {
		prompts[question.ID] = question.Text
	}
	return prompts
}
