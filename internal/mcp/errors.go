package mcp

import (
	"errors"
	"fmt"

	"github.com/sha367/smartPM/internal/domain/project"
	"github.com/sha367/smartPM/internal/domain/section"
	"github.com/sha367/smartPM/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: err.Error(), RecoveryHint: "Call list_projects for valid ids"}
	case errors.Is(err, section.ErrNothingToFlush):
		return &APIError{Code: "NOTHING_TO_FLUSH", Message: err.Error(), RecoveryHint: "Open a section with get_section first"}
	case errors.Is(err, section.ErrNoSchedule):
		return &APIError{Code: "NO_SCHEDULE", Message: err.Error(), RecoveryHint: "Add a Задача column to d. Диаграмма Ганта"}
	case errors.Is(err, repository.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check required fields, dates (YYYY-MM-DD) and status (L0-L5)"}
	case errors.Is(err, repository.ErrPersist):
		return &APIError{Code: "PERSIST_FAILED", Message: err.Error(), RecoveryHint: "Check that the data directory is writable and retry"}
	case errors.Is(err, repository.ErrParse):
		return &APIError{Code: "PARSE_FAILED", Message: err.Error(), RecoveryHint: "Check the workbook or store file for corruption"}
	case errors.Is(err, repository.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: err.Error()}
	default:
		return nil
	}
}

// toolError converts err into the error returned from a tool handler.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
