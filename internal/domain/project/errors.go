package project

import (
	"fmt"

	"github.com/sha367/smartPM/internal/repository"
)

var (
	ErrProjectNotFound = fmt.Errorf("project not found: %w", repository.ErrNotFound)
	ErrInvalidInput    = fmt.Errorf("invalid project input: %w", repository.ErrInvalidInput)
)
