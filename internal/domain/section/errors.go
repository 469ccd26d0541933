package section

import (
	"errors"
	"fmt"

	"github.com/sha367/smartPM/internal/repository"
)

var (
	ErrInvalidInput   = fmt.Errorf("invalid section input: %w", repository.ErrInvalidInput)
	ErrNothingToFlush = fmt.Errorf("no sections to flush: %w", repository.ErrNotFound)
	ErrNoSchedule     = errors.New("section has no task column")
)
