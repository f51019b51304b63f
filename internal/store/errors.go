package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrProjectNotFound   = fmt.Errorf("project %w", ErrNotFound)
	ErrMilestoneNotFound = fmt.Errorf("milestone %w", ErrNotFound)
	ErrInvalidDateRange  = errors.New("end date before start date")
)
