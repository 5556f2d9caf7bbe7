package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for row validation.
var (
	ErrMissingCode  = errors.New("code is required")
	ErrStreakTarget = errors.New("streak must reference exactly one of taskId or metricCode")
)

// Sentinel errors for import and export.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrIncompatibleSchema = errors.New("incompatible schema version")
	ErrInvalidMode        = errors.New("invalid import mode")
	ErrInvalidSnapshot    = errors.New("invalid snapshot document")
)

// ErrDuplicateKey indicates a unique constraint violation.
var ErrDuplicateKey = errors.New("duplicate key")

// ErrFieldRequired returns an error indicating a required field is empty.
func ErrFieldRequired(field string) error {
	return fmt.Errorf("%s is required", field)
}

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s exceeds maximum length of %d", field, maxLen)
}

// CheckpointError reports a checkpoint whose batch could not be committed.
// Checkpoints committed before it stay committed.
type CheckpointError struct {
	Checkpoint string
	Err        error
}

func (e *CheckpointError) Error() string {
	return fmt.Sprintf("checkpoint %q failed: %v", e.Checkpoint, e.Err)
}

func (e *CheckpointError) Unwrap() error { return e.Err }
