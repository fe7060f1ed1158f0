package service

import (
	"errors"
	"fmt"

	"go-supplychain-router/pkg/validator"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidStatus = errors.New("invalid status")
	// ErrMirrorFailed means the ledger transaction was confirmed but the
	// metadata store could not be updated; the two now disagree.
	ErrMirrorFailed = errors.New("metadata store write failed after ledger confirmation")
)

// ValidationError reports the first struct field that failed validation.
type ValidationError struct {
	Field string
	Tag   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", e.Field, e.Tag)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return &ValidationError{Field: errs[0].FailedField, Tag: errs[0].Tag}
	}
	return nil
}
