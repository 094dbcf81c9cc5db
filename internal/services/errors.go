package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ErrorCategory groups service errors for the HTTP layer.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not-found"
	CategoryConflict   ErrorCategory = "conflict"
	CategoryForbidden  ErrorCategory = "forbidden"
	CategoryProtected  ErrorCategory = "protected-reference"
	CategoryStorage    ErrorCategory = "storage"
	CategoryInternal   ErrorCategory = "internal"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrForbidden          = errors.New("operation not allowed for this user")
	ErrDuplicateIPAT      = errors.New("an accident with this IPAT number already exists")
	ErrDuplicate          = errors.New("record already exists")
	ErrProtectedReference = errors.New("record is referenced by existing accidents")
	ErrStorage            = errors.New("attachment storage failure")
)

// ValidationError carries a message per offending field. Nothing is
// written when it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldErrors accumulates validation failures.
type fieldErrors map[string]string

func (f fieldErrors) add(field, format string, args ...any) {
	if _, ok := f[field]; ok {
		return
	}
	f[field] = fmt.Sprintf(format, args...)
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

func newValidationError(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Category classifies err; unknown errors are internal.
func Category(err error) ErrorCategory {
	var verr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return CategoryValidation
	case errors.Is(err, ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrDuplicateIPAT), errors.Is(err, ErrDuplicate):
		return CategoryConflict
	case errors.Is(err, ErrForbidden):
		return CategoryForbidden
	case errors.Is(err, ErrProtectedReference):
		return CategoryProtected
	case errors.Is(err, ErrStorage):
		return CategoryStorage
	default:
		return CategoryInternal
	}
}

// translateDBError maps translated GORM errors onto service errors.
func translateDBError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrProtectedReference, err)
	default:
		return err
	}
}
