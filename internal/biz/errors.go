package biz

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
)

const (
	ReasonMovieNotFound    = "MOVIE_NOT_FOUND"
	ReasonRatingNotFound   = "RATING_NOT_FOUND"
	ReasonSlugConflict     = "SLUG_CONFLICT"
	ReasonValidationFailed = "VALIDATION_FAILED"
)

var (
	ErrMovieNotFound  = errors.NotFound(ReasonMovieNotFound, "movie not found")
	ErrRatingNotFound = errors.NotFound(ReasonRatingNotFound, "rating not found")
	ErrSlugConflict   = errors.Conflict(ReasonSlugConflict, "a movie with the same slug already exists")
)

// Violation is a single broken rule.
type Violation struct {
	Field   string
	Message string
}

// ValidationError carries every violation found in a request.
type ValidationError struct {
	Violations []Violation
}

// Add records a violation.
func (e *ValidationError) Add(field, format string, args ...any) {
	e.Violations = append(e.Violations, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Err returns e when it holds violations, nil otherwise.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Violations) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err is a *ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if stderrors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
