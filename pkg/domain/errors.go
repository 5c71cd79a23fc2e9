package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidWindow      = errors.New("window start is after window end")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrEventNotFound      = errors.New("event not found")
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrTasteNotFound      = errors.New("taste profile not found")
	ErrDuplicateEvent     = errors.New("event already exists")
	ErrExternalAPIFailure = errors.New("external API failure")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}
