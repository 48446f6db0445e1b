package domain

import (
	"errors"
	"sort"
	"strings"
)

// DefaultErrorMessage is shown when the backend gives no message.
const DefaultErrorMessage = "Une erreur est survenue"

var (
	// ErrNotFound is returned when the backend has no such entity.
	ErrNotFound = errors.New("not found")
	// ErrUnknownStatus is returned when a status string has no enum value.
	ErrUnknownStatus = errors.New("unknown status")
	// ErrInvalidLevel is returned for a selection level outside the chain.
	ErrInvalidLevel = errors.New("invalid selection level")
	// ErrInvalidTheme rejects theme values other than light and dark.
	ErrInvalidTheme = errors.New("invalid theme")
	// ErrConfirmationRequired guards destructive operations.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrSnapshotNotFound indicates no archived snapshot exists for a subject.
	ErrSnapshotNotFound = errors.New("result snapshot not found")
	// ErrNotLoaded is returned by a Loadable that never reached the ready state.
	ErrNotLoaded = errors.New("not loaded")
)

// ValidationError carries field-level messages keyed by form field name.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
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

// APIError is any other non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return DefaultErrorMessage
	}
	return e.Message
}

// ErrorKind is the presentation class of an error.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "notFound"
	KindGeneric    ErrorKind = "generic"
)

// Classify maps an error to how it is shown: inline field errors, an empty
// placeholder state, or a banner.
func Classify(err error) ErrorKind {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return KindValidation
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	return KindGeneric
}

// UserMessage returns a human-readable message for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		if verr.Message != "" {
			return verr.Message
		}
		return "Veuillez corriger les champs en erreur"
	}
	if errors.Is(err, ErrNotFound) {
		return "Élément introuvable"
	}
	return DefaultErrorMessage
}
