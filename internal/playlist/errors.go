package playlist

import (
	"errors"
	"fmt"
)

// ConfigError is returned when a required input is missing or invalid.
// It is raised before any remote mutation is attempted.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// APIError is a non-2xx or malformed response from the catalog service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("spotify api: %s", e.Message)
	}
	return fmt.Sprintf("spotify api: %d - %s", e.Status, e.Message)
}

// NotFoundError reports a lookup miss for a playlist or artist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Category groups errors the way the flow reports them
type Category string

const (
	CategoryNone       Category = ""
	CategoryConfig     Category = "input error"
	CategoryAPI        Category = "API error"
	CategoryUnexpected Category = "critical error"
)

// Classify maps an error chain to its reporting category.
func Classify(err error) Category {
	var (
		cfgErr *ConfigError
		nfErr  *NotFoundError
		apiErr *APIError
	)
	switch {
	case err == nil:
		return CategoryNone
	case errors.As(err, &cfgErr):
		return CategoryConfig
	case errors.As(err, &nfErr), errors.As(err, &apiErr):
		return CategoryAPI
	default:
		return CategoryUnexpected
	}
}

// IsNotFound reports whether err carries a NotFoundError.
func IsNotFound(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
}
