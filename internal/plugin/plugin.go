package plugin

import (
	"context"
	"errors"
	"time"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
)

// DateLayout is the calendar date format sources are queried with
const DateLayout = "2006-01-02"

var (
	// ErrUpstreamStatus is wrapped by errors for non-success upstream responses
	ErrUpstreamStatus = errors.New("upstream returned a non-success status")

	// ErrMalformedResponse is wrapped by errors for undecodable upstream bodies
	ErrMalformedResponse = errors.New("malformed upstream response")

	// ErrNotFound is returned when a plugin type is not registered
	ErrNotFound = errors.New("plugin not found")
)

// Source fetches the events whose start lies in the inclusive date range
// [start, end]
type Source interface {
	FetchEvents(ctx context.Context, start, end time.Time) ([]models.Event, error)
}

// SourceFunc adapts a function to the Source interface
type SourceFunc func(ctx context.Context, start, end time.Time) ([]models.Event, error)

func (f SourceFunc) FetchEvents(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	return f(ctx, start, end)
}

// Plugin is the interface that all event source plugins must implement
type Plugin interface {
	Source

	// Name returns the unique name of this plugin type
	Name() string

	// Create returns a new configured instance of this plugin
	Create(config map[string]interface{}) (Plugin, error)
}

// FormatDate formats t as a UTC calendar date
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
