package example

import (
	"context"
	"fmt"
	"time"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/plugin"
)

// ExamplePlugin produces demo launches inside any requested range, which
// makes the calendar usable without network access
type ExamplePlugin struct {
	vehicle string
	every   int
}

// New creates a new example plugin instance
func New() *ExamplePlugin {
	return &ExamplePlugin{vehicle: "Demo Rocket", every: 7}
}

func (p *ExamplePlugin) Name() string {
	return "example"
}

func (p *ExamplePlugin) Create(config map[string]interface{}) (plugin.Plugin, error) {
	instance := New()
	if vehicle, ok := config["vehicle"].(string); ok && vehicle != "" {
		instance.vehicle = vehicle
	}
	if every, ok := config["everyDays"].(int); ok {
		if every <= 0 {
			return nil, fmt.Errorf("everyDays must be positive")
		}
		instance.every = every
	}
	return instance, nil
}

// FetchEvents returns one launch at 12:00 UTC every few days, counted from
// the first day of the range
func (p *ExamplePlugin) FetchEvents(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	day := time.Date(start.Year(), start.Month(), start.Day(), 12, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)

	var events []models.Event
	for n := 1; !day.After(last); n++ {
		events = append(events, models.Event{
			UID:         fmt.Sprintf("example-%s", plugin.FormatDate(day)),
			Title:       fmt.Sprintf("%s | Demo Mission %d", p.vehicle, n),
			Description: "This is an example launch from the example plugin",
			Location:    "Example Launch Site",
			Start:       day,
			End:         day.Add(2 * time.Hour),
			Categories:  []string{"example"},
		})
		day = day.AddDate(0, 0, p.every)
	}

	return events, nil
}
