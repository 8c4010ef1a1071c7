package calendar

import (
	"time"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/view"
)

// MonthRange returns the first and last day of the month containing
// monthStart, both at 00:00 UTC
func MonthRange(monthStart time.Time) (start, end time.Time) {
	start = view.MonthStart(monthStart)
	return start, start.AddDate(0, 1, -1)
}

// IndexByDay groups events by the UTC day of month they start on. Events
// sharing a day keep their order.
func IndexByDay(events []models.Event) models.DayIndex {
	index := make(models.DayIndex)
	for _, e := range events {
		day := e.Day()
		index[day] = append(index[day], e)
	}
	return index
}
