package models

import "time"

// Event represents a single launch window on the calendar
type Event struct {
	UID         string    `json:"uid"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	URL         string    `json:"url,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
}

// Day returns the UTC day of month the event starts on
func (e Event) Day() int {
	return e.Start.UTC().Day()
}

// InMonth reports whether the event starts in the given UTC year and month
func (e Event) InMonth(year int, month time.Month) bool {
	start := e.Start.UTC()
	return start.Year() == year && start.Month() == month
}
