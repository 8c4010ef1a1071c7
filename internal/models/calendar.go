package models

// DayIndex maps a day of month (1-31) to the events starting on that day,
// in the order they were received.
type DayIndex map[int][]Event

// Len returns the total number of indexed events
func (d DayIndex) Len() int {
	n := 0
	for _, events := range d {
		n += len(events)
	}
	return n
}

// Calendar is an exportable view of a month of events
type Calendar struct {
	Name        string
	Description string
	Events      []Event
}
