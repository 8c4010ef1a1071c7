package view

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/component"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
)

// NoEvents is shown by the list view for a month without launches
const NoEvents = "No events to show"

// ListView renders the visible month as an agenda
type ListView struct {
	*component.Component
	nav Nav
}

// NewListView creates an agenda view with the given navigation targets
func NewListView(nav Nav) *ListView {
	v := &ListView{nav: nav}
	v.Component = component.New(v.render)
	return v
}

func (v *ListView) Name() string {
	return "list"
}

func (v *ListView) render(attrs component.Attributes) string {
	_, start, events, ok := fromAttributes(attrs)
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<div class="calendar list">`)
	writeHeader(&b, start, v.nav)

	agenda := monthEvents(events, start.Year(), start.Month())
	if len(agenda) == 0 {
		fmt.Fprintf(&b, `<p class="empty">%s</p>`, NoEvents)
	} else {
		b.WriteString(`<ul class="agenda">`)
		for _, e := range agenda {
			at := e.Start.UTC()
			fmt.Fprintf(&b, `<li class="event"><time datetime="%s">%s</time> %s</li>`,
				at.Format(time.RFC3339), at.Format("Jan 2 15:04"), html.EscapeString(e.Title))
		}
		b.WriteString("</ul>")
	}

	b.WriteString("</div>")
	return b.String()
}

// monthEvents flattens the index in day order, keeping arrival order
// within a day
func monthEvents(events models.DayIndex, year int, month time.Month) []models.Event {
	days := make([]int, 0, len(events))
	for day := range events {
		days = append(days, day)
	}
	sort.Ints(days)

	var out []models.Event
	for _, day := range days {
		for _, e := range events[day] {
			if e.InMonth(year, month) {
				out = append(out, e)
			}
		}
	}
	return out
}
