// Package view renders a visible month of launch events as HTML markup.
package view

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/component"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
)

// Attribute keys understood by every view
const (
	AttrToday  = "today"
	AttrStart  = "start"
	AttrEvents = "events"
)

// DefaultView is used when an unknown view name is requested
const DefaultView = "month"

// View is a Renderable calendar presentation
type View interface {
	component.Renderable
	Name() string
}

// Nav holds the form targets of the navigation controls. Empty targets
// are not rendered.
type Nav struct {
	Previous string
	Today    string
	Next     string
}

type factory func(nav Nav) View

var views = map[string]factory{
	"month": func(nav Nav) View { return NewMonthView(nav) },
	"list":  func(nav Nav) View { return NewListView(nav) },
}

// New returns the view registered under name, falling back to the month view
func New(name string, nav Nav) View {
	f, ok := views[name]
	if !ok {
		f = views[DefaultView]
	}
	return f(nav)
}

// MonthStart returns 00:00 UTC on the first day of t's UTC month
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in the given month
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Title formats the header of a visible month, e.g. "Nov, 2017"
func Title(start time.Time) string {
	return start.UTC().Format("Jan, 2006")
}

func writeHeader(b *strings.Builder, start time.Time, nav Nav) {
	b.WriteString("<header>")
	fmt.Fprintf(b, `<h2 class="title">%s</h2>`, html.EscapeString(Title(start)))
	if nav != (Nav{}) {
		b.WriteString(`<nav class="controls">`)
		writeControl(b, nav.Previous, "previous", "Previous")
		writeControl(b, nav.Today, "today", "Today")
		writeControl(b, nav.Next, "next", "Next")
		b.WriteString("</nav>")
	}
	b.WriteString("</header>")
}

func writeControl(b *strings.Builder, action, class, label string) {
	if action == "" {
		return
	}
	fmt.Fprintf(b, `<form method="post" action="%s"><button type="submit" class="%s">%s</button></form>`,
		html.EscapeString(action), class, label)
}

// fromAttributes extracts the render inputs. ok is false when no visible
// month has been set yet.
func fromAttributes(attrs component.Attributes) (today, start time.Time, events models.DayIndex, ok bool) {
	start, ok = component.Get[time.Time](attrs, AttrStart)
	if !ok {
		return time.Time{}, time.Time{}, nil, false
	}
	today, _ = component.Get[time.Time](attrs, AttrToday)
	events, _ = component.Get[models.DayIndex](attrs, AttrEvents)
	return today, MonthStart(start), events, true
}
