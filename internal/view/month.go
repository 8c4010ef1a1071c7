package view

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/component"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
)

// MinWeeks is the number of rows every month grid has. Months whose days
// do not fit get one more row.
const MinWeeks = 5

// Weekdays are the abbreviated day-of-week labels, Sunday first
var Weekdays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Cell is one slot of the month grid. Day is 0 for blank slots.
type Cell struct {
	Day    int
	Today  bool
	Events []models.Event
}

// Blank reports whether the cell carries no day number
func (c Cell) Blank() bool {
	return c.Day == 0
}

// Month is the computed grid of a visible month
type Month struct {
	Title    string
	Start    time.Time
	Weekdays [7]string
	Weeks    [][7]Cell
}

// BuildMonth lays out the month containing start on a Sunday-first grid,
// marking today and attaching events by day of month. Events whose start
// falls outside the visible month are ignored. All comparisons use UTC.
func BuildMonth(today, start time.Time, events models.DayIndex) Month {
	start = MonthStart(start)
	today = today.UTC()
	year, month := start.Year(), start.Month()

	firstWeekday := int(start.Weekday())
	daysInMonth := DaysIn(year, month)

	rows := (firstWeekday + daysInMonth + 6) / 7
	if rows < MinWeeks {
		rows = MinWeeks
	}

	m := Month{
		Title:    Title(start),
		Start:    start,
		Weekdays: Weekdays,
		Weeks:    make([][7]Cell, rows),
	}

	day := 1
	for row := 0; row < rows; row++ {
		for col := 0; col < 7; col++ {
			if (row == 0 && col < firstWeekday) || day > daysInMonth {
				continue
			}

			cell := Cell{Day: day}
			if today.Year() == year && today.Month() == month && today.Day() == day {
				cell.Today = true
			}
			for _, e := range events[day] {
				if e.InMonth(year, month) {
					cell.Events = append(cell.Events, e)
				}
			}

			m.Weeks[row][col] = cell
			day++
		}
	}

	return m
}

// MonthView renders the visible month as a table
type MonthView struct {
	*component.Component
	nav Nav
}

// NewMonthView creates a month grid view with the given navigation targets
func NewMonthView(nav Nav) *MonthView {
	v := &MonthView{nav: nav}
	v.Component = component.New(v.render)
	return v
}

func (v *MonthView) Name() string {
	return "month"
}

func (v *MonthView) render(attrs component.Attributes) string {
	today, start, events, ok := fromAttributes(attrs)
	if !ok {
		return ""
	}
	return FormatMonth(BuildMonth(today, start, events), v.nav)
}

// FormatMonth writes the HTML markup of a computed month grid
func FormatMonth(m Month, nav Nav) string {
	var b strings.Builder

	b.WriteString(`<div class="calendar month">`)
	writeHeader(&b, m.Start, nav)

	b.WriteString(`<table><thead><tr>`)
	for _, name := range m.Weekdays {
		fmt.Fprintf(&b, `<th>%s</th>`, name)
	}
	b.WriteString(`</tr></thead><tbody>`)

	for _, week := range m.Weeks {
		b.WriteString("<tr>")
		for _, cell := range week {
			writeCell(&b, cell)
		}
		b.WriteString("</tr>")
	}

	b.WriteString(`</tbody></table></div>`)
	return b.String()
}

func writeCell(b *strings.Builder, cell Cell) {
	if cell.Blank() {
		b.WriteString(`<td class="blank"></td>`)
		return
	}

	class := "day"
	if cell.Today {
		class = "day today"
	}
	fmt.Fprintf(b, `<td class="%s"><span class="day-number">%d</span>`, class, cell.Day)

	if len(cell.Events) > 0 {
		b.WriteString(`<ul class="events">`)
		for _, e := range cell.Events {
			fmt.Fprintf(b, `<li class="event" title="%s">%s</li>`,
				html.EscapeString(e.Start.UTC().Format(time.RFC3339)), html.EscapeString(e.Title))
		}
		b.WriteString("</ul>")
	}

	b.WriteString("</td>")
}
