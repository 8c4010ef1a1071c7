package view

import (
	"strings"
	"testing"
	"time"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/component"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
)

func TestListViewEmpty(t *testing.T) {
	v := NewListView(Nav{})
	v.SetAttributes(component.Attributes{AttrStart: date(2017, time.November, 1)})

	if !strings.Contains(v.Markup(), NoEvents) {
		t.Errorf("markup = %q, want %q", v.Markup(), NoEvents)
	}
}

func TestListViewOrdersByDay(t *testing.T) {
	late := models.Event{Title: "Late", Start: time.Date(2017, time.November, 20, 9, 0, 0, 0, time.UTC)}
	early := models.Event{Title: "Early", Start: time.Date(2017, time.November, 3, 9, 0, 0, 0, time.UTC)}
	alsoEarly := models.Event{Title: "Also early", Start: time.Date(2017, time.November, 3, 12, 0, 0, 0, time.UTC)}

	v := NewListView(Nav{})
	v.SetAttributes(component.Attributes{
		AttrStart:  date(2017, time.November, 1),
		AttrEvents: models.DayIndex{20: {late}, 3: {early, alsoEarly}},
	})

	markup := v.Markup()
	i, j, k := strings.Index(markup, "Early"), strings.Index(markup, "Also early"), strings.Index(markup, "Late")
	if i < 0 || j < 0 || k < 0 || !(i < j && j < k) {
		t.Errorf("agenda out of order:\n%s", markup)
	}
	if strings.Contains(markup, NoEvents) {
		t.Error("agenda with events rendered the empty message")
	}
}

func TestNewFallsBackToMonth(t *testing.T) {
	tests := map[string]string{
		"month": "month",
		"list":  "list",
		"week":  "month",
		"":      "month",
	}
	for name, want := range tests {
		if got := New(name, Nav{}).Name(); got != want {
			t.Errorf("New(%q).Name() = %q, want %q", name, got, want)
		}
	}
}
