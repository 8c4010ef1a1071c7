package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/plugin"
)

func TestMonthRange(t *testing.T) {
	tests := []struct {
		in         time.Time
		start, end string
	}{
		{time.Date(2017, time.November, 14, 8, 0, 0, 0, time.UTC), "2017-11-01", "2017-11-30"},
		{time.Date(2016, time.February, 1, 0, 0, 0, 0, time.UTC), "2016-02-01", "2016-02-29"},
		{time.Date(2017, time.December, 31, 23, 0, 0, 0, time.UTC), "2017-12-01", "2017-12-31"},
	}
	for _, tt := range tests {
		start, end := MonthRange(tt.in)
		if plugin.FormatDate(start) != tt.start || plugin.FormatDate(end) != tt.end {
			t.Errorf("MonthRange(%v) = %s..%s, want %s..%s", tt.in, plugin.FormatDate(start), plugin.FormatDate(end), tt.start, tt.end)
		}
	}
}

func TestIndexByDay(t *testing.T) {
	first := launchOn("Long March 6 | Jilin-1", 21, 4)
	second := launchOn("Long March 2D | LKW-1", 21, 3)
	other := launchOn("Soyuz | Progress", 3, 12)
	lateUTC := models.Event{Title: "Late", Start: time.Date(2017, time.November, 4, 22, 0, 0, 0, time.FixedZone("PST", -8*3600))}

	index := IndexByDay([]models.Event{first, other, second, lateUTC})

	want := models.DayIndex{
		21: {first, second},
		3:  {other},
		5:  {lateUTC},
	}
	if diff := cmp.Diff(want, index); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}
	if index.Len() != 4 {
		t.Errorf("Len() = %d", index.Len())
	}
}

func TestAggregatorMergesInOrder(t *testing.T) {
	a := NewAggregator()
	a.AddInstance("slow", plugin.SourceFunc(func(ctx context.Context, start, end time.Time) ([]models.Event, error) {
		time.Sleep(10 * time.Millisecond)
		return []models.Event{{Title: "a1"}, {Title: "a2"}}, nil
	}))
	a.AddInstance("fast", plugin.SourceFunc(func(ctx context.Context, start, end time.Time) ([]models.Event, error) {
		return []models.Event{{Title: "b1"}}, nil
	}))

	events, err := a.FetchEvents(context.Background(), time.Now(), time.Now())
	if err != nil {
		t.Fatal(err)
	}

	var titles []string
	for _, e := range events {
		titles = append(titles, e.Title)
	}
	if diff := cmp.Diff([]string{"a1", "a2", "b1"}, titles); diff != "" {
		t.Errorf("merge order mismatch (-want +got):\n%s", diff)
	}
	if _, ok := a.GetInstance("fast"); !ok || a.Len() != 2 {
		t.Error("instances not registered")
	}
}

func TestAggregatorFailure(t *testing.T) {
	boom := errors.New("boom")
	a := NewAggregator()
	a.AddInstance("ok", plugin.SourceFunc(func(ctx context.Context, start, end time.Time) ([]models.Event, error) {
		return []models.Event{{Title: "x"}}, nil
	}))
	a.AddInstance("broken", plugin.SourceFunc(func(ctx context.Context, start, end time.Time) ([]models.Event, error) {
		return nil, boom
	}))

	if _, err := a.FetchEvents(context.Background(), time.Now(), time.Now()); !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
}
