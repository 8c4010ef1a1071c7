package calendar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/plugin"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/view"
	"github.com/ulifigueroa/rocket-launches-calendar/plugins/launchlibrary"
)

var novemberToday = time.Date(2017, time.November, 15, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return novemberToday }

type recorder struct {
	mu     sync.Mutex
	paints []string
}

func (r *recorder) Replace(markup string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paints = append(r.paints, markup)
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.paints) == 0 {
		return ""
	}
	return r.paints[len(r.paints)-1]
}

type fakeSource struct {
	mu     sync.Mutex
	ranges []string
	fn     func(start, end time.Time) ([]models.Event, error)
}

func (f *fakeSource) FetchEvents(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	f.mu.Lock()
	f.ranges = append(f.ranges, plugin.FormatDate(start)+"/"+plugin.FormatDate(end))
	f.mu.Unlock()
	if f.fn == nil {
		return nil, nil
	}
	return f.fn(start, end)
}

func (f *fakeSource) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ranges...)
}

func launchOn(title string, day int, hour int) models.Event {
	start := time.Date(2017, time.November, day, hour, 0, 0, 0, time.UTC)
	return models.Event{Title: title, Start: start, End: start.Add(time.Hour)}
}

func TestInitializeRendersCurrentMonth(t *testing.T) {
	src := &fakeSource{fn: func(start, end time.Time) ([]models.Event, error) {
		return []models.Event{launchOn("Falcon 9 | Zuma", 17, 1)}, nil
	}}
	mount := &recorder{}
	c := NewController(src, mount, WithClock(fixedClock))

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if diff := cmp.Diff([]string{"2017-11-01/2017-11-30"}, src.requested()); diff != "" {
		t.Errorf("requested ranges mismatch (-want +got):\n%s", diff)
	}

	if mount.paints[0] != LoadingMarkup {
		t.Errorf("first paint = %q, want the loading indicator", mount.paints[0])
	}

	markup := mount.last()
	for _, want := range []string{"Nov, 2017", "Falcon 9 | Zuma", `<td class="day today"><span class="day-number">15</span>`} {
		if !strings.Contains(markup, want) {
			t.Errorf("painted markup missing %q", want)
		}
	}
	if strings.Contains(markup, "Loading...") {
		t.Error("loading indicator still painted after the fetch resolved")
	}

	state := c.State()
	if state.Loading || state.Err != "" {
		t.Errorf("state = %+v, want loaded without error", state)
	}
	if !state.Start.Equal(time.Date(2017, time.November, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Start = %v", state.Start)
	}
	if len(state.Events[17]) != 1 {
		t.Errorf("events on the 17th = %d, want 1", len(state.Events[17]))
	}
}

func TestNavigation(t *testing.T) {
	src := &fakeSource{}
	c := NewController(src, &recorder{}, WithClock(fixedClock))
	ctx := context.Background()

	if err := c.Initialize(ctx); err != nil {
		t.Fatal(err)
	}
	steps := []func(context.Context) error{
		c.ShowNextMonth,
		c.ShowNextMonth,
		c.ShowPreviousMonth,
		c.ShowCurrentMonth,
		c.ShowPreviousMonth,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{
		"2017-11-01/2017-11-30",
		"2017-12-01/2017-12-31",
		"2018-01-01/2018-01-31",
		"2017-12-01/2017-12-31",
		"2017-11-01/2017-11-30",
		"2017-10-01/2017-10-31",
	}
	if diff := cmp.Diff(want, src.requested()); diff != "" {
		t.Errorf("requested ranges mismatch (-want +got):\n%s", diff)
	}
}

func TestPreviousPaintKeptWhileLoading(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	src := &fakeSource{fn: func(start, end time.Time) ([]models.Event, error) {
		if start.Month() == time.December {
			close(started)
			<-release
		}
		return nil, nil
	}}
	mount := &recorder{}
	c := NewController(src, mount, WithClock(fixedClock))
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- c.ShowNextMonth(context.Background()) }()
	<-started

	painted := mount.last()
	if !strings.HasPrefix(painted, LoadingMarkup) || !strings.Contains(painted, "Nov, 2017") {
		t.Errorf("while loading, paint = %q, want loading banner over the November grid", painted)
	}
	if !c.State().Loading {
		t.Error("State().Loading = false during the fetch")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(mount.last(), "Dec, 2017") {
		t.Error("December was not painted after the fetch resolved")
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	src := &fakeSource{fn: func(start, end time.Time) ([]models.Event, error) {
		if start.Month() == time.December {
			close(started)
			<-release
			return []models.Event{{Title: "stale", Start: start}}, nil
		}
		return nil, nil
	}}
	c := NewController(src, &recorder{}, WithClock(fixedClock))
	ctx := context.Background()

	slow := make(chan error, 1)
	go func() {
		slow <- c.RenderCalendarFor(ctx, time.Date(2017, time.December, 1, 0, 0, 0, 0, time.UTC))
	}()
	<-started

	if err := c.RenderCalendarFor(ctx, time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	close(release)

	if err := <-slow; !errors.Is(err, ErrStaleResponse) {
		t.Fatalf("slow fetch error = %v, want ErrStaleResponse", err)
	}

	state := c.State()
	if state.Start.Month() != time.January || state.Loading {
		t.Errorf("state = %+v, want January loaded", state)
	}
	if strings.Contains(c.Markup(), "stale") {
		t.Error("stale events were rendered")
	}
}

func TestUpstreamFailureSurfaces(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "upstream down", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"launches": [{"id": 1, "name": "Electron | It's Business Time", "windowstart": "2017-11-20T01:30:00Z", "windowend": "2017-11-20T05:30:00Z"}]}`))
	}))
	defer srv.Close()

	src, err := launchlibrary.New().Create(map[string]interface{}{"baseURL": srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	mount := &recorder{}
	c := NewController(src, mount, WithClock(fixedClock))
	ctx := context.Background()

	if err := c.Initialize(ctx); err != nil {
		t.Fatal(err)
	}

	fail.Store(true)
	err = c.ShowNextMonth(ctx)
	if !errors.Is(err, plugin.ErrUpstreamStatus) {
		t.Fatalf("ShowNextMonth() error = %v, want ErrUpstreamStatus", err)
	}

	state := c.State()
	if state.Loading {
		t.Error("loading left stuck after a failed fetch")
	}
	if !strings.Contains(state.Err, "Dec, 2017") {
		t.Errorf("Err = %q", state.Err)
	}
	if state.Start.Month() != time.November {
		t.Errorf("Start moved to %v after a failure", state.Start)
	}

	painted := mount.last()
	if !strings.Contains(painted, `<p class="error">`) || !strings.Contains(painted, "Electron | It&#39;s Business Time") {
		t.Errorf("paint after failure = %q, want error over the November grid", painted)
	}

	// Navigation continues from the month that is still shown.
	fail.Store(false)
	if err := c.ShowNextMonth(ctx); err != nil {
		t.Fatal(err)
	}
	if got := c.State(); got.Start.Month() != time.December || got.Err != "" {
		t.Errorf("state after retry = %+v", got)
	}
}

func TestListView(t *testing.T) {
	mount := &recorder{}
	c := NewController(&fakeSource{}, mount, WithClock(fixedClock), WithView("list"),
		WithNav(view.Nav{Next: "/nav/next"}))

	if err := c.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(mount.last(), view.NoEvents) || !strings.Contains(mount.last(), `action="/nav/next"`) {
		t.Errorf("list paint = %q", mount.last())
	}
}
