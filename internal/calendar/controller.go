package calendar

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/component"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/metrics"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/plugin"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/view"
)

// LoadingMarkup is painted while a month is being fetched
const LoadingMarkup = `<p class="loading">Loading...</p>`

// Root component attributes
const (
	attrLoading = "loading"
	attrError   = "error"
)

// ErrStaleResponse is returned for a fetch that was superseded by a newer
// navigation before it resolved. Its result is discarded.
var ErrStaleResponse = errors.New("stale response discarded")

// Mount receives the markup of every paint
type Mount interface {
	Replace(markup string)
}

// State is a snapshot of the controller
type State struct {
	Today   time.Time       `json:"today"`
	Start   time.Time       `json:"start"`
	Events  models.DayIndex `json:"events"`
	Loading bool            `json:"loading"`
	Err     string          `json:"error,omitempty"`
}

// Option configures a Controller
type Option func(*Controller)

// WithClock sets the source of the current time
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithView selects the calendar view by name
func WithView(name string) Option {
	return func(c *Controller) { c.viewName = name }
}

// WithNav sets the targets of the navigation controls
func WithNav(nav view.Nav) Option {
	return func(c *Controller) { c.nav = nav }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// Controller owns the calendar state, fetches months of events and paints
// the result into its mount
type Controller struct {
	source   plugin.Source
	mount    Mount
	root     *component.Component
	logger   *slog.Logger
	now      func() time.Time
	viewName string
	nav      view.Nav

	mu     sync.Mutex
	view   view.View
	today  time.Time
	start  time.Time
	target time.Time
	events models.DayIndex
	seq    uint64
}

// NewController creates a controller fetching from source and painting into mount
func NewController(source plugin.Source, mount Mount, opts ...Option) *Controller {
	c := &Controller{
		source:   source,
		mount:    mount,
		logger:   slog.Default(),
		now:      time.Now,
		viewName: view.DefaultView,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.root = component.New(c.paint)
	c.root.OnRender(mount.Replace)
	return c
}

// Initialize sets today, creates the view and renders the current month
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	c.today = c.now().UTC()
	c.start = view.MonthStart(c.today)
	c.target = c.start
	c.events = models.DayIndex{}
	c.view = view.New(c.viewName, c.nav)
	start := c.start
	c.mu.Unlock()

	return c.RenderCalendarFor(ctx, start)
}

// ShowNextMonth renders the month after the last requested one
func (c *Controller) ShowNextMonth(ctx context.Context) error {
	return c.RenderCalendarFor(ctx, c.shift(1))
}

// ShowPreviousMonth renders the month before the last requested one
func (c *Controller) ShowPreviousMonth(ctx context.Context) error {
	return c.RenderCalendarFor(ctx, c.shift(-1))
}

// ShowCurrentMonth renders the month containing today
func (c *Controller) ShowCurrentMonth(ctx context.Context) error {
	return c.RenderCalendarFor(ctx, view.MonthStart(c.now()))
}

func (c *Controller) shift(months int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target.AddDate(0, months, 0)
}

// RenderCalendarFor paints the loading state, fetches the month containing
// monthStart and renders it. On failure the previous month stays painted
// under an error message and the error is returned. A fetch overtaken by a
// newer call returns ErrStaleResponse without touching the state.
func (c *Controller) RenderCalendarFor(ctx context.Context, monthStart time.Time) error {
	monthStart = view.MonthStart(monthStart)

	c.mu.Lock()
	if c.view == nil {
		c.view = view.New(c.viewName, c.nav)
	}
	c.seq++
	seq := c.seq
	c.target = monthStart
	c.root.SetAttributes(component.Attributes{attrLoading: true, attrError: ""})
	c.mu.Unlock()

	start, end := MonthRange(monthStart)
	logger := c.logger.With(slog.String("month", monthStart.Format("2006-01")))

	began := time.Now()
	events, err := c.source.FetchEvents(ctx, start, end)
	elapsed := time.Since(began)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		metrics.ObserveFetch(metrics.ResultStale, elapsed)
		logger.Debug("discarding stale response", slog.Uint64("seq", seq), slog.Uint64("latest", c.seq))
		return ErrStaleResponse
	}

	if err != nil {
		metrics.ObserveFetch(metrics.ResultError, elapsed)
		logger.Error("failed to fetch launches", slog.Any("error", err))

		c.target = c.start
		c.root.SetAttributes(component.Attributes{
			attrLoading: false,
			attrError:   fmt.Sprintf("Could not load launches for %s: %v", view.Title(monthStart), err),
		})
		return fmt.Errorf("fetch launches for %s: %w", monthStart.Format("2006-01"), err)
	}

	metrics.ObserveFetch(metrics.ResultOK, elapsed)
	logger.Debug("fetched launches", slog.Int("count", len(events)), slog.Duration("elapsed", elapsed))

	c.today = c.now().UTC()
	c.start = monthStart
	c.events = IndexByDay(events)

	c.view.SetAttributes(component.Attributes{
		view.AttrToday:  c.today,
		view.AttrStart:  c.start,
		view.AttrEvents: c.events,
	})
	metrics.IncRender(c.view.Name())

	c.root.SetAttributes(component.Attributes{attrLoading: false, attrError: ""})
	return nil
}

// paint renders the root markup: the loading or error banner followed by
// the last rendered view, if any
func (c *Controller) paint(attrs component.Attributes) string {
	loading, _ := component.Get[bool](attrs, attrLoading)
	msg, _ := component.Get[string](attrs, attrError)

	var b strings.Builder
	switch {
	case loading:
		b.WriteString(LoadingMarkup)
	case msg != "":
		fmt.Fprintf(&b, `<p class="error">%s</p>`, html.EscapeString(msg))
	}
	if c.view != nil {
		b.WriteString(c.view.Markup())
	}
	return b.String()
}

// State returns a snapshot of the controller state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	attrs := c.root.Attributes()
	loading, _ := component.Get[bool](attrs, attrLoading)
	msg, _ := component.Get[string](attrs, attrError)

	return State{
		Today:   c.today,
		Start:   c.start,
		Events:  c.events,
		Loading: loading,
		Err:     msg,
	}
}

// Markup returns the last painted markup
func (c *Controller) Markup() string {
	return c.root.Markup()
}
