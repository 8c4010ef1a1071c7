package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/plugin"
)

// Aggregator merges the events of several configured source instances
type Aggregator struct {
	mu        sync.RWMutex
	ids       []string
	instances map[string]plugin.Source
}

// NewAggregator creates an aggregator without sources
func NewAggregator() *Aggregator {
	return &Aggregator{
		instances: make(map[string]plugin.Source),
	}
}

// AddInstance adds a source instance with a specific ID. Instances are
// merged in the order they were added.
func (a *Aggregator) AddInstance(id string, s plugin.Source) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.instances[id]; !exists {
		a.ids = append(a.ids, id)
	}
	a.instances[id] = s
}

// GetInstance retrieves a source instance by ID
func (a *Aggregator) GetInstance(id string) (plugin.Source, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.instances[id]
	return s, ok
}

// Len returns the number of source instances
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.ids)
}

// FetchEvents fetches the range from all sources concurrently. Events keep
// the order of their source and, within a source, the order received. Any
// failing source fails the whole fetch.
func (a *Aggregator) FetchEvents(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	a.mu.RLock()
	ids := make([]string, len(a.ids))
	copy(ids, a.ids)
	instances := make([]plugin.Source, len(ids))
	for i, id := range ids {
		instances[i] = a.instances[id]
	}
	a.mu.RUnlock()

	results := make([][]models.Event, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, src := range instances {
		wg.Add(1)
		go func(i int, src plugin.Source) {
			defer wg.Done()

			events, err := src.FetchEvents(ctx, start, end)
			if err != nil {
				errs[i] = fmt.Errorf("source %s: %w", ids[i], err)
				return
			}
			results[i] = events
		}(i, src)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	var all []models.Event
	for _, events := range results {
		all = append(all, events...)
	}
	return all, nil
}
