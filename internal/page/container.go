// Package page holds the mount element the calendar is painted into and
// renders the HTML document around it.
package page

import "sync"

// DefaultMountID is the id of the mount element when none is configured
const DefaultMountID = "app"

// Container is a mount element whose inner HTML is replaced on every paint
type Container struct {
	id string

	mu     sync.RWMutex
	html   string
	paints uint64
}

// NewContainer creates an empty container with the given element id
func NewContainer(id string) *Container {
	if id == "" {
		id = DefaultMountID
	}
	return &Container{id: id}
}

// ID returns the element id of the container
func (c *Container) ID() string {
	return c.id
}

// Replace swaps the inner HTML of the container
func (c *Container) Replace(markup string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.html = markup
	c.paints++
}

// HTML returns the current inner HTML
func (c *Container) HTML() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.html
}

// Paints returns how many times the container has been painted
func (c *Container) Paints() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paints
}
