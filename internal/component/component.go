// Package component provides the attribute store shared by every stateful
// piece of the calendar UI. A component holds a flat map of attributes and
// recomputes its markup from scratch whenever those attributes change.
package component

import "sync"

// Placeholder is returned by components that were built without a render func.
const Placeholder = "Component should implement render."

// Attributes is the state a component renders from
type Attributes map[string]any

// Clone returns a shallow copy of the attributes
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Get returns the attribute stored under key if it has type T.
func Get[T any](a Attributes, key string) (T, bool) {
	v, ok := a[key].(T)
	return v, ok
}

// Renderable is implemented by every unit that turns attributes into markup
type Renderable interface {
	// SetAttributes merges partial into the current attributes and re-renders
	SetAttributes(partial Attributes)

	// Render recomputes the markup from the current attributes
	Render() string

	// Markup returns the last rendered markup without recomputing it
	Markup() string
}

// RenderFunc computes markup from a copy of the current attributes
type RenderFunc func(attrs Attributes) string

// Component is the attribute store concrete units are composed with
type Component struct {
	mu       sync.RWMutex
	attrs    Attributes
	old      Attributes
	markup   string
	render   RenderFunc
	onRender []func(markup string)
}

// New creates a component that renders with fn
func New(fn RenderFunc) *Component {
	return &Component{
		attrs:  Attributes{},
		old:    Attributes{},
		render: fn,
	}
}

// OnRender registers a hook that receives the markup after every render pass
func (c *Component) OnRender(fn func(markup string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRender = append(c.onRender, fn)
}

// SetAttributes snapshots the current attributes, shallow-merges partial
// into them and renders. Later keys override earlier ones; unknown keys
// are stored as is.
func (c *Component) SetAttributes(partial Attributes) {
	c.mu.Lock()
	c.old = c.attrs.Clone()
	for k, v := range partial {
		c.attrs[k] = v
	}
	c.mu.Unlock()

	c.Render()
}

// Render recomputes the markup and notifies the render hooks
func (c *Component) Render() string {
	c.mu.Lock()
	markup := Placeholder
	if c.render != nil {
		markup = c.render(c.attrs.Clone())
	}
	c.markup = markup
	hooks := make([]func(string), len(c.onRender))
	copy(hooks, c.onRender)
	c.mu.Unlock()

	for _, hook := range hooks {
		hook(markup)
	}
	return markup
}

// Markup returns the last rendered markup
func (c *Component) Markup() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.markup
}

// Attributes returns a copy of the current attributes
func (c *Component) Attributes() Attributes {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attrs.Clone()
}

// OldAttributes returns a copy of the attributes as they were before the
// last SetAttributes call
func (c *Component) OldAttributes() Attributes {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.old.Clone()
}
