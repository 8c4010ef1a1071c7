package plugin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
)

type stubPlugin struct {
	name   string
	config map[string]interface{}
}

func (p *stubPlugin) Name() string { return p.name }

func (p *stubPlugin) Create(config map[string]interface{}) (Plugin, error) {
	return &stubPlugin{name: p.name, config: config}, nil
}

func (p *stubPlugin) FetchEvents(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&stubPlugin{name: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&stubPlugin{name: "a"}); err != nil {
		t.Fatal(err)
	}

	if err := r.Register(&stubPlugin{name: "a"}); err == nil {
		t.Error("registering a duplicate plugin should fail")
	}

	if diff := cmp.Diff([]string{"a", "b"}, r.List()); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	if _, err := r.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	p, err := r.Create("a", map[string]interface{}{"k": "v"})
	if err != nil {
		t.Fatal(err)
	}
	if got := p.(*stubPlugin).config["k"]; got != "v" {
		t.Errorf("config not passed to Create, got %v", got)
	}
}

func TestFormatDate(t *testing.T) {
	at := time.Date(2017, time.November, 30, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	if got := FormatDate(at); got != "2017-12-01" {
		t.Errorf("FormatDate() = %q, want 2017-12-01", got)
	}
}
