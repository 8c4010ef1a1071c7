package launchlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/plugin"
)

const (
	defaultBaseURL = "https://launchlibrary.net/1.2"
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512
)

// timestampLayouts are tried in order when parsing launch windows
var timestampLayouts = []string{
	time.RFC3339,
	"20060102T150405Z",
	"January 2, 2006 15:04:05 MST",
}

// statusNames maps Launch Library status codes to labels
var statusNames = map[int]string{
	1: "Go",
	2: "TBD",
	3: "Success",
	4: "Failure",
	5: "Hold",
	6: "In Flight",
	7: "Partial Failure",
}

// LaunchLibraryPlugin fetches launch windows from the Launch Library API
type LaunchLibraryPlugin struct {
	baseURL string
	limit   int
	client  *http.Client
}

// New creates a new Launch Library plugin instance
func New() *LaunchLibraryPlugin {
	return &LaunchLibraryPlugin{
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

func (p *LaunchLibraryPlugin) Name() string {
	return "launchlibrary"
}

func (p *LaunchLibraryPlugin) Create(config map[string]interface{}) (plugin.Plugin, error) {
	instance := New()

	if baseURL, ok := config["baseURL"].(string); ok && baseURL != "" {
		if _, err := url.Parse(baseURL); err != nil {
			return nil, fmt.Errorf("invalid baseURL: %w", err)
		}
		instance.baseURL = strings.TrimRight(baseURL, "/")
	}

	// Optional: request timeout such as "10s" (default: 30s)
	if raw, ok := config["timeout"].(string); ok && raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}
		instance.client.Timeout = timeout
	}

	// Optional: maximum launches per request (default: API default)
	if limit, ok := config["limit"].(int); ok {
		if limit < 0 {
			return nil, fmt.Errorf("limit must not be negative")
		}
		instance.limit = limit
	}

	return instance, nil
}

func (p *LaunchLibraryPlugin) FetchEvents(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	endpoint := fmt.Sprintf("%s/launch/%s/%s", p.baseURL, plugin.FormatDate(start), plugin.FormatDate(end))
	if p.limit > 0 {
		endpoint += "?limit=" + strconv.Itoa(p.limit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch launches: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", plugin.ErrMalformedResponse, err)
	}
	if payload.Launches == nil {
		return nil, fmt.Errorf("%w: missing launches", plugin.ErrMalformedResponse)
	}

	return ConvertToEvents(payload.Launches), nil
}

// ConvertToEvents maps launch records to events, in order. Records with an
// unparsable launch window are skipped.
func ConvertToEvents(launches []Launch) []models.Event {
	events := make([]models.Event, 0, len(launches))

	for _, launch := range launches {
		start, err := parseTimestamp(launch.WindowStart)
		if err != nil {
			slog.Warn("skipping launch with invalid window start",
				slog.String("name", launch.Name), slog.String("windowstart", launch.WindowStart))
			continue
		}
		end, err := parseTimestamp(launch.WindowEnd)
		if err != nil {
			slog.Warn("skipping launch with invalid window end",
				slog.String("name", launch.Name), slog.String("windowend", launch.WindowEnd))
			continue
		}
		if end.Before(start) {
			end = start
		}

		event := models.Event{
			UID:        launch.uid(),
			Title:      launch.Name,
			Start:      start,
			End:        end,
			Categories: []string{"launch"},
		}

		if launch.Location != nil {
			event.Location = launch.Location.Name
		}
		if len(launch.VidURLs) > 0 {
			event.URL = launch.VidURLs[0]
		}
		if status, ok := statusNames[launch.Status]; ok {
			event.Description = fmt.Sprintf("Status: %s", status)
		}

		events = append(events, event)
	}

	return events
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// StatusError is returned for non-success responses
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("launch library returned status %d", e.Code)
	}
	return fmt.Sprintf("launch library returned status %d: %s", e.Code, e.Body)
}

func (e *StatusError) Unwrap() error {
	return plugin.ErrUpstreamStatus
}

// Response is the body of a launch range query
type Response struct {
	Launches []Launch `json:"launches"`
	Total    int      `json:"total"`
	Offset   int      `json:"offset"`
	Count    int      `json:"count"`
}

// Launch is a single launch record
type Launch struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	WindowStart string    `json:"windowstart"`
	WindowEnd   string    `json:"windowend"`
	Status      int       `json:"status,omitempty"`
	Location    *Location `json:"location,omitempty"`
	VidURLs     []string  `json:"vidURLs,omitempty"`
}

// Location is the launch site
type Location struct {
	Name string `json:"name"`
}

func (l Launch) uid() string {
	if l.ID != 0 {
		return fmt.Sprintf("launchlibrary-%d", l.ID)
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(l.Name+"|"+l.WindowStart)).String()
}
