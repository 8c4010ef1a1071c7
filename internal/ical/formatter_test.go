package ical

import (
	"strings"
	"testing"
	"time"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
)

func TestFormat(t *testing.T) {
	start := time.Date(2017, time.November, 17, 1, 0, 0, 0, time.UTC)
	cal := &models.Calendar{
		Name:        "Rocket launches",
		Description: "Nov, 2017",
		Events: []models.Event{
			{
				UID:         "launchlibrary-1",
				Title:       "Falcon 9 Block 4 | Zuma",
				Description: "Status: Go",
				Location:    "Cape Canaveral, FL, USA",
				Start:       start,
				End:         start.Add(2 * time.Hour),
				URL:         "https://example.com/live",
				Categories:  []string{"launch"},
			},
			{UID: "launchlibrary-2", Title: "Instant", Start: start, End: start},
		},
	}

	got := Format(cal, time.Date(2017, time.November, 1, 0, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"X-WR-CALNAME:Rocket launches\r\n",
		"X-WR-CALDESC:Nov\\, 2017\r\n",
		"UID:launchlibrary-1\r\n",
		"DTSTAMP:20171101T000000Z\r\n",
		"DTSTART:20171117T010000Z\r\n",
		"DTEND:20171117T030000Z\r\n",
		"SUMMARY:Falcon 9 Block 4 | Zuma\r\n",
		"LOCATION:Cape Canaveral\\, FL\\, USA\r\n",
		"CATEGORIES:launch\r\n",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}

	if n := strings.Count(got, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("VEVENT count = %d, want 2", n)
	}
	if n := strings.Count(got, "DTEND:"); n != 1 {
		t.Errorf("DTEND count = %d, want 1 (zero-length windows have none)", n)
	}
}

func TestEscapeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a;b,c", "a\\;b\\,c"},
		{"back\\slash", "back\\\\slash"},
		{"line\nbreak", "line\\nbreak"},
		{"crlf\r\nbreak", "crlf\\nbreak"},
	}
	for _, tt := range tests {
		if got := escapeText(tt.in); got != tt.want {
			t.Errorf("escapeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
