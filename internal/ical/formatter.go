package ical

import (
	"fmt"
	"strings"
	"time"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
)

const dateTimeFormat = "20060102T150405Z"

// Format converts a calendar of launches to iCal. stamp is written as the
// DTSTAMP of every event.
func Format(cal *models.Calendar, stamp time.Time) string {
	var builder strings.Builder

	builder.WriteString("BEGIN:VCALENDAR\r\n")
	builder.WriteString("VERSION:2.0\r\n")
	builder.WriteString("PRODID:-//launchcal//launchcal//EN\r\n")
	builder.WriteString(fmt.Sprintf("X-WR-CALNAME:%s\r\n", escapeText(cal.Name)))
	if cal.Description != "" {
		builder.WriteString(fmt.Sprintf("X-WR-CALDESC:%s\r\n", escapeText(cal.Description)))
	}

	for i := range cal.Events {
		builder.WriteString(formatEvent(&cal.Events[i], stamp))
	}

	builder.WriteString("END:VCALENDAR\r\n")

	return builder.String()
}

func formatEvent(event *models.Event, stamp time.Time) string {
	var builder strings.Builder

	builder.WriteString("BEGIN:VEVENT\r\n")
	builder.WriteString(fmt.Sprintf("UID:%s\r\n", escapeText(event.UID)))
	builder.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatDateTime(stamp)))
	builder.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatDateTime(event.Start)))
	// A launch window without an end is instantaneous
	if event.End.After(event.Start) {
		builder.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatDateTime(event.End)))
	}

	if event.Title != "" {
		builder.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeText(event.Title)))
	}

	if event.Description != "" {
		builder.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeText(event.Description)))
	}

	if event.Location != "" {
		builder.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeText(event.Location)))
	}

	if event.URL != "" {
		builder.WriteString(fmt.Sprintf("URL:%s\r\n", event.URL))
	}

	if len(event.Categories) > 0 {
		cats := make([]string, len(event.Categories))
		for i, c := range event.Categories {
			cats[i] = escapeText(c)
		}
		builder.WriteString(fmt.Sprintf("CATEGORIES:%s\r\n", strings.Join(cats, ",")))
	}

	builder.WriteString("END:VEVENT\r\n")

	return builder.String()
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format(dateTimeFormat)
}

func escapeText(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, ";", "\\;")
	text = strings.ReplaceAll(text, ",", "\\,")
	text = strings.ReplaceAll(text, "\r\n", "\\n")
	text = strings.ReplaceAll(text, "\n", "\\n")
	return text
}
