package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	ical "github.com/arran4/golang-ical"
)

// FeedInfo summarises a calendar feed as a strict RFC 5545 parser sees
// it. It is diagnostic only: extraction never depends on it.
type FeedInfo struct {
	Name       string // X-WR-CALNAME
	Timezone   string // X-WR-TIMEZONE
	EventCount int
}

// ErrHTMLFeed is returned when a feed URL answered with a web page,
// typically a login wall in front of a private calendar.
var ErrHTMLFeed = errors.New("received HTML instead of iCalendar data")

// Inspect parses body with golang-ical and reports calendar metadata.
func Inspect(body []byte) (FeedInfo, error) {
	var info FeedInfo

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return info, errors.New("empty ICS body")
	}
	upper := strings.ToUpper(string(trimmed[:min(len(trimmed), 16)]))
	if strings.HasPrefix(upper, "<!DOCTYPE") || strings.HasPrefix(upper, "<HTML") {
		return info, ErrHTMLFeed
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return info, fmt.Errorf("ics inspect: %w", err)
	}

	for _, p := range cal.CalendarProperties {
		switch strings.ToUpper(p.IANAToken) {
		case "X-WR-CALNAME":
			info.Name = p.Value
		case "X-WR-TIMEZONE":
			info.Timezone = p.Value
		}
	}
	info.EventCount = len(cal.Events())

	return info, nil
}
