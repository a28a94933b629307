package ics

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"safarifame/internal/model"
)

const (
	beginEvent = "BEGIN:VEVENT"
	endEvent   = "END:VEVENT"
)

// Property prefixes recognised inside a VEVENT block. DTSTART is only
// accepted bare or as an all-day VALUE=DATE value; TZID-qualified
// starts are not fight dates in this feed.
var (
	summaryPrefixes  = []string{"SUMMARY:"}
	locationPrefixes = []string{"LOCATION:"}
	startPrefixes    = []string{"DTSTART:", "DTSTART;VALUE=DATE:"}
)

// vsSeparator splits "Fury vs Usyk" style titles into opponents.
var vsSeparator = regexp.MustCompile(`(?i)\s+vs\s+`)

// SkipReason explains why a VEVENT block produced no FightEvent.
type SkipReason string

const (
	SkipMissingSummary SkipReason = "missing SUMMARY"
	SkipMissingStart   SkipReason = "missing DTSTART"
	SkipInvalidDate    SkipReason = "invalid date"
)

// Skipped identifies a dropped block by its position in the feed.
type Skipped struct {
	Block  int        `json:"block"`
	Reason SkipReason `json:"reason"`
}

// Report is the detailed outcome of one extraction.
type Report struct {
	// Events is sorted ascending by Date. Never nil.
	Events []model.FightEvent `json:"events"`
	// Blocks is the number of BEGIN:VEVENT..END:VEVENT blocks found.
	Blocks  int       `json:"blocks"`
	Skipped []Skipped `json:"skipped,omitempty"`
}

// Extractor turns raw ICS text into fight events. It holds no state
// besides its id source and is safe for concurrent use when the
// IDGenerator is.
type Extractor struct {
	ids IDGenerator
}

// NewExtractor returns an Extractor drawing ids from ids. With a nil
// generator every call numbers its events from fight-1.
func NewExtractor(ids IDGenerator) *Extractor {
	return &Extractor{ids: ids}
}

// Extract is a convenience wrapper using a fresh per-call counter.
func Extract(icsText string) []model.FightEvent {
	return NewExtractor(nil).Extract(icsText)
}

// Extract returns the fight events in icsText sorted by date. Malformed
// or empty input yields an empty slice, never an error.
func (x *Extractor) Extract(icsText string) []model.FightEvent {
	return x.ExtractReport(icsText).Events
}

// ExtractReport is Extract plus the bookkeeping of dropped blocks.
func (x *Extractor) ExtractReport(icsText string) Report {
	report := Report{Events: []model.FightEvent{}}

	blocks := splitBlocks(icsText)
	report.Blocks = len(blocks)
	if len(blocks) == 0 {
		return report
	}

	ids := x.ids
	if ids == nil {
		ids = NewCounter("fight")
	}

	for i, block := range blocks {
		ev, reason, ok := parseBlock(block)
		if !ok {
			report.Skipped = append(report.Skipped, Skipped{Block: i, Reason: reason})
			continue
		}
		ev.ID = ids.NextID()
		report.Events = append(report.Events, ev)
	}

	slices.SortStableFunc(report.Events, func(a, b model.FightEvent) int {
		return a.Date.Compare(b.Date)
	})

	return report
}

// splitBlocks returns the text between each BEGIN:VEVENT and the next
// END:VEVENT. A trailing BEGIN without END is ignored.
func splitBlocks(text string) []string {
	var blocks []string
	for {
		i := strings.Index(text, beginEvent)
		if i < 0 {
			return blocks
		}
		rest := text[i+len(beginEvent):]
		j := strings.Index(rest, endEvent)
		if j < 0 {
			return blocks
		}
		blocks = append(blocks, rest[:j])
		text = rest[j+len(endEvent):]
	}
}

func parseBlock(block string) (model.FightEvent, SkipReason, bool) {
	var ev model.FightEvent
	lines := strings.Split(block, "\n")

	title, ok := firstValue(lines, summaryPrefixes, nil)
	if !ok {
		return ev, SkipMissingSummary, false
	}
	rawDate, ok := firstValue(lines, startPrefixes, isDateValue)
	if !ok {
		return ev, SkipMissingStart, false
	}
	date, ok := parseDate(rawDate[:8])
	if !ok {
		return ev, SkipInvalidDate, false
	}

	location, ok := firstValue(lines, locationPrefixes, nil)
	if !ok {
		location = model.LocationTBA
	}

	ev.Title = title
	ev.Location = location
	ev.Date = date
	ev.Boxer1, ev.Boxer2 = splitBoxers(title)
	return ev, "", true
}

// firstValue finds the first line starting with one of prefixes whose
// value satisfies accept (nil accepts anything). The returned value has
// escaped commas restored and surrounding blanks removed.
func firstValue(lines []string, prefixes []string, accept func(string) bool) (string, bool) {
	for _, line := range lines {
		line = strings.TrimLeft(strings.TrimRight(line, "\r"), " \t")
		for _, p := range prefixes {
			raw, found := strings.CutPrefix(line, p)
			if !found {
				continue
			}
			if accept != nil && !accept(raw) {
				continue
			}
			return strings.TrimSpace(unescapeText(raw)), true
		}
	}
	return "", false
}

func unescapeText(s string) string {
	return strings.ReplaceAll(s, `\,`, ",")
}

// isDateValue reports whether v starts with eight ASCII digits.
func isDateValue(v string) bool {
	if len(v) < 8 {
		return false
	}
	for i := 0; i < 8; i++ {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}
	return true
}

// parseDate reads YYYYMMDD as a UTC date. Dates that do not exist on
// the calendar (20240231, month 13, day 00) are rejected rather than
// rolled into a neighbouring month.
func parseDate(s string) (time.Time, bool) {
	year, err1 := strconv.Atoi(s[0:4])
	month, err2 := strconv.Atoi(s[4:6])
	day, err3 := strconv.Atoi(s[6:8])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func splitBoxers(title string) (string, string) {
	boxers := [2]string{model.BoxerTBA, model.BoxerTBA}
	for i, part := range vsSeparator.Split(title, -1) {
		if i >= len(boxers) {
			break
		}
		if name := strings.TrimSpace(part); name != "" {
			boxers[i] = name
		}
	}
	return boxers[0], boxers[1]
}
