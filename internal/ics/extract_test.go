package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safarifame/internal/model"
)

// feed joins lines with CRLF the way calendar servers emit them.
func feed(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

func utcDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var twoFights = feed(
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"X-WR-CALNAME:SafariFame Fights",
	"BEGIN:VEVENT",
	"UID:a@safarifame",
	"SUMMARY:Fury vs Usyk",
	"DTSTART;VALUE=DATE:20241221",
	"LOCATION:Riyadh",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:b@safarifame",
	"SUMMARY:Canelo vs Crawford",
	"DTSTART:20240504",
	"END:VEVENT",
	"END:VCALENDAR",
)

func TestExtract_TwoFightsSortedByDate(t *testing.T) {
	events := Extract(twoFights)
	require.Len(t, events, 2)

	first, second := events[0], events[1]

	assert.Equal(t, "Canelo vs Crawford", first.Title)
	assert.Equal(t, utcDate(2024, time.May, 4), first.Date)
	assert.Equal(t, model.LocationTBA, first.Location)
	assert.Equal(t, "Canelo", first.Boxer1)
	assert.Equal(t, "Crawford", first.Boxer2)

	assert.Equal(t, "Fury vs Usyk", second.Title)
	assert.Equal(t, utcDate(2024, time.December, 21), second.Date)
	assert.Equal(t, "Riyadh", second.Location)
	assert.Equal(t, "Fury", second.Boxer1)
	assert.Equal(t, "Usyk", second.Boxer2)
}

func TestExtract_NoBlocks(t *testing.T) {
	for name, input := range map[string]string{
		"empty":         "",
		"whitespace":    "   \n\t\r\n",
		"calendar only": feed("BEGIN:VCALENDAR", "VERSION:2.0", "END:VCALENDAR"),
		"garbage":       "<!DOCTYPE html><html><body>Sign in</body></html>",
		"unterminated":  feed("BEGIN:VEVENT", "SUMMARY:A vs B", "DTSTART:20240101"),
	} {
		t.Run(name, func(t *testing.T) {
			events := Extract(input)
			assert.NotNil(t, events)
			assert.Empty(t, events)
		})
	}
}

func TestExtract_DropsIncompleteBlocksKeepsOthers(t *testing.T) {
	input := feed(
		"BEGIN:VEVENT",
		"DTSTART:20240301",
		"LOCATION:Nowhere",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"SUMMARY:Inoue vs Nery",
		"DTSTART:20240506",
		"LOCATION:Tokyo Dome",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"SUMMARY:No date vs Anyone",
		"END:VEVENT",
	)

	report := NewExtractor(nil).ExtractReport(input)
	assert.Equal(t, 3, report.Blocks)
	require.Len(t, report.Events, 1)
	assert.Equal(t, "Inoue vs Nery", report.Events[0].Title)
	assert.Equal(t, []Skipped{
		{Block: 0, Reason: SkipMissingSummary},
		{Block: 2, Reason: SkipMissingStart},
	}, report.Skipped)
}

func TestExtract_BoxerSplit(t *testing.T) {
	cases := []struct {
		title          string
		boxer1, boxer2 string
	}{
		{"Alice vs Bob", "Alice", "Bob"},
		{"Alice VS Bob", "Alice", "Bob"},
		{"Alice Vs Bob", "Alice", "Bob"},
		{"Alice   vS\tBob", "Alice", "Bob"},
		{"Heavyweight Title Night", "Heavyweight Title Night", model.BoxerTBA},
		{"Alice vs Bob vs Carol", "Alice", "Bob"},
		{"Evans versus Jones", "Evans versus Jones", model.BoxerTBA},
		{"", model.BoxerTBA, model.BoxerTBA},
	}

	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			events := Extract(feed("BEGIN:VEVENT", "SUMMARY:"+tc.title, "DTSTART:20240101", "END:VEVENT"))
			require.Len(t, events, 1)
			assert.Equal(t, tc.boxer1, events[0].Boxer1)
			assert.Equal(t, tc.boxer2, events[0].Boxer2)
		})
	}
}

func TestExtract_UnescapesCommasAndTrims(t *testing.T) {
	events := Extract(feed(
		"BEGIN:VEVENT",
		"SUMMARY:  Joshua vs Dubois\\, Wembley Night  ",
		"LOCATION:Madison Square\\, Garden",
		"DTSTART:20240921",
		"END:VEVENT",
	))
	require.Len(t, events, 1)
	assert.Equal(t, "Madison Square, Garden", events[0].Location)
	assert.Equal(t, "Joshua vs Dubois, Wembley Night", events[0].Title)
	assert.Equal(t, "Joshua", events[0].Boxer1)
	assert.Equal(t, "Dubois, Wembley Night", events[0].Boxer2)
}

func TestExtract_DateForms(t *testing.T) {
	cases := []struct {
		name  string
		line  string
		want  time.Time
		found bool
	}{
		{"date only", "DTSTART:20240504", utcDate(2024, time.May, 4), true},
		{"value date", "DTSTART;VALUE=DATE:20240504", utcDate(2024, time.May, 4), true},
		{"utc date time", "DTSTART:20240504T190000Z", utcDate(2024, time.May, 4), true},
		{"leap day", "DTSTART:20240229", utcDate(2024, time.February, 29), true},
		{"tzid qualified", "DTSTART;TZID=Europe/London:20240504T190000", time.Time{}, false},
		{"too short", "DTSTART:202405", time.Time{}, false},
		{"not digits", "DTSTART:2024-05-04", time.Time{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events := Extract(feed("BEGIN:VEVENT", "SUMMARY:A vs B", tc.line, "END:VEVENT"))
			if !tc.found {
				assert.Empty(t, events)
				return
			}
			require.Len(t, events, 1)
			assert.Equal(t, tc.want, events[0].Date)
		})
	}
}

func TestExtract_RejectsImpossibleDates(t *testing.T) {
	for _, date := range []string{"20240231", "20230229", "20241301", "20240001", "20240100", "20240432"} {
		t.Run(date, func(t *testing.T) {
			report := NewExtractor(nil).ExtractReport(feed("BEGIN:VEVENT", "SUMMARY:A vs B", "DTSTART:"+date, "END:VEVENT"))
			assert.Empty(t, report.Events)
			assert.Equal(t, []Skipped{{Block: 0, Reason: SkipInvalidDate}}, report.Skipped)
		})
	}
}

func TestExtract_FirstMatchingLineWins(t *testing.T) {
	events := Extract(feed(
		"BEGIN:VEVENT",
		"DTSTART;TZID=Africa/Nairobi:20250101T200000",
		"SUMMARY:First vs Title",
		"SUMMARY:Second vs Title",
		"DTSTART:20250202",
		"DTSTART:20250303",
		"LOCATION:Nairobi",
		"LOCATION:Mombasa",
		"END:VEVENT",
	))
	require.Len(t, events, 1)
	assert.Equal(t, "First vs Title", events[0].Title)
	assert.Equal(t, utcDate(2025, time.February, 2), events[0].Date)
	assert.Equal(t, "Nairobi", events[0].Location)
}

func TestExtract_ToleratesLooseWhitespaceAndLF(t *testing.T) {
	input := "junk before\nBEGIN:VEVENT\n   SUMMARY:Usyk vs Dubois\n\tDTSTART:20240817\n\n  LOCATION:  Wroclaw  \nEND:VEVENT trailing"
	events := Extract(input)
	require.Len(t, events, 1)
	assert.Equal(t, "Usyk vs Dubois", events[0].Title)
	assert.Equal(t, "Wroclaw", events[0].Location)
	assert.Equal(t, utcDate(2024, time.August, 17), events[0].Date)
}

func TestExtract_StableForEqualDates(t *testing.T) {
	events := Extract(feed(
		"BEGIN:VEVENT", "SUMMARY:Main vs Event", "DTSTART:20240601", "END:VEVENT",
		"BEGIN:VEVENT", "SUMMARY:Early vs Bird", "DTSTART:20240101", "END:VEVENT",
		"BEGIN:VEVENT", "SUMMARY:Co vs Main", "DTSTART:20240601", "END:VEVENT",
	))
	require.Len(t, events, 3)
	assert.Equal(t, "Early vs Bird", events[0].Title)
	assert.Equal(t, "Main vs Event", events[1].Title)
	assert.Equal(t, "Co vs Main", events[2].Title)

	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Date.Before(events[i-1].Date), "events out of order at %d", i)
	}
}

func TestExtract_UniqueIDs(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString(feed("BEGIN:VEVENT", "SUMMARY:A vs B", "DTSTART:20240101", "END:VEVENT"))
	}

	events := NewExtractor(UUIDGenerator{}).Extract(b.String())
	require.Len(t, events, 50)

	seen := make(map[string]bool, len(events))
	for _, ev := range events {
		assert.NotEmpty(t, ev.ID)
		assert.False(t, seen[ev.ID], "duplicate id %s", ev.ID)
		seen[ev.ID] = true
	}
}

func TestExtract_Idempotent(t *testing.T) {
	x := NewExtractor(NewCounter("fight"))
	first := x.Extract(twoFights)
	second := x.Extract(twoFights)
	require.Len(t, second, len(first))

	for i := range first {
		assert.NotEqual(t, first[i].ID, second[i].ID)
		a, b := first[i], second[i]
		a.ID, b.ID = "", ""
		assert.Equal(t, a, b)
	}
}

func TestExtract_DefaultCounterRestartsEachCall(t *testing.T) {
	assert.Equal(t, Extract(twoFights), Extract(twoFights))
}

func TestSplitBlocks_PairsWithNextEnd(t *testing.T) {
	blocks := splitBlocks("BEGIN:VEVENT a BEGIN:VEVENT b END:VEVENT c END:VEVENT BEGIN:VEVENT d")
	assert.Equal(t, []string{" a BEGIN:VEVENT b "}, blocks)
}
