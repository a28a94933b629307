package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFightEventDisplayFields(t *testing.T) {
	ev := FightEvent{
		Date:   time.Date(2024, time.December, 21, 0, 0, 0, 0, time.UTC),
		Boxer1: "Fury",
		Boxer2: "Usyk",
	}
	assert.Equal(t, 21, ev.Day())
	assert.Equal(t, "Dec", ev.MonthShort())
	assert.Equal(t, "Fury vs Usyk", ev.Matchup())

	// Display uses the UTC calendar day regardless of the value's zone.
	ev.Date = ev.Date.In(time.FixedZone("PST", -8*60*60))
	assert.Equal(t, 21, ev.Day())
	assert.Equal(t, "Dec", ev.MonthShort())
}
