package model

import "time"

// Placeholders used when a calendar entry does not carry enough
// information to fill a field.
const (
	LocationTBA = "Location To Be Announced"
	BoxerTBA    = "TBA"
)

// FightEvent is a single bout extracted from the fight calendar feed.
// Values are produced fresh by each extraction and never mutated.
type FightEvent struct {
	// ID is unique within one extraction call.
	ID string `json:"id"`

	Title    string `json:"title"`
	Location string `json:"location"`

	// Date is the calendar day of the bout at UTC midnight.
	Date time.Time `json:"date"`

	Boxer1 string `json:"boxer1"`
	Boxer2 string `json:"boxer2"`
}

// Day returns the UTC day of month, as shown on calendar cards.
func (e FightEvent) Day() int {
	return e.Date.UTC().Day()
}

// MonthShort returns the abbreviated UTC month name ("Jan".."Dec").
func (e FightEvent) MonthShort() string {
	return e.Date.UTC().Format("Jan")
}

// Matchup renders "<boxer1> vs <boxer2>".
func (e FightEvent) Matchup() string {
	return e.Boxer1 + " vs " + e.Boxer2
}

// Record is a boxer's professional win/loss/draw tally.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

// Boxer is a leaderboard entry.
type Boxer struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Points   int    `json:"points"`
	Record   Record `json:"record"`

	// Address is the lightning address supporters send sats to.
	Address   string `json:"address"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusDenied   RequestStatus = "denied"
)

// JoinRequest is a fighter's request to be added to the leaderboard.
type JoinRequest struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Nickname string        `json:"nickname"`
	Phone    string        `json:"phone"`
	Status   RequestStatus `json:"status"`
}
