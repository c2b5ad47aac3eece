package models

import "time"

// User is a bot user profile. Birth data feeds the natal chart; the token
// balance and subscription fields feed the personal area panel.
type User struct {
	UserID int64
	Name   string
	Age    int
	Gender string

	BirthDate string // YYYY-MM-DD
	BirthTime string // HH:MM
	Lat       float64
	Lon       float64
	HasCoords bool

	TzOffsetMinutes int
	HasTzOffset     bool

	FreeTokens      int64
	FreeTokensLimit int64
	PaidTokens      int64
	Subscription    int
}

// BirthData is the set of fields required to build a natal chart.
type BirthData struct {
	Date string // YYYY-MM-DD
	Time string // HH:MM
	Lat  float64
	Lon  float64
}

// Draw is one revealed yes/no reading.
type Draw struct {
	CreatedAt time.Time
	Day       string // YYYY-MM-DD, the calendar day the card was selected for
	UserID    int64
	ChatID    int64
	Question  string
	CardID    int
	Verdict   string
}

// VerdictStat is a verdict tally for a statistics period.
type VerdictStat struct {
	Verdict string
	Count   int
}
