package calendar

import (
	"time"

	"streakzillaAPI/internal/types/challenge"
)

type Phase string

const (
	PhasePending Phase = "pending"
	PhaseActive  Phase = "active"
	PhaseEnded   Phase = "ended"
)

// Day is the resolved position of "now" inside a challenge.
type Day struct {
	Number         int   `json:"day_number"`
	Phase          Phase `json:"phase"`
	Offset         int   `json:"offset"`
	DaysUntilStart int   `json:"days_until_start"`
	DaysRemaining  *int  `json:"days_remaining,omitempty"`
}

// Resolver converts instants into challenge day numbers. All truncation
// happens in Location; a nil Location means time.Local.
type Resolver struct {
	Location *time.Location
}

func NewResolver(loc *time.Location) Resolver {
	return Resolver{Location: loc}
}

func (r Resolver) loc() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

// Truncate returns midnight of t's calendar day in the resolver's location.
func (r Resolver) Truncate(t time.Time) time.Time {
	y, m, d := t.In(r.loc()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.loc())
}

// civilDate returns the start date's own Y-M-D as a date in loc. Start dates
// carry no time component, so their fields are read as stored instead of
// being shifted into loc first.
func (r Resolver) civilDate(start time.Time) time.Time {
	y, m, d := start.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.loc())
}

// DaysSince is the number of whole calendar days from the start date to now.
// Negative while the challenge is pending.
func (r Resolver) DaysSince(start, now time.Time) int {
	return daysBetween(r.civilDate(start), r.Truncate(now))
}

// daysBetween counts calendar days using UTC dates so DST transitions in the
// resolver's location never produce 23h or 25h days.
func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// Resolve maps now onto the challenge: day number is floor(days since start)+1,
// never below 1.
func (r Resolver) Resolve(c challenge.Challenge, now time.Time) Day {
	offset := r.DaysSince(c.StartDate, now)

	day := Day{
		Number: max(1, offset+1),
		Offset: offset,
		Phase:  PhaseActive,
	}

	switch {
	case offset < 0:
		day.Phase = PhasePending
		day.DaysUntilStart = -offset
	case c.DurationDays != nil && offset > *c.DurationDays:
		day.Phase = PhaseEnded
	}

	if c.DurationDays != nil {
		remaining := max(0, *c.DurationDays-max(0, offset))
		day.DaysRemaining = &remaining
	}

	return day
}

// DateOf returns the calendar date of a 1-based day number.
func (r Resolver) DateOf(c challenge.Challenge, dayNumber int) time.Time {
	return r.civilDate(c.StartDate).AddDate(0, 0, dayNumber-1)
}

// DayNumberOf returns the day number a given instant falls on, which may be
// zero or negative for instants before the start date.
func (r Resolver) DayNumberOf(c challenge.Challenge, t time.Time) int {
	return r.DaysSince(c.StartDate, t) + 1
}

// LastDay is the final valid day number, false for open challenges.
func LastDay(c challenge.Challenge) (int, bool) {
	if c.DurationDays == nil {
		return 0, false
	}
	return *c.DurationDays, true
}
