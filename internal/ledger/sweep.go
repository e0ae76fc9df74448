package ledger

import (
	"time"

	"streakzillaAPI/internal/calendar"
)

type SweepResult struct {
	StreakReset bool
	BecameOut   bool
	// AtRisk means today is still open and a live streak depends on it.
	AtRisk     bool
	MissedDays []int
}

// Changed reports whether the membership needs to be persisted.
func (r SweepResult) Changed() bool {
	return r.StreakReset || r.BecameOut
}

// Sweep applies the transitions caused by the passage of time: the streak
// drops to zero once the last eligible day went unlogged, and a member with
// no lives left and an unredeemed missed day is out for good.
func (l *Ledger) Sweep(now time.Time) SweepResult {
	var res SweepResult

	today := l.Today(now)
	if today.Phase == calendar.PhasePending {
		return res
	}

	res.MissedDays = l.MissedDays(now, 0)

	previous := today.Number - 1
	if last, bounded := calendar.LastDay(l.challenge); bounded {
		previous = min(previous, last)
	}
	if l.membership.CurrentStreak > 0 && l.State(previous, now) == StateMissed {
		l.membership.CurrentStreak = 0
		res.StreakReset = true
	}

	if !l.membership.IsOut && l.membership.LivesRemaining == 0 && len(res.MissedDays) > 0 {
		l.membership.IsOut = true
		res.BecameOut = true
	}

	res.AtRisk = !l.membership.IsOut &&
		l.membership.CurrentStreak > 0 &&
		l.State(today.Number, now) == StateOpen

	return res
}
