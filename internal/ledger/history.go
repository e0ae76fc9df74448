package ledger

import (
	"iter"
	"time"

	"streakzillaAPI/internal/calendar"
	"streakzillaAPI/internal/types/checkin"
)

// History yields the trailing windowDays ending at today's day number, most
// recent first. Once the challenge is over the window ends at its last day,
// and it never reaches before day 1. The sequence reads the
// ledger lazily and may be ranged over any number of times.
func (l *Ledger) History(now time.Time, windowDays int) iter.Seq[checkin.HistoryEntry] {
	return func(yield func(checkin.HistoryEntry) bool) {
		if windowDays <= 0 {
			return
		}
		end := l.Today(now).Number
		if last, bounded := calendar.LastDay(l.challenge); bounded {
			end = min(end, last)
		}
		start := max(1, end-windowDays+1)

		for day := end; day >= start; day-- {
			state := l.State(day, now)
			entry := checkin.HistoryEntry{
				Date:      l.resolver.DateOf(l.challenge, day),
				DayNumber: day,
				Logged:    state.IsLogged(),
				ViaLife:   state == StateLoggedViaLife,
				State:     string(state),
			}
			if !yield(entry) {
				return
			}
		}
	}
}
