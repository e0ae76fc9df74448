package ledger

import (
	"time"

	"github.com/google/uuid"

	"streakzillaAPI/internal/calendar"
	"streakzillaAPI/internal/habit"
	"streakzillaAPI/internal/types/challenge"
	"streakzillaAPI/internal/types/checkin"
)

type State string

const (
	StateNotDue        State = "not_due"
	StateOpen          State = "open"
	StateLogged        State = "logged"
	StateLoggedViaLife State = "logged_via_life"
	StateMissed        State = "missed"
)

func (s State) IsLogged() bool {
	return s == StateLogged || s == StateLoggedViaLife
}

// DefaultLifeNote is attached to redemptions submitted without a note.
const DefaultLifeNote = "Retroactive check-in using life"

// Ledger tracks one membership's check-ins within one challenge. It is not
// safe for concurrent use; build one per request from a fresh snapshot.
type Ledger struct {
	resolver   calendar.Resolver
	challenge  challenge.Challenge
	membership challenge.Membership
	selection  habit.Selection
	checkins   map[int]checkin.Checkin
}

func New(r calendar.Resolver, c challenge.Challenge, m challenge.Membership, sel habit.Selection, checkins []checkin.Checkin) *Ledger {
	l := &Ledger{
		resolver:   r,
		challenge:  c,
		membership: m,
		selection:  sel,
		checkins:   make(map[int]checkin.Checkin, len(checkins)),
	}
	for _, ci := range checkins {
		l.checkins[ci.DayNumber] = ci
	}
	return l
}

func (l *Ledger) Membership() challenge.Membership { return l.membership }

func (l *Ledger) Selection() habit.Selection { return l.selection }

func (l *Ledger) Checkin(day int) (checkin.Checkin, bool) {
	ci, ok := l.checkins[day]
	return ci, ok
}

func (l *Ledger) Today(now time.Time) calendar.Day {
	return l.resolver.Resolve(l.challenge, now)
}

// firstDay is the day the member joined on; earlier days are never due.
func (l *Ledger) firstDay() int {
	if l.membership.JoinedAt.IsZero() {
		return 1
	}
	return max(1, l.resolver.DayNumberOf(l.challenge, l.membership.JoinedAt))
}

func (l *Ledger) inRange(day int) bool {
	if day < l.firstDay() {
		return false
	}
	last, bounded := calendar.LastDay(l.challenge)
	return !bounded || day <= last
}

// State classifies a day relative to now.
func (l *Ledger) State(day int, now time.Time) State {
	if ci, ok := l.checkins[day]; ok {
		if ci.ViaLife {
			return StateLoggedViaLife
		}
		return StateLogged
	}

	today := l.Today(now)
	if today.Phase == calendar.PhasePending || !l.inRange(day) {
		return StateNotDue
	}

	switch {
	case day == today.Number:
		return StateOpen
	case day < today.Number:
		return StateMissed
	default:
		return StateNotDue
	}
}

type Options struct {
	Note     *string
	PhotoRef *string
}

// points sums the completed habits that belong to the selection.
func (l *Ledger) points(completed []uuid.UUID) ([]uuid.UUID, int) {
	hs := l.selection.Intersect(completed)
	ids := make([]uuid.UUID, len(hs))
	total := 0
	for i, h := range hs {
		ids[i] = h.ID
		total += h.Points
	}
	return ids, total
}

func (l *Ledger) newCheckin(day int, ids []uuid.UUID, points int, opts Options, viaLife bool, now time.Time) checkin.Checkin {
	return checkin.Checkin{
		ID:                uuid.New(),
		ChallengeID:       l.challenge.ID,
		UserID:            l.membership.UserID,
		DayNumber:         day,
		CompletedHabitIDs: ids,
		PointsEarned:      points,
		Note:              opts.Note,
		PhotoRef:          opts.PhotoRef,
		ViaLife:           viaLife,
		CreatedAt:         now,
	}
}

// SubmitCheckin logs the current day. On error the ledger is unchanged.
func (l *Ledger) SubmitCheckin(now time.Time, day int, completed []uuid.UUID, opts Options) (checkin.Checkin, error) {
	if _, ok := l.checkins[day]; ok {
		return checkin.Checkin{}, ErrAlreadyCheckedIn
	}

	ids, points := l.points(completed)
	if len(ids) == 0 {
		return checkin.Checkin{}, ErrEmptySelection
	}
	if l.State(day, now) != StateOpen {
		return checkin.Checkin{}, ErrDayNotEligible
	}
	if l.membership.IsOut {
		return checkin.Checkin{}, ErrMemberOut
	}

	ci := l.newCheckin(day, ids, points, opts, false, now)
	l.checkins[day] = ci

	l.membership.TotalPoints += points
	if day == l.firstDay() || l.State(day-1, now).IsLogged() {
		l.membership.CurrentStreak++
	} else {
		l.membership.CurrentStreak = 1
	}

	return ci, nil
}

// RedeemLifeForDay fills a missed past day with a check-in paid for by one
// life. Any missed day may be redeemed, in any order.
func (l *Ledger) RedeemLifeForDay(now time.Time, day int, completed []uuid.UUID, opts Options) (checkin.Checkin, error) {
	if l.membership.LivesRemaining <= 0 {
		return checkin.Checkin{}, ErrNoLivesRemaining
	}
	if l.membership.IsOut {
		return checkin.Checkin{}, ErrMemberOut
	}
	if l.State(day, now) != StateMissed {
		return checkin.Checkin{}, ErrDayNotEligible
	}

	ids, points := l.points(completed)
	if len(ids) == 0 {
		return checkin.Checkin{}, ErrEmptySelection
	}

	if opts.Note == nil {
		note := DefaultLifeNote
		opts.Note = &note
	}

	ci := l.newCheckin(day, ids, points, opts, true, now)
	l.checkins[day] = ci

	l.membership.TotalPoints += points
	l.membership.LivesRemaining--
	l.membership.CurrentStreak = l.streak(now)

	return ci, nil
}

// streak counts consecutive logged days ending at the most recent log. It is
// zero when a missed day sits between that log and today.
func (l *Ledger) streak(now time.Time) int {
	latest := 0
	for day := range l.checkins {
		latest = max(latest, day)
	}
	if latest == 0 {
		return 0
	}

	today := l.Today(now)
	for day := latest + 1; day < today.Number; day++ {
		if l.State(day, now) == StateMissed {
			return 0
		}
	}

	run := 0
	for day := latest; day >= 1; day-- {
		if _, ok := l.checkins[day]; !ok {
			break
		}
		run++
	}
	return run
}

// MissedDays lists redeemable days, most recent first. A positive lookback
// limits how far back the list reaches.
func (l *Ledger) MissedDays(now time.Time, lookback int) []int {
	today := l.Today(now)
	if today.Phase == calendar.PhasePending {
		return nil
	}

	oldest := l.firstDay()
	if lookback > 0 {
		oldest = max(oldest, today.Number-lookback)
	}

	var days []int
	for day := today.Number - 1; day >= oldest; day-- {
		if l.State(day, now) == StateMissed {
			days = append(days, day)
		}
	}
	return days
}
