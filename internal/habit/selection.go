package habit

import (
	"encoding/json"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"streakzillaAPI/internal/calendar"
	"streakzillaAPI/internal/types/challenge"
)

// ModificationWindowDays is how many days after the start date a member may
// still change their habits.
const ModificationWindowDays = 3

// Selection is an immutable set of habits. Items are kept ordered by ID so
// two selections with the same members compare equal.
type Selection struct {
	items []Habit
}

func NewSelection(habits ...Habit) Selection {
	var s Selection
	for _, h := range habits {
		if !s.Contains(h.ID) {
			s = s.with(h)
		}
	}
	return s
}

func (s Selection) Len() int { return len(s.items) }

func (s Selection) Habits() []Habit { return slices.Clone(s.items) }

func (s Selection) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(s.items))
	for i, h := range s.items {
		ids[i] = h.ID
	}
	return ids
}

func (s Selection) Points() int {
	total := 0
	for _, h := range s.items {
		total += h.Points
	}
	return total
}

func (s Selection) index(id uuid.UUID) (int, bool) {
	return slices.BinarySearchFunc(s.items, id, func(h Habit, id uuid.UUID) int {
		return strings.Compare(h.ID.String(), id.String())
	})
}

func (s Selection) Contains(id uuid.UUID) bool {
	_, ok := s.index(id)
	return ok
}

func (s Selection) Get(id uuid.UUID) (Habit, bool) {
	i, ok := s.index(id)
	if !ok {
		return Habit{}, false
	}
	return s.items[i], true
}

func (s Selection) Equal(o Selection) bool {
	return slices.EqualFunc(s.items, o.items, func(a, b Habit) bool { return a.ID == b.ID })
}

func (s Selection) with(h Habit) Selection {
	i, _ := s.index(h.ID)
	return Selection{items: slices.Insert(slices.Clone(s.items), i, h)}
}

func (s Selection) without(i int) Selection {
	items := slices.Delete(slices.Clone(s.items), i, i+1)
	if len(items) == 0 {
		items = nil
	}
	return Selection{items: items}
}

// Intersect returns the habits of ids that are part of the selection. Unknown
// and repeated ids are ignored.
func (s Selection) Intersect(ids []uuid.UUID) []Habit {
	seen := make(map[uuid.UUID]bool, len(ids))
	var out []Habit
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if h, ok := s.Get(id); ok {
			out = append(out, h)
		}
	}
	return out
}

func (s Selection) MarshalJSON() ([]byte, error) {
	if s.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.items)
}

// Toggle adds h when absent and removes it when present.
func Toggle(s Selection, h Habit) Selection {
	if i, ok := s.index(h.ID); ok {
		return s.without(i)
	}
	return s.with(h)
}

// IsValid reports whether the selection has at least MinHabits habits worth
// at least MinPoints in total.
func IsValid(s Selection) bool {
	return s.Len() >= MinHabits && s.Points() >= MinPoints
}

// Canonical sorts a copy of the catalog by category, title, then id.
func Canonical(catalog []Habit) []Habit {
	sorted := slices.Clone(catalog)
	slices.SortStableFunc(sorted, func(a, b Habit) int {
		if c := strings.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return sorted
}

// QuickFill returns a selection of the first count habits in canonical order.
// The result replaces whatever the member had picked before.
func QuickFill(catalog []Habit, count int) Selection {
	count = min(max(count, 0), len(catalog))
	return NewSelection(Canonical(catalog)[:count]...)
}

// QuickFillPercent maps a 0-100 slider position onto QuickFill.
func QuickFillPercent(catalog []Habit, percent float64) Selection {
	percent = math.Min(math.Max(percent, 0), 100)
	return QuickFill(catalog, int(math.Round(percent/100*float64(len(catalog)))))
}

// IsEditable is true up to and including ModificationWindowDays days after the
// start date. Admins get no exemption.
func IsEditable(r calendar.Resolver, c challenge.Challenge, m challenge.Membership, now time.Time) bool {
	if m.ChallengeID != c.ID {
		return false
	}
	return r.DaysSince(c.StartDate, now) <= ModificationWindowDays
}

// DaysLeftToModify is zero once the window has closed.
func DaysLeftToModify(r calendar.Resolver, c challenge.Challenge, now time.Time) int {
	return max(0, ModificationWindowDays-max(0, r.DaysSince(c.StartDate, now)))
}

// Selector guards selection changes with the modification window.
type Selector struct {
	Resolver   calendar.Resolver
	Challenge  challenge.Challenge
	Membership challenge.Membership
}

func (s Selector) Editable(now time.Time) bool {
	return IsEditable(s.Resolver, s.Challenge, s.Membership, now)
}

func (s Selector) Toggle(sel Selection, h Habit, now time.Time) (Selection, error) {
	if !s.Editable(now) {
		return sel, ErrSelectionLocked
	}
	return Toggle(sel, h), nil
}

func (s Selector) QuickFill(sel Selection, catalog []Habit, count int, now time.Time) (Selection, error) {
	if !s.Editable(now) {
		return sel, ErrSelectionLocked
	}
	return QuickFill(catalog, count), nil
}

// Replace validates a full selection before it is saved.
func (s Selector) Replace(sel, next Selection, now time.Time) (Selection, error) {
	if !s.Editable(now) {
		return sel, ErrSelectionLocked
	}
	if !IsValid(next) {
		return sel, ErrInvalidSelection
	}
	return next, nil
}
