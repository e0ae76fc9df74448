package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"streakzillaAPI/internal/calendar"
	"streakzillaAPI/internal/habit"
	"streakzillaAPI/internal/logger"
)

type HabitService struct {
	store    Store
	resolver calendar.Resolver
}

func NewHabitService(store Store, resolver calendar.Resolver) *HabitService {
	return &HabitService{store: store, resolver: resolver}
}

func (s *HabitService) Catalog(ctx context.Context, q habit.Query) ([]habit.Habit, error) {
	all, err := s.store.ListHabits(ctx)
	if err != nil {
		return nil, err
	}
	return habit.Filter(all, q), nil
}

// AddCustomHabit returns the existing habit when one with the same slug is
// already in the catalog.
func (s *HabitService) AddCustomHabit(ctx context.Context, req habit.CustomHabitRequest) (habit.Habit, error) {
	h, err := habit.NewCustom(req)
	if err != nil {
		return habit.Habit{}, err
	}
	return s.store.AddHabitIfAbsent(ctx, h)
}

type SelectionView struct {
	Habits           habit.Selection `json:"habits"`
	Count            int             `json:"count"`
	Points           int             `json:"points"`
	Valid            bool            `json:"valid"`
	Editable         bool            `json:"editable"`
	DaysLeftToModify int             `json:"days_left_to_modify"`
	MinHabits        int             `json:"min_habits"`
	MinPoints        int             `json:"min_points"`
}

func (s *HabitService) view(sel habit.Selector, current habit.Selection, now time.Time) *SelectionView {
	return &SelectionView{
		Habits:           current,
		Count:            current.Len(),
		Points:           current.Points(),
		Valid:            habit.IsValid(current),
		Editable:         sel.Editable(now),
		DaysLeftToModify: habit.DaysLeftToModify(s.resolver, sel.Challenge, now),
		MinHabits:        habit.MinHabits,
		MinPoints:        habit.MinPoints,
	}
}

func (s *HabitService) selector(ctx context.Context, userID, challengeID uuid.UUID) (habit.Selector, habit.Selection, error) {
	c, m, err := loadMembership(ctx, s.store, challengeID, userID)
	if err != nil {
		return habit.Selector{}, habit.Selection{}, err
	}
	current, err := s.store.GetSelection(ctx, challengeID, userID)
	if err != nil {
		return habit.Selector{}, habit.Selection{}, err
	}
	return habit.Selector{Resolver: s.resolver, Challenge: c, Membership: m}, current, nil
}

func (s *HabitService) GetSelection(ctx context.Context, userID, challengeID uuid.UUID, now time.Time) (*SelectionView, error) {
	sel, current, err := s.selector(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}
	return s.view(sel, current, now), nil
}

// SaveSelection replaces the member's habits. Every id must exist in the
// catalog.
func (s *HabitService) SaveSelection(ctx context.Context, userID, challengeID uuid.UUID, habitIDs []uuid.UUID, now time.Time) (*SelectionView, error) {
	sel, current, err := s.selector(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}
	if !sel.Editable(now) {
		return nil, habit.ErrSelectionLocked
	}

	catalog, err := s.store.ListHabits(ctx)
	if err != nil {
		return nil, err
	}
	next := habit.NewSelection(catalog...).Intersect(habitIDs)
	if len(next) != countUnique(habitIDs) {
		return nil, fmt.Errorf("%w: unknown habit id", ErrInvalidInput)
	}

	saved, err := sel.Replace(current, habit.NewSelection(next...), now)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceSelection(ctx, challengeID, userID, saved.IDs()); err != nil {
		return nil, err
	}

	logger.Log.Info("habit selection saved",
		zap.Stringer("challenge_id", challengeID),
		zap.Stringer("user_id", userID),
		zap.Int("habits", saved.Len()),
		zap.Int("points", saved.Points()),
	)
	return s.view(sel, saved, now), nil
}

func countUnique(ids []uuid.UUID) int {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}

// QuickFill previews the first count catalog habits. Nothing is saved; the
// client confirms with SaveSelection.
func (s *HabitService) QuickFill(ctx context.Context, userID, challengeID uuid.UUID, count int, now time.Time) (*SelectionView, error) {
	sel, current, err := s.selector(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.store.ListHabits(ctx)
	if err != nil {
		return nil, err
	}
	preview, err := sel.QuickFill(current, catalog, count, now)
	if err != nil {
		return nil, err
	}
	return s.view(sel, preview, now), nil
}
