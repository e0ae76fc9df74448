package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"streakzillaAPI/internal/calendar"
	"streakzillaAPI/internal/habit"
	"streakzillaAPI/internal/invite"
	"streakzillaAPI/internal/leaderboard"
	"streakzillaAPI/internal/ledger"
	"streakzillaAPI/internal/logger"
	"streakzillaAPI/internal/notification"
	"streakzillaAPI/internal/stats"
	"streakzillaAPI/internal/types/challenge"
	"streakzillaAPI/internal/types/checkin"
)

const (
	codeAttempts = 5
	// scheduleEditDays is how long after the start date an admin may still
	// move the start date or change the duration.
	scheduleEditDays   = 1
	dashboardHistory   = 7
	missedDaysLookback = 30
)

type ChallengeService struct {
	store        Store
	resolver     calendar.Resolver
	notifier     Notifier
	leaderboards *LeaderboardService
	defaultLives int
	siteURL      string
	live         Broadcaster
}

func NewChallengeService(store Store, resolver calendar.Resolver, notifier Notifier, leaderboards *LeaderboardService, defaultLives int, siteURL string) *ChallengeService {
	return &ChallengeService{
		store:        store,
		resolver:     resolver,
		notifier:     notifier,
		leaderboards: leaderboards,
		defaultLives: defaultLives,
		siteURL:      siteURL,
		live:         noopBroadcaster{},
	}
}

func (s *ChallengeService) SetBroadcaster(b Broadcaster) {
	s.live = b
}

func (s *ChallengeService) parseStart(value string, now time.Time) (time.Time, error) {
	start, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if s.resolver.DaysSince(start, now) > 0 {
		return time.Time{}, fmt.Errorf("%w: start_date is in the past", ErrInvalidInput)
	}
	return start, nil
}

func (s *ChallengeService) checkGroupLimit(ctx context.Context, userID uuid.UUID) error {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	n, err := s.store.CountUserMemberships(ctx, userID)
	if err != nil {
		return err
	}
	if n >= p.MaxGroups {
		return ErrGroupLimit
	}
	return nil
}

func (s *ChallengeService) uniqueCode(ctx context.Context) (string, error) {
	for range codeAttempts {
		code := invite.NewCode()
		exists, err := s.store.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique invite code after %d attempts", codeAttempts)
}

func (s *ChallengeService) newMembership(challengeID, userID uuid.UUID, role challenge.Role, now time.Time) challenge.Membership {
	return challenge.Membership{
		ID:             uuid.New(),
		ChallengeID:    challengeID,
		UserID:         userID,
		Role:           role,
		LivesRemaining: s.defaultLives,
		JoinedAt:       now,
	}
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, userID uuid.UUID, req challenge.CreateChallengeRequest, now time.Time) (*challenge.Challenge, error) {
	mode, err := challenge.ParseMode(req.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	duration, err := challenge.NormalizeDuration(mode, req.DurationDays)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	start, err := s.parseStart(req.StartDate, now)
	if err != nil {
		return nil, err
	}
	if err := s.checkGroupLimit(ctx, userID); err != nil {
		return nil, err
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	c := challenge.Challenge{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		InviteCode:   code,
		StartDate:    start,
		DurationDays: duration,
		Mode:         mode,
		IsActive:     true,
		CreatedBy:    &userID,
		CreatedAt:    now,
	}
	admin := s.newMembership(c.ID, userID, challenge.RoleAdmin, now)

	if err := s.store.CreateChallenge(ctx, c, admin); err != nil {
		return nil, err
	}

	logger.Log.Info("challenge created",
		zap.Stringer("challenge_id", c.ID),
		zap.Stringer("user_id", userID),
		zap.String("mode", string(mode)),
	)
	return &c, nil
}

func (s *ChallengeService) JoinChallenge(ctx context.Context, userID uuid.UUID, code string, now time.Time) (*challenge.Challenge, error) {
	code, err := invite.Normalize(code)
	if err != nil {
		return nil, ErrInvalidInviteCode
	}

	c, err := s.store.GetChallengeByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidInviteCode
	}
	if err != nil {
		return nil, err
	}
	if !c.IsActive || s.resolver.Resolve(c, now).Phase == calendar.PhaseEnded {
		return nil, fmt.Errorf("%w: challenge has ended", ErrInvalidInput)
	}

	if _, err := s.store.GetMembership(ctx, c.ID, userID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err := s.checkGroupLimit(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.store.AddMember(ctx, s.newMembership(c.ID, userID, challenge.RoleMember, now)); err != nil {
		return nil, err
	}
	s.leaderboards.Invalidate(ctx, c.ID)

	if members, err := s.store.ListMembers(ctx, c.ID); err == nil {
		name := ""
		for _, m := range members {
			if m.UserID == userID {
				name = m.DisplayName
			}
		}
		s.notifier.NotifyMembers(ctx, members, userID, notification.TypeMemberJoined, map[string]any{
			"name":         name,
			"challenge":    c.Name,
			"challenge_id": c.ID.String(),
		})
	}

	s.live.Publish(LiveEvent{Type: LiveMemberJoined, ChallengeID: c.ID, UserID: userID, At: now})

	logger.Log.Info("member joined", zap.Stringer("challenge_id", c.ID), zap.Stringer("user_id", userID))
	return &c, nil
}

// requireMember loads the challenge and the caller's membership. Non-members
// get ErrForbidden.
func (s *ChallengeService) requireMember(ctx context.Context, challengeID, userID uuid.UUID) (challenge.Challenge, challenge.Membership, error) {
	return loadMembership(ctx, s.store, challengeID, userID)
}

func loadMembership(ctx context.Context, store Store, challengeID, userID uuid.UUID) (challenge.Challenge, challenge.Membership, error) {
	c, err := store.GetChallenge(ctx, challengeID)
	if err != nil {
		return c, challenge.Membership{}, err
	}
	m, err := store.GetMembership(ctx, challengeID, userID)
	if errors.Is(err, ErrNotFound) {
		return c, m, ErrForbidden
	}
	return c, m, err
}

// CheckMember returns ErrForbidden unless userID belongs to the challenge.
func (s *ChallengeService) CheckMember(ctx context.Context, userID, challengeID uuid.UUID) error {
	_, _, err := loadMembership(ctx, s.store, challengeID, userID)
	return err
}

func (s *ChallengeService) requireAdmin(ctx context.Context, challengeID, userID uuid.UUID) (challenge.Challenge, error) {
	c, m, err := s.requireMember(ctx, challengeID, userID)
	if err != nil {
		return c, err
	}
	if !m.IsAdmin() {
		return c, ErrForbidden
	}
	return c, nil
}

// LeaveChallenge removes the caller. Admins delete the challenge instead.
func (s *ChallengeService) LeaveChallenge(ctx context.Context, userID, challengeID uuid.UUID) error {
	_, m, err := s.requireMember(ctx, challengeID, userID)
	if err != nil {
		return err
	}
	if m.IsAdmin() {
		return ErrForbidden
	}
	if err := s.store.RemoveMember(ctx, challengeID, userID); err != nil {
		return err
	}
	s.leaderboards.Invalidate(ctx, challengeID)
	return nil
}

func (s *ChallengeService) DeleteChallenge(ctx context.Context, userID, challengeID uuid.UUID) error {
	if _, err := s.requireAdmin(ctx, challengeID, userID); err != nil {
		return err
	}
	if err := s.store.DeactivateChallenge(ctx, challengeID); err != nil {
		return err
	}
	if err := s.store.DeleteChallenge(ctx, challengeID); err != nil {
		return err
	}
	s.leaderboards.Invalidate(ctx, challengeID)
	logger.Log.Info("challenge deleted", zap.Stringer("challenge_id", challengeID), zap.Stringer("user_id", userID))
	return nil
}

// UpdateChallenge renames at any time. The schedule can only change until
// the day after the start date and before anyone has checked in, since stored
// check-ins keep the day numbers they were filed under.
func (s *ChallengeService) UpdateChallenge(ctx context.Context, userID, challengeID uuid.UUID, req challenge.UpdateChallengeRequest, now time.Time) (*challenge.Challenge, error) {
	c, err := s.requireAdmin(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}

	if req.StartDate != nil || req.DurationDays != nil {
		if s.resolver.DaysSince(c.StartDate, now) > scheduleEditDays {
			return nil, ErrEditWindowClosed
		}
		logged, err := s.store.ChallengeHasCheckins(ctx, challengeID)
		if err != nil {
			return nil, err
		}
		if logged {
			return nil, ErrEditWindowClosed
		}
		if req.StartDate != nil {
			if c.StartDate, err = s.parseStart(*req.StartDate, now); err != nil {
				return nil, err
			}
		}
		if req.DurationDays != nil {
			if c.DurationDays, err = challenge.NormalizeDuration(c.Mode, req.DurationDays); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
		}
	}

	if err := s.store.UpdateChallenge(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

type Dashboard struct {
	Challenge        challenge.Challenge      `json:"challenge"`
	Today            calendar.Day             `json:"today"`
	Membership       challenge.Membership     `json:"membership"`
	Selection        habit.Selection          `json:"selection"`
	SelectionPoints  int                      `json:"selection_points"`
	Editable         bool                     `json:"editable"`
	DaysLeftToModify int                      `json:"days_left_to_modify"`
	TodayState       ledger.State             `json:"today_state"`
	TodayCheckin     *checkin.Checkin         `json:"today_checkin,omitempty"`
	MissedDays       []int                    `json:"missed_days"`
	History          []checkin.HistoryEntry   `json:"history"`
	Stats            stats.ChallengeStats     `json:"stats"`
	Leaderboard      *leaderboard.Leaderboard `json:"leaderboard,omitempty"`
}

func (s *ChallengeService) GetDashboard(ctx context.Context, userID, challengeID uuid.UUID, now time.Time) (*Dashboard, error) {
	c, m, err := s.requireMember(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}
	sel, err := s.store.GetSelection(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}
	checkins, err := s.store.ListCheckins(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	l := ledger.New(s.resolver, c, m, sel, checkins)
	today := l.Today(now)

	d := &Dashboard{
		Challenge:        c,
		Today:            today,
		Membership:       m,
		Selection:        sel,
		SelectionPoints:  sel.Points(),
		Editable:         habit.IsEditable(s.resolver, c, m, now),
		DaysLeftToModify: habit.DaysLeftToModify(s.resolver, c, now),
		TodayState:       l.State(today.Number, now),
		MissedDays:       l.MissedDays(now, missedDaysLookback),
		History:          slices.Collect(l.History(now, dashboardHistory)),
		Stats:            stats.ForChallenge(today, members),
		Leaderboard:      leaderboard.Build(challengeID, members, userID, now),
	}
	if ci, ok := l.Checkin(today.Number); ok {
		d.TodayCheckin = &ci
	}
	return d, nil
}

func (s *ChallengeService) GetInvite(ctx context.Context, userID, challengeID uuid.UUID) (*invite.Invite, error) {
	c, _, err := s.requireMember(ctx, challengeID, userID)
	if err != nil {
		return nil, err
	}
	return invite.Build(s.siteURL, c.ID, c.InviteCode)
}

func (s *ChallengeService) ListUserChallenges(ctx context.Context, userID uuid.UUID, now time.Time) ([]challenge.UserChallenge, error) {
	list, err := s.store.ListUserChallenges(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		day := s.resolver.Resolve(list[i].Challenge, now)
		list[i].DayNumber = day.Number
		list[i].Phase = string(day.Phase)
	}
	return list, nil
}

// WatcherView is the public, read-only progress page. The invite code is
// never exposed here. viewerID may be uuid.Nil for anonymous visitors.
type WatcherView struct {
	Challenge   challenge.Challenge      `json:"challenge"`
	Today       calendar.Day             `json:"today"`
	Stats       stats.ChallengeStats     `json:"stats"`
	Leaderboard *leaderboard.Leaderboard `json:"leaderboard"`
}

func (s *ChallengeService) GetWatcherView(ctx context.Context, challengeID, viewerID uuid.UUID, now time.Time) (*WatcherView, error) {
	c, err := s.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	lb, err := s.leaderboards.GetLeaderboard(ctx, challengeID, viewerID, now)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	c.InviteCode = ""
	today := s.resolver.Resolve(c, now)
	return &WatcherView{
		Challenge:   c,
		Today:       today,
		Stats:       stats.ForChallenge(today, members),
		Leaderboard: lb,
	}, nil
}
