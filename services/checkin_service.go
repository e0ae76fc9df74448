package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"streakzillaAPI/internal/cache"
	"streakzillaAPI/internal/calendar"
	"streakzillaAPI/internal/habit"
	"streakzillaAPI/internal/ledger"
	"streakzillaAPI/internal/logger"
	"streakzillaAPI/internal/notification"
	"streakzillaAPI/internal/types/challenge"
	"streakzillaAPI/internal/types/checkin"
)

const (
	DefaultHistoryDays = 7
	MaxHistoryDays     = 90
	DefaultFeedLimit   = 20
	MaxFeedLimit       = 100

	// at-risk reminders go out from this hour of the local day on
	atRiskFromHour = 18
	atRiskTTL      = 24 * time.Hour
)

type CheckinService struct {
	store        Store
	resolver     calendar.Resolver
	notifier     Notifier
	leaderboards *LeaderboardService
	cache        cache.Cache
	live         Broadcaster
}

func NewCheckinService(store Store, resolver calendar.Resolver, notifier Notifier, leaderboards *LeaderboardService, c cache.Cache) *CheckinService {
	return &CheckinService{
		store:        store,
		resolver:     resolver,
		notifier:     notifier,
		leaderboards: leaderboards,
		cache:        c,
		live:         noopBroadcaster{},
	}
}

func (s *CheckinService) SetBroadcaster(b Broadcaster) {
	s.live = b
}

func (s *CheckinService) loadLedger(ctx context.Context, userID, challengeID uuid.UUID) (*ledger.Ledger, challenge.Challenge, error) {
	c, m, err := loadMembership(ctx, s.store, challengeID, userID)
	if err != nil {
		return nil, c, err
	}
	sel, err := s.store.GetSelection(ctx, challengeID, userID)
	if err != nil {
		return nil, c, err
	}
	checkins, err := s.store.ListCheckins(ctx, challengeID, userID)
	if err != nil {
		return nil, c, err
	}
	return ledger.New(s.resolver, c, m, sel, checkins), c, nil
}

func checkinResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ledger.ErrAlreadyCheckedIn):
		return "duplicate"
	case errors.Is(err, ledger.ErrEmptySelection):
		return "empty_selection"
	case errors.Is(err, ledger.ErrDayNotEligible):
		return "not_eligible"
	case errors.Is(err, ledger.ErrNoLivesRemaining):
		return "no_lives"
	case errors.Is(err, ledger.ErrMemberOut):
		return "member_out"
	default:
		return "error"
	}
}

// persist stores a check-in built by the ledger. The ledger check is
// advisory; the unique index decides races.
func (s *CheckinService) persist(ctx context.Context, ci checkin.Checkin, streak int) (*checkin.Result, error) {
	m, err := s.store.AppendCheckin(ctx, ci, streak)
	checkinsTotal.WithLabelValues(checkinResult(err)).Inc()
	if err != nil {
		return nil, err
	}
	s.leaderboards.Invalidate(ctx, ci.ChallengeID)

	res := &checkin.Result{
		Checkin:        ci,
		PointsEarned:   ci.PointsEarned,
		TotalPoints:    m.TotalPoints,
		CurrentStreak:  m.CurrentStreak,
		LivesRemaining: m.LivesRemaining,
	}
	ev := LiveCheckin
	if ci.ViaLife {
		ev = LiveLifeUsed
	}
	s.live.Publish(LiveEvent{
		Type:        ev,
		ChallengeID: ci.ChallengeID,
		UserID:      ci.UserID,
		Data: map[string]any{
			"day":          ci.DayNumber,
			"points":       ci.PointsEarned,
			"total_points": m.TotalPoints,
			"streak":       m.CurrentStreak,
		},
		At: ci.CreatedAt,
	})
	return res, nil
}

// SubmitCheckin logs today's habits. Day 0 means today.
func (s *CheckinService) SubmitCheckin(ctx context.Context, userID, challengeID uuid.UUID, req checkin.SubmitRequest, now time.Time) (*checkin.Result, error) {
	l, c, err := s.loadLedger(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}

	day := req.DayNumber
	if day == 0 {
		day = l.Today(now).Number
	}

	ci, err := l.SubmitCheckin(now, day, req.CompletedHabitIDs, ledger.Options{Note: req.Note, PhotoRef: req.PhotoRef})
	if err != nil {
		checkinsTotal.WithLabelValues(checkinResult(err)).Inc()
		return nil, err
	}

	res, err := s.persist(ctx, ci, l.Membership().CurrentStreak)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("checkin submitted",
		zap.Stringer("challenge_id", challengeID),
		zap.Stringer("user_id", userID),
		zap.Int("day", day),
		zap.Int("points", ci.PointsEarned),
		zap.Int("streak", res.CurrentStreak),
	)

	if notification.IsMilestone(res.CurrentStreak) {
		s.notify(ctx, userID, notification.TypeStreakMilestone, map[string]any{
			"streak":       res.CurrentStreak,
			"challenge":    c.Name,
			"challenge_id": c.ID.String(),
		})
	}
	return res, nil
}

// RedeemLife spends one life to fill a missed day.
func (s *CheckinService) RedeemLife(ctx context.Context, userID, challengeID uuid.UUID, req checkin.RedeemRequest, now time.Time) (*checkin.Result, error) {
	l, c, err := s.loadLedger(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}

	ci, err := l.RedeemLifeForDay(now, req.DayNumber, req.CompletedHabitIDs, ledger.Options{})
	if err != nil {
		checkinsTotal.WithLabelValues(checkinResult(err)).Inc()
		return nil, err
	}

	res, err := s.persist(ctx, ci, l.Membership().CurrentStreak)
	if err != nil {
		return nil, err
	}
	livesRedeemed.Inc()

	logger.Log.Info("life redeemed",
		zap.Stringer("challenge_id", challengeID),
		zap.Stringer("user_id", userID),
		zap.Int("day", req.DayNumber),
		zap.Int("lives_remaining", res.LivesRemaining),
	)

	s.notify(ctx, userID, notification.TypeLifeUsed, map[string]any{
		"day":          req.DayNumber,
		"lives":        res.LivesRemaining,
		"challenge":    c.Name,
		"challenge_id": c.ID.String(),
	})
	return res, nil
}

func (s *CheckinService) notify(ctx context.Context, userID uuid.UUID, t notification.NotificationType, data map[string]any) {
	if err := s.notifier.Notify(ctx, userID, t, data); err != nil {
		logger.Log.Warn("notification failed", zap.Stringer("user_id", userID), zap.String("type", string(t)), zap.Error(err))
	}
}

// History returns up to windowDays entries, newest first. Non-positive
// windows fall back to a week; the window is capped at MaxHistoryDays.
func (s *CheckinService) History(ctx context.Context, userID, challengeID uuid.UUID, windowDays int, now time.Time) ([]checkin.HistoryEntry, error) {
	if windowDays <= 0 {
		windowDays = DefaultHistoryDays
	}
	windowDays = min(windowDays, MaxHistoryDays)

	l, _, err := s.loadLedger(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}
	return slices.Collect(l.History(now, windowDays)), nil
}

type MissedDaysView struct {
	Days           []int `json:"days"`
	LivesRemaining int   `json:"lives_remaining"`
}

func (s *CheckinService) MissedDays(ctx context.Context, userID, challengeID uuid.UUID, now time.Time) (*MissedDaysView, error) {
	l, _, err := s.loadLedger(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}
	days := l.MissedDays(now, missedDaysLookback)
	if days == nil {
		days = []int{}
	}
	return &MissedDaysView{Days: days, LivesRemaining: l.Membership().LivesRemaining}, nil
}

func (s *CheckinService) Feed(ctx context.Context, userID, challengeID uuid.UUID, limit int) ([]checkin.FeedItem, error) {
	if _, _, err := loadMembership(ctx, s.store, challengeID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return s.store.ListFeed(ctx, challengeID, min(limit, MaxFeedLimit))
}

type SweepSummary struct {
	Members     int
	Updated     int
	WentOut     int
	AtRisk      int
	Deactivated bool
}

// SweepChallenge applies time-driven transitions to every member of c.
func (s *CheckinService) SweepChallenge(ctx context.Context, c challenge.Challenge, now time.Time) (SweepSummary, error) {
	var sum SweepSummary

	members, err := s.store.ListMembers(ctx, c.ID)
	if err != nil {
		return sum, err
	}
	sum.Members = len(members)
	today := s.resolver.Resolve(c, now)

	for _, m := range members {
		checkins, err := s.store.ListCheckins(ctx, c.ID, m.UserID)
		if err != nil {
			return sum, err
		}
		l := ledger.New(s.resolver, c, m, habit.Selection{}, checkins)
		res := l.Sweep(now)

		if res.Changed() {
			if err := s.store.UpdateMembershipState(ctx, l.Membership()); err != nil {
				return sum, fmt.Errorf("failed to persist sweep for %s: %w", m.UserID, err)
			}
			sum.Updated++
		}
		if res.BecameOut {
			sum.WentOut++
			membersOut.Inc()
			s.notifier.NotifyMembers(ctx, members, uuid.Nil, notification.TypeMemberOut, map[string]any{
				"name":         m.DisplayName,
				"challenge":    c.Name,
				"challenge_id": c.ID.String(),
			})
			s.live.Publish(LiveEvent{
				Type:        LiveMemberOut,
				ChallengeID: c.ID,
				UserID:      m.UserID,
				Data:        map[string]any{"name": m.DisplayName},
				At:          now,
			})
		}
		if res.AtRisk && s.remindAtRisk(ctx, c, l.Membership(), today.Number, now) {
			sum.AtRisk++
		}
	}

	if sum.Updated > 0 {
		s.leaderboards.Invalidate(ctx, c.ID)
	}

	if today.Phase == calendar.PhaseEnded && c.IsActive {
		if err := s.store.DeactivateChallenge(ctx, c.ID); err != nil {
			return sum, err
		}
		sum.Deactivated = true
	}
	return sum, nil
}

// remindAtRisk sends at most one reminder per member and day.
func (s *CheckinService) remindAtRisk(ctx context.Context, c challenge.Challenge, m challenge.Membership, day int, now time.Time) bool {
	if now.Sub(s.resolver.Truncate(now)) < atRiskFromHour*time.Hour {
		return false
	}

	key := fmt.Sprintf("at_risk:%s:%s:%d", c.ID, m.UserID, day)
	var sent bool
	if err := s.cache.Get(ctx, key, &sent); err == nil {
		return false
	} else if !errors.Is(err, cache.ErrKeyNotFound) {
		logger.Log.Warn("at-risk dedupe lookup failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := s.cache.Set(ctx, key, true, atRiskTTL); err != nil {
		logger.Log.Warn("at-risk dedupe write failed", zap.String("key", key), zap.Error(err))
	}

	s.notify(ctx, m.UserID, notification.TypeStreakAtRisk, map[string]any{
		"streak":       m.CurrentStreak,
		"challenge":    c.Name,
		"challenge_id": c.ID.String(),
	})
	return true
}

// SweepAll sweeps every active challenge. A failing challenge is logged and
// skipped.
func (s *CheckinService) SweepAll(ctx context.Context, now time.Time) error {
	challenges, err := s.store.ListActiveChallenges(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active challenges: %w", err)
	}

	for _, c := range challenges {
		if err := ctx.Err(); err != nil {
			return err
		}
		sum, err := s.SweepChallenge(ctx, c, now)
		if err != nil {
			logger.Log.Error("sweep failed", zap.Stringer("challenge_id", c.ID), zap.Error(err))
			continue
		}
		if sum.Updated > 0 || sum.Deactivated {
			logger.Log.Info("challenge swept",
				zap.Stringer("challenge_id", c.ID),
				zap.Int("members", sum.Members),
				zap.Int("updated", sum.Updated),
				zap.Int("went_out", sum.WentOut),
				zap.Bool("deactivated", sum.Deactivated),
			)
		}
	}
	return nil
}
