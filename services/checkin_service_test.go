package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streakzillaAPI/internal/ledger"
	"streakzillaAPI/internal/notification"
	"streakzillaAPI/internal/types/challenge"
	"streakzillaAPI/internal/types/checkin"
)

func TestSubmitCheckin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.checkins.SubmitCheckin(ctx, f.member.ID, f.challenge.ID, checkin.SubmitRequest{
		CompletedHabitIDs: f.ids(0, 1, 2),
	}, at(3, 10))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Checkin.DayNumber)
	assert.Equal(t, 45, res.PointsEarned)
	assert.Equal(t, 45, res.TotalPoints)
	assert.Equal(t, 1, res.CurrentStreak)
	assert.Equal(t, 3, res.LivesRemaining)

	m := f.membership(f.member.ID)
	assert.Equal(t, 45, m.TotalPoints)
	assert.Equal(t, 1, m.CurrentStreak)

	_, err = f.checkins.SubmitCheckin(ctx, f.member.ID, f.challenge.ID, checkin.SubmitRequest{
		CompletedHabitIDs: f.ids(0),
	}, at(3, 11))
	assert.ErrorIs(t, err, ledger.ErrAlreadyCheckedIn)
	assert.Equal(t, 45, f.membership(f.member.ID).TotalPoints)

	live := f.live.ofType(LiveCheckin)
	require.Len(t, live, 1)
	assert.Equal(t, f.member.ID, live[0].UserID)
	assert.Equal(t, f.challenge.ID, live[0].ChallengeID)
}

func TestSubmitCheckinLosesRace(t *testing.T) {
	f := newFixture(t)
	f.store.appendCheckinFn = func(checkin.Checkin, int) (challenge.Membership, error) {
		return challenge.Membership{}, ledger.ErrAlreadyCheckedIn
	}

	_, err := f.checkins.SubmitCheckin(context.Background(), f.member.ID, f.challenge.ID, checkin.SubmitRequest{
		CompletedHabitIDs: f.ids(0),
	}, at(3, 10))
	assert.ErrorIs(t, err, ledger.ErrAlreadyCheckedIn)
}

func TestSubmitCheckinRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.checkins.SubmitCheckin(ctx, f.member.ID, f.challenge.ID, checkin.SubmitRequest{
		CompletedHabitIDs: []uuid.UUID{uuid.New()},
	}, at(3, 10))
	assert.ErrorIs(t, err, ledger.ErrEmptySelection)

	_, err = f.checkins.SubmitCheckin(ctx, f.member.ID, f.challenge.ID, checkin.SubmitRequest{
		DayNumber:         2,
		CompletedHabitIDs: f.ids(0),
	}, at(3, 10))
	assert.ErrorIs(t, err, ledger.ErrDayNotEligible)

	stranger := f.store.addProfile("mallory")
	_, err = f.checkins.SubmitCheckin(ctx, stranger.ID, f.challenge.ID, checkin.SubmitRequest{
		CompletedHabitIDs: f.ids(0),
	}, at(3, 10))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.checkins.SubmitCheckin(ctx, f.member.ID, uuid.New(), checkin.SubmitRequest{}, at(3, 10))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitCheckinMilestone(t *testing.T) {
	f := newFixture(t)
	f.logDays(f.member.ID, 1, 2, 3, 4, 5, 6)
	m := f.membership(f.member.ID)
	m.CurrentStreak = 6
	f.setMembership(m)

	res, err := f.checkins.SubmitCheckin(context.Background(), f.member.ID, f.challenge.ID, checkin.SubmitRequest{
		CompletedHabitIDs: f.ids(0),
	}, at(7, 8))
	require.NoError(t, err)
	assert.Equal(t, 7, res.CurrentStreak)

	sent := f.notifier.ofType(notification.TypeStreakMilestone)
	require.Len(t, sent, 1)
	assert.Equal(t, f.member.ID, sent[0].UserID)
	assert.Equal(t, 7, sent[0].Data["streak"])
}

func TestRedeemLife(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.logDays(f.member.ID, 1)

	res, err := f.checkins.RedeemLife(ctx, f.member.ID, f.challenge.ID, checkin.RedeemRequest{
		DayNumber:         2,
		CompletedHabitIDs: f.ids(1),
	}, at(3, 10))
	require.NoError(t, err)

	assert.True(t, res.Checkin.ViaLife)
	require.NotNil(t, res.Checkin.Note)
	assert.Equal(t, ledger.DefaultLifeNote, *res.Checkin.Note)
	assert.Equal(t, 2, res.LivesRemaining)
	assert.Equal(t, 2, res.CurrentStreak)
	assert.Equal(t, 15, res.TotalPoints)
	assert.Len(t, f.notifier.ofType(notification.TypeLifeUsed), 1)

	_, err = f.checkins.RedeemLife(ctx, f.member.ID, f.challenge.ID, checkin.RedeemRequest{
		DayNumber:         3,
		CompletedHabitIDs: f.ids(1),
	}, at(3, 10))
	assert.ErrorIs(t, err, ledger.ErrDayNotEligible)
}

func TestRedeemLifeWithoutLives(t *testing.T) {
	f := newFixture(t)
	m := f.membership(f.member.ID)
	m.LivesRemaining = 0
	f.setMembership(m)

	_, err := f.checkins.RedeemLife(context.Background(), f.member.ID, f.challenge.ID, checkin.RedeemRequest{
		DayNumber:         1,
		CompletedHabitIDs: f.ids(0),
	}, at(3, 10))
	assert.ErrorIs(t, err, ledger.ErrNoLivesRemaining)
}

func TestHistoryAndMissedDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.logDays(f.member.ID, 2)

	entries, err := f.checkins.History(ctx, f.member.ID, f.challenge.ID, 0, at(3, 10))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 3, entries[0].DayNumber)
	assert.Equal(t, string(ledger.StateOpen), entries[0].State)
	assert.True(t, entries[1].Logged)
	assert.Equal(t, string(ledger.StateMissed), entries[2].State)

	missed, err := f.checkins.MissedDays(ctx, f.member.ID, f.challenge.ID, at(3, 10))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, missed.Days)
	assert.Equal(t, 3, missed.LivesRemaining)
}

func TestFeed(t *testing.T) {
	f := newFixture(t)
	f.logDays(f.member.ID, 1, 2)
	f.logDays(f.admin.ID, 1)

	items, err := f.checkins.Feed(context.Background(), f.admin.ID, f.challenge.ID, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].DayNumber)
	assert.Equal(t, "bob", items[0].DisplayName)
}

func TestSweepChallengeKnocksOutMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m := f.membership(f.member.ID)
	m.LivesRemaining = 0
	f.setMembership(m)

	sum, err := f.checkins.SweepChallenge(ctx, f.challenge, at(3, 10))
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Members)
	assert.Equal(t, 1, sum.WentOut)
	assert.True(t, f.membership(f.member.ID).IsOut)
	assert.False(t, f.membership(f.admin.ID).IsOut)
	assert.Len(t, f.notifier.ofType(notification.TypeMemberOut), 2)

	again, err := f.checkins.SweepChallenge(ctx, f.challenge, at(3, 11))
	require.NoError(t, err)
	assert.Zero(t, again.WentOut)
}

func TestSweepChallengeStreakReset(t *testing.T) {
	f := newFixture(t)
	f.logDays(f.member.ID, 1)
	m := f.membership(f.member.ID)
	m.CurrentStreak = 1
	f.setMembership(m)

	sum, err := f.checkins.SweepChallenge(context.Background(), f.challenge, at(3, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Updated)
	assert.Zero(t, f.membership(f.member.ID).CurrentStreak)
}

func TestSweepChallengeAtRiskOncePerDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.logDays(f.member.ID, 1, 2)
	m := f.membership(f.member.ID)
	m.CurrentStreak = 2
	f.setMembership(m)

	sum, err := f.checkins.SweepChallenge(ctx, f.challenge, at(3, 9))
	require.NoError(t, err)
	assert.Zero(t, sum.AtRisk)

	sum, err = f.checkins.SweepChallenge(ctx, f.challenge, at(3, 19))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.AtRisk)

	sum, err = f.checkins.SweepChallenge(ctx, f.challenge, at(3, 21))
	require.NoError(t, err)
	assert.Zero(t, sum.AtRisk)

	assert.Len(t, f.notifier.ofType(notification.TypeStreakAtRisk), 1)
}

func TestSweepAllDeactivatesEndedChallenges(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.checkins.SweepAll(context.Background(), at(32, 10)))

	c, err := f.store.GetChallenge(context.Background(), f.challenge.ID)
	require.NoError(t, err)
	assert.False(t, c.IsActive)
}
