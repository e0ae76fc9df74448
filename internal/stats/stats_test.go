package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streakzillaAPI/internal/calendar"
	"streakzillaAPI/internal/types/challenge"
)

func TestForChallenge(t *testing.T) {
	remaining := 20
	day := calendar.Day{Number: 11, Offset: 10, Phase: calendar.PhaseActive, DaysRemaining: &remaining}
	members := []challenge.Membership{
		{TotalPoints: 100, CurrentStreak: 4},
		{TotalPoints: 50, CurrentStreak: 3},
		{TotalPoints: 0, CurrentStreak: 0, IsOut: true},
	}

	s := ForChallenge(day, members)
	assert.Equal(t, 10, s.DaysCompleted)
	require.NotNil(t, s.DaysRemaining)
	assert.Equal(t, 20, *s.DaysRemaining)
	assert.InDelta(t, 33.3, s.ProgressPercent, 0.001)
	assert.Equal(t, 3, s.TotalMembers)
	assert.Equal(t, 2, s.ActiveMembers)
	assert.Equal(t, 1, s.MembersOut)
	assert.Equal(t, 150, s.TotalPoints)
	assert.Equal(t, 2, s.AverageStreak)
	assert.Equal(t, 4, s.LongestStreak)
}

func TestForChallengePendingAndEmpty(t *testing.T) {
	day := calendar.Day{Number: 1, Offset: -2, Phase: calendar.PhasePending}
	s := ForChallenge(day, nil)
	assert.Equal(t, 0, s.DaysCompleted)
	assert.Nil(t, s.DaysRemaining)
	assert.Zero(t, s.AverageStreak)
	assert.Zero(t, s.ProgressPercent)
}
