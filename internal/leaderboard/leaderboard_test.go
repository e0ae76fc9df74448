package leaderboard

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streakzillaAPI/internal/types/challenge"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func member(name string, points, streak, joinedDay int) challenge.Membership {
	return challenge.Membership{
		UserID:        uuid.New(),
		DisplayName:   name,
		TotalPoints:   points,
		CurrentStreak: streak,
		JoinedAt:      day0.AddDate(0, 0, joinedDay),
	}
}

func names(standings []Standing) []string {
	out := make([]string, len(standings))
	for i, s := range standings {
		out[i] = s.Membership.DisplayName
	}
	return out
}

func TestRankTieBreaks(t *testing.T) {
	a := member("A", 100, 5, 0)
	b := member("B", 100, 5, 1)
	c := member("C", 100, 7, 3)
	d := member("D", 150, 0, 9)

	got := Rank([]challenge.Membership{b, a, c, d})
	assert.Equal(t, []string{"D", "C", "A", "B"}, names(got))
	for i, s := range got {
		assert.Equal(t, i+1, s.Rank)
	}
}

func TestRankIsDeterministic(t *testing.T) {
	members := []challenge.Membership{
		member("A", 50, 2, 0),
		member("B", 50, 2, 0),
		member("C", 50, 2, 0),
		member("D", 10, 1, 2),
		member("E", 90, 4, 1),
	}
	want := names(Rank(members))

	for range 20 {
		shuffled := append([]challenge.Membership(nil), members...)
		rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, names(Rank(shuffled)))
	}
}

func TestRankDoesNotModifyInput(t *testing.T) {
	members := []challenge.Membership{member("A", 1, 0, 0), member("B", 2, 0, 0)}
	Rank(members)
	assert.Equal(t, "A", members[0].DisplayName)
	assert.Empty(t, Rank(nil))
}

func TestBuildSetsUserPosition(t *testing.T) {
	a := member("A", 10, 1, 0)
	b := member("B", 20, 1, 0)
	id := uuid.New()

	lb := Build(id, []challenge.Membership{a, b}, a.UserID, day0)
	require.NotNil(t, lb.UserPosition)
	assert.Equal(t, 2, lb.UserPosition.Rank)
	assert.Equal(t, 2, lb.TotalUsers)
	assert.Equal(t, "B", lb.Entries[0].Username)

	assert.Nil(t, lb.WithUser(uuid.New()).UserPosition)
	assert.Equal(t, 1, lb.WithUser(b.UserID).UserPosition.Rank)
}
