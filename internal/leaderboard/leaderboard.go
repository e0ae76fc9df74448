package leaderboard

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"

	"streakzillaAPI/internal/types/challenge"
)

type LeaderboardEntry struct {
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	Username       string    `json:"username" db:"display_name"`
	ImageURL       *string   `json:"image_url" db:"avatar_url"`
	Rank           int       `json:"rank"`
	TotalPoints    int       `json:"total_points" db:"total_points"`
	CurrentStreak  int       `json:"current_streak" db:"current_streak"`
	LivesRemaining int       `json:"lives_remaining" db:"lives_remaining"`
	IsOut          bool      `json:"is_out" db:"is_out"`
	JoinedAt       time.Time `json:"joined_at" db:"joined_at"`
}

type Leaderboard struct {
	ChallengeID  uuid.UUID           `json:"challenge_id"`
	Entries      []*LeaderboardEntry `json:"entries"`
	UserPosition *LeaderboardEntry   `json:"user_position"`
	TotalUsers   int                 `json:"total_users"`
	GeneratedAt  time.Time           `json:"generated_at"`
}

// Standing is one ranked membership.
type Standing struct {
	Rank       int
	Membership challenge.Membership
}

func compare(a, b challenge.Membership) int {
	if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
		return c
	}
	if c := cmp.Compare(b.CurrentStreak, a.CurrentStreak); c != 0 {
		return c
	}
	if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.UserID.String(), b.UserID.String())
}

// Rank orders memberships by points, then streak (both descending), then
// join time ascending. The user id settles anything left so ranks run 1..N
// with no ties. The input is not modified.
func Rank(members []challenge.Membership) []Standing {
	sorted := slices.Clone(members)
	slices.SortFunc(sorted, compare)

	out := make([]Standing, len(sorted))
	for i, m := range sorted {
		out[i] = Standing{Rank: i + 1, Membership: m}
	}
	return out
}

// Build ranks the members and marks the caller's own position when userID is
// one of them.
func Build(challengeID uuid.UUID, members []challenge.Membership, userID uuid.UUID, now time.Time) *Leaderboard {
	standings := Rank(members)
	lb := &Leaderboard{
		ChallengeID: challengeID,
		Entries:     make([]*LeaderboardEntry, len(standings)),
		TotalUsers:  len(standings),
		GeneratedAt: now,
	}
	for i, s := range standings {
		lb.Entries[i] = entryOf(s)
	}
	lb.WithUser(userID)
	return lb
}

// WithUser sets UserPosition for a cached board.
func (lb *Leaderboard) WithUser(userID uuid.UUID) *Leaderboard {
	lb.UserPosition = nil
	for _, e := range lb.Entries {
		if e.UserID == userID {
			lb.UserPosition = e
			break
		}
	}
	return lb
}

func entryOf(s Standing) *LeaderboardEntry {
	m := s.Membership
	return &LeaderboardEntry{
		UserID:         m.UserID,
		Username:       m.DisplayName,
		ImageURL:       m.AvatarURL,
		Rank:           s.Rank,
		TotalPoints:    m.TotalPoints,
		CurrentStreak:  m.CurrentStreak,
		LivesRemaining: m.LivesRemaining,
		IsOut:          m.IsOut,
		JoinedAt:       m.JoinedAt,
	}
}
