package stats

import (
	"math"

	"streakzillaAPI/internal/calendar"
	"streakzillaAPI/internal/types/challenge"
)

// ChallengeStats is the progress summary shown on the dashboard and the
// public watcher page.
type ChallengeStats struct {
	DaysCompleted   int     `json:"days_completed"`
	DaysRemaining   *int    `json:"days_remaining,omitempty"`
	ProgressPercent float64 `json:"progress_percent"`
	TotalMembers    int     `json:"total_members"`
	ActiveMembers   int     `json:"active_members"`
	MembersOut      int     `json:"members_out"`
	TotalPoints     int     `json:"total_points"`
	AverageStreak   int     `json:"average_streak"`
	LongestStreak   int     `json:"longest_streak"`
}

// UserStats aggregates a user's memberships for the profile screen.
type UserStats struct {
	ChallengesJoined int `json:"challenges_joined"`
	ActiveChallenges int `json:"active_challenges"`
	TotalPoints      int `json:"total_points"`
	BestStreak       int `json:"best_streak"`
	TotalCheckins    int `json:"total_checkins"`
}

func ForChallenge(day calendar.Day, members []challenge.Membership) ChallengeStats {
	s := ChallengeStats{
		DaysCompleted: max(0, day.Offset),
		DaysRemaining: day.DaysRemaining,
		TotalMembers:  len(members),
	}

	if day.DaysRemaining != nil {
		total := s.DaysCompleted + *day.DaysRemaining
		if total > 0 {
			s.ProgressPercent = math.Round(float64(s.DaysCompleted)/float64(total)*1000) / 10
		}
	}

	streakSum := 0
	for _, m := range members {
		if m.IsOut {
			s.MembersOut++
		} else {
			s.ActiveMembers++
		}
		s.TotalPoints += m.TotalPoints
		streakSum += m.CurrentStreak
		s.LongestStreak = max(s.LongestStreak, m.CurrentStreak)
	}
	if len(members) > 0 {
		s.AverageStreak = int(math.Round(float64(streakSum) / float64(len(members))))
	}

	return s
}
