package checkin

import (
	"time"

	"github.com/google/uuid"
)

// Checkin is one day's submission by one membership. Rows are append-only.
type Checkin struct {
	ID                uuid.UUID   `json:"id" db:"id"`
	ChallengeID       uuid.UUID   `json:"challenge_id" db:"group_id"`
	UserID            uuid.UUID   `json:"user_id" db:"user_id"`
	DayNumber         int         `json:"day_number" db:"day_number"`
	CompletedHabitIDs []uuid.UUID `json:"completed_habit_ids" db:"completed_habit_ids"`
	PointsEarned      int         `json:"points_earned" db:"points_earned"`
	Note              *string     `json:"note,omitempty" db:"note"`
	PhotoRef          *string     `json:"photo_ref,omitempty" db:"photo_path"`
	ViaLife           bool        `json:"via_life" db:"via_life"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
}

// HistoryEntry is the read-only day-by-day view used by activity charts.
type HistoryEntry struct {
	Date      time.Time `json:"date"`
	DayNumber int       `json:"day_number"`
	Logged    bool      `json:"logged"`
	ViaLife   bool      `json:"via_life"`
	State     string    `json:"state"`
}

// FeedItem is a check-in joined with the author's profile for the group feed.
type FeedItem struct {
	Checkin
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

type SubmitRequest struct {
	DayNumber         int         `json:"day_number" validate:"gte=0"`
	CompletedHabitIDs []uuid.UUID `json:"completed_habit_ids"`
	Note              *string     `json:"note,omitempty" validate:"omitempty,max=500"`
	PhotoRef          *string     `json:"photo_ref,omitempty" validate:"omitempty,max=512"`
}

type RedeemRequest struct {
	DayNumber         int         `json:"day_number" validate:"required,gte=1"`
	CompletedHabitIDs []uuid.UUID `json:"completed_habit_ids"`
}

// Result is returned to clients after a successful submission.
type Result struct {
	Checkin        Checkin `json:"checkin"`
	PointsEarned   int     `json:"points_earned"`
	TotalPoints    int     `json:"total_points"`
	CurrentStreak  int     `json:"current_streak"`
	LivesRemaining int     `json:"lives_remaining"`
}
