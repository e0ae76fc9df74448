package challenge

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Mode string

const (
	ModeHard   Mode = "hard"
	ModeMedium Mode = "medium"
	ModeSoft   Mode = "soft"
	ModeCustom Mode = "custom"
	ModeOpen   Mode = "open"
)

// DurationPresets are the durations offered for the non-custom, non-open modes.
var DurationPresets = []int{15, 30, 45, 60, 75}

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeHard, ModeMedium, ModeSoft, ModeCustom, ModeOpen:
		return m, nil
	default:
		return "", fmt.Errorf("unknown challenge mode %q", s)
	}
}

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Challenge is a time-boxed group activity, stored as a "group".
type Challenge struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	InviteCode   string     `json:"invite_code,omitempty" db:"code"`
	StartDate    time.Time  `json:"start_date" db:"start_date"`
	DurationDays *int       `json:"duration_days,omitempty" db:"duration_days"`
	Mode         Mode       `json:"mode" db:"mode"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedBy    *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// OpenEnded reports whether the challenge has no end date.
func (c Challenge) OpenEnded() bool {
	return c.DurationDays == nil
}

// Membership is one user's participation in one Challenge.
type Membership struct {
	ID             uuid.UUID `json:"id" db:"id"`
	ChallengeID    uuid.UUID `json:"challenge_id" db:"group_id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	Role           Role      `json:"role" db:"role"`
	LivesRemaining int       `json:"lives_remaining" db:"lives_remaining"`
	TotalPoints    int       `json:"total_points" db:"total_points"`
	CurrentStreak  int       `json:"current_streak" db:"current_streak"`
	IsOut          bool      `json:"is_out" db:"is_out"`
	RestartCount   int       `json:"restart_count" db:"restart_count"`
	SkipsUsed      int       `json:"skips_used" db:"skips_used"`
	JoinedAt       time.Time `json:"joined_at" db:"joined_at"`

	DisplayName string  `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

func (m Membership) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// UserChallenge is the row shown on a user's home screen.
type UserChallenge struct {
	Challenge  Challenge  `json:"challenge"`
	Membership Membership `json:"membership"`
	DayNumber  int        `json:"day_number"`
	Phase      string     `json:"phase"`
}
