package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeStreakMilestone NotificationType = "streak_milestone"
	TypeLifeUsed        NotificationType = "life_used"
	TypeMemberOut       NotificationType = "member_out"
	TypeMemberJoined    NotificationType = "member_joined"
	TypeStreakAtRisk    NotificationType = "streak_at_risk"
)

// StreakMilestones are the streak lengths that trigger a celebration push.
var StreakMilestones = []int{7, 14, 21, 30, 50, 75, 100}

func IsMilestone(streak int) bool {
	for _, m := range StreakMilestones {
		if m == streak {
			return true
		}
	}
	return false
}

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Body      string           `json:"body" db:"body"`
	Data      map[string]any   `json:"data" db:"data"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type DeviceToken struct {
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	Token    string    `json:"token" db:"token"`
	Platform string    `json:"platform" db:"platform"`
}

// RegisterDeviceRequest upserts a push token for the calling user.
type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required,max=4096"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}

type Template struct {
	Title string
	Body  string
}

var templates = map[NotificationType]Template{
	TypeStreakMilestone: {Title: "🔥 {{streak}} day streak!", Body: "You have checked in {{streak}} days in a row in {{challenge}}."},
	TypeLifeUsed:        {Title: "Life used", Body: "Day {{day}} of {{challenge}} is covered. {{lives}} lives left."},
	TypeMemberOut:       {Title: "Out of lives", Body: "{{name}} is out of {{challenge}}."},
	TypeMemberJoined:    {Title: "New challenger", Body: "{{name}} joined {{challenge}}."},
	TypeStreakAtRisk:    {Title: "Your streak is at risk", Body: "Check in to {{challenge}} today to keep your {{streak}} day streak."},
}

// Render fills the type's template with data. Unknown types render empty.
func Render(t NotificationType, data map[string]any) (title, body string, ok bool) {
	tpl, ok := templates[t]
	if !ok {
		return "", "", false
	}
	return fill(tpl.Title, data), fill(tpl.Body, data), true
}

func fill(s string, data map[string]any) string {
	for k, v := range data {
		s = strings.ReplaceAll(s, "{{"+k+"}}", fmt.Sprint(v))
	}
	return s
}

// New renders a notification ready for dispatch.
func New(userID uuid.UUID, t NotificationType, data map[string]any) (*Notification, error) {
	title, body, ok := Render(t, data)
	if !ok {
		return nil, fmt.Errorf("unknown notification type %q", t)
	}
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      t,
		Title:     title,
		Body:      body,
		Data:      data,
		CreatedAt: time.Now(),
	}, nil
}
