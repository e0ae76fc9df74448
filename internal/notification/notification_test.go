package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	title, body, ok := Render(TypeLifeUsed, map[string]any{"day": 4, "challenge": "January", "lives": 2})
	require.True(t, ok)
	assert.Equal(t, "Life used", title)
	assert.Equal(t, "Day 4 of January is covered. 2 lives left.", body)

	_, _, ok = Render("friend_request", nil)
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	userID := uuid.New()
	n, err := New(userID, TypeStreakMilestone, map[string]any{"streak": 7, "challenge": "75 Hard"})
	require.NoError(t, err)
	assert.Equal(t, userID, n.UserID)
	assert.Contains(t, n.Title, "7 day streak")

	_, err = New(userID, "unknown", nil)
	assert.Error(t, err)
}

func TestIsMilestone(t *testing.T) {
	assert.True(t, IsMilestone(7))
	assert.True(t, IsMilestone(100))
	assert.False(t, IsMilestone(8))
	assert.False(t, IsMilestone(0))
}
