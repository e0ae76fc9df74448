package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streakzillaAPI/internal/types/chat"
)

func TestChat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.chat.PostMessage(ctx, f.member.ID, f.challenge.ID, chat.PostMessageRequest{Message: " day 3 done "})
	require.NoError(t, err)
	msg, err := f.chat.PostMessage(ctx, f.admin.ID, f.challenge.ID, chat.PostMessageRequest{Message: "nice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", msg.DisplayName)
	assert.Len(t, f.live.ofType(LiveMessage), 2)

	_, err = f.chat.PostMessage(ctx, f.admin.ID, f.challenge.ID, chat.PostMessageRequest{Message: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	stranger := f.store.addProfile("mallory")
	_, err = f.chat.PostMessage(ctx, stranger.ID, f.challenge.ID, chat.PostMessageRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrForbidden)

	msgs, err := f.chat.ListMessages(ctx, f.member.ID, f.challenge.ID, time.Time{}, 0, at(3, 10))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "nice", msgs[0].Message)
	assert.Equal(t, "day 3 done", msgs[1].Message)

	older, err := f.chat.ListMessages(ctx, f.member.ID, f.challenge.ID, msgs[0].CreatedAt, 10, at(3, 10))
	require.NoError(t, err)
	require.Len(t, older, 1)
	assert.Equal(t, "day 3 done", older[0].Message)
}
