package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streakzillaAPI/internal/types/profile"
)

func TestSyncFromClerk(t *testing.T) {
	store := newFakeStore()
	users := NewUserService(store)
	ctx := context.Background()

	data := profile.ClerkUserData{
		ID:                    "user_2abc",
		FirstName:             "Dana",
		LastName:              "Scully",
		PrimaryEmailAddressID: "e1",
		EmailAddresses:        []profile.ClerkEmailAddress{{ID: "e1", EmailAddress: "dana@fbi.gov"}},
	}
	created, err := users.SyncFromClerk(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, "Dana Scully", created.DisplayName)
	assert.Equal(t, "dana@fbi.gov", created.Email)

	data.Username = "dscully"
	updated, err := users.SyncFromClerk(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "dscully", updated.DisplayName)

	id, err := users.ResolveUserID(ctx, "user_2abc")
	require.NoError(t, err)
	assert.Equal(t, created.ID, id)

	_, err = users.SyncFromClerk(ctx, profile.ClerkUserData{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, users.DeleteByClerkID(ctx, "user_2abc"))
	_, err = users.ResolveUserID(ctx, "user_2abc")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, users.DeleteByClerkID(ctx, "user_2abc"), ErrNotFound)
}

func TestGetProfileWithStats(t *testing.T) {
	f := newFixture(t)
	f.logDays(f.member.ID, 1, 2)
	m := f.membership(f.member.ID)
	m.TotalPoints, m.CurrentStreak = 20, 2
	f.setMembership(m)

	users := NewUserService(f.store)
	p, err := users.GetProfile(context.Background(), f.member.ID)
	require.NoError(t, err)

	assert.Equal(t, "bob", p.DisplayName)
	assert.Equal(t, 1, p.Stats.ChallengesJoined)
	assert.Equal(t, 20, p.Stats.TotalPoints)
	assert.Equal(t, 2, p.Stats.BestStreak)
	assert.Equal(t, 2, p.Stats.TotalCheckins)

	bio := "early riser"
	updated, err := users.UpdateProfile(context.Background(), f.member.ID, profile.UpdateProfileRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "early riser", *updated.Bio)
}
