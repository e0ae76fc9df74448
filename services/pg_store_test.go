package services

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streakzillaAPI/internal/db"
	"streakzillaAPI/internal/ledger"
	"streakzillaAPI/internal/types/challenge"
	"streakzillaAPI/internal/types/checkin"
	"streakzillaAPI/internal/types/profile"
)

// setupTestDB connects to TEST_DATABASE_URL and applies the schema. Tests
// using it are skipped when no database is configured.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, dbURL)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, pool))
	t.Cleanup(pool.Close)
	return pool
}

func seedChallenge(t *testing.T, store *PgStore, lives int) (challenge.Challenge, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	p, err := store.UpsertProfile(ctx, profile.CreateProfileRequest{
		ClerkID:     "test_" + suffix,
		Email:       "test_" + suffix + "@example.com",
		DisplayName: "Tester " + suffix,
	})
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Second)
	days := 30
	c := challenge.Challenge{
		ID:           uuid.New(),
		Name:         "Store test " + suffix,
		InviteCode:   strings.ToUpper("T" + suffix[:5]),
		StartDate:    time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		DurationDays: &days,
		Mode:         challenge.ModeMedium,
		IsActive:     true,
		CreatedBy:    &p.ID,
		CreatedAt:    now,
	}
	admin := challenge.Membership{
		ID:             uuid.New(),
		ChallengeID:    c.ID,
		UserID:         p.ID,
		Role:           challenge.RoleAdmin,
		LivesRemaining: lives,
		JoinedAt:       now,
	}
	require.NoError(t, store.CreateChallenge(ctx, c, admin))

	t.Cleanup(func() {
		store.DeleteChallenge(context.Background(), c.ID)
		store.DeleteProfileByClerkID(context.Background(), p.ClerkID)
	})
	return c, p.ID
}

func TestPgStoreAppendCheckin(t *testing.T) {
	store := NewPgStore(setupTestDB(t))
	ctx := context.Background()
	c, userID := seedChallenge(t, store, 1)

	ci := checkin.Checkin{
		ID:           uuid.New(),
		ChallengeID:  c.ID,
		UserID:       userID,
		DayNumber:    1,
		PointsEarned: 40,
		CreatedAt:    time.Now().UTC(),
	}
	logged, err := store.ChallengeHasCheckins(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, logged)

	m, err := store.AppendCheckin(ctx, ci, 1)
	require.NoError(t, err)
	assert.Equal(t, 40, m.TotalPoints)
	assert.Equal(t, 1, m.CurrentStreak)

	logged, err = store.ChallengeHasCheckins(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, logged)

	ci.ID = uuid.New()
	_, err = store.AppendCheckin(ctx, ci, 1)
	assert.ErrorIs(t, err, ledger.ErrAlreadyCheckedIn)

	history, err := store.ListCheckins(ctx, c.ID, userID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestPgStoreLifeRedemption(t *testing.T) {
	store := NewPgStore(setupTestDB(t))
	ctx := context.Background()
	c, userID := seedChallenge(t, store, 1)

	redeem := func(day int) error {
		_, err := store.AppendCheckin(ctx, checkin.Checkin{
			ID:          uuid.New(),
			ChallengeID: c.ID,
			UserID:      userID,
			DayNumber:   day,
			ViaLife:     true,
			CreatedAt:   time.Now().UTC(),
		}, 0)
		return err
	}

	require.NoError(t, redeem(1))
	m, err := store.GetMembership(ctx, c.ID, userID)
	require.NoError(t, err)
	assert.Zero(t, m.LivesRemaining)

	assert.ErrorIs(t, redeem(2), ledger.ErrNoLivesRemaining)

	history, err := store.ListCheckins(ctx, c.ID, userID)
	require.NoError(t, err)
	assert.Len(t, history, 1, "a refused redemption must not leave a row behind")
}

func TestPgStoreDuplicateMembership(t *testing.T) {
	store := NewPgStore(setupTestDB(t))
	ctx := context.Background()
	c, userID := seedChallenge(t, store, 3)

	err := store.AddMember(ctx, challenge.Membership{
		ID:          uuid.New(),
		ChallengeID: c.ID,
		UserID:      userID,
		Role:        challenge.RoleMember,
		JoinedAt:    time.Now().UTC(),
	})
	assert.ErrorIs(t, err, ErrAlreadyMember)
}
