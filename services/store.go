package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"streakzillaAPI/internal/habit"
	"streakzillaAPI/internal/notification"
	"streakzillaAPI/internal/stats"
	"streakzillaAPI/internal/types/challenge"
	"streakzillaAPI/internal/types/chat"
	"streakzillaAPI/internal/types/checkin"
	"streakzillaAPI/internal/types/profile"
)

// Lookups return ErrNotFound when the row does not exist.

type ProfileStore interface {
	UpsertProfile(ctx context.Context, req profile.CreateProfileRequest) (*profile.Profile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	GetProfileByClerkID(ctx context.Context, clerkID string) (*profile.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req profile.UpdateProfileRequest) (*profile.Profile, error)
	DeleteProfileByClerkID(ctx context.Context, clerkID string) error
	GetUserStats(ctx context.Context, id uuid.UUID) (stats.UserStats, error)
}

type ChallengeStore interface {
	// CreateChallenge inserts the challenge together with its admin membership.
	CreateChallenge(ctx context.Context, c challenge.Challenge, admin challenge.Membership) error
	GetChallenge(ctx context.Context, id uuid.UUID) (challenge.Challenge, error)
	GetChallengeByCode(ctx context.Context, code string) (challenge.Challenge, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	UpdateChallenge(ctx context.Context, c challenge.Challenge) error
	DeleteChallenge(ctx context.Context, id uuid.UUID) error
	DeactivateChallenge(ctx context.Context, id uuid.UUID) error
	ListActiveChallenges(ctx context.Context) ([]challenge.Challenge, error)
}

type MembershipStore interface {
	// AddMember returns ErrAlreadyMember on a duplicate.
	AddMember(ctx context.Context, m challenge.Membership) error
	RemoveMember(ctx context.Context, challengeID, userID uuid.UUID) error
	GetMembership(ctx context.Context, challengeID, userID uuid.UUID) (challenge.Membership, error)
	ListMembers(ctx context.Context, challengeID uuid.UUID) ([]challenge.Membership, error)
	CountUserMemberships(ctx context.Context, userID uuid.UUID) (int, error)
	ListUserChallenges(ctx context.Context, userID uuid.UUID) ([]challenge.UserChallenge, error)
	// UpdateMembershipState persists sweep results. is_out never goes back to false.
	UpdateMembershipState(ctx context.Context, m challenge.Membership) error
}

type HabitStore interface {
	ListHabits(ctx context.Context) ([]habit.Habit, error)
	// AddHabitIfAbsent returns the stored habit when the slug already exists.
	AddHabitIfAbsent(ctx context.Context, h habit.Habit) (habit.Habit, error)
	GetSelection(ctx context.Context, challengeID, userID uuid.UUID) (habit.Selection, error)
	ReplaceSelection(ctx context.Context, challengeID, userID uuid.UUID, habitIDs []uuid.UUID) error
}

type CheckinStore interface {
	ListCheckins(ctx context.Context, challengeID, userID uuid.UUID) ([]checkin.Checkin, error)
	ChallengeHasCheckins(ctx context.Context, challengeID uuid.UUID) (bool, error)
	// AppendCheckin inserts the check-in and applies its effect to the
	// membership in one transaction: points are added, the streak is set, and
	// a life is taken for redemptions. A duplicate day yields
	// ledger.ErrAlreadyCheckedIn; a redemption without lives yields
	// ledger.ErrNoLivesRemaining.
	AppendCheckin(ctx context.Context, ci checkin.Checkin, streak int) (challenge.Membership, error)
	ListFeed(ctx context.Context, challengeID uuid.UUID, limit int) ([]checkin.FeedItem, error)
}

type DeviceStore interface {
	UpsertDevice(ctx context.Context, userID uuid.UUID, req notification.RegisterDeviceRequest) error
	ListDevices(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error)
}

type ChatStore interface {
	InsertMessage(ctx context.Context, msg chat.Message) (chat.Message, error)
	ListMessages(ctx context.Context, challengeID uuid.UUID, before time.Time, limit int) ([]chat.Message, error)
}

// Store is everything the services need from persistence. PgStore is the
// production implementation.
type Store interface {
	ProfileStore
	ChallengeStore
	MembershipStore
	HabitStore
	CheckinStore
	DeviceStore
	ChatStore
}
