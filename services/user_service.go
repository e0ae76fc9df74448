package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"streakzillaAPI/internal/logger"
	"streakzillaAPI/internal/stats"
	"streakzillaAPI/internal/types/profile"
)

type UserService struct {
	store ProfileStore
}

func NewUserService(store ProfileStore) *UserService {
	return &UserService{store: store}
}

// ProfileWithStats is the /user response.
type ProfileWithStats struct {
	*profile.Profile
	Stats stats.UserStats `json:"stats"`
}

// ResolveUserID maps the Clerk subject of a request onto the profile ID.
func (s *UserService) ResolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	p, err := s.store.GetProfileByClerkID(ctx, clerkID)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// SyncFromClerk creates or refreshes the profile for a Clerk user. It serves
// both user.created and user.updated, so redelivered webhooks are harmless.
func (s *UserService) SyncFromClerk(ctx context.Context, data profile.ClerkUserData) (*profile.Profile, error) {
	if data.ID == "" {
		return nil, fmt.Errorf("%w: clerk user id is empty", ErrInvalidInput)
	}
	p, err := s.store.UpsertProfile(ctx, data.ToCreateRequest())
	if err != nil {
		return nil, err
	}
	logger.Log.Info("profile synced", zap.String("clerk_id", data.ID), zap.Stringer("user_id", p.ID))
	return p, nil
}

func (s *UserService) DeleteByClerkID(ctx context.Context, clerkID string) error {
	if err := s.store.DeleteProfileByClerkID(ctx, clerkID); err != nil {
		return err
	}
	logger.Log.Info("profile deleted", zap.String("clerk_id", clerkID))
	return nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileWithStats, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	st, err := s.store.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileWithStats{Profile: p, Stats: st}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req profile.UpdateProfileRequest) (*profile.Profile, error) {
	return s.store.UpdateProfile(ctx, userID, req)
}
