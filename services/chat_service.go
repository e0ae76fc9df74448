package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"streakzillaAPI/internal/types/chat"
)

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200
)

type ChatService struct {
	store Store
	live  Broadcaster
}

func NewChatService(store Store) *ChatService {
	return &ChatService{store: store, live: noopBroadcaster{}}
}

func (s *ChatService) SetBroadcaster(b Broadcaster) {
	s.live = b
}

func (s *ChatService) PostMessage(ctx context.Context, userID, challengeID uuid.UUID, req chat.PostMessageRequest) (*chat.Message, error) {
	_, m, err := loadMembership(ctx, s.store, challengeID, userID)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, fmt.Errorf("%w: message is empty", ErrInvalidInput)
	}

	msg, err := s.store.InsertMessage(ctx, chat.Message{
		ID:          uuid.New(),
		ChallengeID: challengeID,
		UserID:      userID,
		Message:     text,
		DisplayName: m.DisplayName,
		AvatarURL:   m.AvatarURL,
	})
	if err != nil {
		return nil, err
	}
	s.live.Publish(LiveEvent{Type: LiveMessage, ChallengeID: challengeID, UserID: userID, Data: msg, At: msg.CreatedAt})
	return &msg, nil
}

// ListMessages pages backwards from before. A zero before means now.
func (s *ChatService) ListMessages(ctx context.Context, userID, challengeID uuid.UUID, before time.Time, limit int, now time.Time) ([]chat.Message, error) {
	if _, _, err := loadMembership(ctx, s.store, challengeID, userID); err != nil {
		return nil, err
	}
	if before.IsZero() {
		before = now.Add(time.Second)
	}
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	return s.store.ListMessages(ctx, challengeID, before, min(limit, MaxMessageLimit))
}
