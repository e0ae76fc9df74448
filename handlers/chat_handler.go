package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"streakzillaAPI/internal/types/chat"
	"streakzillaAPI/services"
)

type ChatService interface {
	PostMessage(ctx context.Context, userID, challengeID uuid.UUID, req chat.PostMessageRequest) (*chat.Message, error)
	ListMessages(ctx context.Context, userID, challengeID uuid.UUID, before time.Time, limit int, now time.Time) ([]chat.Message, error)
}

type ChatHandler struct {
	users UserResolver
	chat  ChatService
	now   func() time.Time
}

func NewChatHandler(users UserResolver, chat ChatService) *ChatHandler {
	return &ChatHandler{users: users, chat: chat, now: time.Now}
}

func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w, h.users)
	if !ok {
		return
	}
	challengeID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req chat.PostMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	msg, err := h.chat.PostMessage(ctx, userID, challengeID, req)
	if err != nil {
		respondWithServiceError(w, "post message", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, msg)
}

// List pages backwards with ?before=<RFC3339>&limit=N.
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w, h.users)
	if !ok {
		return
	}
	challengeID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var before time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "before must be an RFC3339 timestamp")
			return
		}
		before = t
	}
	limit, ok := intQuery(r, "limit", services.DefaultMessageLimit)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "limit must be a number")
		return
	}

	msgs, err := h.chat.ListMessages(ctx, userID, challengeID, before, limit, h.now())
	if err != nil {
		respondWithServiceError(w, "list messages", err)
		return
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	respondWithJSON(w, http.StatusOK, msgs)
}
