package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"streakzillaAPI/internal/logger"
	"streakzillaAPI/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type MembershipChecker interface {
	CheckMember(ctx context.Context, userID, challengeID uuid.UUID) error
}

type LiveRoom interface {
	Attach(challengeID, userID uuid.UUID, conn *websocket.Conn) *services.LiveClient
}

// LiveHandler streams check-ins, chat messages and membership changes of one
// challenge over a websocket.
type LiveHandler struct {
	users   UserResolver
	members MembershipChecker
	hub     LiveRoom
}

func NewLiveHandler(users UserResolver, members MembershipChecker, hub LiveRoom) *LiveHandler {
	return &LiveHandler{users: users, members: members, hub: hub}
}

func (h *LiveHandler) Connect(w http.ResponseWriter, r *http.Request) {
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
	if err := h.members.CheckMember(ctx, userID, challengeID); err != nil {
		respondWithServiceError(w, "live", err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		logger.Log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	h.hub.Attach(challengeID, userID, conn)
}
