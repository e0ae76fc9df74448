package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"streakzillaAPI/internal/leaderboard"
)

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, challengeID, userID uuid.UUID, now time.Time) (*leaderboard.Leaderboard, error)
}

type LeaderboardHandler struct {
	users        UserResolver
	leaderboards LeaderboardService
	now          func() time.Time
}

func NewLeaderboardHandler(users UserResolver, leaderboards LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{users: users, leaderboards: leaderboards, now: time.Now}
}

func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	board, err := h.leaderboards.GetLeaderboard(ctx, challengeID, userID, h.now())
	if err != nil {
		respondWithServiceError(w, "leaderboard", err)
		return
	}
	respondWithJSON(w, http.StatusOK, board)
}
