package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"streakzillaAPI/internal/invite"
	"streakzillaAPI/internal/types/challenge"
	"streakzillaAPI/middleware"
	"streakzillaAPI/services"
)

type ChallengeService interface {
	CreateChallenge(ctx context.Context, userID uuid.UUID, req challenge.CreateChallengeRequest, now time.Time) (*challenge.Challenge, error)
	JoinChallenge(ctx context.Context, userID uuid.UUID, code string, now time.Time) (*challenge.Challenge, error)
	LeaveChallenge(ctx context.Context, userID, challengeID uuid.UUID) error
	DeleteChallenge(ctx context.Context, userID, challengeID uuid.UUID) error
	UpdateChallenge(ctx context.Context, userID, challengeID uuid.UUID, req challenge.UpdateChallengeRequest, now time.Time) (*challenge.Challenge, error)
	GetDashboard(ctx context.Context, userID, challengeID uuid.UUID, now time.Time) (*services.Dashboard, error)
	GetInvite(ctx context.Context, userID, challengeID uuid.UUID) (*invite.Invite, error)
	ListUserChallenges(ctx context.Context, userID uuid.UUID, now time.Time) ([]challenge.UserChallenge, error)
	GetWatcherView(ctx context.Context, challengeID, viewerID uuid.UUID, now time.Time) (*services.WatcherView, error)
}

type ChallengeHandler struct {
	users      UserResolver
	challenges ChallengeService
	now        func() time.Time
}

func NewChallengeHandler(users UserResolver, challenges ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{users: users, challenges: challenges, now: time.Now}
}

func (h *ChallengeHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w, h.users)
	if !ok {
		return
	}

	var req challenge.CreateChallengeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	c, err := h.challenges.CreateChallenge(ctx, userID, req, h.now())
	if err != nil {
		respondWithServiceError(w, "create challenge", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, c)
}

func (h *ChallengeHandler) Join(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w, h.users)
	if !ok {
		return
	}

	var req challenge.JoinChallengeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	c, err := h.challenges.JoinChallenge(ctx, userID, req.Code, h.now())
	if err != nil {
		respondWithServiceError(w, "join challenge", err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *ChallengeHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	d, err := h.challenges.GetDashboard(ctx, userID, challengeID, h.now())
	if err != nil {
		respondWithServiceError(w, "dashboard", err)
		return
	}
	respondWithJSON(w, http.StatusOK, d)
}

func (h *ChallengeHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req challenge.UpdateChallengeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	c, err := h.challenges.UpdateChallenge(ctx, userID, challengeID, req, h.now())
	if err != nil {
		respondWithServiceError(w, "update challenge", err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (h *ChallengeHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.challenges.DeleteChallenge(ctx, userID, challengeID); err != nil {
		respondWithServiceError(w, "delete challenge", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Challenge deleted"})
}

func (h *ChallengeHandler) Leave(w http.ResponseWriter, r *http.Request) {
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

	if err := h.challenges.LeaveChallenge(ctx, userID, challengeID); err != nil {
		respondWithServiceError(w, "leave challenge", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Left challenge"})
}

func (h *ChallengeHandler) Invite(w http.ResponseWriter, r *http.Request) {
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

	inv, err := h.challenges.GetInvite(ctx, userID, challengeID)
	if err != nil {
		respondWithServiceError(w, "invite", err)
		return
	}
	respondWithJSON(w, http.StatusOK, inv)
}

func (h *ChallengeHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w, h.users)
	if !ok {
		return
	}

	list, err := h.challenges.ListUserChallenges(ctx, userID, h.now())
	if err != nil {
		respondWithServiceError(w, "list challenges", err)
		return
	}
	if list == nil {
		list = []challenge.UserChallenge{}
	}
	respondWithJSON(w, http.StatusOK, list)
}

// Watch serves the public progress page. Signed-in viewers also get their
// own leaderboard position.
func (h *ChallengeHandler) Watch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	challengeID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	viewerID := uuid.Nil
	if clerkID, ok := middleware.GetClerkID(ctx); ok {
		id, err := h.users.ResolveUserID(ctx, clerkID)
		switch {
		case err == nil:
			viewerID = id
		case !errors.Is(err, services.ErrNotFound):
			respondWithServiceError(w, "watch", err)
			return
		}
	}

	v, err := h.challenges.GetWatcherView(ctx, challengeID, viewerID, h.now())
	if err != nil {
		respondWithServiceError(w, "watch", err)
		return
	}
	respondWithJSON(w, http.StatusOK, v)
}
