package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"streakzillaAPI/internal/types/checkin"
	"streakzillaAPI/services"
)

type CheckinService interface {
	SubmitCheckin(ctx context.Context, userID, challengeID uuid.UUID, req checkin.SubmitRequest, now time.Time) (*checkin.Result, error)
	RedeemLife(ctx context.Context, userID, challengeID uuid.UUID, req checkin.RedeemRequest, now time.Time) (*checkin.Result, error)
	History(ctx context.Context, userID, challengeID uuid.UUID, windowDays int, now time.Time) ([]checkin.HistoryEntry, error)
	MissedDays(ctx context.Context, userID, challengeID uuid.UUID, now time.Time) (*services.MissedDaysView, error)
	Feed(ctx context.Context, userID, challengeID uuid.UUID, limit int) ([]checkin.FeedItem, error)
}

type CheckinHandler struct {
	users    UserResolver
	checkins CheckinService
	now      func() time.Time
}

func NewCheckinHandler(users UserResolver, checkins CheckinService) *CheckinHandler {
	return &CheckinHandler{users: users, checkins: checkins, now: time.Now}
}

// intQuery returns fallback when the parameter is absent and false when it
// is not a number.
func intQuery(r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}

func (h *CheckinHandler) Submit(w http.ResponseWriter, r *http.Request) {
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

	var req checkin.SubmitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.checkins.SubmitCheckin(ctx, userID, challengeID, req, h.now())
	if err != nil {
		respondWithServiceError(w, "submit checkin", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, res)
}

func (h *CheckinHandler) RedeemLife(w http.ResponseWriter, r *http.Request) {
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

	var req checkin.RedeemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.checkins.RedeemLife(ctx, userID, challengeID, req, h.now())
	if err != nil {
		respondWithServiceError(w, "redeem life", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, res)
}

func (h *CheckinHandler) History(w http.ResponseWriter, r *http.Request) {
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
	days, ok := intQuery(r, "days", services.DefaultHistoryDays)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "days must be a number")
		return
	}

	entries, err := h.checkins.History(ctx, userID, challengeID, days, h.now())
	if err != nil {
		respondWithServiceError(w, "history", err)
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}

func (h *CheckinHandler) MissedDays(w http.ResponseWriter, r *http.Request) {
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

	missed, err := h.checkins.MissedDays(ctx, userID, challengeID, h.now())
	if err != nil {
		respondWithServiceError(w, "missed days", err)
		return
	}
	respondWithJSON(w, http.StatusOK, missed)
}

func (h *CheckinHandler) Feed(w http.ResponseWriter, r *http.Request) {
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
	limit, ok := intQuery(r, "limit", services.DefaultFeedLimit)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "limit must be a number")
		return
	}

	items, err := h.checkins.Feed(ctx, userID, challengeID, limit)
	if err != nil {
		respondWithServiceError(w, "feed", err)
		return
	}
	if items == nil {
		items = []checkin.FeedItem{}
	}
	respondWithJSON(w, http.StatusOK, items)
}
