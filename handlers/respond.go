package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"streakzillaAPI/internal/habit"
	"streakzillaAPI/internal/invite"
	"streakzillaAPI/internal/ledger"
	"streakzillaAPI/internal/logger"
	"streakzillaAPI/middleware"
	"streakzillaAPI/services"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorTable is checked in order with errors.Is.
var errorTable = []errorMapping{
	{ledger.ErrAlreadyCheckedIn, http.StatusConflict, "already_checked_in"},
	{ledger.ErrEmptySelection, http.StatusBadRequest, "empty_selection"},
	{ledger.ErrNoLivesRemaining, http.StatusUnprocessableEntity, "no_lives_remaining"},
	{ledger.ErrDayNotEligible, http.StatusUnprocessableEntity, "day_not_eligible"},
	{ledger.ErrMemberOut, http.StatusUnprocessableEntity, "member_out"},
	{habit.ErrSelectionLocked, http.StatusLocked, "selection_locked"},
	{habit.ErrInvalidSelection, http.StatusBadRequest, "invalid_selection"},
	{habit.ErrInvalidHabit, http.StatusBadRequest, "invalid_habit"},
	{invite.ErrInvalidCode, http.StatusBadRequest, "invalid_invite_code"},
	{services.ErrInvalidInviteCode, http.StatusNotFound, "invalid_invite_code"},
	{services.ErrAlreadyMember, http.StatusConflict, "already_member"},
	{services.ErrGroupLimit, http.StatusForbidden, "group_limit"},
	{services.ErrEditWindowClosed, http.StatusLocked, "edit_window_closed"},
	{services.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{services.ErrForbidden, http.StatusForbidden, "forbidden"},
	{services.ErrNotFound, http.StatusNotFound, "not_found"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
}

// respondWithServiceError maps domain errors onto HTTP. Unknown errors are
// logged and hidden behind a 500.
func respondWithServiceError(w http.ResponseWriter, op string, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			respondWithJSON(w, m.status, errorBody{Error: err.Error(), Code: m.code})
			return
		}
	}
	logger.Log.Error(op+" failed", zap.Error(err))
	respondWithJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			msgs[i] = fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param())
		} else {
			msgs[i] = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		}
	}
	return strings.Join(msgs, "; ")
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// UserResolver maps an authenticated Clerk subject onto a profile ID.
type UserResolver interface {
	ResolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error)
}

// currentUser writes 401/404 and returns false when the caller is unknown.
func currentUser(ctx context.Context, w http.ResponseWriter, users UserResolver) (uuid.UUID, bool) {
	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, false
	}
	userID, err := users.ResolveUserID(ctx, clerkID)
	if errors.Is(err, services.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "User not found")
		return uuid.Nil, false
	}
	if err != nil {
		respondWithServiceError(w, "resolve user", err)
		return uuid.Nil, false
	}
	return userID, true
}
