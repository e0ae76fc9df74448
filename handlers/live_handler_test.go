package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streakzillaAPI/middleware"
	"streakzillaAPI/services"
)

type memberSet map[uuid.UUID]bool

func (m memberSet) CheckMember(_ context.Context, userID, _ uuid.UUID) error {
	if !m[userID] {
		return services.ErrForbidden
	}
	return nil
}

// fakeAuth trusts the X-Test-User header so the websocket dialer can
// authenticate without a real token.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Test-User"); id != "" {
			r = r.WithContext(middleware.WithClerkID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func TestLiveConnect(t *testing.T) {
	hub := services.NewLiveHub()
	h := NewLiveHandler(knownUsers, memberSet{testUserID: true}, hub)

	r := mux.NewRouter()
	r.Use(fakeAuth)
	r.HandleFunc("/challenges/{id}/live", h.Connect)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/challenges/" + testChallengeID.String() + "/live"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"X-Test-User": {"user_alice"}})
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Rooms() == 1 }, time.Second, 10*time.Millisecond)
}

func TestLiveConnectRejectsNonMembers(t *testing.T) {
	h := NewLiveHandler(knownUsers, memberSet{}, services.NewLiveHub())

	rec := httptest.NewRecorder()
	h.Connect(rec, request(http.MethodGet, "/", "", "user_alice"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
