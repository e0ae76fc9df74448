package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streakzillaAPI/internal/habit"
	"streakzillaAPI/internal/invite"
	"streakzillaAPI/internal/leaderboard"
	"streakzillaAPI/internal/types/challenge"
	"streakzillaAPI/services"
)

// stubChallenges only implements what the tests below reach.
type stubChallenges struct {
	ChallengeService
	viewer   uuid.UUID
	joinCode string
}

func (s *stubChallenges) GetWatcherView(_ context.Context, _, viewerID uuid.UUID, _ time.Time) (*services.WatcherView, error) {
	s.viewer = viewerID
	return &services.WatcherView{Leaderboard: &leaderboard.Leaderboard{}}, nil
}

func (s *stubChallenges) JoinChallenge(_ context.Context, _ uuid.UUID, code string, _ time.Time) (*challenge.Challenge, error) {
	s.joinCode = code
	if code == "ZZZ777" {
		return nil, services.ErrInvalidInviteCode
	}
	if code == "ab" {
		return nil, invite.ErrInvalidCode
	}
	return &challenge.Challenge{ID: testChallengeID}, nil
}

func (s *stubChallenges) ListUserChallenges(context.Context, uuid.UUID, time.Time) ([]challenge.UserChallenge, error) {
	return nil, nil
}

func TestWatchResolvesOptionalViewer(t *testing.T) {
	stub := &stubChallenges{}
	h := NewChallengeHandler(knownUsers, stub)

	rec := httptest.NewRecorder()
	h.Watch(rec, request(http.MethodGet, "/", "", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uuid.Nil, stub.viewer)

	rec = httptest.NewRecorder()
	h.Watch(rec, request(http.MethodGet, "/", "", "user_alice"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testUserID, stub.viewer)

	// Signed in without a profile yet: treated as anonymous.
	rec = httptest.NewRecorder()
	h.Watch(rec, request(http.MethodGet, "/", "", "user_ghost"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uuid.Nil, stub.viewer)
}

func TestJoinChallenge(t *testing.T) {
	stub := &stubChallenges{}
	h := NewChallengeHandler(knownUsers, stub)

	tests := []struct {
		body   string
		status int
	}{
		{`{"code":"abc234"}`, http.StatusOK},
		{`{"code":"ZZZ777"}`, http.StatusNotFound},
		{`{"code":"ab"}`, http.StatusBadRequest},
		{`{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.Join(rec, request(http.MethodPost, "/", tt.body, "user_alice"))
		assert.Equal(t, tt.status, rec.Code, tt.body)
	}
	assert.Equal(t, "ab", stub.joinCode)
}

func TestListMineEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChallengeHandler(knownUsers, &stubChallenges{}).ListMine(rec, request(http.MethodGet, "/", "", "user_alice"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

type stubHabits struct {
	HabitService
	query habit.Query
	saved []uuid.UUID
}

func (s *stubHabits) Catalog(_ context.Context, q habit.Query) ([]habit.Habit, error) {
	s.query = q
	return nil, nil
}

func (s *stubHabits) SaveSelection(_ context.Context, _, _ uuid.UUID, ids []uuid.UUID, _ time.Time) (*services.SelectionView, error) {
	s.saved = ids
	return nil, habit.ErrSelectionLocked
}

func TestHabitCatalogQuery(t *testing.T) {
	stub := &stubHabits{}
	rec := httptest.NewRecorder()
	NewHabitHandler(knownUsers, stub).Catalog(rec, request(http.MethodGet, "/?search=run&category=fitness,mind&set=medium", "", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, "run", stub.query.Search)
	assert.Equal(t, []string{"fitness", "mind"}, stub.query.Categories)
	assert.Equal(t, "medium", stub.query.DefaultSet)
}

func TestSaveSelectionLocked(t *testing.T) {
	stub := &stubHabits{}
	h := NewHabitHandler(knownUsers, stub)
	id := uuid.New()

	rec := httptest.NewRecorder()
	h.SaveSelection(rec, request(http.MethodPut, "/", `{"habit_ids":["`+id.String()+`"]}`, "user_alice"))
	assert.Equal(t, http.StatusLocked, rec.Code)
	assert.Equal(t, []uuid.UUID{id}, stub.saved)

	rec = httptest.NewRecorder()
	h.SaveSelection(rec, request(http.MethodPut, "/", `{"habit_ids":[]}`, "user_alice"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
