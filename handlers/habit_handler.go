package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"streakzillaAPI/internal/habit"
	"streakzillaAPI/services"
)

type HabitService interface {
	Catalog(ctx context.Context, q habit.Query) ([]habit.Habit, error)
	AddCustomHabit(ctx context.Context, req habit.CustomHabitRequest) (habit.Habit, error)
	GetSelection(ctx context.Context, userID, challengeID uuid.UUID, now time.Time) (*services.SelectionView, error)
	SaveSelection(ctx context.Context, userID, challengeID uuid.UUID, habitIDs []uuid.UUID, now time.Time) (*services.SelectionView, error)
	QuickFill(ctx context.Context, userID, challengeID uuid.UUID, count int, now time.Time) (*services.SelectionView, error)
}

type HabitHandler struct {
	users  UserResolver
	habits HabitService
	now    func() time.Time
}

func NewHabitHandler(users UserResolver, habits HabitService) *HabitHandler {
	return &HabitHandler{users: users, habits: habits, now: time.Now}
}

type saveSelectionRequest struct {
	HabitIDs []uuid.UUID `json:"habit_ids" validate:"required,min=1"`
}

type quickFillRequest struct {
	Count int `json:"count" validate:"gte=0,lte=50"`
}

// Catalog accepts ?search=, ?category=a,b and ?set=.
func (h *HabitHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	query := habit.Query{
		Search:     q.Get("search"),
		DefaultSet: q.Get("set"),
	}
	if raw := q.Get("category"); raw != "" {
		query.Categories = strings.Split(raw, ",")
	}

	habits, err := h.habits.Catalog(ctx, query)
	if err != nil {
		respondWithServiceError(w, "habit catalog", err)
		return
	}
	if habits == nil {
		habits = []habit.Habit{}
	}
	respondWithJSON(w, http.StatusOK, habits)
}

func (h *HabitHandler) AddCustom(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, ok := currentUser(ctx, w, h.users); !ok {
		return
	}

	var req habit.CustomHabitRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.habits.AddCustomHabit(ctx, req)
	if err != nil {
		respondWithServiceError(w, "add habit", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HabitHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
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

	view, err := h.habits.GetSelection(ctx, userID, challengeID, h.now())
	if err != nil {
		respondWithServiceError(w, "get selection", err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

func (h *HabitHandler) SaveSelection(w http.ResponseWriter, r *http.Request) {
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

	var req saveSelectionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	view, err := h.habits.SaveSelection(ctx, userID, challengeID, req.HabitIDs, h.now())
	if err != nil {
		respondWithServiceError(w, "save selection", err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// QuickFill previews a suggested selection; nothing is saved.
func (h *HabitHandler) QuickFill(w http.ResponseWriter, r *http.Request) {
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

	var req quickFillRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	view, err := h.habits.QuickFill(ctx, userID, challengeID, req.Count, h.now())
	if err != nil {
		respondWithServiceError(w, "quick fill", err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}
