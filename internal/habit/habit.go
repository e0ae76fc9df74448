package habit

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrSelectionLocked  = errors.New("habit selection is locked")
	ErrInvalidSelection = errors.New("habit selection needs at least 6 habits worth 75 points")
	ErrInvalidHabit     = errors.New("invalid habit")
)

const (
	MinHabits = 6
	MinPoints = 75

	DefaultPoints    = 10
	DefaultCategory  = "custom"
	DefaultFrequency = "daily"
)

// Categories in display order.
var Categories = []string{
	"fitness", "diet", "hydration", "reading", "learning", "mental",
	"creativity", "lifestyle", "wellness", "finance", "custom",
}

// Habit is a catalog entry, called a "power" in the app.
type Habit struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Slug        string    `json:"slug" db:"slug"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	Frequency   string    `json:"frequency" db:"frequency"`
	DefaultSet  string    `json:"default_set" db:"default_set"`
	Points      int       `json:"points" db:"points"`
}

type CustomHabitRequest struct {
	Title       string `json:"title" validate:"required,min=2,max=80"`
	Description string `json:"description" validate:"max=280"`
	Category    string `json:"category" validate:"omitempty,max=40"`
	Points      int    `json:"points" validate:"omitempty,gte=1,lte=100"`
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the title and collapses every non-alphanumeric run
// into a single dash.
func Slugify(title string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// NewCustom builds a habit from the add-habit form, applying defaults.
func NewCustom(req CustomHabitRequest) (Habit, error) {
	title := strings.TrimSpace(req.Title)
	h := Habit{
		ID:          uuid.New(),
		Slug:        Slugify(title),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Category:    strings.ToLower(strings.TrimSpace(req.Category)),
		Frequency:   DefaultFrequency,
		DefaultSet:  DefaultCategory,
		Points:      req.Points,
	}
	if h.Category == "" {
		h.Category = DefaultCategory
	}
	if h.Points == 0 {
		h.Points = DefaultPoints
	}
	if err := Validate(h); err != nil {
		return Habit{}, err
	}
	return h, nil
}

func Validate(h Habit) error {
	switch {
	case h.Slug == "":
		return errors.Join(ErrInvalidHabit, errors.New("title must contain letters or digits"))
	case h.Points <= 0:
		return errors.Join(ErrInvalidHabit, errors.New("points must be positive"))
	case h.Category == "":
		return errors.Join(ErrInvalidHabit, errors.New("category is required"))
	}
	return nil
}
