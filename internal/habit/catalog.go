package habit

import (
	"cmp"
	"slices"
	"strings"
)

// Query narrows the catalog on the habit picker screen.
type Query struct {
	Search     string   `json:"search"`
	Categories []string `json:"categories"`
	DefaultSet string   `json:"default_set"`
}

// Filter keeps habits whose title or description contains Search, whose
// category is one of Categories and whose default set matches. Empty fields
// match everything. Results are ordered by category then points, highest first.
func Filter(catalog []Habit, q Query) []Habit {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	cats := make(map[string]bool, len(q.Categories))
	for _, c := range q.Categories {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" && c != "all" {
			cats[c] = true
		}
	}

	out := make([]Habit, 0, len(catalog))
	for _, h := range catalog {
		if len(cats) > 0 && !cats[h.Category] {
			continue
		}
		if q.DefaultSet != "" && !strings.EqualFold(h.DefaultSet, q.DefaultSet) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(h.Title), search) &&
			!strings.Contains(strings.ToLower(h.Description), search) {
			continue
		}
		out = append(out, h)
	}

	slices.SortStableFunc(out, func(a, b Habit) int {
		if c := cmp.Compare(categoryRank(a.Category), categoryRank(b.Category)); c != 0 {
			return c
		}
		return cmp.Compare(b.Points, a.Points)
	})
	return out
}

// categoryRank orders unknown categories after the known ones.
func categoryRank(c string) int {
	if i := slices.Index(Categories, c); i >= 0 {
		return i
	}
	return len(Categories)
}
