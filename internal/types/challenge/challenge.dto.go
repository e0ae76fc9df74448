package challenge

import (
	"errors"
	"slices"
)

var ErrInvalidDuration = errors.New("invalid challenge duration")

// MaxCustomDuration caps custom challenges at one year.
const MaxCustomDuration = 365

type CreateChallengeRequest struct {
	Name         string `json:"name" validate:"required,min=3,max=60"`
	StartDate    string `json:"start_date" validate:"required,datetime=2006-01-02"`
	DurationDays *int   `json:"duration_days,omitempty"`
	Mode         string `json:"mode" validate:"required,oneof=hard medium soft custom open"`
}

type UpdateChallengeRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=3,max=60"`
	StartDate    *string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DurationDays *int    `json:"duration_days,omitempty"`
}

type JoinChallengeRequest struct {
	Code string `json:"code" validate:"required"`
}

// NormalizeDuration checks a duration against the mode. Open challenges have
// none, custom ones take any length up to a year, the rest use the presets.
func NormalizeDuration(mode Mode, d *int) (*int, error) {
	switch mode {
	case ModeOpen:
		return nil, nil
	case ModeCustom:
		if d == nil || *d < 1 || *d > MaxCustomDuration {
			return nil, ErrInvalidDuration
		}
	default:
		if d == nil || !slices.Contains(DurationPresets, *d) {
			return nil, ErrInvalidDuration
		}
	}
	v := *d
	return &v, nil
}
