package ledger

import "errors"

var (
	ErrEmptySelection   = errors.New("select at least one habit")
	ErrAlreadyCheckedIn = errors.New("already checked in for this day")
	ErrNoLivesRemaining = errors.New("no lives remaining")
	ErrDayNotEligible   = errors.New("day is not eligible")
	ErrMemberOut        = errors.New("member is out of the challenge")
)
