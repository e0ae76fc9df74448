package services

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrGroupLimit        = errors.New("challenge limit reached for this account")
	ErrAlreadyMember     = errors.New("already a member of this challenge")
	ErrInvalidInviteCode = errors.New("invalid invite code")
	ErrEditWindowClosed  = errors.New("start date and duration can no longer be changed")
	ErrInvalidInput      = errors.New("invalid input")
)
