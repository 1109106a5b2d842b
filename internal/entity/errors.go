package entity

import "errors"

// Domain errors shared across usecases and adapters.
var (
	ErrWordNotFound        = errors.New("word not found")
	ErrInvalidWordID       = errors.New("invalid word ID")
	ErrInvalidWordTerm     = errors.New("invalid word term")
	ErrDuplicateWord       = errors.New("word already exists")
	ErrProgressNotFound    = errors.New("progress not found")
	ErrDuplicateProgress   = errors.New("progress already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidUserID       = errors.New("invalid user ID")
	ErrInvalidReviewResult = errors.New("invalid review result")
	ErrInvalidReviewMode   = errors.New("invalid review mode")
	ErrInvalidGameKind     = errors.New("invalid game kind")
	ErrInvalidFilter       = errors.New("invalid filter expression")
	ErrConflict            = errors.New("concurrent modification")
)
