package survey

import "errors"

// Admission errors carry the exact message shown to the instructor
// when a question is rejected.
var (
	ErrEmptyQuestion     = errors.New("You can't have an empty question")
	ErrDuplicateQuestion = errors.New("You've already got this question in your survey")
)

var (
	ErrNotFound  = errors.New("survey not found")
	ErrForbidden = errors.New("forbidden")

	ErrInvalidQuestion = errors.New("invalid question")
	ErrInvalidAnswer   = errors.New("invalid answer")
)
