package domain

import "errors"

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardQuestionEmpty is returned when a card has no question text.
	ErrCardQuestionEmpty = errors.New("card question text cannot be empty")

	// ErrCardAnswerEmpty is returned when a card has no answer.
	ErrCardAnswerEmpty = errors.New("card answer cannot be empty")
)
