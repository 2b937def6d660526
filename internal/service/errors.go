package service

import "errors"

var (
	// ErrInvalidInput marks caller mistakes: wrong file type, empty symptoms
	// or an empty follow-up message.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAnalysis marks a failed or empty model invocation.
	ErrAnalysis = errors.New("analysis failed")
)
