package services

import "errors"

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrListNotFound = errors.New("list not found")
	ErrInvalidPatch = errors.New("invalid task payload")

	ErrEmptyMessage  = errors.New("message is required")
	ErrMissingAPIKey = errors.New("AI API key not configured")
)
