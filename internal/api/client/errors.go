package client

import (
	"errors"
	"fmt"

	fiber "github.com/gofiber/fiber/v2"
)

// Errors surfaced to callers for the failure classes they handle differently
var (
	// ErrUnauthorized indicates the API key was rejected (HTTP 401)
	ErrUnauthorized = errors.New("productbird api key rejected")

	// ErrInsufficientCredits indicates the organization is out of credits (HTTP 402)
	ErrInsufficientCredits = errors.New("insufficient productbird credits")

	// ErrBatchTooLarge indicates a bulk submission exceeded MaxBatchSize.
	// It is raised before any network call is made.
	ErrBatchTooLarge = errors.New("bulk submission exceeds max batch size")
)

// APIError is a non-2xx response from the generation service
type APIError struct {
	Status int
	Body   string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("productbird api request failed with status %d", e.Status)
}

// Unwrap maps credential and credit failures onto their sentinel errors so
// callers can branch with errors.Is
func (e *APIError) Unwrap() error {
	switch e.Status {
	case fiber.StatusUnauthorized:
		return ErrUnauthorized
	case fiber.StatusPaymentRequired:
		return ErrInsufficientCredits
	default:
		return nil
	}
}
