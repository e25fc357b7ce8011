// Package handlers provides HTTP request handling for the connector API
package handlers

// Common error messages
const (
	ErrMsgInvalidReqBody    = "Invalid request body"
	ErrMsgItemIDsRequired   = "No item ids provided"
	ErrMsgInvalidItemID     = "Invalid item id"
	ErrMsgInvalidMode       = "Invalid generation mode"
	ErrMsgItemNotFound      = "Item not found"
	ErrMsgBatchTooLarge     = "Too many items in one batch"
	ErrMsgUnauthorizedKey   = "Generation service rejected the API key"
	ErrMsgNoCredits         = "Insufficient credits"
	ErrMsgNoDraft           = "No draft available to apply"
	ErrMsgSubmitFailed      = "Failed to submit generation batch"
	ErrMsgRegenerateFailed  = "Failed to regenerate description"
	ErrMsgStatusCheckFailed = "Failed to check generation status"
	ErrMsgPreflightFailed   = "Failed to run preflight check"
	ErrMsgReviewFailed      = "Failed to update review state"
	ErrMsgClearFailed       = "Failed to clear generation state"
	ErrMsgCallbackRejected  = "Webhook signature verification failed"
	ErrMsgCallbackFailed    = "Failed to process webhook callback"
)
