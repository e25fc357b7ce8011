package reconcile

import (
	"errors"

	"github.com/productbird/connector/internal/db/models"
	"github.com/productbird/connector/internal/render"
)

// Errors surfaced by engine operations
var (
	// ErrValidation indicates a request was rejected before any external call
	ErrValidation = errors.New("validation failed")

	// ErrNoDraftAvailable indicates an apply with neither a stored draft nor inline content
	ErrNoDraftAvailable = errors.New("no draft available")
)

// ScheduledItem is one item accepted into a generation batch
type ScheduledItem struct {
	ItemID uint   `json:"item_id"`
	JobID  string `json:"job_id"`
}

// PendingItem is an item skipped during submission because a prior draft is
// still awaiting a review decision
type PendingItem struct {
	ItemID      uint   `json:"id"`
	Name        string `json:"name"`
	HTML        string `json:"html,omitempty"`
	CurrentHTML string `json:"current_html,omitempty"`
}

// SubmitResult is the outcome of a batch submission, distinguishing newly
// scheduled items from items already pending review
type SubmitResult struct {
	BatchID        string          `json:"batch_id"`
	Mode           models.Mode     `json:"mode"`
	ScheduledItems []ScheduledItem `json:"scheduled_items"`
	PendingItems   []PendingItem   `json:"pending_items"`
	Status         string          `json:"status"`
}

// CompletedItem is a generated draft ready for review
type CompletedItem struct {
	ItemID      uint   `json:"id"`
	Name        string `json:"name"`
	HTML        string `json:"html"`
	CurrentHTML string `json:"current_html,omitempty"`
	Status      string `json:"status"`
}

// StatusReport is the read-only view over a set of items' generation state
type StatusReport struct {
	CompletedItems []CompletedItem `json:"completed_items"`
	RemainingCount int             `json:"remaining_count"`
}

// ReviewState classifies an item's relationship to its latest draft
type ReviewState string

// Review states reported by Preflight
const (
	// ReviewAccepted means the latest draft was applied to the live item
	ReviewAccepted ReviewState = "accepted"
	// ReviewDeclined means the latest draft was rejected
	ReviewDeclined ReviewState = "declined"
	// ReviewPending means a cycle is in flight or a draft awaits a decision
	ReviewPending ReviewState = "pending"
	// ReviewNeverGenerated means no generation cycle has run for the item
	ReviewNeverGenerated ReviewState = "never_generated"
)

// PreflightItem is one item's review state
type PreflightItem struct {
	ItemID uint        `json:"id"`
	Name   string      `json:"name"`
	State  ReviewState `json:"status"`
}

// PreflightReport summarizes review states ahead of a bulk submission
type PreflightReport struct {
	Items []PreflightItem `json:"items"`
}

// WebhookPayload is the parsed body of a verified completion callback
type WebhookPayload struct {
	ItemID      uint           `json:"productId"`
	Description []render.Block `json:"description"`
}
