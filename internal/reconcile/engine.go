// Package reconcile implements the generation-status state machine.
//
// Three independent update paths feed the same per-item record: the signed
// webhook callback, the foreground poll triggered from a status check, and
// the background sweep. The engine merges those signals under two rules: the
// webhook is authoritative and always safe to re-apply, and a poll never
// overwrites a terminal state reached through any path. Every record update
// runs through the store's atomic Mutate so racing paths serialize per item.
package reconcile

import (
	"context"
	"fmt"

	"github.com/productbird/connector/internal/api/client"
	"github.com/productbird/connector/internal/catalog"
	"github.com/productbird/connector/internal/store"
)

// Options configures engine behavior
type Options struct {
	// Tone and Formality are forwarded with every generation payload
	Tone      string
	Formality string

	// CallbackBaseURL is the public base URL the service delivers webhooks to
	CallbackBaseURL string

	// BatchCap limits how many items one submission may carry; defaults to
	// the client's MaxBatchSize
	BatchCap int
}

// Engine maps external signals onto status transitions for per-item
// generation records
type Engine struct {
	records store.RecordStore
	catalog catalog.Store
	api     client.Client
	opts    Options
}

// NewEngine creates a reconciliation engine over the given collaborators
func NewEngine(records store.RecordStore, cat catalog.Store, api client.Client, opts Options) *Engine {
	if opts.BatchCap <= 0 {
		opts.BatchCap = client.MaxBatchSize
	}
	return &Engine{
		records: records,
		catalog: cat,
		api:     api,
		opts:    opts,
	}
}

// Reset clears all generation state for an item, returning it to the
// never-generated state. Required before a delivered or declined item can be
// requeued; SubmitBatch performs it implicitly.
func (e *Engine) Reset(ctx context.Context, itemID uint) error {
	if itemID == 0 {
		return fmt.Errorf("%w: invalid item id", ErrValidation)
	}
	return e.records.Clear(ctx, itemID)
}

// callbackURL builds the webhook delivery URL for a generation cycle
func (e *Engine) callbackURL(mode string) string {
	if e.opts.CallbackBaseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/api/v1/descriptions/callback?mode=%s", e.opts.CallbackBaseURL, mode)
}
