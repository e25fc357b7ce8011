package reconcile

import (
	"context"
	"fmt"

	"github.com/productbird/connector/internal/api/client"
	"github.com/productbird/connector/internal/db/models"
	"github.com/productbird/connector/internal/logger"
	"github.com/productbird/connector/internal/render"
)

// ApplyWebhook merges a verified completion callback into the item's record.
// The webhook is the authoritative completion signal: it is applied even if a
// poll already settled the cycle, and re-applying the same payload leaves the
// record unchanged. In auto-apply mode the rendered content is committed to
// the live item at most once per cycle; in review mode it is held as a draft.
func (e *Engine) ApplyWebhook(ctx context.Context, payload WebhookPayload, mode models.Mode) error {
	if payload.ItemID == 0 || len(payload.Description) == 0 {
		return fmt.Errorf("%w: missing item id or description", ErrValidation)
	}

	html, err := render.Blocks(payload.Description)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if _, err := e.catalog.GetItem(ctx, payload.ItemID); err != nil {
		return err
	}

	var shouldCommit bool
	_, err = e.records.Mutate(ctx, payload.ItemID, func(r *models.GenerationRecord) error {
		effective := mode
		if effective == "" {
			effective = r.Mode
		}

		r.Status = models.StatusCompleted
		r.DraftContent = html
		r.ExternalJobID = ""
		r.LastError = ""

		// The delivered flag is the replay guard: a duplicate delivery of
		// the same payload finds it already set and commits nothing.
		shouldCommit = effective == models.ModeAutoApply && !r.Delivered
		if shouldCommit {
			r.Delivered = true
			r.Declined = false
		}
		return nil
	})
	if err != nil {
		return err
	}

	if shouldCommit {
		if err := e.catalog.CommitDescription(ctx, payload.ItemID, html); err != nil {
			_, revertErr := e.records.Mutate(ctx, payload.ItemID, func(r *models.GenerationRecord) error {
				r.Delivered = false
				r.LastError = err.Error()
				return nil
			})
			if revertErr != nil {
				logger.Errorf("failed to revert delivered flag for item %d: %v", payload.ItemID, revertErr)
			}
			return err
		}
	}

	logger.InfoWithFields("Webhook callback processed", map[string]interface{}{
		"item_id":   payload.ItemID,
		"mode":      mode,
		"committed": shouldCommit,
	})
	return nil
}

// ApplyPoll merges a poll response into the item's record. The poll is a
// fallback signal: once a cycle has reached completed or error through any
// path the poll result is dropped, so a late or stale poll can never
// overwrite a webhook outcome. Content returned on success is committed to
// the live item only when the cycle runs in auto-apply mode.
func (e *Engine) ApplyPoll(ctx context.Context, itemID uint, res *client.StatusResult) error {
	if itemID == 0 || res == nil {
		return fmt.Errorf("%w: missing item id or poll result", ErrValidation)
	}

	var (
		shouldCommit bool
		html         string
	)
	_, err := e.records.Mutate(ctx, itemID, func(r *models.GenerationRecord) error {
		if r.Status.Terminal() {
			return nil
		}

		switch res.WorkflowState {
		case client.RunSuccess:
			r.Status = models.StatusCompleted
			r.ExternalJobID = ""
			r.LastError = ""
			if res.Content != "" {
				html = render.Sanitize(res.Content)
				r.DraftContent = html
			}
			shouldCommit = r.Mode == models.ModeAutoApply && html != "" && !r.Delivered
			if shouldCommit {
				r.Delivered = true
				r.Declined = false
			}

		case client.RunFailed, client.RunCanceled:
			r.Status = models.StatusError
			r.ExternalJobID = ""
			r.LastError = fmt.Sprintf("generation run ended with state %s", res.WorkflowState)

		default:
			// RUN_STARTED and anything unmapped is a status refresh only.
			r.Status = models.StatusRunning
		}
		return nil
	})
	if err != nil {
		return err
	}

	if shouldCommit {
		if err := e.catalog.CommitDescription(ctx, itemID, html); err != nil {
			_, revertErr := e.records.Mutate(ctx, itemID, func(r *models.GenerationRecord) error {
				r.Delivered = false
				r.LastError = err.Error()
				return nil
			})
			if revertErr != nil {
				logger.Errorf("failed to revert delivered flag for item %d: %v", itemID, revertErr)
			}
			return err
		}
	}

	return nil
}

// PollLive polls the service for an item's live job and applies the result.
// A no-op for items without a live job.
func (e *Engine) PollLive(ctx context.Context, itemID uint) error {
	rec, err := e.records.Get(ctx, itemID)
	if err != nil {
		return err
	}
	if rec == nil || !rec.LiveJob() {
		return nil
	}

	res, err := e.api.PollStatus(ctx, rec.ExternalJobID)
	if err != nil {
		// Transient poll failures leave the record untouched; the webhook or
		// a later sweep pass will settle the cycle.
		logger.WarnWithFields("Status poll failed", map[string]interface{}{
			"item_id": itemID,
			"job_id":  rec.ExternalJobID,
			"error":   err.Error(),
		})
		return err
	}

	return e.ApplyPoll(ctx, itemID, res)
}
