package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/productbird/connector/internal/api/client"
	"github.com/productbird/connector/internal/catalog"
	"github.com/productbird/connector/internal/db/models"
	"github.com/productbird/connector/internal/logger"
)

// SubmitBatch submits a batch of items for generation. Item ids are
// de-duplicated; batches over the cap are rejected before any external call.
// Items whose latest draft still awaits a review decision are skipped and
// reported as pending instead of being resubmitted. Items previously
// delivered or declined are reset before requeueing so stale drafts never
// leak into the new cycle.
func (e *Engine) SubmitBatch(ctx context.Context, itemIDs []uint, mode models.Mode) (*SubmitResult, error) {
	itemIDs = dedupe(itemIDs)
	if len(itemIDs) == 0 {
		return nil, fmt.Errorf("%w: no item ids provided", ErrValidation)
	}
	if len(itemIDs) > e.opts.BatchCap {
		return nil, fmt.Errorf("%w: %d items, max %d", client.ErrBatchTooLarge, len(itemIDs), e.opts.BatchCap)
	}

	logger.InfoWithFields("Bulk generation request started", map[string]interface{}{
		"item_count": len(itemIDs),
		"mode":       mode,
	})

	var (
		payloads  []client.GenerationPayload
		scheduled []uint
		pending   []PendingItem
	)

	for _, itemID := range itemIDs {
		item, err := e.catalog.GetItem(ctx, itemID)
		if errors.Is(err, catalog.ErrItemNotFound) {
			logger.WarnWithFields("Item not found during bulk generation", map[string]interface{}{
				"item_id": itemID,
			})
			continue
		}
		if err != nil {
			return nil, err
		}

		rec, err := e.records.Get(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if rec != nil && rec.NeedsReview() {
			pending = append(pending, PendingItem{
				ItemID:      itemID,
				Name:        item.Name,
				HTML:        rec.DraftContent,
				CurrentHTML: item.Description,
			})
			continue
		}

		_, err = e.records.Mutate(ctx, itemID, func(r *models.GenerationRecord) error {
			if r.Delivered || r.Declined {
				r.ResetCycle()
			}
			r.Status = models.StatusQueued
			r.Mode = mode
			r.ExternalJobID = ""
			r.DraftContent = ""
			r.LastError = ""
			return nil
		})
		if err != nil {
			return nil, err
		}

		payloads = append(payloads, e.buildPayload(item, payloadOptions{mode: mode}))
		scheduled = append(scheduled, itemID)
	}

	if len(payloads) == 0 && len(pending) == 0 {
		return nil, fmt.Errorf("%w: no valid items found to process", ErrValidation)
	}

	result := &SubmitResult{
		BatchID:        uuid.NewString(),
		Mode:           mode,
		ScheduledItems: []ScheduledItem{},
		PendingItems:   pending,
		Status:         models.StatusQueued.String(),
	}
	if result.PendingItems == nil {
		result.PendingItems = []PendingItem{}
	}
	if len(payloads) == 0 {
		return result, nil
	}

	bulk, err := e.api.GenerateBulk(ctx, payloads)
	if err != nil {
		// Credential and credit failures abort the whole batch; either way
		// the queued items are marked failed so they are not left dangling.
		e.markSubmitFailed(ctx, scheduled, err)
		return nil, err
	}

	jobIDs := make(map[uint]string, len(bulk.Results))
	for _, res := range bulk.Results {
		jobIDs[res.ItemID] = res.JobID
	}

	for _, itemID := range scheduled {
		jobID, ok := jobIDs[itemID]
		if !ok || jobID == "" {
			// Per-item failure: record it without aborting siblings.
			e.markSubmitFailed(ctx, []uint{itemID}, fmt.Errorf("no job id returned for item %d", itemID))
			continue
		}
		_, err := e.records.Mutate(ctx, itemID, func(r *models.GenerationRecord) error {
			r.ExternalJobID = jobID
			return nil
		})
		if err != nil {
			return nil, err
		}
		result.ScheduledItems = append(result.ScheduledItems, ScheduledItem{ItemID: itemID, JobID: jobID})
	}

	logger.InfoWithFields("Bulk generation request completed", map[string]interface{}{
		"batch_id":        result.BatchID,
		"mode":            mode,
		"scheduled_count": len(result.ScheduledItems),
		"pending_count":   len(result.PendingItems),
	})

	return result, nil
}

// Regenerate requeues a single item through the same submit rules, optionally
// carrying a custom prompt and the previous draft as context for the service.
func (e *Engine) Regenerate(ctx context.Context, itemID uint, customPrompt string) (*ScheduledItem, error) {
	if itemID == 0 {
		return nil, fmt.Errorf("%w: invalid item id", ErrValidation)
	}

	item, err := e.catalog.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	rec, err := e.records.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	var previousDraft string
	if rec != nil {
		previousDraft = rec.DraftContent
	}

	_, err = e.records.Mutate(ctx, itemID, func(r *models.GenerationRecord) error {
		if r.Delivered || r.Declined {
			r.ResetCycle()
		}
		r.Status = models.StatusQueued
		r.Mode = models.ModeReview
		r.ExternalJobID = ""
		r.DraftContent = ""
		r.LastError = ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	payload := e.buildPayload(item, payloadOptions{
		mode:                models.ModeReview,
		previousDescription: previousDraft,
		customPrompt:        customPrompt,
	})

	res, err := e.api.Generate(ctx, payload)
	if err != nil {
		e.markSubmitFailed(ctx, []uint{itemID}, err)
		return nil, err
	}

	_, err = e.records.Mutate(ctx, itemID, func(r *models.GenerationRecord) error {
		r.ExternalJobID = res.JobID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ScheduledItem{ItemID: itemID, JobID: res.JobID}, nil
}

type payloadOptions struct {
	mode                models.Mode
	previousDescription string
	customPrompt        string
}

func (e *Engine) buildPayload(item *models.Item, opts payloadOptions) client.GenerationPayload {
	var categories []string
	if item.Categories != "" {
		categories = strings.Split(item.Categories, ",")
		for i := range categories {
			categories[i] = strings.TrimSpace(categories[i])
		}
	}

	return client.GenerationPayload{
		ID:                  item.ID,
		Name:                item.Name,
		SKU:                 item.SKU,
		Brand:               item.Brand,
		Categories:          categories,
		Description:         item.Description,
		ShortDescription:    item.ShortDescription,
		Tone:                e.opts.Tone,
		Formality:           e.opts.Formality,
		PreviousDescription: opts.previousDescription,
		CustomPrompt:        opts.customPrompt,
		CallbackURL:         e.callbackURL(string(opts.mode)),
	}
}

// markSubmitFailed records a submission failure on each item without
// touching any sibling
func (e *Engine) markSubmitFailed(ctx context.Context, itemIDs []uint, cause error) {
	for _, itemID := range itemIDs {
		_, err := e.records.Mutate(ctx, itemID, func(r *models.GenerationRecord) error {
			r.Status = models.StatusError
			r.ExternalJobID = ""
			r.LastError = cause.Error()
			return nil
		})
		if err != nil {
			logger.ErrorWithFields("Failed to record submission error", map[string]interface{}{
				"item_id": itemID,
				"error":   err.Error(),
			})
		}
	}
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
