package reconcile

import (
	"context"
	"fmt"

	"github.com/productbird/connector/internal/db/models"
	"github.com/productbird/connector/internal/render"
)

// Apply commits a draft to the live item. Inline html, when supplied, takes
// precedence over the stored draft and is sanitized before use. Fails with
// ErrNoDraftAvailable when neither exists.
func (e *Engine) Apply(ctx context.Context, itemID uint, inlineHTML string) error {
	if itemID == 0 {
		return fmt.Errorf("%w: invalid item id", ErrValidation)
	}

	rec, err := e.records.Get(ctx, itemID)
	if err != nil {
		return err
	}

	html := render.Sanitize(inlineHTML)
	if html == "" && rec != nil {
		html = rec.DraftContent
	}
	if html == "" {
		return ErrNoDraftAvailable
	}

	if err := e.catalog.CommitDescription(ctx, itemID, html); err != nil {
		return err
	}

	_, err = e.records.Mutate(ctx, itemID, func(r *models.GenerationRecord) error {
		r.Status = models.StatusCompleted
		r.DraftContent = html
		r.ExternalJobID = ""
		r.Delivered = true
		r.Declined = false
		return nil
	})
	return err
}

// Decline rejects the current draft. The draft itself is preserved so
// UndoDecline can restore it for a later apply.
func (e *Engine) Decline(ctx context.Context, itemID uint) error {
	if itemID == 0 {
		return fmt.Errorf("%w: invalid item id", ErrValidation)
	}

	exists, err := e.records.Exists(ctx, itemID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: no generation record for item %d", ErrValidation, itemID)
	}

	_, err = e.records.Mutate(ctx, itemID, func(r *models.GenerationRecord) error {
		if r.Delivered {
			return fmt.Errorf("%w: item %d already applied", ErrValidation, itemID)
		}
		r.Declined = true
		return nil
	})
	return err
}

// UndoDecline reverses a decline, leaving the draft available again.
func (e *Engine) UndoDecline(ctx context.Context, itemID uint) error {
	if itemID == 0 {
		return fmt.Errorf("%w: invalid item id", ErrValidation)
	}

	exists, err := e.records.Exists(ctx, itemID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: no generation record for item %d", ErrValidation, itemID)
	}

	_, err = e.records.Mutate(ctx, itemID, func(r *models.GenerationRecord) error {
		r.Declined = false
		return nil
	})
	return err
}

// StatusCheck reports drafts ready for review and counts items still in
// flight. With poll enabled, items holding a live job are polled first and
// the responses reconciled within the same request, so the report reflects
// the service's latest state even when webhooks are not reaching this host.
// Delivered and declined records are never re-offered.
func (e *Engine) StatusCheck(ctx context.Context, itemIDs []uint, poll bool) (*StatusReport, error) {
	itemIDs = dedupe(itemIDs)
	if len(itemIDs) == 0 {
		return nil, fmt.Errorf("%w: no item ids provided", ErrValidation)
	}

	report := &StatusReport{CompletedItems: []CompletedItem{}}

	for _, itemID := range itemIDs {
		if poll {
			// Best effort: a failed poll keeps the current record state.
			_ = e.PollLive(ctx, itemID)
		}

		rec, err := e.records.Get(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}

		switch rec.Status {
		case models.StatusCompleted:
			if !rec.NeedsReview() {
				continue
			}
			var name, currentHTML string
			if item, err := e.catalog.GetItem(ctx, itemID); err == nil {
				name = item.Name
				currentHTML = item.Description
			}
			report.CompletedItems = append(report.CompletedItems, CompletedItem{
				ItemID:      itemID,
				Name:        name,
				HTML:        rec.DraftContent,
				CurrentHTML: currentHTML,
				Status:      string(ReviewPending),
			})

		case models.StatusQueued, models.StatusRunning:
			report.RemainingCount++
		}
	}

	return report, nil
}

// Preflight classifies each item's review state ahead of a bulk submission so
// the caller can warn about items that would be skipped or reset.
func (e *Engine) Preflight(ctx context.Context, itemIDs []uint) (*PreflightReport, error) {
	itemIDs = dedupe(itemIDs)
	if len(itemIDs) == 0 {
		return nil, fmt.Errorf("%w: no item ids provided", ErrValidation)
	}

	report := &PreflightReport{Items: []PreflightItem{}}

	for _, itemID := range itemIDs {
		var name string
		if item, err := e.catalog.GetItem(ctx, itemID); err == nil {
			name = item.Name
		}

		rec, err := e.records.Get(ctx, itemID)
		if err != nil {
			return nil, err
		}

		state := ReviewNeverGenerated
		switch {
		case rec == nil || rec.Status == models.StatusNone:
			state = ReviewNeverGenerated
		case rec.Delivered:
			state = ReviewAccepted
		case rec.Declined:
			state = ReviewDeclined
		default:
			state = ReviewPending
		}

		report.Items = append(report.Items, PreflightItem{
			ItemID: itemID,
			Name:   name,
			State:  state,
		})
	}

	return report, nil
}
