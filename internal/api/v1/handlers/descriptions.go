package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/productbird/connector/internal/api/client"
	"github.com/productbird/connector/internal/catalog"
	"github.com/productbird/connector/internal/db/models"
	"github.com/productbird/connector/internal/logger"
	"github.com/productbird/connector/internal/reconcile"
	"github.com/productbird/connector/internal/webhook"
)

// DescriptionHandler handles HTTP requests for description generation
type DescriptionHandler struct {
	engine   *reconcile.Engine
	verifier *webhook.Verifier
}

// NewDescriptionHandler creates a new description handler
func NewDescriptionHandler(engine *reconcile.Engine, verifier *webhook.Verifier) *DescriptionHandler {
	return &DescriptionHandler{
		engine:   engine,
		verifier: verifier,
	}
}

// SubmitBatchRequest is the body of a bulk generation request
type SubmitBatchRequest struct {
	ItemIDs []uint `json:"item_ids"`
	Mode    string `json:"mode"`
}

// SubmitBatch handles a bulk generation request
func (h *DescriptionHandler) SubmitBatch(c *fiber.Ctx) error {
	var req SubmitBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMsgInvalidReqBody})
	}
	if len(req.ItemIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMsgItemIDsRequired})
	}

	mode := models.ModeReview
	if req.Mode != "" {
		parsed, err := models.ParseMode(req.Mode)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMsgInvalidMode})
		}
		mode = parsed
	}

	result, err := h.engine.SubmitBatch(c.Context(), req.ItemIDs, mode)
	if err != nil {
		return submitErrorResponse(c, err)
	}

	return c.JSON(result)
}

// RegenerateRequest is the body of a single-item regenerate request
type RegenerateRequest struct {
	ItemID       uint   `json:"item_id"`
	CustomPrompt string `json:"custom_prompt,omitempty"`
}

// Regenerate handles a single-item regenerate request
func (h *DescriptionHandler) Regenerate(c *fiber.Ctx) error {
	var req RegenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMsgInvalidReqBody})
	}

	scheduled, err := h.engine.Regenerate(c.Context(), req.ItemID, req.CustomPrompt)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrItemNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ErrMsgItemNotFound})
		case errors.Is(err, reconcile.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return submitErrorResponse(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"item_id": scheduled.ItemID,
		"job_id":  scheduled.JobID,
		"status":  models.StatusQueued.String(),
	})
}

// Callback handles the signed completion webhook from the generation service.
// Verification runs against the raw body before the payload is parsed; an
// unverified request is discarded without touching any record.
func (h *DescriptionHandler) Callback(c *fiber.Ctx) error {
	body := c.Body()
	timestamp := c.Get(webhook.TimestampHeader)
	signature := c.Get(webhook.SignatureHeader)

	if err := h.verifier.Verify(body, timestamp, signature); err != nil {
		logger.WarnWithFields("Webhook rejected", map[string]interface{}{
			"ip":    c.IP(),
			"error": err.Error(),
		})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrMsgCallbackRejected})
	}

	var payload reconcile.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMsgInvalidReqBody})
	}

	var mode models.Mode
	if modeStr := c.Query("mode"); modeStr != "" {
		parsed, err := models.ParseMode(modeStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMsgInvalidMode})
		}
		mode = parsed
	}

	if err := h.engine.ApplyWebhook(c.Context(), payload, mode); err != nil {
		switch {
		case errors.Is(err, catalog.ErrItemNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ErrMsgItemNotFound})
		case errors.Is(err, reconcile.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": ErrMsgCallbackFailed})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"item_id": payload.ItemID,
	})
}

// CheckStatus reports review-ready drafts and in-flight counts for a set of
// items. With poll=true, items holding a live job are polled within the
// request before the report is built.
func (h *DescriptionHandler) CheckStatus(c *fiber.Ctx) error {
	itemIDs, err := parseItemIDs(c.Query("item_ids"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := h.engine.StatusCheck(c.Context(), itemIDs, c.QueryBool("poll", false))
	if err != nil {
		if errors.Is(err, reconcile.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": ErrMsgStatusCheckFailed})
	}

	return c.JSON(report)
}

// Preflight classifies each item's review state ahead of a bulk submission
func (h *DescriptionHandler) Preflight(c *fiber.Ctx) error {
	itemIDs, err := parseItemIDs(c.Query("item_ids"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := h.engine.Preflight(c.Context(), itemIDs)
	if err != nil {
		if errors.Is(err, reconcile.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": ErrMsgPreflightFailed})
	}

	return c.JSON(report)
}

// ApplyRequest is the body of an apply request
type ApplyRequest struct {
	ItemID uint   `json:"item_id"`
	HTML   string `json:"html,omitempty"`
}

// Apply commits a draft (or inline content) to the live item
func (h *DescriptionHandler) Apply(c *fiber.Ctx) error {
	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMsgInvalidReqBody})
	}

	if err := h.engine.Apply(c.Context(), req.ItemID, req.HTML); err != nil {
		switch {
		case errors.Is(err, reconcile.ErrNoDraftAvailable):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMsgNoDraft})
		case errors.Is(err, catalog.ErrItemNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ErrMsgItemNotFound})
		case errors.Is(err, reconcile.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": ErrMsgReviewFailed})
		}
	}

	return c.JSON(fiber.Map{"success": true, "item_id": req.ItemID})
}

// ReviewRequest is the body of a decline or undo-decline request
type ReviewRequest struct {
	ItemID uint `json:"item_id"`
}

// Decline rejects the current draft for an item
func (h *DescriptionHandler) Decline(c *fiber.Ctx) error {
	return h.review(c, h.engine.Decline)
}

// UndoDecline reverses a decline for an item
func (h *DescriptionHandler) UndoDecline(c *fiber.Ctx) error {
	return h.review(c, h.engine.UndoDecline)
}

func (h *DescriptionHandler) review(c *fiber.Ctx, op func(ctx context.Context, itemID uint) error) error {
	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMsgInvalidReqBody})
	}

	if err := op(c.Context(), req.ItemID); err != nil {
		if errors.Is(err, reconcile.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": ErrMsgReviewFailed})
	}

	return c.JSON(fiber.Map{"success": true, "item_id": req.ItemID})
}

// Clear removes all generation state for an item
func (h *DescriptionHandler) Clear(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("id")
	if err != nil || itemID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMsgInvalidItemID})
	}

	if err := h.engine.Reset(c.Context(), uint(itemID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": ErrMsgClearFailed})
	}

	return c.JSON(fiber.Map{"success": true, "item_id": itemID})
}

// submitErrorResponse maps submission errors onto HTTP statuses, keeping the
// 401/402 distinction the UI relies on
func submitErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, client.ErrBatchTooLarge):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrMsgBatchTooLarge})
	case errors.Is(err, client.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrMsgUnauthorizedKey})
	case errors.Is(err, client.ErrInsufficientCredits):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": ErrMsgNoCredits})
	case errors.Is(err, reconcile.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": ErrMsgSubmitFailed})
	}
}

// parseItemIDs parses a comma separated id list from a query parameter
func parseItemIDs(raw string) ([]uint, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%s", ErrMsgItemIDsRequired)
	}

	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("%s: %q", ErrMsgInvalidItemID, part)
		}
		ids = append(ids, uint(id))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%s", ErrMsgItemIDsRequired)
	}
	return ids, nil
}
