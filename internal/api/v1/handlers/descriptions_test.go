package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"testing"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/productbird/connector/internal/api/client"
	"github.com/productbird/connector/internal/api/v1/handlers"
	"github.com/productbird/connector/internal/api/v1/routes"
	"github.com/productbird/connector/internal/catalog"
	"github.com/productbird/connector/internal/db/models"
	"github.com/productbird/connector/internal/reconcile"
	"github.com/productbird/connector/internal/store"
	"github.com/productbird/connector/internal/webhook"
)

const (
	testSecret = "wh-secret"
	testToken  = "mgmt-token"
)

// stubClient fabricates successful responses for every outbound call
type stubClient struct{}

func (stubClient) Generate(_ context.Context, payload client.GenerationPayload) (*client.GenerateResult, error) {
	return &client.GenerateResult{JobID: fmt.Sprintf("job-%d", payload.ID)}, nil
}

func (stubClient) GenerateBulk(_ context.Context, payloads []client.GenerationPayload) (*client.BulkResult, error) {
	results := make([]client.BulkItemResult, 0, len(payloads))
	for _, payload := range payloads {
		results = append(results, client.BulkItemResult{
			ItemID: payload.ID,
			JobID:  fmt.Sprintf("job-%d", payload.ID),
		})
	}
	return &client.BulkResult{Results: results}, nil
}

func (stubClient) PollStatus(_ context.Context, _ string) (*client.StatusResult, error) {
	return &client.StatusResult{WorkflowState: client.RunStarted}, nil
}

type testApp struct {
	app      *fiber.App
	records  *store.Memory
	catalog  *catalog.MemoryStore
	verifier *webhook.Verifier
}

func newTestApp() *testApp {
	records := store.NewMemory()
	cat := catalog.NewMemoryStore()
	engine := reconcile.NewEngine(records, cat, stubClient{}, reconcile.Options{})
	verifier := webhook.NewVerifier(testSecret, 0)

	app := fiber.New()
	routes.RegisterRoutes(app, handlers.NewDescriptionHandler(engine, verifier), testToken)

	return &testApp{app: app, records: records, catalog: cat, verifier: verifier}
}

func (ta *testApp) request(t *testing.T, method, target string, body interface{}, auth bool) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}

	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestSubmitBatchEndpoint(t *testing.T) {
	t.Run("schedules items", func(t *testing.T) {
		ta := newTestApp()
		ta.catalog.AddItem(1, "First")
		ta.catalog.AddItem(2, "Second")

		resp := ta.request(t, http.MethodPost, "/api/v1/descriptions/bulk", map[string]interface{}{
			"item_ids": []uint{1, 2},
			"mode":     "review",
		}, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result reconcile.SubmitResult
		decodeBody(t, resp, &result)
		assert.NotEmpty(t, result.BatchID)
		assert.Len(t, result.ScheduledItems, 2)
	})

	t.Run("rejects an empty id list", func(t *testing.T) {
		ta := newTestApp()
		resp := ta.request(t, http.MethodPost, "/api/v1/descriptions/bulk", map[string]interface{}{
			"item_ids": []uint{},
		}, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects an unknown mode", func(t *testing.T) {
		ta := newTestApp()
		resp := ta.request(t, http.MethodPost, "/api/v1/descriptions/bulk", map[string]interface{}{
			"item_ids": []uint{1},
			"mode":     "yolo",
		}, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("requires the management token", func(t *testing.T) {
		ta := newTestApp()
		resp := ta.request(t, http.MethodPost, "/api/v1/descriptions/bulk", map[string]interface{}{
			"item_ids": []uint{1},
		}, false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects a wrong token", func(t *testing.T) {
		ta := newTestApp()
		req, err := http.NewRequest(http.MethodPost, "/api/v1/descriptions/bulk", bytes.NewReader([]byte(`{"item_ids":[1]}`)))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer wrong")

		resp, err := ta.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestCallbackEndpoint(t *testing.T) {
	payloadFor := func(itemID uint) []byte {
		data, _ := json.Marshal(map[string]interface{}{
			"productId": itemID,
			"description": []map[string]string{
				{"tag": "p", "text": "Generated text"},
			},
		})
		return data
	}

	signedRequest := func(t *testing.T, ta *testApp, body []byte, target string) *http.Request {
		t.Helper()
		req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		timestamp := strconv.FormatInt(time.Now().Unix(), 10)
		req.Header.Set(webhook.TimestampHeader, timestamp)
		req.Header.Set(webhook.SignatureHeader, ta.verifier.Sign(body, timestamp))
		return req
	}

	t.Run("accepts a signed callback", func(t *testing.T) {
		ta := newTestApp()
		ta.catalog.AddItem(1, "First")
		body := payloadFor(1)

		resp, err := ta.app.Test(signedRequest(t, ta, body, "/api/v1/descriptions/callback"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		rec, err := ta.records.Get(context.Background(), 1)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, models.StatusCompleted, rec.Status)
		assert.Equal(t, "<p>Generated text</p>", rec.DraftContent)
	})

	t.Run("auto-apply mode commits to the live item", func(t *testing.T) {
		ta := newTestApp()
		ta.catalog.AddItem(1, "First")
		body := payloadFor(1)

		target := "/api/v1/descriptions/callback?mode=auto-apply"
		resp, err := ta.app.Test(signedRequest(t, ta, body, target))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "<p>Generated text</p>", ta.catalog.Description(1))
	})

	t.Run("rejects an unsigned request before parsing", func(t *testing.T) {
		ta := newTestApp()
		ta.catalog.AddItem(1, "First")

		req, err := http.NewRequest(http.MethodPost, "/api/v1/descriptions/callback", bytes.NewReader(payloadFor(1)))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		resp, err := ta.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		rec, err := ta.records.Get(context.Background(), 1)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("rejects a tampered body", func(t *testing.T) {
		ta := newTestApp()
		ta.catalog.AddItem(1, "First")

		req := signedRequest(t, ta, payloadFor(1), "/api/v1/descriptions/callback")
		req.Body = io.NopCloser(bytes.NewReader(payloadFor(2)))

		resp, err := ta.app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects callbacks for unknown items", func(t *testing.T) {
		ta := newTestApp()
		resp, err := ta.app.Test(signedRequest(t, ta, payloadFor(9), "/api/v1/descriptions/callback"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCheckStatusEndpoint(t *testing.T) {
	t.Run("requires item ids", func(t *testing.T) {
		ta := newTestApp()
		resp := ta.request(t, http.MethodGet, "/api/v1/descriptions/status", nil, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects malformed ids", func(t *testing.T) {
		ta := newTestApp()
		resp := ta.request(t, http.MethodGet, "/api/v1/descriptions/status?item_ids=1,abc", nil, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("reports drafts ready for review", func(t *testing.T) {
		ta := newTestApp()
		ta.catalog.AddItem(1, "First")
		_, err := ta.records.Mutate(context.Background(), 1, func(r *models.GenerationRecord) error {
			r.Status = models.StatusCompleted
			r.Mode = models.ModeReview
			r.DraftContent = "<p>draft</p>"
			return nil
		})
		require.NoError(t, err)

		resp := ta.request(t, http.MethodGet, "/api/v1/descriptions/status?item_ids=1,2", nil, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var report reconcile.StatusReport
		decodeBody(t, resp, &report)
		require.Len(t, report.CompletedItems, 1)
		assert.Equal(t, uint(1), report.CompletedItems[0].ItemID)
		assert.Zero(t, report.RemainingCount)
	})
}

func TestApplyEndpoint(t *testing.T) {
	t.Run("applies a stored draft", func(t *testing.T) {
		ta := newTestApp()
		ta.catalog.AddItem(1, "First")
		_, err := ta.records.Mutate(context.Background(), 1, func(r *models.GenerationRecord) error {
			r.Status = models.StatusCompleted
			r.Mode = models.ModeReview
			r.DraftContent = "<p>draft</p>"
			return nil
		})
		require.NoError(t, err)

		resp := ta.request(t, http.MethodPost, "/api/v1/descriptions/apply", map[string]interface{}{
			"item_id": 1,
		}, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "<p>draft</p>", ta.catalog.Description(1))
	})

	t.Run("fails without a draft", func(t *testing.T) {
		ta := newTestApp()
		ta.catalog.AddItem(1, "First")
		resp := ta.request(t, http.MethodPost, "/api/v1/descriptions/apply", map[string]interface{}{
			"item_id": 1,
		}, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeclineEndpoints(t *testing.T) {
	ta := newTestApp()
	ta.catalog.AddItem(1, "First")
	_, err := ta.records.Mutate(context.Background(), 1, func(r *models.GenerationRecord) error {
		r.Status = models.StatusCompleted
		r.Mode = models.ModeReview
		r.DraftContent = "<p>draft</p>"
		return nil
	})
	require.NoError(t, err)

	resp := ta.request(t, http.MethodPost, "/api/v1/descriptions/decline", map[string]interface{}{"item_id": 1}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rec, err := ta.records.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, rec.Declined)

	resp = ta.request(t, http.MethodPost, "/api/v1/descriptions/undo-decline", map[string]interface{}{"item_id": 1}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rec, err = ta.records.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, rec.Declined)
}

func TestClearEndpoint(t *testing.T) {
	t.Run("clears generation state", func(t *testing.T) {
		ta := newTestApp()
		_, err := ta.records.Mutate(context.Background(), 1, func(r *models.GenerationRecord) error {
			r.Status = models.StatusCompleted
			return nil
		})
		require.NoError(t, err)

		resp := ta.request(t, http.MethodDelete, "/api/v1/descriptions/1/meta", nil, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		rec, err := ta.records.Get(context.Background(), 1)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("rejects a malformed id", func(t *testing.T) {
		ta := newTestApp()
		resp := ta.request(t, http.MethodDelete, "/api/v1/descriptions/abc/meta", nil, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHealthEndpoint(t *testing.T) {
	ta := newTestApp()
	resp := ta.request(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
