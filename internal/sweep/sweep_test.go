package sweep

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/productbird/connector/internal/api/client"
	"github.com/productbird/connector/internal/catalog"
	"github.com/productbird/connector/internal/db/models"
	"github.com/productbird/connector/internal/reconcile"
	"github.com/productbird/connector/internal/store"
)

// pollClient serves canned poll responses keyed by job id
type pollClient struct {
	responses map[string]*client.StatusResult
	failing   map[string]bool
	polled    []string
}

func (p *pollClient) Generate(_ context.Context, _ client.GenerationPayload) (*client.GenerateResult, error) {
	return nil, errors.New("not expected during a sweep")
}

func (p *pollClient) GenerateBulk(_ context.Context, _ []client.GenerationPayload) (*client.BulkResult, error) {
	return nil, errors.New("not expected during a sweep")
}

func (p *pollClient) PollStatus(_ context.Context, jobID string) (*client.StatusResult, error) {
	p.polled = append(p.polled, jobID)
	if p.failing[jobID] {
		return nil, errors.New("poll failed")
	}
	if res, ok := p.responses[jobID]; ok {
		return res, nil
	}
	return &client.StatusResult{WorkflowState: client.RunStarted}, nil
}

func seedLive(t *testing.T, records *store.Memory, itemID uint, jobID string) {
	t.Helper()
	_, err := records.Mutate(context.Background(), itemID, func(r *models.GenerationRecord) error {
		r.Status = models.StatusRunning
		r.Mode = models.ModeReview
		r.ExternalJobID = jobID
		return nil
	})
	require.NoError(t, err)
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("settles every live job in one pass", func(t *testing.T) {
		records := store.NewMemory()
		cat := catalog.NewMemoryStore()
		api := &pollClient{responses: map[string]*client.StatusResult{}}

		for i := uint(1); i <= 5; i++ {
			cat.AddItem(i, fmt.Sprintf("Item %d", i))
			jobID := fmt.Sprintf("job-%d", i)
			seedLive(t, records, i, jobID)
			api.responses[jobID] = &client.StatusResult{
				WorkflowState: client.RunSuccess,
				Content:       fmt.Sprintf("<p>Item %d done</p>", i),
			}
		}

		engine := reconcile.NewEngine(records, cat, api, reconcile.Options{})
		NewRunner(engine, records, DefaultInterval).RunOnce(ctx)

		assert.Len(t, api.polled, 5)
		for i := uint(1); i <= 5; i++ {
			rec, err := records.Get(ctx, i)
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, models.StatusCompleted, rec.Status)
		}

		live, err := records.ListLiveJobs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, live)
	})

	t.Run("records skipped by page shifts settle on the next pass", func(t *testing.T) {
		records := store.NewMemory()
		cat := catalog.NewMemoryStore()
		api := &pollClient{responses: map[string]*client.StatusResult{}}

		for i := uint(1); i <= 5; i++ {
			cat.AddItem(i, fmt.Sprintf("Item %d", i))
			jobID := fmt.Sprintf("job-%d", i)
			seedLive(t, records, i, jobID)
			api.responses[jobID] = &client.StatusResult{
				WorkflowState: client.RunSuccess,
				Content:       fmt.Sprintf("<p>Item %d done</p>", i),
			}
		}

		engine := reconcile.NewEngine(records, cat, api, reconcile.Options{})
		runner := NewRunner(engine, records, DefaultInterval)
		runner.pageSize = 2

		// Settled records leave the live set mid-pass, so a single pass may
		// skip some. A bounded number of passes drains everything.
		for i := 0; i < 5; i++ {
			live, err := records.ListLiveJobs(ctx, nil)
			require.NoError(t, err)
			if len(live) == 0 {
				break
			}
			runner.RunOnce(ctx)
		}

		live, err := records.ListLiveJobs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, live)
	})

	t.Run("a failing poll does not stall the pass", func(t *testing.T) {
		records := store.NewMemory()
		cat := catalog.NewMemoryStore()
		api := &pollClient{
			responses: map[string]*client.StatusResult{
				"job-2": {WorkflowState: client.RunSuccess, Content: "<p>done</p>"},
			},
			failing: map[string]bool{"job-1": true},
		}
		cat.AddItem(1, "First")
		cat.AddItem(2, "Second")
		seedLive(t, records, 1, "job-1")
		seedLive(t, records, 2, "job-2")

		engine := reconcile.NewEngine(records, cat, api, reconcile.Options{})
		NewRunner(engine, records, DefaultInterval).RunOnce(ctx)

		rec, err := records.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, models.StatusRunning, rec.Status)

		rec, err = records.Get(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, rec.Status)
	})

	t.Run("no live jobs is a no-op", func(t *testing.T) {
		records := store.NewMemory()
		api := &pollClient{}
		engine := reconcile.NewEngine(records, catalog.NewMemoryStore(), api, reconcile.Options{})

		NewRunner(engine, records, DefaultInterval).RunOnce(ctx)
		assert.Empty(t, api.polled)
	})
}
