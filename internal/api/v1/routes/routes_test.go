package routes

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRoute(t *testing.T) {
	assert.Equal(t, "/health", GetRoute(HealthCheck))
	assert.Equal(t, "/api/v1/descriptions/bulk", GetRoute(SubmitBatch))
	assert.Equal(t, "/api/v1/descriptions/callback", GetRoute(Callback))
	assert.Equal(t, "/api/v1/descriptions/:id/meta", GetRoute(ClearRecord))
	assert.Empty(t, GetRoute("NoSuchRoute"))
}

func TestBuildURL(t *testing.T) {
	assert.Equal(t, "/api/v1/descriptions/bulk", SubmitBatchURL())
	assert.Equal(t, "/api/v1/descriptions/42/meta", ClearRecordURL("42"))

	query := url.Values{}
	query.Set("item_ids", "1,2,3")
	assert.Equal(t, "/api/v1/descriptions/status?item_ids=1%2C2%2C3", CheckStatusURL(query))

	query = url.Values{}
	query.Set("mode", "auto-apply")
	assert.Equal(t, "/api/v1/descriptions/callback?mode=auto-apply", CallbackURL(query))

	assert.Empty(t, BuildURL("NoSuchRoute", nil, nil))
}
