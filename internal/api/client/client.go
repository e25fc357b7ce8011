// Package client provides the API client for the Productbird generation service
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/productbird/connector/internal/logger"
)

// Endpoint paths on the generation service
const (
	// GenerateEndpoint is the single-item submission endpoint
	GenerateEndpoint = "/api/v1/generate/product-description"
	// GenerateBulkEndpoint is the bulk submission endpoint
	GenerateBulkEndpoint = GenerateEndpoint + "/bulk"
)

const (
	// ProdBaseURL is the production service base URL
	ProdBaseURL = "https://app.productbird.ai"
	// LocalBaseURL is the local development base URL
	LocalBaseURL = "http://localhost:5173"

	// DefaultTimeout is the default timeout for API requests
	DefaultTimeout = 30 * time.Second

	// MaxBatchSize is the largest number of payloads one bulk call may carry.
	// Larger batches are rejected client-side, never sent to the network.
	MaxBatchSize = 250
)

// Client is the interface for the generation service API
type Client interface {
	// Generate submits one item for generation
	Generate(ctx context.Context, payload GenerationPayload) (*GenerateResult, error)

	// GenerateBulk submits up to MaxBatchSize items in one call
	GenerateBulk(ctx context.Context, payloads []GenerationPayload) (*BulkResult, error)

	// PollStatus checks the workflow state of a live job
	PollStatus(ctx context.Context, jobID string) (*StatusResult, error)
}

var _ Client = (*APIClient)(nil)

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string

	// APIKey is the bearer credential sent with every request
	APIKey string

	// Timeout is the request timeout
	Timeout time.Duration
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: ProdBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (*APIClient, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = ProdBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	parsed, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &APIClient{
		baseURL: fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host),
		apiKey:  opts.APIKey,
		timeout: opts.Timeout,
	}, nil
}

// Generate submits one item for generation
func (c *APIClient) Generate(ctx context.Context, payload GenerationPayload) (*GenerateResult, error) {
	agent, err := c.createAgent(ctx, http.MethodPost, GenerateEndpoint, payload)
	if err != nil {
		return nil, err
	}

	var result GenerateResult
	if err := c.doRequest(agent, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateBulk submits up to MaxBatchSize items in one call
func (c *APIClient) GenerateBulk(ctx context.Context, payloads []GenerationPayload) (*BulkResult, error) {
	if len(payloads) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d payloads, max %d", ErrBatchTooLarge, len(payloads), MaxBatchSize)
	}

	agent, err := c.createAgent(ctx, http.MethodPost, GenerateBulkEndpoint, payloads)
	if err != nil {
		return nil, err
	}

	var result BulkResult
	if err := c.doRequest(agent, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PollStatus checks the workflow state of a live job
func (c *APIClient) PollStatus(ctx context.Context, jobID string) (*StatusResult, error) {
	endpoint := fmt.Sprintf("%s?statusId=%s", GenerateEndpoint, url.QueryEscape(jobID))
	agent, err := c.createAgent(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var result StatusResult
	if err := c.doRequest(agent, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// createAgent creates a new Fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string, body interface{}) (*fiber.Agent, error) {
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	// Set timeout from context or client default
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	agent.Set("Content-Type", "application/json")
	agent.Set("Accept", "application/json")
	agent.Set("Authorization", "Bearer "+c.apiKey)

	if body != nil {
		agent.JSON(body)
	}

	return agent, nil
}

// doRequest sends the HTTP request and decodes the response into v
func (c *APIClient) doRequest(agent *fiber.Agent, v interface{}) error {
	statusCode, body, errs := agent.Bytes()
	if len(errs) > 0 {
		logger.Errorf("productbird api request failed: %v", errs[0])
		return fmt.Errorf("error sending request: %w", errs[0])
	}

	if statusCode < 200 || statusCode >= 300 {
		return &APIError{
			Status: statusCode,
			Body:   string(body),
		}
	}

	if v == nil {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}
