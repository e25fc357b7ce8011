package client

// Workflow states reported by the generation service for a job
const (
	// RunStarted indicates the job has been picked up and is in progress
	RunStarted = "RUN_STARTED"
	// RunSuccess indicates the job finished and content is available
	RunSuccess = "RUN_SUCCESS"
	// RunFailed indicates the job failed
	RunFailed = "RUN_FAILED"
	// RunCanceled indicates the job was canceled on the service side
	RunCanceled = "RUN_CANCELED"
)

// GenerationPayload is the request body for a single generation submission.
// The bulk endpoint accepts an array of the same shape.
type GenerationPayload struct {
	ID                  uint     `json:"id"`
	Name                string   `json:"name"`
	SKU                 string   `json:"sku,omitempty"`
	Brand               string   `json:"brand,omitempty"`
	Categories          []string `json:"categories,omitempty"`
	Description         string   `json:"description,omitempty"`
	ShortDescription    string   `json:"short_description,omitempty"`
	Tone                string   `json:"tone,omitempty"`
	Formality           string   `json:"formality,omitempty"`
	PreviousDescription string   `json:"previous_description,omitempty"`
	CustomPrompt        string   `json:"custom_prompt,omitempty"`
	CallbackURL         string   `json:"callback_url,omitempty"`
}

// GenerateResult is the response to a single generation submission
type GenerateResult struct {
	JobID string `json:"statusId"`
}

// BulkItemResult is one scheduled item within a bulk submission response
type BulkItemResult struct {
	ItemID uint   `json:"productId"`
	JobID  string `json:"statusId"`
}

// BulkResult is the response to a bulk generation submission
type BulkResult struct {
	Results []BulkItemResult `json:"results"`
}

// StatusResult is the response to a job status poll
type StatusResult struct {
	WorkflowState string `json:"status"`
	Content       string `json:"description,omitempty"`
}
