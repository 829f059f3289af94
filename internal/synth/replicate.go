package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tryonstudio/internal/imgx"
)

// ReplicateClient runs image-to-image models hosted on Replicate using the
// synchronous (Prefer: wait) prediction API.
type ReplicateClient struct {
	token  string
	model  string
	client *http.Client
}

const defaultReplicateModel = "black-forest-labs/flux-kontext-pro"

// NewReplicateClient constructs a client for the given owner/name model.
func NewReplicateClient(token, model string, timeout time.Duration) *ReplicateClient {
	if strings.TrimSpace(model) == "" {
		model = defaultReplicateModel
	}
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	return &ReplicateClient{
		token:  token,
		model:  strings.Trim(model, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// Generate posts one prediction and returns its output field. The output
// shape varies by model version; callers normalize it.
func (c *ReplicateClient) Generate(ctx context.Context, req Request) (any, error) {
	if strings.TrimSpace(c.token) == "" {
		return nil, fmt.Errorf("replicate: missing API token")
	}
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("replicate: conditioning image is required")
	}

	input := map[string]any{
		"prompt":      req.Prompt,
		"input_image": imgx.DataURI(req.Image),
	}
	if req.NegativePrompt != "" {
		input["negative_prompt"] = req.NegativePrompt
	}
	if req.OutputFormat != "" {
		input["output_format"] = req.OutputFormat
	}
	if req.SafetyTolerance > 0 {
		input["safety_tolerance"] = req.SafetyTolerance
	}

	body, err := json.Marshal(map[string]any{"input": input})
	if err != nil {
		return nil, fmt.Errorf("replicate: marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("https://api.replicate.com/v1/models/%s/predictions", c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("replicate: request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Prefer", "wait")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("replicate: perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var failure struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return nil, fmt.Errorf("replicate: status %d: %s", resp.StatusCode, failure.Detail)
	}

	var prediction map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("replicate: decode response: %w", err)
	}

	if status, _ := prediction["status"].(string); status == "failed" || status == "canceled" {
		detail, _ := prediction["error"].(string)
		return nil, fmt.Errorf("replicate: prediction %s: %s", status, detail)
	}

	if output, ok := prediction["output"]; ok && output != nil {
		return output, nil
	}
	return prediction, nil
}
