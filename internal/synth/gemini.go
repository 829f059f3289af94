package synth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiClient renders images via Gemini inline image outputs. The response
// is raw image bytes rather than a hosted URL.
type GeminiClient struct {
	apiKey  string
	model   string
	timeout time.Duration
}

const defaultGeminiImageModel = "gemini-2.5-flash-image"

// NewGeminiClient constructs a generator able to request inline images.
func NewGeminiClient(apiKey, model string, timeout time.Duration) *GeminiClient {
	if strings.TrimSpace(model) == "" {
		model = defaultGeminiImageModel
	}
	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
	}
}

// Generate sends the conditioning image and instruction to Gemini and
// returns the inline image bytes from the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (any, error) {
	if c == nil || strings.TrimSpace(c.apiKey) == "" {
		return nil, fmt.Errorf("gemini image: client unavailable")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("gemini image: empty prompt")
	}

	childCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client, err := genai.NewClient(childCtx, &genai.ClientConfig{
		APIKey: c.apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini image: create client: %w", err)
	}

	prompt := req.Prompt
	if req.NegativePrompt != "" {
		prompt = fmt.Sprintf("%s\n\nStrictly avoid: %s.", prompt, req.NegativePrompt)
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if len(req.Image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Image, "image/jpeg"))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := client.Models.GenerateContent(childCtx, c.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini image: render failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini image: no candidates returned")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		return part.InlineData.Data, nil
	}
	return nil, fmt.Errorf("gemini image: candidate carried no image data")
}
