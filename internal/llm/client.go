package llm

import "context"

// Client defines the text/vision generation behaviour the pipeline relies on.
// Both calls return the raw candidate text; callers own any JSON recovery.
type Client interface {
	// GenerateText sends a text-only prompt and returns the response text.
	GenerateText(ctx context.Context, prompt string) (string, error)
	// GenerateVision sends a prompt together with inline image data.
	GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}
