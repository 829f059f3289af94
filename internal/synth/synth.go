// Package synth talks to the image-synthesis service. The service is opaque:
// it accepts an instruction payload plus a conditioning image and returns an
// image reference in one of several shapes, which Normalize flattens to a
// single URL.
package synth

import "context"

// Request carries everything one synthesis call needs.
type Request struct {
	Prompt         string
	NegativePrompt string
	Image          []byte // JPEG conditioning image
	OutputFormat   string
	SafetyTolerance int
}

// MaxSafetyTolerance is the most permissive safety setting the service
// accepts; the edit path always runs at this level.
const MaxSafetyTolerance = 6

// Client runs one synthesis call. The returned value is the service's output
// in whatever shape it chose: a URL string, an array, an object, or raw image
// bytes. Callers pass it to Normalize.
type Client interface {
	Generate(ctx context.Context, req Request) (any, error)
}
