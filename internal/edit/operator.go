package edit

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"tryonstudio/internal/fault"
	"tryonstudio/internal/imgx"
	"tryonstudio/internal/media"
	"tryonstudio/internal/prompt"
	"tryonstudio/internal/synth"
)

// Instruction is polymorphic over the two edit variants: free text, or a
// structured modifier selected from the catalog. When both are set the
// modifier wins.
type Instruction struct {
	Text       string `json:"text,omitempty"`
	ModifierID string `json:"modifier_id,omitempty"`
}

// resolve returns the effective instruction text.
func (i Instruction) resolve() (string, error) {
	if i.ModifierID != "" {
		modifier, ok := FindModifier(i.ModifierID)
		if !ok {
			return "", fault.New(fault.KindInput, "unknown modifier %q", i.ModifierID)
		}
		return modifier.Prompt, nil
	}
	if text := strings.TrimSpace(i.Text); text != "" {
		return text, nil
	}
	return "", fault.New(fault.KindInput, "edit instruction is required")
}

const guardTemplate = `Apply the following modification to this image: "%s". Do NOT change the model's identity, clothing, pose, background, or lighting. Only apply the requested change.`

// Operator performs single-image edits. It is stateless across calls;
// concurrent edits of different images are safe.
type Operator struct {
	Synth      synth.Client
	Uploader   media.Uploader
	HTTPClient *http.Client
}

// NewOperator constructs an edit operator over the given synthesis client.
func NewOperator(client synth.Client, uploader media.Uploader, httpClient *http.Client) *Operator {
	return &Operator{Synth: client, Uploader: uploader, HTTPClient: httpClient}
}

// Edit downloads the target image, wraps the instruction in the preservation
// guard, and re-runs synthesis at the heightened safety tolerance. It returns
// the replacement image URL; the source is never mutated.
func (o *Operator) Edit(ctx context.Context, targetURL string, instruction Instruction) (string, error) {
	if o == nil || o.Synth == nil {
		return "", fault.New(fault.KindService, "edit operator unavailable")
	}
	if strings.TrimSpace(targetURL) == "" {
		return "", fault.New(fault.KindInput, "target image URL is required")
	}
	text, err := instruction.resolve()
	if err != nil {
		return "", err
	}

	source, err := imgx.Fetch(ctx, o.HTTPClient, targetURL)
	if err != nil {
		return "", fault.Wrap(fault.KindEdit, err, "download target image")
	}
	conditioning, err := imgx.ReencodeJPEG(source, 95)
	if err != nil {
		return "", fault.Wrap(fault.KindEdit, err, "re-encode target image")
	}

	output, err := o.Synth.Generate(ctx, synth.Request{
		Prompt:          fmt.Sprintf(guardTemplate, text),
		NegativePrompt:  prompt.NegativeConstraints,
		Image:           conditioning,
		OutputFormat:    "jpg",
		SafetyTolerance: synth.MaxSafetyTolerance,
	})
	if err != nil {
		return "", fault.Wrap(fault.KindService, err, "edit synthesis failed")
	}

	url, err := synth.ResolveURL(ctx, output, o.Uploader)
	if err != nil {
		return "", fault.Wrap(fault.KindEdit, err, "no usable image in edit response")
	}
	return url, nil
}
