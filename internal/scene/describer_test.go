package scene

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryonstudio/internal/fault"
)

type stubVisionClient struct {
	response   string
	err        error
	lastPrompt string
	lastImage  []byte
	calls      int
}

func (s *stubVisionClient) GenerateText(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	return s.response, s.err
}

func (s *stubVisionClient) GenerateVision(_ context.Context, prompt string, image []byte, _ string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	s.lastImage = image
	return s.response, s.err
}

func TestDescribe(t *testing.T) {
	composite := []byte("jpeg-bytes")

	t.Run("parses wrapped JSON response", func(t *testing.T) {
		client := &stubVisionClient{response: `Sure! {"prompt":"a model wearing a denim jacket","model":{"identity":"tall female model"}}`}
		d := NewDescriber(client)

		desc, err := d.Describe(context.Background(), composite, BackgroundStudio, nil)
		require.NoError(t, err)
		assert.Equal(t, "a model wearing a denim jacket", desc.Prompt)
		assert.Equal(t, "tall female model", desc.Model.Identity)
		assert.Equal(t, composite, client.lastImage)
	})

	t.Run("service failure", func(t *testing.T) {
		client := &stubVisionClient{err: errors.New("503")}
		d := NewDescriber(client)

		_, err := d.Describe(context.Background(), composite, BackgroundStudio, nil)
		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindService))
	})

	t.Run("response without JSON", func(t *testing.T) {
		client := &stubVisionClient{response: "I cannot analyze this image."}
		d := NewDescriber(client)

		_, err := d.Describe(context.Background(), composite, BackgroundStudio, nil)
		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindDescriptionParse))
	})

	t.Run("empty composite", func(t *testing.T) {
		d := NewDescriber(&stubVisionClient{})
		_, err := d.Describe(context.Background(), nil, BackgroundStudio, nil)
		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindInput))
	})
}

func TestBuildInstruction(t *testing.T) {
	t.Run("studio background", func(t *testing.T) {
		out := BuildInstruction(BackgroundStudio, nil)
		assert.Contains(t, out, "professional studio style")
		assert.Contains(t, out, "fashion analyst")
	})

	t.Run("lifestyle background", func(t *testing.T) {
		out := BuildInstruction(BackgroundLifestyle, nil)
		assert.Contains(t, out, "lifestyle/real-life setting")
	})

	t.Run("default model reference carries gender", func(t *testing.T) {
		out := BuildInstruction(BackgroundStudio, &ModelReferenceHint{Kind: "default", Gender: "female"})
		assert.Contains(t, out, "a female model with a professional appearance")
	})

	t.Run("custom model reference", func(t *testing.T) {
		out := BuildInstruction(BackgroundStudio, &ModelReferenceHint{Kind: "custom"})
		assert.Contains(t, out, "match the provided reference image")
	})

	t.Run("no reference omits model directive", func(t *testing.T) {
		out := BuildInstruction(BackgroundStudio, nil)
		assert.NotContains(t, out, "The model should")
	})
}
