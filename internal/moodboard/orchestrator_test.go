package moodboard

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryonstudio/internal/fault"
	"tryonstudio/internal/imgx"
	"tryonstudio/internal/prompt"
	"tryonstudio/internal/scene"
	"tryonstudio/internal/synth"
)

type fakeSynth struct {
	outputs  []any
	errs     []error
	requests []synth.Request
}

func (f *fakeSynth) Generate(_ context.Context, req synth.Request) (any, error) {
	idx := len(f.requests)
	f.requests = append(f.requests, req)
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx < len(f.outputs) {
		return f.outputs[idx], nil
	}
	return f.outputs[len(f.outputs)-1], nil
}

type fakeLLM struct {
	responses []string
	calls     int
}

func (f *fakeLLM) GenerateText(_ context.Context, _ string) (string, error) {
	idx := f.calls
	f.calls++
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx], nil
}

func (f *fakeLLM) GenerateVision(ctx context.Context, prompt string, _ []byte, _ string) (string, error) {
	return f.GenerateText(ctx, prompt)
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 80, B: 120, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, img, nil))
	return buf.Bytes()
}

func frontServer(t *testing.T) (*httptest.Server, []byte) {
	t.Helper()
	body := testJPEG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, body
}

func TestRunLifestyle(t *testing.T) {
	srv, frontBody := frontServer(t)
	frontURL := srv.URL + "/front.jpg"

	desc := scene.Description{
		Prompt: "strolling along a canal at dusk",
		Model:  scene.ModelProfile{Identity: "female model"},
	}
	composite := []byte("composite-jpeg")

	synthClient := &fakeSynth{outputs: []any{
		frontURL,
		"https://renders.example.com/closeup.jpg",
		"https://renders.example.com/back.jpg",
		"https://renders.example.com/side.jpg",
	}}

	var seen []View
	orch := &Orchestrator{
		Synth:      synthClient,
		HTTPClient: srv.Client(),
		OnView:     func(v View) { seen = append(seen, v) },
	}

	board, err := orch.Run(context.Background(), composite, desc, scene.BackgroundLifestyle)
	require.NoError(t, err)

	t.Run("labels in fixed order", func(t *testing.T) {
		require.Len(t, board, 4)
		labels := make([]string, 0, 4)
		for _, v := range board {
			labels = append(labels, v.Label)
		}
		assert.Equal(t, []string{"Front", "Close-up", "Back", "Side"}, labels)
		assert.Equal(t, frontURL, board[0].URL)
	})

	t.Run("progress callback fires per view", func(t *testing.T) {
		assert.Equal(t, []View(board), seen)
	})

	t.Run("front conditioned on composite, rest on front result", func(t *testing.T) {
		require.Len(t, synthClient.requests, 4)
		assert.Equal(t, composite, synthClient.requests[0].Image)

		want, err := imgx.ReencodeJPEG(frontBody, 95)
		require.NoError(t, err)
		for i := 1; i < 4; i++ {
			assert.Equal(t, want, synthClient.requests[i].Image, "request %d", i)
		}
	})

	t.Run("requests carry format and tolerance", func(t *testing.T) {
		for _, req := range synthClient.requests {
			assert.Equal(t, "jpg", req.OutputFormat)
			assert.Equal(t, synth.MaxSafetyTolerance, req.SafetyTolerance)
			assert.Equal(t, prompt.NegativeConstraints, req.NegativePrompt)
		}
	})
}

func TestRunStudioDerivesGarmentJSONOnce(t *testing.T) {
	srv, _ := frontServer(t)

	llmClient := &fakeLLM{responses: []string{
		`{"prompt":"transfer outfit","garment_transfer":{}}`,
		`{"pose":"front"}`,
		`{"pose":"close-up"}`,
		`{"pose":"back"}`,
		`{"pose":"side"}`,
	}}
	synthClient := &fakeSynth{outputs: []any{srv.URL + "/front.jpg"}}

	orch := &Orchestrator{
		Prompts:    prompt.NewSynthesizer(llmClient),
		Synth:      synthClient,
		HTTPClient: srv.Client(),
	}

	board, err := orch.Run(context.Background(), []byte("composite"), scene.Description{}, scene.BackgroundStudio)
	require.NoError(t, err)
	assert.Len(t, board, 4)

	// One garment/model derivation plus one pose derivation per angle.
	assert.Equal(t, 5, llmClient.calls)
}

func TestRunAllOrNothing(t *testing.T) {
	srv, _ := frontServer(t)

	synthClient := &fakeSynth{
		outputs: []any{srv.URL + "/front.jpg", srv.URL + "/closeup.jpg", nil},
		errs:    []error{nil, nil, errors.New("model overloaded")},
	}
	orch := &Orchestrator{Synth: synthClient, HTTPClient: srv.Client()}

	board, err := orch.Run(context.Background(), []byte("composite"), scene.Description{}, scene.BackgroundLifestyle)
	require.Error(t, err)
	assert.Nil(t, board)
	assert.True(t, fault.IsKind(err, fault.KindService))
}

func TestRunInputValidation(t *testing.T) {
	orch := &Orchestrator{Synth: &fakeSynth{outputs: []any{"https://x.example/y.jpg"}}}

	_, err := orch.Run(context.Background(), nil, scene.Description{}, scene.BackgroundLifestyle)
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindInput))
}

func TestRunFrontDownloadFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	synthClient := &fakeSynth{outputs: []any{srv.URL + "/front.jpg"}}
	orch := &Orchestrator{Synth: synthClient, HTTPClient: srv.Client()}

	board, err := orch.Run(context.Background(), []byte("composite"), scene.Description{}, scene.BackgroundLifestyle)
	require.Error(t, err)
	assert.Nil(t, board)
	// Only the Front request was ever issued.
	assert.Len(t, synthClient.requests, 1)
}
