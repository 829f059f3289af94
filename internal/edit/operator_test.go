package edit

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryonstudio/internal/fault"
	"tryonstudio/internal/synth"
)

type fakeSynth struct {
	output   any
	err      error
	requests []synth.Request
}

func (f *fakeSynth) Generate(_ context.Context, req synth.Request) (any, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

func imageServer(t *testing.T) *httptest.Server {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 90, G: 60, B: 30, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, img, nil))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEdit(t *testing.T) {
	t.Run("free text gets the preservation guard", func(t *testing.T) {
		srv := imageServer(t)
		client := &fakeSynth{output: "https://renders.example.com/edited.jpg"}
		op := NewOperator(client, nil, srv.Client())

		url, err := op.Edit(context.Background(), srv.URL+"/front.jpg", Instruction{Text: "make the jacket red"})
		require.NoError(t, err)
		assert.Equal(t, "https://renders.example.com/edited.jpg", url)

		require.Len(t, client.requests, 1)
		req := client.requests[0]
		assert.Contains(t, req.Prompt, `Apply the following modification to this image: "make the jacket red".`)
		assert.Contains(t, req.Prompt, "Do NOT change the model's identity")
		assert.Equal(t, synth.MaxSafetyTolerance, req.SafetyTolerance)
		assert.Equal(t, "jpg", req.OutputFormat)
		assert.NotEmpty(t, req.Image)
	})

	t.Run("modifier wins over free text", func(t *testing.T) {
		srv := imageServer(t)
		client := &fakeSynth{output: "https://renders.example.com/edited.jpg"}
		op := NewOperator(client, nil, srv.Client())

		modifier, ok := FindModifier("lighting-golden-hour")
		require.True(t, ok)

		_, err := op.Edit(context.Background(), srv.URL+"/x.jpg", Instruction{
			Text:       "ignored",
			ModifierID: modifier.ID,
		})
		require.NoError(t, err)
		assert.Contains(t, client.requests[0].Prompt, modifier.Prompt)
		assert.NotContains(t, client.requests[0].Prompt, "ignored")
	})

	t.Run("unknown modifier", func(t *testing.T) {
		op := NewOperator(&fakeSynth{}, nil, nil)
		_, err := op.Edit(context.Background(), "https://x.example/y.jpg", Instruction{ModifierID: "no-such"})
		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindInput))
	})

	t.Run("missing instruction", func(t *testing.T) {
		op := NewOperator(&fakeSynth{}, nil, nil)
		_, err := op.Edit(context.Background(), "https://x.example/y.jpg", Instruction{})
		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindInput))
	})

	t.Run("missing target URL", func(t *testing.T) {
		op := NewOperator(&fakeSynth{}, nil, nil)
		_, err := op.Edit(context.Background(), "  ", Instruction{Text: "zoom out"})
		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindInput))
	})

	t.Run("download failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		t.Cleanup(srv.Close)

		client := &fakeSynth{output: "https://renders.example.com/edited.jpg"}
		op := NewOperator(client, nil, srv.Client())

		_, err := op.Edit(context.Background(), srv.URL+"/missing.jpg", Instruction{Text: "zoom out"})
		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindEdit))
		assert.Empty(t, client.requests)
	})

	t.Run("synthesis failure", func(t *testing.T) {
		srv := imageServer(t)
		op := NewOperator(&fakeSynth{err: errors.New("overloaded")}, nil, srv.Client())

		_, err := op.Edit(context.Background(), srv.URL+"/x.jpg", Instruction{Text: "zoom out"})
		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindService))
	})

	t.Run("binary output becomes data URI without hosting", func(t *testing.T) {
		srv := imageServer(t)
		op := NewOperator(&fakeSynth{output: []byte{0xFF, 0xD8, 0x01}}, nil, srv.Client())

		url, err := op.Edit(context.Background(), srv.URL+"/x.jpg", Instruction{Text: "zoom out"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))
	})
}

func TestCatalog(t *testing.T) {
	catalog := Catalog()
	require.NotEmpty(t, catalog)

	t.Run("entries are complete", func(t *testing.T) {
		seen := map[string]bool{}
		for _, m := range catalog {
			assert.NotEmpty(t, m.ID)
			assert.NotEmpty(t, m.Label)
			assert.NotEmpty(t, m.Category)
			assert.NotEmpty(t, m.Prompt)
			assert.False(t, seen[m.ID], "duplicate id %s", m.ID)
			seen[m.ID] = true
		}
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		catalog[0].Prompt = "mutated"
		fresh := Catalog()
		assert.NotEqual(t, "mutated", fresh[0].Prompt)
	})

	t.Run("find", func(t *testing.T) {
		m, ok := FindModifier("camera-zoom-out")
		require.True(t, ok)
		assert.Equal(t, "camera-zoom-out", m.ID)

		_, ok = FindModifier("missing")
		assert.False(t, ok)
	})
}
