package synth

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryonstudio/internal/fault"
	"tryonstudio/internal/media"
)

const renderURL = "https://replicate.delivery/pbxt/render.jpg"

func TestNormalizeShapes(t *testing.T) {
	t.Run("direct string", func(t *testing.T) {
		out, err := Normalize(renderURL)
		require.NoError(t, err)
		assert.Equal(t, renderURL, out)
	})

	t.Run("array of URLs", func(t *testing.T) {
		out, err := Normalize([]any{renderURL, "https://example.com/second.jpg"})
		require.NoError(t, err)
		assert.Equal(t, renderURL, out)
	})

	t.Run("object with output array", func(t *testing.T) {
		out, err := Normalize(map[string]any{"output": []any{renderURL}})
		require.NoError(t, err)
		assert.Equal(t, renderURL, out)
	})

	t.Run("binary stream becomes data URI", func(t *testing.T) {
		out, err := Normalize([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "data:image/jpeg;base64,"))
	})

	t.Run("stream spelling out a URL returns the URL", func(t *testing.T) {
		out, err := Normalize([]byte(renderURL + "\n"))
		require.NoError(t, err)
		assert.Equal(t, renderURL, out)
	})

	t.Run("reader input", func(t *testing.T) {
		out, err := Normalize(bytes.NewReader([]byte(renderURL)))
		require.NoError(t, err)
		assert.Equal(t, renderURL, out)
	})

	t.Run("recursive search finds nested URL", func(t *testing.T) {
		nested := map[string]any{
			"status": "succeeded",
			"result": map[string]any{
				"images": []any{map[string]any{"url": renderURL}},
			},
		}
		out, err := Normalize(nested)
		require.NoError(t, err)
		assert.Equal(t, renderURL, out)
	})

	t.Run("all shapes agree on the same URL", func(t *testing.T) {
		shapes := []any{
			renderURL,
			[]any{renderURL},
			map[string]any{"output": []any{renderURL}},
			[]byte(renderURL),
			map[string]any{"deep": map[string]any{"url": renderURL}},
		}
		for i, shape := range shapes {
			out, err := Normalize(shape)
			require.NoError(t, err, "shape %d", i)
			assert.Equal(t, renderURL, out, "shape %d", i)
		}
	})
}

func TestNormalizeFailures(t *testing.T) {
	t.Run("nil output", func(t *testing.T) {
		_, err := Normalize(nil)
		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindNormalization))
	})

	t.Run("no URL anywhere", func(t *testing.T) {
		_, err := Normalize(map[string]any{"status": "failed", "detail": []any{"oops"}})
		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindNormalization))
	})

	t.Run("empty byte stream", func(t *testing.T) {
		_, err := Normalize([]byte{})
		require.Error(t, err)
		assert.True(t, fault.IsKind(err, fault.KindNormalization))
	})

	t.Run("search depth is bounded", func(t *testing.T) {
		deep := any(renderURL)
		for i := 0; i < maxSearchDepth+5; i++ {
			deep = map[string]any{"wrap": deep}
		}
		_, err := Normalize(deep)
		assert.Error(t, err)
	})
}

type stubUploader struct {
	url  string
	err  error
	size int64
}

func (s *stubUploader) Upload(_ context.Context, input media.UploadInput) (media.UploadResult, error) {
	s.size = input.Size
	if s.err != nil {
		return media.UploadResult{}, s.err
	}
	return media.UploadResult{URL: s.url}, nil
}

func TestResolveURL(t *testing.T) {
	raw := []byte{0xFF, 0xD8, 0xFF, 0x01}

	t.Run("uploads raw bytes for a stable URL", func(t *testing.T) {
		up := &stubUploader{url: "https://cdn.example.com/render.jpg"}
		out, err := ResolveURL(context.Background(), raw, up)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/render.jpg", out)
		assert.Equal(t, int64(len(raw)), up.size)
	})

	t.Run("falls back to data URI when upload fails", func(t *testing.T) {
		up := &stubUploader{err: errors.New("bucket gone")}
		out, err := ResolveURL(context.Background(), raw, up)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "data:image/jpeg;base64,"))
	})

	t.Run("non-binary output skips the uploader", func(t *testing.T) {
		up := &stubUploader{url: "https://cdn.example.com/should-not-be-used.jpg"}
		out, err := ResolveURL(context.Background(), renderURL, up)
		require.NoError(t, err)
		assert.Equal(t, renderURL, out)
	})
}
