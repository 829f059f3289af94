package synth

import (
	"bytes"
	"context"
	"log"

	"tryonstudio/internal/media"
)

// ResolveURL turns a synthesis output into a stable URL. Raw image bytes are
// uploaded when hosting is configured so callers get a fetchable URL instead
// of an inline data URI; everything else goes through shape normalization.
func ResolveURL(ctx context.Context, output any, uploader media.Uploader) (string, error) {
	if data, ok := output.([]byte); ok && uploader != nil {
		result, err := uploader.Upload(ctx, media.UploadInput{
			Filename:    "render.jpg",
			ContentType: "image/jpeg",
			Body:        bytes.NewReader(data),
			Size:        int64(len(data)),
		})
		if err == nil && result.URL != "" {
			return result.URL, nil
		}
		if err != nil {
			log.Printf("synth: upload render failed, falling back to inline data: %v", err)
		}
	}
	return Normalize(output)
}
