// Package imgx bundles the small image plumbing shared by the pipeline:
// normalizing arbitrary decodable images to JPEG and fetching conditioning
// images back from URLs or data URIs.
package imgx

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
)

// MaxFetchBytes caps downloaded conditioning images.
const MaxFetchBytes = 20 * 1024 * 1024

// ReencodeJPEG decodes any supported image format and re-encodes it as JPEG
// at the given quality. Synthesis backends expect JPEG conditioning input.
func ReencodeJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI wraps JPEG bytes in the data URL form synthesis services accept as
// embedded image input.
func DataURI(data []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}

// Fetch retrieves image bytes from an http(s) URL or decodes them from a
// data URI.
func Fetch(ctx context.Context, client *http.Client, src string) ([]byte, error) {
	if strings.HasPrefix(src, "data:") {
		return decodeDataURI(src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image status %d from %s", resp.StatusCode, src)
	}

	limited := io.LimitReader(resp.Body, MaxFetchBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) > MaxFetchBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxFetchBytes)
	}
	return data, nil
}

func decodeDataURI(raw string) ([]byte, error) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid data URL")
	}
	data, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode data URL: %w", err)
	}
	return data, nil
}
