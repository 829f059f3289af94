package synth

import (
	"io"
	"strings"

	"tryonstudio/internal/fault"
	"tryonstudio/internal/imgx"
)

// maxSearchDepth bounds the last-resort tree walk so cyclic or enormous
// response objects cannot stall normalization.
const maxSearchDepth = 8

// Normalize flattens a synthesis output into a single image URL. Shapes are
// tried in priority order: direct string, array of URLs, object with an
// "output" array, raw image bytes (returned as-is when they spell out a URL,
// otherwise wrapped as a data URI), and finally a bounded recursive search
// for any URL-like string.
func Normalize(output any) (string, error) {
	switch v := output.(type) {
	case nil:
		return "", fault.New(fault.KindNormalization, "synthesis service returned no output")
	case string:
		if isURL(v) {
			return v, nil
		}
	case []byte:
		return normalizeBytes(v)
	case io.Reader:
		data, err := io.ReadAll(io.LimitReader(v, imgx.MaxFetchBytes))
		if err != nil {
			return "", fault.Wrap(fault.KindNormalization, err, "read synthesis stream")
		}
		return normalizeBytes(data)
	}

	if arr, ok := output.([]any); ok && len(arr) > 0 {
		if first, ok := arr[0].(string); ok && isURL(first) {
			return first, nil
		}
	}

	if obj, ok := output.(map[string]any); ok {
		if arr, ok := obj["output"].([]any); ok && len(arr) > 0 {
			if first, ok := arr[0].(string); ok && isURL(first) {
				return first, nil
			}
		}
	}

	if found := searchURL(output, 0); found != "" {
		return found, nil
	}
	return "", fault.New(fault.KindNormalization, "no usable image URL in synthesis response")
}

func normalizeBytes(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fault.New(fault.KindNormalization, "synthesis stream was empty")
	}
	// Some backends stream back the URL as plain text.
	if text := strings.TrimSpace(string(data)); isURL(text) && !strings.ContainsAny(text, " \n") {
		return text, nil
	}
	return imgx.DataURI(data), nil
}

// searchURL walks maps and slices looking for any URL-valued string.
func searchURL(v any, depth int) string {
	if depth > maxSearchDepth {
		return ""
	}
	switch node := v.(type) {
	case string:
		if isURL(node) {
			return node
		}
	case []any:
		for _, item := range node {
			if found := searchURL(item, depth+1); found != "" {
				return found
			}
		}
	case map[string]any:
		for _, item := range node {
			if found := searchURL(item, depth+1); found != "" {
				return found
			}
		}
	}
	return ""
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http")
}
