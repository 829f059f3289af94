package scene

import (
	"errors"
	"strings"
)

// ErrNoJSON indicates that no complete JSON object was found in the text.
var ErrNoJSON = errors.New("no JSON object found in text")

// ExtractObject returns the first balanced JSON object embedded in text.
// Vision models wrap their JSON in prose; slicing from the first '{' to the
// last '}' breaks as soon as the surrounding prose contains a brace, so this
// walks brace depth instead, honoring string literals and escapes.
func ExtractObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSON
}
