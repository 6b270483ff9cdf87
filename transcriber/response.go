package transcriber

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Shape records which form a response body had when its text was extracted.
type Shape int

const (
	// ShapeText is an object with a string "text" field.
	ShapeText Shape = iota
	// ShapeMapping is an object carrying the text under another known key.
	ShapeMapping
	// ShapeRaw is anything else; the text is the body itself.
	ShapeRaw
)

func (s Shape) String() string {
	switch s {
	case ShapeText:
		return "text"
	case ShapeMapping:
		return "mapping"
	default:
		return "raw"
	}
}

var mappingPaths = []string{
	"transcription",
	"transcript",
	"results[0].alternatives[0].transcript",
	"result.text",
}

// extractText resolves the response shape once. It never fails: a body that
// matches no known field is returned verbatim as ShapeRaw.
func extractText(body []byte) (string, Shape) {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return strings.TrimSpace(string(body)), ShapeRaw
	}

	if m, ok := root.(map[string]any); ok {
		if text, ok := m["text"].(string); ok {
			return text, ShapeText
		}
		for _, p := range mappingPaths {
			if text, ok := extractByPath(root, p); ok {
				return text, ShapeMapping
			}
		}
	}

	if s, ok := root.(string); ok {
		return s, ShapeRaw
	}
	return strings.TrimSpace(string(body)), ShapeRaw
}

// extractByPath walks a dotted path with optional [n] indexes, for example
// "results[0].alternatives[0].transcript". Only string leaves match.
func extractByPath(root any, path string) (string, bool) {
	cur := root
	for _, part := range strings.Split(path, ".") {
		key, idxs, err := parseKeyAndIndexes(part)
		if err != nil {
			return "", false
		}
		if key != "" {
			m, ok := cur.(map[string]any)
			if !ok {
				return "", false
			}
			if cur, ok = m[key]; !ok {
				return "", false
			}
		}
		for _, idx := range idxs {
			arr, ok := cur.([]any)
			if !ok || idx < 0 || idx >= len(arr) {
				return "", false
			}
			cur = arr[idx]
		}
	}
	s, ok := cur.(string)
	return s, ok
}

func parseKeyAndIndexes(token string) (string, []int, error) {
	if token == "" {
		return "", nil, fmt.Errorf("empty token")
	}
	br := strings.IndexByte(token, '[')
	if br == -1 {
		return token, nil, nil
	}
	key := token[:br]
	var idxs []int
	rest := token[br:]
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, fmt.Errorf("unexpected %q in %q", rest[0], token)
		}
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			return "", nil, fmt.Errorf("unclosed index in %q", token)
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, fmt.Errorf("bad index in %q: %w", token, err)
		}
		idxs = append(idxs, n)
		rest = rest[end+1:]
	}
	return key, idxs, nil
}
