package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSONObject finds the JSON object embedded in model output and decodes it into v.
// Markdown code fences and any prose around the object are ignored.
func DecodeJSONObject(text string, v any) error {
	text = StripCodeFences(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("no json object found in response")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("failed to parse json: %w", err)
	}
	return nil
}

// StripCodeFences removes surrounding ``` or ```json fences
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl != -1 && !strings.Contains(text[:nl], "{") {
		text = text[nl+1:] // drop language tag line
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
