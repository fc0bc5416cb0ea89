package decision

import (
	"encoding/json"
	"fmt"
	"strings"
)

// wire is the JSON object the planner asks the model to produce.
type wire struct {
	Action    string         `json:"action" jsonschema:"required,enum=USE_TOOL,enum=COMPLETE"`
	Tool      string         `json:"tool,omitempty" jsonschema_description:"Name of the tool to call when action is USE_TOOL"`
	Args      map[string]any `json:"args,omitempty" jsonschema_description:"Arguments for the tool"`
	Reasoning string         `json:"reasoning,omitempty" jsonschema_description:"Why you chose this action"`
	Answer    string         `json:"answer,omitempty" jsonschema_description:"Final answer when action is COMPLETE"`
}

// Extract decodes the first JSON decision found in raw. It never fails:
// unusable input yields a fallback Complete.
func Extract(raw string) Decision {
	if strings.TrimSpace(raw) == "" {
		return Fallback(EmptyResponseAnswer, "LLM returned empty response")
	}

	text := strings.TrimSpace(stripFence(raw))
	if !strings.HasPrefix(text, "{") {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start != -1 && end > start {
			text = text[start : end+1]
		}
	}

	var w wire
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return Fallback(ParseFailureAnswer, fmt.Sprintf("Failed to parse LLM response: %v", err))
	}

	switch strings.ToUpper(strings.TrimSpace(w.Action)) {
	case ActionUseTool:
		args := w.Args
		if args == nil {
			args = map[string]any{}
		}
		return UseTool{
			Tool:      strings.TrimSpace(w.Tool),
			Args:      args,
			Reasoning: w.Reasoning,
		}
	case ActionComplete:
		return Complete{
			Answer:    w.Answer,
			Reasoning: w.Reasoning,
		}
	default:
		return Fallback(ParseFailureAnswer, fmt.Sprintf("Failed to parse LLM response: unknown action %q", w.Action))
	}
}

// stripFence returns the body of the first ```json block, or of the first
// generic ``` block when there is no json block. Text without fences is
// returned unchanged.
func stripFence(text string) string {
	for _, marker := range []string{"```json", "```"} {
		idx := strings.Index(text, marker)
		if idx == -1 {
			continue
		}
		body := text[idx+len(marker):]
		if end := strings.Index(body, "```"); end != -1 {
			body = body[:end]
		}
		return body
	}
	return text
}
