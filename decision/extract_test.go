package decision_test

import (
	"testing"

	"github.com/habiliai/spoar/decision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractValidJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want decision.Decision
	}{
		{
			name: "use tool",
			raw:  `{"action":"USE_TOOL","tool":"calculate","args":{"expr":"25*4+100"},"reasoning":"need math"}`,
			want: decision.UseTool{Tool: "calculate", Args: map[string]any{"expr": "25*4+100"}, Reasoning: "need math"},
		},
		{
			name: "complete",
			raw:  `{"action":"COMPLETE","answer":"200"}`,
			want: decision.Complete{Answer: "200"},
		},
		{
			name: "lowercase action",
			raw:  `{"action":"complete","answer":"ok"}`,
			want: decision.Complete{Answer: "ok"},
		},
		{
			name: "use tool without args",
			raw:  `{"action":"USE_TOOL","tool":"search"}`,
			want: decision.UseTool{Tool: "search", Args: map[string]any{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decision.Extract(tt.raw))
		})
	}
}

func TestExtractFallbacks(t *testing.T) {
	garbage := []string{
		"",
		"   \n\t ",
		"no braces at all",
		"{unbalanced",
		"}{",
		`{"action": "USE_TOOL", "tool": "x", "args": {"q": "}"`,
		`{"action":"DANCE"}`,
		"```json\n```",
		`prefix {"answer": "has {nested} braces"} and {"trailing": }`,
	}

	for _, raw := range garbage {
		d := decision.Extract(raw)
		require.NotNil(t, d, raw)

		c, ok := d.(decision.Complete)
		require.True(t, ok, "expected fallback for %q, got %#v", raw, d)
		assert.True(t, c.Fallback)
		assert.NotEmpty(t, c.Answer)
	}
}

func TestExtractEmptyAnswerText(t *testing.T) {
	c := decision.Extract("").(decision.Complete)
	assert.Equal(t, decision.EmptyResponseAnswer, c.Answer)

	c = decision.Extract("not json").(decision.Complete)
	assert.Equal(t, decision.ParseFailureAnswer, c.Answer)
	assert.Contains(t, c.Reasoning, "Failed to parse LLM response")
}

func TestExtractFirstFencedBlockWins(t *testing.T) {
	raw := "Here is my plan:\n```json\n{\"action\":\"COMPLETE\",\"answer\":\"first\"}\n```\n" +
		"and another:\n```json\n{\"action\":\"COMPLETE\",\"answer\":\"second\"}\n```"

	assert.Equal(t, decision.Complete{Answer: "first"}, decision.Extract(raw))
}

func TestExtractGenericFence(t *testing.T) {
	raw := "```\n{\"action\":\"USE_TOOL\",\"tool\":\"search\",\"args\":{\"topic\":\"go\"}}\n```"

	assert.Equal(t, decision.UseTool{Tool: "search", Args: map[string]any{"topic": "go"}}, decision.Extract(raw))
}

func TestExtractJSONFenceTakesPrecedenceOverPlainFence(t *testing.T) {
	raw := "```\n{\"action\":\"COMPLETE\",\"answer\":\"A\"}\n```\n" +
		"```json\n{\"action\":\"COMPLETE\",\"answer\":\"B\"}\n```"

	// a json-tagged block is preferred even when an untagged one comes first
	assert.Equal(t, decision.Complete{Answer: "B"}, decision.Extract(raw))
}

func TestExtractSurroundingProse(t *testing.T) {
	raw := `Sure! {"action":"COMPLETE","answer":"42","reasoning":"known"} Hope that helps.`

	assert.Equal(t, decision.Complete{Answer: "42", Reasoning: "known"}, decision.Extract(raw))
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, d := range []decision.Decision{
		decision.UseTool{Tool: "calculate", Args: map[string]any{"expression": "1+1"}, Reasoning: "math"},
		decision.Complete{Answer: "2"},
	} {
		b, err := decision.Encode(d)
		require.NoError(t, err)
		assert.Equal(t, d, decision.Extract(string(b)))
	}
}

func TestSchema(t *testing.T) {
	s := decision.Schema()
	assert.Contains(t, s, `"action"`)
	assert.Contains(t, s, "USE_TOOL")
	assert.Contains(t, s, `"answer"`)
}
