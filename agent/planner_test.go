package agent_test

import (
	"context"
	"testing"
	"time"

	"github.com/habiliai/spoar/agent"
	"github.com/habiliai/spoar/decision"
	"github.com/habiliai/spoar/engine/enginetest"
	"github.com/habiliai/spoar/errors"
	"github.com/habiliai/spoar/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPlanPrompt(t *testing.T) {
	prompt, err := agent.RenderPlanPrompt(agent.DefaultPersona, &agent.Context{Goal: "What is RAG?"})
	require.NoError(t, err)

	assert.Contains(t, prompt, "You are a smart internal support agent.\n\nGOAL: What is RAG?")
	assert.Contains(t, prompt, "RELEVANT PAST MEMORIES (Use these if they answer the question!):\nNone")
	assert.Contains(t, prompt, "PREVIOUS TOOL RESULT:\nNone")
	assert.Contains(t, prompt, "PREVIOUS REFLECTION:\nNone")
	assert.Contains(t, prompt, `"USE_TOOL"`)
	assert.Contains(t, prompt, `"tool": "tool_name"`)

	prompt, err = agent.RenderPlanPrompt("You are a travel agent.", &agent.Context{
		Goal:            "Book a trip",
		Memories:        []string{"Question: a\nAnswer: b", "Question: c\nAnswer: d"},
		Tools:           "- search: Search",
		Available:       []tool.Tool{{Name: "search", Args: []string{"topic"}}},
		LastObservation: &agent.Observation{Action: "search", Result: "flights\u0000found", Success: true},
		LastReflection:  "compare prices",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "Question: a\nAnswer: b\nQuestion: c\nAnswer: d")
	assert.Contains(t, prompt, "PREVIOUS TOOL RESULT:\nflightsfound")
	assert.Contains(t, prompt, "PREVIOUS REFLECTION:\ncompare prices")
	assert.Contains(t, prompt, "AVAILABLE TOOLS:\n- search: Search")
	assert.Contains(t, prompt, `"tool": "search", "args": {"topic":"..."}`)
}

func TestLLMPlannerDegradesOnChatFailure(t *testing.T) {
	chat := enginetest.NewScripted(enginetest.Reply{Err: errors.New("401 invalid api key")})

	d := agent.NewLLMPlanner(chat, "").Plan(context.Background(), &agent.Context{Goal: "hi"})

	done, ok := d.(decision.Complete)
	require.True(t, ok)
	assert.True(t, done.Fallback)
	assert.Equal(t, decision.LLMErrorAnswer, done.Answer)

	req := chat.Last()
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "You are a planning agent. Always respond with valid JSON only.", req.Messages[0].Content)
	require.NotNil(t, req.Temperature)
	assert.Zero(t, *req.Temperature)
}

func TestLLMReflector(t *testing.T) {
	chat := enginetest.Texts("  Good progress.  ")
	reflector := agent.NewLLMReflector(chat)
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'r'
	}

	got := reflector.Reflect(context.Background(), &agent.Context{Goal: "g"}, agent.NewObservation("search", string(long)))
	assert.Equal(t, "Good progress.", got)

	req := chat.Last()
	assert.Equal(t, "You reflect on agent progress. Be brief.", req.Messages[0].Content)
	assert.Contains(t, req.Messages[1].Content, "Result: "+string(long[:200])+"\nSuccess: true")
	assert.NotContains(t, req.Messages[1].Content, string(long[:201]))
	assert.Equal(t, 100, req.MaxTokens)
	assert.InDelta(t, 0.3, *req.Temperature, 1e-9)

	chat.Push(enginetest.Reply{Err: errors.New("timeout")})
	assert.Equal(t, "Reflection failed: timeout", reflector.Reflect(context.Background(), &agent.Context{Goal: "g"}, agent.NewObservation("x", "y")))
}

func TestNewObservation(t *testing.T) {
	assert.True(t, agent.NewObservation("calculate", "200").Success)
	assert.False(t, agent.NewObservation("calculate", "ERROR: bad expression").Success)
}

func TestLogPath(t *testing.T) {
	assert.Equal(t, "logs/agent_log_1700000000.json", agent.LogPath("logs", time.Unix(1700000000, 0)))
}
