package agent

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/habiliai/spoar/decision"
	"github.com/habiliai/spoar/engine"
	"github.com/habiliai/spoar/internal/stringutils"
)

const (
	DefaultPersona = "You are a smart internal support agent."

	planSystemPrompt    = "You are a planning agent. Always respond with valid JSON only."
	reflectSystemPrompt = "You reflect on agent progress. Be brief."

	reflectTemperature = 0.3
	reflectMaxTokens   = 100
	reflectResultChars = 200
)

var (
	//go:embed prompts/plan.md.tmpl
	planInst     string
	planInstTmpl = template.Must(template.New("plan").Funcs(sprig.TxtFuncMap()).Parse(planInst))

	//go:embed prompts/reflect.md.tmpl
	reflectInst     string
	reflectInstTmpl = template.Must(template.New("reflect").Funcs(sprig.TxtFuncMap()).Parse(reflectInst))
)

type (
	Planner interface {
		Plan(ctx context.Context, c *Context) decision.Decision
	}

	Reflector interface {
		Reflect(ctx context.Context, c *Context, obs Observation) string
	}

	PlannerFunc   func(ctx context.Context, c *Context) decision.Decision
	ReflectorFunc func(ctx context.Context, c *Context, obs Observation) string
)

func (f PlannerFunc) Plan(ctx context.Context, c *Context) decision.Decision {
	return f(ctx, c)
}

func (f ReflectorFunc) Reflect(ctx context.Context, c *Context, obs Observation) string {
	return f(ctx, c, obs)
}

type (
	// LLMPlanner asks a chat model for the next decision.
	LLMPlanner struct {
		chat    engine.ChatModel
		persona string
	}

	LLMReflector struct {
		chat engine.ChatModel
	}

	planPromptValues struct {
		Persona            string
		Goal               string
		Memories           []string
		PreviousResult     string
		PreviousReflection string
		Tools              string
		Schema             string
		ExampleTool        string
		ExampleArgs        string
	}

	reflectPromptValues struct {
		Goal    string
		Action  string
		Result  string
		Success bool
	}
)

var (
	_ Planner   = (*LLMPlanner)(nil)
	_ Reflector = (*LLMReflector)(nil)
)

// NewLLMPlanner builds a planner. An empty persona uses DefaultPersona.
func NewLLMPlanner(chat engine.ChatModel, persona string) *LLMPlanner {
	if strings.TrimSpace(persona) == "" {
		persona = DefaultPersona
	}
	return &LLMPlanner{chat: chat, persona: strings.TrimSpace(persona)}
}

func (p *LLMPlanner) Plan(ctx context.Context, c *Context) decision.Decision {
	prompt, err := RenderPlanPrompt(p.persona, c)
	if err != nil {
		return decision.Fallback(decision.LLMErrorAnswer, err.Error())
	}

	text, err := p.chat.Complete(ctx, engine.ChatRequest{
		Messages: []engine.Message{
			engine.System(planSystemPrompt),
			engine.User(prompt),
		},
		Temperature: engine.Temperature(0),
	})
	if err != nil {
		return decision.Fallback(decision.LLMErrorAnswer, fmt.Sprintf("LLM call failed: %v", err))
	}

	return decision.Extract(text)
}

// RenderPlanPrompt renders the planning prompt for c.
func RenderPlanPrompt(persona string, c *Context) (string, error) {
	values := planPromptValues{
		Persona:            persona,
		Goal:               c.Goal,
		Memories:           c.Memories,
		PreviousResult:     stringutils.Sanitize(c.previousResult()),
		PreviousReflection: c.LastReflection,
		Tools:              c.Tools,
		Schema:             decision.Schema(),
		ExampleTool:        "tool_name",
		ExampleArgs:        `{"arg": "value"}`,
	}
	if len(c.Available) > 0 {
		values.ExampleTool = c.Available[0].Name
		values.ExampleArgs = exampleArgs(c.Available[0].Args)
	}

	var buf strings.Builder
	if err := planInstTmpl.Execute(&buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func exampleArgs(names []string) string {
	args := make(map[string]string, len(names))
	for _, name := range names {
		args[name] = "..."
	}
	b, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func NewLLMReflector(chat engine.ChatModel) *LLMReflector {
	return &LLMReflector{chat: chat}
}

func (r *LLMReflector) Reflect(ctx context.Context, c *Context, obs Observation) string {
	var buf strings.Builder
	if err := reflectInstTmpl.Execute(&buf, reflectPromptValues{
		Goal:    c.Goal,
		Action:  obs.Action,
		Result:  stringutils.Truncate(stringutils.Sanitize(obs.Result), reflectResultChars),
		Success: obs.Success,
	}); err != nil {
		return fmt.Sprintf("Reflection failed: %v", err)
	}

	text, err := r.chat.Complete(ctx, engine.ChatRequest{
		Messages: []engine.Message{
			engine.System(reflectSystemPrompt),
			engine.User(buf.String()),
		},
		Temperature: engine.Temperature(reflectTemperature),
		MaxTokens:   reflectMaxTokens,
	})
	if err != nil {
		return fmt.Sprintf("Reflection failed: %v", err)
	}

	return strings.TrimSpace(text)
}
