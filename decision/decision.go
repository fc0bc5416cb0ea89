// Package decision turns free-form model output into a structured
// USE_TOOL / COMPLETE decision.
package decision

const (
	ActionUseTool  = "USE_TOOL"
	ActionComplete = "COMPLETE"
)

const (
	EmptyResponseAnswer = "I encountered an error processing your request. Please try again."
	ParseFailureAnswer  = "I encountered an error processing the response. Please try rephrasing your question."
	LLMErrorAnswer      = "I encountered an error. Please try again or check your API key."
)

// Decision is either UseTool or Complete.
type Decision interface {
	Action() string
	Rationale() string

	decision()
}

type UseTool struct {
	Tool      string
	Args      map[string]any
	Reasoning string
}

type Complete struct {
	Answer    string
	Reasoning string

	// Fallback marks answers synthesized locally because the model output
	// could not be used. Such answers are never stored as memories.
	Fallback bool
}

var (
	_ Decision = UseTool{}
	_ Decision = Complete{}
)

func (UseTool) Action() string      { return ActionUseTool }
func (d UseTool) Rationale() string { return d.Reasoning }
func (UseTool) decision()           {}

func (Complete) Action() string      { return ActionComplete }
func (d Complete) Rationale() string { return d.Reasoning }
func (Complete) decision()           {}

func Fallback(answer, reasoning string) Complete {
	return Complete{
		Answer:    answer,
		Reasoning: reasoning,
		Fallback:  true,
	}
}
