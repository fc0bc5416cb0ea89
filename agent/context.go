package agent

import (
	"strings"

	"github.com/habiliai/spoar/tool"
)

type (
	// Context is the per-run state handed to the planner and reflector.
	Context struct {
		Goal      string
		Iteration int
		// Memories are retrieved past answers, most similar first.
		Memories []string
		// Tools is the rendered tool listing of Available.
		Tools           string
		Available       []tool.Tool
		LastObservation *Observation
		LastReflection  string
	}

	Observation struct {
		Action  string `json:"action"`
		Result  string `json:"result"`
		Success bool   `json:"success"`
	}
)

// NewObservation marks a result as failed when it carries an error marker.
func NewObservation(action, result string) Observation {
	return Observation{
		Action:  action,
		Result:  result,
		Success: !strings.Contains(result, "ERROR"),
	}
}

func (c *Context) previousResult() string {
	if c.LastObservation == nil {
		return ""
	}
	return c.LastObservation.Result
}
