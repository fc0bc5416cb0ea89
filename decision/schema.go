package decision

import (
	"encoding/json"
	"sync"

	"github.com/habiliai/spoar/errors"
	"github.com/invopop/jsonschema"
)

var schemaOnce = sync.OnceValue(func() string {
	r := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(&wire{})
	s.Version = ""
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(b)
})

// Schema returns the JSON schema of the decision object.
func Schema() string {
	return schemaOnce()
}

// Encode renders d in the same wire format Extract accepts.
func Encode(d Decision) ([]byte, error) {
	var w wire
	switch v := d.(type) {
	case UseTool:
		w = wire{Action: ActionUseTool, Tool: v.Tool, Args: v.Args, Reasoning: v.Reasoning}
	case Complete:
		w = wire{Action: ActionComplete, Answer: v.Answer, Reasoning: v.Reasoning}
	default:
		return nil, errors.Errorf("unknown decision %T", d)
	}

	b, err := json.Marshal(w)
	return b, errors.WithStack(err)
}
