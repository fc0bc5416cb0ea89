package entity

import (
	"github.com/habiliai/spoar/errors"
)

const (
	SkillTypeNative = "nativeTool"
	SkillTypeMCP    = "mcp"
)

// Skill is a unit of capability granted to an agent. A native skill names a
// built-in tool, an MCP skill describes a stdio MCP server whose tools are
// registered under their own names.
type Skill struct {
	Type string `yaml:"type" json:"type" jsonschema:"required,enum=mcp,enum=nativeTool"`
	Name string `yaml:"name" json:"name" jsonschema_description:"built-in tool name or MCP server name"`

	Tools   []string          `yaml:"tools,omitempty" json:"tools,omitempty" jsonschema_description:"MCP tool names to expose, all when empty"`
	Command string            `yaml:"command,omitempty" json:"command,omitempty" jsonschema_description:"Command to run MCP server"`
	Args    []string          `yaml:"args,omitempty" json:"args,omitempty" jsonschema_description:"Arguments to run MCP server"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty" jsonschema_description:"Environment for the MCP server"`
}

func (s Skill) Validate() error {
	if s.Name == "" {
		return errors.Wrapf(errors.ErrInvalidConfig, "skill name is required")
	}

	switch s.Type {
	case SkillTypeNative:
	case SkillTypeMCP:
		if s.Command == "" {
			return errors.Wrapf(errors.ErrInvalidConfig, "mcp skill %s requires a command", s.Name)
		}
	default:
		return errors.Wrapf(errors.ErrInvalidConfig, "unknown skill type: %s", s.Type)
	}

	return nil
}

// Exposes reports whether the MCP skill exposes the named tool.
func (s Skill) Exposes(tool string) bool {
	if len(s.Tools) == 0 {
		return true
	}
	for _, t := range s.Tools {
		if t == tool || t == "*" {
			return true
		}
	}
	return false
}
