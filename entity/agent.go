package entity

import (
	"github.com/habiliai/spoar/errors"
	"github.com/samber/lo"
)

// Agent is the YAML definition of a SPOAR agent.
type Agent struct {
	Name          string            `yaml:"name" json:"name" jsonschema:"required"`
	Description   string            `yaml:"description,omitempty" json:"description,omitempty"`
	System        string            `yaml:"system,omitempty" json:"system,omitempty" jsonschema_description:"Persona prepended to planning prompts"`
	Model         string            `yaml:"model,omitempty" json:"model,omitempty"`
	MaxIterations int               `yaml:"maxIterations,omitempty" json:"maxIterations,omitempty"`
	KnowledgeBase string            `yaml:"knowledgeBase,omitempty" json:"knowledgeBase,omitempty" jsonschema_description:"Path to a JSON knowledge base"`
	Skills        []Skill           `yaml:"skills" json:"skills"`
	Metadata      map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

func (a Agent) Validate() error {
	if a.Name == "" {
		return errors.Wrapf(errors.ErrInvalidConfig, "agent name is required")
	}
	if a.MaxIterations < 0 {
		return errors.Wrapf(errors.ErrInvalidConfig, "maxIterations must not be negative")
	}

	seen := map[string]bool{}
	for _, s := range a.Skills {
		if err := s.Validate(); err != nil {
			return err
		}
		key := s.Type + "/" + s.Name
		if seen[key] {
			return errors.Wrapf(errors.ErrInvalidConfig, "duplicated skill %s", key)
		}
		seen[key] = true
	}

	return nil
}

func (a Agent) NativeTools() []string {
	return lo.FilterMap(a.Skills, func(s Skill, _ int) (string, bool) {
		return s.Name, s.Type == SkillTypeNative
	})
}

func (a Agent) MCPServers() []Skill {
	return lo.Filter(a.Skills, func(s Skill, _ int) bool {
		return s.Type == SkillTypeMCP
	})
}
