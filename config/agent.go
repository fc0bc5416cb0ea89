package config

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/habiliai/spoar/entity"
	"github.com/habiliai/spoar/errors"
)

func LoadAgentFromFile(file string) (agent entity.Agent, err error) {
	var yamlBytes []byte
	if yamlBytes, err = os.ReadFile(file); err != nil {
		err = errors.Wrapf(err, "failed to read file %s", file)
		return
	}

	if err = yaml.Unmarshal(yamlBytes, &agent); err != nil {
		err = errors.Wrapf(err, "failed to unmarshal file %s", file)
		return
	}

	if err = agent.Validate(); err != nil {
		err = errors.Wrapf(err, "invalid agent in %s", file)
		return
	}

	return
}
