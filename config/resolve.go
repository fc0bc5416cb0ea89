package config

import (
	"os"

	goconfig "github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
	"github.com/habiliai/spoar/errors"
)

// resolveConfig overlays .env files and the process environment onto the
// given structs. Fields without a matching variable keep their value.
func resolveConfig(structs ...any) error {
	if len(structs) == 0 {
		return errors.New("config is nil")
	}

	configReader := goconfig.New()
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		configReader = configReader.AddFeeder(feeder.DotEnv{Path: ".env"})
	}

	if filename := os.Getenv("ENV_TEST_FILE"); filename != "" {
		if _, err := os.Stat(filename); !os.IsNotExist(err) {
			configReader = configReader.AddFeeder(feeder.DotEnv{Path: filename})
		}
	}

	configReader = configReader.AddFeeder(feeder.Env{})
	for _, s := range structs {
		configReader = configReader.AddStruct(s)
	}

	if err := configReader.Feed(); err != nil {
		return errors.Wrapf(err, "failed to load config")
	}

	return nil
}
