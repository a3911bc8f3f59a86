package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when no --config flag is given and it exists.
const DefaultConfigFile = "dynq.yaml"

// Config is the optional configuration file. Command flags override it.
type Config struct {
	Dialect   string        `yaml:"dialect"`
	Driver    string        `yaml:"driver"`
	DSN       string        `yaml:"dsn"`
	SlowQuery time.Duration `yaml:"slow_query"`
	Verbose   bool          `yaml:"verbose"`
}

// LoadConfig reads path, or DefaultConfigFile when path is empty. A missing
// default file yields the zero Config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Dialect != "" {
		if _, err := Dialect(cfg.Dialect); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}
	return cfg, nil
}
