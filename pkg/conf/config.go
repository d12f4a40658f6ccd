package conf

import (
	"errors"
	"fmt"
	"os"

	"github.com/ferama/rexpect/pkg/script"
	"github.com/ferama/rexpect/pkg/sshc"
	"github.com/ferama/rexpect/pkg/web"
	"gopkg.in/yaml.v3"
)

// Config holds all the config values
type Config struct {
	Expect    *script.ExpectConf   `yaml:"expect"`
	Scripts   []*script.ScriptConf `yaml:"scripts"`
	SshClient *sshc.SshClientConf  `yaml:"sshclient"`
	Web       *web.WebConf         `yaml:"web"`

	// Parallel is the number of scripts run at the same time
	Parallel int `yaml:"parallel"`
}

// LoadConfig parses the [config].yaml file and loads its values
// into the Config struct
func LoadConfig(filePath string) (*Config, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error while reading config file: %w", err)
	}
	defer f.Close()

	// set some reasonable defaults
	cfg := Config{
		Expect:   script.DefaultExpectConf(),
		Parallel: 1,
	}

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("error while parsing config file: %w", err)
	}

	if len(cfg.Scripts) == 0 {
		return nil, errors.New("no scripts defined")
	}
	for i, s := range cfg.Scripts {
		if s.Name == "" {
			s.Name = fmt.Sprintf("script-%d", i+1)
		}
		for j, step := range s.Steps {
			if err := step.Validate(); err != nil {
				return nil, fmt.Errorf("script %s: step %d: %w", s.Name, j+1, err)
			}
		}
	}
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	return &cfg, nil
}
