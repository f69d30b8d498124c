package config

import (
	"time"

	"github.com/ynhstate/ynhstate/faults"
)

const (
	ConfigFileEnvVar  = "YNHSTATE_CONFIG"
	DefaultConfigPath = "~/.ynhstate/config.yaml"

	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

type Config struct {
	Host   Host   `yaml:"host,omitempty"`
	Output string `yaml:"output,omitempty"`
}

type Host struct {
	Binary  string `yaml:"binary,omitempty"`
	Sudo    bool   `yaml:"sudo,omitempty"`
	Timeout string `yaml:"timeout,omitempty"`
}

// CommandTimeout parses the configured per-command timeout, zero when unset.
func (h Host) CommandTimeout() (time.Duration, error) {
	if h.Timeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(h.Timeout)
	if err != nil {
		return 0, faults.NewTypedError(faults.ValidationError,
			"host.timeout is not a valid duration", err)
	}
	if timeout < 0 {
		return 0, faults.NewTypedError(faults.ValidationError,
			"host.timeout cannot be negative", nil)
	}
	return timeout, nil
}

func (c Config) Validate() error {
	switch c.Output {
	case "", OutputText, OutputJSON, OutputYAML:
	default:
		return faults.NewTypedError(faults.ValidationError,
			"output must be one of: text, json, yaml", nil)
	}
	_, err := c.Host.CommandTimeout()
	return err
}
