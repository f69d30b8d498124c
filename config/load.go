package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ynhstate/ynhstate/app"
	"github.com/ynhstate/ynhstate/faults"
)

// Load reads the tool configuration. Resolution order: explicit path, the
// YNHSTATE_CONFIG environment variable, the default location. A missing file
// is not an error; the zero config works against a local yunohost binary.
func Load(path string) (Config, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		resolved = strings.TrimSpace(os.Getenv(ConfigFileEnvVar))
	}
	explicit := resolved != ""
	if !explicit {
		resolved = DefaultConfigPath
	}

	expanded, err := ExpandHome(resolved)
	if err != nil {
		return Config{}, err
	}

	payload, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return Config{}, nil
		}
		return Config{}, faults.NewTypedError(faults.ValidationError,
			"cannot read config file "+expanded, err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(payload)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, faults.NewTypedError(faults.ValidationError,
			"malformed config file "+expanded, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDesiredState reads one declarative app spec file. Unknown keys are
// rejected so a typoed setting name fails loudly instead of silently
// converging the wrong thing.
func LoadDesiredState(path string) (app.DesiredState, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return app.DesiredState{}, faults.NewTypedError(faults.ValidationError,
			"cannot read app spec file "+path, err)
	}

	var desired app.DesiredState
	decoder := yaml.NewDecoder(strings.NewReader(string(payload)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&desired); err != nil {
		return app.DesiredState{}, faults.NewTypedError(faults.ValidationError,
			"malformed app spec file "+path, err)
	}
	if err := desired.Validate(); err != nil {
		return app.DesiredState{}, err
	}
	return desired, nil
}

func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", faults.NewTypedError(faults.InternalError, "cannot resolve home directory", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
