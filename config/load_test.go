package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ynhstate/ynhstate/app"
	"github.com/ynhstate/ynhstate/faults"
)

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "config.yaml", `
host:
  binary: /usr/local/bin/yunohost
  sudo: true
  timeout: 90s
output: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host.Binary != "/usr/local/bin/yunohost" || !cfg.Host.Sudo {
		t.Fatalf("unexpected host config %#v", cfg.Host)
	}
	timeout, err := cfg.Host.CommandTimeout()
	if err != nil || timeout != 90*time.Second {
		t.Fatalf("unexpected timeout %v (%v)", timeout, err)
	}
	if cfg.Output != OutputJSON {
		t.Fatalf("unexpected output %q", cfg.Output)
	}
}

func TestLoadConfigUnknownKeyFails(t *testing.T) {
	path := writeFile(t, "config.yaml", "hosst:\n  sudo: true\n")
	if _, err := Load(path); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected ValidationError for unknown key, got %v", err)
	}
}

func TestLoadConfigMissingExplicitPathFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")
	if _, err := Load(missing); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected ValidationError for missing explicit config, got %v", err)
	}
}

func TestLoadConfigBadTimeout(t *testing.T) {
	path := writeFile(t, "config.yaml", "host:\n  timeout: soonish\n")
	if _, err := Load(path); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected ValidationError for bad timeout, got %v", err)
	}
}

func TestLoadDesiredState(t *testing.T) {
	path := writeFile(t, "grav.yaml", `
name: grav
label: My Blog
domain: apps.example.org
path: /blog
settings:
  admin: sam
permissions:
  - staff
append: true
upgrade: true
state: present
`)

	desired, err := LoadDesiredState(path)
	if err != nil {
		t.Fatalf("LoadDesiredState returned error: %v", err)
	}
	if desired.Name != "grav" || desired.Label != "My Blog" || !desired.Append || !desired.Upgrade {
		t.Fatalf("unexpected desired state %#v", desired)
	}
	if desired.Presence() != app.PresencePresent {
		t.Fatalf("unexpected presence %q", desired.Presence())
	}
	if desired.Settings["admin"] != "sam" || desired.Permissions[0] != "staff" {
		t.Fatalf("unexpected desired details %#v", desired)
	}
}

func TestLoadDesiredStateRejectsConflicts(t *testing.T) {
	path := writeFile(t, "grav.yaml", `
name: grav
domain: one.example.org
settings:
  domain: two.example.org
`)
	if _, err := LoadDesiredState(path); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected ValidationError for conflicting domains, got %v", err)
	}
}

func TestLoadDesiredStateUnknownKeyFails(t *testing.T) {
	path := writeFile(t, "grav.yaml", "name: grav\npermisions: [staff]\n")
	if _, err := LoadDesiredState(path); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected ValidationError for unknown key, got %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	expanded, err := ExpandHome("~/x/y.yaml")
	if err != nil {
		t.Fatalf("ExpandHome returned error: %v", err)
	}
	if expanded != filepath.Join(home, "x/y.yaml") {
		t.Fatalf("unexpected expansion %q", expanded)
	}
	plain, err := ExpandHome("/etc/ynhstate.yaml")
	if err != nil || plain != "/etc/ynhstate.yaml" {
		t.Fatalf("absolute paths must pass through, got %q (%v)", plain, err)
	}
}
