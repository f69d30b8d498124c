package app

import (
	"testing"

	"github.com/ynhstate/ynhstate/faults"
)

func TestDesiredStateValidateDomainConflict(t *testing.T) {
	t.Parallel()

	desired := DesiredState{
		Name:     "grav",
		Domain:   "apps.example.org",
		Settings: map[string]string{"domain": "other.example.org"},
	}
	err := desired.Validate()
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected ValidationError for conflicting domain, got %v", err)
	}

	desired.Settings["domain"] = "apps.example.org"
	if err := desired.Validate(); err != nil {
		t.Fatalf("matching domain values must validate, got %v", err)
	}
}

func TestDesiredStateValidatePathConflict(t *testing.T) {
	t.Parallel()

	desired := DesiredState{
		Name:     "grav",
		Path:     "/blog",
		Settings: map[string]string{"path": "/wiki"},
	}
	if err := desired.Validate(); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected ValidationError for conflicting path, got %v", err)
	}
}

func TestDesiredStateValidateState(t *testing.T) {
	t.Parallel()

	desired := DesiredState{Name: "grav", State: "gone"}
	if err := desired.Validate(); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected ValidationError for bad state, got %v", err)
	}

	desired.State = ""
	if err := desired.Validate(); err != nil {
		t.Fatalf("empty state defaults to present, got %v", err)
	}
	if desired.Presence() != PresencePresent {
		t.Fatalf("expected default presence present")
	}
}

func TestDesiredDomainFallsBackToSettings(t *testing.T) {
	t.Parallel()

	desired := DesiredState{Settings: map[string]string{"domain": "apps.example.org", "path": "/grav"}}
	if got := desired.DesiredDomain(); got != "apps.example.org" {
		t.Fatalf("expected settings fallback domain, got %q", got)
	}
	if got := desired.DesiredPath(); got != "/grav" {
		t.Fatalf("expected settings fallback path, got %q", got)
	}

	desired.Domain = "direct.example.org"
	if got := desired.DesiredDomain(); got != "direct.example.org" {
		t.Fatalf("dedicated field must win, got %q", got)
	}
}

func TestJoinURL(t *testing.T) {
	t.Parallel()

	if got := JoinURL("apps.example.org", "blog/"); got != "https://apps.example.org/blog" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := JoinURL("apps.example.org", ""); got != "https://apps.example.org/" {
		t.Fatalf("expected root path, got %q", got)
	}
	if got := JoinURL("", "/blog"); got != "" {
		t.Fatalf("expected empty url without domain, got %q", got)
	}
}

func TestSnapshotHelpers(t *testing.T) {
	t.Parallel()

	snapshot := Snapshot{
		Exists:      true,
		Settings:    map[string]string{"domain": "apps.example.org", "path": "/wiki"},
		Permissions: []string{"visitors", "all_users"},
	}
	if !snapshot.HasPermission("visitors") {
		t.Fatalf("expected visitors to be allowed")
	}
	if snapshot.HasPermission("staff") {
		t.Fatalf("staff must not be allowed")
	}
	if got := snapshot.URL(); got != "https://apps.example.org/wiki" {
		t.Fatalf("unexpected snapshot url %q", got)
	}
}

func TestIDString(t *testing.T) {
	t.Parallel()

	id := ID{Name: "grav__2", BaseName: "grav", Instance: 2}
	if id.String() != "grav__2" {
		t.Fatalf("unexpected id string %q", id.String())
	}
	if !id.Suffixed() {
		t.Fatalf("expected suffixed instance")
	}
	if (ID{Name: "grav", BaseName: "grav"}).Suffixed() {
		t.Fatalf("first install must not report a suffix")
	}
}
