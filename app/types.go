package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ynhstate/ynhstate/faults"
)

// Reserved settings keys that address the app URL rather than free-form
// configuration. They are diffed through the dedicated change-url operation.
const (
	SettingDomain = "domain"
	SettingPath   = "path"
)

type Presence string

const (
	PresencePresent Presence = "present"
	PresenceAbsent  Presence = "absent"
)

// InstanceSeparator joins an app base name with its instance number when the
// same package is installed more than once, e.g. "grav__2".
const InstanceSeparator = "__"

// ID is the resolved identity of one app instance. Name is the full
// installation identifier; Instance is zero for the unsuffixed first install.
type ID struct {
	Name     string
	BaseName string
	Instance int
}

func (id ID) String() string {
	return id.Name
}

func (id ID) Suffixed() bool {
	return id.Instance > 0
}

// DesiredState is the caller-declared target for one app. It is read-only to
// the reconciler; zero-valued optional fields mean "leave as observed".
type DesiredState struct {
	ID          string            `yaml:"id,omitempty" json:"id,omitempty"`
	Name        string            `yaml:"name,omitempty" json:"name,omitempty"`
	Label       string            `yaml:"label,omitempty" json:"label,omitempty"`
	Domain      string            `yaml:"domain,omitempty" json:"domain,omitempty"`
	Path        string            `yaml:"path,omitempty" json:"path,omitempty"`
	Settings    map[string]string `yaml:"settings,omitempty" json:"settings,omitempty"`
	Permissions []string          `yaml:"permissions,omitempty" json:"permissions,omitempty"`
	Append      bool              `yaml:"append,omitempty" json:"append,omitempty"`
	Upgrade     bool              `yaml:"upgrade,omitempty" json:"upgrade,omitempty"`
	State       Presence          `yaml:"state,omitempty" json:"state,omitempty"`
}

// Validate rejects contradictory desired state before anything touches the
// host. The reserved domain/path settings keys may duplicate the dedicated
// fields only when both spell the same value.
func (d DesiredState) Validate() error {
	switch d.State {
	case "", PresencePresent, PresenceAbsent:
	default:
		return faults.NewTypedError(faults.ValidationError,
			fmt.Sprintf("state must be %q or %q, got %q", PresencePresent, PresenceAbsent, d.State), nil)
	}

	if inSettings, found := d.Settings[SettingDomain]; found && d.Domain != "" && inSettings != d.Domain {
		return faults.NewTypedError(faults.ValidationError,
			fmt.Sprintf("domain %q conflicts with settings.domain %q", d.Domain, inSettings), nil)
	}
	if inSettings, found := d.Settings[SettingPath]; found && d.Path != "" && inSettings != d.Path {
		return faults.NewTypedError(faults.ValidationError,
			fmt.Sprintf("path %q conflicts with settings.path %q", d.Path, inSettings), nil)
	}

	return nil
}

// Presence normalizes the state field, defaulting to present the way the
// yunohost module always did.
func (d DesiredState) Presence() Presence {
	if d.State == PresenceAbsent {
		return PresenceAbsent
	}
	return PresencePresent
}

// DesiredDomain resolves the effective desired domain, preferring the
// dedicated field over the reserved settings key.
func (d DesiredState) DesiredDomain() string {
	if d.Domain != "" {
		return d.Domain
	}
	return d.Settings[SettingDomain]
}

// DesiredPath resolves the effective desired path the same way.
func (d DesiredState) DesiredPath() string {
	if d.Path != "" {
		return d.Path
	}
	return d.Settings[SettingPath]
}

// Snapshot is the app state observed on the host at the start of a pass.
// When Exists is false every other field is meaningless.
type Snapshot struct {
	Exists      bool
	Label       string
	ManifestID  string
	Settings    map[string]string
	Permissions []string
}

func (s Snapshot) Setting(key string) (string, bool) {
	value, found := s.Settings[key]
	return value, found
}

func (s Snapshot) HasPermission(principal string) bool {
	for _, allowed := range s.Permissions {
		if allowed == principal {
			return true
		}
	}
	return false
}

// URL renders the observed web location from the domain/path settings, empty
// when the app has no web endpoint.
func (s Snapshot) URL() string {
	return JoinURL(s.Settings[SettingDomain], s.Settings[SettingPath])
}

// JoinURL builds the canonical https URL for a domain/path pair.
func JoinURL(domain string, path string) string {
	if domain == "" {
		return ""
	}
	return "https://" + domain + NormalizePath(path)
}

// NormalizePath guarantees a leading slash and no trailing slash except for
// the root path itself.
func NormalizePath(path string) string {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed
}

// DiffEntry is one human-readable before/after record. Field names are part
// of the outcome contract and must stay stable.
type DiffEntry struct {
	Before       string `json:"before" yaml:"before"`
	After        string `json:"after" yaml:"after"`
	BeforeHeader string `json:"before_header" yaml:"before_header"`
	AfterHeader  string `json:"after_header" yaml:"after_header"`
}

// ErrorInfo carries a reconciliation failure inside the outcome.
type ErrorInfo struct {
	Category string `json:"category" yaml:"category"`
	Message  string `json:"message" yaml:"message"`
}

// Outcome is the result of one reconciliation pass. Commands holds the
// literal command lines attempted (or, in check mode, planned); on a failed
// pass it ends with the command that failed.
type Outcome struct {
	Changed     bool        `json:"changed" yaml:"changed"`
	ID          string      `json:"id,omitempty" yaml:"id,omitempty"`
	Label       string      `json:"label,omitempty" yaml:"label,omitempty"`
	URL         string      `json:"url,omitempty" yaml:"url,omitempty"`
	Installed   bool        `json:"installed,omitempty" yaml:"installed,omitempty"`
	Uninstalled bool        `json:"uninstalled,omitempty" yaml:"uninstalled,omitempty"`
	Upgraded    bool        `json:"upgraded,omitempty" yaml:"upgraded,omitempty"`
	Commands    []string    `json:"commands" yaml:"commands"`
	Diff        []DiffEntry `json:"diff" yaml:"diff"`
	Error       *ErrorInfo  `json:"error,omitempty" yaml:"error,omitempty"`
}

// RecordError mirrors err into the outcome without losing partial progress.
func (o *Outcome) RecordError(err error) {
	if err == nil {
		return
	}
	o.Error = &ErrorInfo{
		Category: string(faults.CategoryOf(err)),
		Message:  err.Error(),
	}
}

// SortedPrincipals returns a stable copy of a principal set for diff output.
func SortedPrincipals(principals []string) []string {
	sorted := append([]string(nil), principals...)
	sort.Strings(sorted)
	return sorted
}
