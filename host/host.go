package host

import (
	"context"
	"strings"

	"github.com/ynhstate/ynhstate/app"
)

// Command is one imperative yunohost invocation, as arguments after the
// binary itself. String renders the stable command line reported in outcomes.
type Command struct {
	Args []string
}

func (c Command) String() string {
	return strings.Join(append([]string{"yunohost"}, c.Args...), " ")
}

// ExecResult is the raw result of running one command. A nonzero RC is not an
// error at this boundary; the caller decides what a failure means.
type ExecResult struct {
	RC     int
	Stdout string
	Stderr string
}

// UnsupportedAction recognizes the usage error older yunohost revisions print
// for subcommands they never implemented, e.g. permission editing.
func (r ExecResult) UnsupportedAction() bool {
	lowered := strings.ToLower(r.Stderr)
	return strings.Contains(lowered, "invalid choice") || strings.Contains(lowered, "unknown command")
}

// UpgradeInfo reports whether the platform lists an app as upgradable, with
// the version strings the platform advertises.
type UpgradeInfo struct {
	Available      bool
	CurrentVersion string
	NewVersion     string
}

// StateReader queries observed app state. Fetch returns a snapshot with
// Exists=false when the app is not installed; that is distinct from an error,
// which means the host could not be queried at all.
type StateReader interface {
	Fetch(ctx context.Context, id app.ID, verbose bool) (app.Snapshot, error)
	Upgradable(ctx context.Context, id app.ID) (UpgradeInfo, error)
}

// CommandExecutor applies one imperative action against the host.
type CommandExecutor interface {
	Run(ctx context.Context, command Command) (ExecResult, error)
}
