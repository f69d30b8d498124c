package reconciler

import (
	"context"
	"fmt"
	"strings"

	"github.com/ynhstate/ynhstate/app"
	"github.com/ynhstate/ynhstate/debugctx"
	"github.com/ynhstate/ynhstate/faults"
)

// apply executes the plan strictly in order. The first command reporting a
// nonzero status aborts the remainder; commands already run stay recorded in
// the outcome. Check mode records the same command lines without touching the
// executor.
func (r *DefaultReconciler) apply(
	ctx context.Context,
	outcome *app.Outcome,
	id app.ID,
	plan []Op,
	checkMode bool,
) error {
	for _, op := range plan {
		command := op.Command()
		outcome.Commands = append(outcome.Commands, command.String())

		switch op.(type) {
		case InstallOp:
			outcome.Installed = true
		case UninstallOp:
			outcome.Uninstalled = true
		case UpgradeOp:
			outcome.Upgraded = true
		}

		if checkMode {
			continue
		}

		debugctx.Printf(ctx, "run: %s", command)
		result, err := r.Executor.Run(ctx, command)
		if err != nil {
			return faults.NewTypedError(faults.TransportError,
				fmt.Sprintf("command %q could not be run", command), err)
		}
		if result.RC != 0 {
			message := fmt.Sprintf("command %q failed with status %d", command, result.RC)
			if stderr := strings.TrimSpace(result.Stderr); stderr != "" {
				message += ": " + stderr
			}
			// Usage errors from revisions lacking the subcommand are a
			// missing platform capability, not a failed action.
			category := faults.ExecError
			if result.UnsupportedAction() {
				category = faults.NotImplementedError
			}
			return faults.NewTypedError(category, message, nil)
		}

		switch op.(type) {
		case InstallOp, ChangeURLOp:
			r.refreshFinalState(ctx, outcome, id)
		}
	}
	return nil
}

// refreshFinalState re-reads the app after an install or URL move: the
// platform may normalize the id, label, or path, so the locally projected
// values are not trusted. The read must be verbose because the terse app info
// form omits the settings map that carries id and url. A failed re-read keeps
// the projected values.
func (r *DefaultReconciler) refreshFinalState(ctx context.Context, outcome *app.Outcome, id app.ID) {
	snapshot, err := r.Reader.Fetch(ctx, id, true)
	if err != nil || !snapshot.Exists {
		debugctx.Printf(ctx, "post-apply refresh of %s unavailable: %v", id, err)
		return
	}

	if installedID, found := snapshot.Setting("id"); found && installedID != "" {
		outcome.ID = installedID
	}
	if snapshot.Label != "" {
		outcome.Label = snapshot.Label
	}
	if url := snapshot.URL(); url != "" {
		outcome.URL = url
	}
}
