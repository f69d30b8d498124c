package reconciler

import (
	"context"
	"errors"

	"github.com/ynhstate/ynhstate/app"
	"github.com/ynhstate/ynhstate/app/identity"
	"github.com/ynhstate/ynhstate/debugctx"
	"github.com/ynhstate/ynhstate/faults"
	"github.com/ynhstate/ynhstate/host"
)

type DefaultReconciler struct {
	Reader   host.StateReader
	Executor host.CommandExecutor
}

// Reconcile runs one full pass: resolve identity, read observed state, build
// the plan, apply it in order. Every failure is mirrored into the outcome so
// the caller always sees which commands were attempted and where the pass
// stopped; partial progress is never rolled back.
func (r *DefaultReconciler) Reconcile(
	ctx context.Context,
	desired app.DesiredState,
	checkMode bool,
) (app.Outcome, error) {
	outcome := app.Outcome{Commands: []string{}, Diff: []app.DiffEntry{}}

	fail := func(err error) (app.Outcome, error) {
		outcome.RecordError(err)
		return outcome, err
	}

	if r.Reader == nil || r.Executor == nil {
		return fail(faults.NewTypedError(faults.InternalError,
			"reconciler requires a state reader and a command executor", errors.New("nil collaborator")))
	}

	if err := desired.Validate(); err != nil {
		return fail(err)
	}

	id, err := identity.Resolve(identity.ResolveInput{ID: desired.ID, Name: desired.Name})
	if err != nil {
		return fail(err)
	}
	outcome.ID = id.Name

	observed, err := r.Reader.Fetch(ctx, id, true)
	if err != nil {
		return fail(err)
	}
	debugctx.Printf(ctx, "observed %s: exists=%t label=%q url=%q",
		id, observed.Exists, observed.Label, observed.URL())

	plan, diff, err := r.buildPlan(ctx, desired, id, observed)
	if err != nil {
		return fail(err)
	}

	outcome.Changed = len(plan) > 0
	if diff != nil {
		outcome.Diff = diff
	}
	projectFinalState(&outcome, desired, observed)
	debugctx.Printf(ctx, "plan for %s: %d operation(s), check=%t", id, len(plan), checkMode)

	if err := r.apply(ctx, &outcome, id, plan, checkMode); err != nil {
		return fail(err)
	}
	return outcome, nil
}

// projectFinalState fills the final id/label/url with the values convergence
// should produce. A successful install or URL move later overwrites them with
// the authoritative values re-read from the host.
func projectFinalState(outcome *app.Outcome, desired app.DesiredState, observed app.Snapshot) {
	if desired.Presence() == app.PresenceAbsent {
		return
	}

	outcome.Label = desired.Label
	if outcome.Label == "" {
		outcome.Label = observed.Label
	}

	domain := desired.DesiredDomain()
	path := desired.DesiredPath()
	if domain == "" {
		domain = observed.Settings[app.SettingDomain]
	}
	if path == "" {
		path = observed.Settings[app.SettingPath]
	}
	outcome.URL = app.JoinURL(domain, path)
}
