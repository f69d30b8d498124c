package reconciler

import (
	"context"
	"sort"
	"strings"

	"github.com/ynhstate/ynhstate/app"
	"github.com/ynhstate/ynhstate/faults"
)

// buildPlan compares desired against observed state and produces the ordered
// operation list plus the matching diff records. The decision table runs in a
// fixed order: presence, label, url, upgrade, settings, permissions. Presence
// transitions are terminal: a fresh install cannot carry settings or
// permission edits because those commands require the app to exist, so a
// second pass finishes the convergence.
func (r *DefaultReconciler) buildPlan(
	ctx context.Context,
	desired app.DesiredState,
	id app.ID,
	observed app.Snapshot,
) ([]Op, []app.DiffEntry, error) {
	if desired.Presence() == app.PresenceAbsent {
		if !observed.Exists {
			return nil, nil, nil
		}
		return []Op{UninstallOp{ID: id}},
			[]app.DiffEntry{presenceDiff(app.PresencePresent, app.PresenceAbsent)}, nil
	}

	if !observed.Exists {
		op, err := installOp(desired, id)
		if err != nil {
			return nil, nil, err
		}
		return []Op{op}, []app.DiffEntry{presenceDiff(app.PresenceAbsent, app.PresencePresent)}, nil
	}

	var (
		plan []Op
		diff []app.DiffEntry
	)

	if desired.Label != "" && desired.Label != observed.Label {
		plan = append(plan, RelabelOp{ID: id, Label: desired.Label})
		diff = append(diff, app.DiffEntry{
			Before:       observed.Label,
			After:        desired.Label,
			BeforeHeader: "label",
			AfterHeader:  "label",
		})
	}

	if op, entry, changed := urlChange(desired, id, observed); changed {
		plan = append(plan, op)
		diff = append(diff, entry)
	}

	if desired.Upgrade {
		info, err := r.Reader.Upgradable(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if info.Available {
			plan = append(plan, UpgradeOp{ID: id})
			diff = append(diff, app.DiffEntry{
				Before:       info.CurrentVersion,
				After:        info.NewVersion,
				BeforeHeader: "version",
				AfterHeader:  "version",
			})
		}
	}

	settingOps, settingDiff := settingChanges(desired, id, observed)
	plan = append(plan, settingOps...)
	diff = append(diff, settingDiff...)

	permissionOps, permissionDiff := permissionChanges(desired, id, observed)
	plan = append(plan, permissionOps...)
	diff = append(diff, permissionDiff...)

	return plan, diff, nil
}

func installOp(desired app.DesiredState, id app.ID) (Op, error) {
	domain := desired.DesiredDomain()
	if domain == "" {
		return nil, faults.NewTypedError(faults.ValidationError,
			"install requires a domain", nil)
	}

	args := make(map[string]string, len(desired.Settings)+2)
	for key, value := range desired.Settings {
		args[key] = value
	}
	args[app.SettingDomain] = domain
	if path := desired.DesiredPath(); path != "" {
		args[app.SettingPath] = app.NormalizePath(path)
	}

	source := desired.Name
	if source == "" {
		source = id.Name
	}

	return InstallOp{Source: source, ID: id, Label: desired.Label, Args: args}, nil
}

// urlChange resolves the effective desired domain/path, falling back to the
// observed values, and emits a single whole-URL operation when either part
// moved. Domain and path are never diffed independently: change-url addresses
// the URL atomically.
func urlChange(desired app.DesiredState, id app.ID, observed app.Snapshot) (Op, app.DiffEntry, bool) {
	observedDomain := observed.Settings[app.SettingDomain]
	observedPath := observed.Settings[app.SettingPath]

	domain := desired.DesiredDomain()
	if domain == "" {
		domain = observedDomain
	}
	if domain == "" {
		return nil, app.DiffEntry{}, false
	}

	path := desired.DesiredPath()
	if path == "" {
		path = observedPath
	}
	path = app.NormalizePath(path)

	if domain == observedDomain && path == app.NormalizePath(observedPath) {
		return nil, app.DiffEntry{}, false
	}

	return ChangeURLOp{ID: id, Domain: domain, Path: path},
		app.DiffEntry{
			Before:       observed.URL(),
			After:        app.JoinURL(domain, path),
			BeforeHeader: "url",
			AfterHeader:  "url",
		}, true
}

func settingChanges(desired app.DesiredState, id app.ID, observed app.Snapshot) ([]Op, []app.DiffEntry) {
	keys := make([]string, 0, len(desired.Settings))
	for key := range desired.Settings {
		if key == app.SettingDomain || key == app.SettingPath {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var (
		ops  []Op
		diff []app.DiffEntry
	)
	for _, key := range keys {
		value := desired.Settings[key]
		current, found := observed.Setting(key)
		if found && current == value {
			continue
		}
		ops = append(ops, SetSettingOp{ID: id, Key: key, Value: value})
		diff = append(diff, app.DiffEntry{
			Before:       current,
			After:        value,
			BeforeHeader: key,
			AfterHeader:  key,
		})
	}
	return ops, diff
}

// permissionChanges converges the main permission allow-list. Replace
// semantics revokes every principal missing from the desired list, the
// special visitors/all_users groups included; append semantics only grants.
// Revokes are ordered before grants and the whole batch shares one diff
// record.
func permissionChanges(desired app.DesiredState, id app.ID, observed app.Snapshot) ([]Op, []app.DiffEntry) {
	if len(desired.Permissions) == 0 {
		return nil, nil
	}

	desiredSet := make(map[string]struct{}, len(desired.Permissions))
	for _, principal := range desired.Permissions {
		desiredSet[principal] = struct{}{}
	}

	var ops []Op
	final := make(map[string]struct{}, len(observed.Permissions)+len(desired.Permissions))

	for _, principal := range app.SortedPrincipals(observed.Permissions) {
		if _, wanted := desiredSet[principal]; !wanted && !desired.Append {
			ops = append(ops, RevokePermissionOp{ID: id, Principal: principal})
			continue
		}
		final[principal] = struct{}{}
	}

	for _, principal := range desired.Permissions {
		final[principal] = struct{}{}
		if !observed.HasPermission(principal) {
			ops = append(ops, GrantPermissionOp{ID: id, Principal: principal})
		}
	}

	if len(ops) == 0 {
		return nil, nil
	}

	finalList := make([]string, 0, len(final))
	for principal := range final {
		finalList = append(finalList, principal)
	}

	return ops, []app.DiffEntry{{
		Before:       strings.Join(app.SortedPrincipals(observed.Permissions), " "),
		After:        strings.Join(app.SortedPrincipals(finalList), " "),
		BeforeHeader: "permissions",
		AfterHeader:  "permissions",
	}}
}

func presenceDiff(before app.Presence, after app.Presence) app.DiffEntry {
	return app.DiffEntry{
		Before:       string(before),
		After:        string(after),
		BeforeHeader: "state",
		AfterHeader:  "state",
	}
}
