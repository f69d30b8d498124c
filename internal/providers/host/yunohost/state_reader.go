package yunohost

import (
	"context"
	"strings"

	"github.com/ynhstate/ynhstate/app"
	"github.com/ynhstate/ynhstate/host"
)

// Fetch reads the observed snapshot for one app. A missing app is reported as
// Exists=false, distinct from a transport failure. The verbose form also
// resolves the main permission allow-list, which costs one extra round trip.
func (g *Gateway) Fetch(ctx context.Context, id app.ID, verbose bool) (app.Snapshot, error) {
	args := []string{"app", "info", id.Name, "--output-as", "json"}
	if verbose {
		args = append(args, "--full")
	}

	result, err := g.Run(ctx, host.Command{Args: args})
	if err != nil {
		return app.Snapshot{}, err
	}
	if result.RC != 0 {
		if strings.Contains(result.Stderr, notFoundMarker) {
			return app.Snapshot{}, nil
		}
		return app.Snapshot{}, g.commandFailed("yunohost app info failed", result)
	}

	snapshot, err := decodeSnapshot([]byte(result.Stdout))
	if err != nil {
		return app.Snapshot{}, err
	}

	if verbose {
		permissions, err := g.fetchPermissions(ctx, id)
		if err != nil {
			return app.Snapshot{}, err
		}
		snapshot.Permissions = permissions
	}
	return snapshot, nil
}

func (g *Gateway) fetchPermissions(ctx context.Context, id app.ID) ([]string, error) {
	command := host.Command{Args: []string{"user", "permission", "list", id.Name, "--output-as", "json"}}
	result, err := g.Run(ctx, command)
	if err != nil {
		return nil, err
	}
	if result.RC != 0 {
		return nil, g.commandFailed("yunohost user permission list failed", result)
	}
	return decodeAllowed([]byte(result.Stdout), id.Name+".main")
}

// Upgradable reports whether the platform lists the app in its pending
// upgrade set, refined by a version comparison so an already-current app is
// never "upgraded" again.
func (g *Gateway) Upgradable(ctx context.Context, id app.ID) (host.UpgradeInfo, error) {
	command := host.Command{Args: []string{"tools", "update", "apps", "--output-as", "json"}}
	result, err := g.Run(ctx, command)
	if err != nil {
		return host.UpgradeInfo{}, err
	}
	if result.RC != 0 {
		return host.UpgradeInfo{}, g.commandFailed("yunohost tools update failed", result)
	}
	return decodeUpgrade([]byte(result.Stdout), id.Name)
}
