package reconciler

import (
	"net/url"

	"github.com/ynhstate/ynhstate/app"
	"github.com/ynhstate/ynhstate/host"
)

// Op is one state-changing step of a reconciliation plan. Ops are created by
// the planner, executed at most once, and never outlive the pass.
type Op interface {
	Command() host.Command
}

// InstallOp installs the app from its catalog name or source URL. Install
// arguments are urlencoded the way the yunohost CLI expects them; the
// encoding sorts keys, so equal argument sets render identically.
type InstallOp struct {
	Source string
	ID     app.ID
	Label  string
	Args   map[string]string
}

func (o InstallOp) Command() host.Command {
	args := []string{"app", "install", o.Source}
	if o.Label != "" {
		args = append(args, "--label", o.Label)
	}
	args = append(args, "--args", encodeInstallArgs(o.Args), "--force", "--output-as", "json")
	return host.Command{Args: args}
}

type UninstallOp struct {
	ID app.ID
}

func (o UninstallOp) Command() host.Command {
	return host.Command{Args: []string{"app", "remove", o.ID.Name}}
}

// RelabelOp renames the app's main permission, which is where YunoHost keeps
// the user-visible label.
type RelabelOp struct {
	ID    app.ID
	Label string
}

func (o RelabelOp) Command() host.Command {
	return host.Command{Args: []string{"user", "permission", "update", o.ID.Name, "--label", o.Label}}
}

// ChangeURLOp moves the app to a new domain/path. The URL is addressed as a
// whole, so both parts are always carried even when only one changed.
type ChangeURLOp struct {
	ID     app.ID
	Domain string
	Path   string
}

func (o ChangeURLOp) Command() host.Command {
	return host.Command{Args: []string{"app", "change-url", o.ID.Name, "--domain", o.Domain, "--path", o.Path}}
}

type UpgradeOp struct {
	ID app.ID
}

func (o UpgradeOp) Command() host.Command {
	return host.Command{Args: []string{"app", "upgrade", o.ID.Name}}
}

type SetSettingOp struct {
	ID    app.ID
	Key   string
	Value string
}

func (o SetSettingOp) Command() host.Command {
	return host.Command{Args: []string{"app", "setting", o.ID.Name, o.Key, "--value", o.Value}}
}

type GrantPermissionOp struct {
	ID        app.ID
	Principal string
}

func (o GrantPermissionOp) Command() host.Command {
	return host.Command{Args: []string{"user", "permission", "add", o.ID.Name, o.Principal}}
}

type RevokePermissionOp struct {
	ID        app.ID
	Principal string
}

func (o RevokePermissionOp) Command() host.Command {
	return host.Command{Args: []string{"user", "permission", "remove", o.ID.Name, o.Principal}}
}

func encodeInstallArgs(args map[string]string) string {
	values := url.Values{}
	for key, value := range args {
		values.Set(key, value)
	}
	return values.Encode()
}
