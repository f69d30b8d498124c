package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ynhstate/ynhstate/app"
	"github.com/ynhstate/ynhstate/config"
	"github.com/ynhstate/ynhstate/internal/cli/common"
)

type specFlags struct {
	specFile    string
	id          string
	name        string
	label       string
	domain      string
	path        string
	state       string
	settings    []string
	permissions []string
	appendPerms bool
	upgrade     bool
}

func newApplyCommand(global *globalFlags) *cobra.Command {
	flags := &specFlags{}
	var check bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Converge an app towards its declared state",
		Long: `Apply reads the desired app state from a spec file and/or flags, compares it
with the state observed through the yunohost CLI, and runs the minimal set of
commands to converge. Flags override spec file fields.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReconcile(cmd, global, flags, check)
		},
	}

	registerSpecFlags(cmd, flags)
	cmd.Flags().BoolVar(&check, "check", false, "Compute and report the plan without executing it")
	return cmd
}

func newPlanCommand(global *globalFlags) *cobra.Command {
	flags := &specFlags{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Report what apply would change, without executing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReconcile(cmd, global, flags, true)
		},
	}

	registerSpecFlags(cmd, flags)
	return cmd
}

func registerSpecFlags(cmd *cobra.Command, flags *specFlags) {
	cmd.Flags().StringVarP(&flags.specFile, "file", "f", "", "Path to a YAML app spec file")
	cmd.Flags().StringVar(&flags.id, "id", "", "Installation id of an existing app, e.g. grav__2")
	cmd.Flags().StringVar(&flags.name, "name", "", "Catalog name or package source URL of the app")
	cmd.Flags().StringVar(&flags.label, "label", "", "User-visible label")
	cmd.Flags().StringVar(&flags.domain, "domain", "", "Domain the app is served on")
	cmd.Flags().StringVar(&flags.path, "path", "", "URL path the app is served under")
	cmd.Flags().StringVar(&flags.state, "state", "", "Desired presence: present or absent")
	cmd.Flags().StringArrayVar(&flags.settings, "set", nil, "App setting as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&flags.permissions, "permission", nil, "Allowed principal (repeatable)")
	cmd.Flags().BoolVar(&flags.appendPerms, "append", false, "Add to the current allow-list instead of replacing it")
	cmd.Flags().BoolVar(&flags.upgrade, "upgrade", false, "Upgrade the app when the platform lists one")
}

func runReconcile(cmd *cobra.Command, global *globalFlags, flags *specFlags, checkMode bool) error {
	desired, err := desiredStateFromFlags(flags, cmd.Flags().Changed)
	if err != nil {
		return err
	}

	deps, err := buildDeps(global.configPath)
	if err != nil {
		return err
	}

	format := global.outputFormat(deps.cfg)
	if err := common.ValidateOutputFormat(format); err != nil {
		return err
	}

	outcome, reconcileErr := deps.reconciler.Reconcile(global.commandContext(cmd), desired, checkMode)
	if renderErr := common.RenderOutcome(cmd.OutOrStdout(), outcome, format); renderErr != nil {
		return renderErr
	}
	return reconcileErr
}

// desiredStateFromFlags merges the spec file with flag overrides. changed
// reports whether a flag was set on the command line, so a false boolean flag
// does not stomp a true value from the file.
func desiredStateFromFlags(flags *specFlags, changed func(string) bool) (app.DesiredState, error) {
	var desired app.DesiredState

	if flags.specFile != "" {
		loaded, err := config.LoadDesiredState(flags.specFile)
		if err != nil {
			return app.DesiredState{}, err
		}
		desired = loaded
	}

	if flags.id != "" {
		desired.ID = flags.id
	}
	if flags.name != "" {
		desired.Name = flags.name
	}
	if flags.label != "" {
		desired.Label = flags.label
	}
	if flags.domain != "" {
		desired.Domain = flags.domain
	}
	if flags.path != "" {
		desired.Path = flags.path
	}
	if flags.state != "" {
		desired.State = app.Presence(flags.state)
	}
	if changed("append") {
		desired.Append = flags.appendPerms
	}
	if changed("upgrade") {
		desired.Upgrade = flags.upgrade
	}
	if len(flags.permissions) > 0 {
		desired.Permissions = flags.permissions
	}

	overrides, err := common.ParseAssignments(flags.settings)
	if err != nil {
		return app.DesiredState{}, err
	}
	if len(overrides) > 0 {
		if desired.Settings == nil {
			desired.Settings = make(map[string]string, len(overrides))
		}
		for key, value := range overrides {
			desired.Settings[key] = value
		}
	}

	if err := desired.Validate(); err != nil {
		return app.DesiredState{}, err
	}
	return desired, nil
}
