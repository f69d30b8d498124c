package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ynhstate/ynhstate/app"
	"github.com/ynhstate/ynhstate/internal/cli/common"
)

func newRemoveCommand(global *globalFlags) *cobra.Command {
	var (
		yes   bool
		check bool
	)

	cmd := &cobra.Command{
		Use:   "remove <app>",
		Short: "Uninstall an app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !check && !yes {
				if !interactiveInput(cmd.InOrStdin()) {
					return common.ValidationError(
						"refusing to remove without confirmation: stdin is not a terminal, pass --yes", nil)
				}
				confirmed, err := confirmRemoval(cmd, args[0])
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
					return nil
				}
			}

			deps, err := buildDeps(global.configPath)
			if err != nil {
				return err
			}
			format := global.outputFormat(deps.cfg)
			if err := common.ValidateOutputFormat(format); err != nil {
				return err
			}

			desired := app.DesiredState{Name: args[0], State: app.PresenceAbsent}
			outcome, reconcileErr := deps.reconciler.Reconcile(global.commandContext(cmd), desired, check)
			if renderErr := common.RenderOutcome(cmd.OutOrStdout(), outcome, format); renderErr != nil {
				return renderErr
			}
			return reconcileErr
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&check, "check", false, "Report the plan without executing it")
	return cmd
}

func interactiveInput(in io.Reader) bool {
	file, ok := in.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func confirmRemoval(cmd *cobra.Command, target string) (bool, error) {
	confirmed := false
	field := huh.NewConfirm().
		Title(fmt.Sprintf("Remove app %q and all its data?", target)).
		Affirmative("Remove").
		Negative("Keep").
		Value(&confirmed)

	form := huh.NewForm(huh.NewGroup(field)).
		WithShowHelp(false).
		WithInput(cmd.InOrStdin()).
		WithOutput(cmd.OutOrStdout())
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return confirmed, nil
}
