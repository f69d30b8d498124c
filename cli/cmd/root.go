package cmd

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ynhstate/ynhstate/debugctx"
)

var version = "dev"

func Execute() error {
	return NewRootCommand().Execute()
}

type globalFlags struct {
	configPath string
	output     string
	debug      bool
}

func NewRootCommand() *cobra.Command {
	global := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "ynhstate",
		Short: "Converge YunoHost apps towards declared state",
		Long: `ynhstate reads a declarative description of a YunoHost app and drives the
yunohost CLI to make the installed app match it: presence, label, URL,
settings, permissions, and pending upgrades.

Every pass is idempotent: it computes the minimal plan of yunohost commands,
applies them in order, and reports a structured diff.`,
		Example: `  # Converge an app from a spec file
  ynhstate apply -f grav.yaml

  # Show what would change without touching the host
  ynhstate plan -f grav.yaml

  # Remove an app
  ynhstate remove grav`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&global.configPath, "config", "", "Path to the ynhstate config file")
	flags.StringVarP(&global.output, "output", "o", "", "Output format: text, json, or yaml")
	flags.BoolVar(&global.debug, "debug", false, "Print debug traces to stderr")

	cmd.AddCommand(newApplyCommand(global))
	cmd.AddCommand(newPlanCommand(global))
	cmd.AddCommand(newRemoveCommand(global))
	cmd.AddCommand(newInfoCommand(global))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func (g *globalFlags) commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if g.debug {
		ctx = debugctx.WithTracing(ctx, cmd.ErrOrStderr(), uuid.NewString()[:8])
	}
	return ctx
}
