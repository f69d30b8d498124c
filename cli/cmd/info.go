package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ynhstate/ynhstate/app/identity"
	"github.com/ynhstate/ynhstate/faults"
	"github.com/ynhstate/ynhstate/internal/cli/common"
)

type appView struct {
	ID          string            `json:"id" yaml:"id"`
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	URL         string            `json:"url,omitempty" yaml:"url,omitempty"`
	Settings    map[string]string `json:"settings,omitempty" yaml:"settings,omitempty"`
	Permissions []string          `json:"permissions,omitempty" yaml:"permissions,omitempty"`
}

func newInfoCommand(global *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <app>",
		Short: "Show the observed state of an installed app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := identity.Resolve(identity.ResolveInput{Name: args[0]})
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

			snapshot, err := deps.reader.Fetch(global.commandContext(cmd), id, true)
			if err != nil {
				return err
			}
			if !snapshot.Exists {
				return faults.NewTypedError(faults.NotFoundError,
					fmt.Sprintf("app %q is not installed", id), nil)
			}

			return common.RenderValue(cmd.OutOrStdout(), appView{
				ID:          id.Name,
				Label:       snapshot.Label,
				URL:         snapshot.URL(),
				Settings:    snapshot.Settings,
				Permissions: snapshot.Permissions,
			}, format)
		},
	}
	return cmd
}
