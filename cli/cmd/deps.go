package cmd

import (
	"github.com/ynhstate/ynhstate/config"
	"github.com/ynhstate/ynhstate/host"
	"github.com/ynhstate/ynhstate/internal/cli/common"
	"github.com/ynhstate/ynhstate/internal/providers/host/yunohost"
	"github.com/ynhstate/ynhstate/reconciler"
)

type commandDeps struct {
	cfg        config.Config
	reader     host.StateReader
	reconciler reconciler.Reconciler
}

// buildDeps is a package variable so command tests can substitute scripted
// collaborators without a yunohost binary.
var buildDeps = buildDefaultDeps

func buildDefaultDeps(configPath string) (commandDeps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return commandDeps{}, err
	}

	timeout, err := cfg.Host.CommandTimeout()
	if err != nil {
		return commandDeps{}, err
	}

	gateway := &yunohost.Gateway{
		Binary:  cfg.Host.Binary,
		Sudo:    cfg.Host.Sudo,
		Timeout: timeout,
	}
	return commandDeps{
		cfg:        cfg,
		reader:     gateway,
		reconciler: &reconciler.DefaultReconciler{Reader: gateway, Executor: gateway},
	}, nil
}

func (g *globalFlags) outputFormat(cfg config.Config) string {
	if g.output != "" {
		return g.output
	}
	if cfg.Output != "" {
		return cfg.Output
	}
	return common.OutputText
}
