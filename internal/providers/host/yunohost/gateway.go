// Package yunohost drives a local yunohost binary and adapts its JSON output
// to the host boundary interfaces.
package yunohost

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/ynhstate/ynhstate/debugctx"
	"github.com/ynhstate/ynhstate/faults"
	"github.com/ynhstate/ynhstate/host"
)

const DefaultBinary = "/usr/bin/yunohost"

// notFoundMarker is the stable fragment yunohost prints when an app id does
// not resolve to an installed app.
const notFoundMarker = "Could not find"

type Gateway struct {
	Binary  string
	Sudo    bool
	Timeout time.Duration
}

// Run executes one yunohost command. A nonzero exit status is a regular
// result here, not an error; errors mean the process could not run at all.
func (g *Gateway) Run(ctx context.Context, command host.Command) (host.ExecResult, error) {
	binary := g.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	name := binary
	args := command.Args
	if g.Sudo {
		name = "sudo"
		args = append([]string{binary}, command.Args...)
	}

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	execCmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	debugctx.Printf(ctx, "exec: %s", command)
	runErr := execCmd.Run()

	result := host.ExecResult{
		RC:     0,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if runErr != nil {
		// A command killed by the timeout also surfaces as an ExitError with
		// RC -1; the context tells the two apart.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return host.ExecResult{}, faults.NewTypedError(faults.TransportError,
				"yunohost did not finish within the command timeout", ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.RC = exitErr.ExitCode()
			debugctx.Printf(ctx, "exec: %s exited %d", command, result.RC)
			return result, nil
		}
		return host.ExecResult{}, faults.NewTypedError(faults.TransportError,
			"yunohost could not be executed", runErr)
	}
	return result, nil
}

func (g *Gateway) commandFailed(message string, result host.ExecResult) error {
	if stderr := strings.TrimSpace(result.Stderr); stderr != "" {
		message += ": " + stderr
	}
	if result.UnsupportedAction() {
		return faults.NewTypedError(faults.NotImplementedError, message, nil)
	}
	return faults.NewTypedError(faults.TransportError, message, nil)
}
