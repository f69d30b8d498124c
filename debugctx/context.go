package debugctx

import (
	"context"
	"fmt"
	"io"
	"strings"
)

type settingsKey struct{}

type settings struct {
	writer io.Writer
	runID  string
}

// WithTracing enables debug tracing on the context. runID is a short
// correlation id stamped on every line so interleaved passes can be told
// apart in shared logs.
func WithTracing(ctx context.Context, writer io.Writer, runID string) context.Context {
	if writer == nil {
		return ctx
	}
	return context.WithValue(ctx, settingsKey{}, settings{writer: writer, runID: runID})
}

func Enabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	current, found := ctx.Value(settingsKey{}).(settings)
	return found && current.writer != nil
}

func Printf(ctx context.Context, format string, args ...any) {
	if ctx == nil {
		return
	}
	current, found := ctx.Value(settingsKey{}).(settings)
	if !found || current.writer == nil {
		return
	}

	message := strings.TrimSpace(fmt.Sprintf(format, args...))
	if message == "" {
		return
	}

	if current.runID != "" {
		_, _ = fmt.Fprintf(current.writer, "debug[%s]: %s\n", current.runID, message)
		return
	}
	_, _ = fmt.Fprintf(current.writer, "debug: %s\n", message)
}
