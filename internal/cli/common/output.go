package common

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ynhstate/ynhstate/app"
)

const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

func ValidateOutputFormat(format string) error {
	switch format {
	case "", OutputText, OutputJSON, OutputYAML:
		return nil
	default:
		return ValidationError("invalid output format: use text, json, or yaml", nil)
	}
}

// RenderOutcome writes one reconciliation outcome in the requested format.
// The JSON and YAML forms carry the stable field names; text is for humans.
func RenderOutcome(w io.Writer, outcome app.Outcome, format string) error {
	switch format {
	case OutputJSON:
		return renderJSON(w, outcome)
	case OutputYAML:
		return renderYAML(w, outcome)
	case "", OutputText:
		return renderOutcomeText(w, outcome)
	default:
		return ValidationError("invalid output format: use text, json, or yaml", nil)
	}
}

func RenderValue(w io.Writer, value any, format string) error {
	switch format {
	case OutputJSON:
		return renderJSON(w, value)
	case "", OutputText, OutputYAML:
		return renderYAML(w, value)
	default:
		return ValidationError("invalid output format: use text, json, or yaml", nil)
	}
}

func renderJSON(w io.Writer, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}

func renderYAML(w io.Writer, value any) error {
	encoded, err := yaml.Marshal(value)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(encoded))
	return err
}

func renderOutcomeText(w io.Writer, outcome app.Outcome) error {
	var b strings.Builder

	fmt.Fprintf(&b, "changed: %t\n", outcome.Changed)
	if outcome.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", outcome.ID)
	}
	if outcome.Label != "" {
		fmt.Fprintf(&b, "label: %s\n", outcome.Label)
	}
	if outcome.URL != "" {
		fmt.Fprintf(&b, "url: %s\n", outcome.URL)
	}
	switch {
	case outcome.Installed:
		b.WriteString("installed: true\n")
	case outcome.Uninstalled:
		b.WriteString("uninstalled: true\n")
	}
	if outcome.Upgraded {
		b.WriteString("upgraded: true\n")
	}

	if len(outcome.Diff) > 0 {
		b.WriteString("diff:\n")
		for _, entry := range outcome.Diff {
			fmt.Fprintf(&b, "  %s: %q -> %q\n", entry.AfterHeader, entry.Before, entry.After)
		}
	}
	if len(outcome.Commands) > 0 {
		b.WriteString("commands:\n")
		for _, command := range outcome.Commands {
			fmt.Fprintf(&b, "  %s\n", command)
		}
	}
	if outcome.Error != nil {
		fmt.Fprintf(&b, "error: %s (%s)\n", outcome.Error.Message, outcome.Error.Category)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
