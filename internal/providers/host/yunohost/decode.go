package yunohost

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/itchyny/gojq"

	"github.com/ynhstate/ynhstate/app"
	"github.com/ynhstate/ynhstate/faults"
	"github.com/ynhstate/ynhstate/host"
)

var (
	allowedQuery *gojq.Code
	upgradeQuery *gojq.Code
)

func init() {
	allowedQuery = mustCompile(`.permissions[$name].allowed // []`, "$name")
	upgradeQuery = mustCompile(`[.apps[]? | select(.id == $id)] | first`, "$id")
}

func mustCompile(program string, variables ...string) *gojq.Code {
	query, err := gojq.Parse(program)
	if err != nil {
		panic(fmt.Sprintf("invalid jq program %q: %v", program, err))
	}
	code, err := gojq.Compile(query, gojq.WithVariables(variables))
	if err != nil {
		panic(fmt.Sprintf("uncompilable jq program %q: %v", program, err))
	}
	return code
}

type infoPayload struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Manifest struct {
		ID string `json:"id"`
	} `json:"manifest"`
	Settings map[string]any `json:"settings"`
}

// decodeSnapshot maps the `app info` JSON document onto a snapshot. Settings
// values are stringified: the CLI is loose about scalar types and the
// reconciler compares settings as strings.
func decodeSnapshot(payload []byte) (app.Snapshot, error) {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()

	var info infoPayload
	if err := decoder.Decode(&info); err != nil {
		return app.Snapshot{}, faults.NewTypedError(faults.TransportError,
			"yunohost app info returned malformed JSON", err)
	}

	label := info.Label
	if label == "" {
		label = info.Name
	}

	settings := make(map[string]string, len(info.Settings))
	for key, value := range info.Settings {
		if scalar, ok := scalarString(value); ok {
			settings[key] = scalar
		}
	}

	return app.Snapshot{
		Exists:     true,
		Label:      label,
		ManifestID: info.Manifest.ID,
		Settings:   settings,
	}, nil
}

// decodeAllowed extracts the allow-list of one permission from the
// `user permission list` document.
func decodeAllowed(payload []byte, permissionName string) ([]string, error) {
	document, err := unmarshalDocument(payload, "yunohost user permission list")
	if err != nil {
		return nil, err
	}

	iter := allowedQuery.Run(document, permissionName)
	value, ok := iter.Next()
	if !ok {
		return nil, nil
	}
	if err, isErr := value.(error); isErr {
		return nil, faults.NewTypedError(faults.TransportError,
			"unexpected permission list shape", err)
	}

	items, ok := value.([]any)
	if !ok {
		return nil, faults.NewTypedError(faults.TransportError,
			fmt.Sprintf("permission %q allow-list is not a list", permissionName), nil)
	}

	allowed := make([]string, 0, len(items))
	for _, item := range items {
		if principal, ok := item.(string); ok && principal != "" {
			allowed = append(allowed, principal)
		}
	}
	return allowed, nil
}

// decodeUpgrade locates the app in the `tools update` pending set and refines
// the answer with a version comparison.
func decodeUpgrade(payload []byte, appID string) (host.UpgradeInfo, error) {
	document, err := unmarshalDocument(payload, "yunohost tools update")
	if err != nil {
		return host.UpgradeInfo{}, err
	}

	iter := upgradeQuery.Run(document, appID)
	value, ok := iter.Next()
	if !ok || value == nil {
		return host.UpgradeInfo{}, nil
	}
	if err, isErr := value.(error); isErr {
		return host.UpgradeInfo{}, faults.NewTypedError(faults.TransportError,
			"unexpected tools update shape", err)
	}

	entry, ok := value.(map[string]any)
	if !ok {
		return host.UpgradeInfo{}, nil
	}

	info := host.UpgradeInfo{}
	info.CurrentVersion, _ = scalarString(entry["current_version"])
	info.NewVersion, _ = scalarString(entry["new_version"])
	if info.CurrentVersion == "" && info.NewVersion == "" {
		// Listed without version details still means the platform wants to
		// upgrade it.
		info.Available = true
	} else {
		info.Available = versionAdvances(info.CurrentVersion, info.NewVersion)
	}
	return info, nil
}

func unmarshalDocument(payload []byte, source string) (map[string]any, error) {
	var document map[string]any
	if err := json.Unmarshal(payload, &document); err != nil {
		return nil, faults.NewTypedError(faults.TransportError,
			source+" returned malformed JSON", err)
	}
	return document, nil
}

// versionAdvances compares YunoHost package versions, which look like
// "1.7.48~ynh2". The "~ynhN" packaging revision maps onto a semver
// prerelease; versions that defy parsing fall back to plain inequality so an
// advertised upgrade is never dropped on a version scheme change.
func versionAdvances(current string, next string) bool {
	if next == "" {
		return false
	}
	if current == "" {
		return true
	}

	currentVersion, currentErr := semver.NewVersion(strings.ReplaceAll(current, "~", "-"))
	nextVersion, nextErr := semver.NewVersion(strings.ReplaceAll(next, "~", "-"))
	if currentErr != nil || nextErr != nil {
		return current != next
	}
	return nextVersion.GreaterThan(currentVersion)
}

func scalarString(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, true
	case json.Number:
		return typed.String(), true
	case bool:
		if typed {
			return "true", true
		}
		return "false", true
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%v", typed), ".0"), true
	default:
		return "", false
	}
}
