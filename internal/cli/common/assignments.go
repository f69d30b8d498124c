package common

import "strings"

// ParseAssignments turns repeated key=value flag items into a settings map.
// Keys are unique; a repeated key is a caller mistake, not a silent override.
func ParseAssignments(items []string) (map[string]string, error) {
	if len(items) == 0 {
		return nil, nil
	}

	assignments := make(map[string]string, len(items))
	for _, item := range items {
		part := strings.TrimSpace(item)
		if part == "" {
			return nil, ValidationError("invalid assignment: empty item", nil)
		}
		pieces := strings.SplitN(part, "=", 2)
		if len(pieces) != 2 {
			return nil, ValidationError("invalid assignment "+part+": expected key=value", nil)
		}

		key := strings.TrimSpace(pieces[0])
		if key == "" {
			return nil, ValidationError("invalid assignment "+part+": key must not be empty", nil)
		}
		if _, seen := assignments[key]; seen {
			return nil, ValidationError("duplicate assignment for key "+key, nil)
		}
		assignments[key] = strings.TrimSpace(pieces[1])
	}
	return assignments, nil
}
