package engine

import (
	"encoding/json"
	"strings"
)

// parsePS decodes a newline-delimited stream of JSON objects, skipping
// blank and malformed lines rather than failing the whole parse —
// spec.md §6: "malformed lines are ignored rather than fatal."
func parsePS(raw string) []ContainerStatus {
	var out []ContainerStatus
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var cs ContainerStatus
		if err := json.Unmarshal([]byte(line), &cs); err != nil {
			continue
		}
		out = append(out, cs)
	}
	return out
}
