// Package frontmatter extracts the leading YAML block of a descriptor document.
package frontmatter

import (
	"strings"

	"go.yaml.in/yaml/v3"
)

const marker = "---"

// Parse returns the mapping held between the leading and closing "---" lines.
// It returns an empty, non-nil map when the block is absent, unterminated,
// malformed, or not a mapping.
func Parse(content string) map[string]any {
	content = strings.TrimPrefix(content, "\ufeff")
	if !strings.HasPrefix(content, marker) {
		return map[string]any{}
	}

	lines := splitLines(content)
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == marker {
			end = i
			break
		}
	}
	if end < 0 {
		return map[string]any{}
	}

	var data map[string]any
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &data); err != nil || data == nil {
		return map[string]any{}
	}
	return data
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}
