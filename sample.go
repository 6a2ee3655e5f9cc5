package conf

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/ini.v1"
)

// WriteSample writes an INI file listing every registered option with its
// help text and declared default. The output loads back through LoadFile.
// Secret options are written empty.
func (r *Registry) WriteSample(w io.Writer) error {
	file := ini.Empty()
	for _, desc := range r.Describe() {
		section := file.Section(desc.Group)
		key, err := section.NewKey(desc.Name, sampleValue(desc.Default))
		if err != nil {
			return fmt.Errorf("conf: sample %s.%s: %w", desc.Group, desc.Name, err)
		}
		key.Comment = sampleComment(desc)
	}
	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("conf: write sample: %w", err)
	}
	return nil
}

func sampleValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(typed, ",")
	default:
		return fmt.Sprint(typed)
	}
}

func sampleComment(desc OptDescriptor) string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(desc.Help), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, "# "+line)
		}
	}
	meta := fmt.Sprintf("# (%s)", desc.Type)
	if len(desc.Choices) > 0 {
		meta += " choices: " + strings.Join(desc.Choices, ", ")
	}
	if desc.Min != nil || desc.Max != nil {
		meta += " range: " + boundLabel(desc.Min) + ".." + boundLabel(desc.Max)
	}
	lines = append(lines, meta)
	for _, dep := range desc.Deprecated {
		group := dep.Group
		if group == "" {
			group = desc.Group
		}
		name := dep.Name
		if name == "" {
			name = desc.Name
		}
		lines = append(lines, fmt.Sprintf("# Deprecated name: %s.%s", group, name))
	}
	return strings.Join(lines, "\n")
}

func boundLabel(bound *float64) string {
	if bound == nil {
		return ""
	}
	return fmt.Sprint(*bound)
}
