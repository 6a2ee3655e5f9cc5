package layering

import "strings"

// Source identifies where a value came from. Higher sources override lower
// sources when a chain is resolved.
type Source int

const (
	// SourceUnknown guards against misconfiguration so call sites can detect
	// layers built without a source.
	SourceUnknown Source = iota
	// SourceDefault is the declared default of an option.
	SourceDefault
	// SourceDefaultOverride is a default replaced at runtime (SetDefault).
	SourceDefaultOverride
	// SourceFile holds values parsed from configuration files.
	SourceFile
	// SourceOverride is the strongest layer, used by tests and callers that
	// need to pin a value.
	SourceOverride
)

func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceDefaultOverride:
		return "default_override"
	case SourceFile:
		return "file"
	case SourceOverride:
		return "override"
	default:
		return "unknown"
	}
}

// ParseSource converts a string representation into the corresponding Source.
// Returns SourceUnknown for unrecognised values.
func ParseSource(value string) Source {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "default":
		return SourceDefault
	case "default_override", "default-override":
		return SourceDefaultOverride
	case "file":
		return SourceFile
	case "override":
		return SourceOverride
	default:
		return SourceUnknown
	}
}

// MarshalText lets sources appear by name in JSON traces.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (s *Source) UnmarshalText(text []byte) error {
	*s = ParseSource(string(text))
	return nil
}
