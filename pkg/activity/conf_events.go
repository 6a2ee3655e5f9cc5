package activity

import (
	"strings"
	"time"
)

// Verbs emitted by the registry.
const (
	VerbOptsRegistered  = "conf.opts.registered"
	VerbOverrideSet     = "conf.override.set"
	VerbOverrideCleared = "conf.override.cleared"
	VerbDefaultSet      = "conf.default.set"
	VerbDefaultCleared  = "conf.default.cleared"
	VerbReset           = "conf.reset"
	VerbFileLoaded      = "conf.file.loaded"
)

// Object types carried by registry events.
const (
	ObjectOption   = "conf.option"
	ObjectGroup    = "conf.group"
	ObjectRegistry = "conf.registry"
)

const maskedValue = "****"

// ChangeInput describes a single option change.
type ChangeInput struct {
	Group      string
	Name       string
	OldValue   any
	NewValue   any
	Secret     bool
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildOverrideSetEvent constructs an event for an override being set.
func BuildOverrideSetEvent(input ChangeInput) Event {
	return buildOptionEvent(VerbOverrideSet, input)
}

// BuildOverrideClearedEvent constructs an event for an override being removed.
func BuildOverrideClearedEvent(input ChangeInput) Event {
	return buildOptionEvent(VerbOverrideCleared, input)
}

// BuildDefaultSetEvent constructs an event for a runtime default change.
func BuildDefaultSetEvent(input ChangeInput) Event {
	return buildOptionEvent(VerbDefaultSet, input)
}

// BuildDefaultClearedEvent constructs an event for a runtime default removal.
func BuildDefaultClearedEvent(input ChangeInput) Event {
	return buildOptionEvent(VerbDefaultCleared, input)
}

// BuildOptsRegisteredEvent reports options newly registered into a group.
func BuildOptsRegisteredEvent(group string, names []string) Event {
	return Event{
		Verb:       VerbOptsRegistered,
		ObjectType: ObjectGroup,
		ObjectID:   groupID(group),
		Metadata: map[string]any{
			"group":   groupID(group),
			"options": append([]string(nil), names...),
		},
	}
}

// BuildResetEvent reports a registry reset.
func BuildResetEvent(cleared int) Event {
	return Event{
		Verb:       VerbReset,
		ObjectType: ObjectRegistry,
		ObjectID:   "registry",
		Metadata:   map[string]any{"cleared": cleared},
	}
}

// BuildFileLoadedEvent reports a configuration file merged into the registry.
func BuildFileLoadedEvent(path string, groups []string) Event {
	return Event{
		Verb:       VerbFileLoaded,
		ObjectType: ObjectRegistry,
		ObjectID:   strings.TrimSpace(path),
		Metadata: map[string]any{
			"path":   strings.TrimSpace(path),
			"groups": append([]string(nil), groups...),
		},
	}
}

func buildOptionEvent(verb string, input ChangeInput) Event {
	metadata := cloneMap(input.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["group"] = groupID(input.Group)
	metadata["option"] = input.Name
	if input.OldValue != nil {
		metadata["old_value"] = maskIf(input.Secret, input.OldValue)
	}
	if input.NewValue != nil {
		metadata["new_value"] = maskIf(input.Secret, input.NewValue)
	}
	if input.Secret {
		metadata["secret"] = true
	}

	return Event{
		Verb:       verb,
		ObjectType: ObjectOption,
		ObjectID:   groupID(input.Group) + "." + strings.TrimSpace(input.Name),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func maskIf(secret bool, value any) any {
	if secret {
		return maskedValue
	}
	return value
}

func groupID(group string) string {
	group = strings.TrimSpace(group)
	if group == "" {
		return "DEFAULT"
	}
	return group
}
