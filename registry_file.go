package conf

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/goliatone/go-conf/pkg/activity"
)

// LoadFile reads a configuration file and layers its values under the
// overrides. Files ending in .conf or .ini, or with no extension, are parsed
// as INI; any other extension viper understands is accepted too. Sections
// map to groups, and keys in [DEFAULT] or at the top level are ungrouped.
//
// Values are kept raw and coerced when read, so a value that does not fit its
// option surfaces as a ConfigFileValueError from Get. Loading several files
// merges them, later files winning. Reset discards file values.
func (r *Registry) LoadFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case "", ".conf", ".ini", ".cfg":
		v.SetConfigType("ini")
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("conf: load %s: %w", path, err)
	}

	parsed := splitFileGroups(v.AllSettings())

	r.mu.Lock()
	for group, values := range parsed {
		for name, raw := range values {
			setValue(r.file, group, name, raw)
		}
	}
	r.mu.Unlock()

	groups := make([]string, 0, len(parsed))
	for group := range parsed {
		groups = append(groups, groupLabel(group))
	}
	sort.Strings(groups)

	r.logger.WithFields(logrus.Fields{
		"action": "load_file",
		"path":   path,
		"groups": groups,
	}).Info("configuration file loaded")
	r.emit(activity.BuildFileLoadedEvent(path, groups))
	return nil
}

// splitFileGroups turns viper's nested settings into group -> key -> raw
// value. Viper lower-cases every key.
func splitFileGroups(settings map[string]any) map[string]map[string]any {
	out := map[string]map[string]any{}
	add := func(group, name string, value any) {
		values := out[group]
		if values == nil {
			values = map[string]any{}
			out[group] = values
		}
		values[name] = value
	}
	for key, value := range settings {
		section, ok := value.(map[string]any)
		if !ok {
			add("", key, value)
			continue
		}
		group := fileGroupKey(key)
		for name, raw := range section {
			add(group, name, raw)
		}
	}
	return out
}

func fileGroupKey(group string) string {
	return strings.ToLower(normalizeGroup(group))
}

// fileHit is a coerced file value and the raw text it came from.
type fileHit struct {
	raw   any
	value any
}

// fileValueLocked finds the file value for entry, trying its current name
// before each deprecated name.
func (r *Registry) fileValueLocked(entry *optEntry, group string) (*fileHit, error) {
	if len(r.file) == 0 {
		return nil, nil
	}
	raw, ok := r.file[fileGroupKey(group)][strings.ToLower(entry.opt.Name)]
	if !ok {
		for _, dep := range entry.opt.Deprecated {
			depGroup, depName := group, entry.opt.Name
			if dep.Group != "" {
				depGroup = normalizeGroup(dep.Group)
			}
			if dep.Name != "" {
				depName = dep.Name
			}
			if raw, ok = r.file[fileGroupKey(depGroup)][strings.ToLower(depName)]; ok {
				break
			}
		}
	}
	if !ok {
		return nil, nil
	}
	value, err := entry.opt.Coerce(raw)
	if err != nil {
		return nil, &ConfigFileValueError{
			Group: group,
			Name:  entry.opt.Name,
			Raw:   maskValue(entry.opt, raw),
			Err:   invalidValue(entry.opt, err),
		}
	}
	return &fileHit{raw: raw, value: value}, nil
}
