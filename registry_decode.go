package conf

import "github.com/goliatone/go-conf/internal/hydrate"

// Decode copies the effective values of group into target, a pointer to a
// struct whose fields carry `conf:"option_name"` tags. Strings are weakly
// converted, so "30s" fills a time.Duration.
func (r *Registry) Decode(group string, target any) error {
	values, err := r.GroupValues(group)
	if err != nil {
		return err
	}
	return hydrate.NewDecoder().Decode(hydrate.Context{Group: normalizeGroup(group)}, values, target)
}

// DecodeGroup is a typed variant of Registry.Decode.
func DecodeGroup[T any](r *Registry, group string) (T, error) {
	var out T
	if err := r.Decode(group, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
