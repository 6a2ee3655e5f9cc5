package conf

import "fmt"

// String returns the effective value of a string option. Unset options read
// as "".
func (r *Registry) String(name, group string) (string, error) {
	return typedValue[string](r, name, group)
}

// Int returns the effective value of an integer or port option.
func (r *Registry) Int(name, group string) (int, error) {
	return typedValue[int](r, name, group)
}

// Float returns the effective value of a float option.
func (r *Registry) Float(name, group string) (float64, error) {
	return typedValue[float64](r, name, group)
}

// Bool returns the effective value of a boolean option.
func (r *Registry) Bool(name, group string) (bool, error) {
	return typedValue[bool](r, name, group)
}

// StringSlice returns the effective value of a list or multi-string option.
func (r *Registry) StringSlice(name, group string) ([]string, error) {
	values, err := typedValue[[]string](r, name, group)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), values...), nil
}

func typedValue[T any](r *Registry, name, group string) (T, error) {
	var zero T
	value, err := r.Get(name, group)
	if err != nil || value == nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T, not %T", ErrInvalidValue, qualifiedName(normalizeGroup(group), name), value, zero)
	}
	return typed, nil
}
