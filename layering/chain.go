package layering

import (
	"reflect"
	"slices"
)

// Layer pairs a source with the values it contributes, keyed by option name.
type Layer struct {
	Source Source
	Values map[string]any
}

// Hit reports what one layer holds for a key.
type Hit struct {
	Source Source
	Value  any
	Found  bool
}

// Chain is an ordered set of layers from strongest to weakest.
type Chain struct {
	ordered []Layer
}

// NewChain constructs a chain, dropping layers with an unknown source and
// keeping only the first layer seen for each source. The resulting order
// always places stronger sources first.
func NewChain(layers ...Layer) Chain {
	filtered := make([]Layer, 0, len(layers))
	seen := map[Source]struct{}{}

	for _, layer := range layers {
		if layer.Source == SourceUnknown {
			continue
		}
		if _, exists := seen[layer.Source]; exists {
			continue
		}
		seen[layer.Source] = struct{}{}
		filtered = append(filtered, Layer{Source: layer.Source, Values: cloneValues(layer.Values)})
	}

	slices.SortStableFunc(filtered, func(a, b Layer) int {
		switch {
		case a.Source == b.Source:
			return 0
		case a.Source > b.Source:
			return -1
		default:
			return 1
		}
	})

	return Chain{ordered: filtered}
}

// Len returns the number of layers in the chain.
func (c Chain) Len() int {
	return len(c.ordered)
}

// Sources returns the layer sources from strongest to weakest.
func (c Chain) Sources() []Source {
	out := make([]Source, len(c.ordered))
	for i, layer := range c.ordered {
		out[i] = layer.Source
	}
	return out
}

// Lookup returns the value held by the strongest layer containing key. A key
// mapped to nil still counts as set.
func (c Chain) Lookup(key string) (any, Source, bool) {
	for _, layer := range c.ordered {
		if value, ok := layer.Values[key]; ok {
			return Clone(value), layer.Source, true
		}
	}
	return nil, SourceUnknown, false
}

// Probe reports, for every layer, whether it holds key.
func (c Chain) Probe(key string) []Hit {
	hits := make([]Hit, 0, len(c.ordered))
	for _, layer := range c.ordered {
		value, ok := layer.Values[key]
		hits = append(hits, Hit{Source: layer.Source, Value: Clone(value), Found: ok})
	}
	return hits
}

// Merge flattens the chain into a single map where stronger layers win.
func (c Chain) Merge() map[string]any {
	merged := map[string]any{}
	for i := len(c.ordered) - 1; i >= 0; i-- {
		for key, value := range c.ordered[i].Values {
			merged[key] = Clone(value)
		}
	}
	return merged
}

// Clone returns a deep copy of value for the container kinds option values use
// (slices and maps); scalars are returned as is.
func Clone[T any](value T) T {
	cloned := cloneValue(reflect.ValueOf(value))
	if !cloned.IsValid() {
		var zero T
		return zero
	}
	out, ok := cloned.Interface().(T)
	if !ok {
		return value
	}
	return out
}

func cloneValues(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = Clone(value)
	}
	return out
}

func cloneValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		elem := cloneValue(v.Elem())
		out := reflect.New(v.Type()).Elem()
		out.Set(elem)
		return out
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	default:
		return v
	}
}
