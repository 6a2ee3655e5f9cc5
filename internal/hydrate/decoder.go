package hydrate

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// DefaultTagName is the struct tag read when mapping option names to fields.
const DefaultTagName = "conf"

// Context identifies the option group a payload was taken from.
type Context struct {
	Group string
}

func (c Context) label() string {
	if c.Group == "" {
		return "DEFAULT"
	}
	return c.Group
}

// PreHook lets callers mutate or normalise the payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the decoded struct. target is the
// pointer passed to Decode.
type PostHook func(Context, any) error

// DecoderOption configures a Decoder instance.
type DecoderOption func(*Decoder)

// Decoder maps effective group values onto tagged structs.
type Decoder struct {
	preHooks    []PreHook
	postHooks   []PostHook
	decodeHooks []mapstructure.DecodeHookFunc
	tagName     string
	errorUnused bool
	strict      bool
}

// WithPreHook applies hook prior to decoding.
func WithPreHook(hook PreHook) DecoderOption {
	return func(d *Decoder) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook(hook PostHook) DecoderOption {
	return func(d *Decoder) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithTagName overrides the struct tag used for field names.
func WithTagName(tag string) DecoderOption {
	return func(d *Decoder) {
		if tag != "" {
			d.tagName = tag
		}
	}
}

// WithErrorUnused fails decoding when the payload holds keys with no field.
func WithErrorUnused() DecoderOption {
	return func(d *Decoder) {
		d.errorUnused = true
	}
}

// WithStrictTypes disables weak typing, so "30" no longer fills an int field.
func WithStrictTypes() DecoderOption {
	return func(d *Decoder) {
		d.strict = true
	}
}

// WithDecodeHook appends a mapstructure decode hook.
func WithDecodeHook(hook mapstructure.DecodeHookFunc) DecoderOption {
	return func(d *Decoder) {
		if hook != nil {
			d.decodeHooks = append(d.decodeHooks, hook)
		}
	}
}

// NewDecoder builds a Decoder. Durations and comma separated strings are
// converted by default.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		tagName: DefaultTagName,
		decodeHooks: []mapstructure.DecodeHookFunc{
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode copies payload into target, which must be a non-nil pointer.
func (d *Decoder) Decode(ctx Context, payload map[string]any, target any) error {
	if payload == nil {
		return fmt.Errorf("hydrate: payload is nil for group %q", ctx.label())
	}
	if rv := reflect.ValueOf(target); !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("hydrate: target for group %q must be a non-nil pointer, got %T", ctx.label(), target)
	}

	current := clonePayload(payload)
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return fmt.Errorf("hydrate: pre-hook for group %q failed: %w", ctx.label(), err)
		}
		if next != nil {
			current = next
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(d.decodeHooks...),
		ErrorUnused:      d.errorUnused,
		WeaklyTypedInput: !d.strict,
		TagName:          d.tagName,
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("hydrate: configure decoder for group %q: %w", ctx.label(), err)
	}
	if err := decoder.Decode(current); err != nil {
		return fmt.Errorf("hydrate: decode group %q: %w", ctx.label(), err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, target); err != nil {
			return fmt.Errorf("hydrate: post-hook for group %q failed: %w", ctx.label(), err)
		}
	}
	return nil
}

func clonePayload(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for key, value := range payload {
		out[key] = value
	}
	return out
}
