package conf

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// OptType names the value kind an option holds.
type OptType string

const (
	TypeString      OptType = "string"
	TypeInt         OptType = "integer"
	TypeFloat       OptType = "float"
	TypeBool        OptType = "boolean"
	TypeList        OptType = "list"
	TypeMultiString OptType = "multi_string"
	TypePort        OptType = "port"
)

const maxPort = 65535

// DeprecatedOpt names an older spelling of an option. An empty Group means
// the option's own group; use DefaultGroup to point at the ungrouped namespace.
type DeprecatedOpt struct {
	Name  string
	Group string
}

// Opt declares a single configuration option.
type Opt struct {
	Name       string
	Type       OptType
	Default    any
	Help       string
	Secret     bool
	Choices    []string
	Min        *float64
	Max        *float64
	Rule       string
	Deprecated []DeprecatedOpt
}

// OptOption configures an Opt at construction time.
type OptOption func(*Opt)

// WithDefault sets the declared default value.
func WithDefault(value any) OptOption {
	return func(o *Opt) {
		o.Default = value
	}
}

// WithHelp sets the help text.
func WithHelp(help string) OptOption {
	return func(o *Opt) {
		o.Help = help
	}
}

// WithSecret masks the option value in logs, traces and activity events.
func WithSecret() OptOption {
	return func(o *Opt) {
		o.Secret = true
	}
}

// WithChoices restricts string values (or list elements) to choices.
func WithChoices(choices ...string) OptOption {
	return func(o *Opt) {
		o.Choices = append([]string(nil), choices...)
	}
}

// WithMin sets an inclusive lower bound for numeric options.
func WithMin(min float64) OptOption {
	return func(o *Opt) {
		o.Min = &min
	}
}

// WithMax sets an inclusive upper bound for numeric options.
func WithMax(max float64) OptOption {
	return func(o *Opt) {
		o.Max = &max
	}
}

// WithRule attaches a boolean expression that must hold for every value set
// on the option. The expression sees value, name, group and conf (the
// effective values of the option's group).
func WithRule(expr string) OptOption {
	return func(o *Opt) {
		o.Rule = expr
	}
}

// WithDeprecated records older names the option is also known by.
func WithDeprecated(deprecated ...DeprecatedOpt) OptOption {
	return func(o *Opt) {
		o.Deprecated = append(o.Deprecated, deprecated...)
	}
}

// WithDeprecatedName is a shorthand for a deprecated name in the same group.
func WithDeprecatedName(name string) OptOption {
	return WithDeprecated(DeprecatedOpt{Name: name})
}

// NewOpt builds an option of the given type.
func NewOpt(name string, typ OptType, opts ...OptOption) Opt {
	opt := Opt{Name: name, Type: typ}
	for _, fn := range opts {
		if fn != nil {
			fn(&opt)
		}
	}
	return opt
}

// StrOpt declares a string option.
func StrOpt(name string, opts ...OptOption) Opt {
	return NewOpt(name, TypeString, opts...)
}

// IntOpt declares an integer option.
func IntOpt(name string, opts ...OptOption) Opt {
	return NewOpt(name, TypeInt, opts...)
}

// FloatOpt declares a floating point option.
func FloatOpt(name string, opts ...OptOption) Opt {
	return NewOpt(name, TypeFloat, opts...)
}

// BoolOpt declares a boolean option.
func BoolOpt(name string, opts ...OptOption) Opt {
	return NewOpt(name, TypeBool, opts...)
}

// ListOpt declares a comma separated list of strings.
func ListOpt(name string, opts ...OptOption) Opt {
	return NewOpt(name, TypeList, opts...)
}

// MultiStrOpt declares a multi-valued string option.
func MultiStrOpt(name string, opts ...OptOption) Opt {
	return NewOpt(name, TypeMultiString, opts...)
}

// PortOpt is an integer option bounded to the TCP port range.
func PortOpt(name string, opts ...OptOption) Opt {
	opt := NewOpt(name, TypePort, opts...)
	if opt.Min == nil {
		WithMin(0)(&opt)
	}
	if opt.Max == nil {
		WithMax(maxPort)(&opt)
	}
	return opt
}

func (o Opt) clone() Opt {
	out := o
	out.Choices = append([]string(nil), o.Choices...)
	out.Deprecated = append([]DeprecatedOpt(nil), o.Deprecated...)
	if o.Min != nil {
		min := *o.Min
		out.Min = &min
	}
	if o.Max != nil {
		max := *o.Max
		out.Max = &max
	}
	return out
}

func (o Opt) equal(other Opt) bool {
	return reflect.DeepEqual(o.normalized(), other.normalized())
}

// normalized drops empty-vs-nil slice differences before comparison.
func (o Opt) normalized() Opt {
	out := o.clone()
	if len(out.Choices) == 0 {
		out.Choices = nil
	}
	if len(out.Deprecated) == 0 {
		out.Deprecated = nil
	}
	return out
}

func (o Opt) validateDefinition() error {
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("%w: option name must not be empty", ErrInvalidOpt)
	}
	switch o.Type {
	case TypeString, TypeInt, TypeFloat, TypeBool, TypeList, TypeMultiString, TypePort:
	default:
		return fmt.Errorf("%w: option %q has unsupported type %q", ErrInvalidOpt, o.Name, o.Type)
	}
	if o.Min != nil && o.Max != nil && *o.Min > *o.Max {
		return fmt.Errorf("%w: option %q min %v exceeds max %v", ErrInvalidOpt, o.Name, *o.Min, *o.Max)
	}
	return nil
}

// Coerce converts value into the option's Go representation and checks the
// declared choices and bounds. A nil value stays nil, as does a blank string
// for numeric and boolean options.
func (o Opt) Coerce(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		switch o.Type {
		case TypeInt, TypePort, TypeFloat, TypeBool:
			return nil, nil
		}
	}
	coerced, err := o.convert(value)
	if err != nil {
		return nil, err
	}
	if err := o.checkBounds(coerced); err != nil {
		return nil, err
	}
	return coerced, nil
}

func (o Opt) convert(value any) (any, error) {
	switch o.Type {
	case TypeString:
		return cast.ToStringE(value)
	case TypeInt, TypePort:
		if s, ok := value.(string); ok {
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 0)
			if err != nil {
				return nil, fmt.Errorf("value %q is not a base 10 integer", s)
			}
			return int(n), nil
		}
		return cast.ToIntE(value)
	case TypeFloat:
		if s, ok := value.(string); ok {
			value = strings.TrimSpace(s)
		}
		return cast.ToFloat64E(value)
	case TypeBool:
		if s, ok := value.(string); ok {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "yes", "on":
				return true, nil
			case "no", "off":
				return false, nil
			}
			value = strings.TrimSpace(s)
		}
		return cast.ToBoolE(value)
	case TypeList, TypeMultiString:
		if s, ok := value.(string); ok {
			return splitList(s), nil
		}
		return cast.ToStringSliceE(value)
	default:
		return nil, fmt.Errorf("unsupported type %q", o.Type)
	}
}

func (o Opt) checkBounds(value any) error {
	if len(o.Choices) > 0 {
		switch typed := value.(type) {
		case string:
			if !slices.Contains(o.Choices, typed) {
				return fmt.Errorf("value %q is not one of %v", typed, o.Choices)
			}
		case []string:
			for _, item := range typed {
				if !slices.Contains(o.Choices, item) {
					return fmt.Errorf("value %q is not one of %v", item, o.Choices)
				}
			}
		}
	}

	var number float64
	switch typed := value.(type) {
	case int:
		number = float64(typed)
	case float64:
		number = typed
	default:
		return nil
	}
	if o.Min != nil && number < *o.Min {
		return fmt.Errorf("value %v is below minimum %v", value, *o.Min)
	}
	if o.Max != nil && number > *o.Max {
		return fmt.Errorf("value %v is above maximum %v", value, *o.Max)
	}
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
