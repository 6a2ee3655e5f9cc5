package conf

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoSuchOpt indicates the option is not registered in the group.
	ErrNoSuchOpt = errors.New("conf: no such option")
	// ErrNoSuchGroup indicates no option was ever registered in the group.
	ErrNoSuchGroup = errors.New("conf: no such group")
	// ErrDuplicateOpt indicates a conflicting definition for a registered name.
	ErrDuplicateOpt = errors.New("conf: duplicate option")
	// ErrInvalidOpt indicates a malformed option definition.
	ErrInvalidOpt = errors.New("conf: invalid option")
	// ErrInvalidValue indicates a value that cannot be coerced or is out of
	// bounds for its option.
	ErrInvalidValue = errors.New("conf: invalid value")
	// ErrRuleViolation indicates a value rejected by the option's rule.
	ErrRuleViolation = errors.New("conf: rule violation")
	// ErrNoEvaluator indicates a rule was declared with no evaluator available.
	ErrNoEvaluator = errors.New("conf: evaluator not configured")
)

// ValueError reports a value rejected for a specific option.
type ValueError struct {
	Group string
	Name  string
	Value any
	Err   error
}

func (e *ValueError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("conf: %s: value %s: %v", qualifiedName(e.Group, e.Name), describeValue(e.Value), e.Err)
}

func (e *ValueError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConfigFileValueError reports a file value that does not fit the option it
// was assigned to. It is raised lazily, when the option is read.
type ConfigFileValueError struct {
	Group string
	Name  string
	Raw   any
	Err   error
}

func (e *ConfigFileValueError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("conf: %s: file value %s: %v", qualifiedName(e.Group, e.Name), describeValue(e.Raw), e.Err)
}

func (e *ConfigFileValueError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Option string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("conf: %s evaluator %s option=%s: %v", e.Engine, describeExpression(e.Expr), e.Option, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func describeValue(value any) string {
	if s, ok := value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", value)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "conf:") {
		return err
	}
	return fmt.Errorf("conf: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, option string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Option == "" {
			evalErr.Option = option
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Option: option,
		Err:    err,
	}
}

// invalidValue wraps a coercion failure for opt. The detail quotes the value,
// so it is left out for secrets.
func invalidValue(opt Opt, err error) error {
	if opt.Secret {
		return fmt.Errorf("%w: secret does not fit %s option", ErrInvalidValue, opt.Type)
	}
	return fmt.Errorf("%w: %v", ErrInvalidValue, err)
}

func noSuchOpt(name, group string) error {
	return fmt.Errorf("%w: %s", ErrNoSuchOpt, qualifiedName(group, name))
}

func noSuchGroup(group string) error {
	return fmt.Errorf("%w: %s", ErrNoSuchGroup, groupLabel(group))
}
