package conf

import "fmt"

// RuleContext carries the inputs an option rule is evaluated against.
type RuleContext struct {
	Value any
	Name  string
	Group string
	Conf  map[string]any
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Conf == nil {
		ctx.Conf = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) optionLabel() string {
	return qualifiedName(ctx.Group, ctx.Name)
}

// bindings returns the variables every engine exposes to a rule.
func (ctx RuleContext) bindings() map[string]any {
	return map[string]any{
		"value": ctx.Value,
		"name":  ctx.Name,
		"group": groupLabel(ctx.Group),
		"conf":  ctx.Conf,
	}
}

// Evaluator executes rule expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable rule program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch e.(type) {
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if name, ok := e.(interface{ engineName() string }); ok {
			return name.engineName()
		}
		return "custom"
	}
}

// checkRule runs rule and requires a boolean true result.
func checkRule(engine string, rule CompiledRule, expr string, ctx RuleContext) error {
	if rule == nil {
		return nil
	}
	ctx = ctx.withDefaults()
	result, err := rule.Evaluate(ctx)
	if err != nil {
		return wrapEvaluationError(engine, expr, ctx.optionLabel(), err)
	}
	ok, isBool := result.(bool)
	if !isBool {
		return wrapEvaluationError(engine, expr, ctx.optionLabel(),
			fmt.Errorf("rule must return a boolean, got %T", result))
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrRuleViolation, expr)
	}
	return nil
}
