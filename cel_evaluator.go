package conf

import (
	"fmt"
	"sync"

	celgo "github.com/google/cel-go/cel"
)

type celEvaluator struct {
	once   sync.Once
	env    *celgo.Env
	envErr error
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. Rules are type
// checked at compile time, so a rule referencing an unknown variable fails
// when the option is registered.
func NewCELEvaluator() Evaluator {
	return &celEvaluator{}
}

func (e *celEvaluator) environment() (*celgo.Env, error) {
	e.once.Do(func() {
		e.env, e.envErr = celgo.NewEnv(
			celgo.Variable("value", celgo.DynType),
			celgo.Variable("name", celgo.StringType),
			celgo.Variable("group", celgo.StringType),
			celgo.Variable("conf", celgo.MapType(celgo.StringType, celgo.DynType)),
		)
	})
	return e.env, e.envErr
}

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	env, err := e.environment()
	if err != nil {
		return nil, wrapEvaluatorError("cel", err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, "", issues.Err())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, "", err)
	}
	return &celCompiledRule{program: program, expression: expression}, nil
}

type celCompiledRule struct {
	program    celgo.Program
	expression string
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	out, _, err := r.program.Eval(ctx.bindings())
	if err != nil {
		return nil, wrapEvaluationError("cel", r.expression, ctx.optionLabel(), err)
	}
	return out.Value(), nil
}
