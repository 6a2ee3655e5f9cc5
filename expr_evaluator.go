package conf

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// exprEvaluator executes option rules using github.com/expr-lang/expr. It is
// the default engine.
type exprEvaluator struct {
	functions *FunctionRegistry
}

// ExprEvaluatorOption configures the expr evaluator.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithFunctionRegistry makes the functions in registry callable from
// rules.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.functions = registry
	}
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Evaluate compiles and runs expression against ctx.
func (e *exprEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

// Compile returns a rule that can be evaluated repeatedly.
func (e *exprEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("expression must not be empty"))
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range e.functions.Names() {
		name := name
		options = append(options, exprlang.Function(name, func(params ...any) (any, error) {
			return e.functions.Call(name, params...)
		}))
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, wrapEvaluationError("expr", expression, "", err)
	}
	return &exprCompiledRule{program: program, expression: expression}, nil
}

type exprCompiledRule struct {
	program    *exprvm.Program
	expression string
}

func (r *exprCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	result, err := exprlang.Run(r.program, ctx.bindings())
	if err != nil {
		return nil, wrapEvaluationError("expr", r.expression, ctx.optionLabel(), err)
	}
	return result, nil
}
