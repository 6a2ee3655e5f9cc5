//go:build js_eval

package conf

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsEvaluator struct{}

// NewJSEvaluator constructs an Evaluator backed by goja. Rules are plain
// JavaScript expressions, e.g. `value.length > 0`.
func NewJSEvaluator() Evaluator {
	return &jsEvaluator{}
}

// JSEvaluatorAvailable reports whether the binary was built with js_eval.
func JSEvaluatorAvailable() bool {
	return true
}

func (e *jsEvaluator) engineName() string {
	return "js"
}

func (e *jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *jsEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", fmt.Errorf("expression must not be empty"))
	}
	program, err := goja.Compile("", wrapExpression(expression), false)
	if err != nil {
		return nil, wrapEvaluationError("js", expression, "", err)
	}
	return &jsCompiledRule{program: program, expression: expression}, nil
}

func wrapExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiledRule struct {
	program    *goja.Program
	expression string
}

// Evaluate runs the program in a fresh runtime; goja runtimes are not safe
// for concurrent use.
func (r *jsCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	vm := goja.New()
	for key, value := range ctx.bindings() {
		if err := vm.Set(key, value); err != nil {
			return nil, wrapEvaluationError("js", r.expression, ctx.optionLabel(), err)
		}
	}
	value, err := vm.RunProgram(r.program)
	if err != nil {
		return nil, wrapEvaluationError("js", r.expression, ctx.optionLabel(), err)
	}
	return value.Export(), nil
}
