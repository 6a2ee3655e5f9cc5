//go:build !js_eval

package conf

// NewJSEvaluator is unavailable without the js_eval build tag and returns nil.
func NewJSEvaluator() Evaluator {
	return nil
}

// JSEvaluatorAvailable reports whether the binary was built with js_eval.
func JSEvaluatorAvailable() bool {
	return false
}
