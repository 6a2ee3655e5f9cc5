package conf

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// WithLogger routes registry logs to logger. Without it the registry logs
// nowhere.
func WithLogger(logger logrus.FieldLogger) RegistryOption {
	return func(cfg *registryConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Logger returns the logger the registry writes to.
func (r *Registry) Logger() logrus.FieldLogger {
	return r.logger
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// ruleLogEvent describes a rule evaluation attempt.
type ruleLogEvent struct {
	Engine   string
	Expr     string
	Option   string
	Duration time.Duration
	Err      error
}

func (r *Registry) logRule(event ruleLogEvent) {
	entry := r.logger.WithFields(logrus.Fields{
		"action":   "rule",
		"engine":   event.Engine,
		"expr":     event.Expr,
		"option":   event.Option,
		"duration": event.Duration.String(),
	})
	if event.Err != nil {
		entry.WithError(event.Err).Debug("rule rejected value")
		return
	}
	entry.Debug("rule evaluated")
}

func maskValue(opt Opt, value any) any {
	if opt.Secret && value != nil {
		return "****"
	}
	return value
}
