package conf

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-conf/layering"
	"github.com/goliatone/go-conf/pkg/activity"
)

// OverrideFunc stores an override for name in group.
type OverrideFunc func(name string, value any, group string) error

// OverrideMiddleware wraps an OverrideFunc. Middleware may rewrite the
// arguments, short-circuit, or delegate to next.
type OverrideMiddleware func(next OverrideFunc) OverrideFunc

// WrapSetOverride installs middleware around SetOverride. The most recently
// installed middleware runs first. Middleware survives Reset.
func (r *Registry) WrapSetOverride(middleware OverrideMiddleware) {
	if middleware == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if next := middleware(r.setOverride); next != nil {
		r.setOverride = next
	}
}

// SetOverride forces name in group to value until it is cleared or the
// registry is reset. The value is coerced to the option type and checked
// against its bounds and rule.
func (r *Registry) SetOverride(name string, value any, group string) error {
	r.mu.RLock()
	set := r.setOverride
	r.mu.RUnlock()
	return set(name, value, group)
}

// ClearOverride removes the override for name in group, if any.
func (r *Registry) ClearOverride(name, group string) error {
	return r.clearValue(layering.SourceOverride, name, group, activity.BuildOverrideClearedEvent)
}

// SetDefault replaces the default of name in group at runtime. File values
// and overrides still take precedence.
func (r *Registry) SetDefault(name string, value any, group string) error {
	return r.storeValue(layering.SourceDefaultOverride, name, value, group, activity.BuildDefaultSetEvent)
}

// ClearDefault restores the declared default of name in group.
func (r *Registry) ClearDefault(name, group string) error {
	return r.clearValue(layering.SourceDefaultOverride, name, group, activity.BuildDefaultClearedEvent)
}

func (r *Registry) storeOverride(name string, value any, group string) error {
	return r.storeValue(layering.SourceOverride, name, value, group, activity.BuildOverrideSetEvent)
}

func (r *Registry) storeValue(source layering.Source, name string, value any, group string, build func(activity.ChangeInput) activity.Event) error {
	group = normalizeGroup(group)

	r.mu.RLock()
	entry, err := r.lookupLocked(name, group)
	if err != nil {
		r.mu.RUnlock()
		return err
	}
	coerced, err := entry.opt.Coerce(value)
	if err != nil {
		r.mu.RUnlock()
		return &ValueError{Group: group, Name: name, Value: maskValue(entry.opt, value), Err: invalidValue(entry.opt, err)}
	}
	var conf map[string]any
	if entry.rule != nil && coerced != nil {
		conf = r.ruleConfLocked(group)
	}
	r.mu.RUnlock()

	if conf != nil {
		ctx := RuleContext{Value: coerced, Name: name, Group: group, Conf: conf}
		if err := r.runRule(entry, ctx); err != nil {
			return &ValueError{Group: group, Name: name, Value: maskValue(entry.opt, value), Err: err}
		}
	}

	r.mu.Lock()
	old := r.currentLocked(entry, group)
	setValue(r.storeLocked(source), group, name, coerced)
	r.mu.Unlock()

	event := build(activity.ChangeInput{
		Group:    group,
		Name:     name,
		OldValue: old,
		NewValue: coerced,
		Secret:   entry.opt.Secret,
	})
	r.logger.WithFields(logrus.Fields{
		"action": event.Verb,
		"option": qualifiedName(group, name),
		"value":  maskValue(entry.opt, coerced),
	}).Debug("option value set")
	r.emit(event)
	return nil
}

// runRule evaluates the rule of entry against ctx. Callers must not hold r.mu,
// so rule functions are free to read the registry. ctx.Conf is a snapshot
// taken before the call.
func (r *Registry) runRule(entry *optEntry, ctx RuleContext) error {
	engine := evaluatorEngineName(r.evaluator)
	started := time.Now()
	err := checkRule(engine, entry.rule, entry.opt.Rule, ctx)
	r.logRule(ruleLogEvent{
		Engine:   engine,
		Expr:     entry.opt.Rule,
		Option:   qualifiedName(ctx.Group, ctx.Name),
		Duration: time.Since(started),
		Err:      err,
	})
	return err
}

func (r *Registry) clearValue(source layering.Source, name, group string, build func(activity.ChangeInput) activity.Event) error {
	group = normalizeGroup(group)

	r.mu.Lock()
	store := r.storeLocked(source)
	entry, err := r.lookupLocked(name, group)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	old, ok := store[group][name]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	delete(store[group], name)
	if len(store[group]) == 0 {
		delete(store, group)
	}
	r.mu.Unlock()

	event := build(activity.ChangeInput{
		Group:    group,
		Name:     name,
		OldValue: old,
		Secret:   entry.opt.Secret,
	})
	r.logger.WithFields(logrus.Fields{
		"action": event.Verb,
		"option": qualifiedName(group, name),
	}).Debug("option value cleared")
	r.emit(event)
	return nil
}

// storeLocked returns the live map holding values of the runtime layer source.
func (r *Registry) storeLocked(source layering.Source) map[string]map[string]any {
	if source == layering.SourceDefaultOverride {
		return r.defaults
	}
	return r.overrides
}

// currentLocked returns the effective value of entry without running its
// rule. A file value that fails to coerce reads as nil.
func (r *Registry) currentLocked(entry *optEntry, group string) any {
	chain, _, err := r.layersLocked(entry, group)
	if err != nil {
		return nil
	}
	value, _, _ := chain.Lookup(entry.opt.Name)
	return value
}

// ruleConfLocked returns the effective values of group as seen by rules.
func (r *Registry) ruleConfLocked(group string) map[string]any {
	g := r.groups[group]
	conf := make(map[string]any, len(g.order))
	for _, name := range g.order {
		conf[name] = r.currentLocked(g.entries[name], group)
	}
	return conf
}
