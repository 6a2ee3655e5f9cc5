package conf

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-conf/layering"
	"github.com/goliatone/go-conf/pkg/activity"
)

// DefaultGroup names the ungrouped namespace in files and messages. Passing
// it as a group is the same as passing "".
const DefaultGroup = "DEFAULT"

// Registry holds option definitions organised in groups together with the
// values layered on top of their defaults.
type Registry struct {
	mu        sync.RWMutex
	groups    map[string]*optGroup
	overrides map[string]map[string]any
	defaults  map[string]map[string]any
	file      map[string]map[string]any

	setOverride OverrideFunc
	evaluator   Evaluator
	logger      logrus.FieldLogger
	emitter     *activity.Emitter
}

type optGroup struct {
	name    string
	order   []string
	entries map[string]*optEntry
}

type optEntry struct {
	opt          Opt
	defaultValue any
	rule         CompiledRule
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	evaluator      Evaluator
	functions      *FunctionRegistry
	logger         logrus.FieldLogger
	activityHooks  activity.Hooks
	activityConfig *activity.Config
}

// WithRuleEvaluator selects the engine used for option rules. A nil
// evaluator keeps the expr default.
func WithRuleEvaluator(e Evaluator) RegistryOption {
	return func(cfg *registryConfig) {
		if e != nil {
			cfg.evaluator = e
		}
	}
}

// WithActivityHooks attaches hooks notified on every registry change. Nil
// entries are dropped.
func WithActivityHooks(hooks activity.Hooks) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.activityHooks = append(cfg.activityHooks, hooks...)
	}
}

// WithActivityConfig overrides the emitter configuration. Without it, hooks
// are enabled on the default channel.
func WithActivityConfig(activityCfg activity.Config) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.activityConfig = &activityCfg
	}
}

// New constructs an empty Registry.
func New(opts ...RegistryOption) *Registry {
	cfg := registryConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	activityCfg := activity.Config{Enabled: true}
	if cfg.activityConfig != nil {
		activityCfg = *cfg.activityConfig
	}
	evaluator := cfg.evaluator
	if evaluator == nil {
		evaluator = NewExprEvaluator(ExprWithFunctionRegistry(cfg.functions))
	}
	logger := cfg.logger
	if logger == nil {
		logger = discardLogger()
	}

	r := &Registry{
		groups:    map[string]*optGroup{},
		overrides: map[string]map[string]any{},
		defaults:  map[string]map[string]any{},
		file:      map[string]map[string]any{},
		evaluator: evaluator,
		logger:    logger,
		emitter:   activity.NewEmitter(cfg.activityHooks, activityCfg),
	}
	r.setOverride = r.storeOverride
	return r
}

// RegisterOpt registers a single option under group.
func (r *Registry) RegisterOpt(opt Opt, group string) error {
	return r.RegisterOpts([]Opt{opt}, group)
}

// RegisterOpts registers opts under group. Registering an identical
// definition again is a no-op; a differing definition for a registered name
// fails with ErrDuplicateOpt and leaves the group unchanged.
func (r *Registry) RegisterOpts(opts []Opt, group string) error {
	group = normalizeGroup(group)

	prepared := make([]*optEntry, 0, len(opts))
	for _, opt := range opts {
		entry, err := r.prepareEntry(opt, group)
		if err != nil {
			return err
		}
		prepared = append(prepared, entry)
	}

	r.mu.Lock()
	g := r.groups[group]
	if g == nil {
		g = &optGroup{name: group, entries: map[string]*optEntry{}}
	}
	added := make([]string, 0, len(prepared))
	pending := map[string]*optEntry{}
	for _, entry := range prepared {
		name := entry.opt.Name
		existing := g.entries[name]
		if existing == nil {
			existing = pending[name]
		}
		if existing != nil {
			if existing.opt.equal(entry.opt) {
				continue
			}
			r.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrDuplicateOpt, qualifiedName(group, name))
		}
		pending[name] = entry
		added = append(added, name)
	}
	for _, name := range added {
		g.entries[name] = pending[name]
		g.order = append(g.order, name)
	}
	r.groups[group] = g
	r.mu.Unlock()

	if len(added) == 0 {
		return nil
	}
	r.logger.WithFields(logrus.Fields{
		"action":  "register_opts",
		"group":   groupLabel(group),
		"options": added,
	}).Debug("options registered")
	r.emit(activity.BuildOptsRegisteredEvent(group, added))
	return nil
}

func (r *Registry) prepareEntry(opt Opt, group string) (*optEntry, error) {
	opt = opt.clone()
	if err := opt.validateDefinition(); err != nil {
		return nil, err
	}
	defaultValue, err := opt.Coerce(opt.Default)
	if err != nil {
		return nil, fmt.Errorf("%w: default for %s: %v", ErrInvalidOpt, qualifiedName(group, opt.Name), err)
	}
	entry := &optEntry{opt: opt, defaultValue: defaultValue}
	if opt.Rule != "" {
		rule, err := r.evaluator.Compile(opt.Rule)
		if err != nil {
			return nil, fmt.Errorf("%w: rule for %s: %w", ErrInvalidOpt, qualifiedName(group, opt.Name), err)
		}
		entry.rule = rule
	}
	return entry, nil
}

// Has reports whether name is registered in group.
func (r *Registry) Has(name, group string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, err := r.lookupLocked(name, normalizeGroup(group))
	return err == nil
}

// Groups returns the registered group names sorted, with the ungrouped
// namespace reported as DefaultGroup first when it holds options.
func (r *Registry) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.groups))
	hasDefault := false
	for name := range r.groups {
		if name == "" {
			hasDefault = true
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if hasDefault {
		names = append([]string{DefaultGroup}, names...)
	}
	return names
}

// Opts returns copies of the options registered in group, in registration
// order.
func (r *Registry) Opts(group string) ([]Opt, error) {
	group = normalizeGroup(group)
	r.mu.RLock()
	defer r.mu.RUnlock()
	g := r.groups[group]
	if g == nil {
		return nil, noSuchGroup(group)
	}
	out := make([]Opt, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.entries[name].opt.clone())
	}
	return out, nil
}

// Get returns the effective value of name in group. A file value that does
// not fit the option, or breaks its rule, is reported as a
// ConfigFileValueError unless an override masks it.
func (r *Registry) Get(name, group string) (any, error) {
	group = normalizeGroup(group)
	r.mu.RLock()
	entry, err := r.lookupLocked(name, group)
	if err != nil {
		r.mu.RUnlock()
		return nil, err
	}
	chain, rule, err := r.chainLocked(entry, group)
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if err := r.checkFileRule(rule); err != nil {
		return nil, err
	}
	value, _, _ := chain.Lookup(name)
	return value, nil
}

// GroupValues returns the effective values of every option in group.
func (r *Registry) GroupValues(group string) (map[string]any, error) {
	group = normalizeGroup(group)
	r.mu.RLock()
	if r.groups[group] == nil {
		r.mu.RUnlock()
		return nil, noSuchGroup(group)
	}
	values, rules, err := r.groupValuesLocked(group)
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	for _, rule := range rules {
		if err := r.checkFileRule(rule); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// Reset drops every override, default override and file value. Registered
// options and installed override middleware are kept.
func (r *Registry) Reset() {
	r.mu.Lock()
	cleared := countValues(r.overrides) + countValues(r.defaults) + countValues(r.file)
	r.overrides = map[string]map[string]any{}
	r.defaults = map[string]map[string]any{}
	r.file = map[string]map[string]any{}
	r.mu.Unlock()

	r.logger.WithFields(logrus.Fields{
		"action":  "reset",
		"cleared": cleared,
	}).Debug("registry reset")
	r.emit(activity.BuildResetEvent(cleared))
}

func (r *Registry) lookupLocked(name, group string) (*optEntry, error) {
	g := r.groups[group]
	if g == nil {
		return nil, noSuchGroup(group)
	}
	entry := g.entries[name]
	if entry == nil {
		return nil, noSuchOpt(name, group)
	}
	return entry, nil
}

// fileRule is a rule check owed by an effective file value. It runs once the
// registry lock is released.
type fileRule struct {
	entry *optEntry
	group string
	raw   any
	value any
	conf  map[string]any
}

// layersLocked assembles the source layers holding a value for entry. A file
// value that fails to coerce is an error only when no override masks it. The
// returned hit is the file value when it is the effective one.
func (r *Registry) layersLocked(entry *optEntry, group string) (layering.Chain, *fileHit, error) {
	name := entry.opt.Name
	layers := []layering.Layer{
		{Source: layering.SourceDefault, Values: map[string]any{name: entry.defaultValue}},
	}
	if value, ok := r.defaults[group][name]; ok {
		layers = append(layers, layering.Layer{Source: layering.SourceDefaultOverride, Values: map[string]any{name: value}})
	}
	override, overridden := r.overrides[group][name]
	hit, err := r.fileValueLocked(entry, group)
	if err != nil && !overridden {
		return layering.Chain{}, nil, err
	}
	if hit != nil {
		layers = append(layers, layering.Layer{Source: layering.SourceFile, Values: map[string]any{name: hit.value}})
	}
	if overridden {
		layers = append(layers, layering.Layer{Source: layering.SourceOverride, Values: map[string]any{name: override}})
		hit = nil
	}
	return layering.NewChain(layers...), hit, nil
}

// chainLocked is layersLocked plus the rule check the effective file value
// still owes, if any.
func (r *Registry) chainLocked(entry *optEntry, group string) (layering.Chain, *fileRule, error) {
	chain, hit, err := r.layersLocked(entry, group)
	if err != nil || hit == nil || entry.rule == nil || hit.value == nil {
		return chain, nil, err
	}
	return chain, &fileRule{
		entry: entry,
		group: group,
		raw:   hit.raw,
		value: hit.value,
		conf:  r.ruleConfLocked(group),
	}, nil
}

func (r *Registry) groupValuesLocked(group string) (map[string]any, []*fileRule, error) {
	g := r.groups[group]
	values := make(map[string]any, len(g.order))
	var rules []*fileRule
	for _, name := range g.order {
		chain, rule, err := r.chainLocked(g.entries[name], group)
		if err != nil {
			return nil, nil, err
		}
		if rule != nil {
			rules = append(rules, rule)
		}
		value, _, _ := chain.Lookup(name)
		values[name] = value
	}
	return values, rules, nil
}

// checkFileRule runs rule without holding r.mu.
func (r *Registry) checkFileRule(rule *fileRule) error {
	if rule == nil {
		return nil
	}
	opt := rule.entry.opt
	ctx := RuleContext{Value: rule.value, Name: opt.Name, Group: rule.group, Conf: rule.conf}
	if err := r.runRule(rule.entry, ctx); err != nil {
		return &ConfigFileValueError{Group: rule.group, Name: opt.Name, Raw: maskValue(opt, rule.raw), Err: err}
	}
	return nil
}

func (r *Registry) emit(event activity.Event) {
	if !r.emitter.Enabled() {
		return
	}
	if err := r.emitter.Emit(context.Background(), event); err != nil {
		r.logger.WithFields(logrus.Fields{
			"action": "activity",
			"verb":   event.Verb,
		}).WithError(err).Warn("activity hook failed")
	}
}

func normalizeGroup(group string) string {
	group = strings.TrimSpace(group)
	if strings.EqualFold(group, DefaultGroup) {
		return ""
	}
	return group
}

func groupLabel(group string) string {
	if group == "" {
		return DefaultGroup
	}
	return group
}

func qualifiedName(group, name string) string {
	return groupLabel(group) + "." + name
}

func setValue(store map[string]map[string]any, group, name string, value any) {
	values := store[group]
	if values == nil {
		values = map[string]any{}
		store[group] = values
	}
	values[name] = value
}

func countValues(store map[string]map[string]any) int {
	total := 0
	for _, values := range store {
		total += len(values)
	}
	return total
}
