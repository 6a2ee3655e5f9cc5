// Package conffixture tweaks the messaging configuration for unit tests.
//
// Rather than referencing the messaging options directly, tests use this
// fixture to query and override them:
//
//	fixture := conffixture.Use(t, registry)
//	if err := fixture.SetTransportDriver("fake"); err != nil {
//		t.Fatal(err)
//	}
//
// The registry is reset when the test ends.
package conffixture

import (
	"fmt"
	"testing"

	conf "github.com/goliatone/go-conf"
	"github.com/goliatone/go-conf/pkg/messaging"
)

const (
	optTransportDriver = "rpc_backend"
	optResponseTimeout = "rpc_response_timeout"
)

// binding names a schema and the group it is registered under.
type binding struct {
	source string
	opts   func() []conf.Opt
	group  string
}

var bindings = []binding{
	{source: "messaging.RabbitOpts", opts: messaging.RabbitOpts, group: messaging.GroupRabbit},
	{source: "messaging.AMQPOpts", opts: messaging.AMQPOpts, group: messaging.GroupRabbit},
	{source: "messaging.AMQPOpts", opts: messaging.AMQPOpts, group: messaging.GroupQpid},
	{source: "messaging.AMQP1Opts", opts: messaging.AMQP1Opts, group: messaging.GroupAMQP1},
	{source: "messaging.ZMQOpts", opts: messaging.ZMQOpts},
	{source: "messaging.MatchmakerRedisOpts", opts: messaging.MatchmakerRedisOpts, group: messaging.GroupMatchmakerRedis},
	{source: "messaging.ClientOpts", opts: messaging.ClientOpts},
	{source: "messaging.TransportOpts", opts: messaging.TransportOpts},
	{source: "messaging.NotifierOpts", opts: messaging.NotifierOpts, group: messaging.GroupNotifications},
}

// ConfFixture binds the messaging schemas into a registry for the duration
// of a test.
type ConfFixture struct {
	conf *conf.Registry
}

// New registers the messaging schemas into registry and installs the legacy
// notification key rewrite on its override setter. The rewrite stays on the
// registry after the fixture is gone.
func New(registry *conf.Registry) (*ConfFixture, error) {
	if registry == nil {
		return nil, fmt.Errorf("conffixture: registry is nil")
	}
	for _, b := range bindings {
		if err := registry.RegisterOpts(b.opts(), b.group); err != nil {
			return nil, fmt.Errorf("conffixture: register %s in %s: %w", b.source, groupLabel(b.group), err)
		}
	}
	registry.WrapSetOverride(LegacyRewrite(registry.Logger()))
	return &ConfFixture{conf: registry}, nil
}

// Activate resets the registry when tb and its subtests complete.
func (f *ConfFixture) Activate(tb testing.TB) {
	tb.Helper()
	tb.Cleanup(f.conf.Reset)
}

// Use constructs and activates a fixture, failing tb when construction fails.
func Use(tb testing.TB, registry *conf.Registry) *ConfFixture {
	tb.Helper()
	fixture, err := New(registry)
	if err != nil {
		tb.Fatalf("conffixture: %v", err)
	}
	fixture.Activate(tb)
	return fixture
}

// Conf returns the registry the fixture is bound to.
func (f *ConfFixture) Conf() *conf.Registry {
	return f.conf
}

// TransportDriver returns the transport driver, for example "rabbit", "amqp"
// or "fake".
func (f *ConfFixture) TransportDriver() string {
	value, err := f.conf.String(optTransportDriver, "")
	if err != nil {
		f.conf.Logger().WithError(err).Warn("conffixture: read transport driver")
	}
	return value
}

// SetTransportDriver overrides the transport driver.
func (f *ConfFixture) SetTransportDriver(driver string) error {
	return f.conf.SetOverride(optTransportDriver, driver, "")
}

// ResponseTimeout returns the default number of seconds to wait for a
// response from a call.
func (f *ConfFixture) ResponseTimeout() int {
	value, err := f.conf.Int(optResponseTimeout, "")
	if err != nil {
		f.conf.Logger().WithError(err).Warn("conffixture: read response timeout")
	}
	return value
}

// SetResponseTimeout overrides the response timeout, in seconds.
func (f *ConfFixture) SetResponseTimeout(seconds int) error {
	return f.conf.SetOverride(optResponseTimeout, seconds, "")
}

func groupLabel(group string) string {
	if group == "" {
		return conf.DefaultGroup
	}
	return group
}
