package messaging

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	conf "github.com/goliatone/go-conf"
)

func newRegistry(t *testing.T) *conf.Registry {
	t.Helper()
	registry := conf.New()
	if err := Register(registry); err != nil {
		t.Fatalf("register messaging options: %v", err)
	}
	return registry
}

func TestRegisterDefaults(t *testing.T) {
	registry := newRegistry(t)

	cases := []struct {
		group string
		name  string
		want  any
	}{
		{group: "", name: "rpc_backend", want: "rabbit"},
		{group: "", name: "control_exchange", want: "openstack"},
		{group: "", name: "rpc_response_timeout", want: 60},
		{group: "", name: "transport_url", want: nil},
		{group: "", name: "use_pub_sub", want: true},
		{group: GroupRabbit, name: "rabbit_port", want: 5672},
		{group: GroupRabbit, name: "rabbit_hosts", want: []string{"localhost:5672"}},
		{group: GroupRabbit, name: "kombu_reconnect_delay", want: 1.0},
		{group: GroupQpid, name: "amqp_durable_queues", want: false},
		{group: GroupAMQP1, name: "server_request_prefix", want: "exclusive"},
		{group: GroupMatchmakerRedis, name: "port", want: 6379},
		{group: GroupNotifications, name: "topics", want: []string{"notifications"}},
		{group: GroupNotifications, name: "driver", want: []string{}},
	}
	for _, tc := range cases {
		got, err := registry.Get(tc.name, tc.group)
		if err != nil {
			t.Fatalf("get %s.%s: %v", tc.group, tc.name, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s.%s: want %#v, got %#v", tc.group, tc.name, tc.want, got)
		}
	}
}

func TestListOptsCoversEveryGroupOnce(t *testing.T) {
	seen := map[string]bool{}
	for _, entry := range ListOpts() {
		if seen[entry.Group] {
			t.Fatalf("group %q listed twice", entry.Group)
		}
		seen[entry.Group] = true
		if len(entry.Opts) == 0 {
			t.Fatalf("group %q has no options", entry.Group)
		}
	}
	for _, group := range []string{"", GroupRabbit, GroupQpid, GroupAMQP1, GroupMatchmakerRedis, GroupNotifications} {
		if !seen[group] {
			t.Fatalf("expected group %q in ListOpts", group)
		}
	}
}

func TestZMQPortRangeRule(t *testing.T) {
	registry := newRegistry(t)

	if err := registry.SetOverride("rpc_zmq_max_port", 50000, ""); err != nil {
		t.Fatalf("expected max port above min to pass: %v", err)
	}
	err := registry.SetOverride("rpc_zmq_max_port", 40000, "")
	if !errors.Is(err, conf.ErrRuleViolation) {
		t.Fatalf("expected rule violation, got %v", err)
	}
	if err := registry.SetOverride("rpc_zmq_min_port", 70000, ""); !errors.Is(err, conf.ErrInvalidValue) {
		t.Fatalf("expected port bound violation, got %v", err)
	}
}

func TestChoicesAreEnforced(t *testing.T) {
	registry := newRegistry(t)

	if err := registry.SetOverride("kombu_failover_strategy", "shuffle", GroupRabbit); err != nil {
		t.Fatalf("set valid choice: %v", err)
	}
	if err := registry.SetOverride("rabbit_login_method", "KERBEROS", GroupRabbit); !errors.Is(err, conf.ErrInvalidValue) {
		t.Fatalf("expected invalid choice error, got %v", err)
	}
}

func TestDeprecatedNamesInFiles(t *testing.T) {
	registry := newRegistry(t)
	path := filepath.Join(t.TempDir(), "messaging.conf")
	content := "[DEFAULT]\n" +
		"notification_driver = messagingv2\n" +
		"notification_topics = notifications, audit\n" +
		"rabbit_host = broker.internal\n" +
		"rabbit_durable_queues = true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := registry.LoadFile(path); err != nil {
		t.Fatalf("load file: %v", err)
	}

	driver, err := registry.StringSlice("driver", GroupNotifications)
	if err != nil || !reflect.DeepEqual(driver, []string{"messagingv2"}) {
		t.Fatalf("expected driver from notification_driver, got %v (%v)", driver, err)
	}
	topics, err := registry.StringSlice("topics", GroupNotifications)
	if err != nil || !reflect.DeepEqual(topics, []string{"notifications", "audit"}) {
		t.Fatalf("expected topics from notification_topics, got %v (%v)", topics, err)
	}
	host, err := registry.String("rabbit_host", GroupRabbit)
	if err != nil || host != "broker.internal" {
		t.Fatalf("expected rabbit_host from DEFAULT, got %q (%v)", host, err)
	}
	durable, err := registry.Bool("amqp_durable_queues", GroupRabbit)
	if err != nil || !durable {
		t.Fatalf("expected durable queues from rabbit_durable_queues, got %v (%v)", durable, err)
	}
	qpidDurable, err := registry.Bool("amqp_durable_queues", GroupQpid)
	if err != nil || !qpidDurable {
		t.Fatalf("expected qpid durable queues from the same legacy key, got %v (%v)", qpidDurable, err)
	}
}
