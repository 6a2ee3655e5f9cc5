// Package messaging declares the option schemas owned by the messaging
// drivers, the RPC client, the transport and the notifier.
package messaging

import conf "github.com/goliatone/go-conf"

// Groups the messaging schemas register under.
const (
	GroupRabbit          = "oslo_messaging_rabbit"
	GroupQpid            = "oslo_messaging_qpid"
	GroupAMQP1           = "oslo_messaging_amqp"
	GroupMatchmakerRedis = "matchmaker_redis"
	GroupNotifications   = "oslo_messaging_notifications"
)

// inDefault marks an option that used to live in the ungrouped namespace
// under the same name.
var inDefault = conf.WithDeprecated(conf.DeprecatedOpt{Group: conf.DefaultGroup})

// RabbitOpts returns the RabbitMQ driver options.
func RabbitOpts() []conf.Opt {
	return []conf.Opt{
		conf.StrOpt("kombu_ssl_version", conf.WithDefault(""), inDefault,
			conf.WithHelp("SSL version to use (valid only if SSL enabled). Valid values are TLSv1 and SSLv23.")),
		conf.StrOpt("kombu_ssl_keyfile", conf.WithDefault(""), inDefault,
			conf.WithHelp("SSL key file (valid only if SSL enabled).")),
		conf.StrOpt("kombu_ssl_certfile", conf.WithDefault(""), inDefault,
			conf.WithHelp("SSL cert file (valid only if SSL enabled).")),
		conf.StrOpt("kombu_ssl_ca_certs", conf.WithDefault(""), inDefault,
			conf.WithHelp("SSL certification authority file (valid only if SSL enabled).")),
		conf.FloatOpt("kombu_reconnect_delay", conf.WithDefault(1.0), conf.WithMin(0), inDefault,
			conf.WithHelp("How long to wait before reconnecting in response to an AMQP consumer cancel notification.")),
		conf.IntOpt("kombu_missing_consumer_retry_timeout", conf.WithDefault(60),
			conf.WithDeprecatedName("kombu_reconnect_timeout"),
			conf.WithHelp("How long to wait a missing client before abandoning to send it its replies.")),
		conf.StrOpt("kombu_failover_strategy", conf.WithDefault("round-robin"),
			conf.WithChoices("round-robin", "shuffle"),
			conf.WithHelp("Determines how the next RabbitMQ node is chosen in case the one we are currently connected to becomes unavailable.")),
		conf.StrOpt("rabbit_host", conf.WithDefault("localhost"), inDefault,
			conf.WithHelp("The RabbitMQ broker address where a single node is used.")),
		conf.PortOpt("rabbit_port", conf.WithDefault(5672), inDefault,
			conf.WithHelp("The RabbitMQ broker port where a single node is used.")),
		conf.ListOpt("rabbit_hosts", conf.WithDefault([]string{"localhost:5672"}), inDefault,
			conf.WithHelp("RabbitMQ HA cluster host:port pairs.")),
		conf.BoolOpt("rabbit_use_ssl", conf.WithDefault(false), inDefault,
			conf.WithHelp("Connect over SSL for RabbitMQ.")),
		conf.StrOpt("rabbit_userid", conf.WithDefault("guest"), inDefault,
			conf.WithHelp("The RabbitMQ userid.")),
		conf.StrOpt("rabbit_password", conf.WithDefault("guest"), conf.WithSecret(), inDefault,
			conf.WithHelp("The RabbitMQ password.")),
		conf.StrOpt("rabbit_login_method", conf.WithDefault("AMQPLAIN"),
			conf.WithChoices("PLAIN", "AMQPLAIN", "RABBIT-CR-DEMO"), inDefault,
			conf.WithHelp("The RabbitMQ login method.")),
		conf.StrOpt("rabbit_virtual_host", conf.WithDefault("/"), inDefault,
			conf.WithHelp("The RabbitMQ virtual host.")),
		conf.IntOpt("rabbit_retry_interval", conf.WithDefault(1),
			conf.WithHelp("How frequently to retry connecting with RabbitMQ.")),
		conf.IntOpt("rabbit_retry_backoff", conf.WithDefault(2), inDefault,
			conf.WithHelp("How long to backoff for between retries when connecting to RabbitMQ.")),
		conf.IntOpt("rabbit_max_retries", conf.WithDefault(0), conf.WithMin(0), inDefault,
			conf.WithHelp("Maximum number of RabbitMQ connection retries. Default is 0 (infinite retry count).")),
		conf.BoolOpt("rabbit_ha_queues", conf.WithDefault(false), inDefault,
			conf.WithHelp("Use HA queues in RabbitMQ (x-ha-policy: all).")),
		conf.IntOpt("heartbeat_timeout_threshold", conf.WithDefault(60),
			conf.WithHelp("Number of seconds after which the Rabbit broker is considered down if heartbeat's keep-alive fails (0 disable the heartbeat).")),
		conf.IntOpt("heartbeat_rate", conf.WithDefault(2), conf.WithMin(1),
			conf.WithHelp("How often times during the heartbeat_timeout_threshold we check the heartbeat.")),
		conf.BoolOpt("fake_rabbit", conf.WithDefault(false), inDefault,
			conf.WithHelp("Deprecated, use rpc_backend=kombu+memory or rpc_backend=fake.")),
	}
}

// AMQPOpts returns the options shared by the AMQP 0-9-1 drivers.
func AMQPOpts() []conf.Opt {
	return []conf.Opt{
		conf.BoolOpt("amqp_durable_queues", conf.WithDefault(false),
			conf.WithDeprecated(
				conf.DeprecatedOpt{Name: "amqp_durable_queues", Group: conf.DefaultGroup},
				conf.DeprecatedOpt{Name: "rabbit_durable_queues", Group: conf.DefaultGroup},
			),
			conf.WithHelp("Use durable queues in AMQP.")),
		conf.BoolOpt("amqp_auto_delete", conf.WithDefault(false), inDefault,
			conf.WithHelp("Auto-delete queues in AMQP.")),
		conf.BoolOpt("send_single_reply", conf.WithDefault(false),
			conf.WithHelp("Send a single AMQP reply to call message.")),
	}
}

// AMQP1Opts returns the AMQP 1.0 protocol options.
func AMQP1Opts() []conf.Opt {
	return []conf.Opt{
		conf.StrOpt("server_request_prefix", conf.WithDefault("exclusive"),
			conf.WithHelp("address prefix used when sending to a specific server")),
		conf.StrOpt("broadcast_prefix", conf.WithDefault("broadcast"),
			conf.WithHelp("address prefix used when broadcasting to all servers")),
		conf.StrOpt("group_request_prefix", conf.WithDefault("unicast"),
			conf.WithHelp("address prefix when sending to any server in group")),
		conf.StrOpt("container_name",
			conf.WithHelp("Name for the AMQP container")),
		conf.IntOpt("idle_timeout", conf.WithDefault(0), conf.WithMin(0),
			conf.WithHelp("Timeout for inactive connections (in seconds)")),
		conf.BoolOpt("trace", conf.WithDefault(false),
			conf.WithHelp("Debug: dump AMQP frames to stdout")),
		conf.StrOpt("ssl_ca_file", conf.WithDefault(""),
			conf.WithHelp("CA certificate PEM file to verify server certificate")),
		conf.StrOpt("ssl_cert_file", conf.WithDefault(""),
			conf.WithHelp("Identifying certificate PEM file to present to clients")),
		conf.StrOpt("ssl_key_file", conf.WithDefault(""),
			conf.WithHelp("Private key PEM file used to sign cert_file certificate")),
		conf.StrOpt("ssl_key_password", conf.WithSecret(),
			conf.WithHelp("Password for decrypting ssl_key_file (if encrypted)")),
		conf.BoolOpt("allow_insecure_clients", conf.WithDefault(false),
			conf.WithHelp("Accept clients using either SSL or plain TCP")),
		conf.StrOpt("sasl_mechanisms", conf.WithDefault(""),
			conf.WithHelp("Space separated list of acceptable SASL mechanisms")),
		conf.StrOpt("sasl_config_dir", conf.WithDefault(""),
			conf.WithHelp("Path to directory that contains the SASL configuration")),
		conf.StrOpt("sasl_config_name", conf.WithDefault(""),
			conf.WithHelp("Name of configuration file (without .conf suffix)")),
		conf.StrOpt("username", conf.WithDefault(""),
			conf.WithHelp("User name for message broker authentication")),
		conf.StrOpt("password", conf.WithDefault(""), conf.WithSecret(),
			conf.WithHelp("Password for message broker authentication")),
	}
}

// ZMQOpts returns the ZeroMQ driver options. They live in the ungrouped
// namespace.
func ZMQOpts() []conf.Opt {
	return []conf.Opt{
		conf.StrOpt("rpc_zmq_bind_address", conf.WithDefault("*"),
			conf.WithHelp("ZeroMQ bind address. Should be a wildcard (*), an ethernet interface, or IP. The \"host\" option should point or resolve to this address.")),
		conf.StrOpt("rpc_zmq_matchmaker", conf.WithDefault("redis"),
			conf.WithChoices("redis", "dummy"),
			conf.WithHelp("MatchMaker driver.")),
		conf.StrOpt("rpc_zmq_concurrency", conf.WithDefault("eventlet"),
			conf.WithHelp("Type of concurrency used. Either \"native\" or \"eventlet\"")),
		conf.IntOpt("rpc_zmq_contexts", conf.WithDefault(1), conf.WithMin(1),
			conf.WithHelp("Number of ZeroMQ contexts, defaults to 1.")),
		conf.IntOpt("rpc_zmq_topic_backlog",
			conf.WithHelp("Maximum number of ingress messages to locally buffer per topic. Default is unlimited.")),
		conf.StrOpt("rpc_zmq_ipc_dir", conf.WithDefault("/var/run/openstack"),
			conf.WithHelp("Directory for holding IPC sockets.")),
		conf.StrOpt("rpc_zmq_host", conf.WithDefault("localhost"),
			conf.WithHelp("Name of this node. Must be a valid hostname, FQDN, or IP address. Must match \"host\" option, if running Nova.")),
		conf.IntOpt("rpc_cast_timeout", conf.WithDefault(30),
			conf.WithHelp("Seconds to wait before a cast expires (TTL). Only supported by impl_zmq.")),
		conf.IntOpt("rpc_poll_timeout", conf.WithDefault(1),
			conf.WithHelp("The default number of seconds that poll should wait. Poll raises timeout exception when timeout expired.")),
		conf.IntOpt("zmq_target_expire", conf.WithDefault(120),
			conf.WithHelp("Expiration timeout in seconds of a name service record about existing target ( < 0 means no timeout).")),
		conf.BoolOpt("use_pub_sub", conf.WithDefault(true),
			conf.WithHelp("Use PUB/SUB pattern for fanout methods. PUB/SUB always uses proxy.")),
		conf.PortOpt("rpc_zmq_min_port", conf.WithDefault(49152),
			conf.WithHelp("Minimal port number for random ports range.")),
		conf.IntOpt("rpc_zmq_max_port", conf.WithDefault(65536), conf.WithMin(1), conf.WithMax(65536),
			conf.WithRule("value > conf.rpc_zmq_min_port"),
			conf.WithHelp("Maximal port number for random ports range.")),
		conf.IntOpt("rpc_zmq_bind_port_retries", conf.WithDefault(100),
			conf.WithHelp("Number of retries to find free port number before fail with ZMQBindError.")),
	}
}

// MatchmakerRedisOpts returns the Redis matchmaker options.
func MatchmakerRedisOpts() []conf.Opt {
	return []conf.Opt{
		conf.StrOpt("host", conf.WithDefault("127.0.0.1"),
			conf.WithHelp("Host to locate redis.")),
		conf.PortOpt("port", conf.WithDefault(6379),
			conf.WithHelp("Use this port to connect to redis host.")),
		conf.StrOpt("password", conf.WithDefault(""), conf.WithSecret(),
			conf.WithHelp("Password for Redis server (optional).")),
		conf.ListOpt("sentinel_hosts", conf.WithDefault([]string{}),
			conf.WithHelp("List of Redis Sentinel hosts (fault tolerance mode) e.g. [host:port, host1:port ... ]")),
		conf.StrOpt("sentinel_group_name", conf.WithDefault("oslo-messaging-zeromq"),
			conf.WithHelp("Redis replica set name.")),
		conf.IntOpt("wait_timeout", conf.WithDefault(500),
			conf.WithHelp("Time in ms to wait between connection attempts.")),
		conf.IntOpt("check_timeout", conf.WithDefault(20000),
			conf.WithHelp("Time in ms to wait before the transaction is killed.")),
		conf.IntOpt("socket_timeout", conf.WithDefault(1000),
			conf.WithHelp("Timeout in ms on blocking socket operations")),
	}
}

// ClientOpts returns the RPC client options.
func ClientOpts() []conf.Opt {
	return []conf.Opt{
		conf.IntOpt("rpc_response_timeout", conf.WithDefault(60),
			conf.WithHelp("Seconds to wait for a response from a call.")),
	}
}

// TransportOpts returns the transport selection options.
func TransportOpts() []conf.Opt {
	return []conf.Opt{
		conf.StrOpt("transport_url", conf.WithSecret(),
			conf.WithHelp("A URL representing the messaging driver to use and its full configuration. If not set, we fall back to the rpc_backend option and driver specific configuration.")),
		conf.StrOpt("rpc_backend", conf.WithDefault("rabbit"),
			conf.WithHelp("The messaging driver to use, defaults to rabbit. Other drivers include amqp and zmq.")),
		conf.StrOpt("control_exchange", conf.WithDefault("openstack"),
			conf.WithHelp("The default exchange under which topics are scoped. May be overridden by an exchange name specified in the transport_url option.")),
	}
}

// NotifierOpts returns the notifier options. Each one was once an ungrouped
// notification_* option.
func NotifierOpts() []conf.Opt {
	return []conf.Opt{
		conf.MultiStrOpt("driver", conf.WithDefault([]string{}),
			conf.WithDeprecated(conf.DeprecatedOpt{Name: "notification_driver", Group: conf.DefaultGroup}),
			conf.WithHelp("The Drivers(s) to handle sending notifications. Possible values are messaging, messagingv2, routing, log, test, noop")),
		conf.StrOpt("transport_url", conf.WithSecret(),
			conf.WithDeprecated(conf.DeprecatedOpt{Name: "notification_transport_url", Group: conf.DefaultGroup}),
			conf.WithHelp("A URL representing the messaging driver to use for notifications. If not set, we fall back to the same configuration used for RPC.")),
		conf.ListOpt("topics", conf.WithDefault([]string{"notifications"}),
			conf.WithDeprecated(conf.DeprecatedOpt{Name: "notification_topics", Group: conf.DefaultGroup}),
			conf.WithHelp("AMQP topic used for OpenStack notifications.")),
	}
}

// GroupOpts pairs a group with the options registered under it.
type GroupOpts struct {
	Group string
	Opts  []conf.Opt
}

// ListOpts returns every messaging schema keyed by the group it belongs to,
// in a stable order. The ungrouped namespace is reported as "".
func ListOpts() []GroupOpts {
	return []GroupOpts{
		{Group: "", Opts: concat(ZMQOpts(), ClientOpts(), TransportOpts())},
		{Group: GroupAMQP1, Opts: AMQP1Opts()},
		{Group: GroupNotifications, Opts: NotifierOpts()},
		{Group: GroupRabbit, Opts: concat(RabbitOpts(), AMQPOpts())},
		{Group: GroupQpid, Opts: AMQPOpts()},
		{Group: GroupMatchmakerRedis, Opts: MatchmakerRedisOpts()},
	}
}

// Register registers every schema from ListOpts into r.
func Register(r *conf.Registry) error {
	for _, entry := range ListOpts() {
		if err := r.RegisterOpts(entry.Opts, entry.Group); err != nil {
			return err
		}
	}
	return nil
}

func concat(groups ...[]conf.Opt) []conf.Opt {
	var out []conf.Opt
	for _, opts := range groups {
		out = append(out, opts...)
	}
	return out
}
