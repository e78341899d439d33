package logbook

import "github.com/logbook-io/logbook/pkg/util"

// ConfigSpec defines all configuration items for logbook
//
//nolint:gochecknoglobals // global config spec is intentional
var ConfigSpec = util.ConfigSpec{
	// General
	"log-level": util.ConfigVarSpec{
		Help:         "Log level (error|warn|info|debug)",
		DefaultValue: "info",
		EnvVar:       "LOGBOOK_LOG_LEVEL",
	},

	// HTTP server
	"server.listen-address": util.ConfigVarSpec{
		Help:         "Address the HTTP server listens on",
		DefaultValue: "0.0.0.0",
		EnvVar:       "LOGBOOK_SERVER_LISTEN_ADDRESS",
	},
	"server.listen-port": util.ConfigVarSpec{
		Help:         "Port the HTTP server listens on",
		DefaultValue: 8080,
		EnvVar:       "LOGBOOK_SERVER_LISTEN_PORT",
	},
	"server.shutdown-timeout-seconds": util.ConfigVarSpec{
		Help:         "Graceful shutdown timeout in seconds",
		DefaultValue: 10,
		EnvVar:       "LOGBOOK_SERVER_SHUTDOWN_TIMEOUT_SECONDS",
	},

	// Record file store
	"store.path": util.ConfigVarSpec{
		Help:         "Path to the access log record file",
		DefaultValue: "logbook.csv",
		EnvVar:       "LOGBOOK_STORE_PATH",
	},

	// Metrics server
	"metrics-server.enabled": util.ConfigVarSpec{
		Help:         "Enable the Prometheus metrics server",
		DefaultValue: false,
		EnvVar:       "LOGBOOK_METRICS_SERVER_ENABLED",
	},
	"metrics-server.listen-address": util.ConfigVarSpec{
		Help:         "Address the metrics server listens on",
		DefaultValue: "0.0.0.0",
		EnvVar:       "LOGBOOK_METRICS_SERVER_LISTEN_ADDRESS",
	},
	"metrics-server.listen-port": util.ConfigVarSpec{
		Help:         "Port the metrics server listens on",
		DefaultValue: 9090,
		EnvVar:       "LOGBOOK_METRICS_SERVER_LISTEN_PORT",
	},

	// ClickHouse mirror
	"mirror.enabled": util.ConfigVarSpec{
		Help:         "Mirror appended entries to ClickHouse",
		DefaultValue: false,
		EnvVar:       "LOGBOOK_MIRROR_ENABLED",
	},
	"mirror.buffer-size": util.ConfigVarSpec{
		Help:         "Capacity of the mirror entry buffer",
		DefaultValue: 1024,
		EnvVar:       "LOGBOOK_MIRROR_BUFFER_SIZE",
	},
	"mirror.count-threshold": util.ConfigVarSpec{
		Help:         "Number of buffered entries that triggers a mirror flush",
		DefaultValue: 100,
		EnvVar:       "LOGBOOK_MIRROR_COUNT_THRESHOLD",
	},
	"mirror.time-threshold-seconds": util.ConfigVarSpec{
		Help:         "Age in seconds after which buffered entries are flushed regardless of count",
		DefaultValue: 5,
		EnvVar:       "LOGBOOK_MIRROR_TIME_THRESHOLD_SECONDS",
	},

	// ClickHouse connection
	"clickhouse.url": util.ConfigVarSpec{
		Help:         "ClickHouse connection URL (comma-separated for multiple hosts)",
		DefaultValue: "localhost:9000",
		EnvVar:       "LOGBOOK_CLICKHOUSE_URL",
	},
	"clickhouse.username": util.ConfigVarSpec{
		Help:         "ClickHouse username",
		DefaultValue: "default",
		EnvVar:       "LOGBOOK_CLICKHOUSE_USERNAME",
	},
	"clickhouse.password": util.ConfigVarSpec{
		Help:         "ClickHouse password",
		DefaultValue: "",
		EnvVar:       "LOGBOOK_CLICKHOUSE_PASSWORD",
	},
	"clickhouse.database": util.ConfigVarSpec{
		Help:         "ClickHouse database for mirrored entries",
		DefaultValue: "logbook",
		EnvVar:       "LOGBOOK_CLICKHOUSE_DATABASE",
	},
	"clickhouse.timeout-seconds": util.ConfigVarSpec{
		Help:         "ClickHouse query timeout in seconds",
		DefaultValue: 30,
		EnvVar:       "LOGBOOK_CLICKHOUSE_TIMEOUT_SECONDS",
	},
	"clickhouse.max-retries": util.ConfigVarSpec{
		Help:         "Maximum connection retry attempts",
		DefaultValue: 3,
		EnvVar:       "LOGBOOK_CLICKHOUSE_MAX_RETRIES",
	},
	"clickhouse.initial-backoff-seconds": util.ConfigVarSpec{
		Help:         "Initial connection retry backoff in seconds",
		DefaultValue: 1,
		EnvVar:       "LOGBOOK_CLICKHOUSE_INITIAL_BACKOFF_SECONDS",
	},
	"clickhouse.max-backoff-seconds": util.ConfigVarSpec{
		Help:         "Maximum connection retry backoff in seconds",
		DefaultValue: 30,
		EnvVar:       "LOGBOOK_CLICKHOUSE_MAX_BACKOFF_SECONDS",
	},
}
