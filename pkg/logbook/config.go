package logbook

import (
	"fmt"

	"github.com/logbook-io/logbook/pkg/util"
)

const (
	// MaxMirrorBatch is the hard limit on mirror batch size to prevent OOM
	MaxMirrorBatch = 100_000
)

// ValidateConfig performs additional validation beyond required field checks
func ValidateConfig() error {
	logLevel := ConfigSpec.GetString("log-level")
	validLevels := map[string]bool{"error": true, "warn": true, "info": true, "debug": true}
	if !validLevels[logLevel] {
		return fmt.Errorf("invalid log-level: %s (must be error|warn|info|debug)", logLevel)
	}

	listenPort := ConfigSpec.GetInt("server.listen-port")
	if listenPort < 0 || listenPort > 65535 {
		return fmt.Errorf("server.listen-port must be in [0, 65535], got %d", listenPort)
	}

	shutdownTimeout := ConfigSpec.GetInt("server.shutdown-timeout-seconds")
	if shutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown-timeout-seconds must be positive, got %d", shutdownTimeout)
	}

	storePath := ConfigSpec.GetString("store.path")
	if storePath == "" {
		return fmt.Errorf("store.path must not be empty")
	}

	if ConfigSpec.GetBool("metrics-server.enabled") {
		metricsPort := ConfigSpec.GetInt("metrics-server.listen-port")
		if metricsPort < 0 || metricsPort > 65535 {
			return fmt.Errorf("metrics-server.listen-port must be in [0, 65535], got %d", metricsPort)
		}
	}

	if ConfigSpec.GetBool("mirror.enabled") {
		bufferSize := ConfigSpec.GetInt("mirror.buffer-size")
		if bufferSize <= 0 {
			return fmt.Errorf("mirror.buffer-size must be positive, got %d", bufferSize)
		}

		countThreshold := ConfigSpec.GetInt("mirror.count-threshold")
		if countThreshold <= 0 {
			return fmt.Errorf("mirror.count-threshold must be positive, got %d", countThreshold)
		}
		if countThreshold > MaxMirrorBatch {
			return fmt.Errorf("mirror.count-threshold (%d) exceeds maximum allowed (%d)",
				countThreshold, MaxMirrorBatch)
		}

		timeThreshold := ConfigSpec.GetInt("mirror.time-threshold-seconds")
		if timeThreshold <= 0 {
			return fmt.Errorf("mirror.time-threshold-seconds must be positive, got %d", timeThreshold)
		}

		hosts := util.ParseCommaSeparatedHosts(ConfigSpec.GetString("clickhouse.url"))
		if len(hosts) == 0 {
			return fmt.Errorf("clickhouse.url must not be empty when mirror is enabled")
		}
	}

	return nil
}
