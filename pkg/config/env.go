package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"
	EnvMongoQueryTimeout = "MONGO_QUERY_TIMEOUT"

	EnvPostgresURL = "POSTGRES_URL"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvLockBackend        = "LOCK_BACKEND"
	EnvLockTTL            = "LOCK_TTL"
	EnvLockAcquireTimeout = "LOCK_ACQUIRE_TIMEOUT"
	EnvLockRetryBaseDelay = "LOCK_RETRY_BASE_DELAY"
	EnvLockMaxRetries     = "LOCK_MAX_RETRIES"

	EnvEventsBackend = "EVENTS_BACKEND"
	EnvKafkaBrokers  = "KAFKA_BROKERS"
	EnvKafkaTopic    = "KAFKA_TOPIC"

	EnvLedgerBackend = "LEDGER_BACKEND"

	EnvSweepInterval   = "SWEEP_INTERVAL"
	EnvCompletionGrace = "COMPLETION_GRACE"

	EnvDefaultSlotMinutes = "DEFAULT_SLOT_MINUTES"
	EnvDefaultLeadMinutes = "DEFAULT_LEAD_MINUTES"
	EnvDefaultTimeZone    = "DEFAULT_TIME_ZONE"
)

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, trimming whitespace around
// each element. Empty elements are dropped.
func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
