package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"reservd/pkg/client"
	"reservd/pkg/logger"
)

type Config struct {
	ServiceName string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration
	MongoQueryTimeout time.Duration

	// Only used by the postgres lock backend.
	PostgresURL string

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	LockBackend        string
	LockTTL            time.Duration
	LockAcquireTimeout time.Duration
	LockRetryBaseDelay time.Duration
	LockMaxRetries     int

	EventsBackend string
	KafkaBrokers  []string
	KafkaTopic    string

	LedgerBackend string

	SweepInterval   time.Duration
	CompletionGrace time.Duration

	DefaultSlotMinutes int
	DefaultLeadMinutes int
	DefaultTimeZone    string

	Log    *logger.Logger
	Client *client.Client
}

// Load builds the configuration for one service from the environment,
// validates it and wires the shared logger. A .env file is honored when
// present; in containers the environment is already set.
func Load(serviceName string) *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName: serviceName,

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		MongoQueryTimeout: getEnvDuration(EnvMongoQueryTimeout, DefaultMongoQueryTimeout),

		PostgresURL: getEnvStr(EnvPostgresURL, ""),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		LockBackend:        getEnvStr(EnvLockBackend, DefaultLockBackend),
		LockTTL:            getEnvDuration(EnvLockTTL, DefaultLockTTL),
		LockAcquireTimeout: getEnvDuration(EnvLockAcquireTimeout, DefaultLockAcquireTimeout),
		LockRetryBaseDelay: getEnvDuration(EnvLockRetryBaseDelay, DefaultLockRetryBaseDelay),
		LockMaxRetries:     getEnvNum(EnvLockMaxRetries, DefaultLockMaxRetries),

		EventsBackend: getEnvStr(EnvEventsBackend, DefaultEventsBackend),
		KafkaBrokers:  getEnvList(EnvKafkaBrokers, DefaultKafkaBrokers),
		KafkaTopic:    getEnvStr(EnvKafkaTopic, DefaultKafkaTopic),

		LedgerBackend: getEnvStr(EnvLedgerBackend, DefaultLedgerBackend),

		SweepInterval:   getEnvDuration(EnvSweepInterval, DefaultSweepInterval),
		CompletionGrace: getEnvDuration(EnvCompletionGrace, DefaultCompletionGrace),

		DefaultSlotMinutes: getEnvNum(EnvDefaultSlotMinutes, DefaultSlotMinutes),
		DefaultLeadMinutes: getEnvNum(EnvDefaultLeadMinutes, DefaultLeadMinutes),
		DefaultTimeZone:    getEnvStr(EnvDefaultTimeZone, DefaultTimeZone),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, "info"),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.New(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetPostgres() {
	cfg.Client.SetPostgres(cfg.Log, cfg.PostgresURL)
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func (cfg *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		problems = append(problems, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		problems = append(problems, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		problems = append(problems, "MongoDatabaseName cannot be empty")
	}

	for name, d := range map[string]time.Duration{
		"MongoConnTimeout":   cfg.MongoConnTimeout,
		"MongoQueryTimeout":  cfg.MongoQueryTimeout,
		"RateLimitWindow":    cfg.RateLimitWindow,
		"RequestTimeout":     cfg.RequestTimeout,
		"IdempotencyTTL":     cfg.IdempotencyTTL,
		"ReadTimeout":        cfg.ReadTimeout,
		"WriteTimeout":       cfg.WriteTimeout,
		"IdleTimeout":        cfg.IdleTimeout,
		"ShutdownTimeout":    cfg.ShutdownTimeout,
		"LockTTL":            cfg.LockTTL,
		"LockAcquireTimeout": cfg.LockAcquireTimeout,
		"LockRetryBaseDelay": cfg.LockRetryBaseDelay,
		"SweepInterval":      cfg.SweepInterval,
		"CompletionGrace":    cfg.CompletionGrace,
	} {
		if d <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		problems = append(problems, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		problems = append(problems, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.LockMaxRetries < 0 {
		problems = append(problems, fmt.Sprintf("LockMaxRetries cannot be negative, got: %d", cfg.LockMaxRetries))
	}

	switch cfg.LockBackend {
	case LockBackendMemory, LockBackendMongo:
	case LockBackendPostgres:
		if cfg.PostgresURL == "" {
			problems = append(problems, "PostgresURL is required when LockBackend is postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("LockBackend must be memory, mongo or postgres, got: %s", cfg.LockBackend))
	}

	switch cfg.LedgerBackend {
	case LedgerBackendMongo, LedgerBackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("LedgerBackend must be mongo or memory, got: %s", cfg.LedgerBackend))
	}

	switch cfg.EventsBackend {
	case EventsBackendLog:
	case EventsBackendKafka:
		if len(cfg.KafkaBrokers) == 0 {
			problems = append(problems, "KafkaBrokers is required when EventsBackend is kafka")
		}
		if cfg.KafkaTopic == "" {
			problems = append(problems, "KafkaTopic is required when EventsBackend is kafka")
		}
	default:
		problems = append(problems, fmt.Sprintf("EventsBackend must be kafka or log, got: %s", cfg.EventsBackend))
	}

	if cfg.DefaultSlotMinutes < 5 || cfg.DefaultSlotMinutes > 720 {
		problems = append(problems, fmt.Sprintf("DefaultSlotMinutes must be between 5 and 720, got: %d", cfg.DefaultSlotMinutes))
	}
	if cfg.DefaultLeadMinutes < 0 {
		problems = append(problems, fmt.Sprintf("DefaultLeadMinutes cannot be negative, got: %d", cfg.DefaultLeadMinutes))
	}
	if _, err := time.LoadLocation(cfg.DefaultTimeZone); err != nil {
		problems = append(problems, fmt.Sprintf("DefaultTimeZone is not a valid IANA zone: %s", cfg.DefaultTimeZone))
	}

	if len(problems) > 0 {
		msg := "configuration validation failed:\n"
		for i, p := range problems {
			msg += fmt.Sprintf("  %d. %s\n", i+1, p)
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded",
		"mongo_uri", redactURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"mongo_query_timeout", cfg.MongoQueryTimeout,
		"postgres_url_set", cfg.PostgresURL != "",
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"lock_backend", cfg.LockBackend,
		"lock_ttl", cfg.LockTTL,
		"lock_acquire_timeout", cfg.LockAcquireTimeout,
		"lock_retry_base_delay", cfg.LockRetryBaseDelay,
		"lock_max_retries", cfg.LockMaxRetries,
		"events_backend", cfg.EventsBackend,
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_topic", cfg.KafkaTopic,
		"ledger_backend", cfg.LedgerBackend,
		"sweep_interval", cfg.SweepInterval,
		"completion_grace", cfg.CompletionGrace,
		"default_slot_minutes", cfg.DefaultSlotMinutes,
		"default_lead_minutes", cfg.DefaultLeadMinutes,
		"default_time_zone", cfg.DefaultTimeZone,
	)
}

// redactURI hides credentials embedded in connection strings before they
// reach logs or error messages.
func redactURI(uri string) string {
	credentialRegex := regexp.MustCompile(`((?:mongodb(?:\+srv)?|postgres(?:ql)?)://)[^:/@]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		return DefaultPaginationLimit
	}
	if limit > MaxPaginationLimit {
		return MaxPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
