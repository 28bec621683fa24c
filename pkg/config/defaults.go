package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "reservd"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoQueryTimeout = 5 * time.Second

	DefaultPort = "8080"

	DefaultRateLimitRequests = 20
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Slot-lock tuning. The TTL bounds how long a crashed holder can
	// block a (resource, date) pair; the acquire timeout bounds one
	// attempt and the retry cap bounds the whole acquisition.
	LockBackendMemory   = "memory"
	LockBackendMongo    = "mongo"
	LockBackendPostgres = "postgres"

	DefaultLockBackend        = LockBackendMongo
	DefaultLockTTL            = 10 * time.Second
	DefaultLockAcquireTimeout = 2 * time.Second
	DefaultLockRetryBaseDelay = 50 * time.Millisecond
	DefaultLockMaxRetries     = 4

	EventsBackendKafka = "kafka"
	EventsBackendLog   = "log"

	DefaultEventsBackend = EventsBackendLog
	DefaultKafkaTopic    = "availability.changed"

	LedgerBackendMongo  = "mongo"
	LedgerBackendMemory = "memory"

	DefaultLedgerBackend = LedgerBackendMongo

	DefaultSweepInterval = 5 * time.Minute
	// Reservation end times are stored without a zone; the grace keeps a
	// UTC-based sweep from completing a reservation still running in a
	// zone west of UTC.
	DefaultCompletionGrace = 24 * time.Hour

	DefaultSlotMinutes = 60
	DefaultLeadMinutes = 0
	DefaultTimeZone    = "UTC"

	DefaultPaginationLimit = 20
	MaxPaginationLimit     = 100
)

var DefaultKafkaBrokers = []string{"localhost:9092"}
