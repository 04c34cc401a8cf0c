package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "hotel"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Both hardening switches default off: the baseline behavior is the
	// unguarded check-then-act flow.
	DefaultSlotLockEnabled         = false
	DefaultSlotLockTTL             = 10 * time.Second
	DefaultConflictRecheckOnUpdate = false

	DefaultKafkaEnabled = false
	DefaultKafkaTopic   = "booking-events"
)
