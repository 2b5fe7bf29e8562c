// Package config handles configuration loading, parsing, and validation
// from defaults, an optional config.yaml, an optional .env file and the
// process environment. It provides type-safe access to application settings
// while keeping configuration details separate from business logic.
//
// Every key can be set through an environment variable named after its path
// with the FLASHDECK_ prefix (server.port becomes FLASHDECK_SERVER_PORT).
// The recommendation weights and cache TTL also honour REC_WEIGHT_DUE,
// REC_WEIGHT_ASSIGNED, REC_WEIGHT_RECENT, REC_WEIGHT_WRONG and REC_CACHE_SECONDS.
package config
