// Package config handles configuration loading, parsing, and validation
// from defaults, an optional config.yaml, an optional .env file and
// PAGEQUEUE_* environment variables.
package config
