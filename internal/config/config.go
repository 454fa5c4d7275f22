package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Blob     BlobConfig     `mapstructure:"blob" validate:"required"`
	Page     PageConfig     `mapstructure:"page" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// IngestRate limits accepted capture messages per second across all
	// fetchers. Zero disables the limit.
	IngestRate  float64 `mapstructure:"ingest_rate" validate:"gte=0"`
	IngestBurst int     `mapstructure:"ingest_burst" validate:"gte=0"`
}

// DatabaseConfig contains the SQLite database settings.
type DatabaseConfig struct {
	Path        string        `mapstructure:"path" validate:"required"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout" validate:"gte=0"`
}

// BlobConfig locates the directory holding captured page content.
type BlobConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// PageConfig controls page freshness.
type PageConfig struct {
	MaxAge time.Duration `mapstructure:"max_age" validate:"gt=0"`
}

// TaskConfig controls routing and processor dispatch.
type TaskConfig struct {
	// MessageType is the capture message type routed to the processors.
	MessageType string `mapstructure:"message_type" validate:"required"`
	// Processors lists the task types created for every admitted page.
	Processors  []string `mapstructure:"processors" validate:"required,min=1,dive,required"`
	QueueSize   int      `mapstructure:"queue_size" validate:"gt=0"`
	WorkerCount int      `mapstructure:"worker_count" validate:"gt=0"`
	// StuckTaskAge is how long a task may stay in the working state before
	// it is handed to its processor again. Zero disables the check.
	StuckTaskAge time.Duration `mapstructure:"stuck_task_age" validate:"gte=0"`
}

// AuthConfig holds the optional shared secret that fetchers sign ingest
// tokens with. An empty secret disables ingest authentication.
type AuthConfig struct {
	IngestSecret string `mapstructure:"ingest_secret" validate:"omitempty,min=32"`
}
