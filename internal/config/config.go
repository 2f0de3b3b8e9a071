package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Reminder ReminderConfig `mapstructure:"reminder" validate:"required"`
	Notifier NotifierConfig `mapstructure:"notifier" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat       string        `mapstructure:"log_format" validate:"required,oneof=json text"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver is one of sqlite, postgres or mysql
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite postgres mysql"`
	// URL is the DSN; for sqlite it is the file path and defaults to task_db
	URL             string        `mapstructure:"url" validate:"required_unless=Driver sqlite"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// AuthConfig contains authentication settings.
// Authentication is disabled when JWTSecret is empty.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
}

// ReminderConfig controls the periodic reminder job.
type ReminderConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
	// MinInterval is the floor applied to Interval by the scheduler
	MinInterval time.Duration `mapstructure:"min_interval" validate:"gt=0"`
}

// NotifierConfig selects and configures the reminder delivery mechanism.
type NotifierConfig struct {
	Kind               string `mapstructure:"kind" validate:"required,oneof=log fcm"`
	FCMCredentialsFile string `mapstructure:"fcm_credentials_file"`
	FCMProjectID       string `mapstructure:"fcm_project_id"`
	FCMTopic           string `mapstructure:"fcm_topic" validate:"required_if=Kind fcm"`
}
