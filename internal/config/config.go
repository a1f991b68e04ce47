package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`

	// HostSecret gates the host role. Empty disables host auth: anyone may
	// claim the host connection, which matches a trusted single-tenant setup.
	HostSecret string `mapstructure:"host_secret" yaml:"host_secret"`

	JWTSecret   string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience" yaml:"jwt_audience"`

	// WSMsgPerMinute limits inbound signaling messages per connection.
	// Zero means unlimited.
	WSMsgPerMinute int `mapstructure:"ws_msg_per_minute" yaml:"ws_msg_per_minute"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		DatabasePath:      "onair.db",
		JWTIssuer:         "onair",
		JWTAudience:       "onair-host",
		WSMsgPerMinute:    300,
	}
}
