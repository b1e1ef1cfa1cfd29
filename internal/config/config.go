package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	JWTSecret   string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience" yaml:"jwt_audience"`

	// ChatReplayLimit bounds the history window sent to new joiners.
	ChatReplayLimit int `mapstructure:"chat_replay_limit" yaml:"chat_replay_limit"`

	// Execution service (Piston-compatible HTTP API).
	ExecBaseURL   string        `mapstructure:"exec_base_url" yaml:"exec_base_url"`
	ExecTimeout   time.Duration `mapstructure:"exec_timeout" yaml:"exec_timeout"`
	ExecRateLimit int           `mapstructure:"exec_rate_limit" yaml:"exec_rate_limit"`

	// Optional redis bus for multi-instance fanout. Empty disables it.
	RedisAddr string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db" yaml:"redis_db"`

	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		DatabasePath:      "codecollab.db",
		JWTSecret:         "dev-secret-change",
		JWTIssuer:         "codecollab",
		JWTAudience:       "codecollab",
		ChatReplayLimit:   50,
		ExecBaseURL:       "https://emkc.org/api/v2/piston",
		ExecTimeout:       15 * time.Second,
		ExecRateLimit:     30,
	}
}
