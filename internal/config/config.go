package config

import "time"

// Config holds client configuration values.
type Config struct {
	// ServerURL is the HTTP base of the chat backend (room list, history).
	ServerURL string `mapstructure:"server_url" yaml:"server_url"`
	// SocketURL is the realtime endpoint. Empty means derived from ServerURL.
	SocketURL string `mapstructure:"socket_url" yaml:"socket_url"`
	// Username is the display name submitted at registration.
	Username string `mapstructure:"username" yaml:"username"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// ScrollThreshold is the distance from the bottom of the message view,
	// in viewport units, inside which auto-scroll stays engaged.
	ScrollThreshold int `mapstructure:"scroll_threshold" yaml:"scroll_threshold"`

	ReconnectMinBackoff time.Duration `mapstructure:"reconnect_min_backoff" yaml:"reconnect_min_backoff"`
	ReconnectMaxBackoff time.Duration `mapstructure:"reconnect_max_backoff" yaml:"reconnect_max_backoff"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		ServerURL:           "http://localhost:5000",
		LogLevel:            "info",
		ScrollThreshold:     100,
		ReconnectMinBackoff: 500 * time.Millisecond,
		ReconnectMaxBackoff: 15 * time.Second,
		RequestTimeout:      10 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.ServerURL != "" {
		c.ServerURL = other.ServerURL
	}
	if other.SocketURL != "" {
		c.SocketURL = other.SocketURL
	}
	if other.Username != "" {
		c.Username = other.Username
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.ScrollThreshold != 0 {
		c.ScrollThreshold = other.ScrollThreshold
	}
	if other.ReconnectMinBackoff != 0 {
		c.ReconnectMinBackoff = other.ReconnectMinBackoff
	}
	if other.ReconnectMaxBackoff != 0 {
		c.ReconnectMaxBackoff = other.ReconnectMaxBackoff
	}
	if other.RequestTimeout != 0 {
		c.RequestTimeout = other.RequestTimeout
	}
}
