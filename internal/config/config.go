package config

import (
	"errors"
	"fmt"
	"time"
)

// DefaultGraceWindow is how long a room survives after one participant's
// connection drops, waiting for that user to register again.
const DefaultGraceWindow = 5 * time.Second

// Config holds the server settings, populated from flags and
// SALARYTHIEF_* environment variables in cmd/main.go.
type Config struct {
	// Bind is the address the HTTP server listens on.
	Bind string
	// Port is the TCP port the HTTP server listens on.
	Port int
	// GraceWindow is the reconnection window for a disconnected participant.
	GraceWindow time.Duration
	// JWTSecret signs the anon-id tokens minted by /anonid.
	JWTSecret string
	// AllowedOrigin restricts websocket upgrades; "*" accepts any origin.
	AllowedOrigin string
}

// Default returns the configuration used when no flag or env override
// is present.
func Default() Config {
	return Config{
		Bind:          "0.0.0.0",
		Port:          8080,
		GraceWindow:   DefaultGraceWindow,
		JWTSecret:     "",
		AllowedOrigin: "*",
	}
}

// Validate checks the configuration before the server starts.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.GraceWindow <= 0 {
		return fmt.Errorf("invalid grace window: %s", c.GraceWindow)
	}
	if c.JWTSecret == "" {
		return errors.New("jwt secret must not be empty")
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}
