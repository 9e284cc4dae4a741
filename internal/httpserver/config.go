package httpserver

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the HTTP server's network and service-identity settings,
// following the teacher's chi_server.Config/DefaultConfig/Validate shape.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	BodyLimit    int64

	ServiceName    string
	ServiceVersion string
}

// DefaultConfig returns sane defaults; callers override via Options.
func DefaultConfig() Config {
	return Config{
		Address:        ":8080",
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		BodyLimit:      1 << 20,
		ServiceName:    "rpc-gateway",
		ServiceVersion: "dev",
	}
}

// Validate checks the configuration for fatal misconfiguration at startup.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("address is required")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", c.ReadTimeout)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %v", c.WriteTimeout)
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive, got %v", c.IdleTimeout)
	}
	if c.BodyLimit <= 0 {
		return fmt.Errorf("body limit must be positive, got %d", c.BodyLimit)
	}
	return nil
}
