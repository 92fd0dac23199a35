package config

import (
	"fmt"
	"strings"
)

// CORSConfig controls cross-origin access to the HTTP API.
// CORS is disabled entirely when no origins are configured.
type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowedOrigins"`
	AllowCredentials bool     `koanf:"allowCredentials"`
}

// String returns a string representation of the CORS configuration.
func (c *CORSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- CORS ---\n")
	b.WriteString(fmt.Sprintf("  allowedOrigins: %s\n", strings.Join(c.AllowedOrigins, ", ")))
	b.WriteString(fmt.Sprintf("  allowCredentials: %t\n", c.AllowCredentials))
	return b.String()
}

func (c *CORSConfig) Validate() error {
	for _, origin := range c.AllowedOrigins {
		if origin == "" {
			return fmt.Errorf("CORS allowed origin must not be empty")
		}
	}
	return nil
}
