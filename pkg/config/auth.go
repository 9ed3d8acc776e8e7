package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthConfig holds the token signing settings of the stub backend.
type AuthConfig struct {
	Secret   string        `koanf:"secret"`
	TokenTTL time.Duration `koanf:"tokenTtl"`
}

func (c *AuthConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Auth ---\n")
	b.WriteString(fmt.Sprintf("  secret: %s\n", maskSecret(c.Secret)))
	b.WriteString(fmt.Sprintf("  tokenTtl: %s\n", c.TokenTTL))
	return b.String()
}

func (c *AuthConfig) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("auth secret is not configured")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("invalid token TTL: %v", c.TokenTTL)
	}
	return nil
}

// maskSecret hides the secret value, keeping only its length visible
func maskSecret(s string) string {
	if s == "" {
		return "<not configured>"
	}
	return strings.Repeat("*", len(s))
}
