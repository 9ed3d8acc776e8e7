package config

import (
	"fmt"
	"strings"
	"time"
)

// APIConfig describes the storefront backend the client talks to.
type APIConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
}

func (c *APIConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- API ---\n")
	b.WriteString(fmt.Sprintf("  url: %s\n", c.URL))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *APIConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("API URL is not configured")
	}
	if !isValidHTTPURL(c.URL) {
		return fmt.Errorf("API URL must start with 'http://' or 'https://': %s", c.URL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid API timeout: %v", c.Timeout)
	}
	return nil
}

// isValidHTTPURL checks if the provided URL uses an HTTP scheme
func isValidHTTPURL(url string) bool {
	return strings.HasPrefix(url, "http://") ||
		strings.HasPrefix(url, "https://")
}
