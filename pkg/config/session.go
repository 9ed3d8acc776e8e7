package config

import (
	"fmt"
	"strings"
)

// SessionConfig describes where the client persists its session
// across process restarts.
type SessionConfig struct {
	Path string `koanf:"path"`
}

func (c *SessionConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Session ---\n")
	b.WriteString(fmt.Sprintf("  path: %s\n", c.Path))
	return b.String()
}

func (c *SessionConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("session file path is not configured")
	}
	return nil
}
