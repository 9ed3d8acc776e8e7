package config

import (
	"fmt"
	"time"
)

// HTTPConfig configures the stub backend's listener. The contract is all
// short request/response exchanges, so three timeouts are enough; there is
// no streaming endpoint that would need a separate header timeout.
type HTTPConfig struct {
	Port    int `koanf:"port"`
	Timeout struct {
		Read  time.Duration `koanf:"read"`
		Write time.Duration `koanf:"write"`
		Idle  time.Duration `koanf:"idle"`
	} `koanf:"timeout"`
}

func (c *HTTPConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %d", c.Port)
	}
	for name, d := range map[string]time.Duration{
		"read":  c.Timeout.Read,
		"write": c.Timeout.Write,
		"idle":  c.Timeout.Idle,
	} {
		if d <= 0 {
			return fmt.Errorf("invalid HTTP server %s timeout: %v", name, d)
		}
	}
	return nil
}
