package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/sweetshop/pkg/config"
	"github.com/abgdnv/sweetshop/pkg/configloader"
)

var _ configloader.Validator = (*Config)(nil)

// Config is the storefront client configuration.
type Config struct {
	API     config.APIConfig     `koanf:"api"`
	Session config.SessionConfig `koanf:"session"`
	Log     config.LogConfig     `koanf:"log"`
	UI      UIConfig             `koanf:"ui"`
}

// UIConfig holds the interactive front end settings.
type UIConfig struct {
	// RedirectDelay is how long the registration success message stays
	// visible before the view navigates back to login.
	RedirectDelay time.Duration `koanf:"redirectDelay"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.API.String())
	b.WriteString(c.Session.String())
	b.WriteString(c.Log.String())
	b.WriteString("\n--- UI ---\n")
	b.WriteString(fmt.Sprintf("  redirectDelay: %s\n", c.UI.RedirectDelay))
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.API.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if c.UI.RedirectDelay < 0 {
		return fmt.Errorf("invalid UI redirect delay: %v", c.UI.RedirectDelay)
	}
	return nil
}
