package stub

import (
	"strings"

	"github.com/abgdnv/sweetshop/pkg/config"
	"github.com/abgdnv/sweetshop/pkg/configloader"
)

var _ configloader.Validator = (*Config)(nil)

// Config is the stub backend configuration.
type Config struct {
	HTTPServer config.HTTPConfig     `koanf:"server"`
	Auth       config.AuthConfig     `koanf:"auth"`
	Log        config.LogConfig      `koanf:"log"`
	PProf      config.PProfConfig    `koanf:"pprof"`
	Shutdown   config.ShutdownConfig `koanf:"shutdown"`
	Seed       bool                  `koanf:"seed"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.Auth.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	return nil
}

// SeedProducts fills the store with a small demo catalog.
func SeedProducts(s *Store) {
	demo := []struct {
		name, description string
		price             float64
		quantity          int
	}{
		{"Toffee", "Buttery golden toffee", 2.50, 3},
		{"Chocolate Fudge", "Dark chocolate fudge square", 3.75, 12},
		{"Lemon Drops", "Sharp lemon boiled sweets", 1.20, 40},
		{"Marzipan", "Almond marzipan bar", 4.10, 0},
	}
	for _, d := range demo {
		// Seeding an empty store cannot collide on names.
		_, _ = s.CreateProduct(d.name, d.description, d.price, d.quantity)
	}
}
