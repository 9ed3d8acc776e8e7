// Package configloader reads layered application configuration: a yaml
// file, then a .env file, then system environment variables, each layer
// overriding the one before it.
package configloader

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const configFile = "config.yaml"

// Validator is implemented by config types that can check themselves
// after unmarshalling.
type Validator interface {
	Validate() error
}

// Load reads and validates configuration for the named application.
// Environment variables use the form <APP>_SECTION_KEY, e.g.
// SWEETSHOP_API_URL maps to the api.url key. Missing files are fine; the
// environment alone can carry the whole configuration.
func Load[T Validator](appName string) (T, error) {
	var cfg T
	k := koanf.New(".")
	envPrefix := strings.ToUpper(appName) + "_"

	// SWEETSHOP_SESSION_PATH -> session.path
	toKey := func(name string) string {
		name = strings.ToLower(name)
		name = strings.TrimPrefix(name, strings.ToLower(envPrefix))
		return strings.ReplaceAll(name, "_", ".")
	}

	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil && !os.IsNotExist(err) {
		log.Printf("WARN: error loading YAML config file %q: %v", configFile, err)
	}

	if dotenv, err := godotenv.Read(".env"); err == nil {
		flat := make(map[string]any, len(dotenv))
		for name, value := range dotenv {
			flat[toKey(name)] = value
		}
		if err := k.Load(confmap.Provider(flat, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", toKey), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
