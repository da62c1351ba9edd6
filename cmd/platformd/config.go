package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/provenhq/platform"
	"github.com/provenhq/platform/cache"
	"github.com/provenhq/platform/database"
	"github.com/provenhq/platform/feeders"
	"github.com/provenhq/platform/modules/authn"
)

// envPrefix namespaces every environment override, e.g. PLATFORM_SERVER_ADDR.
const envPrefix = "PLATFORM"

// appConfig is the daemon's full configuration tree. A config file fills it
// first, then PLATFORM_* environment variables override, then default tags
// fill whatever is still zero.
type appConfig struct {
	Environment string          `yaml:"environment" toml:"environment" json:"environment" env:"ENVIRONMENT" default:"development"`
	Server      serverConfig    `yaml:"server" toml:"server" json:"server"`
	Cache       cache.Config    `yaml:"cache" toml:"cache" json:"cache"`
	Database    database.Config `yaml:"database" toml:"database" json:"database"`
	Auth        authn.Config    `yaml:"auth" toml:"auth" json:"auth"`
}

type serverConfig struct {
	Addr            string        `yaml:"addr" toml:"addr" json:"addr" env:"SERVER_ADDR" default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout" json:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout" json:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" toml:"idle_timeout" json:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" json:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// feederFor picks a file feeder from the path's extension.
func feederFor(path string) (platform.Feeder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return feeders.NewYaml(path), nil
	case ".toml":
		return feeders.NewToml(path), nil
	case ".json":
		return feeders.NewJson(path), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q (yaml, toml, or json)", filepath.Ext(path))
	}
}

// loadConfig assembles the configuration from an optional file plus the
// environment.
func loadConfig(path string) (*appConfig, error) {
	var active []platform.Feeder
	if path != "" {
		f, err := feederFor(path)
		if err != nil {
			return nil, err
		}
		active = append(active, f)
	}
	active = append(active, feeders.NewPrefixedEnv(envPrefix))

	cfg := &appConfig{}
	if err := platform.LoadConfig(cfg, active...); err != nil {
		return nil, err
	}
	return cfg, nil
}
