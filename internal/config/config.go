// Package config loads levelup settings from a TOML file with LEVELUP_*
// environment overrides applied on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/julianstephens/levelup/internal/constants"
	"github.com/julianstephens/levelup/internal/ledger"
)

const EnvPrefix = "LEVELUP_"

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Database struct {
	Backend string `toml:"backend" env:"BACKEND"`
	Path    string `toml:"path" env:"PATH"`
	// Connection is never read from the file; it comes from the keyring or
	// the environment.
	Connection string `toml:"-" env:"CONNECTION"`
}

type Config struct {
	Database         Database       `toml:"database" envPrefix:"DB_"`
	Timezone         string         `toml:"timezone" env:"TIMEZONE"`
	Debug            bool           `toml:"debug" env:"DEBUG"`
	LogLevel         string         `toml:"log_level" env:"LOG_LEVEL"`
	OTelEndpoint     string         `toml:"otel_endpoint" env:"OTEL_ENDPOINT"`
	CatalogCacheSize int            `toml:"catalog_cache_size" env:"CATALOG_CACHE_SIZE"`
	BossSpawnChance  float64        `toml:"boss_spawn_chance" env:"BOSS_SPAWN_CHANCE"`
	RetroGrantHours  int            `toml:"retro_grant_hours" env:"RETRO_GRANT_HOURS"`
	Rewards          ledger.Rewards `toml:"rewards" envPrefix:"REWARD_"`
}

func Default() Config {
	return Config{
		Database: Database{
			Backend: BackendSQLite,
			Path:    constants.DefaultConfigPath,
		},
		Timezone:         constants.DefaultTimezone,
		CatalogCacheSize: constants.DefaultCatalogCacheSize,
		BossSpawnChance:  constants.DefaultBossSpawnRate,
		RetroGrantHours:  constants.DefaultRetroGrantHours,
		Rewards:          ledger.DefaultRewards(),
	}
}

// Load reads path over the defaults, then applies environment overrides. A
// missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		expanded, err := ExpandHome(path)
		if err != nil {
			return cfg, err
		}
		file, err := os.Open(expanded)
		switch {
		case err == nil:
			defer file.Close()
			if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
				return cfg, fmt.Errorf("failed to decode config %s: %w", expanded, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return cfg, fmt.Errorf("failed to open config %s: %w", expanded, err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("failed to parse environment: %w", err)
	}

	path, err := ExpandHome(cfg.Database.Path)
	if err != nil {
		return cfg, err
	}
	cfg.Database.Path = path

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Database.Backend {
	case BackendSQLite:
		if c.Database.Path == "" {
			return errors.New("database path is required for the sqlite backend")
		}
	case BackendPostgres:
	default:
		return fmt.Errorf("unknown database backend %q", c.Database.Backend)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.BossSpawnChance < 0 || c.BossSpawnChance > 1 {
		return fmt.Errorf("boss_spawn_chance must be between 0 and 1, got %v", c.BossSpawnChance)
	}
	if c.RetroGrantHours <= 0 {
		return fmt.Errorf("retro_grant_hours must be positive, got %d", c.RetroGrantHours)
	}
	return nil
}

// Location resolves the timezone that decides what "today" is.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// RetroGrantTTL is how long a fresh retroactive edit grant stays usable.
func (c Config) RetroGrantTTL() time.Duration {
	return time.Duration(c.RetroGrantHours) * time.Hour
}

// Dir is the directory holding the sqlite database and logs.
func (c Config) Dir() string {
	if c.Database.Backend == BackendSQLite && c.Database.Path != "" {
		return filepath.Dir(c.Database.Path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", constants.AppName)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
