// Package config loads tzdemo settings from defaults, a TOML file, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/and161185/tzaware/tzaware"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TZAWARE_"

// Supported drivers and output formats.
var (
	Drivers = []string{"postgres", "sqlite", "redis"}
	Outputs = []string{"json", "yaml", "protojson"}
)

type Config struct {
	Driver     string      `toml:"driver"`
	DSN        string      `toml:"dsn"`
	Redis      RedisConfig `toml:"redis"`
	Naive      string      `toml:"naive"`
	Incomplete string      `toml:"incomplete"`
	LogLevel   string      `toml:"log_level"`
	Output     string      `toml:"output"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Driver: "sqlite",
		DSN:    "file:tzaware.db",
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "tzaware:",
		},
		Naive:      tzaware.RejectNaive.String(),
		Incomplete: tzaware.RejectIncomplete.String(),
		LogLevel:   "info",
		Output:     "json",
	}
}

// Load builds a Config. path names an optional TOML file; an empty path skips it.
// A .env file in the working directory is loaded without overriding the real environment.
func Load(path string) (Config, error) {
	return load(path, ".env")
}

func load(path, dotenv string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if dotenv != "" {
		if _, err := os.Stat(dotenv); err == nil {
			if err := godotenv.Load(dotenv); err != nil {
				return Config{}, fmt.Errorf("dotenv %s: %w", dotenv, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("dotenv %s: %w", dotenv, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Driver = getEnv("DRIVER", c.Driver)
	c.DSN = getEnv("DSN", c.DSN)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.Prefix = getEnv("REDIS_PREFIX", c.Redis.Prefix)
	c.Naive = getEnv("NAIVE", c.Naive)
	c.Incomplete = getEnv("INCOMPLETE", c.Incomplete)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Output = getEnv("OUTPUT", c.Output)

	db, err := getEnvInt("REDIS_DB", c.Redis.DB)
	if err != nil {
		return err
	}
	c.Redis.DB = db
	return nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	if !slices.Contains(Drivers, c.Driver) {
		return fmt.Errorf("unknown driver %q (want one of %v)", c.Driver, Drivers)
	}
	if !slices.Contains(Outputs, c.Output) {
		return fmt.Errorf("unknown output %q (want one of %v)", c.Output, Outputs)
	}
	if c.Driver != "redis" && c.DSN == "" {
		return errors.New("dsn is required")
	}
	_, err := c.Policy()
	return err
}

// Policy builds the timestamp policy from Naive and Incomplete.
func (c Config) Policy() (tzaware.Policy, error) {
	naive, err := tzaware.ParseNaivePolicy(c.Naive)
	if err != nil {
		return tzaware.Policy{}, err
	}
	inc, err := tzaware.ParseIncompletePolicy(c.Incomplete)
	if err != nil {
		return tzaware.Policy{}, err
	}
	return tzaware.Policy{Naive: naive, Incomplete: inc}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(EnvPrefix + key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	valueStr, exists := os.LookupEnv(EnvPrefix + key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
	}
	return v, nil
}
