package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	Service string `yaml:"service"`
	Env     string `yaml:"env"`
	Addr    string `yaml:"addr"`

	Store struct {
		// Backend selects where product stock lives: "memory" or "redis".
		Backend   string `yaml:"backend"`
		RedisAddr string `yaml:"redis_addr"`
	} `yaml:"store"`

	Cart struct {
		// MutateRetries bounds optimistic-conflict retries per mutation.
		MutateRetries int `yaml:"mutate_retries"`
	} `yaml:"cart"`

	Authz struct {
		// PlatformUpdateExemption re-enables the legacy rule that lets
		// non-admin sellers update platform-owned products.
		PlatformUpdateExemption bool `yaml:"platform_update_exemption"`
	} `yaml:"authz"`
}

func Default() *Config {
	cfg := &Config{
		Service: "shopcore",
		Env:     "dev",
		Addr:    ":8080",
	}
	cfg.Store.Backend = BackendMemory
	cfg.Store.RedisAddr = "localhost:6379"
	cfg.Cart.MutateRetries = 3
	return cfg
}

// Load reads the optional YAML file at path, then applies environment
// overrides. A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SHOPCORE_SERVICE"); v != "" {
		cfg.Service = v
	}
	if v := os.Getenv("SHOPCORE_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("SHOPCORE_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("SHOPCORE_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("SHOPCORE_REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := os.Getenv("SHOPCORE_CART_MUTATE_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Cart.MutateRetries = n
		}
	}
	if v := os.Getenv("SHOPCORE_AUTHZ_PLATFORM_UPDATE_EXEMPTION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Authz.PlatformUpdateExemption = b
		}
	}
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	if c.Cart.MutateRetries < 1 {
		return fmt.Errorf("config: cart.mutate_retries must be at least 1")
	}
	return nil
}
