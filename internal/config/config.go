// Package config loads the process configuration from a yaml file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type (
	Config struct {
		Port    int    `yaml:"port"`
		Store   string `yaml:"store"`
		LogFile string `yaml:"log_file"`
		Auth    Auth   `yaml:"auth"`
	}

	Auth struct {
		TokenTimeoutSeconds int     `yaml:"token_timeout_seconds"`
		Encoder             Encoder `yaml:"encoder"`
	}

	// Encoder selects the password hashing strategy for the whole
	// process lifetime. Method is a closed set of names, MethodArgs is
	// the algorithm-specific cost knob.
	Encoder struct {
		Method     string `yaml:"method"`
		MethodArgs int    `yaml:"method_args"`
	}
)

// Default is the configuration the process runs with when the file omits
// a value.
func Default() Config {
	return Config{
		Port:  3000,
		Store: "jackin.db",
		Auth: Auth{
			TokenTimeoutSeconds: 3600,
			Encoder: Encoder{
				Method: "argon2id",
			},
		},
	}
}

// Load reads and decodes the yaml file at path, filling the gaps with
// Default values.
func Load(path string) (Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config file %v, cause %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return Config{}, fmt.Errorf("unable to parse config file %v, cause %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %v, cause %w", path, err)
	}
	return cfg, nil
}

func (c Config) TokenTimeout() time.Duration {
	return time.Duration(c.Auth.TokenTimeoutSeconds) * time.Second
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %v is out of range", c.Port)
	}
	if c.Store == "" {
		return fmt.Errorf("store path must not be empty")
	}
	if c.Auth.TokenTimeoutSeconds <= 0 {
		return fmt.Errorf("token timeout %v must be positive", c.Auth.TokenTimeoutSeconds)
	}
	return nil
}
