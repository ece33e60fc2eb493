// Package config ties together the per-package configuration types and
// handles reading and writing the TOML config file.
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"code.trustnet.io/repmarket/api"
	"code.trustnet.io/repmarket/broker"
	"code.trustnet.io/repmarket/identity"
	"code.trustnet.io/repmarket/logging"
	"code.trustnet.io/repmarket/market"
	"code.trustnet.io/repmarket/metrics"
)

const configFileName = "config.toml"

// Config ties together all other application configuration types.
type Config struct {
	API      api.Config      `toml:"API"`
	Broker   broker.Config   `toml:"Broker"`
	Market   market.Config   `toml:"Market"`
	Metrics  metrics.Config  `toml:"Metrics"`
	Identity identity.Config `toml:"Identity"`
	Logging  logging.Config  `toml:"Logging"`
}

// NewDefaultConfig returns the defaults for every package, as specified at
// the per package config level.
func NewDefaultConfig() Config {
	return Config{
		API:      api.NewDefaultConfig(),
		Broker:   broker.NewDefaultConfig(),
		Market:   market.NewDefaultConfig(),
		Metrics:  metrics.NewDefaultConfig(),
		Identity: identity.NewDefaultConfig(),
		Logging:  logging.NewDefaultConfig(),
	}
}

// Read loads the config file from rootPath, layered over the defaults so a
// partial file is valid.
func Read(rootPath string) (*Config, error) {
	path := filepath.Join(rootPath, configFileName)
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := NewDefaultConfig()
	if _, err := toml.Decode(string(buf), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Write serialises the config to rootPath/config.toml.
func Write(rootPath string, cfg Config) error {
	buf := &bytes.Buffer{}
	if err := toml.NewEncoder(buf).Encode(cfg); err != nil {
		return err
	}
	path := filepath.Join(rootPath, configFileName)
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
