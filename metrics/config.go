package metrics

import (
	"code.trustnet.io/repmarket/config/encoding"
	"code.trustnet.io/repmarket/logging"
)

const namedLogger = "metrics"

// Config represents the configuration of the metric package.
type Config struct {
	Level   encoding.LogLevel `long:"log-level"`
	Enabled encoding.Bool     `long:"enabled" description:"Whether or not to serve prometheus metrics"`
	Port    int               `long:"port" description:"The port to serve prometheus metrics on"`
	Path    string            `long:"path" description:"The path to serve prometheus metrics on"`
}

// NewDefaultConfig creates an instance of config with default values.
func NewDefaultConfig() Config {
	return Config{
		Level:   encoding.LogLevel{Level: logging.InfoLevel},
		Enabled: false,
		Port:    2112,
		Path:    "/metrics",
	}
}
