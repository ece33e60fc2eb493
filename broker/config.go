package broker

import (
	"code.trustnet.io/repmarket/config/encoding"
	"code.trustnet.io/repmarket/logging"
)

const namedLogger = "broker"

// Config represents the configuration of the broker.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`
	// SendTimeout bounds how long a send to a slow acking subscriber may block.
	SendTimeout encoding.Duration `long:"send-timeout"`
}

// NewDefaultConfig creates an instance of config with default values.
func NewDefaultConfig() Config {
	return Config{
		Level:       encoding.LogLevel{Level: logging.InfoLevel},
		SendTimeout: encoding.Duration{Duration: 1e9},
	}
}
