package api

import (
	"code.trustnet.io/repmarket/config/encoding"
	"code.trustnet.io/repmarket/logging"
)

const namedLogger = "api"

// Config represents the configuration of the api package.
type Config struct {
	Level           encoding.LogLevel `long:"log-level"`
	IP              string            `long:"ip" description:"The ip address to bind to"`
	Port            int               `long:"port" description:"The port to bind to"`
	ActivityRetain  int               `long:"activity-retain" description:"How many activity records to keep for the feed"`
	ShutdownTimeout encoding.Duration `long:"shutdown-timeout"`
}

// NewDefaultConfig creates an instance of config with default values.
func NewDefaultConfig() Config {
	return Config{
		Level:           encoding.LogLevel{Level: logging.InfoLevel},
		IP:              "0.0.0.0",
		Port:            3009,
		ActivityRetain:  1000,
		ShutdownTimeout: encoding.Duration{Duration: 5e9},
	}
}
