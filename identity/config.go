package identity

import (
	"code.trustnet.io/repmarket/config/encoding"
	"code.trustnet.io/repmarket/logging"
)

const namedLogger = "identity"

// Config contains the configurable items for this package.
type Config struct {
	Level encoding.LogLevel `toml:"Level"`
	// Owner is the party holding the contract-owner role.
	Owner string `toml:"Owner"`
	// Admins hold the admin role, Graduators the graduation/withdrawal role.
	Admins     []string `toml:"Admins"`
	Graduators []string `toml:"Graduators"`
	// Paused blocks market creation and trading when true.
	Paused bool `toml:"Paused"`
}

// NewDefaultConfig creates an instance of the package-specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level: encoding.LogLevel{Level: logging.InfoLevel},
		Owner: "owner",
	}
}
