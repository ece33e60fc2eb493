package market

import (
	"code.trustnet.io/repmarket/config/encoding"
	"code.trustnet.io/repmarket/logging"
	"code.trustnet.io/repmarket/types/num"
)

const namedLogger = "market"

// Config represents the configuration of the market engine.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	// PriceMaximum is the ceiling the two outcome prices always sum to,
	// in wei. Defaults to 0.01 ether.
	PriceMaximum num.Uint `long:"price-maximum"`
	// MinimumBasePrice is the floor for a config's initial liquidity,
	// in wei. Defaults to 0.0001 ether.
	MinimumBasePrice num.Uint `long:"minimum-base-price"`

	// DefaultInitialVotes seeds both sides of the default market config.
	DefaultInitialVotes uint64 `long:"default-initial-votes"`

	// Fee schedule applied until an admin overrides it at runtime.
	EntryFeeBps        uint64 `long:"entry-fee-bps"`
	ExitFeeBps         uint64 `long:"exit-fee-bps"`
	DonationBps        uint64 `long:"donation-bps"`
	ProtocolFeeAddress string `long:"protocol-fee-address"`

	// AllowListEnforced gates market creation on the per-profile allowlist.
	AllowListEnforced encoding.Bool `long:"allow-list-enforced"`
}

// NewDefaultConfig creates an instance of config with default values.
func NewDefaultConfig() Config {
	return Config{
		Level:               encoding.LogLevel{Level: logging.InfoLevel},
		PriceMaximum:        *num.MustUintFromString("10000000000000000"),
		MinimumBasePrice:    *num.MustUintFromString("100000000000000"),
		DefaultInitialVotes: 1,
		EntryFeeBps:         0,
		ExitFeeBps:          0,
		DonationBps:         0,
		ProtocolFeeAddress:  "protocol-treasury",
		AllowListEnforced:   false,
	}
}
