package types

import (
	"code.trustnet.io/repmarket/types/num"
)

const (
	// BasisPoints is the denominator for all fee and slippage fractions.
	BasisPoints uint64 = 10000
	// MaxTotalFeesBps caps entry + exit + donation at 10%.
	MaxTotalFeesBps uint64 = 1000
)

// FeeConfig is the process wide fee schedule, admin mutable only.
type FeeConfig struct {
	EntryBps    uint64
	ExitBps     uint64
	DonationBps uint64
	// ProtocolFeeAddress receives entry and exit fees.
	ProtocolFeeAddress string
}

func (f FeeConfig) Clone() FeeConfig {
	return f
}

// Validate enforces the fee cap and a non-empty sink address.
func (f FeeConfig) Validate() error {
	if f.EntryBps+f.ExitBps+f.DonationBps > MaxTotalFeesBps {
		return ErrInvalidMarketConfigOption
	}
	if f.ProtocolFeeAddress == "" {
		return ErrZeroAddressNotAllowed
	}
	return nil
}

// FeeOf applies a basis-points fraction to an amount, rounding toward zero.
func FeeOf(amount *num.Uint, bps uint64) *num.Uint {
	if bps == 0 || amount.IsZero() {
		return num.UintZero()
	}
	res := num.UintZero().Mul(amount, num.NewUint(bps))
	return res.Div(res, num.NewUint(BasisPoints))
}
