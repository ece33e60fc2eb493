package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

func TestFeeConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  types.FeeConfig
		err  error
	}{
		{
			name: "zero fees",
			cfg:  types.FeeConfig{ProtocolFeeAddress: "sink"},
		},
		{
			name: "at the cap",
			cfg:  types.FeeConfig{EntryBps: 400, ExitBps: 400, DonationBps: 200, ProtocolFeeAddress: "sink"},
		},
		{
			name: "over the cap",
			cfg:  types.FeeConfig{EntryBps: 500, ExitBps: 400, DonationBps: 200, ProtocolFeeAddress: "sink"},
			err:  types.ErrInvalidMarketConfigOption,
		},
		{
			name: "missing sink",
			cfg:  types.FeeConfig{EntryBps: 10},
			err:  types.ErrZeroAddressNotAllowed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFeeOf(t *testing.T) {
	// floor division: fees always round in the payer's favour
	assert.True(t, types.FeeOf(num.NewUint(10000), 100).EQUint64(100))
	assert.True(t, types.FeeOf(num.NewUint(9999), 100).EQUint64(99))
	assert.True(t, types.FeeOf(num.NewUint(99), 100).IsZero())
	assert.True(t, types.FeeOf(num.NewUint(10000), 0).IsZero())
	assert.True(t, types.FeeOf(num.UintZero(), 100).IsZero())
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, types.OutcomeDistrust, types.OutcomeTrust.Opposite())
	assert.Equal(t, types.OutcomeTrust, types.OutcomeDistrust.Opposite())
	assert.Equal(t, "trust", types.OutcomeTrust.String())
	assert.Equal(t, "distrust", types.OutcomeDistrust.String())

	o, err := types.ParseOutcome("trust")
	assert.NoError(t, err)
	assert.Equal(t, types.OutcomeTrust, o)
	o, err = types.ParseOutcome("distrust")
	assert.NoError(t, err)
	assert.Equal(t, types.OutcomeDistrust, o)
	_, err = types.ParseOutcome("maybe")
	assert.Error(t, err)
}

func TestMarketState(t *testing.T) {
	mkt := &types.Market{
		ProfileID:     1,
		TrustVotes:    1,
		DistrustVotes: 1,
		Reserve:       num.NewUint(10000),
		Config: types.MarketConfig{
			InitialLiquidity: num.NewUint(10000),
			InitialVotes:     1,
		},
	}
	assert.Equal(t, types.MarketStateActive, mkt.State())
	mkt.Graduated = true
	assert.Equal(t, types.MarketStateGraduated, mkt.State())

	t.Run("clone is deep", func(t *testing.T) {
		c := mkt.Clone()
		c.Reserve.AddSum(num.NewUint(5))
		c.Config.InitialLiquidity.AddSum(num.NewUint(5))
		assert.True(t, mkt.Reserve.EQUint64(10000))
		assert.True(t, mkt.Config.InitialLiquidity.EQUint64(10000))
	})
}
