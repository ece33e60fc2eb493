package market_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

func TestCheckpointRoundTrip(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig()
	cfg.EntryFeeBps = 100
	cfg.DonationBps = 50

	te := getTestEngine(t, cfg).withDefaults()
	_, err := te.CreateMarket(ctx, "alice")
	require.NoError(t, err)
	_, err = te.CreateMarket(ctx, "bob")
	require.NoError(t, err)
	_, err = te.BuyVotes(ctx, "carol", 1, types.OutcomeTrust, num.NewUint(12000), 2, 1000)
	require.NoError(t, err)
	_, err = te.AddMarketConfig(ctx, "admin", num.NewUint(30000), 3)
	require.NoError(t, err)
	require.NoError(t, te.SetUserAllowedToCreateMarket("admin", 3, true))
	require.NoError(t, te.GraduateMarket(ctx, "graduator", 2))

	data, err := te.Checkpoint()
	require.NoError(t, err)

	restored := getTestEngine(t, cfg).withDefaults()
	require.NoError(t, restored.Load(data))

	// markets and positions survive
	mkt, err := restored.GetMarket(1)
	require.NoError(t, err)
	orig, err := te.GetMarket(1)
	require.NoError(t, err)
	assert.Equal(t, orig.TrustVotes, mkt.TrustVotes)
	assert.Equal(t, orig.DistrustVotes, mkt.DistrustVotes)
	assert.True(t, mkt.Reserve.EQ(orig.Reserve))

	pos, err := restored.GetUserVotes("carol", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, pos.TrustHeld)

	holders, err := restored.Participants(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, holders)

	// graduation state survives
	grad, err := restored.GetMarket(2)
	require.NoError(t, err)
	assert.Equal(t, types.MarketStateGraduated, grad.State())
	_, err = restored.BuyVotes(ctx, "carol", 2, types.OutcomeTrust, num.NewUint(12000), 1, 0)
	assert.ErrorIs(t, err, types.ErrInactiveMarket)

	// fees, accruals, registry and allowlist survive
	assert.Equal(t, te.FeeConfig(), restored.FeeConfig())
	assert.True(t, restored.ProtocolFeesAccrued("protocol-treasury").
		EQ(te.ProtocolFeesAccrued("protocol-treasury")))
	assert.Len(t, restored.MarketConfigs(), 2)
	assert.True(t, restored.IsAllowedToCreateMarket(3))

	// escrow balances survive through the engine checkpoint
	assert.True(t, restored.escrow.Balance("alice").EQUint64(60))

	// the restored engine keeps trading consistently
	res, err := restored.SellVotes(ctx, "carol", 1, types.OutcomeTrust, 2)
	require.NoError(t, err)
	assert.True(t, res.Proceeds.EQUint64(11666))
}

func TestCheckpointRejectsBadState(t *testing.T) {
	te := getTestEngine(t, testConfig()).withDefaults()

	t.Run("garbage input", func(t *testing.T) {
		assert.Error(t, te.Load([]byte("not json")))
	})

	t.Run("fee schedule over the cap", func(t *testing.T) {
		err := te.Load([]byte(`{"fees":{"entryBps":900,"exitBps":900,"protocolFeeAddress":"x"},` +
			`"marketConfigs":[{"initialLiquidity":"10000","initialVotes":1}]}`))
		assert.ErrorIs(t, err, types.ErrInvalidMarketConfigOption)
	})

	t.Run("empty config registry", func(t *testing.T) {
		err := te.Load([]byte(`{"fees":{"protocolFeeAddress":"x"},"marketConfigs":[]}`))
		assert.ErrorIs(t, err, types.ErrInvalidMarketConfigOption)
	})
}
