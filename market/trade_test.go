package market_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

// Price references, ceiling 10000, one seeded vote per side:
// buying trust votes from the seeded state costs
// 5000, 6666, 7500, 8000, 8333 per consecutive unit.

func TestBuyVotes(t *testing.T) {
	ctx := context.Background()

	t.Run("buys whole votes and refunds the remainder", func(t *testing.T) {
		te := getTestEngine(t, testConfig()).withDefaults()
		_, err := te.CreateMarket(ctx, "alice")
		require.NoError(t, err)

		res, err := te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(12000), 2, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 2, res.VotesBought)
		assert.True(t, res.Cost.EQUint64(11666))
		assert.True(t, res.Refund.EQUint64(334))
		assert.True(t, res.EntryFee.IsZero())
		assert.True(t, res.Donation.IsZero())
		assert.True(t, res.MinPrice.EQUint64(5000))
		assert.True(t, res.MaxPrice.EQUint64(6666))
		// price after the trade: 10000 * 3 / 4
		assert.True(t, res.NewPrice.EQUint64(7500))

		mkt, err := te.GetMarket(1)
		require.NoError(t, err)
		assert.EqualValues(t, 3, mkt.TrustVotes)
		assert.EqualValues(t, 1, mkt.DistrustVotes)
		assert.True(t, mkt.Reserve.EQUint64(21666))

		pos, err := te.GetUserVotes("bob", 1)
		require.NoError(t, err)
		assert.EqualValues(t, 2, pos.TrustHeld)
		assert.Zero(t, pos.DistrustHeld)
	})

	t.Run("five consecutive unit buys equal one five-vote buy", func(t *testing.T) {
		te := getTestEngine(t, testConfig()).withDefaults()
		_, err := te.CreateMarket(ctx, "alice")
		require.NoError(t, err)

		res, err := te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(35499), 5, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 5, res.VotesBought)
		assert.True(t, res.Cost.EQUint64(35499))
		assert.True(t, res.Refund.IsZero())
		assert.True(t, res.MaxPrice.EQUint64(8333))
	})

	t.Run("rejects funds below one vote", func(t *testing.T) {
		te := getTestEngine(t, testConfig()).withDefaults()
		_, err := te.CreateMarket(ctx, "alice")
		require.NoError(t, err)

		_, err = te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(4999), 1, 0)
		assert.ErrorIs(t, err, types.ErrInsufficientFunds)

		// the failed buy left no trace
		mkt, err := te.GetMarket(1)
		require.NoError(t, err)
		assert.EqualValues(t, 1, mkt.TrustVotes)
		assert.True(t, mkt.Reserve.EQUint64(10000))
		count, err := te.ParticipantCount(1)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("rejects an unknown market", func(t *testing.T) {
		te := getTestEngine(t, testConfig()).withDefaults()

		_, err := te.BuyVotes(ctx, "bob", 42, types.OutcomeTrust, num.NewUint(12000), 1, 0)
		assert.ErrorIs(t, err, types.ErrMarketDoesNotExist)
	})

	t.Run("rejects trading while paused", func(t *testing.T) {
		te := getTestEngine(t, testConfig())
		te.gate.EXPECT().IsPaused().Return(true)

		_, err := te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(12000), 1, 0)
		assert.ErrorIs(t, err, types.ErrPaused)
	})
}

func TestBuySlippage(t *testing.T) {
	ctx := context.Background()

	// 12000 only covers 2 votes at 5000 + 6666
	t.Run("within tolerance passes", func(t *testing.T) {
		te := getTestEngine(t, testConfig()).withDefaults()
		_, err := te.CreateMarket(ctx, "alice")
		require.NoError(t, err)

		// 3 expected, 10% tolerance: floor(3 * 9000 / 10000) = 2 accepted
		res, err := te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(12000), 3, 1000)
		require.NoError(t, err)
		assert.EqualValues(t, 2, res.VotesBought)
	})

	t.Run("beyond tolerance reverts with the trade numbers", func(t *testing.T) {
		te := getTestEngine(t, testConfig()).withDefaults()
		_, err := te.CreateMarket(ctx, "alice")
		require.NoError(t, err)

		_, err = te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(12000), 3, 0)
		slipErr := &types.SlippageLimitExceededError{}
		require.ErrorAs(t, err, &slipErr)
		assert.EqualValues(t, 2, slipErr.ActualVotes)
		assert.EqualValues(t, 3, slipErr.ExpectedVotes)
		assert.EqualValues(t, 0, slipErr.SlippageBps)

		// nothing committed
		mkt, err := te.GetMarket(1)
		require.NoError(t, err)
		assert.EqualValues(t, 1, mkt.TrustVotes)
	})

	t.Run("a huge vote expectation still reverts at zero tolerance", func(t *testing.T) {
		te := getTestEngine(t, testConfig()).withDefaults()
		_, err := te.CreateMarket(ctx, "alice")
		require.NoError(t, err)

		// expectedVotes * 10000 does not fit in 64 bits
		_, err = te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(12000), 1<<60, 0)
		slipErr := &types.SlippageLimitExceededError{}
		require.ErrorAs(t, err, &slipErr)
		assert.EqualValues(t, 2, slipErr.ActualVotes)
		assert.EqualValues(t, uint64(1)<<60, slipErr.ExpectedVotes)
		assert.EqualValues(t, 0, slipErr.SlippageBps)
	})

	t.Run("a tolerance above 100 percent accepts any fill", func(t *testing.T) {
		te := getTestEngine(t, testConfig()).withDefaults()
		_, err := te.CreateMarket(ctx, "alice")
		require.NoError(t, err)

		res, err := te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(12000), 100, 20000)
		require.NoError(t, err)
		assert.EqualValues(t, 2, res.VotesBought)
	})
}

func TestSellVotes(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *testEngine {
		t.Helper()
		te := getTestEngine(t, testConfig()).withDefaults()
		_, err := te.CreateMarket(ctx, "alice")
		require.NoError(t, err)
		_, err = te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(35499), 5, 0)
		require.NoError(t, err)
		return te
	}

	t.Run("a full sell-back returns exactly the funds spent", func(t *testing.T) {
		te := setup(t)

		res, err := te.SellVotes(ctx, "bob", 1, types.OutcomeTrust, 5)
		require.NoError(t, err)
		assert.EqualValues(t, 5, res.VotesSold)
		assert.True(t, res.Proceeds.EQUint64(35499))
		assert.True(t, res.ExitFee.IsZero())
		assert.True(t, res.Payout.EQUint64(35499))
		assert.True(t, res.NewPrice.EQUint64(5000))

		mkt, err := te.GetMarket(1)
		require.NoError(t, err)
		assert.EqualValues(t, 1, mkt.TrustVotes)
		assert.True(t, mkt.Reserve.EQUint64(10000))

		pos, err := te.GetUserVotes("bob", 1)
		require.NoError(t, err)
		assert.Zero(t, pos.TrustHeld)
	})

	t.Run("rejects selling more than held", func(t *testing.T) {
		te := setup(t)

		_, err := te.SellVotes(ctx, "bob", 1, types.OutcomeTrust, 6)
		assert.ErrorIs(t, err, types.ErrInsufficientVotesOwned)
	})

	t.Run("rejects selling the wrong outcome", func(t *testing.T) {
		te := setup(t)

		_, err := te.SellVotes(ctx, "bob", 1, types.OutcomeDistrust, 1)
		assert.ErrorIs(t, err, types.ErrInsufficientVotesOwned)
	})

	t.Run("rejects a zero count", func(t *testing.T) {
		te := setup(t)

		_, err := te.SellVotes(ctx, "bob", 1, types.OutcomeTrust, 0)
		assert.ErrorIs(t, err, types.ErrInsufficientVotesOwned)
	})

	t.Run("a holder that never traded leaves no trace on a failed sell", func(t *testing.T) {
		te := setup(t)

		_, err := te.SellVotes(ctx, "carol", 1, types.OutcomeTrust, 1)
		assert.ErrorIs(t, err, types.ErrInsufficientVotesOwned)

		holders, err := te.Participants(1)
		require.NoError(t, err)
		assert.Equal(t, []string{"bob"}, holders)
	})
}

// The curve is path dependent across outcomes: selling against a state that
// other trades reshaped can ask for more than the traders ever paid in. The
// reserve keeps its seed regardless, only graduation withdrawal releases it.
func TestSellNeverDrainsSeedLiquidity(t *testing.T) {
	ctx := context.Background()

	te := getTestEngine(t, testConfig()).withDefaults()
	_, err := te.CreateMarket(ctx, "alice")
	require.NoError(t, err)

	// bob 2 trust for 11666, carol 3 distrust for 11500: 23166 paid in
	_, err = te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(11666), 2, 0)
	require.NoError(t, err)
	_, err = te.BuyVotes(ctx, "carol", 1, types.OutcomeDistrust, num.NewUint(11500), 3, 0)
	require.NoError(t, err)

	// bob exits at the reshaped prices: 3333 + 2000
	res, err := te.SellVotes(ctx, "bob", 1, types.OutcomeTrust, 2)
	require.NoError(t, err)
	assert.True(t, res.Proceeds.EQUint64(5333))

	// carol's full exit would pay 19166 and leave the reserve at 8667,
	// below the 10000 seed
	_, err = te.SellVotes(ctx, "carol", 1, types.OutcomeDistrust, 3)
	assert.ErrorIs(t, err, types.ErrInsufficientFunds)

	mkt, err := te.GetMarket(1)
	require.NoError(t, err)
	assert.EqualValues(t, 4, mkt.DistrustVotes)
	assert.True(t, mkt.Reserve.EQUint64(27833))

	pos, err := te.GetUserVotes("carol", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, pos.DistrustHeld)

	// a smaller exit that keeps the seed intact goes through
	res, err = te.SellVotes(ctx, "carol", 1, types.OutcomeDistrust, 2)
	require.NoError(t, err)
	assert.True(t, res.Proceeds.EQUint64(14166))

	mkt, err = te.GetMarket(1)
	require.NoError(t, err)
	assert.True(t, mkt.Reserve.EQUint64(13667))

	// the last vote would again dip into the seed
	_, err = te.SellVotes(ctx, "carol", 1, types.OutcomeDistrust, 1)
	assert.ErrorIs(t, err, types.ErrInsufficientFunds)
}

func TestTradeFees(t *testing.T) {
	ctx := context.Background()

	// 1% entry, 2% exit, 0.5% donation
	cfg := testConfig()
	cfg.EntryFeeBps = 100
	cfg.ExitFeeBps = 200
	cfg.DonationBps = 50

	t.Run("entry fee and donation come off the funds sent", func(t *testing.T) {
		te := getTestEngine(t, cfg).withDefaults()
		_, err := te.CreateMarket(ctx, "alice")
		require.NoError(t, err)

		// fees: 100 entry, 50 donation, net 9850 buys one vote at 5000
		res, err := te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(10000), 1, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.VotesBought)
		assert.True(t, res.EntryFee.EQUint64(100))
		assert.True(t, res.Donation.EQUint64(50))
		assert.True(t, res.Cost.EQUint64(5000))
		assert.True(t, res.Refund.EQUint64(4850))

		// fundsSent == Cost + EntryFee + Donation + Refund
		total := num.Sum(res.Cost, res.EntryFee, res.Donation, res.Refund)
		assert.True(t, total.EQUint64(10000))

		// only the cost reaches the reserve
		mkt, err := te.GetMarket(1)
		require.NoError(t, err)
		assert.True(t, mkt.Reserve.EQUint64(15000))

		// the fee sink and the creator's escrow got their shares
		assert.True(t, te.ProtocolFeesAccrued("protocol-treasury").EQUint64(100))
		assert.True(t, te.escrow.Balance("alice").EQUint64(50))
	})

	t.Run("exit fee comes off the proceeds", func(t *testing.T) {
		te := getTestEngine(t, cfg).withDefaults()
		_, err := te.CreateMarket(ctx, "alice")
		require.NoError(t, err)
		// entry 120 and donation 60 leave 11820, buying 2 votes for 11666
		_, err = te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(12000), 2, 0)
		require.NoError(t, err)

		res, err := te.SellVotes(ctx, "bob", 1, types.OutcomeTrust, 1)
		require.NoError(t, err)
		// proceeds 6666, fee 2% = 133
		assert.True(t, res.Proceeds.EQUint64(6666))
		assert.True(t, res.ExitFee.EQUint64(133))
		assert.True(t, res.Payout.EQUint64(6533))
		assert.True(t, num.Sum(res.Payout, res.ExitFee).EQ(res.Proceeds))
	})

	t.Run("simulate matches the real trade without committing", func(t *testing.T) {
		te := getTestEngine(t, cfg).withDefaults()
		_, err := te.CreateMarket(ctx, "alice")
		require.NoError(t, err)

		sim, err := te.SimulateBuy("bob", 1, types.OutcomeTrust, num.NewUint(10000), 1, 0)
		require.NoError(t, err)

		mkt, err := te.GetMarket(1)
		require.NoError(t, err)
		assert.EqualValues(t, 1, mkt.TrustVotes, "simulation must not commit")

		real, err := te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(10000), 1, 0)
		require.NoError(t, err)
		assert.Equal(t, sim.VotesBought, real.VotesBought)
		assert.True(t, sim.Cost.EQ(real.Cost))
		assert.True(t, sim.EntryFee.EQ(real.EntryFee))
		assert.True(t, sim.Refund.EQ(real.Refund))

		simSell, err := te.SimulateSell("bob", 1, types.OutcomeTrust, 1)
		require.NoError(t, err)
		realSell, err := te.SellVotes(ctx, "bob", 1, types.OutcomeTrust, 1)
		require.NoError(t, err)
		assert.True(t, simSell.Payout.EQ(realSell.Payout))
	})
}

func TestMarketsAreIndependent(t *testing.T) {
	ctx := context.Background()
	te := getTestEngine(t, testConfig()).withDefaults()

	_, err := te.CreateMarket(ctx, "alice")
	require.NoError(t, err)
	_, err = te.CreateMarket(ctx, "bob")
	require.NoError(t, err)

	_, err = te.BuyVotes(ctx, "carol", 1, types.OutcomeDistrust, num.NewUint(12000), 2, 0)
	require.NoError(t, err)

	// bob's market is untouched
	mkt, err := te.GetMarket(2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, mkt.TrustVotes)
	assert.EqualValues(t, 1, mkt.DistrustVotes)
	assert.True(t, mkt.Reserve.EQUint64(10000))

	assert.Equal(t, 2, te.MarketCount())
	assert.ElementsMatch(t, []uint64{1, 2}, te.MarketProfileIDs())
}
