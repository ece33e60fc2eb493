package market_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

func TestGraduateMarket(t *testing.T) {
	ctx := context.Background()

	t.Run("graduation freezes trading both ways", func(t *testing.T) {
		te := getTestEngine(t, testConfig()).withDefaults()
		_, err := te.CreateMarket(ctx, "alice")
		require.NoError(t, err)
		_, err = te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(12000), 2, 0)
		require.NoError(t, err)

		require.NoError(t, te.GraduateMarket(ctx, "graduator", 1))

		mkt, err := te.GetMarket(1)
		require.NoError(t, err)
		assert.Equal(t, types.MarketStateGraduated, mkt.State())

		_, err = te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(12000), 1, 0)
		assert.ErrorIs(t, err, types.ErrInactiveMarket)
		_, err = te.SellVotes(ctx, "bob", 1, types.OutcomeTrust, 1)
		assert.ErrorIs(t, err, types.ErrInactiveMarket)

		// queries still work
		price, err := te.VotePrice(1, types.OutcomeTrust)
		require.NoError(t, err)
		assert.True(t, price.EQUint64(7500))
	})

	t.Run("graduation is terminal", func(t *testing.T) {
		te := getTestEngine(t, testConfig()).withDefaults()
		_, err := te.CreateMarket(ctx, "alice")
		require.NoError(t, err)

		require.NoError(t, te.GraduateMarket(ctx, "graduator", 1))
		err = te.GraduateMarket(ctx, "graduator", 1)
		assert.ErrorIs(t, err, types.ErrInactiveMarket)
	})

	t.Run("only the graduation role may graduate", func(t *testing.T) {
		te := getTestEngine(t, testConfig()).withDefaults()
		_, err := te.CreateMarket(ctx, "alice")
		require.NoError(t, err)

		err = te.GraduateMarket(ctx, "admin", 1)
		assert.ErrorIs(t, err, types.ErrUnauthorizedGraduation)
	})

	t.Run("unknown market", func(t *testing.T) {
		te := getTestEngine(t, testConfig()).withDefaults()

		err := te.GraduateMarket(ctx, "graduator", 9)
		assert.ErrorIs(t, err, types.ErrMarketDoesNotExist)
	})
}

func TestWithdrawGraduatedMarketFunds(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *testEngine {
		t.Helper()
		te := getTestEngine(t, testConfig()).withDefaults()
		_, err := te.CreateMarket(ctx, "alice")
		require.NoError(t, err)
		_, err = te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(12000), 2, 0)
		require.NoError(t, err)
		return te
	}

	t.Run("withdraws the whole reserve, seed included", func(t *testing.T) {
		te := setup(t)
		require.NoError(t, te.GraduateMarket(ctx, "graduator", 1))

		amount, err := te.WithdrawGraduatedMarketFunds(ctx, "graduator", 1)
		require.NoError(t, err)
		// 10000 seed + 11666 of trades
		assert.True(t, amount.EQUint64(21666))

		mkt, err := te.GetMarket(1)
		require.NoError(t, err)
		assert.True(t, mkt.Reserve.IsZero())
	})

	t.Run("a second withdrawal finds nothing", func(t *testing.T) {
		te := setup(t)
		require.NoError(t, te.GraduateMarket(ctx, "graduator", 1))
		_, err := te.WithdrawGraduatedMarketFunds(ctx, "graduator", 1)
		require.NoError(t, err)

		_, err = te.WithdrawGraduatedMarketFunds(ctx, "graduator", 1)
		assert.ErrorIs(t, err, types.ErrNoFundsToWithdraw)
	})

	t.Run("rejects withdrawal before graduation", func(t *testing.T) {
		te := setup(t)

		_, err := te.WithdrawGraduatedMarketFunds(ctx, "graduator", 1)
		assert.ErrorIs(t, err, types.ErrMarketNotGraduated)
	})

	t.Run("only the graduation role may withdraw", func(t *testing.T) {
		te := setup(t)
		require.NoError(t, te.GraduateMarket(ctx, "graduator", 1))

		_, err := te.WithdrawGraduatedMarketFunds(ctx, "admin", 1)
		assert.ErrorIs(t, err, types.ErrUnauthorizedWithdrawal)
	})
}

func TestDonationEscrow(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig()
	cfg.DonationBps = 100

	setup := func(t *testing.T) *testEngine {
		t.Helper()
		te := getTestEngine(t, cfg).withDefaults()
		_, err := te.CreateMarket(ctx, "alice")
		require.NoError(t, err)
		// 1% of 12000 = 120 donated, net 11880 buys 2 votes
		_, err = te.BuyVotes(ctx, "bob", 1, types.OutcomeTrust, num.NewUint(12000), 2, 0)
		require.NoError(t, err)
		return te
	}

	t.Run("donations accrue to the creator and pay out on demand", func(t *testing.T) {
		te := setup(t)
		assert.True(t, te.escrow.Balance("alice").EQUint64(120))

		amount, err := te.WithdrawDonations(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, amount.EQUint64(120))

		_, err = te.WithdrawDonations(ctx, "alice")
		assert.ErrorIs(t, err, types.ErrNoFundsToWithdraw)
	})

	t.Run("the recipient can move the escrow to another of their addresses", func(t *testing.T) {
		te := setup(t)

		require.NoError(t, te.UpdateDonationRecipient(ctx, "alice", 1, "alice-cold"))
		assert.Equal(t, "alice-cold", te.escrow.Recipient(1))
		// the balance follows the recipient
		assert.True(t, te.escrow.Balance("alice-cold").EQUint64(120))
		assert.True(t, te.escrow.Balance("alice").IsZero())

		// future donations accrue to the new address
		_, err := te.BuyVotes(ctx, "carol", 1, types.OutcomeDistrust, num.NewUint(6000), 1, 0)
		require.NoError(t, err)
		assert.True(t, te.escrow.Balance("alice-cold").EQUint64(180))
	})

	t.Run("the new address must resolve to the same profile", func(t *testing.T) {
		te := setup(t)

		err := te.UpdateDonationRecipient(ctx, "alice", 1, "bob")
		assert.ErrorIs(t, err, types.ErrUnauthorizedDonationUpdate)
	})

	t.Run("only the current recipient may update", func(t *testing.T) {
		te := setup(t)

		err := te.UpdateDonationRecipient(ctx, "bob", 1, "bob")
		assert.ErrorIs(t, err, types.ErrUnauthorizedDonationUpdate)
	})

	t.Run("rejects an empty recipient", func(t *testing.T) {
		te := setup(t)

		err := te.UpdateDonationRecipient(ctx, "alice", 1, "")
		assert.ErrorIs(t, err, types.ErrZeroAddressNotAllowed)
	})

	t.Run("rejects an unknown market", func(t *testing.T) {
		te := setup(t)

		err := te.UpdateDonationRecipient(ctx, "alice", 9, "alice-cold")
		assert.ErrorIs(t, err, types.ErrMarketDoesNotExist)
	})
}
