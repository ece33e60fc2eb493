package curve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.trustnet.io/repmarket/curve"
	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

func newTestEngine(t *testing.T) *curve.Engine {
	t.Helper()
	e, err := curve.New(num.NewUint(10000))
	require.NoError(t, err)
	return e
}

func TestNew(t *testing.T) {
	t.Run("rejects a zero price ceiling", func(t *testing.T) {
		_, err := curve.New(num.UintZero())
		assert.ErrorIs(t, err, curve.ErrZeroPriceMaximum)

		_, err = curve.New(nil)
		assert.ErrorIs(t, err, curve.ErrZeroPriceMaximum)
	})

	t.Run("clones the ceiling", func(t *testing.T) {
		pm := num.NewUint(10000)
		e, err := curve.New(pm)
		require.NoError(t, err)
		pm.AddSum(num.NewUint(1))
		assert.True(t, e.PriceMaximum().EQ(num.NewUint(10000)))
	})
}

func TestMarginalPrice(t *testing.T) {
	e := newTestEngine(t)

	cases := []struct {
		name            string
		trust, distrust uint64
		wantTrust       uint64
		wantDistrust    uint64
	}{
		{"balanced", 1, 1, 5000, 5000},
		{"trust heavy", 3, 1, 7500, 2500},
		{"floor rounding", 1, 2, 3333, 6666},
		{"large skew", 99, 1, 9900, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := curve.State{TrustVotes: tc.trust, DistrustVotes: tc.distrust, FloorVotes: 1}
			assert.True(t, e.MarginalPrice(s, types.OutcomeTrust).EQUint64(tc.wantTrust))
			assert.True(t, e.MarginalPrice(s, types.OutcomeDistrust).EQUint64(tc.wantDistrust))
		})
	}
}

func TestPriceComplementarity(t *testing.T) {
	e := newTestEngine(t)
	ceiling := num.NewUint(10000)

	// the two outcome prices always sum to the ceiling, less at most the
	// two integer-division remainders
	for trust := uint64(1); trust <= 25; trust++ {
		for distrust := uint64(1); distrust <= 25; distrust++ {
			s := curve.State{TrustVotes: trust, DistrustVotes: distrust, FloorVotes: 1}
			sum := num.Sum(
				e.MarginalPrice(s, types.OutcomeTrust),
				e.MarginalPrice(s, types.OutcomeDistrust),
			)
			assert.True(t, sum.LTE(ceiling))
			assert.True(t, sum.GTE(num.UintZero().Sub(ceiling, num.NewUint(1))),
				"trust=%d distrust=%d sum=%s", trust, distrust, sum)
		}
	}
}

func TestCostToBuy(t *testing.T) {
	e := newTestEngine(t)
	s := curve.State{TrustVotes: 1, DistrustVotes: 1, FloorVotes: 1}

	// each unit pays the marginal price before its own increment:
	// 5000 + 6666 + 7500 + 8000 + 8333
	q := e.CostToBuy(s, types.OutcomeTrust, 5)
	assert.True(t, q.Funds.EQUint64(35499), "got %s", q.Funds)
	assert.True(t, q.MinPrice.EQUint64(5000))
	assert.True(t, q.MaxPrice.EQUint64(8333))

	t.Run("matches a sequence of single buys", func(t *testing.T) {
		total := num.UintZero()
		state := s
		for i := 0; i < 5; i++ {
			total.AddSum(e.CostToBuy(state, types.OutcomeTrust, 1).Funds)
			state.TrustVotes++
		}
		assert.True(t, total.EQ(q.Funds))
	})

	t.Run("zero count costs nothing", func(t *testing.T) {
		q := e.CostToBuy(s, types.OutcomeTrust, 0)
		assert.True(t, q.Funds.IsZero())
	})

	t.Run("buying raises the price", func(t *testing.T) {
		before := e.MarginalPrice(s, types.OutcomeTrust)
		after := e.MarginalPrice(curve.State{TrustVotes: 6, DistrustVotes: 1, FloorVotes: 1}, types.OutcomeTrust)
		assert.True(t, after.GT(before))
	})
}

func TestProceedsFromSell(t *testing.T) {
	e := newTestEngine(t)

	t.Run("mirrors the buy exactly", func(t *testing.T) {
		s := curve.State{TrustVotes: 6, DistrustVotes: 1, FloorVotes: 1}
		q, err := e.ProceedsFromSell(s, types.OutcomeTrust, 5)
		require.NoError(t, err)
		assert.True(t, q.Funds.EQUint64(35499), "got %s", q.Funds)
	})

	t.Run("rejects a sell breaching the floor", func(t *testing.T) {
		s := curve.State{TrustVotes: 1, DistrustVotes: 1, FloorVotes: 1}
		_, err := e.ProceedsFromSell(s, types.OutcomeTrust, 1)
		assert.ErrorIs(t, err, curve.ErrBelowVoteFloor)

		s = curve.State{TrustVotes: 3, DistrustVotes: 1, FloorVotes: 1}
		_, err = e.ProceedsFromSell(s, types.OutcomeTrust, 3)
		assert.ErrorIs(t, err, curve.ErrBelowVoteFloor)
	})

	t.Run("sell down to the floor is allowed", func(t *testing.T) {
		s := curve.State{TrustVotes: 3, DistrustVotes: 1, FloorVotes: 1}
		_, err := e.ProceedsFromSell(s, types.OutcomeTrust, 2)
		assert.NoError(t, err)
	})
}

func TestRoundTrip(t *testing.T) {
	e := newTestEngine(t)

	// a fee-free buy and full sell-back must return exactly the funds
	// spent, whatever the starting state
	states := []curve.State{
		{TrustVotes: 1, DistrustVotes: 1, FloorVotes: 1},
		{TrustVotes: 7, DistrustVotes: 2, FloorVotes: 2},
		{TrustVotes: 3, DistrustVotes: 40, FloorVotes: 3},
	}
	for _, s := range states {
		for count := uint64(1); count <= 10; count++ {
			buy := e.CostToBuy(s, types.OutcomeDistrust, count)
			after := curve.State{
				TrustVotes:    s.TrustVotes,
				DistrustVotes: s.DistrustVotes + count,
				FloorVotes:    s.FloorVotes,
			}
			sell, err := e.ProceedsFromSell(after, types.OutcomeDistrust, count)
			require.NoError(t, err)
			assert.True(t, sell.Funds.EQ(buy.Funds),
				"state=%+v count=%d buy=%s sell=%s", s, count, buy.Funds, sell.Funds)
		}
	}
}

func TestMaxAffordable(t *testing.T) {
	e := newTestEngine(t)
	s := curve.State{TrustVotes: 1, DistrustVotes: 1, FloorVotes: 1}

	t.Run("buys as much as the budget covers", func(t *testing.T) {
		// 5000 + 6666 = 11666 fits, the next unit at 7500 does not
		bought, spent := e.MaxAffordable(s, types.OutcomeTrust, num.NewUint(12000))
		assert.EqualValues(t, 2, bought)
		assert.True(t, spent.EQUint64(11666))
	})

	t.Run("exact budget", func(t *testing.T) {
		bought, spent := e.MaxAffordable(s, types.OutcomeTrust, num.NewUint(11666))
		assert.EqualValues(t, 2, bought)
		assert.True(t, spent.EQUint64(11666))
	})

	t.Run("budget below one unit buys nothing", func(t *testing.T) {
		bought, spent := e.MaxAffordable(s, types.OutcomeTrust, num.NewUint(4999))
		assert.Zero(t, bought)
		assert.True(t, spent.IsZero())
	})

	t.Run("never exceeds the budget", func(t *testing.T) {
		for budget := uint64(0); budget < 50000; budget += 1731 {
			b := num.NewUint(budget)
			bought, spent := e.MaxAffordable(s, types.OutcomeTrust, b)
			assert.True(t, spent.LTE(b))
			cost := e.CostToBuy(s, types.OutcomeTrust, bought)
			assert.True(t, cost.Funds.EQ(spent))
		}
	})
}
