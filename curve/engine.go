// Package curve implements the constant-sum bonding curve used to price
// trust and distrust votes. Everything here is a pure function of the vote
// counts passed in, the engine holds nothing but the price ceiling.
package curve

import (
	"github.com/pkg/errors"

	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

var (
	// ErrZeroPriceMaximum signals an engine constructed with no price ceiling.
	ErrZeroPriceMaximum = errors.New("price maximum must not be zero")
	// ErrBelowVoteFloor signals a sell that would breach the seeded votes.
	ErrBelowVoteFloor = errors.New("sell would reduce votes below the seeded floor")
)

// State is the slice of market state the curve needs. FloorVotes is the
// market's seeded vote count, the level neither side may drop below.
type State struct {
	TrustVotes    uint64
	DistrustVotes uint64
	FloorVotes    uint64
}

func (s State) votes(o types.Outcome) uint64 {
	if o == types.OutcomeTrust {
		return s.TrustVotes
	}
	return s.DistrustVotes
}

func (s State) total() uint64 {
	return s.TrustVotes + s.DistrustVotes
}

func (s State) bump(o types.Outcome, delta int64) State {
	if o == types.OutcomeTrust {
		s.TrustVotes = uint64(int64(s.TrustVotes) + delta)
	} else {
		s.DistrustVotes = uint64(int64(s.DistrustVotes) + delta)
	}
	return s
}

// Quote is the result of integrating the curve over a trade: the total funds
// moved and the lowest and highest marginal price traversed.
type Quote struct {
	Funds    *num.Uint
	MinPrice *num.Uint
	MaxPrice *num.Uint
}

// Engine computes marginal prices and trade quotes. The price of an outcome
// is priceMaximum × votes(outcome) / totalVotes, so the two outcome prices
// always sum to the ceiling.
type Engine struct {
	priceMaximum *num.Uint
}

// New returns a curve engine with the given price ceiling.
func New(priceMaximum *num.Uint) (*Engine, error) {
	if priceMaximum == nil || priceMaximum.IsZero() {
		return nil, ErrZeroPriceMaximum
	}
	return &Engine{priceMaximum: priceMaximum.Clone()}, nil
}

// PriceMaximum returns the ceiling both outcome prices sum to.
func (e *Engine) PriceMaximum() *num.Uint {
	return e.priceMaximum.Clone()
}

// MarginalPrice is the price of one more vote for the outcome at the given
// counts. Integer division rounds toward zero. The counts of a live market
// are never both zero, both sides are seeded at creation.
func (e *Engine) MarginalPrice(s State, outcome types.Outcome) *num.Uint {
	p := num.UintZero().Mul(e.priceMaximum, num.NewUint(s.votes(outcome)))
	return p.Div(p, num.NewUint(s.total()))
}

// CostToBuy integrates the curve over a buy of count votes, charging each
// unit the marginal price before its increment. The discrete loop is the
// pricing source of truth: votes are indivisible and per-unit floor division
// keeps the sum exactly consistent with what a sequence of single-vote buys
// would pay.
func (e *Engine) CostToBuy(s State, outcome types.Outcome, count uint64) Quote {
	cost := num.UintZero()
	price := e.MarginalPrice(s, outcome)
	minPrice, maxPrice := price.Clone(), price.Clone()
	for i := uint64(0); i < count; i++ {
		cost.AddSum(price)
		if price.LT(minPrice) {
			minPrice = price.Clone()
		}
		if price.GT(maxPrice) {
			maxPrice = price.Clone()
		}
		s = s.bump(outcome, 1)
		price = e.MarginalPrice(s, outcome)
	}
	return Quote{Funds: cost, MinPrice: minPrice, MaxPrice: maxPrice}
}

// ProceedsFromSell integrates the curve over a sell of count votes, paying
// each unit the marginal price after its decrement. This mirrors CostToBuy
// exactly, so a fee-free round trip returns precisely the funds spent.
func (e *Engine) ProceedsFromSell(s State, outcome types.Outcome, count uint64) (Quote, error) {
	if s.votes(outcome) < s.FloorVotes+count {
		return Quote{}, ErrBelowVoteFloor
	}
	proceeds := num.UintZero()
	price := e.MarginalPrice(s, outcome)
	minPrice, maxPrice := price.Clone(), price.Clone()
	for i := uint64(0); i < count; i++ {
		s = s.bump(outcome, -1)
		price = e.MarginalPrice(s, outcome)
		proceeds.AddSum(price)
		if price.LT(minPrice) {
			minPrice = price.Clone()
		}
		if price.GT(maxPrice) {
			maxPrice = price.Clone()
		}
	}
	return Quote{Funds: proceeds, MinPrice: minPrice, MaxPrice: maxPrice}, nil
}

// MaxAffordable returns the greatest vote count whose cost fits the budget,
// with the exact cost of that count. The loop terminates because each unit
// costs at least one wei once prices are non-zero, and a zero marginal price
// cannot fund further iterations against a non-zero ceiling in any state a
// live market can reach.
func (e *Engine) MaxAffordable(s State, outcome types.Outcome, budget *num.Uint) (uint64, *num.Uint) {
	var bought uint64
	spent := num.UintZero()
	price := e.MarginalPrice(s, outcome)
	for {
		if price.IsZero() {
			break
		}
		next := num.Sum(spent, price)
		if next.GT(budget) {
			break
		}
		spent = next
		bought++
		s = s.bump(outcome, 1)
		price = e.MarginalPrice(s, outcome)
	}
	return bought, spent
}
