package market

import (
	"context"
	"time"

	"code.trustnet.io/repmarket/curve"
	"code.trustnet.io/repmarket/events"
	"code.trustnet.io/repmarket/logging"
	"code.trustnet.io/repmarket/metrics"
	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

// BuyResult is the full accounting of a buy:
// fundsSent == Cost + EntryFee + Donation + Refund, always.
type BuyResult struct {
	VotesBought uint64
	Cost        *num.Uint
	EntryFee    *num.Uint
	Donation    *num.Uint
	Refund      *num.Uint
	// NewPrice is the marginal price of the bought outcome after the trade.
	NewPrice *num.Uint
	// MinPrice and MaxPrice bound the per-unit prices charged.
	MinPrice *num.Uint
	MaxPrice *num.Uint
}

// SellResult is the full accounting of a sell:
// Proceeds == Payout + ExitFee, and the reserve decreased by Proceeds.
type SellResult struct {
	VotesSold uint64
	Proceeds  *num.Uint
	ExitFee   *num.Uint
	Payout    *num.Uint
	NewPrice  *num.Uint
	MinPrice  *num.Uint
	MaxPrice  *num.Uint
}

func curveState(mkt *types.Market) curve.State {
	return curve.State{
		TrustVotes:    mkt.TrustVotes,
		DistrustVotes: mkt.DistrustVotes,
		FloorVotes:    mkt.Config.InitialVotes,
	}
}

func (e *Engine) pricePair(mkt *types.Market) (trust, distrust *num.Uint) {
	s := curveState(mkt)
	return e.curve.MarginalPrice(s, types.OutcomeTrust), e.curve.MarginalPrice(s, types.OutcomeDistrust)
}

// computeBuy runs the fee extraction, curve integration and slippage check
// of a buy against the given market state, without committing anything.
func (e *Engine) computeBuy(mkt *types.Market, fees types.FeeConfig, outcome types.Outcome, fundsSent *num.Uint, expectedVotes, slippageBps uint64) (*BuyResult, error) {
	if mkt.Graduated {
		return nil, types.ErrInactiveMarket
	}
	entryFee := types.FeeOf(fundsSent, fees.EntryBps)
	donation := types.FeeOf(fundsSent, fees.DonationBps)
	// the fee cap guarantees fees never exceed funds sent
	net := num.UintZero().Sub(fundsSent, num.Sum(entryFee, donation))

	state := curveState(mkt)
	bought, cost := e.curve.MaxAffordable(state, outcome, net)
	if bought == 0 {
		return nil, types.ErrInsufficientFunds
	}

	// tolerated minimum rounds down, a zero tolerance demands every vote
	tolerance := slippageBps
	if tolerance > types.BasisPoints {
		tolerance = types.BasisPoints
	}
	minVotes := num.UintZero().Mul(num.NewUint(expectedVotes), num.NewUint(types.BasisPoints-tolerance))
	minVotes.Div(minVotes, num.NewUint(types.BasisPoints))
	if minVotes.GTUint64(bought) {
		return nil, &types.SlippageLimitExceededError{
			ActualVotes:   bought,
			ExpectedVotes: expectedVotes,
			SlippageBps:   slippageBps,
		}
	}

	quote := e.curve.CostToBuy(state, outcome, bought)
	after := mkt.Clone()
	after.SetVotes(outcome, after.Votes(outcome)+bought)

	return &BuyResult{
		VotesBought: bought,
		Cost:        cost,
		EntryFee:    entryFee,
		Donation:    donation,
		Refund:      num.UintZero().Sub(net, cost),
		NewPrice:    e.curve.MarginalPrice(curveState(after), outcome),
		MinPrice:    quote.MinPrice,
		MaxPrice:    quote.MaxPrice,
	}, nil
}

// computeSell runs the floor check, curve integration and fee extraction of
// a sell against the given state, without committing anything.
func (e *Engine) computeSell(mkt *types.Market, holding *types.Participant, fees types.FeeConfig, outcome types.Outcome, count uint64) (*SellResult, error) {
	if mkt.Graduated {
		return nil, types.ErrInactiveMarket
	}
	if count == 0 || holding.Held(outcome) < count {
		return nil, types.ErrInsufficientVotesOwned
	}
	quote, err := e.curve.ProceedsFromSell(curveState(mkt), outcome, count)
	if err != nil {
		return nil, types.ErrInsufficientVotesToSell
	}
	// the curve is path dependent across outcomes, so the vote floor alone
	// does not protect the reserve: a sell may only pay out of the excess
	// above the seed, which leaves through graduation withdrawal alone
	if mkt.Reserve.LT(num.Sum(mkt.Config.InitialLiquidity, quote.Funds)) {
		return nil, types.ErrInsufficientFunds
	}
	exitFee := types.FeeOf(quote.Funds, fees.ExitBps)

	after := mkt.Clone()
	after.SetVotes(outcome, after.Votes(outcome)-count)

	return &SellResult{
		VotesSold: count,
		Proceeds:  quote.Funds,
		ExitFee:   exitFee,
		Payout:    num.UintZero().Sub(quote.Funds, exitFee),
		NewPrice:  e.curve.MarginalPrice(curveState(after), outcome),
		MinPrice:  quote.MinPrice,
		MaxPrice:  quote.MaxPrice,
	}, nil
}

// BuyVotes buys as many whole votes of an outcome as the funds sent allow
// after fees, refunding the remainder. It fails without state change when
// the market is missing or graduated, when not even one vote is affordable,
// or when the slippage tolerance is breached.
func (e *Engine) BuyVotes(ctx context.Context, caller string, profileID uint64, outcome types.Outcome, fundsSent *num.Uint, expectedVotes, slippageBps uint64) (*BuyResult, error) {
	defer metrics.EngineTimeCounterAdd(time.Now(), "buy")
	if err := e.requireNotPaused(); err != nil {
		return nil, err
	}
	fees := e.feeSnapshot()
	r, err := e.record(profileID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	prevTrust, prevDistrust := r.mkt.TrustVotes, r.mkt.DistrustVotes
	res, err := e.computeBuy(r.mkt, fees, outcome, fundsSent, expectedVotes, slippageBps)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}

	// commit
	r.mkt.SetVotes(outcome, r.mkt.Votes(outcome)+res.VotesBought)
	r.mkt.Reserve.AddSum(res.Cost)
	p := r.participant(caller)
	p.SetHeld(outcome, p.Held(outcome)+res.VotesBought)
	trustVotes, distrustVotes := r.mkt.TrustVotes, r.mkt.DistrustVotes
	trustPrice, distrustPrice := e.pricePair(r.mkt)
	r.mu.Unlock()

	e.accrueProtocolFee(fees.ProtocolFeeAddress, res.EntryFee)
	if !e.escrow.Accrue(profileID, res.Donation) {
		// never strand the donation share
		e.accrueProtocolFee(fees.ProtocolFeeAddress, res.Donation)
	}

	if e.log.GetLevel() == logging.DebugLevel {
		e.log.Debug("votes bought",
			logging.Uint64("profile-id", profileID),
			logging.String("buyer", caller),
			logging.String("outcome", outcome.String()),
			logging.Uint64("votes", res.VotesBought),
			logging.BigUint("cost", res.Cost),
			logging.BigUint("refund", res.Refund))
	}
	metrics.TradeCountInc("buy", outcome.String())
	metrics.VoteVolumeAdd("buy", outcome.String(), res.VotesBought)

	e.broker.SendBatch([]events.Event{
		events.NewVotesBoughtEvent(ctx, profileID, caller, outcome,
			res.VotesBought, res.Cost, res.EntryFee, res.Donation, res.Refund, res.NewPrice),
		events.NewMarketUpdatedEvent(ctx, profileID,
			prevTrust, prevDistrust, trustVotes, distrustVotes, trustPrice, distrustPrice),
	})
	return res, nil
}

// SellVotes sells count votes of an outcome back to the curve, paying the
// caller the proceeds minus the exit fee. It fails without state change when
// the holding is too small or when the sale would breach the seeded floor.
func (e *Engine) SellVotes(ctx context.Context, caller string, profileID uint64, outcome types.Outcome, count uint64) (*SellResult, error) {
	defer metrics.EngineTimeCounterAdd(time.Now(), "sell")
	if err := e.requireNotPaused(); err != nil {
		return nil, err
	}
	fees := e.feeSnapshot()
	r, err := e.record(profileID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	prevTrust, prevDistrust := r.mkt.TrustVotes, r.mkt.DistrustVotes
	// look up without creating, a failed sell must leave no trace
	holding, ok := r.holders[caller]
	if !ok {
		holding = &types.Participant{}
	}
	res, err := e.computeSell(r.mkt, holding, fees, outcome, count)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}

	// commit
	r.mkt.SetVotes(outcome, r.mkt.Votes(outcome)-count)
	r.mkt.Reserve.Sub(r.mkt.Reserve, res.Proceeds)
	holding.SetHeld(outcome, holding.Held(outcome)-count)
	trustVotes, distrustVotes := r.mkt.TrustVotes, r.mkt.DistrustVotes
	trustPrice, distrustPrice := e.pricePair(r.mkt)
	r.mu.Unlock()

	e.accrueProtocolFee(fees.ProtocolFeeAddress, res.ExitFee)

	if e.log.GetLevel() == logging.DebugLevel {
		e.log.Debug("votes sold",
			logging.Uint64("profile-id", profileID),
			logging.String("seller", caller),
			logging.String("outcome", outcome.String()),
			logging.Uint64("votes", count),
			logging.BigUint("payout", res.Payout))
	}
	metrics.TradeCountInc("sell", outcome.String())
	metrics.VoteVolumeAdd("sell", outcome.String(), count)

	e.broker.SendBatch([]events.Event{
		events.NewVotesSoldEvent(ctx, profileID, caller, outcome,
			count, res.Proceeds, res.ExitFee, res.Payout, res.NewPrice),
		events.NewMarketUpdatedEvent(ctx, profileID,
			prevTrust, prevDistrust, trustVotes, distrustVotes, trustPrice, distrustPrice),
	})
	return res, nil
}
