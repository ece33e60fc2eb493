package market

import (
	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

// SimulateBuy previews a buy without committing anything: same fee
// extraction, curve integration and slippage check as BuyVotes, run against
// a copy of the market state. Callers use it to pick expectedVotes and
// slippageBps before submitting the real trade.
func (e *Engine) SimulateBuy(caller string, profileID uint64, outcome types.Outcome, fundsSent *num.Uint, expectedVotes, slippageBps uint64) (*BuyResult, error) {
	fees := e.feeSnapshot()
	r, err := e.record(profileID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	mkt := r.mkt.Clone()
	r.mu.Unlock()

	return e.computeBuy(mkt, fees, outcome, fundsSent, expectedVotes, slippageBps)
}

// SimulateSell previews a sell without committing anything.
func (e *Engine) SimulateSell(caller string, profileID uint64, outcome types.Outcome, count uint64) (*SellResult, error) {
	fees := e.feeSnapshot()
	r, err := e.record(profileID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	mkt := r.mkt.Clone()
	holding := types.Participant{}
	if p, ok := r.holders[caller]; ok {
		holding = *p
	}
	r.mu.Unlock()

	return e.computeSell(mkt, &holding, fees, outcome, count)
}
