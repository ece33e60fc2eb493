package market

import (
	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

// GetMarket returns a copy of the market for a profile.
func (e *Engine) GetMarket(profileID uint64) (*types.Market, error) {
	r, err := e.record(profileID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mkt.Clone(), nil
}

// VotePrice returns the current marginal price of one more vote for the
// outcome.
func (e *Engine) VotePrice(profileID uint64, outcome types.Outcome) (*num.Uint, error) {
	r, err := e.record(profileID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return e.curve.MarginalPrice(curveState(r.mkt), outcome), nil
}

// GetUserVotes returns the holder's position in a market. Holders that never
// traded get a zero position, not an error.
func (e *Engine) GetUserVotes(holder string, profileID uint64) (types.Participant, error) {
	r, err := e.record(profileID)
	if err != nil {
		return types.Participant{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.holders[holder]; ok {
		return *p, nil
	}
	return types.Participant{}, nil
}

// ParticipantCount returns the number of distinct holders that ever traded
// the market. Participants are never removed, holdings can reach zero.
func (e *Engine) ParticipantCount(profileID uint64) (int, error) {
	r, err := e.record(profileID)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.holderKeys), nil
}

// Participants returns the holder addresses of a market in first-trade order.
func (e *Engine) Participants(profileID uint64) ([]string, error) {
	r, err := e.record(profileID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.holderKeys))
	copy(out, r.holderKeys)
	return out, nil
}

// MarketCount returns the number of markets ever created.
func (e *Engine) MarketCount() int {
	e.mktMu.RLock()
	defer e.mktMu.RUnlock()
	return len(e.markets)
}

// MarketProfileIDs lists the profile ids with a market, in no fixed order.
func (e *Engine) MarketProfileIDs() []uint64 {
	e.mktMu.RLock()
	defer e.mktMu.RUnlock()
	out := make([]uint64, 0, len(e.markets))
	for id := range e.markets {
		out = append(out, id)
	}
	return out
}
