package events

import (
	"context"
	"fmt"

	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

type MarketCreated struct {
	*Base
	m       types.Market
	creator string
}

func NewMarketCreatedEvent(ctx context.Context, m *types.Market, creator string) *MarketCreated {
	return &MarketCreated{
		Base:    newBase(ctx, MarketCreatedEvent),
		m:       *m.Clone(),
		creator: creator,
	}
}

func (e MarketCreated) ProfileID() uint64    { return e.m.ProfileID }
func (e MarketCreated) Market() types.Market { return e.m }
func (e MarketCreated) Creator() string      { return e.creator }
func (e MarketCreated) MarketEvent() string {
	return fmt.Sprintf("market created for profile %d by %s", e.m.ProfileID, e.creator)
}

// MarketUpdated carries the before/after vote counts and prices of a trade
// so indexers can rebuild the price series without replaying the curve.
type MarketUpdated struct {
	*Base
	profileID         uint64
	trustVotes        uint64
	distrustVotes     uint64
	trustPrice        *num.Uint
	distrustPrice     *num.Uint
	prevTrustVotes    uint64
	prevDistrustVotes uint64
}

func NewMarketUpdatedEvent(ctx context.Context, profileID, prevTrust, prevDistrust, trust, distrust uint64, trustPrice, distrustPrice *num.Uint) *MarketUpdated {
	return &MarketUpdated{
		Base:              newBase(ctx, MarketUpdatedEvent),
		profileID:         profileID,
		trustVotes:        trust,
		distrustVotes:     distrust,
		trustPrice:        trustPrice.Clone(),
		distrustPrice:     distrustPrice.Clone(),
		prevTrustVotes:    prevTrust,
		prevDistrustVotes: prevDistrust,
	}
}

func (e MarketUpdated) ProfileID() uint64         { return e.profileID }
func (e MarketUpdated) TrustVotes() uint64        { return e.trustVotes }
func (e MarketUpdated) DistrustVotes() uint64     { return e.distrustVotes }
func (e MarketUpdated) PrevTrustVotes() uint64    { return e.prevTrustVotes }
func (e MarketUpdated) PrevDistrustVotes() uint64 { return e.prevDistrustVotes }
func (e MarketUpdated) TrustPrice() *num.Uint     { return e.trustPrice.Clone() }
func (e MarketUpdated) DistrustPrice() *num.Uint  { return e.distrustPrice.Clone() }
func (e MarketUpdated) MarketEvent() string {
	return fmt.Sprintf("market %d updated: trust %d @ %s, distrust %d @ %s",
		e.profileID, e.trustVotes, e.trustPrice, e.distrustVotes, e.distrustPrice)
}

type MarketGraduated struct {
	*Base
	profileID uint64
	caller    string
}

func NewMarketGraduatedEvent(ctx context.Context, profileID uint64, caller string) *MarketGraduated {
	return &MarketGraduated{
		Base:      newBase(ctx, MarketGraduatedEvent),
		profileID: profileID,
		caller:    caller,
	}
}

func (e MarketGraduated) ProfileID() uint64 { return e.profileID }
func (e MarketGraduated) Caller() string    { return e.caller }
func (e MarketGraduated) MarketEvent() string {
	return fmt.Sprintf("market %d graduated by %s", e.profileID, e.caller)
}

type FundsWithdrawn struct {
	*Base
	profileID uint64
	caller    string
	amount    *num.Uint
}

func NewFundsWithdrawnEvent(ctx context.Context, profileID uint64, caller string, amount *num.Uint) *FundsWithdrawn {
	return &FundsWithdrawn{
		Base:      newBase(ctx, FundsWithdrawnEvent),
		profileID: profileID,
		caller:    caller,
		amount:    amount.Clone(),
	}
}

func (e FundsWithdrawn) ProfileID() uint64 { return e.profileID }
func (e FundsWithdrawn) Caller() string    { return e.caller }
func (e FundsWithdrawn) Amount() *num.Uint { return e.amount.Clone() }
func (e FundsWithdrawn) MarketEvent() string {
	return fmt.Sprintf("graduated market %d reserve %s withdrawn by %s", e.profileID, e.amount, e.caller)
}
