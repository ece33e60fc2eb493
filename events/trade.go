package events

import (
	"context"
	"fmt"

	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

// VotesBought is emitted once per successful buy.
type VotesBought struct {
	*Base
	profileID uint64
	buyer     string
	outcome   types.Outcome
	votes     uint64
	cost      *num.Uint
	entryFee  *num.Uint
	donation  *num.Uint
	refund    *num.Uint
	newPrice  *num.Uint
}

func NewVotesBoughtEvent(ctx context.Context, profileID uint64, buyer string, outcome types.Outcome, votes uint64, cost, entryFee, donation, refund, newPrice *num.Uint) *VotesBought {
	return &VotesBought{
		Base:      newBase(ctx, VotesBoughtEvent),
		profileID: profileID,
		buyer:     buyer,
		outcome:   outcome,
		votes:     votes,
		cost:      cost.Clone(),
		entryFee:  entryFee.Clone(),
		donation:  donation.Clone(),
		refund:    refund.Clone(),
		newPrice:  newPrice.Clone(),
	}
}

func (e VotesBought) ProfileID() uint64      { return e.profileID }
func (e VotesBought) Buyer() string          { return e.buyer }
func (e VotesBought) Outcome() types.Outcome { return e.outcome }
func (e VotesBought) Votes() uint64          { return e.votes }
func (e VotesBought) Cost() *num.Uint        { return e.cost.Clone() }
func (e VotesBought) EntryFee() *num.Uint    { return e.entryFee.Clone() }
func (e VotesBought) Donation() *num.Uint    { return e.donation.Clone() }
func (e VotesBought) Refund() *num.Uint      { return e.refund.Clone() }
func (e VotesBought) NewPrice() *num.Uint    { return e.newPrice.Clone() }
func (e VotesBought) MarketEvent() string {
	return fmt.Sprintf("%s bought %d %s votes on market %d for %s",
		e.buyer, e.votes, e.outcome, e.profileID, e.cost)
}

// VotesSold is emitted once per successful sell.
type VotesSold struct {
	*Base
	profileID uint64
	seller    string
	outcome   types.Outcome
	votes     uint64
	proceeds  *num.Uint
	exitFee   *num.Uint
	payout    *num.Uint
	newPrice  *num.Uint
}

func NewVotesSoldEvent(ctx context.Context, profileID uint64, seller string, outcome types.Outcome, votes uint64, proceeds, exitFee, payout, newPrice *num.Uint) *VotesSold {
	return &VotesSold{
		Base:      newBase(ctx, VotesSoldEvent),
		profileID: profileID,
		seller:    seller,
		outcome:   outcome,
		votes:     votes,
		proceeds:  proceeds.Clone(),
		exitFee:   exitFee.Clone(),
		payout:    payout.Clone(),
		newPrice:  newPrice.Clone(),
	}
}

func (e VotesSold) ProfileID() uint64      { return e.profileID }
func (e VotesSold) Seller() string         { return e.seller }
func (e VotesSold) Outcome() types.Outcome { return e.outcome }
func (e VotesSold) Votes() uint64          { return e.votes }
func (e VotesSold) Proceeds() *num.Uint    { return e.proceeds.Clone() }
func (e VotesSold) ExitFee() *num.Uint     { return e.exitFee.Clone() }
func (e VotesSold) Payout() *num.Uint      { return e.payout.Clone() }
func (e VotesSold) NewPrice() *num.Uint    { return e.newPrice.Clone() }
func (e VotesSold) MarketEvent() string {
	return fmt.Sprintf("%s sold %d %s votes on market %d for %s",
		e.seller, e.votes, e.outcome, e.profileID, e.payout)
}
