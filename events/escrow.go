package events

import (
	"context"
	"fmt"

	"code.trustnet.io/repmarket/types/num"
)

type DonationRecipientUpdated struct {
	*Base
	profileID uint64
	previous  string
	current   string
}

func NewDonationRecipientUpdatedEvent(ctx context.Context, profileID uint64, previous, current string) *DonationRecipientUpdated {
	return &DonationRecipientUpdated{
		Base:      newBase(ctx, DonationRecipientUpdatedEvent),
		profileID: profileID,
		previous:  previous,
		current:   current,
	}
}

func (e DonationRecipientUpdated) ProfileID() uint64 { return e.profileID }
func (e DonationRecipientUpdated) Previous() string  { return e.previous }
func (e DonationRecipientUpdated) Current() string   { return e.current }
func (e DonationRecipientUpdated) MarketEvent() string {
	return fmt.Sprintf("donation recipient for market %d changed from %s to %s",
		e.profileID, e.previous, e.current)
}

type DonationWithdrawn struct {
	*Base
	recipient string
	amount    *num.Uint
}

func NewDonationWithdrawnEvent(ctx context.Context, recipient string, amount *num.Uint) *DonationWithdrawn {
	return &DonationWithdrawn{
		Base:      newBase(ctx, DonationWithdrawnEvent),
		recipient: recipient,
		amount:    amount.Clone(),
	}
}

func (e DonationWithdrawn) Recipient() string { return e.recipient }
func (e DonationWithdrawn) Amount() *num.Uint { return e.amount.Clone() }
func (e DonationWithdrawn) MarketEvent() string {
	return fmt.Sprintf("%s withdrew %s from donation escrow", e.recipient, e.amount)
}
