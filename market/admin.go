package market

import (
	"context"

	"code.trustnet.io/repmarket/events"
	"code.trustnet.io/repmarket/logging"
	"code.trustnet.io/repmarket/types"
)

// Admin operations mutating the shared fee and allowlist state. All of them
// validate the full resulting configuration before committing, so an invalid
// setter leaves the previous schedule untouched.

func (e *Engine) updateFees(ctx context.Context, caller string, mutate func(*types.FeeConfig)) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	e.cfgMu.Lock()
	next := e.fees.Clone()
	mutate(&next)
	if err := next.Validate(); err != nil {
		e.cfgMu.Unlock()
		return err
	}
	e.fees = next
	e.cfgMu.Unlock()

	e.log.Info("fee config updated",
		logging.Uint64("entry-bps", next.EntryBps),
		logging.Uint64("exit-bps", next.ExitBps),
		logging.Uint64("donation-bps", next.DonationBps),
		logging.String("protocol-fee-address", next.ProtocolFeeAddress))
	e.broker.Send(events.NewFeesUpdatedEvent(ctx, next))
	return nil
}

// SetEntryProtocolFeeBasisPoints sets the fee share taken from funds sent
// into a buy.
func (e *Engine) SetEntryProtocolFeeBasisPoints(ctx context.Context, caller string, bps uint64) error {
	return e.updateFees(ctx, caller, func(f *types.FeeConfig) { f.EntryBps = bps })
}

// SetExitProtocolFeeBasisPoints sets the fee share taken from sell proceeds.
func (e *Engine) SetExitProtocolFeeBasisPoints(ctx context.Context, caller string, bps uint64) error {
	return e.updateFees(ctx, caller, func(f *types.FeeConfig) { f.ExitBps = bps })
}

// SetDonationBasisPoints sets the share of buy funds routed to the market's
// donation recipient.
func (e *Engine) SetDonationBasisPoints(ctx context.Context, caller string, bps uint64) error {
	return e.updateFees(ctx, caller, func(f *types.FeeConfig) { f.DonationBps = bps })
}

// SetProtocolFeeAddress points entry and exit fees at a new sink.
func (e *Engine) SetProtocolFeeAddress(ctx context.Context, caller, address string) error {
	if address == "" {
		return types.ErrZeroAddressNotAllowed
	}
	return e.updateFees(ctx, caller, func(f *types.FeeConfig) { f.ProtocolFeeAddress = address })
}

// FeeConfig returns the current fee schedule.
func (e *Engine) FeeConfig() types.FeeConfig {
	return e.feeSnapshot()
}

// SetAllowListEnforcement toggles allowlist checks on market creation.
func (e *Engine) SetAllowListEnforcement(caller string, enforced bool) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	e.cfgMu.Lock()
	e.allowListEnforced = enforced
	e.cfgMu.Unlock()
	e.log.Info("allowlist enforcement set", logging.Bool("enforced", enforced))
	return nil
}

// SetUserAllowedToCreateMarket flags a profile as allowed (or not) to create
// its market while enforcement is on.
func (e *Engine) SetUserAllowedToCreateMarket(caller string, profileID uint64, allowed bool) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	e.cfgMu.Lock()
	e.allowed[profileID] = allowed
	e.cfgMu.Unlock()
	e.log.Info("market creation allowance set",
		logging.Uint64("profile-id", profileID),
		logging.Bool("allowed", allowed))
	return nil
}

// IsAllowedToCreateMarket applies the allowlist policy for a profile.
// With enforcement off everyone passes.
func (e *Engine) IsAllowedToCreateMarket(profileID uint64) bool {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	if !e.allowListEnforced {
		return true
	}
	return e.allowed[profileID]
}
