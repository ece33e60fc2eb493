package market

import (
	"context"

	"code.trustnet.io/repmarket/events"
	"code.trustnet.io/repmarket/logging"
	"code.trustnet.io/repmarket/metrics"
	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

// CreateMarket creates the caller's own market from the default seed
// template (registry index 0).
func (e *Engine) CreateMarket(ctx context.Context, caller string) (*types.Market, error) {
	return e.CreateMarketWithConfig(ctx, caller, 0)
}

// CreateMarketWithConfig creates the caller's own market from the seed
// template at the given registry index. Subject to the allowlist when
// enforcement is on, unless the caller holds the admin or owner role.
func (e *Engine) CreateMarketWithConfig(ctx context.Context, caller string, configIndex int) (*types.Market, error) {
	if err := e.requireNotPaused(); err != nil {
		return nil, err
	}
	profileID, err := e.profiles.ResolveProfile(caller)
	if err != nil {
		return nil, types.ErrInvalidProfileID
	}
	if !e.IsAllowedToCreateMarket(profileID) && !e.gate.IsAdmin(caller) && !e.gate.IsOwner(caller) {
		return nil, &types.MarketCreationUnauthorizedError{
			Reason:    types.ReasonProfileNotAuthorized,
			Caller:    caller,
			ProfileID: profileID,
		}
	}
	return e.create(ctx, profileID, caller, configIndex)
}

// CreateMarketWithConfigAdmin is the privileged creation path: an admin
// creates the market belonging to marketOwner. The owner's resolved profile
// must exist and the allowlist still binds the target profile.
func (e *Engine) CreateMarketWithConfigAdmin(ctx context.Context, caller, marketOwner string, configIndex int) (*types.Market, error) {
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := e.requireNotPaused(); err != nil {
		return nil, err
	}
	profileID, err := e.profiles.ResolveProfile(marketOwner)
	if err != nil {
		return nil, &types.MarketCreationUnauthorizedError{
			Reason: types.ReasonProfileMismatch,
			Caller: marketOwner,
		}
	}
	if !e.IsAllowedToCreateMarket(profileID) {
		return nil, &types.MarketCreationUnauthorizedError{
			Reason:    types.ReasonProfileNotAuthorized,
			Caller:    marketOwner,
			ProfileID: profileID,
		}
	}
	return e.create(ctx, profileID, marketOwner, configIndex)
}

func (e *Engine) create(ctx context.Context, profileID uint64, creator string, configIndex int) (*types.Market, error) {
	if e.profiles.IsArchived(profileID) {
		return nil, types.ErrInvalidProfileID
	}
	cfg, err := e.marketConfig(configIndex)
	if err != nil {
		return nil, err
	}

	e.mktMu.Lock()
	if _, ok := e.markets[profileID]; ok {
		e.mktMu.Unlock()
		return nil, types.ErrMarketAlreadyExists
	}
	mkt := &types.Market{
		ProfileID:     profileID,
		TrustVotes:    cfg.InitialVotes,
		DistrustVotes: cfg.InitialVotes,
		Reserve:       cfg.InitialLiquidity.Clone(),
		Config:        cfg,
	}
	e.markets[profileID] = &marketRecord{
		mkt:     mkt,
		holders: map[string]*types.Participant{},
	}
	e.mktMu.Unlock()

	e.escrow.SetRecipient(profileID, creator)
	metrics.MarketGaugeAdd(1, types.MarketStateActive.String())

	e.log.Info("market created",
		logging.Uint64("profile-id", profileID),
		logging.String("creator", creator),
		logging.BigUint("initial-liquidity", cfg.InitialLiquidity),
		logging.Uint64("initial-votes", cfg.InitialVotes))

	trustPrice, distrustPrice := e.pricePair(mkt)
	e.broker.SendBatch([]events.Event{
		events.NewMarketCreatedEvent(ctx, mkt, creator),
		events.NewMarketUpdatedEvent(ctx, profileID,
			0, 0, mkt.TrustVotes, mkt.DistrustVotes, trustPrice, distrustPrice),
	})
	return mkt.Clone(), nil
}

// GraduateMarket moves a market to its terminal state, freezing all trading.
// Only the graduation role may call it.
func (e *Engine) GraduateMarket(ctx context.Context, caller string, profileID uint64) error {
	if !e.gate.IsGraduator(caller) {
		return types.ErrUnauthorizedGraduation
	}
	r, err := e.record(profileID)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.mkt.Graduated {
		r.mu.Unlock()
		return types.ErrInactiveMarket
	}
	r.mkt.Graduated = true
	r.mu.Unlock()

	metrics.MarketGaugeAdd(-1, types.MarketStateActive.String())
	metrics.MarketGaugeAdd(1, types.MarketStateGraduated.String())
	e.log.Info("market graduated",
		logging.Uint64("profile-id", profileID),
		logging.String("caller", caller))
	e.broker.Send(events.NewMarketGraduatedEvent(ctx, profileID, caller))
	return nil
}

// WithdrawGraduatedMarketFunds transfers the entire reserve of a graduated
// market, seed liquidity included, to the graduation role. This is the only
// path by which seed liquidity ever leaves the system.
func (e *Engine) WithdrawGraduatedMarketFunds(ctx context.Context, caller string, profileID uint64) (*num.Uint, error) {
	if !e.gate.IsGraduator(caller) {
		return nil, types.ErrUnauthorizedWithdrawal
	}
	r, err := e.record(profileID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if !r.mkt.Graduated {
		r.mu.Unlock()
		return nil, types.ErrMarketNotGraduated
	}
	if r.mkt.Reserve.IsZero() {
		r.mu.Unlock()
		return nil, types.ErrNoFundsToWithdraw
	}
	amount := r.mkt.Reserve.Clone()
	r.mkt.Reserve = num.UintZero()
	r.mu.Unlock()

	e.log.Info("graduated market funds withdrawn",
		logging.Uint64("profile-id", profileID),
		logging.String("caller", caller),
		logging.BigUint("amount", amount))
	e.broker.Send(events.NewFundsWithdrawnEvent(ctx, profileID, caller, amount))
	return amount, nil
}

// UpdateDonationRecipient moves a market's donation escrow to a new address.
// Only the current recipient may call it, and the new address must resolve
// to the same profile so the escrow cannot be redirected off-profile.
func (e *Engine) UpdateDonationRecipient(ctx context.Context, caller string, profileID uint64, newRecipient string) error {
	if _, err := e.record(profileID); err != nil {
		return err
	}
	if newRecipient == "" {
		return types.ErrZeroAddressNotAllowed
	}
	callerProfile, err := e.profiles.ResolveProfile(caller)
	if err != nil {
		return types.ErrInvalidProfileID
	}
	newProfile, err := e.profiles.ResolveProfile(newRecipient)
	if err != nil || newProfile != callerProfile {
		return types.ErrUnauthorizedDonationUpdate
	}
	previous, err := e.escrow.UpdateRecipient(profileID, caller, newRecipient)
	if err != nil {
		return err
	}
	e.broker.Send(events.NewDonationRecipientUpdatedEvent(ctx, profileID, previous, newRecipient))
	return nil
}

// WithdrawDonations pays out the caller's accumulated donation escrow,
// independent of any market state.
func (e *Engine) WithdrawDonations(ctx context.Context, caller string) (*num.Uint, error) {
	amount, err := e.escrow.Withdraw(caller)
	if err != nil {
		return nil, err
	}
	e.broker.Send(events.NewDonationWithdrawnEvent(ctx, caller, amount))
	return amount, nil
}
