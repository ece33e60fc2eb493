package market

import (
	"context"

	"code.trustnet.io/repmarket/events"
	"code.trustnet.io/repmarket/logging"
	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

// The config registry stores reusable seed templates for new markets. It
// always retains at least one entry, and markets copy their template at
// creation so registry mutations never reach live markets.

func validateMarketConfig(cfg types.MarketConfig, minimumBasePrice *num.Uint) error {
	if cfg.InitialLiquidity == nil || cfg.InitialLiquidity.LT(minimumBasePrice) {
		return types.ErrInsufficientInitialLiquidity
	}
	if cfg.InitialVotes < 1 {
		return types.ErrInvalidMarketConfigOption
	}
	return nil
}

// AddMarketConfig appends a new seed template and returns its index.
// Admin only.
func (e *Engine) AddMarketConfig(ctx context.Context, caller string, initialLiquidity *num.Uint, initialVotes uint64) (int, error) {
	if err := e.requireAdmin(caller); err != nil {
		return 0, err
	}
	cfg := types.MarketConfig{
		InitialLiquidity: initialLiquidity.Clone(),
		InitialVotes:     initialVotes,
	}
	if err := validateMarketConfig(cfg, &e.cfg.MinimumBasePrice); err != nil {
		return 0, err
	}

	e.cfgMu.Lock()
	e.marketConfigs = append(e.marketConfigs, cfg)
	idx := len(e.marketConfigs) - 1
	e.cfgMu.Unlock()

	e.log.Info("market config added",
		logging.Int("index", idx),
		logging.BigUint("initial-liquidity", cfg.InitialLiquidity),
		logging.Uint64("initial-votes", cfg.InitialVotes))
	e.broker.Send(events.NewMarketConfigAddedEvent(ctx, idx, cfg))
	return idx, nil
}

// RemoveMarketConfig removes a seed template by index. The last remaining
// template can never be removed. Admin only.
func (e *Engine) RemoveMarketConfig(ctx context.Context, caller string, index int) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}

	e.cfgMu.Lock()
	if index < 0 || index >= len(e.marketConfigs) {
		e.cfgMu.Unlock()
		return types.ErrInvalidMarketConfigOption
	}
	if len(e.marketConfigs) <= 1 {
		e.cfgMu.Unlock()
		return types.ErrLastMarketConfig
	}
	removed := e.marketConfigs[index]
	e.marketConfigs = append(e.marketConfigs[:index], e.marketConfigs[index+1:]...)
	e.cfgMu.Unlock()

	e.log.Info("market config removed", logging.Int("index", index))
	e.broker.Send(events.NewMarketConfigRemovedEvent(ctx, index, removed))
	return nil
}

// MarketConfigs returns a copy of the registry in index order.
func (e *Engine) MarketConfigs() []types.MarketConfig {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	out := make([]types.MarketConfig, 0, len(e.marketConfigs))
	for _, c := range e.marketConfigs {
		out = append(out, c.Clone())
	}
	return out
}

func (e *Engine) marketConfig(index int) (types.MarketConfig, error) {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	if index < 0 || index >= len(e.marketConfigs) {
		return types.MarketConfig{}, types.ErrInvalidMarketConfigOption
	}
	return e.marketConfigs[index].Clone(), nil
}
