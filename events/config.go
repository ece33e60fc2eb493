package events

import (
	"context"
	"fmt"

	"code.trustnet.io/repmarket/types"
)

type MarketConfigAdded struct {
	*Base
	index int
	cfg   types.MarketConfig
}

func NewMarketConfigAddedEvent(ctx context.Context, index int, cfg types.MarketConfig) *MarketConfigAdded {
	return &MarketConfigAdded{
		Base:  newBase(ctx, MarketConfigAddedEvent),
		index: index,
		cfg:   cfg.Clone(),
	}
}

func (e MarketConfigAdded) Index() int                 { return e.index }
func (e MarketConfigAdded) Config() types.MarketConfig { return e.cfg.Clone() }
func (e MarketConfigAdded) MarketEvent() string {
	return fmt.Sprintf("market config %d added: liquidity %s, votes %d",
		e.index, e.cfg.InitialLiquidity, e.cfg.InitialVotes)
}

type MarketConfigRemoved struct {
	*Base
	index int
	cfg   types.MarketConfig
}

func NewMarketConfigRemovedEvent(ctx context.Context, index int, cfg types.MarketConfig) *MarketConfigRemoved {
	return &MarketConfigRemoved{
		Base:  newBase(ctx, MarketConfigRemovedEvent),
		index: index,
		cfg:   cfg.Clone(),
	}
}

func (e MarketConfigRemoved) Index() int                 { return e.index }
func (e MarketConfigRemoved) Config() types.MarketConfig { return e.cfg.Clone() }
func (e MarketConfigRemoved) MarketEvent() string {
	return fmt.Sprintf("market config %d removed", e.index)
}

type FeesUpdated struct {
	*Base
	fees types.FeeConfig
}

func NewFeesUpdatedEvent(ctx context.Context, fees types.FeeConfig) *FeesUpdated {
	return &FeesUpdated{
		Base: newBase(ctx, FeesUpdatedEvent),
		fees: fees.Clone(),
	}
}

func (e FeesUpdated) Fees() types.FeeConfig { return e.fees.Clone() }
func (e FeesUpdated) MarketEvent() string {
	return fmt.Sprintf("fee config updated: entry %d bps, exit %d bps, donation %d bps, sink %s",
		e.fees.EntryBps, e.fees.ExitBps, e.fees.DonationBps, e.fees.ProtocolFeeAddress)
}
