package market

import (
	"encoding/json"
	"sort"

	"code.trustnet.io/repmarket/escrow"
	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

// Checkpoint payload types. Field names are part of the on-disk format,
// renaming them breaks restores.

type marketConfigState struct {
	InitialLiquidity *num.Uint `json:"initialLiquidity"`
	InitialVotes     uint64    `json:"initialVotes"`
}

type participantState struct {
	Holder       string `json:"holder"`
	TrustHeld    uint64 `json:"trustHeld"`
	DistrustHeld uint64 `json:"distrustHeld"`
}

type marketState struct {
	ProfileID     uint64             `json:"profileId"`
	TrustVotes    uint64             `json:"trustVotes"`
	DistrustVotes uint64             `json:"distrustVotes"`
	Reserve       *num.Uint          `json:"reserve"`
	Graduated     bool               `json:"graduated"`
	Config        marketConfigState  `json:"config"`
	Participants  []participantState `json:"participants"`
}

type feeState struct {
	EntryBps           uint64 `json:"entryBps"`
	ExitBps            uint64 `json:"exitBps"`
	DonationBps        uint64 `json:"donationBps"`
	ProtocolFeeAddress string `json:"protocolFeeAddress"`
}

type checkpointState struct {
	Fees              feeState             `json:"fees"`
	FeesAccrued       map[string]*num.Uint `json:"feesAccrued"`
	MarketConfigs     []marketConfigState  `json:"marketConfigs"`
	AllowListEnforced bool                 `json:"allowListEnforced"`
	Allowed           map[uint64]bool      `json:"allowed"`
	Markets           []marketState        `json:"markets"`
	Escrow            escrow.State         `json:"escrow"`
}

// Checkpoint serializes the full engine state, escrow included, so a node
// can restart without replaying its trade history.
func (e *Engine) Checkpoint() ([]byte, error) {
	e.cfgMu.RLock()
	cp := checkpointState{
		Fees: feeState{
			EntryBps:           e.fees.EntryBps,
			ExitBps:            e.fees.ExitBps,
			DonationBps:        e.fees.DonationBps,
			ProtocolFeeAddress: e.fees.ProtocolFeeAddress,
		},
		FeesAccrued:       make(map[string]*num.Uint, len(e.feesAccrued)),
		MarketConfigs:     make([]marketConfigState, 0, len(e.marketConfigs)),
		AllowListEnforced: e.allowListEnforced,
		Allowed:           make(map[uint64]bool, len(e.allowed)),
	}
	for k, v := range e.feesAccrued {
		cp.FeesAccrued[k] = v.Clone()
	}
	for _, c := range e.marketConfigs {
		cp.MarketConfigs = append(cp.MarketConfigs, marketConfigState{
			InitialLiquidity: c.InitialLiquidity.Clone(),
			InitialVotes:     c.InitialVotes,
		})
	}
	for k, v := range e.allowed {
		cp.Allowed[k] = v
	}
	e.cfgMu.RUnlock()

	e.mktMu.RLock()
	cp.Markets = make([]marketState, 0, len(e.markets))
	for _, r := range e.markets {
		r.mu.Lock()
		ms := marketState{
			ProfileID:     r.mkt.ProfileID,
			TrustVotes:    r.mkt.TrustVotes,
			DistrustVotes: r.mkt.DistrustVotes,
			Reserve:       r.mkt.Reserve.Clone(),
			Graduated:     r.mkt.Graduated,
			Config: marketConfigState{
				InitialLiquidity: r.mkt.Config.InitialLiquidity.Clone(),
				InitialVotes:     r.mkt.Config.InitialVotes,
			},
			Participants: make([]participantState, 0, len(r.holderKeys)),
		}
		for _, holder := range r.holderKeys {
			p := r.holders[holder]
			ms.Participants = append(ms.Participants, participantState{
				Holder:       holder,
				TrustHeld:    p.TrustHeld,
				DistrustHeld: p.DistrustHeld,
			})
		}
		r.mu.Unlock()
		cp.Markets = append(cp.Markets, ms)
	}
	e.mktMu.RUnlock()

	// deterministic output
	sort.Slice(cp.Markets, func(i, j int) bool {
		return cp.Markets[i].ProfileID < cp.Markets[j].ProfileID
	})

	cp.Escrow = e.escrow.Checkpoint()
	return json.Marshal(cp)
}

// Load restores a checkpoint, replacing all engine and escrow state.
func (e *Engine) Load(data []byte) error {
	cp := checkpointState{}
	if err := json.Unmarshal(data, &cp); err != nil {
		return err
	}

	fees := types.FeeConfig{
		EntryBps:           cp.Fees.EntryBps,
		ExitBps:            cp.Fees.ExitBps,
		DonationBps:        cp.Fees.DonationBps,
		ProtocolFeeAddress: cp.Fees.ProtocolFeeAddress,
	}
	if err := fees.Validate(); err != nil {
		return err
	}

	configs := make([]types.MarketConfig, 0, len(cp.MarketConfigs))
	for _, c := range cp.MarketConfigs {
		cfg := types.MarketConfig{
			InitialLiquidity: c.InitialLiquidity.Clone(),
			InitialVotes:     c.InitialVotes,
		}
		if err := validateMarketConfig(cfg, &e.cfg.MinimumBasePrice); err != nil {
			return err
		}
		configs = append(configs, cfg)
	}
	if len(configs) == 0 {
		return types.ErrInvalidMarketConfigOption
	}

	markets := make(map[uint64]*marketRecord, len(cp.Markets))
	for _, ms := range cp.Markets {
		r := &marketRecord{
			mkt: &types.Market{
				ProfileID:     ms.ProfileID,
				TrustVotes:    ms.TrustVotes,
				DistrustVotes: ms.DistrustVotes,
				Reserve:       ms.Reserve.Clone(),
				Graduated:     ms.Graduated,
				Config: types.MarketConfig{
					InitialLiquidity: ms.Config.InitialLiquidity.Clone(),
					InitialVotes:     ms.Config.InitialVotes,
				},
			},
			holders: make(map[string]*types.Participant, len(ms.Participants)),
		}
		for _, p := range ms.Participants {
			r.holders[p.Holder] = &types.Participant{
				TrustHeld:    p.TrustHeld,
				DistrustHeld: p.DistrustHeld,
			}
			r.holderKeys = append(r.holderKeys, p.Holder)
		}
		markets[ms.ProfileID] = r
	}

	e.cfgMu.Lock()
	e.fees = fees
	e.marketConfigs = configs
	e.allowListEnforced = cp.AllowListEnforced
	e.allowed = make(map[uint64]bool, len(cp.Allowed))
	for k, v := range cp.Allowed {
		e.allowed[k] = v
	}
	e.feesAccrued = make(map[string]*num.Uint, len(cp.FeesAccrued))
	for k, v := range cp.FeesAccrued {
		e.feesAccrued[k] = v.Clone()
	}
	e.cfgMu.Unlock()

	e.mktMu.Lock()
	e.markets = markets
	e.mktMu.Unlock()

	e.escrow.Load(cp.Escrow)
	return nil
}
