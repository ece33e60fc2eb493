// Package market is the reputation-market engine: one trust/distrust
// bonding-curve market per profile, with fee extraction, slippage
// protection, lifecycle control and a solvency-preserving funds ledger.
// Trading is the only path that mutates a market, and every operation
// either commits in full or fails with no state change.
package market

import (
	"sync"

	"code.trustnet.io/repmarket/curve"
	"code.trustnet.io/repmarket/escrow"
	"code.trustnet.io/repmarket/events"
	"code.trustnet.io/repmarket/logging"
	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

// ProfileRegistry resolves caller addresses to profile ids. It is an
// external collaborator, the engine never stores profile data itself.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/profile_registry_mock.go -package mocks code.trustnet.io/repmarket/market ProfileRegistry
type ProfileRegistry interface {
	// ResolveProfile returns the profile id owned by an address, or an
	// error when the address has none.
	ResolveProfile(address string) (uint64, error)
	// IsArchived reports whether the profile has been archived.
	IsArchived(profileID uint64) bool
}

// AccessGate provides role checks and the global pause switch. Roles are an
// external collaborator decision, the engine only consults them.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/access_gate_mock.go -package mocks code.trustnet.io/repmarket/market AccessGate
type AccessGate interface {
	IsPaused() bool
	IsAdmin(party string) bool
	IsOwner(party string) bool
	// IsGraduator reports whether the party holds the market graduation role.
	IsGraduator(party string) bool
}

//go:generate go run github.com/golang/mock/mockgen -destination mocks/broker_mock.go -package mocks code.trustnet.io/repmarket/market Broker
type Broker interface {
	Send(event events.Event)
	SendBatch(evts []events.Event)
}

// marketRecord pairs a market with its participants and its own lock, so
// trades on different profiles proceed concurrently.
type marketRecord struct {
	mu      sync.Mutex
	mkt     *types.Market
	holders map[string]*types.Participant
	// holderKeys preserves first-trade order for enumeration. Holders are
	// never removed, holdings can only reach zero.
	holderKeys []string
}

func (r *marketRecord) participant(holder string) *types.Participant {
	p, ok := r.holders[holder]
	if !ok {
		p = &types.Participant{}
		r.holders[holder] = p
		r.holderKeys = append(r.holderKeys, holder)
	}
	return p
}

// Engine is the market engine.
type Engine struct {
	log *logging.Logger
	cfg Config

	profiles ProfileRegistry
	gate     AccessGate
	broker   Broker
	curve    *curve.Engine
	escrow   *escrow.Engine

	// cfgMu serializes admin writes to the shared configuration against the
	// snapshot every trade takes of it.
	cfgMu             sync.RWMutex
	fees              types.FeeConfig
	marketConfigs     []types.MarketConfig
	allowListEnforced bool
	allowed           map[uint64]bool

	// mktMu guards the market map, each record carries its own lock.
	mktMu   sync.RWMutex
	markets map[uint64]*marketRecord

	// feesAccrued tracks, per sink address, the protocol fees collected so
	// far. Fee funds leave custody the moment they accrue, the engine keeps
	// the running total for reconciliation.
	feesAccrued map[string]*num.Uint
}

// New returns a market engine wired to its external collaborators. The
// config registry is seeded with one default entry so creation always has a
// template to fall back on.
func New(log *logging.Logger, cfg Config, profiles ProfileRegistry, gate AccessGate, broker Broker, esc *escrow.Engine) (*Engine, error) {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	curveEngine, err := curve.New(&cfg.PriceMaximum)
	if err != nil {
		return nil, err
	}

	fees := types.FeeConfig{
		EntryBps:           cfg.EntryFeeBps,
		ExitBps:            cfg.ExitFeeBps,
		DonationBps:        cfg.DonationBps,
		ProtocolFeeAddress: cfg.ProtocolFeeAddress,
	}
	if err := fees.Validate(); err != nil {
		return nil, err
	}

	defaultConfig := types.MarketConfig{
		InitialLiquidity: cfg.PriceMaximum.Clone(),
		InitialVotes:     cfg.DefaultInitialVotes,
	}
	if err := validateMarketConfig(defaultConfig, &cfg.MinimumBasePrice); err != nil {
		return nil, err
	}

	return &Engine{
		log:               log,
		cfg:               cfg,
		profiles:          profiles,
		gate:              gate,
		broker:            broker,
		curve:             curveEngine,
		escrow:            esc,
		fees:              fees,
		marketConfigs:     []types.MarketConfig{defaultConfig},
		allowListEnforced: bool(cfg.AllowListEnforced),
		allowed:           map[uint64]bool{},
		markets:           map[uint64]*marketRecord{},
		feesAccrued:       map[string]*num.Uint{},
	}, nil
}

// ReloadConf updates the internal configuration of the engine. Only the log
// level is hot-reloadable, economic settings change through admin operations.
func (e *Engine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		e.log.SetLevel(cfg.Level.Get())
	}
	e.cfg.Level = cfg.Level
}

// feeSnapshot returns the fee schedule to apply for one operation. Trades
// read it once, up front, so an admin update mid-batch can never split an
// operation across two schedules.
func (e *Engine) feeSnapshot() types.FeeConfig {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	return e.fees.Clone()
}

func (e *Engine) accrueProtocolFee(sink string, amount *num.Uint) {
	if amount.IsZero() {
		return
	}
	e.cfgMu.Lock()
	defer e.cfgMu.Unlock()
	bal, ok := e.feesAccrued[sink]
	if !ok {
		bal = num.UintZero()
		e.feesAccrued[sink] = bal
	}
	bal.AddSum(amount)
}

// ProtocolFeesAccrued returns the running fee total for a sink address.
func (e *Engine) ProtocolFeesAccrued(sink string) *num.Uint {
	e.cfgMu.RLock()
	defer e.cfgMu.RUnlock()
	bal, ok := e.feesAccrued[sink]
	if !ok {
		return num.UintZero()
	}
	return bal.Clone()
}

func (e *Engine) record(profileID uint64) (*marketRecord, error) {
	e.mktMu.RLock()
	defer e.mktMu.RUnlock()
	r, ok := e.markets[profileID]
	if !ok {
		return nil, types.ErrMarketDoesNotExist
	}
	return r, nil
}

func (e *Engine) requireAdmin(caller string) error {
	if e.gate.IsAdmin(caller) || e.gate.IsOwner(caller) {
		return nil
	}
	return types.ErrUnauthorizedAdminAction
}

func (e *Engine) requireNotPaused() error {
	if e.gate.IsPaused() {
		return types.ErrPaused
	}
	return nil
}
