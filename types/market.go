package types

import (
	"fmt"

	"code.trustnet.io/repmarket/types/num"
)

// Outcome is the side of a reputation market a position is held on.
type Outcome uint8

const (
	// OutcomeTrust votes express belief in the profile's reputation.
	OutcomeTrust Outcome = iota
	// OutcomeDistrust votes express belief against it.
	OutcomeDistrust
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTrust:
		return "trust"
	case OutcomeDistrust:
		return "distrust"
	}
	return fmt.Sprintf("unknown(%d)", uint8(o))
}

// Opposite returns the complementary outcome.
func (o Outcome) Opposite() Outcome {
	if o == OutcomeTrust {
		return OutcomeDistrust
	}
	return OutcomeTrust
}

// ParseOutcome reads an outcome from its string form.
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "trust":
		return OutcomeTrust, nil
	case "distrust":
		return OutcomeDistrust, nil
	}
	return OutcomeTrust, fmt.Errorf("invalid outcome %q", s)
}

// MarketState is the lifecycle state of a market.
type MarketState uint8

const (
	MarketStateNonExistent MarketState = iota
	MarketStateActive
	MarketStateGraduated
)

func (s MarketState) String() string {
	switch s {
	case MarketStateNonExistent:
		return "non-existent"
	case MarketStateActive:
		return "active"
	case MarketStateGraduated:
		return "graduated"
	}
	return fmt.Sprintf("unknown(%d)", uint8(s))
}

// MarketConfig is a reusable seed template for new markets. Once a market is
// created from it the market keeps its own copy, so registry mutations never
// reach live markets.
type MarketConfig struct {
	// InitialLiquidity funds the reserve at creation and only ever leaves
	// through graduation withdrawal.
	InitialLiquidity *num.Uint
	// InitialVotes seeds both outcomes, and is the floor neither side's vote
	// count may ever go below while the market is active.
	InitialVotes uint64
}

func (c MarketConfig) Clone() MarketConfig {
	return MarketConfig{
		InitialLiquidity: c.InitialLiquidity.Clone(),
		InitialVotes:     c.InitialVotes,
	}
}

// Market is the per-profile trust/distrust bonding-curve instance.
type Market struct {
	ProfileID     uint64
	TrustVotes    uint64
	DistrustVotes uint64
	// Reserve is the funds backing the curve, seed liquidity included.
	Reserve   *num.Uint
	Graduated bool
	// Config is the market's own copy of the seed template it was created from.
	Config MarketConfig
}

// State maps the graduated flag onto the lifecycle enum.
func (m *Market) State() MarketState {
	if m == nil {
		return MarketStateNonExistent
	}
	if m.Graduated {
		return MarketStateGraduated
	}
	return MarketStateActive
}

// TotalVotes is never zero for a live market, creation seeds both sides.
func (m *Market) TotalVotes() uint64 {
	return m.TrustVotes + m.DistrustVotes
}

// Votes returns the count for the given outcome.
func (m *Market) Votes(o Outcome) uint64 {
	if o == OutcomeTrust {
		return m.TrustVotes
	}
	return m.DistrustVotes
}

// SetVotes overwrites the count for the given outcome.
func (m *Market) SetVotes(o Outcome, count uint64) {
	if o == OutcomeTrust {
		m.TrustVotes = count
		return
	}
	m.DistrustVotes = count
}

func (m *Market) Clone() *Market {
	if m == nil {
		return nil
	}
	cpy := *m
	cpy.Reserve = m.Reserve.Clone()
	cpy.Config = m.Config.Clone()
	return &cpy
}

// Participant is a holder's position in one market. Records are never
// deleted, holdings can reach zero.
type Participant struct {
	TrustHeld    uint64
	DistrustHeld uint64
}

// Held returns the holding for the given outcome.
func (p *Participant) Held(o Outcome) uint64 {
	if o == OutcomeTrust {
		return p.TrustHeld
	}
	return p.DistrustHeld
}

// SetHeld overwrites the holding for the given outcome.
func (p *Participant) SetHeld(o Outcome, count uint64) {
	if o == OutcomeTrust {
		p.TrustHeld = count
		return
	}
	p.DistrustHeld = count
}
