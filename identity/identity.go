// Package identity provides the standalone node's party services: a profile
// registry mapping party addresses onto profile IDs, and an access gate
// deciding role checks and the global pause switch.
package identity

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"code.trustnet.io/repmarket/logging"
)

// ErrEmptyAddress is returned when a profile lookup is attempted with no
// address.
var ErrEmptyAddress = errors.New("empty address")

// Registry assigns profile IDs to party addresses on first sight. IDs are
// sequential from 1 and stable for the lifetime of the registry, or across
// restarts when restored from a checkpoint.
type Registry struct {
	log *logging.Logger

	mu        sync.RWMutex
	next      uint64
	byAddress map[string]uint64
	archived  map[uint64]bool
}

// NewRegistry returns an empty registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		log:       log.Named(namedLogger),
		next:      1,
		byAddress: map[string]uint64{},
		archived:  map[uint64]bool{},
	}
}

// ResolveProfile returns the profile ID for the address, assigning the next
// free ID on first sight.
func (r *Registry) ResolveProfile(address string) (uint64, error) {
	if len(address) == 0 {
		return 0, ErrEmptyAddress
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byAddress[address]; ok {
		return id, nil
	}
	id := r.next
	r.next++
	r.byAddress[address] = id
	r.log.Debug("profile registered",
		logging.String("address", address),
		logging.Uint64("profile-id", id))
	return id, nil
}

// IsArchived reports whether the profile has been archived.
func (r *Registry) IsArchived(profileID uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.archived[profileID]
}

// Archive marks the profile as archived. Archived profiles cannot have
// markets created for them.
func (r *Registry) Archive(profileID uint64, archived bool) {
	r.mu.Lock()
	r.archived[profileID] = archived
	r.mu.Unlock()
}

// State is the serialisable form of the registry.
type State struct {
	Next     uint64            `json:"next"`
	Profiles map[string]uint64 `json:"profiles"`
	Archived []uint64          `json:"archived"`
}

// Checkpoint captures the registry state.
func (r *Registry) Checkpoint() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profiles := make(map[string]uint64, len(r.byAddress))
	for addr, id := range r.byAddress {
		profiles[addr] = id
	}
	archived := make([]uint64, 0, len(r.archived))
	for id, a := range r.archived {
		if a {
			archived = append(archived, id)
		}
	}
	sort.Slice(archived, func(i, j int) bool { return archived[i] < archived[j] })
	return State{
		Next:     r.next,
		Profiles: profiles,
		Archived: archived,
	}
}

// Load replaces the registry state with a checkpoint.
func (r *Registry) Load(state State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next = state.Next
	if r.next == 0 {
		r.next = 1
	}
	r.byAddress = make(map[string]uint64, len(state.Profiles))
	for addr, id := range state.Profiles {
		r.byAddress[addr] = id
	}
	r.archived = make(map[uint64]bool, len(state.Archived))
	for _, id := range state.Archived {
		r.archived[id] = true
	}
}

// Gate answers role checks from a static configuration plus a runtime pause
// switch.
type Gate struct {
	mu         sync.RWMutex
	owner      string
	admins     map[string]bool
	graduators map[string]bool
	paused     bool
}

// NewGate builds a gate from the configured role assignments.
func NewGate(cfg Config) *Gate {
	g := &Gate{
		owner:      cfg.Owner,
		admins:     make(map[string]bool, len(cfg.Admins)),
		graduators: make(map[string]bool, len(cfg.Graduators)),
		paused:     cfg.Paused,
	}
	for _, a := range cfg.Admins {
		g.admins[a] = true
	}
	for _, gr := range cfg.Graduators {
		g.graduators[gr] = true
	}
	return g
}

// IsPaused reports whether trading and market creation are paused.
func (g *Gate) IsPaused() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.paused
}

// SetPaused flips the pause switch.
func (g *Gate) SetPaused(paused bool) {
	g.mu.Lock()
	g.paused = paused
	g.mu.Unlock()
}

// IsOwner reports whether the party holds the owner role.
func (g *Gate) IsOwner(party string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(party) > 0 && party == g.owner
}

// IsAdmin reports whether the party holds the admin role.
func (g *Gate) IsAdmin(party string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.admins[party]
}

// IsGraduator reports whether the party may graduate markets and withdraw
// graduated reserves.
func (g *Gate) IsGraduator(party string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.graduators[party]
}
