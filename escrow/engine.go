// Package escrow holds the donation fee share of trades until the per-market
// donation recipient withdraws it. Escrow balances live outside the market
// reserve, a graduation never touches them.
package escrow

import (
	"sync"

	"code.trustnet.io/repmarket/logging"
	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

const namedLogger = "escrow"

// Engine keeps the recipient registered for each market and the balance
// accrued for each recipient address.
type Engine struct {
	log *logging.Logger

	mu         sync.RWMutex
	recipients map[uint64]string
	balances   map[string]*num.Uint
}

func New(log *logging.Logger) *Engine {
	return &Engine{
		log:        log.Named(namedLogger),
		recipients: map[uint64]string{},
		balances:   map[string]*num.Uint{},
	}
}

// SetRecipient registers the donation recipient for a market. Called at
// market creation with the creator address, and again on recipient updates.
func (e *Engine) SetRecipient(profileID uint64, recipient string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recipients[profileID] = recipient
}

// Recipient returns the current donation recipient for a market.
func (e *Engine) Recipient(profileID uint64) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.recipients[profileID]
}

// Accrue credits a market's donation share to its current recipient. The
// return says whether the amount was credited, a market without a registered
// recipient cannot accept donations and the caller must route the share
// elsewhere rather than strand it.
func (e *Engine) Accrue(profileID uint64, amount *num.Uint) bool {
	if amount.IsZero() {
		return true
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	recipient, ok := e.recipients[profileID]
	if !ok || recipient == "" {
		e.log.Warn("donation accrued for market without recipient",
			logging.Uint64("profile-id", profileID))
		return false
	}
	bal, ok := e.balances[recipient]
	if !ok {
		bal = num.UintZero()
		e.balances[recipient] = bal
	}
	bal.AddSum(amount)
	return true
}

// Balance returns the withdrawable balance for a recipient address.
func (e *Engine) Balance(recipient string) *num.Uint {
	e.mu.RLock()
	defer e.mu.RUnlock()
	bal, ok := e.balances[recipient]
	if !ok {
		return num.UintZero()
	}
	return bal.Clone()
}

// UpdateRecipient moves a market's escrow to a new recipient. Only the
// current recipient may do this, and the accumulated balance follows the
// registration so nothing is stranded on the old address.
func (e *Engine) UpdateRecipient(profileID uint64, caller, newRecipient string) (previous string, err error) {
	if newRecipient == "" {
		return "", types.ErrZeroAddressNotAllowed
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	current := e.recipients[profileID]
	if caller != current {
		return "", types.ErrUnauthorizedDonationUpdate
	}
	if bal, ok := e.balances[current]; ok && !bal.IsZero() {
		tgt, ok := e.balances[newRecipient]
		if !ok {
			tgt = num.UintZero()
			e.balances[newRecipient] = tgt
		}
		tgt.AddSum(bal)
		e.balances[current] = num.UintZero()
	}
	e.recipients[profileID] = newRecipient
	return current, nil
}

// Withdraw clears and returns the caller's full escrow balance.
// Withdrawals are independent of any market state.
func (e *Engine) Withdraw(recipient string) (*num.Uint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	bal, ok := e.balances[recipient]
	if !ok || bal.IsZero() {
		return nil, types.ErrNoFundsToWithdraw
	}
	out := bal.Clone()
	e.balances[recipient] = num.UintZero()
	e.log.Debug("donation escrow withdrawn",
		logging.String("recipient", recipient),
		logging.BigUint("amount", out))
	return out, nil
}

// State is the escrow engine's checkpoint payload.
type State struct {
	Recipients map[uint64]string    `json:"recipients"`
	Balances   map[string]*num.Uint `json:"balances"`
}

// Checkpoint snapshots recipients and balances.
func (e *Engine) Checkpoint() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s := State{
		Recipients: make(map[uint64]string, len(e.recipients)),
		Balances:   make(map[string]*num.Uint, len(e.balances)),
	}
	for k, v := range e.recipients {
		s.Recipients[k] = v
	}
	for k, v := range e.balances {
		s.Balances[k] = v.Clone()
	}
	return s
}

// Load restores a checkpoint, replacing all current state.
func (e *Engine) Load(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recipients = make(map[uint64]string, len(s.Recipients))
	e.balances = make(map[string]*num.Uint, len(s.Balances))
	for k, v := range s.Recipients {
		e.recipients[k] = v
	}
	for k, v := range s.Balances {
		e.balances[k] = v.Clone()
	}
}
