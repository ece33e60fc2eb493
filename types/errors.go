package types

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMarketDoesNotExist signals no market was created for that profile.
	ErrMarketDoesNotExist = errors.New("market does not exist")
	// ErrMarketAlreadyExists signals a second creation attempt for a profile.
	ErrMarketAlreadyExists = errors.New("market already exists")
	// ErrInactiveMarket signals trading against a graduated market.
	ErrInactiveMarket = errors.New("market is graduated, trading is disabled")
	// ErrMarketNotGraduated guards graduation-only operations.
	ErrMarketNotGraduated = errors.New("market is not graduated")
	// ErrInvalidProfileID signals the profile does not resolve or is archived.
	ErrInvalidProfileID = errors.New("invalid profile id")
	// ErrPaused signals the gate has trading globally paused.
	ErrPaused = errors.New("system is paused")

	// ErrInsufficientFunds signals funds sent cannot cover the trade, or a
	// reserve that cannot cover a payout.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientInitialLiquidity signals a seed below the price floor.
	ErrInsufficientInitialLiquidity = errors.New("insufficient initial liquidity")
	// ErrInsufficientVotesOwned signals a sell larger than the holding.
	ErrInsufficientVotesOwned = errors.New("insufficient votes owned")
	// ErrInsufficientVotesToSell signals a sell that would breach the seeded
	// vote floor.
	ErrInsufficientVotesToSell = errors.New("insufficient votes to sell")

	// ErrUnauthorizedGraduation signals the caller lacks the graduator role.
	ErrUnauthorizedGraduation = errors.New("unauthorized graduation")
	// ErrUnauthorizedWithdrawal signals the caller may not withdraw the reserve.
	ErrUnauthorizedWithdrawal = errors.New("unauthorized withdrawal")
	// ErrUnauthorizedDonationUpdate signals the caller is not the current
	// donation recipient.
	ErrUnauthorizedDonationUpdate = errors.New("unauthorized donation recipient update")
	// ErrNoFundsToWithdraw signals an empty reserve or escrow balance.
	ErrNoFundsToWithdraw = errors.New("no funds to withdraw")

	// ErrInvalidMarketConfigOption signals an invalid seed template or fee
	// schedule.
	ErrInvalidMarketConfigOption = errors.New("invalid market config option")
	// ErrZeroAddressNotAllowed guards address-valued admin settings.
	ErrZeroAddressNotAllowed = errors.New("zero address not allowed")
	// ErrLastMarketConfig guards removal of the final seed template.
	ErrLastMarketConfig = errors.New("cannot remove the last market config")
	// ErrUnauthorizedAdminAction signals the caller lacks the admin role.
	ErrUnauthorizedAdminAction = errors.New("unauthorized admin action")
)

// SlippageLimitExceededError carries the three values a caller needs to
// decide whether to retry with adjusted parameters.
type SlippageLimitExceededError struct {
	ActualVotes   uint64
	ExpectedVotes uint64
	SlippageBps   uint64
}

func (e *SlippageLimitExceededError) Error() string {
	return fmt.Sprintf("slippage limit exceeded: bought %d, expected %d with %d bps tolerance",
		e.ActualVotes, e.ExpectedVotes, e.SlippageBps)
}

// CreationGateReason says why market creation was rejected.
type CreationGateReason uint8

const (
	// ReasonProfileMismatch means the resolved profile does not match the
	// requested market owner.
	ReasonProfileMismatch CreationGateReason = iota
	// ReasonProfileNotAuthorized means the allowlist forbids the profile.
	ReasonProfileNotAuthorized
)

func (r CreationGateReason) String() string {
	switch r {
	case ReasonProfileMismatch:
		return "profile mismatch"
	case ReasonProfileNotAuthorized:
		return "profile not authorized"
	}
	return fmt.Sprintf("unknown(%d)", uint8(r))
}

// MarketCreationUnauthorizedError is the typed rejection for create paths.
type MarketCreationUnauthorizedError struct {
	Reason    CreationGateReason
	Caller    string
	ProfileID uint64
}

func (e *MarketCreationUnauthorizedError) Error() string {
	return fmt.Sprintf("market creation unauthorized (%s): caller %s, profile %d",
		e.Reason, e.Caller, e.ProfileID)
}
