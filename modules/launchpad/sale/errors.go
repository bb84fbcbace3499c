package sale

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
)

// Error categories. Every sale error belongs to exactly one of them, so callers
// can match either the precise condition or its category with errors.Is.
const (
	ErrSequencing   = errs.ErrorKind("sale: configuration sequencing")
	ErrInvalidInput = errs.ErrorKind("sale: invalid input")
	ErrIneligible   = errs.ErrorKind("sale: ineligible")
)

// saleError creates a sentinel marked with its category and its generic error kind.
func saleError(msg string, category, kind errs.ErrorKind) error {
	return errors.Mark(errors.Mark(errors.New(msg), category), kind)
}

func sequencingError(msg string) error {
	return saleError(msg, ErrSequencing, errs.Conflict)
}

func inputError(msg string) error {
	return saleError(msg, ErrInvalidInput, errs.InvalidArgument)
}

func eligibilityError(msg string) error {
	return saleError(msg, ErrIneligible, errs.PermissionDenied)
}

// configuration-sequencing errors
var (
	ErrAlreadyConfigured   = sequencingError("sale already created")
	ErrNotConfigured       = sequencingError("sale params are not set")
	ErrAlreadySet          = sequencingError("already set")
	ErrRegistrationStarted = sequencingError("registration already started")
	ErrRound1Started       = sequencingError("round 1 already started")
	ErrAlreadyCalculated   = sequencingError("first round sale already calculated")
	ErrRound1NotEnded      = sequencingError("first round is not ended")
	ErrAlreadyDeposited    = sequencingError("sale tokens already deposited")
	ErrSaleNotEnded        = sequencingError("sale is not ended")
	ErrAlreadyWithdrawn    = sequencingError("earnings already withdrawn")
)

// input-validation errors
var (
	ErrInvalidPrice      = inputError("token price should be greater than 0")
	ErrInvalidSupply     = inputError("amount to sell should be greater than 0")
	ErrInvalidWindow     = inputError("invalid sale time window")
	ErrLengthMismatch    = inputError("parameters should have same length")
	ErrPercentSumInvalid = inputError("percent distribution issue")
	ErrStartNotFuture    = inputError("registration start time should be after current time")
	ErrEndBeforeStart    = inputError("registration end time should be after start time")
	ErrEndAfterSaleEnd   = inputError("registration end time should be before sale end")
	ErrInvalidTiers      = inputError("invalid tiers")
	ErrInvalidTier       = inputError("tier does not exist")
	ErrNotLotteryTier    = inputError("tier is not a lottery tier")
	ErrInvalidPortion    = inputError("vesting portion does not exist")
	ErrInvalidAmount     = inputError("amount should be greater than 0")
	ErrInvalidAddress    = inputError("invalid address")
	ErrInvalidDecimals   = inputError("token decimals out of range")
)

// eligibility errors
var (
	ErrNotAdmin            = eligibilityError("caller is not the sale admin")
	ErrNotSaleOwner        = eligibilityError("caller is not the sale owner")
	ErrRegistrationClosed  = eligibilityError("registration is closed")
	ErrInsufficientStake   = eligibilityError("need to stake minimum for current sale")
	ErrAlreadyRegistered   = eligibilityError("you are registered")
	ErrNotWhitelisted      = eligibilityError("user must be in white list")
	ErrNotAllowed          = eligibilityError("you can't access sale")
	ErrBelowMinimum        = eligibilityError("can't deposit less than minimum")
	ErrAboveMaximum        = eligibilityError("can't deposit more than maximum")
	ErrAlreadyParticipated = eligibilityError("participate only once")
	ErrRound1NotOpen       = eligibilityError("round 1 is not open")
	ErrRound2NotOpen       = eligibilityError("round 2 is not open")
	ErrSupplyExhausted     = eligibilityError("not enough tokens left for sale")
	ErrTooEarly            = eligibilityError("tokens are not unlocked yet")
	ErrAlreadyClaimed      = eligibilityError("portion already withdrawn")
	ErrNoPurchase          = eligibilityError("user has no purchase")
)

// collaborator failures
var (
	ErrTransferFailed     = errors.Mark(errors.New("token transfer failed"), errs.Unavailable)
	ErrStakingUnavailable = errors.Mark(errors.New("staking ledger unavailable"), errs.Unavailable)
)

// collaboratorError keeps cause attached to sentinel without changing what errors.Is matches.
func collaboratorError(sentinel, cause error, msg string) error {
	return errors.WithSecondaryError(errors.Wrap(sentinel, msg), cause)
}
