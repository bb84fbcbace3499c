package sale

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/modules/launchpad/internal/validator"
	"github.com/gaze-network/uint128"
)

const percentPrecision = 100

// SetVestingParams freezes the vesting schedule. Portions are addressed by
// their position, unlock times need not be increasing.
func (s *Sale) SetVestingParams(ctx context.Context, caller Address, unlockTimes []time.Time, percents []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.onlyAdmin(caller); err != nil {
		return err
	}
	if err := s.requirePhase(PhaseConfigured, ErrNotConfigured); err != nil {
		return err
	}
	if s.vestingState == Set {
		return errors.Wrap(ErrAlreadySet, "vesting params are already set")
	}
	if len(unlockTimes) != len(percents) {
		return errors.WithStack(ErrLengthMismatch)
	}
	if len(percents) == 0 {
		return errors.WithStack(ErrPercentSumInvalid)
	}

	var sum uint64
	for _, percent := range percents {
		if percent > percentPrecision {
			return errors.WithStack(ErrPercentSumInvalid)
		}
		sum += percent
	}
	if sum != percentPrecision {
		return errors.WithStack(ErrPercentSumInvalid)
	}

	vesting := make([]VestingEntry, len(percents))
	for i := range percents {
		vesting[i] = VestingEntry{UnlockTime: unlockTimes[i], Percent: percents[i]}
	}
	s.vesting = vesting
	s.vestingState = Set
	return nil
}

// WithdrawTokens pays out one vesting portion of the caller's purchase.
func (s *Sale) WithdrawTokens(ctx context.Context, caller Address, portion int) (uint128.Uint128, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.vestingState == Unset {
		return uint128.Zero, errors.Wrap(ErrNotConfigured, "vesting params are not set")
	}
	if portion < 0 || portion >= len(s.vesting) {
		return uint128.Zero, errors.WithStack(ErrInvalidPortion)
	}

	participation := s.participations[caller]
	v := validator.New()
	v.NotBefore(s.clock.Now(), s.unlockTime(portion), ErrTooEarly)
	v.Require(!s.claimed[caller][portion], ErrAlreadyClaimed)
	v.Require(participation != nil && !participation.QuoteDeposited.IsZero(), ErrNoPurchase)
	if err := v.Err(); err != nil {
		return uint128.Zero, err
	}

	amount, err := s.portionAmount(participation.QuoteDeposited, portion)
	if err != nil {
		return uint128.Zero, errors.Wrap(err, "calculate portion amount")
	}
	if !amount.IsZero() {
		if err := s.custody.TransferOut(ctx, s.params.SaleToken, caller, amount); err != nil {
			return uint128.Zero, collaboratorError(ErrTransferFailed, err, "withdraw tokens")
		}
	}

	if s.claimed[caller] == nil {
		s.claimed[caller] = make(map[int]bool, len(s.vesting))
	}
	s.claimed[caller][portion] = true
	return amount, nil
}

// unlockTime is the later of the portion unlock time and the sale unlock time.
func (s *Sale) unlockTime(portion int) time.Time {
	unlock := s.vesting[portion].UnlockTime
	if s.params.TokensUnlockTime.After(unlock) {
		return s.params.TokensUnlockTime
	}
	return unlock
}

// portionAmount floors against the cumulative percentage, so the sum over all
// portions equals the total purchase exactly.
func (s *Sale) portionAmount(quoteDeposited uint128.Uint128, portion int) (uint128.Uint128, error) {
	total, err := s.tokensFor(quoteDeposited)
	if err != nil {
		return uint128.Zero, err
	}
	var before uint64
	for i := 0; i < portion; i++ {
		before += s.vesting[i].Percent
	}
	after := before + s.vesting[portion].Percent

	upper, err := mulDiv(total, uint128.From64(after), uint128.From64(percentPrecision))
	if err != nil {
		return uint128.Zero, err
	}
	lower, err := mulDiv(total, uint128.From64(before), uint128.From64(percentPrecision))
	if err != nil {
		return uint128.Zero, err
	}
	return upper.Sub(lower), nil
}

// Withdrawable returns the amount of portion claimable by user, whether or not it is unlocked.
func (s *Sale) Withdrawable(user Address, portion int) (uint128.Uint128, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.vestingState == Unset {
		return uint128.Zero, false, errors.Wrap(ErrNotConfigured, "vesting params are not set")
	}
	if portion < 0 || portion >= len(s.vesting) {
		return uint128.Zero, false, errors.WithStack(ErrInvalidPortion)
	}
	participation := s.participations[user]
	if participation == nil {
		return uint128.Zero, false, nil
	}
	amount, err := s.portionAmount(participation.QuoteDeposited, portion)
	if err != nil {
		return uint128.Zero, false, err
	}
	return amount, s.claimed[user][portion], nil
}
