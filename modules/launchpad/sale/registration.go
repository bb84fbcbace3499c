package sale

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// SetRegistrationTime sets the registration window. It may be moved again until
// the current window has started.
func (s *Sale) SetRegistrationTime(ctx context.Context, caller Address, start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.onlyAdmin(caller); err != nil {
		return err
	}
	if err := s.requirePhase(PhaseConfigured, ErrNotConfigured); err != nil {
		return err
	}

	now := s.clock.Now()
	if s.registrationState == Set && !now.Before(s.registration.Start) {
		return errors.WithStack(ErrRegistrationStarted)
	}
	switch {
	case !start.After(now):
		return errors.WithStack(ErrStartNotFuture)
	case !end.After(start):
		return errors.WithStack(ErrEndBeforeStart)
	case end.After(s.params.Round1End):
		return errors.WithStack(ErrEndAfterSaleEnd)
	}

	s.registration = RegistrationWindow{Start: start, End: end}
	s.registrationState = Set
	return nil
}

// RegisterForSale whitelists the caller in the highest tier their stake qualifies for.
func (s *Sale) RegisterForSale(ctx context.Context, caller Address) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller.IsZero() {
		return -1, errors.WithStack(ErrInvalidAddress)
	}
	if s.registrationState == Unset || !s.registration.Contains(s.clock.Now()) {
		return -1, errors.WithStack(ErrRegistrationClosed)
	}
	if s.tiersState == Unset {
		return -1, errors.Wrap(ErrNotConfigured, "tiers are not set")
	}
	if s.registrations[caller].Registered {
		return -1, errors.WithStack(ErrAlreadyRegistered)
	}

	stake, err := s.staking.StakedBalance(ctx, caller)
	if err != nil {
		return -1, collaboratorError(ErrStakingUnavailable, err, "read staked balance")
	}
	tierID := s.tierFor(stake)
	if tierID < 0 {
		return -1, errors.WithStack(ErrInsufficientStake)
	}

	s.registrations[caller] = Registration{TierID: tierID, Registered: true}
	s.numberOfRegistrants++
	if s.tiers[tierID].IsLottery {
		s.rosters[tierID] = append(s.rosters[tierID], caller)
	}
	return tierID, nil
}

// isAllowed must be called with a registered user.
func (s *Sale) isAllowed(user Address, reg Registration) bool {
	if !s.tiers[reg.TierID].IsLottery {
		return true
	}
	return s.allowed[user]
}

// Registration returns the registration status of user.
func (s *Sale) Registration(user Address) Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, ok := s.registrations[user]
	if !ok {
		return Registration{TierID: -1}
	}
	reg.Allowed = s.isAllowed(user, reg)
	return reg
}

// RegistrationWindow returns the registration window, if set.
func (s *Sale) RegistrationWindow() (RegistrationWindow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registration, s.registrationState == Set
}

func (s *Sale) NumberOfRegistrants() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.numberOfRegistrants
}

// LotteryWallets returns the number of registrants in a lottery tier roster.
func (s *Sale) LotteryWallets(tierID int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tierID < 0 || tierID >= len(s.tiers) {
		return 0, errors.WithStack(ErrInvalidTier)
	}
	return len(s.rosters[tierID]), nil
}
