package sale

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/modules/launchpad/internal/validator"
	"github.com/gaze-network/uint128"
)

// Participate records the single round 1 deposit of a whitelisted and allowed caller.
func (s *Sale) Participate(ctx context.Context, caller Address, amount uint128.Uint128) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePhase(PhaseConfigured, ErrNotConfigured); err != nil {
		return err
	}

	reg, registered := s.registrations[caller]
	v := validator.New()
	v.Within(s.clock.Now(), s.params.Round1Start, s.params.Round1End, ErrRound1NotOpen)
	v.Require(s.participations[caller] == nil, ErrAlreadyParticipated)
	v.NonZero(amount, ErrInvalidAmount)
	v.AtLeast(amount, s.params.Round1MinDeposit, ErrBelowMinimum)
	v.Require(registered && reg.Registered, ErrNotWhitelisted)
	v.Require(v.Valid && s.isAllowed(caller, reg), ErrNotAllowed)
	if err := v.Err(); err != nil {
		return err
	}

	tier := s.tiers[reg.TierID]
	deposited, err := addAmount(tier.QuoteDeposited, amount)
	if err != nil {
		return errors.Wrap(err, "tier deposit")
	}
	sold, err := s.round1TokensSold(reg.TierID, deposited)
	if err != nil {
		return err
	}
	if sold.Cmp(s.params.AmountToSell) > 0 {
		return errors.Wrap(ErrSupplyExhausted, "round 1 deposits exceed the sale supply")
	}

	if err := s.custody.TransferIn(ctx, s.params.QuoteToken, caller, amount); err != nil {
		return collaboratorError(ErrTransferFailed, err, "participate")
	}

	tier.QuoteDeposited = deposited
	tier.Participants++
	s.tiers[reg.TierID] = tier
	s.participations[caller] = &Participation{
		TierID:          reg.TierID,
		QuoteDeposited:  amount,
		Round1Deposited: amount,
		HasParticipated: true,
	}
	s.participants = append(s.participants, caller)
	s.numOfParticipants++
	return nil
}

// round1TokensSold returns the tokens bought in round 1 if tierID had deposited
// quote in total. Tiers are converted separately, the same way
// CalculateFirstRoundSale counts them.
func (s *Sale) round1TokensSold(tierID int, deposited uint128.Uint128) (uint128.Uint128, error) {
	total := uint128.Zero
	for i, tier := range s.tiers {
		quote := tier.QuoteDeposited
		if i == tierID {
			quote = deposited
		}
		sold, err := s.tokensFor(quote)
		if err != nil {
			return uint128.Zero, errors.Wrapf(err, "tier %d sold tokens", i)
		}
		if total, err = addAmount(total, sold); err != nil {
			return uint128.Zero, errors.Wrap(err, "round 1 sold")
		}
	}
	return total, nil
}

// Buy purchases leftover round 1 supply in round 2. It may be called repeatedly
// and tops up the caller's participation. A purchase is capped both by the
// pooled remainder and by the supply not yet sold, since oversold tiers do
// not shrink the pool.
func (s *Sale) Buy(ctx context.Context, caller Address, amount uint128.Uint128) (uint128.Uint128, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller.IsZero() {
		return uint128.Zero, errors.WithStack(ErrInvalidAddress)
	}

	participation := s.participations[caller]
	var round2Deposited uint128.Uint128
	if participation != nil {
		round2Deposited = participation.Round2Deposited
	}

	v := validator.New()
	v.Require(s.round.FirstRoundCalculated, ErrRound2NotOpen)
	v.Within(s.clock.Now(), s.params.Round2Start, s.params.Round2End, ErrRound2NotOpen)
	v.NonZero(amount, ErrInvalidAmount)
	v.AtLeast(amount, s.params.Round2MinDeposit, ErrBelowMinimum)
	if !s.params.Round2MaxDeposit.IsZero() {
		v.Check(func() error {
			total, err := addAmount(round2Deposited, amount)
			if err != nil || total.Cmp(s.params.Round2MaxDeposit) > 0 {
				return ErrAboveMaximum
			}
			return nil
		})
	}
	var tokens uint128.Uint128
	v.Check(func() error {
		var err error
		if tokens, err = s.tokensFor(amount); err != nil {
			return err
		}
		if tokens.IsZero() {
			return errors.Wrap(ErrInvalidAmount, "amount buys no tokens")
		}
		if tokens.Cmp(s.round.TokensRemaining2) > 0 {
			return ErrSupplyExhausted
		}
		sold, err := addAmount(s.round.TokensSold1, s.round.TokensSold2)
		if err != nil {
			return errors.Wrap(err, "tokens sold")
		}
		if tokens.Cmp(subFloor(s.params.AmountToSell, sold)) > 0 {
			return errors.Wrap(ErrSupplyExhausted, "purchase exceeds the unsold supply")
		}
		return nil
	})
	if err := v.Err(); err != nil {
		return uint128.Zero, err
	}

	next := Participation{TierID: -1, HasParticipated: true}
	if participation != nil {
		next = *participation
	}
	var err error
	if next.QuoteDeposited, err = addAmount(next.QuoteDeposited, amount); err != nil {
		return uint128.Zero, errors.Wrap(err, "participation deposit")
	}
	if next.Round2Deposited, err = addAmount(next.Round2Deposited, amount); err != nil {
		return uint128.Zero, errors.Wrap(err, "round 2 deposit")
	}
	sold2, err := addAmount(s.round.TokensSold2, tokens)
	if err != nil {
		return uint128.Zero, errors.Wrap(err, "round 2 sold")
	}

	if err := s.custody.TransferIn(ctx, s.params.QuoteToken, caller, amount); err != nil {
		return uint128.Zero, collaboratorError(ErrTransferFailed, err, "buy")
	}

	s.round.TokensRemaining2 = s.round.TokensRemaining2.Sub(tokens)
	s.round.TokensSold2 = sold2
	if participation == nil {
		s.participants = append(s.participants, caller)
		s.numOfParticipants++
	}
	s.participations[caller] = &next
	return tokens, nil
}

// Participation returns the participation of user, if any.
func (s *Sale) Participation(user Address) (Participation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.participations[user]
	if !ok {
		return Participation{TierID: -1}, false
	}
	return *p, true
}

func (s *Sale) NumOfParticipants() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.numOfParticipants
}
