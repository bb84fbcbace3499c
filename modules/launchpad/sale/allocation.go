package sale

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
)

// CalculateFirstRoundSale settles round 1. Every tier is entitled to
// AmountToSell * weight / totalWeight tokens, and whatever a tier did not buy
// is pooled into the round 2 supply. Tiers that bought more than their
// entitlement do not reduce the pool.
func (s *Sale) CalculateFirstRoundSale(ctx context.Context, caller Address) (RoundState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.onlyAdmin(caller); err != nil {
		return RoundState{}, err
	}
	if err := s.requirePhase(PhaseConfigured, ErrNotConfigured); err != nil {
		return RoundState{}, err
	}
	if s.tiersState == Unset {
		return RoundState{}, errors.Wrap(ErrNotConfigured, "tiers are not set")
	}
	if s.round.FirstRoundCalculated {
		return RoundState{}, errors.WithStack(ErrAlreadyCalculated)
	}
	if !s.clock.Now().After(s.params.Round1End) {
		return RoundState{}, errors.WithStack(ErrRound1NotEnded)
	}

	totalWeight := uint128.From64(s.totalWeight())
	round := RoundState{FirstRoundCalculated: true}
	for i, tier := range s.tiers {
		entitled, err := mulDiv(s.params.AmountToSell, uint128.From64(tier.Weight), totalWeight)
		if err != nil {
			return RoundState{}, errors.Wrapf(err, "tier %d entitlement", i)
		}
		sold, err := s.tokensFor(tier.QuoteDeposited)
		if err != nil {
			return RoundState{}, errors.Wrapf(err, "tier %d sold tokens", i)
		}
		if round.TokensSold1, err = addAmount(round.TokensSold1, sold); err != nil {
			return RoundState{}, errors.Wrap(err, "tokens sold")
		}
		if round.TokensRemaining2, err = addAmount(round.TokensRemaining2, subFloor(entitled, sold)); err != nil {
			return RoundState{}, errors.Wrap(err, "tokens remaining")
		}
	}

	s.round = round
	s.phase = PhaseAllocated
	return round, nil
}

// Round returns the round accounting state.
func (s *Sale) Round() RoundState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.round
}

// Earnings is what the sale owner collects when the sale is over.
type Earnings struct {
	Quote        uint128.Uint128
	UnsoldTokens uint128.Uint128
}

// WithdrawEarnings pays all quote deposits and the unsold sale tokens to the
// sale owner once round 2 has ended.
func (s *Sale) WithdrawEarnings(ctx context.Context, caller Address) (Earnings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePhase(PhaseConfigured, ErrNotConfigured); err != nil {
		return Earnings{}, err
	}
	if err := s.onlySaleOwner(caller); err != nil {
		return Earnings{}, err
	}
	if !s.clock.Now().After(s.params.Round2End) {
		return Earnings{}, errors.WithStack(ErrSaleNotEnded)
	}
	if s.earningsWithdrawn {
		return Earnings{}, errors.WithStack(ErrAlreadyWithdrawn)
	}

	quote, err := s.totalQuoteDeposited()
	if err != nil {
		return Earnings{}, err
	}
	var unsold uint128.Uint128
	if s.tokensDeposited {
		sold, err := addAmount(s.round.TokensSold1, s.round.TokensSold2)
		if err != nil {
			return Earnings{}, errors.Wrap(err, "tokens sold")
		}
		unsold = subFloor(s.params.AmountToSell, sold)
	}

	// a retry after a failed leftover transfer skips the quote payout
	if s.quoteWithdrawn {
		quote = uint128.Zero
	}
	if !quote.IsZero() {
		if err := s.custody.TransferOut(ctx, s.params.QuoteToken, caller, quote); err != nil {
			return Earnings{}, collaboratorError(ErrTransferFailed, err, "withdraw earnings")
		}
	}
	s.quoteWithdrawn = true
	if !unsold.IsZero() {
		if err := s.custody.TransferOut(ctx, s.params.SaleToken, caller, unsold); err != nil {
			return Earnings{}, collaboratorError(ErrTransferFailed, err, "withdraw leftover")
		}
	}

	s.earningsWithdrawn = true
	return Earnings{Quote: quote, UnsoldTokens: unsold}, nil
}

func (s *Sale) totalQuoteDeposited() (uint128.Uint128, error) {
	total := uint128.Zero
	for _, p := range s.participations {
		var err error
		if total, err = addAmount(total, p.QuoteDeposited); err != nil {
			return uint128.Zero, errors.Wrap(err, "total quote deposited")
		}
	}
	return total, nil
}
