package sale

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
)

func (s *Sale) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Stage returns the time-derived stage of the sale at now.
func (s *Sale) Stage(now time.Time) Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage(now)
}

// Params returns the sale parameters, if set.
func (s *Sale) Params() (SaleParameters, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params, s.paramsState == Set
}

// Vesting returns a copy of the vesting schedule.
func (s *Sale) Vesting() []VestingEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]VestingEntry(nil), s.vesting...)
}

func (s *Sale) Info() (Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totalQuote, err := s.totalQuoteDeposited()
	if err != nil {
		return Info{}, err
	}
	info := Info{
		ID:                  s.id,
		Admin:               s.admin,
		Phase:               s.phase,
		Stage:               s.stage(s.clock.Now()),
		NumberOfRegistrants: s.numberOfRegistrants,
		NumOfParticipants:   s.numOfParticipants,
		Round:               s.round,
		TokensDeposited:     s.tokensDeposited,
		EarningsWithdrawn:   s.earningsWithdrawn,
		TotalQuoteDeposited: totalQuote,
	}
	if s.paramsState == Set {
		info.Params = lo.ToPtr(s.params)
	}
	if s.registrationState == Set {
		info.Registration = lo.ToPtr(s.registration)
	}
	return info, nil
}

// Allocations returns one row per participant in participation order.
func (s *Sale) Allocations() ([]Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.paramsState == Unset {
		return nil, errors.WithStack(ErrNotConfigured)
	}
	allocations := make([]Allocation, 0, len(s.participants))
	for _, addr := range s.participants {
		p := s.participations[addr]
		purchased, err := s.tokensFor(p.QuoteDeposited)
		if err != nil {
			return nil, errors.Wrapf(err, "tokens purchased by %s", addr)
		}
		claimed := uint128.Zero
		for portion := range s.claimed[addr] {
			amount, err := s.portionAmount(p.QuoteDeposited, portion)
			if err != nil {
				return nil, errors.Wrapf(err, "portion %d of %s", portion, addr)
			}
			claimed = claimed.Add(amount)
		}
		allocations = append(allocations, Allocation{
			Address:         addr,
			TierID:          p.TierID,
			QuoteDeposited:  p.QuoteDeposited,
			Round1Deposited: p.Round1Deposited,
			Round2Deposited: p.Round2Deposited,
			TokensPurchased: purchased,
			TokensClaimed:   claimed,
			PortionsClaimed: len(s.claimed[addr]),
		})
	}
	return allocations, nil
}
