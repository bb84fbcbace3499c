package sale

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
)

// AddTiers appends the whole tier set in the given order. Thresholds may come in
// any order; registration picks the highest qualifying index.
func (s *Sale) AddTiers(ctx context.Context, caller Address, weights []uint64, thresholds []uint128.Uint128, lottery []bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.onlyAdmin(caller); err != nil {
		return err
	}
	if s.tiersState == Set {
		return errors.Wrap(ErrAlreadySet, "tiers are already set")
	}
	if len(weights) != len(thresholds) || len(weights) != len(lottery) {
		return errors.WithStack(ErrLengthMismatch)
	}
	if len(weights) == 0 {
		return errors.Wrap(ErrInvalidTiers, "at least one tier is required")
	}

	var totalWeight uint64
	tiers := make([]Tier, len(weights))
	for i := range weights {
		totalWeight += weights[i]
		if totalWeight < weights[i] {
			return errors.Wrap(ErrInvalidTiers, "total weight overflows")
		}
		tiers[i] = Tier{
			Weight:    weights[i],
			MinStake:  thresholds[i],
			IsLottery: lottery[i],
		}
	}
	if totalWeight == 0 {
		return errors.Wrap(ErrInvalidTiers, "total weight should be greater than 0")
	}

	s.tiers = tiers
	s.tiersState = Set
	return nil
}

// tierFor scans from the highest tier down and returns the first tier whose
// threshold does not exceed stake, or -1.
func (s *Sale) tierFor(stake uint128.Uint128) int {
	for i := len(s.tiers) - 1; i >= 0; i-- {
		if stake.Cmp(s.tiers[i].MinStake) >= 0 {
			return i
		}
	}
	return -1
}

func (s *Sale) totalWeight() uint64 {
	var total uint64
	for _, tier := range s.tiers {
		total += tier.Weight
	}
	return total
}

// Tiers returns a copy of the tier set.
func (s *Sale) Tiers() []Tier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Tier(nil), s.tiers...)
}

func (s *Sale) Tier(tierID int) (Tier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tierID < 0 || tierID >= len(s.tiers) {
		return Tier{}, errors.WithStack(ErrInvalidTier)
	}
	return s.tiers[tierID], nil
}
