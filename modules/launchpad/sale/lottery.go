package sale

import (
	"context"
	"math/rand/v2"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// RunLottery allows up to winners registrants of a lottery tier. When the
// roster has fewer eligible registrants than winners, all of them are allowed.
//
// The draw is a seeded permutation of the roster. It is only as unpredictable
// as the configured RandomSource.
func (s *Sale) RunLottery(ctx context.Context, caller Address, tierID int, winners int) (LotteryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.onlyAdmin(caller); err != nil {
		return LotteryResult{}, err
	}
	if tierID < 0 || tierID >= len(s.tiers) {
		return LotteryResult{}, errors.WithStack(ErrInvalidTier)
	}
	if !s.tiers[tierID].IsLottery {
		return LotteryResult{}, errors.WithStack(ErrNotLotteryTier)
	}
	if winners < 0 {
		return LotteryResult{}, errors.Wrap(ErrInvalidAmount, "number of winners should not be negative")
	}

	roster := s.rosters[tierID]
	candidates := roster
	if s.lotteryPolicy == LotteryAccumulate {
		candidates = lo.Filter(roster, func(addr Address, _ int) bool { return !s.allowed[addr] })
	}

	seed, err := s.random.Seed(ctx, tierID, roster)
	if err != nil {
		return LotteryResult{}, errors.Wrap(err, "seed lottery")
	}
	selected := draw(seed, candidates, winners)

	if s.lotteryPolicy == LotteryRedraw {
		for _, addr := range roster {
			delete(s.allowed, addr)
		}
	}
	for _, addr := range selected {
		s.allowed[addr] = true
	}

	return LotteryResult{
		TierID:     tierID,
		Seed:       seed,
		Requested:  winners,
		RosterSize: len(roster),
		Winners:    selected,
	}, nil
}

// draw picks n distinct addresses from candidates with a partial Fisher-Yates
// shuffle. The candidates slice is not modified.
func draw(seed [32]byte, candidates []Address, n int) []Address {
	if n >= len(candidates) {
		return append([]Address(nil), candidates...)
	}
	pool := append([]Address(nil), candidates...)
	r := rand.New(rand.NewChaCha8(seed))
	for i := 0; i < n; i++ {
		j := i + r.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

// Allowed reports whether user may deposit in round 1.
func (s *Sale) Allowed(user Address) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.registrations[user]
	if !ok {
		return false
	}
	return s.isAllowed(user, reg)
}
