package sale

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
)

// SetState tracks a one-shot configuration group.
type SetState uint8

const (
	Unset SetState = iota
	Set
)

func (s SetState) String() string {
	if s == Set {
		return "set"
	}
	return "unset"
}

// Phase is the configuration phase of a sale. A sale only moves forward:
// Unconfigured -> Configured -> Allocated.
type Phase uint8

const (
	// PhaseUnconfigured means sale parameters are not set yet.
	PhaseUnconfigured Phase = iota
	// PhaseConfigured means sale parameters are set and round 1 is not settled.
	PhaseConfigured
	// PhaseAllocated means round 1 is settled and its leftover opened for round 2.
	PhaseAllocated
)

var phaseNames = map[Phase]string{
	PhaseUnconfigured: "unconfigured",
	PhaseConfigured:   "configured",
	PhaseAllocated:    "allocated",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	for p, name := range phaseNames {
		if name == s {
			return p, nil
		}
	}
	return 0, errors.Wrapf(errs.InvalidArgument, "unknown phase %q", s)
}

// requirePhase fails with err unless the sale is at least in phase p.
func (s *Sale) requirePhase(p Phase, err error) error {
	if s.phase < p {
		return errors.WithStack(err)
	}
	return nil
}

// Stage is the time-derived stage of a configured sale.
type Stage string

const (
	StageSetup        Stage = "setup"
	StageRegistration Stage = "registration"
	StageRound1       Stage = "round1"
	StageSettlement   Stage = "settlement"
	StageRound2       Stage = "round2"
	StageVesting      Stage = "vesting"
)

func (s *Sale) stage(now time.Time) Stage {
	if s.paramsState == Unset {
		return StageSetup
	}
	p := s.params
	switch {
	case s.registrationState == Set && s.registration.Contains(now):
		return StageRegistration
	case !now.Before(p.Round1Start) && !now.After(p.Round1End):
		return StageRound1
	case now.After(p.Round1End) && s.phase < PhaseAllocated:
		return StageSettlement
	case s.phase == PhaseAllocated && !now.Before(p.Round2Start) && !now.After(p.Round2End):
		return StageRound2
	case now.After(p.Round2End):
		return StageVesting
	}
	return StageSetup
}

// LotteryPolicy decides what a repeated lottery draw on the same tier does.
type LotteryPolicy string

const (
	// LotteryAccumulate draws only among registrants that are not allowed yet
	// and adds the winners to the allowed set.
	LotteryAccumulate LotteryPolicy = "accumulate"
	// LotteryRedraw clears the tier's allowed set before drawing.
	LotteryRedraw LotteryPolicy = "redraw"
)

func ParseLotteryPolicy(s string) (LotteryPolicy, error) {
	switch LotteryPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", LotteryAccumulate:
		return LotteryAccumulate, nil
	case LotteryRedraw:
		return LotteryRedraw, nil
	}
	return "", errors.Wrapf(errs.Unsupported, "lottery policy %q", s)
}
