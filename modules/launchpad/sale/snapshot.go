package sale

import (
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
)

// StateVersion is bumped whenever State changes incompatibly.
const StateVersion = 1

// State is the serialisable form of a sale. Amounts are decimal strings.
type State struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	Admin   string `json:"admin"`
	Phase   string `json:"phase"`

	Params         *ParamsState         `json:"params,omitempty"`
	Vesting        []VestingState       `json:"vesting,omitempty"`
	Registration   *WindowState         `json:"registration,omitempty"`
	Tiers          []TierState          `json:"tiers,omitempty"`
	Registrations  []RegistrationState  `json:"registrations,omitempty"`
	Rosters        map[int][]string     `json:"rosters,omitempty"`
	Allowed        []string             `json:"allowed,omitempty"`
	Participations []ParticipationState `json:"participations,omitempty"`
	Round          RoundStateJSON       `json:"round"`
	Claimed        map[string][]int     `json:"claimed,omitempty"`

	TokensDeposited   bool `json:"tokens_deposited"`
	QuoteWithdrawn    bool `json:"quote_withdrawn"`
	EarningsWithdrawn bool `json:"earnings_withdrawn"`
}

type ParamsState struct {
	SaleToken        string    `json:"sale_token"`
	QuoteToken       string    `json:"quote_token"`
	SaleOwner        string    `json:"sale_owner"`
	Price            string    `json:"price"`
	TokenDecimals    uint8     `json:"token_decimals"`
	AmountToSell     string    `json:"amount_to_sell"`
	Round1Start      time.Time `json:"round1_start"`
	Round1End        time.Time `json:"round1_end"`
	Round2Start      time.Time `json:"round2_start"`
	Round2End        time.Time `json:"round2_end"`
	Round1MinDeposit string    `json:"round1_min_deposit"`
	Round2MinDeposit string    `json:"round2_min_deposit"`
	Round2MaxDeposit string    `json:"round2_max_deposit"`
	TokensUnlockTime time.Time `json:"tokens_unlock_time"`
}

type VestingState struct {
	UnlockTime time.Time `json:"unlock_time"`
	Percent    uint64    `json:"percent"`
}

type WindowState struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type TierState struct {
	Weight         uint64 `json:"weight"`
	MinStake       string `json:"min_stake"`
	IsLottery      bool   `json:"is_lottery"`
	Participants   uint64 `json:"participants"`
	QuoteDeposited string `json:"quote_deposited"`
}

type RegistrationState struct {
	Address string `json:"address"`
	TierID  int    `json:"tier_id"`
}

type ParticipationState struct {
	Address         string `json:"address"`
	TierID          int    `json:"tier_id"`
	QuoteDeposited  string `json:"quote_deposited"`
	Round1Deposited string `json:"round1_deposited"`
	Round2Deposited string `json:"round2_deposited"`
}

type RoundStateJSON struct {
	TokensSold1          string `json:"tokens_sold1"`
	TokensRemaining2     string `json:"tokens_remaining2"`
	TokensSold2          string `json:"tokens_sold2"`
	FirstRoundCalculated bool   `json:"first_round_calculated"`
}

// Snapshot captures the whole sale state.
func (s *Sale) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := State{
		Version:           StateVersion,
		ID:                s.id,
		Admin:             s.admin.String(),
		Phase:             s.phase.String(),
		TokensDeposited:   s.tokensDeposited,
		QuoteWithdrawn:    s.quoteWithdrawn,
		EarningsWithdrawn: s.earningsWithdrawn,
		Round: RoundStateJSON{
			TokensSold1:          s.round.TokensSold1.String(),
			TokensRemaining2:     s.round.TokensRemaining2.String(),
			TokensSold2:          s.round.TokensSold2.String(),
			FirstRoundCalculated: s.round.FirstRoundCalculated,
		},
	}
	if s.paramsState == Set {
		p := s.params
		state.Params = &ParamsState{
			SaleToken:        p.SaleToken,
			QuoteToken:       p.QuoteToken,
			SaleOwner:        p.SaleOwner.String(),
			Price:            p.Price.String(),
			TokenDecimals:    p.TokenDecimals,
			AmountToSell:     p.AmountToSell.String(),
			Round1Start:      p.Round1Start,
			Round1End:        p.Round1End,
			Round2Start:      p.Round2Start,
			Round2End:        p.Round2End,
			Round1MinDeposit: p.Round1MinDeposit.String(),
			Round2MinDeposit: p.Round2MinDeposit.String(),
			Round2MaxDeposit: p.Round2MaxDeposit.String(),
			TokensUnlockTime: p.TokensUnlockTime,
		}
	}
	if s.vestingState == Set {
		state.Vesting = lo.Map(s.vesting, func(v VestingEntry, _ int) VestingState {
			return VestingState{UnlockTime: v.UnlockTime, Percent: v.Percent}
		})
	}
	if s.registrationState == Set {
		state.Registration = &WindowState{Start: s.registration.Start, End: s.registration.End}
	}
	if s.tiersState == Set {
		state.Tiers = lo.Map(s.tiers, func(t Tier, _ int) TierState {
			return TierState{
				Weight:         t.Weight,
				MinStake:       t.MinStake.String(),
				IsLottery:      t.IsLottery,
				Participants:   t.Participants,
				QuoteDeposited: t.QuoteDeposited.String(),
			}
		})
	}

	registered := lo.Keys(s.registrations)
	slices.Sort(registered)
	state.Registrations = lo.Map(registered, func(addr Address, _ int) RegistrationState {
		return RegistrationState{Address: addr.String(), TierID: s.registrations[addr].TierID}
	})
	if len(s.rosters) > 0 {
		state.Rosters = lo.MapValues(s.rosters, func(roster []Address, _ int) []string {
			return lo.Map(roster, func(addr Address, _ int) string { return addr.String() })
		})
	}
	allowed := lo.Keys(lo.PickBy(s.allowed, func(_ Address, ok bool) bool { return ok }))
	slices.Sort(allowed)
	state.Allowed = lo.Map(allowed, func(addr Address, _ int) string { return addr.String() })

	state.Participations = lo.Map(s.participants, func(addr Address, _ int) ParticipationState {
		p := s.participations[addr]
		return ParticipationState{
			Address:         addr.String(),
			TierID:          p.TierID,
			QuoteDeposited:  p.QuoteDeposited.String(),
			Round1Deposited: p.Round1Deposited.String(),
			Round2Deposited: p.Round2Deposited.String(),
		}
	})
	if len(s.claimed) > 0 {
		state.Claimed = make(map[string][]int, len(s.claimed))
		for addr, portions := range s.claimed {
			claimed := lo.Keys(portions)
			slices.Sort(claimed)
			state.Claimed[addr.String()] = claimed
		}
	}
	return state
}

// Restore rebuilds a sale from a snapshot.
func Restore(state State, staking StakingLedger, custody Custody, opts ...Option) (*Sale, error) {
	if state.Version != StateVersion {
		return nil, errors.Wrapf(errs.Unsupported, "sale state version %d", state.Version)
	}
	phase, err := ParsePhase(state.Phase)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	s := New(state.ID, NewAddress(state.Admin), staking, custody, opts...)
	s.phase = phase
	s.tokensDeposited = state.TokensDeposited
	s.quoteWithdrawn = state.QuoteWithdrawn
	s.earningsWithdrawn = state.EarningsWithdrawn

	amounts := newAmountParser()
	if p := state.Params; p != nil {
		s.params = SaleParameters{
			SaleToken:        p.SaleToken,
			QuoteToken:       p.QuoteToken,
			SaleOwner:        NewAddress(p.SaleOwner),
			Price:            amounts.parse("price", p.Price),
			TokenDecimals:    p.TokenDecimals,
			AmountToSell:     amounts.parse("amount_to_sell", p.AmountToSell),
			Round1Start:      p.Round1Start,
			Round1End:        p.Round1End,
			Round2Start:      p.Round2Start,
			Round2End:        p.Round2End,
			Round1MinDeposit: amounts.parse("round1_min_deposit", p.Round1MinDeposit),
			Round2MinDeposit: amounts.parse("round2_min_deposit", p.Round2MinDeposit),
			Round2MaxDeposit: amounts.parse("round2_max_deposit", p.Round2MaxDeposit),
			TokensUnlockTime: p.TokensUnlockTime,
		}
		s.paramsState = Set
	}
	if state.Vesting != nil {
		s.vesting = lo.Map(state.Vesting, func(v VestingState, _ int) VestingEntry {
			return VestingEntry{UnlockTime: v.UnlockTime, Percent: v.Percent}
		})
		s.vestingState = Set
	}
	if w := state.Registration; w != nil {
		s.registration = RegistrationWindow{Start: w.Start, End: w.End}
		s.registrationState = Set
	}
	if state.Tiers != nil {
		s.tiers = lo.Map(state.Tiers, func(t TierState, _ int) Tier {
			return Tier{
				Weight:         t.Weight,
				MinStake:       amounts.parse("min_stake", t.MinStake),
				IsLottery:      t.IsLottery,
				Participants:   t.Participants,
				QuoteDeposited: amounts.parse("tier quote_deposited", t.QuoteDeposited),
			}
		})
		s.tiersState = Set
	}
	for _, reg := range state.Registrations {
		if reg.TierID < 0 || reg.TierID >= len(s.tiers) {
			return nil, errors.Wrapf(errs.InvalidArgument, "registration of %s has unknown tier %d", reg.Address, reg.TierID)
		}
		s.registrations[NewAddress(reg.Address)] = Registration{TierID: reg.TierID, Registered: true}
	}
	s.numberOfRegistrants = uint64(len(s.registrations))
	for tierID, roster := range state.Rosters {
		s.rosters[tierID] = lo.Map(roster, func(addr string, _ int) Address { return NewAddress(addr) })
	}
	for _, addr := range state.Allowed {
		s.allowed[NewAddress(addr)] = true
	}
	for _, p := range state.Participations {
		addr := NewAddress(p.Address)
		s.participations[addr] = &Participation{
			TierID:          p.TierID,
			QuoteDeposited:  amounts.parse("quote_deposited", p.QuoteDeposited),
			Round1Deposited: amounts.parse("round1_deposited", p.Round1Deposited),
			Round2Deposited: amounts.parse("round2_deposited", p.Round2Deposited),
			HasParticipated: true,
		}
		s.participants = append(s.participants, addr)
	}
	s.numOfParticipants = uint64(len(s.participants))
	s.round = RoundState{
		TokensSold1:          amounts.parse("tokens_sold1", state.Round.TokensSold1),
		TokensRemaining2:     amounts.parse("tokens_remaining2", state.Round.TokensRemaining2),
		TokensSold2:          amounts.parse("tokens_sold2", state.Round.TokensSold2),
		FirstRoundCalculated: state.Round.FirstRoundCalculated,
	}
	for addr, portions := range state.Claimed {
		claimed := make(map[int]bool, len(portions))
		for _, portion := range portions {
			claimed[portion] = true
		}
		s.claimed[NewAddress(addr)] = claimed
	}
	if amounts.err != nil {
		return nil, amounts.err
	}
	return s, nil
}

// amountParser keeps the first parse error so Restore can parse fields inline.
type amountParser struct {
	err error
}

func newAmountParser() *amountParser {
	return &amountParser{}
}

func (p *amountParser) parse(field, value string) uint128.Uint128 {
	if value == "" || p.err != nil {
		return uint128.Zero
	}
	amount, err := uint128.FromString(value)
	if err != nil {
		p.err = errors.Wrapf(err, "invalid %s %q", field, value)
		return uint128.Zero
	}
	return amount
}
