// Package sale implements the allocation state machine of a tiered,
// staking-gated token presale.
//
// A Sale serialises every mutating call behind a single lock. Each call either
// completes in full or fails with a named error and leaves the sale untouched.
package sale

import (
	"sync"

	"github.com/cockroachdb/errors"
)

type Sale struct {
	mu sync.RWMutex

	id    string
	admin Address

	staking       StakingLedger
	custody       Custody
	clock         Clock
	random        RandomSource
	lotteryPolicy LotteryPolicy

	phase             Phase
	paramsState       SetState
	vestingState      SetState
	registrationState SetState
	tiersState        SetState

	params       SaleParameters
	vesting      []VestingEntry
	registration RegistrationWindow
	tiers        []Tier

	registrations       map[Address]Registration
	numberOfRegistrants uint64
	// rosters holds the registrants of lottery tiers in registration order.
	rosters map[int][]Address
	allowed map[Address]bool

	participations    map[Address]*Participation
	participants      []Address
	numOfParticipants uint64

	round RoundState

	claimed           map[Address]map[int]bool
	tokensDeposited   bool
	quoteWithdrawn    bool
	earningsWithdrawn bool
}

type Option func(*Sale)

func WithClock(clock Clock) Option {
	return func(s *Sale) {
		s.clock = clock
	}
}

func WithRandomSource(random RandomSource) Option {
	return func(s *Sale) {
		s.random = random
	}
}

func WithLotteryPolicy(policy LotteryPolicy) Option {
	return func(s *Sale) {
		s.lotteryPolicy = policy
	}
}

// New creates an unconfigured sale administrated by admin.
func New(id string, admin Address, staking StakingLedger, custody Custody, opts ...Option) *Sale {
	s := &Sale{
		id:             id,
		admin:          admin,
		staking:        staking,
		custody:        custody,
		clock:          SystemClock,
		lotteryPolicy:  LotteryAccumulate,
		registrations:  make(map[Address]Registration),
		rosters:        make(map[int][]Address),
		allowed:        make(map[Address]bool),
		participations: make(map[Address]*Participation),
		claimed:        make(map[Address]map[int]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.random == nil {
		s.random = ClockEntropy{Clock: s.clock}
	}
	return s
}

func (s *Sale) ID() string { return s.id }

func (s *Sale) Admin() Address { return s.admin }

func (s *Sale) onlyAdmin(caller Address) error {
	if caller.IsZero() || caller != s.admin {
		return errors.WithStack(ErrNotAdmin)
	}
	return nil
}

func (s *Sale) onlySaleOwner(caller Address) error {
	if caller.IsZero() || caller != s.params.SaleOwner {
		return errors.WithStack(ErrNotSaleOwner)
	}
	return nil
}
