package sale

import (
	"strings"
	"time"

	"github.com/gaze-network/uint128"
)

// Address identifies a sale participant or owner. Addresses are case-insensitive.
type Address string

func NewAddress(s string) Address {
	return Address(strings.ToLower(strings.TrimSpace(s)))
}

func (a Address) String() string {
	return string(a)
}

func (a Address) IsZero() bool {
	return a == ""
}

// DefaultTokenDecimals is used when SaleParameters.TokenDecimals is zero.
const DefaultTokenDecimals = 18

// SaleParameters is the one-time sale configuration.
type SaleParameters struct {
	SaleToken  string
	QuoteToken string
	SaleOwner  Address

	// Price is the amount of quote base units paid for one whole sale token.
	Price         uint128.Uint128
	TokenDecimals uint8
	// AmountToSell is denominated in sale token base units.
	AmountToSell uint128.Uint128

	Round1Start time.Time
	Round1End   time.Time
	Round2Start time.Time
	Round2End   time.Time

	Round1MinDeposit uint128.Uint128
	Round2MinDeposit uint128.Uint128
	// Round2MaxDeposit caps the cumulative round 2 deposit of a single user.
	Round2MaxDeposit uint128.Uint128

	TokensUnlockTime time.Time
}

type VestingEntry struct {
	UnlockTime time.Time
	Percent    uint64
}

type RegistrationWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t is inside [Start, End].
func (w RegistrationWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

type Tier struct {
	Weight         uint64
	MinStake       uint128.Uint128
	IsLottery      bool
	Participants   uint64
	QuoteDeposited uint128.Uint128
}

// Registration is the registration status of a user.
type Registration struct {
	TierID     int
	Registered bool
	// Allowed is true for registrants of non-lottery tiers and for lottery winners.
	Allowed bool
}

// Participation is the deposit record of a user. TierID is -1 for users who
// only bought in round 2 without registering.
type Participation struct {
	TierID          int
	QuoteDeposited  uint128.Uint128
	Round1Deposited uint128.Uint128
	Round2Deposited uint128.Uint128
	HasParticipated bool
}

type RoundState struct {
	TokensSold1          uint128.Uint128
	TokensRemaining2     uint128.Uint128
	TokensSold2          uint128.Uint128
	FirstRoundCalculated bool
}

// LotteryResult describes a single lottery draw.
type LotteryResult struct {
	TierID     int
	Seed       [32]byte
	Requested  int
	RosterSize int
	Winners    []Address
}

// Info is a read-only summary of a sale.
type Info struct {
	ID                  string
	Admin               Address
	Phase               Phase
	Stage               Stage
	Params              *SaleParameters
	Registration        *RegistrationWindow
	NumberOfRegistrants uint64
	NumOfParticipants   uint64
	Round               RoundState
	TokensDeposited     bool
	EarningsWithdrawn   bool
	TotalQuoteDeposited uint128.Uint128
}

// Allocation is the purchase summary of a single participant.
type Allocation struct {
	Address         Address
	TierID          int
	QuoteDeposited  uint128.Uint128
	Round1Deposited uint128.Uint128
	Round2Deposited uint128.Uint128
	TokensPurchased uint128.Uint128
	TokensClaimed   uint128.Uint128
	PortionsClaimed int
}
