package sale

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gaze-network/uint128"
)

// StakingLedger reports the staked balance of a user.
type StakingLedger interface {
	StakedBalance(ctx context.Context, user Address) (uint128.Uint128, error)
}

// Custody moves tokens between users and the sale's custody account.
// TransferIn pulls amount of token from a user (requires prior approval),
// TransferOut pays amount of token from custody to a user.
type Custody interface {
	TransferIn(ctx context.Context, token string, from Address, amount uint128.Uint128) error
	TransferOut(ctx context.Context, token string, to Address, amount uint128.Uint128) error
}

type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads wall time.
var SystemClock Clock = ClockFunc(time.Now)

// RandomSource seeds a lottery draw. Implementations backed by a verifiable
// random function can replace the default without touching the draw itself.
type RandomSource interface {
	Seed(ctx context.Context, tierID int, roster []Address) ([32]byte, error)
}

// ClockEntropy derives a seed from the current time and the draw input.
// It is predictable by anyone who can guess the draw time and must not be
// treated as a fair randomness source.
type ClockEntropy struct {
	Clock Clock
}

func (e ClockEntropy) Seed(_ context.Context, tierID int, roster []Address) ([32]byte, error) {
	buf := make([]byte, 0, 16+len(roster)*42)
	buf = binary.BigEndian.AppendUint64(buf, uint64(e.Clock.Now().UnixNano()))
	buf = binary.BigEndian.AppendUint64(buf, uint64(tierID))
	for _, addr := range roster {
		buf = append(buf, addr...)
	}
	return chainhash.DoubleHashH(buf), nil
}

// FixedSeed always returns the same seed.
type FixedSeed [32]byte

func (f FixedSeed) Seed(context.Context, int, []Address) ([32]byte, error) {
	return f, nil
}
