package ledger

import (
	"context"
	"testing"

	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStakes(t *testing.T) {
	stakes := NewStakes()
	user := sale.NewAddress("0xUser")

	balance, err := stakes.StakedBalance(context.Background(), user)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	stakes.SetStake(user, uint128.From64(42))
	balance, err = stakes.StakedBalance(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, uint128.From64(42), balance)
}

func TestCustody(t *testing.T) {
	ctx := context.Background()
	alice, bob := sale.NewAddress("0xAlice"), sale.NewAddress("0xBob")

	c := NewCustody()
	require.NoError(t, c.Mint("USDC", alice, uint128.From64(100)))

	err := c.TransferIn(ctx, "USDC", alice, uint128.From64(50))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	c.Approve("USDC", alice, uint128.From64(500))
	err = c.TransferIn(ctx, "USDC", alice, uint128.From64(150))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	require.NoError(t, c.TransferIn(ctx, "USDC", alice, uint128.From64(60)))
	assert.Equal(t, uint128.From64(40), c.BalanceOf("USDC", alice))
	assert.Equal(t, uint128.From64(440), c.Allowance("USDC", alice))
	assert.Equal(t, uint128.From64(60), c.Held("USDC"))

	// tokens are held separately
	assert.ErrorIs(t, c.TransferOut(ctx, "XPAD", bob, uint128.From64(1)), ErrInsufficientBalance)
	assert.ErrorIs(t, c.TransferOut(ctx, "USDC", bob, uint128.From64(61)), ErrInsufficientBalance)

	require.NoError(t, c.TransferOut(ctx, "USDC", bob, uint128.From64(60)))
	assert.Equal(t, uint128.From64(60), c.BalanceOf("USDC", bob))
	assert.True(t, c.Held("USDC").IsZero())
}

func TestCustodyMintOverflow(t *testing.T) {
	c := NewCustody()
	user := sale.NewAddress("0xUser")
	require.NoError(t, c.Mint("USDC", user, uint128.Max))
	assert.ErrorIs(t, c.Mint("USDC", user, uint128.From64(1)), errs.OverflowUint128)
}
