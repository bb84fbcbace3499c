package sale_test

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetSaleParams(t *testing.T) {
	t.Run("only once", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.sale.SetSaleParams(f.ctx, admin, defaultParams()))
		assert.Equal(t, sale.PhaseConfigured, f.sale.Phase())

		err := f.sale.SetSaleParams(f.ctx, admin, defaultParams())
		assert.ErrorIs(t, err, sale.ErrAlreadyConfigured)
		assert.ErrorIs(t, err, sale.ErrSequencing)
		assert.ErrorIs(t, err, errs.Conflict)
		assert.NotErrorIs(t, err, sale.ErrNotConfigured)
	})

	t.Run("only admin", func(t *testing.T) {
		f := newFixture(t)
		err := f.sale.SetSaleParams(f.ctx, owner, defaultParams())
		assert.ErrorIs(t, err, sale.ErrNotAdmin)
		assert.Equal(t, sale.PhaseUnconfigured, f.sale.Phase())
	})

	testcases := []struct {
		name     string
		modify   func(p *sale.SaleParameters)
		expected error
	}{
		{
			name:     "zero price",
			modify:   func(p *sale.SaleParameters) { p.Price = uint128.Zero },
			expected: sale.ErrInvalidPrice,
		},
		{
			name:     "zero supply",
			modify:   func(p *sale.SaleParameters) { p.AmountToSell = uint128.Zero },
			expected: sale.ErrInvalidSupply,
		},
		{
			name:     "round 1 end in the past",
			modify:   func(p *sale.SaleParameters) { p.Round1Start, p.Round1End = t0.Add(-2*time.Hour), t0.Add(-time.Hour) },
			expected: sale.ErrInvalidWindow,
		},
		{
			name:     "round 1 end equals now",
			modify:   func(p *sale.SaleParameters) { p.Round1Start, p.Round1End = t0.Add(-time.Hour), t0 },
			expected: sale.ErrInvalidWindow,
		},
		{
			name:     "round 2 ends before round 1",
			modify:   func(p *sale.SaleParameters) { p.Round2End = p.Round1End },
			expected: sale.ErrInvalidWindow,
		},
		{
			name:     "round 2 starts inside round 1",
			modify:   func(p *sale.SaleParameters) { p.Round2Start = p.Round1End.Add(-time.Minute) },
			expected: sale.ErrInvalidWindow,
		},
		{
			name:     "unlock time in the past",
			modify:   func(p *sale.SaleParameters) { p.TokensUnlockTime = t0.Add(-time.Second) },
			expected: sale.ErrInvalidWindow,
		},
		{
			name:     "decimals out of range",
			modify:   func(p *sale.SaleParameters) { p.TokenDecimals = 40 },
			expected: sale.ErrInvalidDecimals,
		},
		{
			name:     "missing sale owner",
			modify:   func(p *sale.SaleParameters) { p.SaleOwner = "" },
			expected: sale.ErrInvalidAddress,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			params := defaultParams()
			tc.modify(&params)

			err := f.sale.SetSaleParams(f.ctx, admin, params)
			assert.ErrorIs(t, err, tc.expected)
			assert.ErrorIs(t, err, sale.ErrInvalidInput)

			// a rejected call leaves the sale unconfigured
			_, ok := f.sale.Params()
			assert.False(t, ok)
			require.NoError(t, f.sale.SetSaleParams(f.ctx, admin, defaultParams()))
		})
	}
}

func TestSetQuoteToken(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.sale.SetQuoteToken(f.ctx, admin, "USDT"), sale.ErrNotConfigured)

	require.NoError(t, f.sale.SetSaleParams(f.ctx, admin, defaultParams()))
	require.NoError(t, f.sale.SetQuoteToken(f.ctx, admin, "USDT"))
	params, _ := f.sale.Params()
	assert.Equal(t, "USDT", params.QuoteToken)

	f.clock.Set(t0.Add(2 * time.Hour))
	assert.ErrorIs(t, f.sale.SetQuoteToken(f.ctx, admin, "DAI"), sale.ErrRound1Started)
}

func TestDepositTokens(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.sale.DepositTokens(f.ctx, owner), sale.ErrNotConfigured)
	require.NoError(t, f.sale.SetSaleParams(f.ctx, admin, defaultParams()))

	assert.ErrorIs(t, f.sale.DepositTokens(f.ctx, admin), sale.ErrNotSaleOwner)

	// no allowance yet
	require.NoError(t, f.custody.Mint(saleToken, owner, tokens(2000)))
	err := f.sale.DepositTokens(f.ctx, owner)
	assert.ErrorIs(t, err, sale.ErrTransferFailed)
	assert.ErrorIs(t, err, errs.Unavailable)
	assert.True(t, errors.Is(err, sale.ErrTransferFailed))

	f.custody.Approve(saleToken, owner, tokens(2000))
	require.NoError(t, f.sale.DepositTokens(f.ctx, owner))
	assert.Equal(t, tokens(2000), f.custody.Held(saleToken))
	assert.ErrorIs(t, f.sale.DepositTokens(f.ctx, owner), sale.ErrAlreadyDeposited)
}
