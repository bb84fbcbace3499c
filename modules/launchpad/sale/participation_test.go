package sale_test

import (
	"testing"
	"time"

	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipate(t *testing.T) {
	whale := sale.NewAddress("0xWhale")
	lucky := sale.NewAddress("0xLucky")
	unlucky := sale.NewAddress("0xUnlucky")
	stranger := sale.NewAddress("0xStranger")

	t.Run("window", func(t *testing.T) {
		f := newFixture(t)
		f.configure(defaultParams())
		f.register(whale, tokens(1500))
		f.fund(whale, usdc(100))

		f.clock.Set(t0.Add(2*time.Hour - time.Second))
		assert.ErrorIs(t, f.sale.Participate(f.ctx, whale, usdc(100)), sale.ErrRound1NotOpen)
		f.clock.Set(t0.Add(4*time.Hour + time.Second))
		assert.ErrorIs(t, f.sale.Participate(f.ctx, whale, usdc(100)), sale.ErrRound1NotOpen)
		f.clock.Set(t0.Add(4 * time.Hour))
		assert.NoError(t, f.sale.Participate(f.ctx, whale, usdc(100)))
	})

	t.Run("minimum is checked before whitelist", func(t *testing.T) {
		f := newFixture(t)
		f.configure(defaultParams())
		f.clock.Set(t0.Add(3 * time.Hour))
		assert.ErrorIs(t, f.sale.Participate(f.ctx, stranger, usdc(9)), sale.ErrBelowMinimum)
		assert.ErrorIs(t, f.sale.Participate(f.ctx, stranger, usdc(10)), sale.ErrNotWhitelisted)
		assert.ErrorIs(t, f.sale.Participate(f.ctx, stranger, uint128.Zero), sale.ErrInvalidAmount)
	})

	t.Run("lottery gate", func(t *testing.T) {
		f := newFixture(t)
		f.configure(defaultParams())
		f.register(lucky, tokens(100))
		f.register(unlucky, tokens(200))
		f.fund(unlucky, usdc(100))
		f.clock.Set(t0.Add(3 * time.Hour))
		assert.ErrorIs(t, f.sale.Participate(f.ctx, unlucky, usdc(100)), sale.ErrNotAllowed, "lottery not run")

		f.lottery(0, 2)
		f.participate(lucky, usdc(100))
		f.participate(unlucky, usdc(100))
	})

	t.Run("single shot", func(t *testing.T) {
		f := newFixture(t)
		f.configure(defaultParams())
		f.register(whale, tokens(1500))
		f.participate(whale, usdc(300))

		f.fund(whale, usdc(500))
		assert.ErrorIs(t, f.sale.Participate(f.ctx, whale, usdc(300)), sale.ErrAlreadyParticipated)
		assert.ErrorIs(t, f.sale.Participate(f.ctx, whale, usdc(50)), sale.ErrAlreadyParticipated)
		assert.ErrorIs(t, f.sale.Participate(f.ctx, whale, usdc(5)), sale.ErrAlreadyParticipated, "below minimum")
		assert.ErrorIs(t, f.sale.Participate(f.ctx, whale, uint128.Zero), sale.ErrAlreadyParticipated, "zero amount")

		tier, err := f.sale.Tier(1)
		require.NoError(t, err)
		assert.EqualValues(t, 1, tier.Participants)
		assert.Equal(t, usdc(300), tier.QuoteDeposited)
		assert.EqualValues(t, 1, f.sale.NumOfParticipants())

		participation, ok := f.sale.Participation(whale)
		require.True(t, ok)
		assert.Equal(t, sale.Participation{
			TierID:          1,
			QuoteDeposited:  usdc(300),
			Round1Deposited: usdc(300),
			HasParticipated: true,
		}, participation)
		assert.Equal(t, usdc(300), f.custody.Held(quoteToken))
	})

	t.Run("deposits are capped by the supply", func(t *testing.T) {
		f := newFixture(t)
		f.configure(defaultParams())
		f.register(whale, tokens(1500))
		f.register(lucky, tokens(100))
		f.lottery(0, 1)
		f.fund(whale, usdc(5000))
		f.clock.Set(t0.Add(3 * time.Hour))

		assert.ErrorIs(t, f.sale.Participate(f.ctx, whale, usdc(5000)), sale.ErrSupplyExhausted)
		assert.ErrorIs(t, f.sale.Participate(f.ctx, whale, usdc(2001)), sale.ErrSupplyExhausted)
		require.NoError(t, f.sale.Participate(f.ctx, whale, usdc(1990)))

		f.fund(lucky, usdc(20))
		assert.ErrorIs(t, f.sale.Participate(f.ctx, lucky, usdc(20)), sale.ErrSupplyExhausted)
		require.NoError(t, f.sale.Participate(f.ctx, lucky, usdc(10)))

		_, ok := f.sale.Participation(lucky)
		assert.True(t, ok)
		assert.Equal(t, usdc(2000), f.custody.Held(quoteToken))
		assert.Equal(t, tokens(2000), f.calculate().TokensSold1)
	})

	t.Run("failed transfer leaves no trace", func(t *testing.T) {
		f := newFixture(t)
		f.configure(defaultParams())
		f.register(whale, tokens(1500))
		f.clock.Set(t0.Add(3 * time.Hour))

		// funded but not approved
		require.NoError(t, f.custody.Mint(quoteToken, whale, usdc(100)))
		err := f.sale.Participate(f.ctx, whale, usdc(100))
		assert.ErrorIs(t, err, sale.ErrTransferFailed)

		_, ok := f.sale.Participation(whale)
		assert.False(t, ok)
		assert.EqualValues(t, 0, f.sale.NumOfParticipants())
		tier, _ := f.sale.Tier(1)
		assert.True(t, tier.QuoteDeposited.IsZero())

		f.custody.Approve(quoteToken, whale, usdc(100))
		assert.NoError(t, f.sale.Participate(f.ctx, whale, usdc(100)))
	})
}

func TestCalculateFirstRoundSale(t *testing.T) {
	t.Run("pooled leftover", func(t *testing.T) {
		f := newFixture(t)
		f.configure(defaultParams())
		small := sale.NewAddress("0xSmall")
		big1, big2 := sale.NewAddress("0xBig1"), sale.NewAddress("0xBig2")
		f.register(small, tokens(100))
		f.register(big1, tokens(1000))
		f.register(big2, tokens(5000))
		f.lottery(0, 1)

		// tier 0 is entitled to 1200 tokens and sells half, tier 1 sells all 800
		f.participate(small, usdc(600))
		f.participate(big1, usdc(400))
		f.participate(big2, usdc(400))

		f.clock.Set(t0.Add(4 * time.Hour))
		_, err := f.sale.CalculateFirstRoundSale(f.ctx, admin)
		assert.ErrorIs(t, err, sale.ErrRound1NotEnded)

		round := f.calculate()
		assert.Equal(t, sale.RoundState{
			TokensSold1:          tokens(1400),
			TokensRemaining2:     tokens(600),
			TokensSold2:          uint128.Zero,
			FirstRoundCalculated: true,
		}, round)
		assert.Equal(t, sale.PhaseAllocated, f.sale.Phase())

		_, err = f.sale.CalculateFirstRoundSale(f.ctx, admin)
		assert.ErrorIs(t, err, sale.ErrAlreadyCalculated)

		// round 2 buys are capped by the pooled remainder
		buyer1, buyer2 := sale.NewAddress("0xBuyer1"), sale.NewAddress("0xBuyer2")
		f.fund(buyer1, usdc(1000))
		f.fund(buyer2, usdc(1000))
		f.clock.Set(t0.Add(5 * time.Hour))

		bought, err := f.sale.Buy(f.ctx, buyer1, usdc(400))
		require.NoError(t, err)
		assert.Equal(t, tokens(400), bought)
		_, err = f.sale.Buy(f.ctx, buyer2, usdc(300))
		assert.ErrorIs(t, err, sale.ErrSupplyExhausted)
		_, err = f.sale.Buy(f.ctx, buyer2, usdc(200))
		require.NoError(t, err)
		_, err = f.sale.Buy(f.ctx, buyer1, usdc(10))
		assert.ErrorIs(t, err, sale.ErrSupplyExhausted)

		assert.True(t, f.sale.Round().TokensRemaining2.IsZero())
		assert.Equal(t, tokens(600), f.sale.Round().TokensSold2)
	})

	t.Run("prerequisites", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.sale.CalculateFirstRoundSale(f.ctx, admin)
		assert.ErrorIs(t, err, sale.ErrNotConfigured)

		require.NoError(t, f.sale.SetSaleParams(f.ctx, admin, defaultParams()))
		f.clock.Set(t0.Add(5 * time.Hour))
		_, err = f.sale.CalculateFirstRoundSale(f.ctx, admin)
		assert.ErrorIs(t, err, sale.ErrNotConfigured, "tiers are missing")
	})

	t.Run("nothing sold opens the whole supply", func(t *testing.T) {
		f := newFixture(t)
		f.configure(defaultParams())
		round := f.calculate()
		assert.Equal(t, tokens(2000), round.TokensRemaining2)
		assert.True(t, round.TokensSold1.IsZero())
	})
}

func TestBuyCannotOversellSupply(t *testing.T) {
	f := newFixture(t)
	users := runScenario(t, f)

	// tier 1 bought 900 tokens against an 800 entitlement, so only 300 of
	// the pooled 400 are left unsold
	round := f.calculate()
	require.Equal(t, tokens(400), round.TokensRemaining2)
	require.Equal(t, tokens(1700), round.TokensSold1)

	buyer := sale.NewAddress("0xFrank")
	f.fund(buyer, usdc(400))
	f.clock.Set(t0.Add(5 * time.Hour))

	_, err := f.sale.Buy(f.ctx, buyer, usdc(400))
	assert.ErrorIs(t, err, sale.ErrSupplyExhausted)
	bought, err := f.sale.Buy(f.ctx, buyer, usdc(300))
	require.NoError(t, err)
	assert.Equal(t, tokens(300), bought)
	_, err = f.sale.Buy(f.ctx, buyer, usdc(10))
	assert.ErrorIs(t, err, sale.ErrSupplyExhausted)

	// every purchase can be paid out of the deposited supply
	f.clock.Set(t0.Add(9 * time.Hour))
	claimants := []sale.Address{buyer}
	for _, u := range users {
		claimants = append(claimants, u.addr)
	}
	for _, addr := range claimants {
		for portion := 0; portion < 3; portion++ {
			_, err := f.sale.WithdrawTokens(f.ctx, addr, portion)
			require.NoError(t, err, addr)
		}
	}
	assert.True(t, f.custody.Held(saleToken).IsZero())
}

func TestBuy(t *testing.T) {
	buyer := sale.NewAddress("0xBuyer")

	f := newFixture(t)
	f.configure(defaultParams())
	f.register(buyer, tokens(1500))
	f.participate(buyer, usdc(100))
	f.fund(buyer, usdc(2000))

	f.clock.Set(t0.Add(5 * time.Hour))
	_, err := f.sale.Buy(f.ctx, buyer, usdc(100))
	assert.ErrorIs(t, err, sale.ErrRound2NotOpen, "first round not calculated")

	f.calculate()
	_, err = f.sale.Buy(f.ctx, buyer, usdc(100))
	assert.ErrorIs(t, err, sale.ErrRound2NotOpen, "before round 2")

	f.clock.Set(t0.Add(5 * time.Hour))
	_, err = f.sale.Buy(f.ctx, buyer, usdc(9))
	assert.ErrorIs(t, err, sale.ErrBelowMinimum)
	_, err = f.sale.Buy(f.ctx, buyer, usdc(1001))
	assert.ErrorIs(t, err, sale.ErrAboveMaximum)

	_, err = f.sale.Buy(f.ctx, buyer, usdc(600))
	require.NoError(t, err)
	_, err = f.sale.Buy(f.ctx, buyer, usdc(400))
	require.NoError(t, err)
	_, err = f.sale.Buy(f.ctx, buyer, usdc(10))
	assert.ErrorIs(t, err, sale.ErrAboveMaximum, "cumulative round 2 maximum")

	participation, ok := f.sale.Participation(buyer)
	require.True(t, ok)
	assert.Equal(t, sale.Participation{
		TierID:          1,
		QuoteDeposited:  usdc(1100),
		Round1Deposited: usdc(100),
		Round2Deposited: usdc(1000),
		HasParticipated: true,
	}, participation)
	assert.EqualValues(t, 1, f.sale.NumOfParticipants(), "round 2 tops up the same participation")

	// round 2 is open to users who never registered
	walkIn := sale.NewAddress("0xWalkIn")
	f.fund(walkIn, usdc(50))
	_, err = f.sale.Buy(f.ctx, walkIn, usdc(50))
	require.NoError(t, err)
	participation, ok = f.sale.Participation(walkIn)
	require.True(t, ok)
	assert.Equal(t, -1, participation.TierID)
	assert.EqualValues(t, 2, f.sale.NumOfParticipants())

	f.clock.Set(t0.Add(6*time.Hour + time.Second))
	_, err = f.sale.Buy(f.ctx, walkIn, usdc(10))
	assert.ErrorIs(t, err, sale.ErrRound2NotOpen, "after round 2")
}
