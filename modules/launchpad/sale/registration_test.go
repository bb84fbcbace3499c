package sale_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestAddTiers(t *testing.T) {
	f := newFixture(t)
	thresholds := []uint128.Uint128{tokens(100), tokens(1000)}

	assert.ErrorIs(t, f.sale.AddTiers(f.ctx, admin, []uint64{50}, thresholds, []bool{true, false}), sale.ErrLengthMismatch)
	assert.ErrorIs(t, f.sale.AddTiers(f.ctx, admin, []uint64{50, 30}, thresholds, []bool{true}), sale.ErrLengthMismatch)
	assert.ErrorIs(t, f.sale.AddTiers(f.ctx, admin, nil, nil, nil), sale.ErrInvalidTiers)
	assert.ErrorIs(t, f.sale.AddTiers(f.ctx, admin, []uint64{0, 0}, thresholds, []bool{true, false}), sale.ErrInvalidTiers)
	assert.ErrorIs(t, f.sale.AddTiers(f.ctx, owner, []uint64{50, 30}, thresholds, []bool{true, false}), sale.ErrNotAdmin)

	// tiers do not depend on sale params
	require.NoError(t, f.sale.AddTiers(f.ctx, admin, []uint64{50, 30}, thresholds, []bool{true, false}))
	assert.Equal(t, []sale.Tier{
		{Weight: 50, MinStake: tokens(100), IsLottery: true},
		{Weight: 30, MinStake: tokens(1000), IsLottery: false},
	}, f.sale.Tiers())

	assert.ErrorIs(t, f.sale.AddTiers(f.ctx, admin, []uint64{50, 30}, thresholds, []bool{true, false}), sale.ErrAlreadySet)
}

func TestSetRegistrationTime(t *testing.T) {
	f := newFixture(t)
	start, end := t0.Add(time.Minute), t0.Add(time.Hour)

	assert.ErrorIs(t, f.sale.SetRegistrationTime(f.ctx, admin, start, end), sale.ErrNotConfigured)
	require.NoError(t, f.sale.SetSaleParams(f.ctx, admin, defaultParams()))

	assert.ErrorIs(t, f.sale.SetRegistrationTime(f.ctx, admin, t0, end), sale.ErrStartNotFuture)
	assert.ErrorIs(t, f.sale.SetRegistrationTime(f.ctx, admin, start, start), sale.ErrEndBeforeStart)
	assert.ErrorIs(t, f.sale.SetRegistrationTime(f.ctx, admin, start, t0.Add(4*time.Hour+time.Second)), sale.ErrEndAfterSaleEnd)

	require.NoError(t, f.sale.SetRegistrationTime(f.ctx, admin, start, end))
	// can be moved before registration starts
	require.NoError(t, f.sale.SetRegistrationTime(f.ctx, admin, start.Add(time.Minute), end))
	window, ok := f.sale.RegistrationWindow()
	require.True(t, ok)
	assert.Equal(t, start.Add(time.Minute), window.Start)

	f.clock.Set(start.Add(time.Minute))
	assert.ErrorIs(t, f.sale.SetRegistrationTime(f.ctx, admin, start.Add(time.Hour), end.Add(time.Hour)), sale.ErrRegistrationStarted)
}

func TestRegisterForSale(t *testing.T) {
	t.Run("highest qualifying tier", func(t *testing.T) {
		f := newFixture(t)
		f.configure(defaultParams())

		assert.Equal(t, 0, f.register(sale.NewAddress("0x1"), tokens(100)))
		assert.Equal(t, 0, f.register(sale.NewAddress("0x2"), tokens(999)))
		assert.Equal(t, 1, f.register(sale.NewAddress("0x3"), tokens(1000)))
		assert.Equal(t, 1, f.register(sale.NewAddress("0x4"), tokens(1500)))

		assert.EqualValues(t, 4, f.sale.NumberOfRegistrants())
		assert.Equal(t, sale.Registration{TierID: 1, Registered: true, Allowed: true}, f.sale.Registration(sale.NewAddress("0x4")))
		assert.Equal(t, sale.Registration{TierID: 0, Registered: true, Allowed: false}, f.sale.Registration(sale.NewAddress("0x1")))
		assert.Equal(t, sale.Registration{TierID: -1}, f.sale.Registration(sale.NewAddress("0x5")))
	})

	t.Run("unordered thresholds", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.sale.SetSaleParams(f.ctx, admin, defaultParams()))
		require.NoError(t, f.sale.SetRegistrationTime(f.ctx, admin, t0.Add(time.Minute), t0.Add(time.Hour)))
		require.NoError(t, f.sale.AddTiers(f.ctx, admin,
			[]uint64{50, 30}, []uint128.Uint128{tokens(1000), tokens(100)}, []bool{false, false}))

		// the scan starts at the highest index, so tier 0 is never reached
		assert.Equal(t, 1, f.register(sale.NewAddress("0x1"), tokens(100)))
		assert.Equal(t, 1, f.register(sale.NewAddress("0x2"), tokens(1500)))

		f.stakes.SetStake(sale.NewAddress("0x3"), tokens(99))
		_, err := f.sale.RegisterForSale(f.ctx, sale.NewAddress("0x3"))
		assert.ErrorIs(t, err, sale.ErrInsufficientStake)
	})

	t.Run("lottery roster", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.sale.SetSaleParams(f.ctx, admin, defaultParams()))
		require.NoError(t, f.sale.SetRegistrationTime(f.ctx, admin, t0.Add(time.Minute), t0.Add(time.Hour)))
		require.NoError(t, f.sale.AddTiers(f.ctx, admin,
			[]uint64{50, 30}, []uint128.Uint128{tokens(100), tokens(1000)}, []bool{true, false}))

		f.register(sale.NewAddress("0x1"), tokens(100))
		f.register(sale.NewAddress("0x2"), tokens(200))
		f.register(sale.NewAddress("0x3"), tokens(1500))

		wallets, err := f.sale.LotteryWallets(0)
		require.NoError(t, err)
		assert.Equal(t, 2, wallets)
		wallets, err = f.sale.LotteryWallets(1)
		require.NoError(t, err)
		assert.Equal(t, 0, wallets)
		_, err = f.sale.LotteryWallets(2)
		assert.ErrorIs(t, err, sale.ErrInvalidTier)
	})

	t.Run("rejections", func(t *testing.T) {
		f := newFixture(t)
		user := sale.NewAddress("0xUser")
		f.stakes.SetStake(user, tokens(100))

		_, err := f.sale.RegisterForSale(f.ctx, user)
		assert.ErrorIs(t, err, sale.ErrRegistrationClosed, "no registration window")

		f.configure(defaultParams())
		_, err = f.sale.RegisterForSale(f.ctx, user)
		assert.ErrorIs(t, err, sale.ErrRegistrationClosed, "before window")

		f.clock.Set(t0.Add(time.Hour + time.Second))
		_, err = f.sale.RegisterForSale(f.ctx, user)
		assert.ErrorIs(t, err, sale.ErrRegistrationClosed, "after window")

		f.clock.Set(t0.Add(time.Hour))
		poor := sale.NewAddress("0xPoor")
		f.stakes.SetStake(poor, tokens(99))
		_, err = f.sale.RegisterForSale(f.ctx, poor)
		assert.ErrorIs(t, err, sale.ErrInsufficientStake)
		assert.ErrorIs(t, err, sale.ErrIneligible)

		_, err = f.sale.RegisterForSale(f.ctx, user)
		require.NoError(t, err)
		_, err = f.sale.RegisterForSale(f.ctx, user)
		assert.ErrorIs(t, err, sale.ErrAlreadyRegistered)
		assert.EqualValues(t, 1, f.sale.NumberOfRegistrants())
	})

	t.Run("concurrent registrations", func(t *testing.T) {
		f := newFixture(t)
		f.configure(defaultParams())
		f.clock.Set(t0.Add(30 * time.Minute))

		const users = 64
		var g errgroup.Group
		for i := 0; i < users; i++ {
			user := sale.NewAddress(fmt.Sprintf("0x%02d", i))
			f.stakes.SetStake(user, tokens(uint64(100+i*20)))
			g.Go(func() error {
				_, err := f.sale.RegisterForSale(f.ctx, user)
				return err
			})
			// every user also races a duplicate registration
			g.Go(func() error {
				_, _ = f.sale.RegisterForSale(f.ctx, user)
				return nil
			})
		}
		// the duplicate may win the race, so errors are only checked through the counters
		_ = g.Wait()

		assert.EqualValues(t, users, f.sale.NumberOfRegistrants())
		roster, err := f.sale.LotteryWallets(0)
		require.NoError(t, err)
		var tier0 int
		for i := 0; i < users; i++ {
			if f.sale.Registration(sale.NewAddress(fmt.Sprintf("0x%02d", i))).TierID == 0 {
				tier0++
			}
		}
		assert.Equal(t, tier0, roster)
	})
}
