package sale_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gaze-network/launchpad/modules/launchpad/ledger"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	saleToken  = "XPAD"
	quoteToken = "USDC"
)

var (
	admin = sale.NewAddress("0xAdmin")
	owner = sale.NewAddress("0xOwner")

	t0 = time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// tokens returns n whole sale tokens (18 decimals).
func tokens(n uint64) uint128.Uint128 {
	return uint128.From64(n).Mul64(1_000_000_000_000_000_000)
}

// usdc returns n whole quote units (6 decimals).
func usdc(n uint64) uint128.Uint128 {
	return uint128.From64(n).Mul64(1_000_000)
}

type fixture struct {
	t       *testing.T
	ctx     context.Context
	clock   *fakeClock
	stakes  *ledger.Stakes
	custody *ledger.Custody
	sale    *sale.Sale
}

func newFixture(t *testing.T, opts ...sale.Option) *fixture {
	t.Helper()
	f := &fixture{
		t:       t,
		ctx:     context.Background(),
		clock:   &fakeClock{now: t0},
		stakes:  ledger.NewStakes(),
		custody: ledger.NewCustody(),
	}
	opts = append([]sale.Option{sale.WithClock(f.clock), sale.WithRandomSource(sale.FixedSeed{1})}, opts...)
	f.sale = sale.New("sale-1", admin, f.stakes, f.custody, opts...)
	return f
}

func defaultParams() sale.SaleParameters {
	return sale.SaleParameters{
		SaleToken:        saleToken,
		QuoteToken:       quoteToken,
		SaleOwner:        owner,
		Price:            usdc(1),
		AmountToSell:     tokens(2000),
		Round1Start:      t0.Add(2 * time.Hour),
		Round1End:        t0.Add(4 * time.Hour),
		Round2Start:      t0.Add(5 * time.Hour),
		Round2End:        t0.Add(6 * time.Hour),
		Round1MinDeposit: usdc(10),
		Round2MinDeposit: usdc(10),
		Round2MaxDeposit: usdc(1000),
		TokensUnlockTime: t0.Add(7 * time.Hour),
	}
}

// configure sets params, a registration window, tiers [100 lottery, 1000] with
// weights 60/40, a 33/33/34 vesting schedule and funds the sale tokens.
func (f *fixture) configure(params sale.SaleParameters) {
	f.t.Helper()
	require.NoError(f.t, f.sale.SetSaleParams(f.ctx, admin, params))
	require.NoError(f.t, f.sale.SetRegistrationTime(f.ctx, admin, t0.Add(time.Minute), t0.Add(time.Hour)))
	require.NoError(f.t, f.sale.AddTiers(f.ctx, admin,
		[]uint64{60, 40},
		[]uint128.Uint128{tokens(100), tokens(1000)},
		[]bool{true, false},
	))
	require.NoError(f.t, f.sale.SetVestingParams(f.ctx, admin,
		[]time.Time{t0.Add(7 * time.Hour), t0.Add(8 * time.Hour), t0.Add(9 * time.Hour)},
		[]uint64{33, 33, 34},
	))
	require.NoError(f.t, f.custody.Mint(saleToken, owner, params.AmountToSell))
	f.custody.Approve(saleToken, owner, params.AmountToSell)
	require.NoError(f.t, f.sale.DepositTokens(f.ctx, owner))
}

// register stakes and registers user during the registration window.
func (f *fixture) register(user sale.Address, stake uint128.Uint128) int {
	f.t.Helper()
	f.stakes.SetStake(user, stake)
	f.clock.Set(t0.Add(30 * time.Minute))
	tierID, err := f.sale.RegisterForSale(f.ctx, user)
	require.NoError(f.t, err)
	return tierID
}

// fund mints and approves quote currency for user.
func (f *fixture) fund(user sale.Address, amount uint128.Uint128) {
	f.t.Helper()
	require.NoError(f.t, f.custody.Mint(quoteToken, user, amount))
	f.custody.Approve(quoteToken, user, amount)
}

func (f *fixture) participate(user sale.Address, amount uint128.Uint128) {
	f.t.Helper()
	f.fund(user, amount)
	f.clock.Set(t0.Add(3 * time.Hour))
	require.NoError(f.t, f.sale.Participate(f.ctx, user, amount))
}

func (f *fixture) calculate() sale.RoundState {
	f.t.Helper()
	f.clock.Set(t0.Add(4*time.Hour + time.Second))
	round, err := f.sale.CalculateFirstRoundSale(f.ctx, admin)
	require.NoError(f.t, err)
	return round
}

func (f *fixture) lottery(tierID int, winners int) sale.LotteryResult {
	f.t.Helper()
	result, err := f.sale.RunLottery(f.ctx, admin, tierID, winners)
	require.NoError(f.t, err)
	return result
}
