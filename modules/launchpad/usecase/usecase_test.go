package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/ledger"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/uint128"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin = sale.NewAddress("0xAdmin")
	owner = sale.NewAddress("0xOwner")
	alice = sale.NewAddress("0xAlice")

	t0 = time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func tokens(n uint64) uint128.Uint128 {
	return uint128.From64(n).Mul64(1_000_000_000_000_000_000)
}

func usdc(n uint64) uint128.Uint128 {
	return uint128.From64(n).Mul64(1_000_000)
}

type suite struct {
	ctx     context.Context
	clock   *manualClock
	store   *faultyGateway
	stakes  *ledger.Stakes
	custody *ledger.Custody
	uc      *Usecase
}

func newSuite(t *testing.T, config Config) *suite {
	t.Helper()
	s := &suite{
		ctx:     context.Background(),
		clock:   &manualClock{now: t0},
		store:   newFaultyGateway(),
		stakes:  ledger.NewStakes(),
		custody: ledger.NewCustody(),
	}
	s.uc = s.newUsecase(config)
	return s
}

func (s *suite) newUsecase(config Config) *Usecase {
	config.Clock = s.clock
	config.Random = sale.FixedSeed{3}
	return New(s.store, s.stakes, func(string) sale.Custody { return s.custody }, config)
}

func params() sale.SaleParameters {
	return sale.SaleParameters{
		SaleToken:        "XPAD",
		QuoteToken:       "USDC",
		SaleOwner:        owner,
		Price:            usdc(1),
		AmountToSell:     tokens(1000),
		Round1Start:      t0.Add(2 * time.Hour),
		Round1End:        t0.Add(4 * time.Hour),
		Round2Start:      t0.Add(5 * time.Hour),
		Round2End:        t0.Add(6 * time.Hour),
		Round1MinDeposit: usdc(10),
		Round2MinDeposit: usdc(10),
		Round2MaxDeposit: usdc(500),
		TokensUnlockTime: t0.Add(7 * time.Hour),
	}
}

// configure creates a sale with a registration window, one open tier and a single vesting portion.
func (s *suite) configure(t *testing.T) string {
	t.Helper()
	info, err := s.uc.CreateSale(s.ctx, admin)
	require.NoError(t, err)
	id := info.ID
	require.NoError(t, s.uc.SetSaleParams(s.ctx, id, admin, params()))
	require.NoError(t, s.uc.SetRegistrationTime(s.ctx, id, admin, t0.Add(time.Minute), t0.Add(time.Hour)))
	require.NoError(t, s.uc.AddTiers(s.ctx, id, admin, []uint64{1}, []uint128.Uint128{tokens(100)}, []bool{false}))
	require.NoError(t, s.uc.SetVestingParams(s.ctx, id, admin, []time.Time{t0.Add(7 * time.Hour)}, []uint64{100}))
	return id
}

func TestCreateSale(t *testing.T) {
	t.Run("anyone when no admins are configured", func(t *testing.T) {
		s := newSuite(t, Config{})
		info, err := s.uc.CreateSale(s.ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, alice, info.Admin)
		assert.Equal(t, sale.PhaseUnconfigured, info.Phase)
		_, err = uuid.Parse(info.ID)
		assert.NoError(t, err)

		stored, err := s.store.GetSale(s.ctx, info.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, stored.Version)
		assert.Equal(t, alice.String(), stored.Admin)
		events, err := s.uc.GetEvents(s.ctx, GetEventsParams{SaleID: info.ID})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, ActionCreateSale, events[0].Action)
	})

	t.Run("restricted to admins", func(t *testing.T) {
		s := newSuite(t, Config{Admins: []sale.Address{admin}})
		_, err := s.uc.CreateSale(s.ctx, alice)
		assert.ErrorIs(t, err, errs.PermissionDenied)
		_, err = s.uc.CreateSale(s.ctx, admin)
		assert.NoError(t, err)
		_, err = s.uc.CreateSale(s.ctx, "")
		assert.ErrorIs(t, err, sale.ErrInvalidAddress)
	})
}

func TestOperationsArePersisted(t *testing.T) {
	s := newSuite(t, Config{})
	id := s.configure(t)
	s.assertVersion(t, id, 5)

	// rejected calls are journaled without touching the stored state
	s.clock.Set(t0.Add(30 * time.Minute))
	_, err := s.uc.RegisterForSale(s.ctx, id, alice)
	assert.ErrorIs(t, err, sale.ErrInsufficientStake)
	s.assertVersion(t, id, 5)

	s.stakes.SetStake(alice, tokens(150))
	tierID, err := s.uc.RegisterForSale(s.ctx, id, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, tierID)

	events, err := s.uc.GetEvents(s.ctx, GetEventsParams{SaleID: id, Caller: alice})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.False(t, events[0].Valid)
	assert.Equal(t, sale.ErrInsufficientStake.Error(), events[0].Reason)
	assert.True(t, events[1].Valid)
	var payload map[string]map[string]int
	require.NoError(t, json.Unmarshal(events[1].Payload, &payload))
	assert.Equal(t, 0, payload["result"]["tier_id"])

	// a fresh usecase restores the same sale from storage
	restored := s.newUsecase(Config{})
	require.NoError(t, restored.LoadSales(s.ctx))
	expected, err := s.uc.GetSaleInfo(s.ctx, id)
	require.NoError(t, err)
	actual, err := restored.GetSaleInfo(s.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
	assert.Equal(t, sale.Registration{TierID: 0, Registered: true, Allowed: true}, restored.mustSale(t, id).Registration(alice))
}

func (s *suite) assertVersion(t *testing.T, id string, expected int64) {
	t.Helper()
	stored, err := s.store.GetSale(s.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, expected, stored.Version)
}

func (u *Usecase) mustSale(t *testing.T, id string) *sale.Sale {
	t.Helper()
	s, err := u.Sale(context.Background(), id)
	require.NoError(t, err)
	return s
}

func TestPersistenceFailureEvictsSale(t *testing.T) {
	s := newSuite(t, Config{})
	info, err := s.uc.CreateSale(s.ctx, admin)
	require.NoError(t, err)
	require.NoError(t, s.uc.SetSaleParams(s.ctx, info.ID, admin, params()))

	s.store.FailUpdates(errors.New("connection reset"))
	err = s.uc.SetRegistrationTime(s.ctx, info.ID, admin, t0.Add(time.Minute), t0.Add(time.Hour))
	require.Error(t, err)

	// the in-memory change is discarded with the evicted sale
	s.store.FailUpdates(nil)
	s.assertVersion(t, info.ID, 2)
	_, ok := s.uc.mustSale(t, info.ID).RegistrationWindow()
	assert.False(t, ok)
	require.NoError(t, s.uc.SetRegistrationTime(s.ctx, info.ID, admin, t0.Add(time.Minute), t0.Add(time.Hour)))
}

// openRound1 configures a funded sale, registers user and lets it spend 600 USDC.
func (s *suite) openRound1(t *testing.T, user sale.Address) string {
	t.Helper()
	id := s.configure(t)
	require.NoError(t, s.custody.Mint("XPAD", owner, tokens(1000)))
	s.custody.Approve("XPAD", owner, tokens(1000))
	require.NoError(t, s.uc.DepositTokens(s.ctx, id, owner))

	s.clock.Set(t0.Add(30 * time.Minute))
	s.stakes.SetStake(user, tokens(150))
	_, err := s.uc.RegisterForSale(s.ctx, id, user)
	require.NoError(t, err)
	require.NoError(t, s.custody.Mint("USDC", user, usdc(600)))
	s.custody.Approve("USDC", user, usdc(600))
	s.clock.Set(t0.Add(3 * time.Hour))
	return id
}

func TestPersistenceFailureRefundsDeposit(t *testing.T) {
	s := newSuite(t, Config{})
	id := s.openRound1(t, alice)
	s.assertVersion(t, id, 7)

	s.store.FailUpdates(errors.New("connection reset"))
	require.Error(t, s.uc.Participate(s.ctx, id, alice, usdc(200)))
	assert.Equal(t, usdc(600), s.custody.BalanceOf("USDC", alice))
	assert.True(t, s.custody.Held("USDC").IsZero())
	_, ok := s.uc.mustSale(t, id).Participation(alice)
	assert.False(t, ok)

	s.store.FailUpdates(nil)
	require.NoError(t, s.uc.Participate(s.ctx, id, alice, usdc(200)))
	s.assertVersion(t, id, 8)
	assert.Equal(t, usdc(400), s.custody.BalanceOf("USDC", alice))
	assert.Equal(t, usdc(200), s.custody.Held("USDC"))
	participation, ok := s.uc.mustSale(t, id).Participation(alice)
	require.True(t, ok)
	assert.Equal(t, usdc(200), participation.QuoteDeposited)
}

func TestPersistenceFailureAfterPayout(t *testing.T) {
	s := newSuite(t, Config{})
	id := s.openRound1(t, alice)
	require.NoError(t, s.uc.Participate(s.ctx, id, alice, usdc(200)))
	s.clock.Set(t0.Add(4*time.Hour + time.Second))
	_, err := s.uc.CalculateFirstRoundSale(s.ctx, id, admin)
	require.NoError(t, err)
	s.assertVersion(t, id, 9)

	s.clock.Set(t0.Add(7 * time.Hour))
	s.store.FailUpdates(errors.New("connection reset"))
	_, err = s.uc.WithdrawTokens(s.ctx, id, alice, 0)
	require.Error(t, err)
	assert.Equal(t, tokens(200), s.custody.BalanceOf("XPAD", alice))

	// the paid portion stays claimed while storage is down
	_, err = s.uc.WithdrawTokens(s.ctx, id, alice, 0)
	assert.ErrorIs(t, err, errs.Unavailable)
	assert.Equal(t, tokens(200), s.custody.BalanceOf("XPAD", alice))

	s.store.FailUpdates(nil)
	_, err = s.uc.WithdrawTokens(s.ctx, id, alice, 0)
	assert.ErrorIs(t, err, sale.ErrAlreadyClaimed)
	assert.Equal(t, tokens(200), s.custody.BalanceOf("XPAD", alice))
	s.assertVersion(t, id, 10)

	restored := s.newUsecase(Config{})
	require.NoError(t, restored.LoadSales(s.ctx))
	view, err := restored.GetUser(s.ctx, id, alice)
	require.NoError(t, err)
	require.Len(t, view.Portions, 1)
	assert.True(t, view.Portions[0].Claimed)
	_, err = restored.WithdrawTokens(s.ctx, id, alice, 0)
	assert.ErrorIs(t, err, sale.ErrAlreadyClaimed)

	events, err := s.uc.GetEvents(s.ctx, GetEventsParams{SaleID: id, Caller: alice})
	require.NoError(t, err)
	valid := 0
	for _, event := range events {
		if event.Action == ActionWithdrawTokens && event.Valid {
			valid++
		}
	}
	assert.Equal(t, 1, valid)
}

func TestUnknownSale(t *testing.T) {
	s := newSuite(t, Config{})
	_, err := s.uc.GetSaleInfo(s.ctx, uuid.NewString())
	assert.ErrorIs(t, err, errs.NotFound)
	err = s.uc.DepositTokens(s.ctx, uuid.NewString(), owner)
	assert.ErrorIs(t, err, errs.NotFound)
}

func TestSaleLifecycle(t *testing.T) {
	s := newSuite(t, Config{})
	id := s.configure(t)

	require.NoError(t, s.custody.Mint("XPAD", owner, tokens(1000)))
	s.custody.Approve("XPAD", owner, tokens(1000))
	require.NoError(t, s.uc.DepositTokens(s.ctx, id, owner))

	users := make([]sale.Address, 3)
	s.clock.Set(t0.Add(30 * time.Minute))
	for i := range users {
		users[i] = sale.NewAddress(fmt.Sprintf("0xUser%d", i))
		s.stakes.SetStake(users[i], tokens(100))
		_, err := s.uc.RegisterForSale(s.ctx, id, users[i])
		require.NoError(t, err)
		require.NoError(t, s.custody.Mint("USDC", users[i], usdc(600)))
		s.custody.Approve("USDC", users[i], usdc(600))
	}

	s.clock.Set(t0.Add(3 * time.Hour))
	for _, user := range users {
		require.NoError(t, s.uc.Participate(s.ctx, id, user, usdc(200)))
	}

	s.clock.Set(t0.Add(4*time.Hour + time.Second))
	round, err := s.uc.CalculateFirstRoundSale(s.ctx, id, admin)
	require.NoError(t, err)
	assert.Equal(t, tokens(400), round.TokensRemaining2)

	s.clock.Set(t0.Add(5 * time.Hour))
	bought, err := s.uc.Buy(s.ctx, id, users[0], usdc(400))
	require.NoError(t, err)
	assert.Equal(t, tokens(400), bought)

	tiers, err := s.uc.GetTiers(s.ctx, id)
	require.NoError(t, err)
	require.Len(t, tiers, 1)
	assert.EqualValues(t, 3, tiers[0].Participants)

	s.clock.Set(t0.Add(7 * time.Hour))
	withdrawn, err := s.uc.WithdrawTokens(s.ctx, id, users[0], 0)
	require.NoError(t, err)
	assert.Equal(t, tokens(600), withdrawn)

	view, err := s.uc.GetUser(s.ctx, id, users[0])
	require.NoError(t, err)
	require.NotNil(t, view.Participation)
	require.Len(t, view.Portions, 1)
	assert.True(t, view.Portions[0].Claimed)
	assert.Equal(t, tokens(600), view.Portions[0].Amount)

	earnings, err := s.uc.WithdrawEarnings(s.ctx, id, owner)
	require.NoError(t, err)
	assert.Equal(t, usdc(1000), earnings.Quote)
	assert.True(t, earnings.UnsoldTokens.IsZero())

	allocations, err := s.uc.GetAllocations(s.ctx, id)
	require.NoError(t, err)
	assert.Len(t, allocations, 3)

	events, err := s.uc.GetEvents(s.ctx, GetEventsParams{SaleID: id, Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionSetSaleParams, events[0].Action)
}
