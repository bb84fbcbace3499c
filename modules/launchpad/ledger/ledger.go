// Package ledger provides in-memory staking and token custody ledgers.
// They back local runs and tests in place of the external collaborators.
package ledger

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/uint128"
)

var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

var (
	_ sale.StakingLedger = (*Stakes)(nil)
	_ sale.Custody       = (*Custody)(nil)
)

// Stakes is an in-memory staking ledger.
type Stakes struct {
	mu       sync.RWMutex
	balances map[sale.Address]uint128.Uint128
}

func NewStakes() *Stakes {
	return &Stakes{
		balances: make(map[sale.Address]uint128.Uint128),
	}
}

func (s *Stakes) SetStake(user sale.Address, amount uint128.Uint128) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[user] = amount
}

func (s *Stakes) StakedBalance(_ context.Context, user sale.Address) (uint128.Uint128, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[user], nil
}

// Custody is an in-memory multi-token ledger with a single custody account.
// TransferIn consumes an allowance previously granted with Approve.
type Custody struct {
	mu         sync.Mutex
	balances   map[string]map[sale.Address]uint128.Uint128
	allowances map[string]map[sale.Address]uint128.Uint128
	held       map[string]uint128.Uint128
}

func NewCustody() *Custody {
	return &Custody{
		balances:   make(map[string]map[sale.Address]uint128.Uint128),
		allowances: make(map[string]map[sale.Address]uint128.Uint128),
		held:       make(map[string]uint128.Uint128),
	}
}

func bucket(m map[string]map[sale.Address]uint128.Uint128, token string) map[sale.Address]uint128.Uint128 {
	b, ok := m[token]
	if !ok {
		b = make(map[sale.Address]uint128.Uint128)
		m[token] = b
	}
	return b
}

// Mint credits amount of token to holder.
func (c *Custody) Mint(token string, holder sale.Address, amount uint128.Uint128) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	balances := bucket(c.balances, token)
	next, overflow := balances[holder].AddOverflow(amount)
	if overflow {
		return errors.WithStack(errs.OverflowUint128)
	}
	balances[holder] = next
	return nil
}

// Approve sets the amount of token the custody may pull from owner.
func (c *Custody) Approve(token string, owner sale.Address, amount uint128.Uint128) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket(c.allowances, token)[owner] = amount
}

func (c *Custody) BalanceOf(token string, holder sale.Address) uint128.Uint128 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balances[token][holder]
}

func (c *Custody) Allowance(token string, owner sale.Address) uint128.Uint128 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allowances[token][owner]
}

// Held returns the amount of token in custody.
func (c *Custody) Held(token string) uint128.Uint128 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.held[token]
}

func (c *Custody) TransferIn(_ context.Context, token string, from sale.Address, amount uint128.Uint128) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	allowances := bucket(c.allowances, token)
	balances := bucket(c.balances, token)
	if allowances[from].Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientAllowance, "%s allowance of %s", token, from)
	}
	if balances[from].Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "%s balance of %s", token, from)
	}
	held, overflow := c.held[token].AddOverflow(amount)
	if overflow {
		return errors.WithStack(errs.OverflowUint128)
	}
	allowances[from] = allowances[from].Sub(amount)
	balances[from] = balances[from].Sub(amount)
	c.held[token] = held
	return nil
}

func (c *Custody) TransferOut(_ context.Context, token string, to sale.Address, amount uint128.Uint128) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.held[token].Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "%s held in custody", token)
	}
	balances := bucket(c.balances, token)
	next, overflow := balances[to].AddOverflow(amount)
	if overflow {
		return errors.WithStack(errs.OverflowUint128)
	}
	c.held[token] = c.held[token].Sub(amount)
	balances[to] = next
	return nil
}
