package usecase

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/launchpad/pkg/logger/slogx"
	"github.com/gaze-network/uint128"
)

type direction int

const (
	transferIn direction = iota
	transferOut
)

type transfer struct {
	direction direction
	token     string
	account   sale.Address
	amount    uint128.Uint128
}

// settlementCustody records the transfers a sale makes during one call, so a
// call whose state could not be stored can be settled against custody.
type settlementCustody struct {
	sale.Custody

	mu        sync.Mutex
	transfers []transfer
}

var _ sale.Custody = (*settlementCustody)(nil)

func newSettlementCustody(custody sale.Custody) *settlementCustody {
	return &settlementCustody{Custody: custody}
}

func (c *settlementCustody) TransferIn(ctx context.Context, token string, from sale.Address, amount uint128.Uint128) error {
	if err := c.Custody.TransferIn(ctx, token, from, amount); err != nil {
		return err
	}
	c.record(transfer{direction: transferIn, token: token, account: from, amount: amount})
	return nil
}

func (c *settlementCustody) TransferOut(ctx context.Context, token string, to sale.Address, amount uint128.Uint128) error {
	if err := c.Custody.TransferOut(ctx, token, to, amount); err != nil {
		return err
	}
	c.record(transfer{direction: transferOut, token: token, account: to, amount: amount})
	return nil
}

func (c *settlementCustody) record(t transfer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transfers = append(c.transfers, t)
}

// take returns the transfers recorded since the last call and forgets them.
func (c *settlementCustody) take() []transfer {
	c.mu.Lock()
	defer c.mu.Unlock()
	transfers := c.transfers
	c.transfers = nil
	return transfers
}

func hasPayout(transfers []transfer) bool {
	for _, t := range transfers {
		if t.direction == transferOut {
			return true
		}
	}
	return false
}

// refund returns every deposit pulled into custody, latest first.
// Payouts cannot be pulled back and must not be passed in.
func (c *settlementCustody) refund(ctx context.Context, transfers []transfer) error {
	for i := len(transfers) - 1; i >= 0; i-- {
		t := transfers[i]
		if t.direction != transferIn {
			return errors.Newf("can't refund a payout of %s to %s", t.token, t.account)
		}
		if err := c.Custody.TransferOut(ctx, t.token, t.account, t.amount); err != nil {
			logger.LogAttrs(ctx, logger.LevelCritical, "failed to refund deposit, custody needs reconciliation",
				slogx.String("token", t.token),
				slogx.String("account", t.account.String()),
				slogx.String("amount", t.amount.String()),
				slogx.Error(err),
			)
			return errors.Wrapf(err, "failed to refund %s %s to %s", t.amount, t.token, t.account)
		}
	}
	return nil
}
