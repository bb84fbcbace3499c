package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/datagateway"
	"github.com/gaze-network/launchpad/modules/launchpad/internal/entity"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/launchpad/pkg/logger/slogx"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Config struct {
	LotteryPolicy sale.LotteryPolicy
	// Admins may create sales. Empty allows anyone.
	Admins []sale.Address
	Clock  sale.Clock
	Random sale.RandomSource
}

// CustodyFunc returns the custody used by the sale with the given id.
type CustodyFunc func(saleID string) sale.Custody

type Usecase struct {
	launchpadDg datagateway.LaunchpadDataGateway
	staking     sale.StakingLedger
	custodyFor  CustodyFunc
	clock       sale.Clock
	saleOpts    []sale.Option
	admins      map[sale.Address]struct{}
	newID       func() string

	mu    sync.Mutex
	sales map[string]*managedSale
}

// managedSale serialises operation and persistence of one sale so the
// journal order is the execution order.
type managedSale struct {
	mu      sync.Mutex
	sale    *sale.Sale
	custody *settlementCustody
	version int64

	// pending is an applied call whose state is not stored yet. It is
	// stored before the next call runs.
	pending *entry
}

func New(launchpadDg datagateway.LaunchpadDataGateway, staking sale.StakingLedger, custodyFor CustodyFunc, config Config) *Usecase {
	clock := config.Clock
	if clock == nil {
		clock = sale.SystemClock
	}
	opts := []sale.Option{sale.WithClock(clock), sale.WithLotteryPolicy(lo.Ternary(config.LotteryPolicy == "", sale.LotteryAccumulate, config.LotteryPolicy))}
	if config.Random != nil {
		opts = append(opts, sale.WithRandomSource(config.Random))
	}
	return &Usecase{
		launchpadDg: launchpadDg,
		staking:     staking,
		custodyFor:  custodyFor,
		clock:       clock,
		saleOpts:    opts,
		admins:      lo.SliceToMap(config.Admins, func(a sale.Address) (sale.Address, struct{}) { return a, struct{}{} }),
		newID:       uuid.NewString,
		sales:       make(map[string]*managedSale),
	}
}

// journal is the payload stored with every event.
type journal struct {
	Request any `json:"request,omitempty"`
	Result  any `json:"result,omitempty"`
}

// entry is a journaled call.
type entry struct {
	caller  sale.Address
	action  string
	valid   bool
	reason  string
	payload journal
}

// execute runs op against the sale while holding its lock. Accepted calls
// persist the new state together with their event. Rejected calls are
// journaled as invalid events and leave the stored state untouched, unless
// they moved funds before failing.
func execute[T any](ctx context.Context, u *Usecase, saleID string, caller sale.Address, action string, request any, op func(*sale.Sale) (T, error)) (T, error) {
	var zero T
	ctx = logger.WithContext(ctx,
		slogx.String("sale_id", saleID),
		slogx.String("action", action),
		slogx.String("caller", caller.String()),
	)

	ms, err := u.managed(ctx, saleID)
	if err != nil {
		return zero, errors.WithStack(err)
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.pending != nil {
		if err := u.persist(ctx, ms, *ms.pending); err != nil {
			return zero, errors.Wrap(errors.Mark(err, errs.Unavailable), "failed to persist previous call")
		}
		logger.InfoContext(ctx, "persisted previous call", slogx.String("previous_action", ms.pending.action))
		ms.pending = nil
	}

	result, opErr := op(ms.sale)
	transfers := ms.custody.take()
	if opErr != nil {
		logger.DebugContext(ctx, "rejected sale call", slogx.Error(opErr))
		rejected := entry{caller: caller, action: action, reason: opErr.Error(), payload: journal{Request: request}}
		if len(transfers) > 0 {
			if err := u.settle(ctx, saleID, ms, rejected, transfers); err != nil {
				logger.ErrorContext(ctx, "failed to persist partially applied call", err)
			}
			return zero, opErr
		}
		if err := u.launchpadDg.AddEvent(ctx, u.newEvent(saleID, rejected)); err != nil {
			logger.WarnContext(ctx, "failed to journal rejected call", slogx.Error(err))
		}
		return zero, opErr
	}

	accepted := entry{caller: caller, action: action, valid: true, payload: journal{Request: request, Result: result}}
	if err := u.settle(ctx, saleID, ms, accepted, transfers); err != nil {
		return zero, errors.WithStack(err)
	}
	logger.InfoContext(ctx, "accepted sale call")
	return result, nil
}

// settle persists the state left by a call that made transfers. When storage
// fails, deposits are refunded and the sale is reloaded from its stored
// state. Payouts cannot be undone, so the sale keeps the applied state in
// memory and stores it before its next call.
func (u *Usecase) settle(ctx context.Context, saleID string, ms *managedSale, e entry, transfers []transfer) error {
	err := u.persist(ctx, ms, e)
	if err == nil {
		return nil
	}

	if hasPayout(transfers) {
		logger.ErrorContext(ctx, "failed to persist sale after a payout, keeping it in memory", err)
		ms.pending = &e
		return errors.WithStack(err)
	}
	if refundErr := ms.custody.refund(ctx, transfers); refundErr != nil {
		// custody still holds the deposit the in-memory state records
		ms.pending = &e
		return errors.WithSecondaryError(errors.WithStack(err), refundErr)
	}
	logger.ErrorContext(ctx, "failed to persist sale, evicting it from memory", err)
	u.evict(saleID)
	return errors.WithStack(err)
}

func (u *Usecase) persist(ctx context.Context, ms *managedSale, e entry) (err error) {
	tx, err := u.launchpadDg.BeginLaunchpadTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			logger.WarnContext(ctx, "failed to rollback transaction", slogx.Error(rollbackErr))
		}
	}()

	version, err := tx.UpdateSaleState(ctx, &entity.Sale{
		ID:        ms.sale.ID(),
		Admin:     ms.sale.Admin().String(),
		State:     ms.sale.Snapshot(),
		Version:   ms.version,
		UpdatedAt: u.clock.Now(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to update sale state")
	}
	if err := tx.AddEvent(ctx, u.newEvent(ms.sale.ID(), e)); err != nil {
		return errors.Wrap(err, "failed to add event")
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	ms.version = version
	return nil
}

func (u *Usecase) newEvent(saleID string, e entry) *entity.Event {
	raw, err := json.Marshal(e.payload)
	if err != nil {
		raw = []byte("{}")
	}
	return &entity.Event{
		SaleID:    saleID,
		Action:    e.action,
		Caller:    e.caller.String(),
		Valid:     e.valid,
		Reason:    e.reason,
		Payload:   raw,
		CreatedAt: u.clock.Now().UTC().Truncate(time.Second),
	}
}
