package usecase

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/internal/entity"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/launchpad/pkg/logger/slogx"
)

// CreateSale creates an unconfigured sale administrated by caller.
func (u *Usecase) CreateSale(ctx context.Context, caller sale.Address) (sale.Info, error) {
	if caller.IsZero() {
		return sale.Info{}, errors.WithStack(sale.ErrInvalidAddress)
	}
	if len(u.admins) > 0 {
		if _, ok := u.admins[caller]; !ok {
			return sale.Info{}, errors.Wrapf(errs.PermissionDenied, "%s may not create sales", caller)
		}
	}

	id := u.newID()
	custody := newSettlementCustody(u.custodyFor(id))
	s := sale.New(id, caller, u.staking, custody, u.saleOpts...)
	now := u.clock.Now().UTC()

	tx, err := u.launchpadDg.BeginLaunchpadTx(ctx)
	if err != nil {
		return sale.Info{}, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "failed to rollback transaction", slogx.Error(err))
		}
	}()
	if err := tx.CreateSale(ctx, &entity.Sale{
		ID:        id,
		Admin:     caller.String(),
		State:     s.Snapshot(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return sale.Info{}, errors.Wrap(err, "failed to create sale")
	}
	if err := tx.AddEvent(ctx, u.newEvent(id, entry{caller: caller, action: ActionCreateSale, valid: true})); err != nil {
		return sale.Info{}, errors.Wrap(err, "failed to add event")
	}
	if err := tx.Commit(ctx); err != nil {
		return sale.Info{}, errors.Wrap(err, "failed to commit transaction")
	}

	u.mu.Lock()
	u.sales[id] = &managedSale{sale: s, custody: custody, version: 1}
	u.mu.Unlock()

	logger.InfoContext(ctx, "sale created", slogx.String("sale_id", id), slogx.String("admin", caller.String()))
	info, err := s.Info()
	if err != nil {
		return sale.Info{}, errors.WithStack(err)
	}
	return info, nil
}

// LoadSales restores every stored sale into memory.
func (u *Usecase) LoadSales(ctx context.Context) error {
	records, err := u.launchpadDg.GetSales(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get sales")
	}
	loaded := make(map[string]*managedSale, len(records))
	for _, record := range records {
		ms, err := u.restore(record)
		if err != nil {
			return errors.WithStack(err)
		}
		loaded[record.ID] = ms
	}

	u.mu.Lock()
	u.sales = loaded
	u.mu.Unlock()
	logger.InfoContext(ctx, "sales loaded", slogx.Int("count", len(loaded)))
	return nil
}

func (u *Usecase) restore(record *entity.Sale) (*managedSale, error) {
	custody := newSettlementCustody(u.custodyFor(record.ID))
	s, err := sale.Restore(record.State, u.staking, custody, u.saleOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to restore sale %s", record.ID)
	}
	return &managedSale{sale: s, custody: custody, version: record.Version}, nil
}

// managed returns the in-memory sale, loading it from storage when it is not cached.
func (u *Usecase) managed(ctx context.Context, saleID string) (*managedSale, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if ms, ok := u.sales[saleID]; ok {
		return ms, nil
	}

	record, err := u.launchpadDg.GetSale(ctx, saleID)
	if err != nil {
		if errors.Is(err, errs.NotFound) || errors.Is(err, errs.InvalidArgument) {
			return nil, errors.Wrapf(errs.NotFound, "sale %s not found", saleID)
		}
		return nil, errors.Wrap(err, "failed to get sale")
	}
	ms, err := u.restore(record)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	u.sales[saleID] = ms
	return ms, nil
}

func (u *Usecase) evict(saleID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.sales, saleID)
}

// Sale returns the sale with the given id.
func (u *Usecase) Sale(ctx context.Context, saleID string) (*sale.Sale, error) {
	ms, err := u.managed(ctx, saleID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ms.sale, nil
}
