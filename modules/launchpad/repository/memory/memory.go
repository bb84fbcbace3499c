// Package memory keeps launchpad data in process memory. It backs the
// "memory" storage driver used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/datagateway"
	"github.com/gaze-network/launchpad/modules/launchpad/internal/entity"
	"github.com/samber/lo"
)

var _ datagateway.LaunchpadDataGateway = (*Repository)(nil)

type store struct {
	mu      sync.RWMutex
	sales   map[string]entity.Sale
	events  []entity.Event
	exports []entity.Export
}

// Repository is safe for concurrent use. Writes made inside a transaction are
// buffered and applied atomically on Commit.
type Repository struct {
	store   *store
	inTx    bool
	pending []func(*store) error
}

func NewRepository() *Repository {
	return &Repository{
		store: &store{sales: make(map[string]entity.Sale)},
	}
}

func (r *Repository) apply(fn func(*store) error) error {
	if r.inTx {
		r.pending = append(r.pending, fn)
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return fn(r.store)
}

func (r *Repository) BeginLaunchpadTx(context.Context) (datagateway.LaunchpadDataGatewayWithTx, error) {
	if r.inTx {
		return nil, errors.Wrap(errs.Conflict, "transaction already in progress")
	}
	return &Repository{store: r.store, inTx: true}, nil
}

func (r *Repository) Commit(context.Context) error {
	if !r.inTx {
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	// validate against a copy so a failing write leaves the store untouched
	staged := &store{
		sales:   lo.Assign(r.store.sales),
		events:  append([]entity.Event(nil), r.store.events...),
		exports: append([]entity.Export(nil), r.store.exports...),
	}
	for _, fn := range r.pending {
		if err := fn(staged); err != nil {
			r.pending = nil
			return errors.Wrap(err, "failed to commit transaction")
		}
	}
	r.store.sales, r.store.events, r.store.exports = staged.sales, staged.events, staged.exports
	r.pending = nil
	r.inTx = false
	return nil
}

func (r *Repository) Rollback(context.Context) error {
	r.pending = nil
	r.inTx = false
	return nil
}

func (r *Repository) CreateSale(_ context.Context, sale *entity.Sale) error {
	record := *sale
	return r.apply(func(s *store) error {
		if _, ok := s.sales[record.ID]; ok {
			return errors.Wrapf(errs.Conflict, "sale %s already exists", record.ID)
		}
		if record.Version == 0 {
			record.Version = 1
		}
		s.sales[record.ID] = record
		return nil
	})
}

func (r *Repository) UpdateSaleState(_ context.Context, sale *entity.Sale) (int64, error) {
	r.store.mu.RLock()
	stored, ok := r.store.sales[sale.ID]
	r.store.mu.RUnlock()
	if !ok || stored.Version != sale.Version {
		return 0, errors.Wrapf(errs.Conflict, "sale %s was modified concurrently or does not exist", sale.ID)
	}

	next := stored
	next.State = sale.State
	next.Version = sale.Version + 1
	next.UpdatedAt = lo.Ternary(sale.UpdatedAt.IsZero(), time.Now(), sale.UpdatedAt).UTC()
	err := r.apply(func(s *store) error {
		if current, ok := s.sales[sale.ID]; !ok || current.Version != sale.Version {
			return errors.Wrapf(errs.Conflict, "sale %s was modified concurrently", sale.ID)
		}
		s.sales[sale.ID] = next
		return nil
	})
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return next.Version, nil
}

func (r *Repository) GetSale(_ context.Context, id string) (*entity.Sale, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	sale, ok := r.store.sales[id]
	if !ok {
		return nil, errors.Wrapf(errs.NotFound, "sale %s", id)
	}
	return &sale, nil
}

func (r *Repository) GetSales(context.Context) ([]*entity.Sale, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	sales := lo.MapToSlice(r.store.sales, func(_ string, sale entity.Sale) *entity.Sale { return &sale })
	sort.Slice(sales, func(i, j int) bool {
		if sales[i].CreatedAt.Equal(sales[j].CreatedAt) {
			return sales[i].ID < sales[j].ID
		}
		return sales[i].CreatedAt.Before(sales[j].CreatedAt)
	})
	return sales, nil
}

func (r *Repository) AddEvent(_ context.Context, event *entity.Event) error {
	record := *event
	return r.apply(func(s *store) error {
		record.ID = int64(len(s.events) + 1)
		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.Now().UTC()
		}
		s.events = append(s.events, record)
		return nil
	})
}

func (r *Repository) GetEventsBySale(_ context.Context, arg datagateway.GetEventsBySaleParams) ([]*entity.Event, error) {
	events := r.events(func(e entity.Event) bool { return e.SaleID == arg.SaleID })
	events = lo.Drop(events, int(arg.Offset))
	if arg.Limit > 0 && len(events) > int(arg.Limit) {
		events = events[:arg.Limit]
	}
	return events, nil
}

func (r *Repository) GetEventsByCaller(_ context.Context, saleID string, caller string) ([]*entity.Event, error) {
	return r.events(func(e entity.Event) bool { return e.SaleID == saleID && e.Caller == caller }), nil
}

func (r *Repository) events(match func(entity.Event) bool) []*entity.Event {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	result := make([]*entity.Event, 0)
	for _, event := range r.store.events {
		if match(event) {
			result = append(result, lo.ToPtr(event))
		}
	}
	return result
}

func (r *Repository) AddExport(_ context.Context, export *entity.Export) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	record := *export
	record.ID = int64(len(r.store.exports) + 1)
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	r.store.exports = append(r.store.exports, record)
	return record.ID, nil
}

func (r *Repository) GetExportsBySale(_ context.Context, saleID string) ([]*entity.Export, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	result := make([]*entity.Export, 0)
	for i := len(r.store.exports) - 1; i >= 0; i-- {
		if r.store.exports[i].SaleID == saleID {
			result = append(result, lo.ToPtr(r.store.exports[i]))
		}
	}
	return result, nil
}
