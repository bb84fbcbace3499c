package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/internal/postgres"
	"github.com/gaze-network/launchpad/modules/launchpad/datagateway"
	"github.com/gaze-network/launchpad/modules/launchpad/internal/entity"
	"github.com/gaze-network/launchpad/modules/launchpad/repository/postgres/gen"
	"github.com/jackc/pgx/v5"
)

var _ datagateway.LaunchpadDataGateway = (*Repository)(nil)

type Repository struct {
	db      postgres.DB
	queries *gen.Queries
	tx      pgx.Tx
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{
		db:      db,
		queries: gen.New(db),
	}
}

func (r *Repository) CreateSale(ctx context.Context, sale *entity.Sale) error {
	id, err := toUUID(sale.ID)
	if err != nil {
		return errors.WithStack(err)
	}
	state, err := json.Marshal(sale.State)
	if err != nil {
		return errors.Wrap(err, "failed to marshal sale state")
	}
	if err := r.queries.CreateSale(ctx, gen.CreateSaleParams{
		ID:        id,
		Admin:     sale.Admin,
		State:     state,
		CreatedAt: toTimestamptz(sale.CreatedAt),
	}); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) UpdateSaleState(ctx context.Context, sale *entity.Sale) (int64, error) {
	id, err := toUUID(sale.ID)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	state, err := json.Marshal(sale.State)
	if err != nil {
		return 0, errors.Wrap(err, "failed to marshal sale state")
	}
	version, err := r.queries.UpdateSaleState(ctx, gen.UpdateSaleStateParams{
		ID:        id,
		State:     state,
		Version:   sale.Version,
		UpdatedAt: toTimestamptz(utcNow(sale.UpdatedAt)),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errors.Wrapf(errs.Conflict, "sale %s was modified concurrently or does not exist", sale.ID)
		}
		return 0, errors.Wrap(err, "error during query")
	}
	return version, nil
}

func (r *Repository) GetSale(ctx context.Context, id string) (*entity.Sale, error) {
	saleID, err := toUUID(id)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	row, err := r.queries.GetSale(ctx, saleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errs.NotFound, "sale %s", id)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	sale, err := mapSaleModelToType(row)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &sale, nil
}

func (r *Repository) GetSales(ctx context.Context) ([]*entity.Sale, error) {
	rows, err := r.queries.GetSales(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	sales := make([]*entity.Sale, 0, len(rows))
	for _, row := range rows {
		sale, err := mapSaleModelToType(row)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		sales = append(sales, &sale)
	}
	return sales, nil
}

func (r *Repository) AddEvent(ctx context.Context, event *entity.Event) error {
	params, err := mapEventTypeToParams(event)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := r.queries.AddEvent(ctx, params); err != nil {
		return errors.Wrap(err, "error during exec")
	}
	return nil
}

func (r *Repository) GetEventsBySale(ctx context.Context, arg datagateway.GetEventsBySaleParams) ([]*entity.Event, error) {
	saleID, err := toUUID(arg.SaleID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	rows, err := r.queries.GetEventsBySale(ctx, gen.GetEventsBySaleParams{
		SaleID: saleID,
		Limit:  arg.Limit,
		Offset: arg.Offset,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	return mapEventModelsToTypes(rows), nil
}

func (r *Repository) GetEventsByCaller(ctx context.Context, saleID string, caller string) ([]*entity.Event, error) {
	id, err := toUUID(saleID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	rows, err := r.queries.GetEventsByCaller(ctx, gen.GetEventsByCallerParams{
		SaleID: id,
		Caller: caller,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	return mapEventModelsToTypes(rows), nil
}

func (r *Repository) AddExport(ctx context.Context, export *entity.Export) (int64, error) {
	saleID, err := toUUID(export.SaleID)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	id, err := r.queries.AddExport(ctx, gen.AddExportParams{
		SaleID:    saleID,
		ObjectKey: export.ObjectKey,
		Sha256:    export.SHA256,
		Signature: export.Signature,
		PublicKey: export.PublicKey,
		Rows:      export.Rows,
		CreatedAt: toTimestamptz(utcNow(export.CreatedAt)),
	})
	if err != nil {
		return 0, errors.Wrap(err, "error during query")
	}
	return id, nil
}

func (r *Repository) GetExportsBySale(ctx context.Context, saleID string) ([]*entity.Export, error) {
	id, err := toUUID(saleID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	rows, err := r.queries.GetExportsBySale(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	return mapExportModelsToTypes(rows), nil
}

func utcNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
