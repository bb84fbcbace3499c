package datagateway

import (
	"context"

	"github.com/gaze-network/launchpad/modules/launchpad/internal/entity"
)

type LaunchpadDataGateway interface {
	BeginLaunchpadTx(ctx context.Context) (LaunchpadDataGatewayWithTx, error)
	LaunchpadReaderDataGateway
	LaunchpadWriterDataGateway
}

// LaunchpadDataGatewayWithTx scopes every read and write to one transaction.
// Commit and Rollback are no-ops once the transaction has ended, so a deferred Rollback is always safe.
type LaunchpadDataGatewayWithTx interface {
	LaunchpadDataGateway
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type LaunchpadReaderDataGateway interface {
	// GetSale returns errs.NotFound if the sale does not exist.
	GetSale(ctx context.Context, id string) (*entity.Sale, error)
	GetSales(ctx context.Context) ([]*entity.Sale, error)
	GetEventsBySale(ctx context.Context, arg GetEventsBySaleParams) ([]*entity.Event, error)
	GetEventsByCaller(ctx context.Context, saleID string, caller string) ([]*entity.Event, error)
	GetExportsBySale(ctx context.Context, saleID string) ([]*entity.Export, error)
}

type LaunchpadWriterDataGateway interface {
	CreateSale(ctx context.Context, sale *entity.Sale) error
	// UpdateSaleState stores sale.State if the stored version still equals
	// sale.Version and returns the bumped version. A stale version fails with errs.Conflict.
	UpdateSaleState(ctx context.Context, sale *entity.Sale) (int64, error)
	AddEvent(ctx context.Context, event *entity.Event) error
	AddExport(ctx context.Context, export *entity.Export) (int64, error)
}

type GetEventsBySaleParams struct {
	SaleID string
	Limit  int32
	Offset int32
}
