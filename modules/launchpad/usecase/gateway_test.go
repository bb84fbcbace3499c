package usecase

import (
	"context"
	"sync"

	"github.com/gaze-network/launchpad/modules/launchpad/datagateway"
	"github.com/gaze-network/launchpad/modules/launchpad/internal/entity"
	"github.com/gaze-network/launchpad/modules/launchpad/repository/memory"
)

// faultyGateway is a memory repository whose state updates can be made to fail.
type faultyGateway struct {
	*memory.Repository

	mu         sync.Mutex
	failUpdate error
}

func newFaultyGateway() *faultyGateway {
	return &faultyGateway{Repository: memory.NewRepository()}
}

func (g *faultyGateway) FailUpdates(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failUpdate = err
}

func (g *faultyGateway) BeginLaunchpadTx(ctx context.Context) (datagateway.LaunchpadDataGatewayWithTx, error) {
	tx, err := g.Repository.BeginLaunchpadTx(ctx)
	if err != nil {
		return nil, err
	}
	return &faultyTx{LaunchpadDataGatewayWithTx: tx, gateway: g}, nil
}

type faultyTx struct {
	datagateway.LaunchpadDataGatewayWithTx
	gateway *faultyGateway
}

func (tx *faultyTx) UpdateSaleState(ctx context.Context, sale *entity.Sale) (int64, error) {
	tx.gateway.mu.Lock()
	err := tx.gateway.failUpdate
	tx.gateway.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return tx.LaunchpadDataGatewayWithTx.UpdateSaleState(ctx, sale)
}
