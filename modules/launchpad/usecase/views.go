package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/modules/launchpad/datagateway"
	"github.com/gaze-network/launchpad/modules/launchpad/internal/entity"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/uint128"
)

const (
	DefaultEventsLimit = 100
	MaxEventsLimit     = 1000
)

func (u *Usecase) GetSaleInfo(ctx context.Context, saleID string) (sale.Info, error) {
	s, err := u.Sale(ctx, saleID)
	if err != nil {
		return sale.Info{}, errors.WithStack(err)
	}
	info, err := s.Info()
	if err != nil {
		return sale.Info{}, errors.Wrap(err, "failed to get sale info")
	}
	return info, nil
}

// TierView is a tier together with the size of its lottery roster.
type TierView struct {
	ID int
	sale.Tier
	LotteryWallets int
}

func (u *Usecase) GetTiers(ctx context.Context, saleID string) ([]TierView, error) {
	s, err := u.Sale(ctx, saleID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	tiers := s.Tiers()
	views := make([]TierView, 0, len(tiers))
	for id, tier := range tiers {
		wallets, err := s.LotteryWallets(id)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get lottery wallets of tier %d", id)
		}
		views = append(views, TierView{ID: id, Tier: tier, LotteryWallets: wallets})
	}
	return views, nil
}

type PortionView struct {
	Portion    int
	Amount     uint128.Uint128
	Claimed    bool
	UnlockTime time.Time
	Percent    uint64
}

// UserView is everything a sale knows about one user.
type UserView struct {
	Address       sale.Address
	Registration  sale.Registration
	Participation *sale.Participation
	Portions      []PortionView
}

func (u *Usecase) GetUser(ctx context.Context, saleID string, user sale.Address) (UserView, error) {
	s, err := u.Sale(ctx, saleID)
	if err != nil {
		return UserView{}, errors.WithStack(err)
	}
	view := UserView{
		Address:      user,
		Registration: s.Registration(user),
	}
	if participation, ok := s.Participation(user); ok {
		view.Participation = &participation
		for portion, entry := range s.Vesting() {
			amount, claimed, err := s.Withdrawable(user, portion)
			if err != nil {
				return UserView{}, errors.Wrapf(err, "failed to get portion %d", portion)
			}
			view.Portions = append(view.Portions, PortionView{
				Portion:    portion,
				Amount:     amount,
				Claimed:    claimed,
				UnlockTime: entry.UnlockTime,
				Percent:    entry.Percent,
			})
		}
	}
	return view, nil
}

func (u *Usecase) GetAllocations(ctx context.Context, saleID string) ([]sale.Allocation, error) {
	s, err := u.Sale(ctx, saleID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	allocations, err := s.Allocations()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get allocations")
	}
	return allocations, nil
}

type GetEventsParams struct {
	SaleID string
	Caller sale.Address
	Limit  int32
	Offset int32
}

// GetEvents returns the journal of a sale, optionally narrowed to one caller.
func (u *Usecase) GetEvents(ctx context.Context, params GetEventsParams) ([]*entity.Event, error) {
	if _, err := u.Sale(ctx, params.SaleID); err != nil {
		return nil, errors.WithStack(err)
	}
	if !params.Caller.IsZero() {
		events, err := u.launchpadDg.GetEventsByCaller(ctx, params.SaleID, params.Caller.String())
		if err != nil {
			return nil, errors.Wrap(err, "failed to get events by caller")
		}
		return events, nil
	}
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultEventsLimit
	}
	events, err := u.launchpadDg.GetEventsBySale(ctx, datagateway.GetEventsBySaleParams{
		SaleID: params.SaleID,
		Limit:  min(limit, MaxEventsLimit),
		Offset: max(params.Offset, 0),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get events by sale")
	}
	return events, nil
}

func (u *Usecase) GetExports(ctx context.Context, saleID string) ([]*entity.Export, error) {
	exports, err := u.launchpadDg.GetExportsBySale(ctx, saleID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get exports")
	}
	return exports, nil
}

func (u *Usecase) AddExport(ctx context.Context, export *entity.Export) (int64, error) {
	id, err := u.launchpadDg.AddExport(ctx, export)
	if err != nil {
		return 0, errors.Wrap(err, "failed to add export")
	}
	return id, nil
}
