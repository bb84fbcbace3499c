package launchpad

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/internal/config"
	"github.com/gaze-network/launchpad/internal/postgres"
	"github.com/gaze-network/launchpad/modules/launchpad/api/httphandler"
	"github.com/gaze-network/launchpad/modules/launchpad/custodyclient"
	"github.com/gaze-network/launchpad/modules/launchpad/datagateway"
	"github.com/gaze-network/launchpad/modules/launchpad/export"
	"github.com/gaze-network/launchpad/modules/launchpad/ledger"
	"github.com/gaze-network/launchpad/modules/launchpad/repository/memory"
	launchpadpostgres "github.com/gaze-network/launchpad/modules/launchpad/repository/postgres"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/launchpad/modules/launchpad/stakingclient"
	"github.com/gaze-network/launchpad/modules/launchpad/usecase"
	"github.com/gaze-network/launchpad/pkg/crypto"
	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/launchpad/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
)

const Version = "v0.1.0"

const (
	driverMemory = "memory"
	driverHTTP   = "http"
)

// Module owns the sale engine and the collaborators it was built with.
type Module struct {
	Usecase *usecase.Usecase

	conf    config.Config
	stakes  *ledger.Stakes
	custody *ledger.Custody

	cleanupFuncs []func(context.Context) error
}

var _ do.ShutdownerWithError = (*Module)(nil)

func New(injector do.Injector) (*Module, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	moduleConf := conf.Modules.Launchpad

	m := &Module{conf: conf}

	var launchpadDg datagateway.LaunchpadDataGateway
	switch strings.ToLower(moduleConf.Database) {
	case "postgresql", "postgres", "pg":
		pg, err := postgres.NewPool(ctx, moduleConf.Postgres)
		if err != nil {
			if errors.Is(err, errs.InvalidArgument) {
				return nil, errors.Wrap(err, "Invalid Postgres configuration for launchpad")
			}
			return nil, errors.Wrap(err, "can't create Postgres connection pool")
		}
		m.cleanupFuncs = append(m.cleanupFuncs, func(context.Context) error {
			pg.Close()
			return nil
		})
		launchpadDg = launchpadpostgres.NewRepository(pg)
	case driverMemory:
		logger.WarnContext(ctx, "Using in-memory storage, sales are lost on restart")
		launchpadDg = memory.NewRepository()
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q database for launchpad is not supported", moduleConf.Database)
	}

	var staking sale.StakingLedger
	switch strings.ToLower(moduleConf.Staking.Driver) {
	case driverHTTP:
		client, err := stakingclient.New(stakingclient.Config{
			BaseURL: moduleConf.Staking.BaseURL,
			Debug:   moduleConf.Staking.Debug,
			Headers: moduleConf.Staking.Headers,
		})
		if err != nil {
			return nil, errors.Wrap(err, "can't create staking client")
		}
		staking = client
	case driverMemory, "":
		m.stakes = ledger.NewStakes()
		staking = m.stakes
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q staking driver is not supported", moduleConf.Staking.Driver)
	}

	var custodyFor usecase.CustodyFunc
	switch strings.ToLower(moduleConf.Custody.Driver) {
	case driverHTTP:
		client, err := custodyclient.New(custodyclient.Config{
			BaseURL: moduleConf.Custody.BaseURL,
			Debug:   moduleConf.Custody.Debug,
			Headers: moduleConf.Custody.Headers,
		})
		if err != nil {
			return nil, errors.Wrap(err, "can't create custody client")
		}
		custodyFor = func(saleID string) sale.Custody { return client.WithReference(saleID) }
	case driverMemory, "":
		m.custody = ledger.NewCustody()
		custodyFor = func(string) sale.Custody { return m.custody }
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q custody driver is not supported", moduleConf.Custody.Driver)
	}

	policy, err := sale.ParseLotteryPolicy(moduleConf.LotteryPolicy)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	m.Usecase = usecase.New(launchpadDg, staking, custodyFor, usecase.Config{
		LotteryPolicy: policy,
		Admins:        lo.Map(moduleConf.Admins, func(addr string, _ int) sale.Address { return sale.NewAddress(addr) }),
	})
	if err := m.Usecase.LoadSales(ctx); err != nil {
		return nil, errors.Wrap(err, "can't load sales")
	}
	return m, nil
}

// Mount registers the module's API handlers on the HTTP server.
func (m *Module) Mount(ctx context.Context, app *fiber.App) error {
	for _, handler := range lo.Uniq(m.conf.Modules.Launchpad.APIHandlers) {
		switch handler {
		case driverHTTP:
			var opts []httphandler.Option
			if m.stakes != nil && m.custody != nil {
				logger.WarnContext(ctx, "Exposing development ledger routes")
				opts = append(opts, httphandler.WithDevLedger(m.stakes, m.custody))
			}
			if err := httphandler.New(m.Usecase, opts...).Mount(app); err != nil {
				return errors.Wrap(err, "can't mount launchpad API")
			}
			logger.InfoContext(ctx, "Mounted HTTP handler")
		default:
			return errors.Wrapf(errs.Unsupported, "%q API handler is not supported", handler)
		}
	}
	return nil
}

// NewExporter creates an allocation exporter uploading to the configured bucket.
func (m *Module) NewExporter(ctx context.Context) (*export.Exporter, error) {
	exportConf := m.conf.Modules.Launchpad.Export
	signer, err := crypto.New(exportConf.SignerKey)
	if err != nil {
		return nil, errors.Wrap(err, "invalid export signer key")
	}
	uploader, err := export.NewS3Uploader(ctx, exportConf)
	if err != nil {
		return nil, errors.Wrap(err, "can't create s3 uploader")
	}
	return export.New(m.Usecase, uploader, signer, exportConf), nil
}

func (m *Module) Shutdown() error {
	ctx := logger.WithContext(context.Background(), slogx.String("module", "launchpad"))
	var errList []error
	for _, cleanup := range m.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to clean up launchpad module", err)
			errList = append(errList, err)
		}
	}
	return errors.WithStack(errors.Join(errList...))
}
