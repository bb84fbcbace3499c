package httphandler

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/ledger"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/launchpad/modules/launchpad/usecase"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
)

// CallerHeader carries the address of the party making a call.
const CallerHeader = "X-Caller-Address"

type HttpHandler struct {
	usecase *usecase.Usecase
	stakes  *ledger.Stakes
	custody *ledger.Custody
}

type Option func(*HttpHandler)

// WithDevLedger exposes mint, approve and stake routes backed by in-memory ledgers.
func WithDevLedger(stakes *ledger.Stakes, custody *ledger.Custody) Option {
	return func(h *HttpHandler) {
		h.stakes = stakes
		h.custody = custody
	}
}

func New(usecase *usecase.Usecase, opts ...Option) *HttpHandler {
	h := &HttpHandler{
		usecase: usecase,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func ok[T any](result T) common.HttpResponse[T] {
	return common.NewResult(result)
}

func callerFrom(ctx *fiber.Ctx) (sale.Address, error) {
	caller := sale.NewAddress(ctx.Get(CallerHeader))
	if caller.IsZero() {
		return "", errs.NewPublicError("'" + CallerHeader + "' header is required")
	}
	return caller, nil
}

type saleRequest struct {
	SaleID string `params:"saleId"`
}

func (r saleRequest) Validate() error {
	if strings.TrimSpace(r.SaleID) == "" {
		return errs.NewPublicError("'saleId' is required")
	}
	return nil
}

// parseSaleRequest reads the sale id and the caller of a mutating call.
func parseSaleRequest(ctx *fiber.Ctx) (string, sale.Address, error) {
	var req saleRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return "", "", errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return "", "", errors.WithStack(err)
	}
	caller, err := callerFrom(ctx)
	if err != nil {
		return "", "", errors.WithStack(err)
	}
	return req.SaleID, caller, nil
}

func parseAmount(field string, value string) (uint128.Uint128, error) {
	if value == "" {
		return uint128.Zero, nil
	}
	amount, err := uint128.FromString(value)
	if err != nil {
		return uint128.Zero, errs.WithPublicMessage(errors.Wrapf(errs.InvalidArgument, "%q", value), "'"+field+"' is not a valid amount")
	}
	return amount, nil
}

// amountParser keeps the first parse error so requests can parse fields inline.
type amountParser struct {
	err error
}

func (p *amountParser) parse(field string, value string) uint128.Uint128 {
	if p.err != nil {
		return uint128.Zero
	}
	amount, err := parseAmount(field, value)
	if err != nil {
		p.err = err
	}
	return amount
}
