package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/launchpad/modules/launchpad/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type registerResult struct {
	TierID int `json:"tierId"`
}

func (h *HttpHandler) RegisterForSale(ctx *fiber.Ctx) error {
	saleID, caller, err := parseSaleRequest(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	tierID, err := h.usecase.RegisterForSale(ctx.UserContext(), saleID, caller)
	if err != nil {
		return errors.Wrap(err, "error during RegisterForSale")
	}
	return errors.WithStack(ctx.JSON(ok(registerResult{TierID: tierID})))
}

type amountRequest struct {
	Amount string `json:"amount"`
}

func (r amountRequest) Validate() error {
	if r.Amount == "" {
		return errs.NewPublicError("'amount' is required")
	}
	return nil
}

func (h *HttpHandler) Participate(ctx *fiber.Ctx) error {
	saleID, caller, err := parseSaleRequest(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	var req amountRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.usecase.Participate(ctx.UserContext(), saleID, caller, amount); err != nil {
		return errors.Wrap(err, "error during Participate")
	}
	return h.respondUser(ctx, saleID, caller)
}

type buyResult struct {
	Tokens string `json:"tokens"`
}

func (h *HttpHandler) Buy(ctx *fiber.Ctx) error {
	saleID, caller, err := parseSaleRequest(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	var req amountRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return errors.WithStack(err)
	}
	bought, err := h.usecase.Buy(ctx.UserContext(), saleID, caller, amount)
	if err != nil {
		return errors.Wrap(err, "error during Buy")
	}
	return errors.WithStack(ctx.JSON(ok(buyResult{Tokens: bought.String()})))
}

type withdrawTokensRequest struct {
	Portion *int `json:"portion"`
}

func (h *HttpHandler) WithdrawTokens(ctx *fiber.Ctx) error {
	saleID, caller, err := parseSaleRequest(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	var req withdrawTokensRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if req.Portion == nil {
		return errs.NewPublicError("'portion' is required")
	}
	withdrawn, err := h.usecase.WithdrawTokens(ctx.UserContext(), saleID, caller, *req.Portion)
	if err != nil {
		return errors.Wrap(err, "error during WithdrawTokens")
	}
	return errors.WithStack(ctx.JSON(ok(buyResult{Tokens: withdrawn.String()})))
}

type getUserRequest struct {
	SaleID  string `params:"saleId"`
	Address string `params:"address"`
}

func (r getUserRequest) Validate() error {
	var errList []error
	if r.SaleID == "" {
		errList = append(errList, errors.New("'saleId' is required"))
	}
	if r.Address == "" {
		errList = append(errList, errors.New("'address' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type participationResult struct {
	TierID          int    `json:"tierId"`
	QuoteDeposited  string `json:"quoteDeposited"`
	Round1Deposited string `json:"round1Deposited"`
	Round2Deposited string `json:"round2Deposited"`
}

type portionResult struct {
	Portion    int       `json:"portion"`
	Amount     string    `json:"amount"`
	Claimed    bool      `json:"claimed"`
	UnlockTime time.Time `json:"unlockTime"`
	Percent    uint64    `json:"percent"`
}

type userResult struct {
	Address       string               `json:"address"`
	TierID        int                  `json:"tierId"`
	Registered    bool                 `json:"registered"`
	Allowed       bool                 `json:"allowed"`
	Participation *participationResult `json:"participation,omitempty"`
	Portions      []portionResult      `json:"portions,omitempty"`
}

func (h *HttpHandler) GetUser(ctx *fiber.Ctx) error {
	var req getUserRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	return h.respondUser(ctx, req.SaleID, sale.NewAddress(req.Address))
}

func (h *HttpHandler) respondUser(ctx *fiber.Ctx, saleID string, user sale.Address) error {
	view, err := h.usecase.GetUser(ctx.UserContext(), saleID, user)
	if err != nil {
		return errors.Wrap(err, "error during GetUser")
	}
	result := userResult{
		Address:    view.Address.String(),
		TierID:     view.Registration.TierID,
		Registered: view.Registration.Registered,
		Allowed:    view.Registration.Allowed,
	}
	if p := view.Participation; p != nil {
		result.Participation = &participationResult{
			TierID:          p.TierID,
			QuoteDeposited:  p.QuoteDeposited.String(),
			Round1Deposited: p.Round1Deposited.String(),
			Round2Deposited: p.Round2Deposited.String(),
		}
		result.Portions = lo.Map(view.Portions, func(p usecase.PortionView, _ int) portionResult {
			return portionResult{
				Portion:    p.Portion,
				Amount:     p.Amount.String(),
				Claimed:    p.Claimed,
				UnlockTime: p.UnlockTime,
				Percent:    p.Percent,
			}
		})
	}
	return errors.WithStack(ctx.JSON(ok(result)))
}
