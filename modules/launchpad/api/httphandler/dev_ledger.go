package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/launchpad/pkg/decimals"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
)

// ledgerRequest moves Amount of Token for Account. Amount is in base units
// unless Decimals is set, then it is a human readable value scaled by Decimals.
type ledgerRequest struct {
	Token    string `json:"token"`
	Account  string `json:"account"`
	Amount   string `json:"amount"`
	Decimals uint16 `json:"decimals"`
}

func (r ledgerRequest) Validate(requireToken bool) error {
	var errList []error
	if requireToken && r.Token == "" {
		errList = append(errList, errors.New("'token' is required"))
	}
	if r.Account == "" {
		errList = append(errList, errors.New("'account' is required"))
	}
	if r.Amount == "" {
		errList = append(errList, errors.New("'amount' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (r ledgerRequest) amount() (uint128.Uint128, error) {
	if r.Decimals == 0 {
		return parseAmount("amount", r.Amount)
	}
	amount, err := decimals.ToUint128(r.Amount, r.Decimals)
	if err != nil {
		return uint128.Zero, errs.WithPublicMessage(err, "'amount' is not a valid amount")
	}
	return amount, nil
}

func parseLedgerRequest(ctx *fiber.Ctx, requireToken bool) (ledgerRequest, uint128.Uint128, error) {
	var req ledgerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ledgerRequest{}, uint128.Zero, errors.WithStack(err)
	}
	if err := req.Validate(requireToken); err != nil {
		return ledgerRequest{}, uint128.Zero, errors.WithStack(err)
	}
	amount, err := req.amount()
	if err != nil {
		return ledgerRequest{}, uint128.Zero, errors.WithStack(err)
	}
	return req, amount, nil
}

type balanceResult struct {
	Token     string `json:"token,omitempty"`
	Account   string `json:"account"`
	Balance   string `json:"balance"`
	Allowance string `json:"allowance,omitempty"`
}

func (h *HttpHandler) Mint(ctx *fiber.Ctx) error {
	req, amount, err := parseLedgerRequest(ctx, true)
	if err != nil {
		return errors.WithStack(err)
	}
	account := sale.NewAddress(req.Account)
	if err := h.custody.Mint(req.Token, account, amount); err != nil {
		return errors.Wrap(err, "error during Mint")
	}
	return h.respondBalance(ctx, req.Token, account)
}

func (h *HttpHandler) Approve(ctx *fiber.Ctx) error {
	req, amount, err := parseLedgerRequest(ctx, true)
	if err != nil {
		return errors.WithStack(err)
	}
	account := sale.NewAddress(req.Account)
	h.custody.Approve(req.Token, account, amount)
	return h.respondBalance(ctx, req.Token, account)
}

func (h *HttpHandler) Stake(ctx *fiber.Ctx) error {
	req, amount, err := parseLedgerRequest(ctx, false)
	if err != nil {
		return errors.WithStack(err)
	}
	account := sale.NewAddress(req.Account)
	h.stakes.SetStake(account, amount)
	staked, err := h.stakes.StakedBalance(ctx.UserContext(), account)
	if err != nil {
		return errors.Wrap(err, "error during StakedBalance")
	}
	return errors.WithStack(ctx.JSON(ok(balanceResult{
		Account: account.String(),
		Balance: staked.String(),
	})))
}

type getBalanceRequest struct {
	Token   string `params:"token"`
	Address string `params:"address"`
}

func (h *HttpHandler) GetBalance(ctx *fiber.Ctx) error {
	var req getBalanceRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	return h.respondBalance(ctx, req.Token, sale.NewAddress(req.Address))
}

func (h *HttpHandler) respondBalance(ctx *fiber.Ctx, token string, account sale.Address) error {
	return errors.WithStack(ctx.JSON(ok(balanceResult{
		Token:     token,
		Account:   account.String(),
		Balance:   h.custody.BalanceOf(token, account).String(),
		Allowance: h.custody.Allowance(token, account).String(),
	})))
}
