package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/launchpad/modules/launchpad/usecase"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type setSaleParamsRequest struct {
	SaleToken        string    `json:"saleToken"`
	QuoteToken       string    `json:"quoteToken"`
	SaleOwner        string    `json:"saleOwner"`
	Price            string    `json:"price"`
	TokenDecimals    uint8     `json:"tokenDecimals"`
	AmountToSell     string    `json:"amountToSell"`
	Round1Start      time.Time `json:"round1Start"`
	Round1End        time.Time `json:"round1End"`
	Round2Start      time.Time `json:"round2Start"`
	Round2End        time.Time `json:"round2End"`
	Round1MinDeposit string    `json:"round1MinDeposit"`
	Round2MinDeposit string    `json:"round2MinDeposit"`
	Round2MaxDeposit string    `json:"round2MaxDeposit"`
	TokensUnlockTime time.Time `json:"tokensUnlockTime"`
}

func (r setSaleParamsRequest) Validate() error {
	var errList []error
	if r.SaleToken == "" {
		errList = append(errList, errors.New("'saleToken' is required"))
	}
	if r.QuoteToken == "" {
		errList = append(errList, errors.New("'quoteToken' is required"))
	}
	if r.SaleOwner == "" {
		errList = append(errList, errors.New("'saleOwner' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (r setSaleParamsRequest) ToParams() (sale.SaleParameters, error) {
	var amounts amountParser
	params := sale.SaleParameters{
		SaleToken:        r.SaleToken,
		QuoteToken:       r.QuoteToken,
		SaleOwner:        sale.NewAddress(r.SaleOwner),
		Price:            amounts.parse("price", r.Price),
		TokenDecimals:    r.TokenDecimals,
		AmountToSell:     amounts.parse("amountToSell", r.AmountToSell),
		Round1Start:      r.Round1Start,
		Round1End:        r.Round1End,
		Round2Start:      r.Round2Start,
		Round2End:        r.Round2End,
		Round1MinDeposit: amounts.parse("round1MinDeposit", r.Round1MinDeposit),
		Round2MinDeposit: amounts.parse("round2MinDeposit", r.Round2MinDeposit),
		Round2MaxDeposit: amounts.parse("round2MaxDeposit", r.Round2MaxDeposit),
		TokensUnlockTime: r.TokensUnlockTime,
	}
	if amounts.err != nil {
		return sale.SaleParameters{}, amounts.err
	}
	return params, nil
}

func (h *HttpHandler) SetSaleParams(ctx *fiber.Ctx) error {
	saleID, caller, err := parseSaleRequest(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	var req setSaleParamsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	params, err := req.ToParams()
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.usecase.SetSaleParams(ctx.UserContext(), saleID, caller, params); err != nil {
		return errors.Wrap(err, "error during SetSaleParams")
	}
	return h.respondInfo(ctx, saleID)
}

type setVestingParamsRequest struct {
	UnlockTimes []time.Time `json:"unlockTimes"`
	Percents    []uint64    `json:"percents"`
}

func (h *HttpHandler) SetVestingParams(ctx *fiber.Ctx) error {
	saleID, caller, err := parseSaleRequest(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	var req setVestingParamsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := h.usecase.SetVestingParams(ctx.UserContext(), saleID, caller, req.UnlockTimes, req.Percents); err != nil {
		return errors.Wrap(err, "error during SetVestingParams")
	}
	return h.respondInfo(ctx, saleID)
}

type setRegistrationTimeRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (h *HttpHandler) SetRegistrationTime(ctx *fiber.Ctx) error {
	saleID, caller, err := parseSaleRequest(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	var req setRegistrationTimeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := h.usecase.SetRegistrationTime(ctx.UserContext(), saleID, caller, req.Start, req.End); err != nil {
		return errors.Wrap(err, "error during SetRegistrationTime")
	}
	return h.respondInfo(ctx, saleID)
}

type setQuoteTokenRequest struct {
	Token string `json:"token"`
}

func (h *HttpHandler) SetQuoteToken(ctx *fiber.Ctx) error {
	saleID, caller, err := parseSaleRequest(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	var req setQuoteTokenRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if req.Token == "" {
		return errs.NewPublicError("'token' is required")
	}
	if err := h.usecase.SetQuoteToken(ctx.UserContext(), saleID, caller, req.Token); err != nil {
		return errors.Wrap(err, "error during SetQuoteToken")
	}
	return h.respondInfo(ctx, saleID)
}

type addTiersRequest struct {
	Weights    []uint64 `json:"weights"`
	Thresholds []string `json:"thresholds"`
	Lottery    []bool   `json:"lottery"`
}

type tierResult struct {
	ID             int    `json:"id"`
	Weight         uint64 `json:"weight"`
	MinStake       string `json:"minStake"`
	IsLottery      bool   `json:"isLottery"`
	Participants   uint64 `json:"participants"`
	QuoteDeposited string `json:"quoteDeposited"`
	LotteryWallets int    `json:"lotteryWallets"`
}

func (h *HttpHandler) AddTiers(ctx *fiber.Ctx) error {
	saleID, caller, err := parseSaleRequest(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	var req addTiersRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	var amounts amountParser
	thresholds := lo.Map(req.Thresholds, func(v string, _ int) uint128.Uint128 {
		return amounts.parse("thresholds", v)
	})
	if amounts.err != nil {
		return errors.WithStack(amounts.err)
	}
	if err := h.usecase.AddTiers(ctx.UserContext(), saleID, caller, req.Weights, thresholds, req.Lottery); err != nil {
		return errors.Wrap(err, "error during AddTiers")
	}
	return h.GetTiers(ctx)
}

func (h *HttpHandler) GetTiers(ctx *fiber.Ctx) error {
	var req saleRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	tiers, err := h.usecase.GetTiers(ctx.UserContext(), req.SaleID)
	if err != nil {
		return errors.Wrap(err, "error during GetTiers")
	}
	result := lo.Map(tiers, func(t usecase.TierView, _ int) tierResult {
		return tierResult{
			ID:             t.ID,
			Weight:         t.Weight,
			MinStake:       t.MinStake.String(),
			IsLottery:      t.IsLottery,
			Participants:   t.Participants,
			QuoteDeposited: t.QuoteDeposited.String(),
			LotteryWallets: t.LotteryWallets,
		}
	})
	return errors.WithStack(ctx.JSON(ok(result)))
}

type runLotteryRequest struct {
	TierID  int `json:"tierId"`
	Winners int `json:"winners"`
}

func (r runLotteryRequest) Validate() error {
	var errList []error
	if r.TierID < 0 {
		errList = append(errList, errors.New("'tierId' must not be negative"))
	}
	if r.Winners <= 0 {
		errList = append(errList, errors.New("'winners' must be positive"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (h *HttpHandler) RunLottery(ctx *fiber.Ctx) error {
	saleID, caller, err := parseSaleRequest(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	var req runLotteryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	draw, err := h.usecase.RunLottery(ctx.UserContext(), saleID, caller, req.TierID, req.Winners)
	if err != nil {
		return errors.Wrap(err, "error during RunLottery")
	}
	return errors.WithStack(ctx.JSON(ok(draw)))
}

func (h *HttpHandler) CalculateFirstRoundSale(ctx *fiber.Ctx) error {
	saleID, caller, err := parseSaleRequest(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := h.usecase.CalculateFirstRoundSale(ctx.UserContext(), saleID, caller); err != nil {
		return errors.Wrap(err, "error during CalculateFirstRoundSale")
	}
	return h.respondInfo(ctx, saleID)
}

func (h *HttpHandler) DepositTokens(ctx *fiber.Ctx) error {
	saleID, caller, err := parseSaleRequest(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := h.usecase.DepositTokens(ctx.UserContext(), saleID, caller); err != nil {
		return errors.Wrap(err, "error during DepositTokens")
	}
	return h.respondInfo(ctx, saleID)
}

type earningsResult struct {
	Quote        string `json:"quote"`
	UnsoldTokens string `json:"unsoldTokens"`
}

func (h *HttpHandler) WithdrawEarnings(ctx *fiber.Ctx) error {
	saleID, caller, err := parseSaleRequest(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	earnings, err := h.usecase.WithdrawEarnings(ctx.UserContext(), saleID, caller)
	if err != nil {
		return errors.Wrap(err, "error during WithdrawEarnings")
	}
	return errors.WithStack(ctx.JSON(ok(earningsResult{
		Quote:        earnings.Quote.String(),
		UnsoldTokens: earnings.UnsoldTokens.String(),
	})))
}

func (h *HttpHandler) respondInfo(ctx *fiber.Ctx, saleID string) error {
	info, err := h.usecase.GetSaleInfo(ctx.UserContext(), saleID)
	if err != nil {
		return errors.Wrap(err, "error during GetSaleInfo")
	}
	return errors.WithStack(ctx.JSON(ok(newSaleInfoResult(info))))
}
