package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/launchpad/pkg/decimals"
	"github.com/gaze-network/uint128"
	"github.com/gofiber/fiber/v2"
)

type paramsResult struct {
	SaleToken             string    `json:"saleToken"`
	QuoteToken            string    `json:"quoteToken"`
	SaleOwner             string    `json:"saleOwner"`
	Price                 string    `json:"price"`
	TokenDecimals         uint8     `json:"tokenDecimals"`
	AmountToSell          string    `json:"amountToSell"`
	AmountToSellFormatted string    `json:"amountToSellFormatted"`
	Round1Start           time.Time `json:"round1Start"`
	Round1End             time.Time `json:"round1End"`
	Round2Start           time.Time `json:"round2Start"`
	Round2End             time.Time `json:"round2End"`
	Round1MinDeposit      string    `json:"round1MinDeposit"`
	Round2MinDeposit      string    `json:"round2MinDeposit"`
	Round2MaxDeposit      string    `json:"round2MaxDeposit"`
	TokensUnlockTime      time.Time `json:"tokensUnlockTime"`
}

type roundResult struct {
	TokensSold1               string `json:"tokensSold1"`
	TokensSold1Formatted      string `json:"tokensSold1Formatted"`
	TokensRemaining2          string `json:"tokensRemaining2"`
	TokensRemaining2Formatted string `json:"tokensRemaining2Formatted"`
	TokensSold2               string `json:"tokensSold2"`
	TokensSold2Formatted      string `json:"tokensSold2Formatted"`
	FirstRoundCalculated      bool   `json:"firstRoundCalculated"`
}

type windowResult struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type saleInfoResult struct {
	ID                  string        `json:"id"`
	Admin               string        `json:"admin"`
	Phase               string        `json:"phase"`
	Stage               string        `json:"stage"`
	Params              *paramsResult `json:"params,omitempty"`
	Registration        *windowResult `json:"registration,omitempty"`
	NumberOfRegistrants uint64        `json:"numberOfRegistrants"`
	NumOfParticipants   uint64        `json:"numOfParticipants"`
	Round               roundResult   `json:"round"`
	TokensDeposited     bool          `json:"tokensDeposited"`
	EarningsWithdrawn   bool          `json:"earningsWithdrawn"`
	TotalQuoteDeposited string        `json:"totalQuoteDeposited"`
}

func tokenDecimals(params *sale.SaleParameters) uint8 {
	if params == nil || params.TokenDecimals == 0 {
		return sale.DefaultTokenDecimals
	}
	return params.TokenDecimals
}

func formatAmount(amount uint128.Uint128, decimalPlaces uint8) string {
	return decimals.FromUint128(amount, decimalPlaces).String()
}

func newRoundResult(round sale.RoundState, decimalPlaces uint8) roundResult {
	return roundResult{
		TokensSold1:               round.TokensSold1.String(),
		TokensSold1Formatted:      formatAmount(round.TokensSold1, decimalPlaces),
		TokensRemaining2:          round.TokensRemaining2.String(),
		TokensRemaining2Formatted: formatAmount(round.TokensRemaining2, decimalPlaces),
		TokensSold2:               round.TokensSold2.String(),
		TokensSold2Formatted:      formatAmount(round.TokensSold2, decimalPlaces),
		FirstRoundCalculated:      round.FirstRoundCalculated,
	}
}

func newSaleInfoResult(info sale.Info) saleInfoResult {
	result := saleInfoResult{
		ID:                  info.ID,
		Admin:               info.Admin.String(),
		Phase:               info.Phase.String(),
		Stage:               string(info.Stage),
		NumberOfRegistrants: info.NumberOfRegistrants,
		NumOfParticipants:   info.NumOfParticipants,
		Round:               newRoundResult(info.Round, tokenDecimals(info.Params)),
		TokensDeposited:     info.TokensDeposited,
		EarningsWithdrawn:   info.EarningsWithdrawn,
		TotalQuoteDeposited: info.TotalQuoteDeposited.String(),
	}
	if p := info.Params; p != nil {
		result.Params = &paramsResult{
			SaleToken:             p.SaleToken,
			QuoteToken:            p.QuoteToken,
			SaleOwner:             p.SaleOwner.String(),
			Price:                 p.Price.String(),
			TokenDecimals:         tokenDecimals(p),
			AmountToSell:          p.AmountToSell.String(),
			AmountToSellFormatted: formatAmount(p.AmountToSell, tokenDecimals(p)),
			Round1Start:           p.Round1Start,
			Round1End:             p.Round1End,
			Round2Start:           p.Round2Start,
			Round2End:             p.Round2End,
			Round1MinDeposit:      p.Round1MinDeposit.String(),
			Round2MinDeposit:      p.Round2MinDeposit.String(),
			Round2MaxDeposit:      p.Round2MaxDeposit.String(),
			TokensUnlockTime:      p.TokensUnlockTime,
		}
	}
	if w := info.Registration; w != nil {
		result.Registration = &windowResult{Start: w.Start, End: w.End}
	}
	return result
}

func (h *HttpHandler) CreateSale(ctx *fiber.Ctx) error {
	caller, err := callerFrom(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	info, err := h.usecase.CreateSale(ctx.UserContext(), caller)
	if err != nil {
		return errors.Wrap(err, "error during CreateSale")
	}
	return errors.WithStack(ctx.Status(fiber.StatusCreated).JSON(ok(newSaleInfoResult(info))))
}

func (h *HttpHandler) GetSale(ctx *fiber.Ctx) error {
	var req saleRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	info, err := h.usecase.GetSaleInfo(ctx.UserContext(), req.SaleID)
	if err != nil {
		return errors.Wrap(err, "error during GetSaleInfo")
	}
	return errors.WithStack(ctx.JSON(ok(newSaleInfoResult(info))))
}
