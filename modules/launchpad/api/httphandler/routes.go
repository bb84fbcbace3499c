package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/launchpad")

	r.Post("/sales", h.CreateSale)
	r.Get("/sales/:saleId", h.GetSale)
	r.Post("/sales/:saleId/params", h.SetSaleParams)
	r.Post("/sales/:saleId/vesting", h.SetVestingParams)
	r.Post("/sales/:saleId/registration-time", h.SetRegistrationTime)
	r.Post("/sales/:saleId/quote-token", h.SetQuoteToken)
	r.Post("/sales/:saleId/tiers", h.AddTiers)
	r.Get("/sales/:saleId/tiers", h.GetTiers)
	r.Post("/sales/:saleId/lottery", h.RunLottery)
	r.Post("/sales/:saleId/first-round", h.CalculateFirstRoundSale)
	r.Post("/sales/:saleId/deposit-tokens", h.DepositTokens)
	r.Post("/sales/:saleId/earnings", h.WithdrawEarnings)
	r.Post("/sales/:saleId/register", h.RegisterForSale)
	r.Post("/sales/:saleId/participate", h.Participate)
	r.Post("/sales/:saleId/buy", h.Buy)
	r.Post("/sales/:saleId/withdraw", h.WithdrawTokens)
	r.Get("/sales/:saleId/users/:address", h.GetUser)
	r.Get("/sales/:saleId/events", h.GetEvents)
	r.Get("/sales/:saleId/exports", h.GetExports)

	if h.custody != nil && h.stakes != nil {
		dev := r.Group("/dev")
		dev.Post("/mint", h.Mint)
		dev.Post("/approve", h.Approve)
		dev.Post("/stake", h.Stake)
		dev.Get("/balances/:token/:address", h.GetBalance)
	}
	return nil
}
