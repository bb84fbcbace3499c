package usecase

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/gaze-network/launchpad/modules/launchpad/sale"
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
)

const (
	ActionCreateSale          = "create_sale"
	ActionSetSaleParams       = "set_sale_params"
	ActionSetVestingParams    = "set_vesting_params"
	ActionSetRegistrationTime = "set_registration_time"
	ActionAddTiers            = "add_tiers"
	ActionSetQuoteToken       = "set_quote_token"
	ActionRunLottery          = "run_lottery"
	ActionCalculateFirstRound = "calculate_first_round_sale"
	ActionDepositTokens       = "deposit_tokens"
	ActionWithdrawEarnings    = "withdraw_earnings"
	ActionRegister            = "register_for_sale"
	ActionParticipate         = "participate"
	ActionBuy                 = "buy"
	ActionWithdrawTokens      = "withdraw_tokens"
)

type none struct{}

func (u *Usecase) SetSaleParams(ctx context.Context, saleID string, caller sale.Address, params sale.SaleParameters) error {
	_, err := execute(ctx, u, saleID, caller, ActionSetSaleParams, paramsPayload(params), func(s *sale.Sale) (*none, error) {
		return nil, s.SetSaleParams(ctx, caller, params)
	})
	return err
}

func (u *Usecase) SetVestingParams(ctx context.Context, saleID string, caller sale.Address, unlockTimes []time.Time, percents []uint64) error {
	request := map[string]any{"unlock_times": unlockTimes, "percents": percents}
	_, err := execute(ctx, u, saleID, caller, ActionSetVestingParams, request, func(s *sale.Sale) (*none, error) {
		return nil, s.SetVestingParams(ctx, caller, unlockTimes, percents)
	})
	return err
}

func (u *Usecase) SetRegistrationTime(ctx context.Context, saleID string, caller sale.Address, start, end time.Time) error {
	request := map[string]any{"start": start, "end": end}
	_, err := execute(ctx, u, saleID, caller, ActionSetRegistrationTime, request, func(s *sale.Sale) (*none, error) {
		return nil, s.SetRegistrationTime(ctx, caller, start, end)
	})
	return err
}

func (u *Usecase) AddTiers(ctx context.Context, saleID string, caller sale.Address, weights []uint64, thresholds []uint128.Uint128, lottery []bool) error {
	request := map[string]any{"weights": weights, "thresholds": amountStrings(thresholds), "lottery": lottery}
	_, err := execute(ctx, u, saleID, caller, ActionAddTiers, request, func(s *sale.Sale) (*none, error) {
		return nil, s.AddTiers(ctx, caller, weights, thresholds, lottery)
	})
	return err
}

func (u *Usecase) SetQuoteToken(ctx context.Context, saleID string, caller sale.Address, token string) error {
	request := map[string]any{"token": token}
	_, err := execute(ctx, u, saleID, caller, ActionSetQuoteToken, request, func(s *sale.Sale) (*none, error) {
		return nil, s.SetQuoteToken(ctx, caller, token)
	})
	return err
}

// LotteryDraw is the journaled outcome of a lottery draw.
type LotteryDraw struct {
	TierID     int      `json:"tier_id"`
	Seed       string   `json:"seed"`
	Requested  int      `json:"requested"`
	RosterSize int      `json:"roster_size"`
	Winners    []string `json:"winners"`
}

func (u *Usecase) RunLottery(ctx context.Context, saleID string, caller sale.Address, tierID int, winners int) (LotteryDraw, error) {
	request := map[string]any{"tier_id": tierID, "winners": winners}
	draw, err := execute(ctx, u, saleID, caller, ActionRunLottery, request, func(s *sale.Sale) (*LotteryDraw, error) {
		result, err := s.RunLottery(ctx, caller, tierID, winners)
		if err != nil {
			return nil, err
		}
		return &LotteryDraw{
			TierID:     result.TierID,
			Seed:       hex.EncodeToString(result.Seed[:]),
			Requested:  result.Requested,
			RosterSize: result.RosterSize,
			Winners:    lo.Map(result.Winners, func(a sale.Address, _ int) string { return a.String() }),
		}, nil
	})
	if err != nil {
		return LotteryDraw{}, err
	}
	return *draw, nil
}

type RoundResult struct {
	TokensSold1          string `json:"tokens_sold1"`
	TokensRemaining2     string `json:"tokens_remaining2"`
	TokensSold2          string `json:"tokens_sold2"`
	FirstRoundCalculated bool   `json:"first_round_calculated"`
}

func newRoundResult(round sale.RoundState) *RoundResult {
	return &RoundResult{
		TokensSold1:          round.TokensSold1.String(),
		TokensRemaining2:     round.TokensRemaining2.String(),
		TokensSold2:          round.TokensSold2.String(),
		FirstRoundCalculated: round.FirstRoundCalculated,
	}
}

func (u *Usecase) CalculateFirstRoundSale(ctx context.Context, saleID string, caller sale.Address) (sale.RoundState, error) {
	var round sale.RoundState
	_, err := execute(ctx, u, saleID, caller, ActionCalculateFirstRound, nil, func(s *sale.Sale) (*RoundResult, error) {
		var err error
		round, err = s.CalculateFirstRoundSale(ctx, caller)
		if err != nil {
			return nil, err
		}
		return newRoundResult(round), nil
	})
	if err != nil {
		return sale.RoundState{}, err
	}
	return round, nil
}

func (u *Usecase) DepositTokens(ctx context.Context, saleID string, caller sale.Address) error {
	_, err := execute(ctx, u, saleID, caller, ActionDepositTokens, nil, func(s *sale.Sale) (*none, error) {
		return nil, s.DepositTokens(ctx, caller)
	})
	return err
}

func (u *Usecase) WithdrawEarnings(ctx context.Context, saleID string, caller sale.Address) (sale.Earnings, error) {
	var earnings sale.Earnings
	_, err := execute(ctx, u, saleID, caller, ActionWithdrawEarnings, nil, func(s *sale.Sale) (map[string]string, error) {
		var err error
		earnings, err = s.WithdrawEarnings(ctx, caller)
		if err != nil {
			return nil, err
		}
		return map[string]string{
			"quote":         earnings.Quote.String(),
			"unsold_tokens": earnings.UnsoldTokens.String(),
		}, nil
	})
	if err != nil {
		return sale.Earnings{}, err
	}
	return earnings, nil
}

func (u *Usecase) RegisterForSale(ctx context.Context, saleID string, caller sale.Address) (int, error) {
	var tierID int
	_, err := execute(ctx, u, saleID, caller, ActionRegister, nil, func(s *sale.Sale) (map[string]int, error) {
		var err error
		tierID, err = s.RegisterForSale(ctx, caller)
		if err != nil {
			return nil, err
		}
		return map[string]int{"tier_id": tierID}, nil
	})
	if err != nil {
		return 0, err
	}
	return tierID, nil
}

func (u *Usecase) Participate(ctx context.Context, saleID string, caller sale.Address, amount uint128.Uint128) error {
	request := map[string]string{"amount": amount.String()}
	_, err := execute(ctx, u, saleID, caller, ActionParticipate, request, func(s *sale.Sale) (*none, error) {
		return nil, s.Participate(ctx, caller, amount)
	})
	return err
}

// Buy returns the amount of sale tokens bought.
func (u *Usecase) Buy(ctx context.Context, saleID string, caller sale.Address, amount uint128.Uint128) (uint128.Uint128, error) {
	request := map[string]string{"amount": amount.String()}
	bought := uint128.Zero
	_, err := execute(ctx, u, saleID, caller, ActionBuy, request, func(s *sale.Sale) (map[string]string, error) {
		var err error
		bought, err = s.Buy(ctx, caller, amount)
		if err != nil {
			return nil, err
		}
		return map[string]string{"tokens": bought.String()}, nil
	})
	if err != nil {
		return uint128.Zero, err
	}
	return bought, nil
}

// WithdrawTokens returns the amount of sale tokens paid out for portion.
func (u *Usecase) WithdrawTokens(ctx context.Context, saleID string, caller sale.Address, portion int) (uint128.Uint128, error) {
	request := map[string]int{"portion": portion}
	withdrawn := uint128.Zero
	_, err := execute(ctx, u, saleID, caller, ActionWithdrawTokens, request, func(s *sale.Sale) (map[string]string, error) {
		var err error
		withdrawn, err = s.WithdrawTokens(ctx, caller, portion)
		if err != nil {
			return nil, err
		}
		return map[string]string{"tokens": withdrawn.String()}, nil
	})
	if err != nil {
		return uint128.Zero, err
	}
	return withdrawn, nil
}

func paramsPayload(p sale.SaleParameters) map[string]any {
	return map[string]any{
		"sale_token":         p.SaleToken,
		"quote_token":        p.QuoteToken,
		"sale_owner":         p.SaleOwner.String(),
		"price":              p.Price.String(),
		"token_decimals":     p.TokenDecimals,
		"amount_to_sell":     p.AmountToSell.String(),
		"round1_start":       p.Round1Start,
		"round1_end":         p.Round1End,
		"round2_start":       p.Round2Start,
		"round2_end":         p.Round2End,
		"round1_min_deposit": p.Round1MinDeposit.String(),
		"round2_min_deposit": p.Round2MinDeposit.String(),
		"round2_max_deposit": p.Round2MaxDeposit.String(),
		"tokens_unlock_time": p.TokensUnlockTime,
	}
}

func amountStrings(amounts []uint128.Uint128) []string {
	return lo.Map(amounts, func(a uint128.Uint128, _ int) string { return a.String() })
}
