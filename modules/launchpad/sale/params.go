package sale

import (
	"context"

	"github.com/cockroachdb/errors"
)

// maxTokenDecimals keeps 10^decimals representable as a 128-bit amount.
const maxTokenDecimals = 36

// SetSaleParams stores the sale configuration. It can be called only once.
func (s *Sale) SetSaleParams(ctx context.Context, caller Address, params SaleParameters) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.onlyAdmin(caller); err != nil {
		return err
	}
	if s.paramsState == Set {
		return errors.WithStack(ErrAlreadyConfigured)
	}
	if err := s.validateParams(params); err != nil {
		return err
	}

	params.SaleOwner = NewAddress(params.SaleOwner.String())
	if params.TokenDecimals == 0 {
		params.TokenDecimals = DefaultTokenDecimals
	}
	s.params = params
	s.paramsState = Set
	s.phase = PhaseConfigured
	return nil
}

func (s *Sale) validateParams(params SaleParameters) error {
	now := s.clock.Now()
	switch {
	case params.Price.IsZero():
		return errors.WithStack(ErrInvalidPrice)
	case params.AmountToSell.IsZero():
		return errors.WithStack(ErrInvalidSupply)
	case params.TokenDecimals > maxTokenDecimals:
		return errors.WithStack(ErrInvalidDecimals)
	case params.SaleOwner.IsZero():
		return errors.Wrap(ErrInvalidAddress, "sale owner is required")
	case !params.Round1End.After(now):
		return errors.Wrap(ErrInvalidWindow, "first round end time should be in the future")
	case !params.Round1Start.Before(params.Round1End):
		return errors.Wrap(ErrInvalidWindow, "first round should start before it ends")
	case !params.Round2End.After(params.Round1End):
		return errors.Wrap(ErrInvalidWindow, "second round should end after first round")
	case params.Round2Start.Before(params.Round1End):
		return errors.Wrap(ErrInvalidWindow, "second round should start after first round")
	case !params.Round2Start.Before(params.Round2End):
		return errors.Wrap(ErrInvalidWindow, "second round should start before it ends")
	case !params.TokensUnlockTime.After(now):
		return errors.Wrap(ErrInvalidWindow, "token unlock time should be in the future")
	case !params.Round2MaxDeposit.IsZero() && params.Round2MaxDeposit.Cmp(params.Round2MinDeposit) < 0:
		return errors.Wrap(ErrInvalidWindow, "second round maximum deposit is below its minimum")
	}
	return nil
}

// SetQuoteToken replaces the quote currency reference until round 1 starts.
func (s *Sale) SetQuoteToken(ctx context.Context, caller Address, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.onlyAdmin(caller); err != nil {
		return err
	}
	if err := s.requirePhase(PhaseConfigured, ErrNotConfigured); err != nil {
		return err
	}
	if token == "" {
		return errors.Wrap(ErrInvalidAddress, "quote token is required")
	}
	if !s.clock.Now().Before(s.params.Round1Start) {
		return errors.WithStack(ErrRound1Started)
	}
	s.params.QuoteToken = token
	return nil
}

// DepositTokens pulls the whole supply of sale tokens from the sale owner into custody.
func (s *Sale) DepositTokens(ctx context.Context, caller Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePhase(PhaseConfigured, ErrNotConfigured); err != nil {
		return err
	}
	if err := s.onlySaleOwner(caller); err != nil {
		return err
	}
	if s.tokensDeposited {
		return errors.WithStack(ErrAlreadyDeposited)
	}
	if err := s.custody.TransferIn(ctx, s.params.SaleToken, caller, s.params.AmountToSell); err != nil {
		return collaboratorError(ErrTransferFailed, err, "deposit sale tokens")
	}
	s.tokensDeposited = true
	return nil
}
