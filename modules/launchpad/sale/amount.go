package sale

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/uint128"
)

// mulDiv returns floor(a * b / c). The product is computed in arbitrary precision.
func mulDiv(a, b, c uint128.Uint128) (uint128.Uint128, error) {
	if c.IsZero() {
		return uint128.Zero, errors.Wrap(errs.InvalidArgument, "division by zero")
	}
	product := new(big.Int).Mul(a.Big(), b.Big())
	result, err := uint128.FromBig(product.Quo(product, c.Big()))
	if err != nil {
		return uint128.Zero, errors.WithStack(errs.OverflowUint128)
	}
	return result, nil
}

func addAmount(a, b uint128.Uint128) (uint128.Uint128, error) {
	result, overflow := a.AddOverflow(b)
	if overflow {
		return uint128.Zero, errors.WithStack(errs.OverflowUint128)
	}
	return result, nil
}

// subFloor returns a - b, or zero when b > a.
func subFloor(a, b uint128.Uint128) uint128.Uint128 {
	if b.Cmp(a) >= 0 {
		return uint128.Zero
	}
	return a.Sub(b)
}

func pow10(decimals uint8) uint128.Uint128 {
	result := uint128.From64(1)
	for i := uint8(0); i < decimals; i++ {
		result = result.Mul64(10)
	}
	return result
}

func (s *Sale) tokenDecimals() uint8 {
	if s.params.TokenDecimals == 0 {
		return DefaultTokenDecimals
	}
	return s.params.TokenDecimals
}

// tokensFor converts a quote amount into sale token base units at the sale price.
func (s *Sale) tokensFor(quote uint128.Uint128) (uint128.Uint128, error) {
	return mulDiv(quote, pow10(s.tokenDecimals()), s.params.Price)
}
