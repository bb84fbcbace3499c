// Package decimals converts between base-unit token amounts and human readable decimals.
package decimals

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/uint128"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"
)

const (
	DefaultDivPrecision = 36
)

func init() {
	decimal.DivisionPrecision = DefaultDivPrecision
}

// FromUint128 scales a base-unit amount down by decimals.
func FromUint128[T constraints.Unsigned](amount uint128.Uint128, decimals T) decimal.Decimal {
	return decimal.NewFromBigInt(amount.Big(), -int32(decimals))
}

// ToUint128 parses a human readable amount and scales it up to base units.
// Digits beyond decimals are truncated.
func ToUint128(amount string, decimals uint16) (uint128.Uint128, error) {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return uint128.Zero, errors.Wrapf(errs.InvalidArgument, "amount %q: %v", amount, err)
	}
	if value.IsNegative() {
		return uint128.Zero, errors.Wrapf(errs.InvalidArgument, "negative amount %q", amount)
	}
	result, err := uint128.FromBig(value.Mul(PowerOfTen(decimals)).BigInt())
	if err != nil {
		return uint128.Zero, errors.Wrapf(errs.OverflowUint128, "amount %q with %d decimals", amount, decimals)
	}
	return result, nil
}
