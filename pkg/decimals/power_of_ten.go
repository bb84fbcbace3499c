package decimals

import (
	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"
)

// powersOfTen caches 10^n for every n within the division precision.
var powersOfTen = func() map[int64]decimal.Decimal {
	m := make(map[int64]decimal.Decimal, 2*DefaultDivPrecision+1)
	for n := int64(-DefaultDivPrecision); n <= DefaultDivPrecision; n++ {
		m[n] = decimal.New(1, int32(n))
	}
	return m
}()

// PowerOfTen returns 10^n.
func PowerOfTen[T constraints.Integer](n T) decimal.Decimal {
	if val, ok := powersOfTen[int64(n)]; ok {
		return val
	}
	return decimal.New(1, int32(n))
}
