package validator

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
)

// Validator runs a chain of checks. Once a check fails, every following
// check is skipped and the first failure is kept.
type Validator struct {
	Valid  bool
	Reason string
	err    error
}

func New() *Validator {
	return &Validator{
		Valid: true,
	}
}

// Err returns the first failure, or nil when every check passed.
func (v *Validator) Err() error {
	if v.Valid {
		return nil
	}
	return errors.WithStack(v.err)
}

func (v *Validator) fail(err error) bool {
	v.Valid = false
	v.err = err
	v.Reason = err.Error()
	return v.Valid
}

// Require fails with err unless ok.
func (v *Validator) Require(ok bool, err error) bool {
	if !v.Valid {
		return false
	}
	if !ok {
		return v.fail(err)
	}
	return v.Valid
}

// Check runs fn and fails with its error, if any.
func (v *Validator) Check(fn func() error) bool {
	if !v.Valid {
		return false
	}
	if err := fn(); err != nil {
		return v.fail(err)
	}
	return v.Valid
}

// Within fails with err unless t is inside [start, end].
func (v *Validator) Within(t, start, end time.Time, err error) bool {
	return v.Require(!t.Before(start) && !t.After(end), err)
}

// NotBefore fails with err if t is before at.
func (v *Validator) NotBefore(t, at time.Time, err error) bool {
	return v.Require(!t.Before(at), err)
}

// NonZero fails with err if amount is zero.
func (v *Validator) NonZero(amount uint128.Uint128, err error) bool {
	return v.Require(!amount.IsZero(), err)
}

// AtLeast fails with err if amount is less than lower.
func (v *Validator) AtLeast(amount, lower uint128.Uint128, err error) bool {
	return v.Require(amount.Cmp(lower) >= 0, err)
}

// AtMost fails with err if amount is greater than upper.
func (v *Validator) AtMost(amount, upper uint128.Uint128, err error) bool {
	return v.Require(amount.Cmp(upper) <= 0, err)
}
