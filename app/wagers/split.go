package wagers

import (
	"github.com/joefazee/roundbet/models"
	"github.com/shopspring/decimal"
)

// SplitStake divides total into n shares of whole cents. The remainder
// cents go one each to the first shares, so the shares always sum to total.
func SplitStake(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n < 1 {
		return nil, models.ErrInvalidSelection
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, models.ErrInvalidStake
	}
	if !total.Equal(total.Truncate(2)) {
		return nil, models.ErrStakePrecision
	}

	cents := total.Shift(2).IntPart()
	if cents < int64(n) {
		return nil, models.ErrBelowMinimumStake
	}

	base, rem := cents/int64(n), cents%int64(n)
	shares := make([]decimal.Decimal, n)
	for i := range shares {
		c := base
		if int64(i) < rem {
			c++
		}
		shares[i] = decimal.New(c, -2)
	}
	return shares, nil
}
