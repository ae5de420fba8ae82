package payroll

import (
	"fmt"
	"math"
)

// Slab is one income band: income up to UpTo (exclusive of the previous
// slab's limit) is taxed at Rate. The last slab of a schedule has UpTo = +Inf.
type Slab struct {
	UpTo float64 `json:"upTo"`
	Rate float64 `json:"rate"`
}

// TaxSchedule is an ordered set of slabs applied cumulatively.
type TaxSchedule []Slab

func DefaultSchedule() TaxSchedule {
	return TaxSchedule{
		{UpTo: 25000, Rate: 0.00},
		{UpTo: 50000, Rate: 0.05},
		{UpTo: 100000, Rate: 0.10},
		{UpTo: math.Inf(1), Rate: 0.20},
	}
}

func (s TaxSchedule) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: at least one slab is required", ErrInvalidSchedule)
	}
	prev := 0.0
	for i, slab := range s {
		if math.IsNaN(slab.UpTo) || math.IsNaN(slab.Rate) {
			return fmt.Errorf("%w: slab %d is not a number", ErrInvalidSchedule, i)
		}
		if slab.UpTo <= prev {
			return fmt.Errorf("%w: slab %d limit %v must be greater than %v", ErrInvalidSchedule, i, slab.UpTo, prev)
		}
		if slab.Rate < 0 || slab.Rate > 1 {
			return fmt.Errorf("%w: slab %d rate %v must be between 0 and 1", ErrInvalidSchedule, i, slab.Rate)
		}
		if math.IsInf(slab.UpTo, 1) && i != len(s)-1 {
			return fmt.Errorf("%w: only the last slab may be open-ended", ErrInvalidSchedule)
		}
		prev = slab.UpTo
	}
	if !math.IsInf(s[len(s)-1].UpTo, 1) {
		return fmt.Errorf("%w: the last slab must be open-ended", ErrInvalidSchedule)
	}
	return nil
}

// Tax returns the progressive tax owed on a monthly gross amount, rounded to
// two decimals. Each slab only taxes the part of the income inside its band.
func (s TaxSchedule) Tax(gross float64) float64 {
	tax := 0.0
	prevLimit := 0.0
	remaining := gross
	for _, slab := range s {
		chunk := math.Min(remaining, slab.UpTo-prevLimit)
		if chunk <= 0 {
			break
		}
		tax += chunk * slab.Rate
		remaining -= chunk
		prevLimit = slab.UpTo
	}
	return Round2(tax)
}

// CalcProgressiveTax applies the default schedule.
func CalcProgressiveTax(gross float64) float64 {
	return DefaultSchedule().Tax(gross)
}
