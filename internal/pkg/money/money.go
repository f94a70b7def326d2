// Package money holds the fixed-point arithmetic policy used for every amount
// that ends up on a payslip, in accounting or in a regulator file.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scales used across the engine.
const (
	MoneyScale    int32 = 2
	CalcScale     int32 = 6
	RateScale     int32 = 4
	HighPrecision int32 = 16
)

var (
	Zero    = decimal.Zero
	hundred = decimal.NewFromInt(100)
)

// Round rounds to money scale, half-up.
func Round(v decimal.Decimal) decimal.Decimal {
	return v.Round(MoneyScale)
}

func RoundCalc(v decimal.Decimal) decimal.Decimal {
	return v.Round(CalcScale)
}

func RoundRate(v decimal.Decimal) decimal.Decimal {
	return v.Round(RateScale)
}

// PercentOf returns amount * percent / 100 at calc scale. Use it when the result
// feeds further arithmetic.
func PercentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Round(HighPrecision).DivRound(hundred, CalcScale)
}

// PercentOfRounded is PercentOf finalized to money scale. Use it for payslip lines.
func PercentOfRounded(amount, percent decimal.Decimal) decimal.Decimal {
	return Round(PercentOf(amount, percent))
}

// Divide divides at calc scale. A zero divisor yields zero.
func Divide(dividend, divisor decimal.Decimal) decimal.Decimal {
	if divisor.IsZero() {
		return Zero
	}
	return dividend.DivRound(divisor, CalcScale)
}

// DailyRate is the monthly amount spread over the month's working days.
func DailyRate(monthly decimal.Decimal, workingDays int) decimal.Decimal {
	return Divide(monthly, decimal.NewFromInt(int64(workingDays)))
}

// HourlyRate is the monthly amount spread over the month's working hours.
func HourlyRate(monthly, workingHours decimal.Decimal) decimal.Decimal {
	return Divide(monthly, workingHours)
}

// Ratio returns part/whole at calc scale, zero when whole is zero.
func Ratio(part, whole int) decimal.Decimal {
	return Divide(decimal.NewFromInt(int64(part)), decimal.NewFromInt(int64(whole)))
}

func Add(values ...decimal.Decimal) decimal.Decimal {
	sum := Zero
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum
}

// Clamp bounds v to [lo, hi]. When lo > hi the upper bound wins.
func Clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		v = lo
	}
	if v.GreaterThan(hi) {
		v = hi
	}
	return v
}

// NonNegative floors v at zero.
func NonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return Zero
	}
	return v
}

// Parse builds a decimal from its string form. Float constructors are never used
// for money-bearing values.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return d, nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Format renders v with exactly two fractional digits.
func Format(v decimal.Decimal) string {
	return Round(v).StringFixed(MoneyScale)
}
