// Package engine holds the interest accrual and settlement arithmetic for
// pawn contracts. Every function is a pure transformation: it takes a
// contract value and a caller-supplied reference date, and returns either a
// computed amount or a new contract value. Nothing here touches storage or
// the system clock, which keeps the precision-sensitive math deterministic
// and testable.
package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tdnguyen/pawnshop-engine/internal/domain"
	"github.com/tdnguyen/pawnshop-engine/pkg/dateutil"
)

var (
	million      = decimal.NewFromInt(1_000_000)
	percentMonth = decimal.NewFromInt(3000) // 100 (percent) x 30 (days per month)
)

// DailyAccrual returns the interest the contract accrues per calendar day.
func DailyAccrual(c domain.Contract) decimal.Decimal {
	switch c.InterestType {
	case domain.InterestPerDayPerMillion:
		// rate currency units per day per 1,000,000 of principal
		return c.LoanAmount.Mul(c.InterestRate).Div(million)
	case domain.InterestPercentPerMonth:
		// rate percent of principal per 30-day month
		return c.LoanAmount.Mul(c.InterestRate).Div(percentMonth)
	default:
		return decimal.Zero
	}
}

// InterestOwed computes the interest outstanding as of the given date.
// Accrual runs from the paid-through date (or origination when interest has
// never been settled), less the carried residual credit. Never negative, and
// non-decreasing as asOf advances.
func InterestOwed(c domain.Contract, asOf time.Time) decimal.Decimal {
	base := c.StartDate
	if c.LastInterestPaidDate != nil {
		base = *c.LastInterestPaidDate
	}

	elapsed := dateutil.DaysBetween(base, asOf)
	if elapsed < 0 {
		elapsed = 0
	}

	gross := DailyAccrual(c).Mul(decimal.NewFromInt(int64(elapsed)))
	owed := gross.Sub(c.ResidualInterest)
	if owed.IsNegative() {
		return decimal.Zero
	}
	return owed
}
