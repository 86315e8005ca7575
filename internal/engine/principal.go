package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tdnguyen/pawnshop-engine/internal/domain"
	"github.com/tdnguyen/pawnshop-engine/pkg/dateutil"
	customError "github.com/tdnguyen/pawnshop-engine/pkg/errors"
)

// AdjustPrincipal applies a principal top-up or reduction. Reducing below
// zero clamps to zero. The paid-through date and residual are untouched: a
// principal change re-prices future accrual through the new loan amount but
// never re-prices interest already accrued against the old principal.
func AdjustPrincipal(c domain.Contract, amount decimal.Decimal, direction, note string, today time.Time) (domain.Contract, *domain.Payment, error) {
	if !amount.IsPositive() {
		return c, nil, customError.WrapInvalidAmount(amount.String())
	}
	if c.IsTerminal() {
		return c, nil, customError.WrapTerminalContract(c.ContractID, c.Status)
	}

	switch direction {
	case domain.AdjustDirectionAdd:
		c.LoanAmount = c.LoanAmount.Add(amount)
		if note == "" {
			note = "principal increase"
		}
	case domain.AdjustDirectionReduce:
		c.LoanAmount = c.LoanAmount.Sub(amount)
		if c.LoanAmount.IsNegative() {
			c.LoanAmount = decimal.Zero
		}
		if note == "" {
			note = "principal reduction"
		}
	default:
		return c, nil, customError.WrapInvalidAmount("unknown direction " + direction)
	}

	payment := &domain.Payment{
		ID:         uuid.New(),
		ContractID: c.ContractID,
		Date:       dateutil.Truncate(today),
		Amount:     amount,
		Type:       domain.PaymentTypePrincipal,
		Note:       note,
	}
	c.Payments = appendPayment(c.Payments, payment)

	return c, payment, nil
}
