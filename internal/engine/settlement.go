package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tdnguyen/pawnshop-engine/internal/domain"
	"github.com/tdnguyen/pawnshop-engine/pkg/dateutil"
	customError "github.com/tdnguyen/pawnshop-engine/pkg/errors"
)

// SettlementResult is what the caller displays after a successful settlement.
type SettlementResult struct {
	ExtensionDays int
	NewDueDate    time.Time
	NewResidual   decimal.Decimal
	PaidThrough   time.Time
}

// SettleInterest converts an interest cash payment into a due-date extension
// plus carried residual. The cash on the table is the payment plus any
// residual from the previous settlement; whole days extend the due date and
// the sub-day remainder is carried forward, so
//
//	extensionDays x dailyAccrual + newResidual == amountPaid + previousResidual
//
// holds exactly. Returns the updated contract, the appended ledger entry and
// the result; on error the input contract is unchanged.
func SettleInterest(c domain.Contract, amountPaid decimal.Decimal, today time.Time) (domain.Contract, *domain.Payment, SettlementResult, error) {
	if !amountPaid.IsPositive() {
		return c, nil, SettlementResult{}, customError.WrapInvalidAmount(amountPaid.String())
	}
	if c.IsTerminal() {
		return c, nil, SettlementResult{}, customError.WrapTerminalContract(c.ContractID, c.Status)
	}

	rate := DailyAccrual(c)
	if !rate.IsPositive() {
		return c, nil, SettlementResult{}, customError.WrapZeroAccrualRate(c.ContractID)
	}

	totalCash := amountPaid.Add(c.ResidualInterest)
	quotient, residual := totalCash.QuoRem(rate, 0)
	extensionDays := int(quotient.IntPart())

	newDueDate := dateutil.AddDays(c.DueDate, extensionDays)

	// The paid-through date advances from the previous one, or from
	// origination on the first settlement. The origination day itself counts
	// as already covered, hence the minus one on first settlement.
	base := c.StartDate
	increment := extensionDays
	if c.LastInterestPaidDate != nil {
		base = *c.LastInterestPaidDate
	} else {
		increment = extensionDays - 1
	}
	if increment < 0 {
		increment = 0
	}
	paidThrough := dateutil.AddDays(base, increment)

	payment := &domain.Payment{
		ID:         uuid.New(),
		ContractID: c.ContractID,
		Date:       dateutil.Truncate(today),
		Amount:     amountPaid,
		Type:       domain.PaymentTypeInterest,
		Note:       fmt.Sprintf("%d-day extension, residual %s", extensionDays, residual),
	}

	c.DueDate = newDueDate
	c.LastInterestPaidDate = &paidThrough
	c.ResidualInterest = residual
	// An interest payment always clears any persisted overdue marking.
	c.Status = domain.ContractStatusActive
	c.Payments = appendPayment(c.Payments, payment)

	return c, payment, SettlementResult{
		ExtensionDays: extensionDays,
		NewDueDate:    newDueDate,
		NewResidual:   residual,
		PaidThrough:   paidThrough,
	}, nil
}

// appendPayment clones before appending so the caller's ledger slice is
// never aliased by the returned contract.
func appendPayment(ledger []*domain.Payment, p *domain.Payment) []*domain.Payment {
	out := make([]*domain.Payment, 0, len(ledger)+1)
	out = append(out, ledger...)
	return append(out, p)
}
