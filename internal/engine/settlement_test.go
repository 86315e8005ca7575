package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdnguyen/pawnshop-engine/internal/domain"
	customError "github.com/tdnguyen/pawnshop-engine/pkg/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// baseContract is the worked example used throughout: 10,000,000 principal
// at 3,000 per day per million, so 30,000 accrues daily.
func baseContract() domain.Contract {
	return domain.Contract{
		ContractID:       "HD-1001",
		CustomerName:     "Nguyen Van A",
		DeviceModel:      "iPhone 15 Pro",
		LoanAmount:       decimal.NewFromInt(10_000_000),
		InterestRate:     decimal.NewFromInt(3000),
		InterestType:     domain.InterestPerDayPerMillion,
		StartDate:        date(2024, 1, 1),
		DueDate:          date(2024, 1, 31),
		Status:           domain.ContractStatusActive,
		ResidualInterest: decimal.Zero,
	}
}

func TestSettleInterest_FirstPayment(t *testing.T) {
	contract := baseContract()
	today := date(2024, 1, 11)

	updated, payment, result, err := SettleInterest(contract, decimal.NewFromInt(100_000), today)
	require.NoError(t, err)

	// 100,000 buys 3 whole days at 30,000/day, 10,000 carries over
	assert.Equal(t, 3, result.ExtensionDays)
	assert.True(t, result.NewResidual.Equal(decimal.NewFromInt(10_000)))
	assert.Equal(t, date(2024, 2, 3), result.NewDueDate)
	// first settlement: origination day counts as covered, so 3-1=2 days
	// forward from the start date
	assert.Equal(t, date(2024, 1, 3), result.PaidThrough)

	assert.Equal(t, date(2024, 2, 3), updated.DueDate)
	require.NotNil(t, updated.LastInterestPaidDate)
	assert.Equal(t, date(2024, 1, 3), *updated.LastInterestPaidDate)
	assert.True(t, updated.ResidualInterest.Equal(decimal.NewFromInt(10_000)))
	assert.Equal(t, domain.ContractStatusActive, updated.Status)

	require.NotNil(t, payment)
	assert.Equal(t, domain.PaymentTypeInterest, payment.Type)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(100_000)))
	assert.Equal(t, today, payment.Date)
	require.Len(t, updated.Payments, 1)
	assert.Same(t, payment, updated.Payments[0])
}

func TestSettleInterest_SecondPaymentConsumesResidual(t *testing.T) {
	contract := baseContract()
	paidThrough := date(2024, 1, 3)
	contract.LastInterestPaidDate = &paidThrough
	contract.DueDate = date(2024, 2, 3)
	contract.ResidualInterest = decimal.NewFromInt(10_000)

	updated, _, result, err := SettleInterest(contract, decimal.NewFromInt(50_000), date(2024, 1, 20))
	require.NoError(t, err)

	// 50,000 + 10,000 carried = 60,000 = exactly 2 days
	assert.Equal(t, 2, result.ExtensionDays)
	assert.True(t, result.NewResidual.IsZero())
	assert.Equal(t, date(2024, 2, 5), result.NewDueDate)
	// not the first settlement: no minus-one adjustment
	assert.Equal(t, date(2024, 1, 5), result.PaidThrough)
	assert.True(t, updated.ResidualInterest.IsZero())
}

func TestSettleInterest_PaymentBelowOneDay(t *testing.T) {
	contract := baseContract()

	updated, _, result, err := SettleInterest(contract, decimal.NewFromInt(20_000), date(2024, 1, 5))
	require.NoError(t, err)

	assert.Equal(t, 0, result.ExtensionDays)
	assert.True(t, result.NewResidual.Equal(decimal.NewFromInt(20_000)))
	// due date never moves backward
	assert.Equal(t, contract.DueDate, result.NewDueDate)
	// first settlement with zero extension clamps at origination
	assert.Equal(t, contract.StartDate, result.PaidThrough)
	assert.True(t, updated.ResidualInterest.Equal(decimal.NewFromInt(20_000)))
}

func TestSettleInterest_ClearsOverdueMarking(t *testing.T) {
	contract := baseContract()
	contract.DueDate = date(2024, 1, 10)

	today := date(2024, 1, 20)
	require.Equal(t, domain.ContractStatusOverdue, EffectiveStatus(contract, today))

	updated, _, _, err := SettleInterest(contract, decimal.NewFromInt(300_000), today)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusActive, updated.Status)
	assert.Equal(t, date(2024, 1, 20), updated.DueDate)
}

func TestSettleInterest_Conservation(t *testing.T) {
	amounts := []int64{1, 29_999, 30_000, 30_001, 100_000, 123_457, 999_999, 5_000_000}

	for _, amount := range amounts {
		contract := baseContract()
		contract.ResidualInterest = decimal.NewFromInt(7_500)
		rate := DailyAccrual(contract)

		updated, _, result, err := SettleInterest(contract, decimal.NewFromInt(amount), date(2024, 1, 15))
		require.NoError(t, err, "amount=%d", amount)

		// extensionDays x rate + newResidual == amountPaid + previousResidual
		reconstructed := rate.Mul(decimal.NewFromInt(int64(result.ExtensionDays))).Add(result.NewResidual)
		expected := decimal.NewFromInt(amount).Add(contract.ResidualInterest)
		assert.True(t, reconstructed.Equal(expected),
			"conservation violated for amount=%d: %s != %s", amount, reconstructed, expected)

		// 0 <= newResidual < dailyAccrual
		assert.False(t, result.NewResidual.IsNegative(), "amount=%d", amount)
		assert.True(t, result.NewResidual.LessThan(rate), "amount=%d", amount)

		// due date only moves forward
		assert.False(t, updated.DueDate.Before(contract.DueDate), "amount=%d", amount)
	}
}

func TestSettleInterest_PercentPerMonth(t *testing.T) {
	contract := baseContract()
	contract.LoanAmount = decimal.NewFromInt(9_000_000)
	contract.InterestRate = decimal.NewFromInt(3)
	contract.InterestType = domain.InterestPercentPerMonth

	// 9,000,000 x 3% / 30 = 9,000 per day
	rate := DailyAccrual(contract)
	require.True(t, rate.Equal(decimal.NewFromInt(9_000)))

	_, _, result, err := SettleInterest(contract, decimal.NewFromInt(100_000), date(2024, 1, 11))
	require.NoError(t, err)
	assert.Equal(t, 11, result.ExtensionDays)
	assert.True(t, result.NewResidual.Equal(decimal.NewFromInt(1_000)))
}

func TestSettleInterest_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*domain.Contract)
		amount   int64
		expected error
	}{
		{
			name:     "zero amount",
			mutate:   func(c *domain.Contract) {},
			amount:   0,
			expected: customError.ErrInvalidAmount,
		},
		{
			name:     "negative amount",
			mutate:   func(c *domain.Contract) {},
			amount:   -5_000,
			expected: customError.ErrInvalidAmount,
		},
		{
			name:     "redeemed contract",
			mutate:   func(c *domain.Contract) { c.Status = domain.ContractStatusRedeemed },
			amount:   100_000,
			expected: customError.ErrTerminalContract,
		},
		{
			name:     "liquidated contract",
			mutate:   func(c *domain.Contract) { c.Status = domain.ContractStatusLiquidated },
			amount:   100_000,
			expected: customError.ErrTerminalContract,
		},
		{
			name:     "zero rate",
			mutate:   func(c *domain.Contract) { c.InterestRate = decimal.Zero },
			amount:   100_000,
			expected: customError.ErrZeroAccrualRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contract := baseContract()
			tt.mutate(&contract)
			before := contract

			unchanged, payment, _, err := SettleInterest(contract, decimal.NewFromInt(tt.amount), date(2024, 1, 11))
			assert.ErrorIs(t, err, tt.expected)
			assert.Nil(t, payment)
			// all-or-nothing: no partial mutation on failure
			assert.Equal(t, before, unchanged)
		})
	}
}
