package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdnguyen/pawnshop-engine/internal/domain"
	customError "github.com/tdnguyen/pawnshop-engine/pkg/errors"
)

func TestEffectiveStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		daysPast int
		expected string
	}{
		{"active before due date", domain.ContractStatusActive, -5, domain.ContractStatusActive},
		{"active on due date", domain.ContractStatusActive, 0, domain.ContractStatusActive},
		{"overdue one day past", domain.ContractStatusActive, 1, domain.ContractStatusOverdue},
		{"overdue long past", domain.ContractStatusActive, 90, domain.ContractStatusOverdue},
		{"redeemed is sticky past due", domain.ContractStatusRedeemed, 30, domain.ContractStatusRedeemed},
		{"liquidated is sticky past due", domain.ContractStatusLiquidated, 30, domain.ContractStatusLiquidated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contract := baseContract()
			contract.Status = tt.status
			today := contract.DueDate.AddDate(0, 0, tt.daysPast)

			assert.Equal(t, tt.expected, EffectiveStatus(contract, today))
		})
	}
}

func TestDaysOverdue(t *testing.T) {
	contract := baseContract()

	assert.Equal(t, 0, DaysOverdue(contract, contract.DueDate))
	assert.Equal(t, 0, DaysOverdue(contract, contract.DueDate.AddDate(0, 0, -10)))
	assert.Equal(t, 7, DaysOverdue(contract, contract.DueDate.AddDate(0, 0, 7)))

	redeemed := baseContract()
	redeemed.Status = domain.ContractStatusRedeemed
	assert.Equal(t, 0, DaysOverdue(redeemed, redeemed.DueDate.AddDate(0, 0, 7)))
}

func TestRedeem(t *testing.T) {
	contract := baseContract()

	updated, err := Redeem(contract)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusRedeemed, updated.Status)
	// audit trail stays on the record
	assert.True(t, updated.LoanAmount.Equal(contract.LoanAmount))

	_, err = Redeem(updated)
	assert.ErrorIs(t, err, customError.ErrTerminalContract)
}

func TestLiquidate(t *testing.T) {
	contract := baseContract()

	updated, err := Liquidate(contract)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusLiquidated, updated.Status)

	// no transition out of a terminal state, in either direction
	_, err = Redeem(updated)
	assert.ErrorIs(t, err, customError.ErrTerminalContract)
	_, err = Liquidate(updated)
	assert.ErrorIs(t, err, customError.ErrTerminalContract)
}
