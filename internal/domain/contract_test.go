package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validContract() Contract {
	return Contract{
		ContractID:       "HD-0042",
		CustomerName:     "Tran Thi B",
		LoanAmount:       decimal.NewFromInt(5_000_000),
		InterestRate:     decimal.NewFromInt(3000),
		InterestType:     InterestPerDayPerMillion,
		StartDate:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:          time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:           ContractStatusActive,
		ResidualInterest: decimal.Zero,
	}
}

func TestContractValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Contract)
		wantErr string
	}{
		{
			name:   "valid active contract",
			mutate: func(c *Contract) {},
		},
		{
			name:   "valid redeemed contract",
			mutate: func(c *Contract) { c.Status = ContractStatusRedeemed },
		},
		{
			name:   "zero loan amount is allowed",
			mutate: func(c *Contract) { c.LoanAmount = decimal.Zero },
		},
		{
			name:    "missing contract id",
			mutate:  func(c *Contract) { c.ContractID = "" },
			wantErr: "contract_id",
		},
		{
			name:    "negative loan amount",
			mutate:  func(c *Contract) { c.LoanAmount = decimal.NewFromInt(-1) },
			wantErr: "loan_amount",
		},
		{
			name:    "negative interest rate",
			mutate:  func(c *Contract) { c.InterestRate = decimal.NewFromInt(-3000) },
			wantErr: "interest_rate",
		},
		{
			name:    "unknown interest type",
			mutate:  func(c *Contract) { c.InterestType = "per_hour" },
			wantErr: "interest_type",
		},
		{
			name:    "overdue must not be persisted",
			mutate:  func(c *Contract) { c.Status = ContractStatusOverdue },
			wantErr: "status",
		},
		{
			name:    "unknown status",
			mutate:  func(c *Contract) { c.Status = "pending" },
			wantErr: "status",
		},
		{
			name:    "missing start date",
			mutate:  func(c *Contract) { c.StartDate = time.Time{} },
			wantErr: "start_date",
		},
		{
			name:    "missing due date",
			mutate:  func(c *Contract) { c.DueDate = time.Time{} },
			wantErr: "due_date",
		},
		{
			name: "due date before start date",
			mutate: func(c *Contract) {
				c.DueDate = c.StartDate.AddDate(0, 0, -1)
			},
			wantErr: "precedes",
		},
		{
			name:    "negative residual",
			mutate:  func(c *Contract) { c.ResidualInterest = decimal.NewFromInt(-500) },
			wantErr: "residual_interest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contract := validContract()
			tt.mutate(&contract)

			err := contract.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestContractIsTerminal(t *testing.T) {
	tests := []struct {
		status   string
		terminal bool
	}{
		{ContractStatusActive, false},
		{ContractStatusOverdue, false},
		{ContractStatusRedeemed, true},
		{ContractStatusLiquidated, true},
	}

	for _, tt := range tests {
		c := validContract()
		c.Status = tt.status
		assert.Equal(t, tt.terminal, c.IsTerminal(), "status %q", tt.status)
	}
}
