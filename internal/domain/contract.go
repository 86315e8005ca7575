package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Persisted lifecycle states. Overdue is intentionally absent: it is derived
// from the due date at read time and never written to storage.
const (
	ContractStatusActive     = "active"
	ContractStatusRedeemed   = "redeemed"
	ContractStatusLiquidated = "liquidated"

	// ContractStatusOverdue only ever appears in API responses.
	ContractStatusOverdue = "overdue"
)

const (
	// InterestPerDayPerMillion charges rate currency units per day for every
	// 1,000,000 of principal.
	InterestPerDayPerMillion = "per_day_per_million"
	// InterestPercentPerMonth charges rate percent of principal per 30-day month.
	InterestPercentPerMonth = "percent_per_month"
)

// DateFormat is the wire format for all calendar dates.
const DateFormat = "2006-01-02"

// Contract represents one pawn loan: a device held as collateral against an
// outstanding principal that accrues interest daily.
type Contract struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ContractID string    `json:"contract_id" db:"contract_id"`

	CustomerName   string `json:"customer_name" db:"customer_name"`
	CustomerPhone  string `json:"customer_phone" db:"customer_phone"`
	CustomerIDCard string `json:"customer_id_card" db:"customer_id_card"`

	DeviceBrand     string          `json:"device_brand" db:"device_brand"`
	DeviceModel     string          `json:"device_model" db:"device_model"`
	DeviceIMEI      string          `json:"device_imei" db:"device_imei"`
	DeviceCondition string          `json:"device_condition" db:"device_condition"`
	EstimatedValue  decimal.Decimal `json:"estimated_value" db:"estimated_value"`

	LoanAmount   decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	InterestRate decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	InterestType string          `json:"interest_type" db:"interest_type"`

	StartDate time.Time `json:"start_date" db:"start_date"`
	DueDate   time.Time `json:"due_date" db:"due_date"`
	Status    string    `json:"status" db:"status"`

	// ResidualInterest is the sub-day cash credit carried forward after a
	// settlement. Invariant: 0 <= ResidualInterest < daily accrual.
	ResidualInterest decimal.Decimal `json:"residual_interest" db:"residual_interest"`
	// LastInterestPaidDate is the date through which interest has been
	// settled; nil until the first interest payment.
	LastInterestPaidDate *time.Time `json:"last_interest_paid_date,omitempty" db:"last_interest_paid_date"`

	NoPaper bool   `json:"no_paper" db:"no_paper"`
	Notes   string `json:"notes" db:"notes"`

	// Version is the optimistic concurrency token; every successful update
	// increments it.
	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Payments is the append-only chronological ledger, loaded separately.
	Payments []*Payment `json:"payments,omitempty" db:"-"`
}

// IsTerminal reports whether the contract has reached a terminal state.
func (c *Contract) IsTerminal() bool {
	return c.Status == ContractStatusRedeemed || c.Status == ContractStatusLiquidated
}

// Validate checks the invariants a contract record must satisfy before the
// engine may operate on it. Storage and request boundaries both go through
// this so malformed payloads surface as a typed error instead of NaN math.
func (c *Contract) Validate() error {
	if c.ContractID == "" {
		return fmt.Errorf("contract_id is required")
	}
	if c.LoanAmount.IsNegative() {
		return fmt.Errorf("loan_amount must not be negative, got %s", c.LoanAmount)
	}
	if c.InterestRate.IsNegative() {
		return fmt.Errorf("interest_rate must not be negative, got %s", c.InterestRate)
	}
	if c.InterestType != InterestPerDayPerMillion && c.InterestType != InterestPercentPerMonth {
		return fmt.Errorf("unknown interest_type %q", c.InterestType)
	}
	switch c.Status {
	case ContractStatusActive, ContractStatusRedeemed, ContractStatusLiquidated:
	default:
		return fmt.Errorf("unknown status %q", c.Status)
	}
	if c.StartDate.IsZero() {
		return fmt.Errorf("start_date is required")
	}
	if c.DueDate.IsZero() {
		return fmt.Errorf("due_date is required")
	}
	if c.DueDate.Before(c.StartDate) {
		return fmt.Errorf("due_date %s precedes start_date %s",
			c.DueDate.Format(DateFormat), c.StartDate.Format(DateFormat))
	}
	if c.ResidualInterest.IsNegative() {
		return fmt.Errorf("residual_interest must not be negative, got %s", c.ResidualInterest)
	}
	return nil
}

// DTOs for requests and responses

type CreateContractRequest struct {
	ContractID     string `json:"contract_id"`
	CustomerName   string `json:"customer_name" validate:"required"`
	CustomerPhone  string `json:"customer_phone"`
	CustomerIDCard string `json:"customer_id_card"`

	DeviceBrand     string `json:"device_brand" validate:"required"`
	DeviceModel     string `json:"device_model" validate:"required"`
	DeviceIMEI      string `json:"device_imei"`
	DeviceCondition string `json:"device_condition"`
	EstimatedValue  int64  `json:"estimated_value" validate:"gte=0"`

	LoanAmount   int64   `json:"loan_amount" validate:"required,gt=0"`
	InterestRate float64 `json:"interest_rate" validate:"gte=0"`
	InterestType string  `json:"interest_type" validate:"omitempty,oneof=per_day_per_million percent_per_month"`

	StartDate    string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	DurationDays int    `json:"duration_days" validate:"omitempty,gt=0"`

	NoPaper bool   `json:"no_paper"`
	Notes   string `json:"notes"`
}

// UpdateContractRequest is the full-field edit: descriptive payload,
// principal, rate and dates. Ledger, residual and paid-through are preserved.
type UpdateContractRequest struct {
	CustomerName   string `json:"customer_name" validate:"required"`
	CustomerPhone  string `json:"customer_phone"`
	CustomerIDCard string `json:"customer_id_card"`

	DeviceBrand     string `json:"device_brand" validate:"required"`
	DeviceModel     string `json:"device_model" validate:"required"`
	DeviceIMEI      string `json:"device_imei"`
	DeviceCondition string `json:"device_condition"`
	EstimatedValue  int64  `json:"estimated_value" validate:"gte=0"`

	LoanAmount   int64   `json:"loan_amount" validate:"required,gte=0"`
	InterestRate float64 `json:"interest_rate" validate:"gte=0"`
	InterestType string  `json:"interest_type" validate:"required,oneof=per_day_per_million percent_per_month"`

	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	DueDate   string `json:"due_date" validate:"required,datetime=2006-01-02"`

	NoPaper bool   `json:"no_paper"`
	Notes   string `json:"notes"`
}

type SettleInterestRequest struct {
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Today  string `json:"today" validate:"omitempty,datetime=2006-01-02"`
}

const (
	AdjustDirectionAdd    = "add"
	AdjustDirectionReduce = "reduce"
)

type AdjustPrincipalRequest struct {
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Direction string `json:"direction" validate:"required,oneof=add reduce"`
	Note      string `json:"note"`
	Today     string `json:"today" validate:"omitempty,datetime=2006-01-02"`
}

// ContractResponse decorates a stored contract with the time-derived view.
type ContractResponse struct {
	Contract        *Contract       `json:"contract"`
	EffectiveStatus string          `json:"effective_status"`
	DaysOverdue     int             `json:"days_overdue"`
	DailyAccrual    decimal.Decimal `json:"daily_accrual"`
	InterestOwed    decimal.Decimal `json:"interest_owed"`
}

type SettlementResponse struct {
	ContractID    string          `json:"contract_id"`
	ExtensionDays int             `json:"extension_days"`
	NewDueDate    string          `json:"new_due_date"`
	NewResidual   decimal.Decimal `json:"new_residual"`
	PaidThrough   string          `json:"paid_through"`
}

type PayoffResponse struct {
	ContractID   string          `json:"contract_id"`
	LoanAmount   decimal.Decimal `json:"loan_amount"`
	InterestOwed decimal.Decimal `json:"interest_owed"`
	Payoff       decimal.Decimal `json:"payoff"`
	AsOf         string          `json:"as_of"`
}

type DashboardResponse struct {
	ActiveCount   int             `json:"active_count"`
	OverdueCount  int             `json:"overdue_count"`
	RedeemedCount int             `json:"redeemed_count"`
	TotalLoaned   decimal.Decimal `json:"total_loaned"`
	AsOf          string          `json:"as_of"`
}
