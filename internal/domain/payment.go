package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentTypeInterest  = "interest"
	PaymentTypePrincipal = "principal"
)

// Payment is one entry in a contract's append-only ledger. Entries are never
// mutated or removed.
type Payment struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ContractID string          `json:"contract_id" db:"contract_id"`
	Date       time.Time       `json:"date" db:"paid_on"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Type       string          `json:"type" db:"type"`
	Note       string          `json:"note" db:"note"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
