package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tdnguyen/pawnshop-engine/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO payments (id, contract_id, paid_on, amount, type, note, created_at)
		VALUES (:id, :contract_id, :paid_on, :amount, :type, :note, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, payment)
	return err
}

func (r *paymentRepository) ListByContractID(ctx context.Context, contractID string) ([]*domain.Payment, error) {
	query := `
		SELECT id, contract_id, paid_on, amount, type, note, created_at
		FROM payments
		WHERE contract_id = $1
		ORDER BY created_at
	`

	var payments []*domain.Payment
	if err := r.db.SelectContext(ctx, &payments, query, contractID); err != nil {
		return nil, err
	}

	return payments, nil
}
