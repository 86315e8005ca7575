package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tdnguyen/pawnshop-engine/internal/domain"
	customError "github.com/tdnguyen/pawnshop-engine/pkg/errors"
)

const contractColumns = `
	id, contract_id,
	customer_name, customer_phone, customer_id_card,
	device_brand, device_model, device_imei, device_condition, estimated_value,
	loan_amount, interest_rate, interest_type,
	start_date, due_date, status,
	residual_interest, last_interest_paid_date,
	no_paper, notes, version, created_at, updated_at
`

type contractRepository struct {
	db *sqlx.DB
}

func NewContractRepository(db *sqlx.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	query := `
		INSERT INTO contracts (
			id, contract_id,
			customer_name, customer_phone, customer_id_card,
			device_brand, device_model, device_imei, device_condition, estimated_value,
			loan_amount, interest_rate, interest_type,
			start_date, due_date, status,
			residual_interest, last_interest_paid_date,
			no_paper, notes, version, created_at, updated_at
		) VALUES (
			:id, :contract_id,
			:customer_name, :customer_phone, :customer_id_card,
			:device_brand, :device_model, :device_imei, :device_condition, :estimated_value,
			:loan_amount, :interest_rate, :interest_type,
			:start_date, :due_date, :status,
			:residual_interest, :last_interest_paid_date,
			:no_paper, :notes, :version, :created_at, :updated_at
		)
	`

	_, err := r.db.NamedExecContext(ctx, query, contract)
	return err
}

func (r *contractRepository) GetByContractID(ctx context.Context, contractID string) (*domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE contract_id = $1`

	var contract domain.Contract
	if err := r.db.GetContext(ctx, &contract, query, contractID); err != nil {
		return nil, err
	}

	// Reject malformed rows at the storage boundary instead of letting bad
	// numerics flow into the accrual math.
	if err := contract.Validate(); err != nil {
		return nil, customError.WrapMalformedRecord(contractID, err)
	}

	return &contract, nil
}

func (r *contractRepository) List(ctx context.Context) ([]*domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts ORDER BY created_at DESC`

	var contracts []*domain.Contract
	if err := r.db.SelectContext(ctx, &contracts, query); err != nil {
		return nil, err
	}

	for _, c := range contracts {
		if err := c.Validate(); err != nil {
			return nil, customError.WrapMalformedRecord(c.ContractID, err)
		}
	}

	return contracts, nil
}

func (r *contractRepository) Update(ctx context.Context, contract *domain.Contract, expectedVersion int) error {
	query := `
		UPDATE contracts SET
			customer_name = $3, customer_phone = $4, customer_id_card = $5,
			device_brand = $6, device_model = $7, device_imei = $8,
			device_condition = $9, estimated_value = $10,
			loan_amount = $11, interest_rate = $12, interest_type = $13,
			start_date = $14, due_date = $15, status = $16,
			residual_interest = $17, last_interest_paid_date = $18,
			no_paper = $19, notes = $20,
			version = version + 1, updated_at = $21
		WHERE contract_id = $1 AND version = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		contract.ContractID,
		expectedVersion,
		contract.CustomerName,
		contract.CustomerPhone,
		contract.CustomerIDCard,
		contract.DeviceBrand,
		contract.DeviceModel,
		contract.DeviceIMEI,
		contract.DeviceCondition,
		contract.EstimatedValue,
		contract.LoanAmount,
		contract.InterestRate,
		contract.InterestType,
		contract.StartDate,
		contract.DueDate,
		contract.Status,
		contract.ResidualInterest,
		contract.LastInterestPaidDate,
		contract.NoPaper,
		contract.Notes,
		time.Now(),
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return customError.WrapVersionConflict(contract.ContractID)
	}

	contract.Version = expectedVersion + 1
	return nil
}

func (r *contractRepository) Delete(ctx context.Context, contractID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contracts WHERE contract_id = $1`, contractID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return customError.WrapContractNotFound(contractID)
	}

	return nil
}
