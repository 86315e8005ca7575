package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrContractNotFound      = errors.New("contract not found")
	ErrContractAlreadyExists = errors.New("contract already exists")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrZeroAccrualRate       = errors.New("daily accrual rate is zero")
	ErrTerminalContract      = errors.New("contract is redeemed or liquidated")
	ErrVersionConflict       = errors.New("contract was modified concurrently")
	ErrMalformedRecord       = errors.New("stored contract record is malformed")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeContractNotFound      = "CONTRACT_NOT_FOUND"
	ErrCodeContractAlreadyExists = "CONTRACT_ALREADY_EXISTS"
	ErrCodeInvalidAmount         = "INVALID_AMOUNT"
	ErrCodeZeroAccrualRate       = "ZERO_ACCRUAL_RATE"
	ErrCodeTerminalContract      = "TERMINAL_CONTRACT"
	ErrCodeVersionConflict       = "VERSION_CONFLICT"
	ErrCodeMalformedRecord       = "MALFORMED_RECORD"
	ErrCodeDatabaseError         = "DATABASE_ERROR"
	ErrCodeCacheError            = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapContractNotFound(contractID string) *BusinessError {
	return NewBusinessError(
		ErrCodeContractNotFound,
		fmt.Sprintf("Contract %s not found", contractID),
		ErrContractNotFound,
	)
}

func WrapContractAlreadyExists(contractID string) *BusinessError {
	return NewBusinessError(
		ErrCodeContractAlreadyExists,
		fmt.Sprintf("Contract %s already exists", contractID),
		ErrContractAlreadyExists,
	)
}

func WrapInvalidAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAmount,
		fmt.Sprintf("Invalid amount: %s", amount),
		ErrInvalidAmount,
	)
}

func WrapZeroAccrualRate(contractID string) *BusinessError {
	return NewBusinessError(
		ErrCodeZeroAccrualRate,
		fmt.Sprintf("Contract %s accrues no daily interest, payment cannot be converted to extension days", contractID),
		ErrZeroAccrualRate,
	)
}

func WrapTerminalContract(contractID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeTerminalContract,
		fmt.Sprintf("Contract %s is %s and accepts no further operations", contractID, status),
		ErrTerminalContract,
	)
}

func WrapVersionConflict(contractID string) *BusinessError {
	return NewBusinessError(
		ErrCodeVersionConflict,
		fmt.Sprintf("Contract %s was modified by another writer, reload and retry", contractID),
		ErrVersionConflict,
	)
}

func WrapMalformedRecord(contractID string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeMalformedRecord,
		fmt.Sprintf("Stored record for contract %s failed validation", contractID),
		errors.Join(ErrMalformedRecord, err),
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
