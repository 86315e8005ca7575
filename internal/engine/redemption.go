package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tdnguyen/pawnshop-engine/internal/domain"
	customError "github.com/tdnguyen/pawnshop-engine/pkg/errors"
)

// PayoffAmount is the total the customer pays to reclaim the collateral:
// outstanding principal plus interest accrued as of the reference date.
func PayoffAmount(c domain.Contract, today time.Time) decimal.Decimal {
	return c.LoanAmount.Add(InterestOwed(c, today))
}

// Redeem performs the terminal redemption transition. The ledger and loan
// amount remain for audit history; no further accrual is queried against a
// redeemed contract.
func Redeem(c domain.Contract) (domain.Contract, error) {
	if c.IsTerminal() {
		return c, customError.WrapTerminalContract(c.ContractID, c.Status)
	}
	c.Status = domain.ContractStatusRedeemed
	return c, nil
}

// Liquidate writes the contract off: the collateral is forfeited instead of
// redeemed. No payoff is computed.
func Liquidate(c domain.Contract) (domain.Contract, error) {
	if c.IsTerminal() {
		return c, customError.WrapTerminalContract(c.ContractID, c.Status)
	}
	c.Status = domain.ContractStatusLiquidated
	return c, nil
}
