package engine

import (
	"time"

	"github.com/tdnguyen/pawnshop-engine/internal/domain"
	"github.com/tdnguyen/pawnshop-engine/pkg/dateutil"
)

// EffectiveStatus derives the lifecycle state for display and for gating
// settlement. Terminal states are sticky; overdue is a transient condition
// computed from the due date, never persisted.
func EffectiveStatus(c domain.Contract, today time.Time) string {
	if c.IsTerminal() {
		return c.Status
	}
	if dateutil.DaysBetween(c.DueDate, today) > 0 {
		return domain.ContractStatusOverdue
	}
	return domain.ContractStatusActive
}

// DaysOverdue returns how many days past due the contract is, zero when the
// due date has not passed or the contract is terminal.
func DaysOverdue(c domain.Contract, today time.Time) int {
	if c.IsTerminal() {
		return 0
	}
	days := dateutil.DaysBetween(c.DueDate, today)
	if days < 0 {
		return 0
	}
	return days
}
