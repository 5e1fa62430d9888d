package domain

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	contractdomain "github.com/smallbiznis/rentflow/internal/contract/domain"
)

// AllocationResult is one (charge, amount) pair produced by Allocate.
type AllocationResult struct {
	ChargeID snowflake.ID
	Amount   decimal.Decimal
}

// Allocate distributes amount across the given outstanding charges,
// oldest due date first, mutating each touched charge's balance and
// status in place. Charges must arrive ordered by due date ascending
// with identifier as the tie-breaker. The unallocated remainder is
// returned, never discarded.
//
// Charges are validated before anything is mutated, so a corrupt charge
// leaves the whole set untouched.
func Allocate(amount decimal.Decimal, charges []*contractdomain.MonthlyCharge) ([]AllocationResult, decimal.Decimal, error) {
	if !amount.IsPositive() {
		return nil, decimal.Zero, ErrInvalidAmount
	}

	for _, charge := range charges {
		if charge.BalanceDue.IsNegative() || charge.BalanceDue.GreaterThan(charge.TotalAmount) {
			return nil, decimal.Zero, ErrCorruptChargeState
		}
	}

	remaining := amount
	var results []AllocationResult

	for _, charge := range charges {
		if !remaining.IsPositive() {
			break
		}
		if !charge.BalanceDue.IsPositive() {
			continue
		}

		applied := decimal.Min(remaining, charge.BalanceDue)
		results = append(results, AllocationResult{
			ChargeID: charge.ID,
			Amount:   applied,
		})

		charge.BalanceDue = charge.BalanceDue.Sub(applied)
		remaining = remaining.Sub(applied)

		if charge.BalanceDue.IsZero() {
			charge.Status = contractdomain.ChargeStatusPaid
		} else {
			charge.Status = contractdomain.ChargeStatusPartial
		}
	}

	return results, remaining, nil
}
