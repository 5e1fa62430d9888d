package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	contractdomain "github.com/smallbiznis/rentflow/internal/contract/domain"
)

func outstandingCharge(id int64, balance, total string) *contractdomain.MonthlyCharge {
	return &contractdomain.MonthlyCharge{
		ID:          snowflake.ID(id),
		DueDate:     time.Date(2024, time.Month(id), 1, 0, 0, 0, 0, time.UTC),
		TotalAmount: decimal.RequireFromString(total),
		BalanceDue:  decimal.RequireFromString(balance),
		Status:      contractdomain.ChargeStatusPending,
	}
}

func TestAllocateOldestFirstWaterfall(t *testing.T) {
	charges := []*contractdomain.MonthlyCharge{
		outstandingCharge(1, "100", "100"),
		outstandingCharge(2, "100", "100"),
		outstandingCharge(3, "100", "100"),
	}

	results, remainder, err := Allocate(decimal.RequireFromString("250"), charges)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 allocations, got %d", len(results))
	}
	for i, want := range []string{"100", "100", "50"} {
		if !results[i].Amount.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("allocation %d: expected %s, got %s", i, want, results[i].Amount)
		}
	}
	if !remainder.IsZero() {
		t.Fatalf("expected zero remainder, got %s", remainder)
	}

	if charges[0].Status != contractdomain.ChargeStatusPaid ||
		charges[1].Status != contractdomain.ChargeStatusPaid {
		t.Fatalf("expected first two charges paid, got %s/%s", charges[0].Status, charges[1].Status)
	}
	if charges[2].Status != contractdomain.ChargeStatusPartial {
		t.Fatalf("expected last charge partial, got %s", charges[2].Status)
	}
	if !charges[2].BalanceDue.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected last balance 50, got %s", charges[2].BalanceDue)
	}
}

func TestAllocateConservation(t *testing.T) {
	charges := []*contractdomain.MonthlyCharge{
		outstandingCharge(1, "33.3333", "100"),
		outstandingCharge(2, "100", "100"),
	}

	amount := decimal.RequireFromString("75.5")
	results, remainder, err := Allocate(amount, charges)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	applied := decimal.Zero
	for _, result := range results {
		applied = applied.Add(result.Amount)
	}
	if !applied.Add(remainder).Equal(amount) {
		t.Fatalf("allocated %s + remainder %s does not equal %s", applied, remainder, amount)
	}
}

func TestAllocateOverpaymentReturnsRemainder(t *testing.T) {
	charges := []*contractdomain.MonthlyCharge{
		outstandingCharge(1, "100", "100"),
		outstandingCharge(2, "100", "100"),
		outstandingCharge(3, "100", "100"),
	}

	results, remainder, err := Allocate(decimal.RequireFromString("400"), charges)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 allocations, got %d", len(results))
	}
	if !remainder.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected remainder 100, got %s", remainder)
	}
	for i, charge := range charges {
		if charge.Status != contractdomain.ChargeStatusPaid {
			t.Fatalf("charge %d: expected paid, got %s", i, charge.Status)
		}
		if !charge.BalanceDue.IsZero() {
			t.Fatalf("charge %d: expected zero balance, got %s", i, charge.BalanceDue)
		}
	}
}

func TestAllocateNoOutstandingCharges(t *testing.T) {
	amount := decimal.RequireFromString("120")

	results, remainder, err := Allocate(amount, nil)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no allocations, got %d", len(results))
	}
	if !remainder.Equal(amount) {
		t.Fatalf("expected full amount back, got %s", remainder)
	}
}

func TestAllocateSkipsSettledCharges(t *testing.T) {
	charges := []*contractdomain.MonthlyCharge{
		outstandingCharge(1, "0", "100"),
		outstandingCharge(2, "80", "100"),
	}
	charges[0].Status = contractdomain.ChargeStatusPaid

	results, remainder, err := Allocate(decimal.RequireFromString("50"), charges)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 allocation, got %d", len(results))
	}
	if results[0].ChargeID != charges[1].ID {
		t.Fatalf("expected allocation against second charge")
	}
	if !remainder.IsZero() {
		t.Fatalf("expected zero remainder, got %s", remainder)
	}
}

func TestAllocateRejectsNonPositiveAmount(t *testing.T) {
	charges := []*contractdomain.MonthlyCharge{outstandingCharge(1, "100", "100")}

	if _, _, err := Allocate(decimal.Zero, charges); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}
	if _, _, err := Allocate(decimal.RequireFromString("-5"), charges); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}
}

func TestAllocateCorruptChargeLeavesSetUntouched(t *testing.T) {
	healthy := outstandingCharge(1, "100", "100")
	corrupt := outstandingCharge(2, "150", "100")

	_, _, err := Allocate(decimal.RequireFromString("120"), []*contractdomain.MonthlyCharge{healthy, corrupt})
	if err != ErrCorruptChargeState {
		t.Fatalf("expected ErrCorruptChargeState, got %v", err)
	}

	if !healthy.BalanceDue.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("healthy charge was mutated, balance %s", healthy.BalanceDue)
	}
	if healthy.Status != contractdomain.ChargeStatusPending {
		t.Fatalf("healthy charge status changed to %s", healthy.Status)
	}
}

func TestAllocateNegativeBalanceIsCorrupt(t *testing.T) {
	charges := []*contractdomain.MonthlyCharge{outstandingCharge(1, "-1", "100")}

	if _, _, err := Allocate(decimal.RequireFromString("50"), charges); err != ErrCorruptChargeState {
		t.Fatalf("expected ErrCorruptChargeState, got %v", err)
	}
}
