package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BuildSchedule produces one MonthlyCharge per calendar month the
// contract spans, start and end months inclusive. The nominal billing
// day is clamped to the last valid day of short months; clamping in one
// month never shifts the due date of the following months. IDs are left
// zero for the caller to assign before persisting.
func BuildSchedule(contract Contract) ([]MonthlyCharge, error) {
	start := contract.StartDate.UTC()
	end := contract.EndDate.UTC()
	if end.Before(start) {
		return nil, ErrInvalidContractRange
	}

	first := start.Year()*12 + int(start.Month()) - 1
	last := end.Year()*12 + int(end.Month()) - 1

	charges := make([]MonthlyCharge, 0, last-first+1)
	for ym := first; ym <= last; ym++ {
		year := ym / 12
		month := time.Month(ym%12 + 1)

		charges = append(charges, MonthlyCharge{
			Month:           int(month),
			Year:            year,
			DueDate:         dueDate(year, month, contract.BillingDay),
			RentAmount:      contract.InitialAmount,
			ExpensesAmount:  decimal.Zero,
			WaterAmount:     decimal.Zero,
			OtherAmount:     decimal.Zero,
			SurchargeAmount: decimal.Zero,
			DiscountAmount:  decimal.Zero,
			TotalAmount:     contract.InitialAmount,
			BalanceDue:      contract.InitialAmount,
			Status:          ChargeStatusPending,
			IsGenerated:     true,
		})
	}

	return charges, nil
}

// dueDate places the nominal billing day in the given month, clamped to
// the month's last day when the month is shorter.
func dueDate(year int, month time.Month, billingDay int) time.Time {
	day := billingDay
	if last := daysIn(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// daysIn returns the number of days in a month. Day zero of the next
// month normalizes to this month's last day.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
