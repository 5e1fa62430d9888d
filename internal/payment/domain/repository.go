package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	contractdomain "github.com/smallbiznis/rentflow/internal/contract/domain"
	"github.com/smallbiznis/rentflow/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListPaymentFilter struct {
	TenantID snowflake.ID
}

type Repository interface {
	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	InsertAllocations(ctx context.Context, db *gorm.DB, allocations []*PaymentAllocation) error
	FindPaymentByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	ListPayments(ctx context.Context, db *gorm.DB, filter ListPaymentFilter, page pagination.Pagination) ([]*Payment, error)
	ListAllocationsByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) ([]*PaymentAllocation, error)

	// ListOutstandingCharges returns every charge across the tenant's
	// contracts with balance_due > 0, ordered by due date then id.
	ListOutstandingCharges(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*contractdomain.MonthlyCharge, error)

	// ListOutstandingChargesForUpdate returns every charge across the
	// tenant's contracts with balance_due > 0, ordered by due date then
	// id, holding row locks until the surrounding transaction ends.
	ListOutstandingChargesForUpdate(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*contractdomain.MonthlyCharge, error)

	// UpdateChargeAllocation persists the allocator's mutation of one
	// charge, guarded by the balance it was read at. Returns the number
	// of rows matched; zero means another writer got there first.
	UpdateChargeAllocation(ctx context.Context, db *gorm.DB, charge *contractdomain.MonthlyCharge, previousBalance decimal.Decimal) (int64, error)
}
