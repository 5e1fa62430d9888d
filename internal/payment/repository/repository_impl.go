package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	contractdomain "github.com/smallbiznis/rentflow/internal/contract/domain"
	"github.com/smallbiznis/rentflow/internal/payment/domain"
	"github.com/smallbiznis/rentflow/pkg/db/option"
	"github.com/smallbiznis/rentflow/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) InsertAllocations(ctx context.Context, db *gorm.DB, allocations []*domain.PaymentAllocation) error {
	if len(allocations) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(allocations).Error
}

func (r *repo) FindPaymentByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, amount, unapplied_amount, payment_date, method, reference, notes,
			created_at, updated_at
		 FROM payments WHERE id = ?`,
		id,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) ListPayments(ctx context.Context, db *gorm.DB, filter domain.ListPaymentFilter, page pagination.Pagination) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	stmt := db.WithContext(ctx).Model(&domain.Payment{})
	if filter.TenantID != 0 {
		stmt = stmt.Where("tenant_id = ?", filter.TenantID)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) ListAllocationsByPayment(ctx context.Context, db *gorm.DB, paymentID snowflake.ID) ([]*domain.PaymentAllocation, error) {
	var allocations []*domain.PaymentAllocation
	err := db.WithContext(ctx).
		Model(&domain.PaymentAllocation{}).
		Where("payment_id = ?", paymentID).
		Order("id ASC").
		Find(&allocations).Error
	if err != nil {
		return nil, err
	}
	return allocations, nil
}

func (r *repo) ListOutstandingCharges(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*contractdomain.MonthlyCharge, error) {
	var charges []*contractdomain.MonthlyCharge
	err := outstandingChargesStmt(ctx, db, tenantID).Find(&charges).Error
	if err != nil {
		return nil, err
	}
	return charges, nil
}

func (r *repo) ListOutstandingChargesForUpdate(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*contractdomain.MonthlyCharge, error) {
	var charges []*contractdomain.MonthlyCharge
	stmt := outstandingChargesStmt(ctx, db, tenantID)
	// sqlite has no row-level locks; its single-writer model gives the
	// same guarantee in tests.
	if db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "monthly_charges"}})
	}
	if err := stmt.Find(&charges).Error; err != nil {
		return nil, err
	}
	return charges, nil
}

func outstandingChargesStmt(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) *gorm.DB {
	return db.WithContext(ctx).
		Model(&contractdomain.MonthlyCharge{}).
		Joins("JOIN contracts ON contracts.id = monthly_charges.contract_id").
		Where("contracts.tenant_id = ?", tenantID).
		Where("monthly_charges.balance_due > 0").
		Order("monthly_charges.due_date ASC, monthly_charges.id ASC")
}

func (r *repo) UpdateChargeAllocation(ctx context.Context, db *gorm.DB, charge *contractdomain.MonthlyCharge, previousBalance decimal.Decimal) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE monthly_charges
		 SET balance_due = ?, status = ?, updated_at = ?
		 WHERE id = ? AND balance_due = ?`,
		charge.BalanceDue,
		charge.Status,
		charge.UpdatedAt,
		charge.ID,
		previousBalance,
	)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
