package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentflow/internal/contract/domain"
	"github.com/smallbiznis/rentflow/pkg/db/option"
	"github.com/smallbiznis/rentflow/pkg/db/pagination"
	"github.com/smallbiznis/rentflow/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, contract *domain.Contract) error {
	return db.WithContext(ctx).Create(contract).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Contract, error) {
	var contract domain.Contract
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, property_id, start_date, end_date, initial_amount, current_amount,
			billing_day, status, created_at, updated_at
		 FROM contracts WHERE id = ?`,
		id,
	).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == 0 {
		return nil, nil
	}
	return &contract, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListContractFilter, page pagination.Pagination) ([]*domain.Contract, error) {
	var contracts []*domain.Contract
	stmt := db.WithContext(ctx).Model(&domain.Contract{})
	if filter.TenantID != 0 {
		stmt = stmt.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

// InsertCharges writes the generated schedule in one batch so the
// surrounding transaction commits contract and charges together.
func (r *repo) InsertCharges(ctx context.Context, db *gorm.DB, charges []*domain.MonthlyCharge) error {
	return repository.ProvideStore[domain.MonthlyCharge](db).BatchCreate(ctx, charges)
}

func (r *repo) ListCharges(ctx context.Context, db *gorm.DB, contractID snowflake.ID) ([]*domain.MonthlyCharge, error) {
	var charges []*domain.MonthlyCharge
	err := db.WithContext(ctx).
		Model(&domain.MonthlyCharge{}).
		Where("contract_id = ?", contractID).
		Order("due_date ASC, id ASC").
		Find(&charges).Error
	if err != nil {
		return nil, err
	}
	return charges, nil
}
