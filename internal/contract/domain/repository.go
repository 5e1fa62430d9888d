package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentflow/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListContractFilter struct {
	TenantID snowflake.ID
	Status   ContractStatus
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, contract *Contract) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Contract, error)
	List(ctx context.Context, db *gorm.DB, filter ListContractFilter, page pagination.Pagination) ([]*Contract, error)
	InsertCharges(ctx context.Context, db *gorm.DB, charges []*MonthlyCharge) error
	ListCharges(ctx context.Context, db *gorm.DB, contractID snowflake.ID) ([]*MonthlyCharge, error)
}
