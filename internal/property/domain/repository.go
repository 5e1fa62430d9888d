package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentflow/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListPropertyFilter struct {
	City string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, property *Property) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Property, error)
	List(ctx context.Context, db *gorm.DB, filter ListPropertyFilter, page pagination.Pagination) ([]*Property, error)
}
