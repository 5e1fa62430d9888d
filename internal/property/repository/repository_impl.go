package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentflow/internal/property/domain"
	"github.com/smallbiznis/rentflow/pkg/db/option"
	"github.com/smallbiznis/rentflow/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, property *domain.Property) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO properties (id, address, city, description, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		property.ID,
		property.Address,
		property.City,
		property.Description,
		property.Metadata,
		property.CreatedAt,
		property.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Property, error) {
	var property domain.Property
	err := db.WithContext(ctx).Raw(
		`SELECT id, address, city, description, metadata, created_at, updated_at
		 FROM properties WHERE id = ?`,
		id,
	).Scan(&property).Error
	if err != nil {
		return nil, err
	}
	if property.ID == 0 {
		return nil, nil
	}
	return &property, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListPropertyFilter, page pagination.Pagination) ([]*domain.Property, error) {
	var properties []*domain.Property
	stmt := db.WithContext(ctx).Model(&domain.Property{})
	if filter.City != "" {
		stmt = stmt.Where("city = ?", filter.City)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Find(&properties).Error; err != nil {
		return nil, err
	}
	return properties, nil
}
