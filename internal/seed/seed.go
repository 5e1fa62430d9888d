package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	propertydomain "github.com/smallbiznis/rentflow/internal/property/domain"
	tenantdomain "github.com/smallbiznis/rentflow/internal/tenant/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	demoTenantName  = "Demo Tenant"
	demoTenantEmail = "tenant@rentflow.dev"
	demoTenantToken = "demo-tenant-link-token"
	demoAddress     = "742 Evergreen Terrace"
	demoCity        = "Springfield"
)

// EnsureDemoData seeds a demo tenant and property for local development.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureDemoTenantTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureDemoPropertyTx(ctx, tx, node)
	})
}

func ensureDemoTenantTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&tenantdomain.Tenant{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	tenant := tenantdomain.Tenant{
		ID:        node.Generate(),
		Name:      demoTenantName,
		Email:     demoTenantEmail,
		LinkToken: demoTenantToken,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&tenant).Error
}

func ensureDemoPropertyTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&propertydomain.Property{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	property := propertydomain.Property{
		ID:        node.Generate(),
		Address:   demoAddress,
		City:      demoCity,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&property).Error
}
