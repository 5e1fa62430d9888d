package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Property is a rentable unit that contracts bind tenants to.
type Property struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Address     string            `gorm:"not null" json:"address"`
	City        string            `gorm:"type:text" json:"city,omitempty"`
	Description string            `gorm:"type:text" json:"description,omitempty"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Property) TableName() string { return "properties" }
