package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Payment is a single monetary receipt from a tenant. The receipt is
// immutable; only its derived allocations and unapplied credit vary.
type Payment struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID        snowflake.ID    `gorm:"not null;index" json:"tenant_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	UnappliedAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"unapplied_amount"`
	PaymentDate     time.Time       `gorm:"not null" json:"payment_date"`
	Method          string          `gorm:"type:text;not null" json:"method"`
	Reference       string          `gorm:"type:text" json:"reference,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }

// PaymentAllocation records that part of a payment settled part of a
// monthly charge. Rows are never updated or deleted; corrections are
// modeled as new payments.
type PaymentAllocation struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	PaymentID       snowflake.ID    `gorm:"not null;index" json:"payment_id"`
	ChargeID        snowflake.ID    `gorm:"not null;index" json:"charge_id"`
	AmountAllocated decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount_allocated"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (PaymentAllocation) TableName() string { return "payment_allocations" }
