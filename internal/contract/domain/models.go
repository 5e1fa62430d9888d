package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ContractStatus tracks the lifecycle of a rental agreement.
type ContractStatus string

const (
	ContractStatusActive     ContractStatus = "active"
	ContractStatusCompleted  ContractStatus = "completed"
	ContractStatusTerminated ContractStatus = "terminated"
)

// ChargeStatus classifies how much of a monthly charge remains unpaid.
type ChargeStatus string

const (
	ChargeStatusPending ChargeStatus = "pending"
	ChargeStatusPartial ChargeStatus = "partial"
	ChargeStatusPaid    ChargeStatus = "paid"
	ChargeStatusOverdue ChargeStatus = "overdue"
)

// Contract binds a tenant to a property for a date range and defines
// the monthly installment billed over that range.
type Contract struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	TenantID      snowflake.ID    `gorm:"not null;index" json:"tenant_id"`
	PropertyID    snowflake.ID    `gorm:"not null;index" json:"property_id"`
	StartDate     time.Time       `gorm:"not null" json:"start_date"`
	EndDate       time.Time       `gorm:"not null" json:"end_date"`
	InitialAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"initial_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"current_amount"`
	BillingDay    int             `gorm:"not null;default:1" json:"billing_day"`
	Status        ContractStatus  `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Contract) TableName() string { return "contracts" }

// MonthlyCharge is one periodic obligation owned by a contract. Its
// balance_due only ever decreases, and 0 <= balance_due <= total_amount.
type MonthlyCharge struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	ContractID      snowflake.ID    `gorm:"not null;index" json:"contract_id"`
	Month           int             `gorm:"not null" json:"month"`
	Year            int             `gorm:"not null" json:"year"`
	DueDate         time.Time       `gorm:"not null;index" json:"due_date"`
	RentAmount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"rent_amount"`
	ExpensesAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"expenses_amount"`
	WaterAmount     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"water_amount"`
	OtherAmount     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"other_amount"`
	SurchargeAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"surcharge_amount"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"discount_amount"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	BalanceDue      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"balance_due"`
	Status          ChargeStatus    `gorm:"type:text;not null;default:'pending'" json:"status"`
	IsGenerated     bool            `gorm:"not null;default:true" json:"is_generated"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (MonthlyCharge) TableName() string { return "monthly_charges" }
