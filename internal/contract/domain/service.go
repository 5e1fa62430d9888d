package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentflow/pkg/db/pagination"
)

type CreateContractRequest struct {
	TenantID      string
	PropertyID    string
	StartDate     time.Time
	EndDate       time.Time
	InitialAmount decimal.Decimal
	BillingDay    int
}

type CreateContractResponse struct {
	Contract Contract        `json:"contract"`
	Charges  []MonthlyCharge `json:"charges"`
}

type ListContractRequest struct {
	PageToken string
	PageSize  int32
	TenantID  string
	Status    string
}

type ListContractResponse struct {
	pagination.PageInfo
	Contracts []Contract `json:"contracts"`
}

type GetContractRequest struct {
	ID string
}

type GetContractResponse struct {
	Contract Contract        `json:"contract"`
	Charges  []MonthlyCharge `json:"charges"`
}

type ListChargesRequest struct {
	ContractID string
}

type ListChargesResponse struct {
	Charges []MonthlyCharge `json:"charges"`
}

type Service interface {
	Create(context.Context, CreateContractRequest) (CreateContractResponse, error)
	List(context.Context, ListContractRequest) (ListContractResponse, error)
	GetByID(context.Context, GetContractRequest) (GetContractResponse, error)
	ListCharges(context.Context, ListChargesRequest) (ListChargesResponse, error)
}

var (
	ErrInvalidContractRange = errors.New("invalid_contract_range")
	ErrInvalidBillingDay    = errors.New("invalid_billing_day")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidID            = errors.New("invalid_id")
	ErrTenantNotFound       = errors.New("tenant_not_found")
	ErrPropertyNotFound     = errors.New("property_not_found")
	ErrNotFound             = errors.New("not_found")
)
