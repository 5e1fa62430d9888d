package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	contractdomain "github.com/smallbiznis/rentflow/internal/contract/domain"
	"github.com/smallbiznis/rentflow/pkg/db/pagination"
)

type RegisterPaymentRequest struct {
	TenantID    string
	Amount      decimal.Decimal
	PaymentDate time.Time
	Method      string
	Reference   string
	Notes       string
}

type RegisterPaymentResponse struct {
	Payment     Payment             `json:"payment"`
	Allocations []PaymentAllocation `json:"allocations"`
	Remainder   decimal.Decimal     `json:"remainder"`
}

type ListPaymentRequest struct {
	PageToken string
	PageSize  int32
	TenantID  string
}

type ListPaymentResponse struct {
	pagination.PageInfo
	Payments []Payment `json:"payments"`
}

type GetPaymentRequest struct {
	ID string
}

type GetPaymentResponse struct {
	Payment     Payment             `json:"payment"`
	Allocations []PaymentAllocation `json:"allocations"`
}

type ListOutstandingChargesRequest struct {
	TenantID string
}

type ListOutstandingChargesResponse struct {
	Charges []contractdomain.MonthlyCharge `json:"charges"`
}

type Service interface {
	Register(context.Context, RegisterPaymentRequest) (RegisterPaymentResponse, error)
	List(context.Context, ListPaymentRequest) (ListPaymentResponse, error)
	GetByID(context.Context, GetPaymentRequest) (GetPaymentResponse, error)
	ListOutstandingCharges(context.Context, ListOutstandingChargesRequest) (ListOutstandingChargesResponse, error)
}

var (
	ErrInvalidAmount          = errors.New("invalid_amount")
	ErrInvalidMethod          = errors.New("invalid_method")
	ErrInvalidID              = errors.New("invalid_id")
	ErrTenantNotFound         = errors.New("tenant_not_found")
	ErrNotFound               = errors.New("not_found")
	ErrCorruptChargeState     = errors.New("corrupt_charge_state")
	ErrConcurrentModification = errors.New("concurrent_modification")
)
