package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentflow/internal/payment/domain"
	tenantdomain "github.com/smallbiznis/rentflow/internal/tenant/domain"
	"github.com/smallbiznis/rentflow/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	TenantSvc tenantdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	tenantSvc tenantdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("payment.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		tenantSvc: p.TenantSvc,
	}
}

// Register records a payment and settles it against the tenant's
// outstanding charges, oldest first. Reading the charges, allocating,
// and writing payment, allocations and mutated charges happen in one
// transaction so concurrent payments for the same tenant cannot both
// consume the same balance.
func (s *Service) Register(ctx context.Context, req domain.RegisterPaymentRequest) (domain.RegisterPaymentResponse, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
	if err != nil {
		return domain.RegisterPaymentResponse{}, domain.ErrInvalidID
	}
	if !req.Amount.IsPositive() {
		return domain.RegisterPaymentResponse{}, domain.ErrInvalidAmount
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		return domain.RegisterPaymentResponse{}, domain.ErrInvalidMethod
	}

	if _, err := s.tenantSvc.GetByID(ctx, tenantdomain.GetTenantRequest{ID: tenantID.String()}); err != nil {
		if errors.Is(err, tenantdomain.ErrNotFound) {
			return domain.RegisterPaymentResponse{}, domain.ErrTenantNotFound
		}
		return domain.RegisterPaymentResponse{}, err
	}

	now := time.Now().UTC()
	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = now
	}

	payment := domain.Payment{
		ID:          s.genID.Generate(),
		TenantID:    tenantID,
		Amount:      req.Amount,
		PaymentDate: paymentDate.UTC(),
		Method:      method,
		Reference:   strings.TrimSpace(req.Reference),
		Notes:       strings.TrimSpace(req.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var allocations []*domain.PaymentAllocation
	var remainder decimal.Decimal

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		charges, err := s.repo.ListOutstandingChargesForUpdate(ctx, tx, tenantID)
		if err != nil {
			return err
		}

		readBalances := make(map[snowflake.ID]decimal.Decimal, len(charges))
		for _, charge := range charges {
			readBalances[charge.ID] = charge.BalanceDue
		}

		results, rest, err := domain.Allocate(req.Amount, charges)
		if err != nil {
			return err
		}
		remainder = rest

		// Any credit left after the waterfall stays on the payment row
		// as unapplied balance.
		payment.UnappliedAmount = remainder
		if err := s.repo.InsertPayment(ctx, tx, &payment); err != nil {
			return err
		}

		byID := make(map[snowflake.ID]int, len(charges))
		for i, charge := range charges {
			byID[charge.ID] = i
		}

		allocations = make([]*domain.PaymentAllocation, 0, len(results))
		for _, result := range results {
			allocations = append(allocations, &domain.PaymentAllocation{
				ID:              s.genID.Generate(),
				PaymentID:       payment.ID,
				ChargeID:        result.ChargeID,
				AmountAllocated: result.Amount,
				CreatedAt:       now,
			})

			charge := charges[byID[result.ChargeID]]
			charge.UpdatedAt = now
			matched, err := s.repo.UpdateChargeAllocation(ctx, tx, charge, readBalances[charge.ID])
			if err != nil {
				return err
			}
			if matched == 0 {
				return domain.ErrConcurrentModification
			}
		}

		return s.repo.InsertAllocations(ctx, tx, allocations)
	})
	if err != nil {
		return domain.RegisterPaymentResponse{}, err
	}

	s.log.Info("payment registered",
		zap.String("payment_id", payment.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.Int("allocations", len(allocations)),
		zap.String("remainder", remainder.String()),
	)

	resp := domain.RegisterPaymentResponse{
		Payment:   payment,
		Remainder: remainder,
	}
	for _, allocation := range allocations {
		resp.Allocations = append(resp.Allocations, *allocation)
	}
	return resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPaymentRequest) (domain.ListPaymentResponse, error) {
	filter := domain.ListPaymentFilter{}
	if raw := strings.TrimSpace(req.TenantID); raw != "" {
		tenantID, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.ListPaymentResponse{}, domain.ErrInvalidID
		}
		filter.TenantID = tenantID
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.ListPayments(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListPaymentResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(payment *domain.Payment) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        payment.ID.String(),
			CreatedAt: payment.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	payments := make([]domain.Payment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		payments = append(payments, *item)
	}

	resp := domain.ListPaymentResponse{Payments: payments}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

// ListOutstandingCharges reports what the tenant still owes across all
// contracts, in the order a payment would settle it.
func (s *Service) ListOutstandingCharges(ctx context.Context, req domain.ListOutstandingChargesRequest) (domain.ListOutstandingChargesResponse, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
	if err != nil {
		return domain.ListOutstandingChargesResponse{}, domain.ErrInvalidID
	}

	charges, err := s.repo.ListOutstandingCharges(ctx, s.db, tenantID)
	if err != nil {
		return domain.ListOutstandingChargesResponse{}, err
	}

	resp := domain.ListOutstandingChargesResponse{}
	for _, charge := range charges {
		resp.Charges = append(resp.Charges, *charge)
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetPaymentRequest) (domain.GetPaymentResponse, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.GetPaymentResponse{}, domain.ErrInvalidID
	}

	payment, err := s.repo.FindPaymentByID(ctx, s.db, id)
	if err != nil {
		return domain.GetPaymentResponse{}, err
	}
	if payment == nil {
		return domain.GetPaymentResponse{}, domain.ErrNotFound
	}

	allocations, err := s.repo.ListAllocationsByPayment(ctx, s.db, id)
	if err != nil {
		return domain.GetPaymentResponse{}, err
	}

	resp := domain.GetPaymentResponse{Payment: *payment}
	for _, allocation := range allocations {
		resp.Allocations = append(resp.Allocations, *allocation)
	}
	return resp, nil
}
