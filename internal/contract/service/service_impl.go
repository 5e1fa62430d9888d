package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentflow/internal/contract/domain"
	propertydomain "github.com/smallbiznis/rentflow/internal/property/domain"
	tenantdomain "github.com/smallbiznis/rentflow/internal/tenant/domain"
	"github.com/smallbiznis/rentflow/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	TenantSvc   tenantdomain.Service
	PropertySvc propertydomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	tenantSvc   tenantdomain.Service
	propertySvc propertydomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("contract.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		tenantSvc:   p.TenantSvc,
		propertySvc: p.PropertySvc,
	}
}

// Create validates the contract, generates its full charge schedule and
// persists both in a single transaction.
func (s *Service) Create(ctx context.Context, req domain.CreateContractRequest) (domain.CreateContractResponse, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(req.TenantID))
	if err != nil {
		return domain.CreateContractResponse{}, domain.ErrInvalidID
	}
	propertyID, err := snowflake.ParseString(strings.TrimSpace(req.PropertyID))
	if err != nil {
		return domain.CreateContractResponse{}, domain.ErrInvalidID
	}

	if req.EndDate.Before(req.StartDate) {
		return domain.CreateContractResponse{}, domain.ErrInvalidContractRange
	}
	if req.BillingDay < 1 || req.BillingDay > 31 {
		return domain.CreateContractResponse{}, domain.ErrInvalidBillingDay
	}
	if !req.InitialAmount.IsPositive() {
		return domain.CreateContractResponse{}, domain.ErrInvalidAmount
	}

	if _, err := s.tenantSvc.GetByID(ctx, tenantdomain.GetTenantRequest{ID: tenantID.String()}); err != nil {
		if errors.Is(err, tenantdomain.ErrNotFound) {
			return domain.CreateContractResponse{}, domain.ErrTenantNotFound
		}
		return domain.CreateContractResponse{}, err
	}
	if _, err := s.propertySvc.GetByID(ctx, propertydomain.GetPropertyRequest{ID: propertyID.String()}); err != nil {
		if errors.Is(err, propertydomain.ErrNotFound) {
			return domain.CreateContractResponse{}, domain.ErrPropertyNotFound
		}
		return domain.CreateContractResponse{}, err
	}

	now := time.Now().UTC()
	contract := domain.Contract{
		ID:            s.genID.Generate(),
		TenantID:      tenantID,
		PropertyID:    propertyID,
		StartDate:     dateOnly(req.StartDate),
		EndDate:       dateOnly(req.EndDate),
		InitialAmount: req.InitialAmount,
		CurrentAmount: req.InitialAmount,
		BillingDay:    req.BillingDay,
		Status:        domain.ContractStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	schedule, err := domain.BuildSchedule(contract)
	if err != nil {
		return domain.CreateContractResponse{}, err
	}

	charges := make([]*domain.MonthlyCharge, 0, len(schedule))
	for i := range schedule {
		charge := schedule[i]
		charge.ID = s.genID.Generate()
		charge.ContractID = contract.ID
		charge.CreatedAt = now
		charge.UpdatedAt = now
		charges = append(charges, &charge)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &contract); err != nil {
			return err
		}
		return s.repo.InsertCharges(ctx, tx, charges)
	})
	if err != nil {
		return domain.CreateContractResponse{}, err
	}

	s.log.Info("contract created",
		zap.String("contract_id", contract.ID.String()),
		zap.String("tenant_id", contract.TenantID.String()),
		zap.Int("charges", len(charges)),
	)

	resp := domain.CreateContractResponse{Contract: contract}
	for _, charge := range charges {
		resp.Charges = append(resp.Charges, *charge)
	}
	return resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListContractRequest) (domain.ListContractResponse, error) {
	filter := domain.ListContractFilter{}
	if raw := strings.TrimSpace(req.TenantID); raw != "" {
		tenantID, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.ListContractResponse{}, domain.ErrInvalidID
		}
		filter.TenantID = tenantID
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = domain.ContractStatus(status)
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListContractResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(contract *domain.Contract) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        contract.ID.String(),
			CreatedAt: contract.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	contracts := make([]domain.Contract, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		contracts = append(contracts, *item)
	}

	resp := domain.ListContractResponse{Contracts: contracts}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetContractRequest) (domain.GetContractResponse, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.GetContractResponse{}, domain.ErrInvalidID
	}

	contract, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.GetContractResponse{}, err
	}
	if contract == nil {
		return domain.GetContractResponse{}, domain.ErrNotFound
	}

	charges, err := s.repo.ListCharges(ctx, s.db, id)
	if err != nil {
		return domain.GetContractResponse{}, err
	}

	resp := domain.GetContractResponse{Contract: *contract}
	for _, charge := range charges {
		resp.Charges = append(resp.Charges, *charge)
	}
	return resp, nil
}

func (s *Service) ListCharges(ctx context.Context, req domain.ListChargesRequest) (domain.ListChargesResponse, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ContractID))
	if err != nil {
		return domain.ListChargesResponse{}, domain.ErrInvalidID
	}

	charges, err := s.repo.ListCharges(ctx, s.db, id)
	if err != nil {
		return domain.ListChargesResponse{}, err
	}

	resp := domain.ListChargesResponse{}
	for _, charge := range charges {
		resp.Charges = append(resp.Charges, *charge)
	}
	return resp, nil
}

// dateOnly strips the time-of-day so dates compare on calendar days.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
