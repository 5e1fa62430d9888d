package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentflow/internal/tenant/domain"
	"github.com/smallbiznis/rentflow/pkg/db"
	"github.com/smallbiznis/rentflow/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tenant.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTenantRequest) (domain.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Tenant{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Tenant{}, domain.ErrInvalidEmail
	}

	now := time.Now().UTC()
	tenant := domain.Tenant{
		ID:        s.genID.Generate(),
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The link token carries a unique index; retry on the rare collision.
	for attempt := 0; attempt < 3; attempt++ {
		token, err := newLinkToken()
		if err != nil {
			return domain.Tenant{}, err
		}
		tenant.LinkToken = token

		err = s.repo.Insert(ctx, s.db, &tenant)
		if err == nil {
			return tenant, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return domain.Tenant{}, err
		}
	}
	return domain.Tenant{}, gorm.ErrDuplicatedKey
}

func (s *Service) List(ctx context.Context, req domain.ListTenantRequest) (domain.ListTenantResponse, error) {
	filter := domain.ListTenantFilter{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
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
		return domain.ListTenantResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(tenant *domain.Tenant) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        tenant.ID.String(),
			CreatedAt: tenant.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	tenants := make([]domain.Tenant, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		tenants = append(tenants, *item)
	}

	resp := domain.ListTenantResponse{Tenants: tenants}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetTenantRequest) (domain.Tenant, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Tenant{}, domain.ErrInvalidID
	}

	tenant, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Tenant{}, err
	}
	if tenant == nil {
		return domain.Tenant{}, domain.ErrNotFound
	}

	return *tenant, nil
}

// newLinkToken mints the tenant's public contact-link token.
func newLinkToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
