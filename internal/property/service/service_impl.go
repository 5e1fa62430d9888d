package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentflow/internal/property/domain"
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
		log:   p.Log.Named("property.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePropertyRequest) (domain.Property, error) {
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return domain.Property{}, domain.ErrInvalidAddress
	}

	now := time.Now().UTC()
	property := domain.Property{
		ID:          s.genID.Generate(),
		Address:     address,
		City:        strings.TrimSpace(req.City),
		Description: strings.TrimSpace(req.Description),
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &property); err != nil {
		return domain.Property{}, err
	}

	return property, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPropertyRequest) (domain.ListPropertyResponse, error) {
	filter := domain.ListPropertyFilter{
		City: strings.TrimSpace(req.City),
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
		return domain.ListPropertyResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(property *domain.Property) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        property.ID.String(),
			CreatedAt: property.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	properties := make([]domain.Property, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		properties = append(properties, *item)
	}

	resp := domain.ListPropertyResponse{Properties: properties}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetPropertyRequest) (domain.Property, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Property{}, domain.ErrInvalidID
	}

	property, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Property{}, err
	}
	if property == nil {
		return domain.Property{}, domain.ErrNotFound
	}

	return *property, nil
}
