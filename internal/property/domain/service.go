package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/rentflow/pkg/db/pagination"
)

type CreatePropertyRequest struct {
	Address     string
	City        string
	Description string
}

type ListPropertyRequest struct {
	PageToken string
	PageSize  int32
	City      string
}

type ListPropertyResponse struct {
	pagination.PageInfo
	Properties []Property `json:"properties"`
}

type GetPropertyRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreatePropertyRequest) (Property, error)
	List(context.Context, ListPropertyRequest) (ListPropertyResponse, error)
	GetByID(context.Context, GetPropertyRequest) (Property, error)
}

var (
	ErrInvalidAddress = errors.New("invalid_address")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
)
