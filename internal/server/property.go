package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	propertydomain "github.com/smallbiznis/rentflow/internal/property/domain"
	"github.com/smallbiznis/rentflow/pkg/db/pagination"
)

type createPropertyRequest struct {
	Address     string `json:"address"`
	City        string `json:"city"`
	Description string `json:"description"`
}

func (s *Server) CreateProperty(c *gin.Context) {
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.propertySvc.Create(c.Request.Context(), propertydomain.CreatePropertyRequest{
		Address:     strings.TrimSpace(req.Address),
		City:        strings.TrimSpace(req.City),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProperties(c *gin.Context) {
	var query struct {
		pagination.Pagination
		City string `form:"city"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.propertySvc.List(c.Request.Context(), propertydomain.ListPropertyRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		City:      strings.TrimSpace(query.City),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPropertyByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.propertySvc.GetByID(c.Request.Context(), propertydomain.GetPropertyRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isPropertyValidationError(err error) bool {
	switch err {
	case propertydomain.ErrInvalidAddress,
		propertydomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
