package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	contractdomain "github.com/smallbiznis/rentflow/internal/contract/domain"
	"github.com/smallbiznis/rentflow/pkg/db/pagination"
)

type createContractRequest struct {
	TenantID      string `json:"tenant_id"`
	PropertyID    string `json:"property_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	InitialAmount string `json:"initial_amount"`
	BillingDay    int    `json:"billing_day"`
}

func (s *Server) CreateContract(c *gin.Context) {
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date, expected YYYY-MM-DD"))
		return
	}

	endDate, err := parseDate(req.EndDate)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date, expected YYYY-MM-DD"))
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.InitialAmount))
	if err != nil {
		AbortWithError(c, contractdomain.ErrInvalidAmount)
		return
	}

	resp, err := s.contractSvc.Create(c.Request.Context(), contractdomain.CreateContractRequest{
		TenantID:      strings.TrimSpace(req.TenantID),
		PropertyID:    strings.TrimSpace(req.PropertyID),
		StartDate:     startDate,
		EndDate:       endDate,
		InitialAmount: amount,
		BillingDay:    req.BillingDay,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListContracts(c *gin.Context) {
	var query struct {
		pagination.Pagination
		TenantID string `form:"tenant_id"`
		Status   string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.contractSvc.List(c.Request.Context(), contractdomain.ListContractRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
		TenantID:  strings.TrimSpace(query.TenantID),
		Status:    strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetContractByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.contractSvc.GetByID(c.Request.Context(), contractdomain.GetContractRequest{
		ID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListContractCharges(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.contractSvc.ListCharges(c.Request.Context(), contractdomain.ListChargesRequest{
		ContractID: id,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(value))
}

func isContractValidationError(err error) bool {
	switch err {
	case contractdomain.ErrInvalidContractRange,
		contractdomain.ErrInvalidBillingDay,
		contractdomain.ErrInvalidAmount,
		contractdomain.ErrInvalidID,
		contractdomain.ErrTenantNotFound,
		contractdomain.ErrPropertyNotFound:
		return true
	default:
		return false
	}
}
