package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentflow/internal/contract/domain"
	"github.com/smallbiznis/rentflow/internal/contract/repository"
	propertydomain "github.com/smallbiznis/rentflow/internal/property/domain"
	tenantdomain "github.com/smallbiznis/rentflow/internal/tenant/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type tenantStub struct {
	known map[snowflake.ID]bool
}

func (s *tenantStub) Create(context.Context, tenantdomain.CreateTenantRequest) (tenantdomain.Tenant, error) {
	return tenantdomain.Tenant{}, nil
}

func (s *tenantStub) List(context.Context, tenantdomain.ListTenantRequest) (tenantdomain.ListTenantResponse, error) {
	return tenantdomain.ListTenantResponse{}, nil
}

func (s *tenantStub) GetByID(ctx context.Context, req tenantdomain.GetTenantRequest) (tenantdomain.Tenant, error) {
	id, err := snowflake.ParseString(req.ID)
	if err != nil || !s.known[id] {
		return tenantdomain.Tenant{}, tenantdomain.ErrNotFound
	}
	return tenantdomain.Tenant{ID: id}, nil
}

type propertyStub struct {
	known map[snowflake.ID]bool
}

func (s *propertyStub) Create(context.Context, propertydomain.CreatePropertyRequest) (propertydomain.Property, error) {
	return propertydomain.Property{}, nil
}

func (s *propertyStub) List(context.Context, propertydomain.ListPropertyRequest) (propertydomain.ListPropertyResponse, error) {
	return propertydomain.ListPropertyResponse{}, nil
}

func (s *propertyStub) GetByID(ctx context.Context, req propertydomain.GetPropertyRequest) (propertydomain.Property, error) {
	id, err := snowflake.ParseString(req.ID)
	if err != nil || !s.known[id] {
		return propertydomain.Property{}, propertydomain.ErrNotFound
	}
	return propertydomain.Property{ID: id}, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE contracts (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			property_id BIGINT NOT NULL,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			initial_amount DECIMAL(20,4) NOT NULL,
			current_amount DECIMAL(20,4) NOT NULL,
			billing_day INTEGER NOT NULL DEFAULT 1,
			status TEXT NOT NULL DEFAULT 'active',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE monthly_charges (
			id BIGINT PRIMARY KEY,
			contract_id BIGINT NOT NULL,
			month INTEGER NOT NULL,
			year INTEGER NOT NULL,
			due_date DATETIME NOT NULL,
			rent_amount DECIMAL(20,4) NOT NULL,
			expenses_amount DECIMAL(20,4) NOT NULL DEFAULT 0,
			water_amount DECIMAL(20,4) NOT NULL DEFAULT 0,
			other_amount DECIMAL(20,4) NOT NULL DEFAULT 0,
			surcharge_amount DECIMAL(20,4) NOT NULL DEFAULT 0,
			discount_amount DECIMAL(20,4) NOT NULL DEFAULT 0,
			total_amount DECIMAL(20,4) NOT NULL,
			balance_due DECIMAL(20,4) NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			is_generated BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_monthly_charges_contract_period ON monthly_charges(contract_id, year, month)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	return db
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}

func newTestService(t *testing.T, db *gorm.DB, tenantID, propertyID snowflake.ID) domain.Service {
	t.Helper()
	return New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       mustNode(t),
		Repo:        repository.Provide(),
		TenantSvc:   &tenantStub{known: map[snowflake.ID]bool{tenantID: true}},
		PropertySvc: &propertyStub{known: map[snowflake.ID]bool{propertyID: true}},
	})
}

func TestCreateContractGeneratesAndPersistsSchedule(t *testing.T) {
	db := setupTestDB(t)
	node := mustNode(t)
	tenantID := node.Generate()
	propertyID := node.Generate()
	svc := newTestService(t, db, tenantID, propertyID)

	resp, err := svc.Create(context.Background(), domain.CreateContractRequest{
		TenantID:      tenantID.String(),
		PropertyID:    propertyID.String(),
		StartDate:     time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		InitialAmount: decimal.RequireFromString("1000"),
		BillingDay:    31,
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}

	if len(resp.Charges) != 12 {
		t.Fatalf("expected 12 charges, got %d", len(resp.Charges))
	}
	if resp.Contract.Status != domain.ContractStatusActive {
		t.Fatalf("expected active contract, got %s", resp.Contract.Status)
	}

	// Day 31 clamps to Feb 29 in a leap year and to 30-day months.
	if feb := resp.Charges[1]; feb.DueDate.Day() != 29 {
		t.Fatalf("expected February due day 29, got %d", feb.DueDate.Day())
	}
	if apr := resp.Charges[3]; apr.DueDate.Day() != 30 {
		t.Fatalf("expected April due day 30, got %d", apr.DueDate.Day())
	}

	var count int
	if err := db.Raw("SELECT COUNT(1) FROM monthly_charges WHERE contract_id = ?", resp.Contract.ID).Scan(&count).Error; err != nil {
		t.Fatalf("count charges: %v", err)
	}
	if count != 12 {
		t.Fatalf("expected 12 persisted charges, got %d", count)
	}

	listed, err := svc.ListCharges(context.Background(), domain.ListChargesRequest{ContractID: resp.Contract.ID.String()})
	if err != nil {
		t.Fatalf("list charges: %v", err)
	}
	for i := 1; i < len(listed.Charges); i++ {
		if listed.Charges[i].DueDate.Before(listed.Charges[i-1].DueDate) {
			t.Fatalf("charges not ordered by due date at index %d", i)
		}
	}
}

func TestCreateContractValidation(t *testing.T) {
	db := setupTestDB(t)
	node := mustNode(t)
	tenantID := node.Generate()
	propertyID := node.Generate()
	svc := newTestService(t, db, tenantID, propertyID)

	base := domain.CreateContractRequest{
		TenantID:      tenantID.String(),
		PropertyID:    propertyID.String(),
		StartDate:     time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
		InitialAmount: decimal.RequireFromString("800"),
		BillingDay:    1,
	}

	inverted := base
	inverted.StartDate, inverted.EndDate = inverted.EndDate, inverted.StartDate
	if _, err := svc.Create(context.Background(), inverted); err != domain.ErrInvalidContractRange {
		t.Fatalf("expected ErrInvalidContractRange, got %v", err)
	}

	badDay := base
	badDay.BillingDay = 32
	if _, err := svc.Create(context.Background(), badDay); err != domain.ErrInvalidBillingDay {
		t.Fatalf("expected ErrInvalidBillingDay, got %v", err)
	}

	badAmount := base
	badAmount.InitialAmount = decimal.Zero
	if _, err := svc.Create(context.Background(), badAmount); err != domain.ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	unknownTenant := base
	unknownTenant.TenantID = node.Generate().String()
	if _, err := svc.Create(context.Background(), unknownTenant); err != domain.ErrTenantNotFound {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}

	unknownProperty := base
	unknownProperty.PropertyID = node.Generate().String()
	if _, err := svc.Create(context.Background(), unknownProperty); err != domain.ErrPropertyNotFound {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}

	// Nothing should have been persisted by the rejected requests.
	var count int
	if err := db.Raw("SELECT COUNT(1) FROM contracts").Scan(&count).Error; err != nil {
		t.Fatalf("count contracts: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no contracts, got %d", count)
	}
}

func TestGetContractByIDIncludesCharges(t *testing.T) {
	db := setupTestDB(t)
	node := mustNode(t)
	tenantID := node.Generate()
	propertyID := node.Generate()
	svc := newTestService(t, db, tenantID, propertyID)

	created, err := svc.Create(context.Background(), domain.CreateContractRequest{
		TenantID:      tenantID.String(),
		PropertyID:    propertyID.String(),
		StartDate:     time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC),
		InitialAmount: decimal.RequireFromString("650"),
		BillingDay:    10,
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}

	got, err := svc.GetByID(context.Background(), domain.GetContractRequest{ID: created.Contract.ID.String()})
	if err != nil {
		t.Fatalf("get contract: %v", err)
	}
	if got.Contract.ID != created.Contract.ID {
		t.Fatalf("expected contract %s, got %s", created.Contract.ID, got.Contract.ID)
	}
	if len(got.Charges) != 3 {
		t.Fatalf("expected 3 charges, got %d", len(got.Charges))
	}

	if _, err := svc.GetByID(context.Background(), domain.GetContractRequest{ID: node.Generate().String()}); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
