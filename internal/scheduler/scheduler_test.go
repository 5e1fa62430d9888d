package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentflow/internal/clock"
	"github.com/smallbiznis/rentflow/internal/config"
	contractdomain "github.com/smallbiznis/rentflow/internal/contract/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := db.Exec(`CREATE TABLE monthly_charges (
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
	)`).Error; err != nil {
		t.Fatalf("create schema: %v", err)
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

func seedCharge(t *testing.T, db *gorm.DB, node *snowflake.Node, dueDate time.Time, balance string, status contractdomain.ChargeStatus) snowflake.ID {
	t.Helper()
	now := time.Now().UTC()
	amount := decimal.RequireFromString("100")
	charge := contractdomain.MonthlyCharge{
		ID:          node.Generate(),
		ContractID:  node.Generate(),
		Month:       int(dueDate.Month()),
		Year:        dueDate.Year(),
		DueDate:     dueDate,
		RentAmount:  amount,
		TotalAmount: amount,
		BalanceDue:  decimal.RequireFromString(balance),
		Status:      status,
		IsGenerated: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&charge).Error; err != nil {
		t.Fatalf("seed charge: %v", err)
	}
	return charge.ID
}

func chargeStatus(t *testing.T, db *gorm.DB, id snowflake.ID) string {
	t.Helper()
	var status string
	if err := db.Raw("SELECT status FROM monthly_charges WHERE id = ?", id).Scan(&status).Error; err != nil {
		t.Fatalf("read status: %v", err)
	}
	return status
}

func newTestScheduler(t *testing.T, db *gorm.DB, now time.Time, graceDays int) *Scheduler {
	t.Helper()
	sched, err := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(now),
		BillingCfg: config.NewStaticBillingConfigHolder(config.BillingConfig{
			OverdueGraceDays: graceDays,
			SweepInterval:    time.Hour,
			SweepBatchSize:   100,
		}),
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return sched
}

func TestRunOnceMarksPastDueChargesOverdue(t *testing.T) {
	db := setupTestDB(t)
	node := mustNode(t)
	now := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)

	pastDue := seedCharge(t, db, node, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), "100", contractdomain.ChargeStatusPending)
	partial := seedCharge(t, db, node, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), "40", contractdomain.ChargeStatusPartial)
	future := seedCharge(t, db, node, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), "100", contractdomain.ChargeStatusPending)
	settled := seedCharge(t, db, node, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), "0", contractdomain.ChargeStatusPaid)

	sched := newTestScheduler(t, db, now, 0)
	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if got := chargeStatus(t, db, pastDue); got != "overdue" {
		t.Fatalf("past due charge: expected overdue, got %s", got)
	}
	if got := chargeStatus(t, db, partial); got != "overdue" {
		t.Fatalf("partial charge: expected overdue, got %s", got)
	}
	if got := chargeStatus(t, db, future); got != "pending" {
		t.Fatalf("future charge: expected pending, got %s", got)
	}
	if got := chargeStatus(t, db, settled); got != "paid" {
		t.Fatalf("settled charge: expected paid, got %s", got)
	}
}

func TestRunOnceHonorsGracePeriod(t *testing.T) {
	db := setupTestDB(t)
	node := mustNode(t)
	now := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	// Due 3 days ago; a 5 day grace period keeps it pending.
	inGrace := seedCharge(t, db, node, time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC), "100", contractdomain.ChargeStatusPending)
	outOfGrace := seedCharge(t, db, node, time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC), "100", contractdomain.ChargeStatusPending)

	sched := newTestScheduler(t, db, now, 5)
	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if got := chargeStatus(t, db, inGrace); got != "pending" {
		t.Fatalf("charge within grace: expected pending, got %s", got)
	}
	if got := chargeStatus(t, db, outOfGrace); got != "overdue" {
		t.Fatalf("charge past grace: expected overdue, got %s", got)
	}
}

func TestRunOnceIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	node := mustNode(t)
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	id := seedCharge(t, db, node, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), "100", contractdomain.ChargeStatusPending)

	sched := newTestScheduler(t, db, now, 0)
	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if got := chargeStatus(t, db, id); got != "overdue" {
		t.Fatalf("expected overdue, got %s", got)
	}
}
