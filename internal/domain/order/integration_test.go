//go:build integration

// internal/domain/order/integration_test.go
//
// Transactional order lifecycle tests against real Postgres via testcontainers.
// Run with: go test -tags integration ./internal/domain/order/... -v
package order_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gooddrive/autoparts-backend/internal/config"
	"github.com/gooddrive/autoparts-backend/internal/domain/catalog"
	"github.com/gooddrive/autoparts-backend/internal/domain/order"
	"github.com/gooddrive/autoparts-backend/internal/infrastructure/database/postgres"
	"github.com/gooddrive/autoparts-backend/internal/interfaces/http/handlers"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("gooddrive_test"),
		tcPostgres.WithUsername("gooddrive"),
		tcPostgres.WithPassword("gooddrive"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, postgres.Migrate(db, silentLogger()))
	return db
}

func silentLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(db *gorm.DB) *order.Service {
	return order.NewService(db, &config.Config{}, silentLogger())
}

func seedPart(t *testing.T, db *gorm.DB, title string, stock int, price string) *catalog.Part {
	t.Helper()

	brand := catalog.Brand{Name: "Bosch"}
	require.NoError(t, db.FirstOrCreate(&brand, catalog.Brand{Name: brand.Name}).Error)
	warehouse := catalog.Warehouse{Name: "Main"}
	require.NoError(t, db.FirstOrCreate(&warehouse, catalog.Warehouse{Name: warehouse.Name}).Error)

	part := catalog.Part{
		IsActive:    true,
		Title:       title,
		BrandID:     brand.ID,
		WarehouseID: warehouse.ID,
		Quantity:    stock,
		Stock:       stock,
		PriceOpt:    decimal.RequireFromString(price),
	}
	require.NoError(t, db.Create(&part).Error)
	return &part
}

func reloadPart(t *testing.T, db *gorm.DB, id uint) *catalog.Part {
	t.Helper()
	var part catalog.Part
	require.NoError(t, db.First(&part, id).Error)
	return &part
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func orderRequest(items ...order.OrderItemRequest) *order.CreateOrderRequest {
	return &order.CreateOrderRequest{
		CustomerName:  "Ivan Petrov",
		CustomerPhone: "+79001234567",
		Items:         items,
	}
}

// A shortfall on any line must roll the whole order back: no order, no items,
// no history, and no reservation left on the lines that did fit.
func TestCreateOrderShortfallLeavesNoRows(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	plenty := seedPart(t, db, "Oil filter", 10, "450.00")
	scarce := seedPart(t, db, "Brake disc", 1, "3200.00")

	_, err := svc.CreateOrder(orderRequest(
		order.OrderItemRequest{PartID: plenty.ID, Quantity: 2},
		order.OrderItemRequest{PartID: scarce.ID, Quantity: 5},
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrInsufficientStock)

	assert.EqualValues(t, 0, countRows(t, db, &order.Order{}))
	assert.EqualValues(t, 0, countRows(t, db, &order.OrderItem{}))
	assert.EqualValues(t, 0, countRows(t, db, &order.OrderStatusHistory{}))

	first := reloadPart(t, db, plenty.ID)
	assert.Equal(t, 0, first.Reserve, "reservation on the first line must be rolled back")
	assert.Equal(t, 10, first.Available)
}

func TestCreateOrderReservesStockAndRecordsHistory(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	part := seedPart(t, db, "Spark plug", 10, "250.00")

	created, err := svc.CreateOrder(orderRequest(
		order.OrderItemRequest{PartID: part.ID, Quantity: 3},
	))
	require.NoError(t, err)

	assert.Equal(t, order.StatusPending, created.Status)
	assert.True(t, created.TotalAmount.Equal(decimal.RequireFromString("750.00")), "got %s", created.TotalAmount)
	require.Len(t, created.StatusHistory, 1)
	assert.Equal(t, order.StatusPending, created.StatusHistory[0].Status)

	reserved := reloadPart(t, db, part.ID)
	assert.Equal(t, 3, reserved.Reserve)
	assert.Equal(t, 7, reserved.Available)
	assert.Equal(t, 10, reserved.Stock, "stock only moves on delivery")
}

// History is append-only: one row from creation plus one per status change.
func TestUpdateStatusAppendsHistory(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	part := seedPart(t, db, "Timing belt", 5, "1800.00")
	created, err := svc.CreateOrder(orderRequest(
		order.OrderItemRequest{PartID: part.ID, Quantity: 1},
	))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(created.ID, &order.UpdateStatusRequest{Status: order.StatusProcessing}, nil)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(created.ID, &order.UpdateStatusRequest{Status: order.StatusShipped}, nil)
	require.NoError(t, err)

	history, err := svc.GetStatusHistory(created.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, order.StatusPending, history[0].Status)
	assert.Equal(t, order.StatusProcessing, history[1].Status)
	assert.Equal(t, order.StatusShipped, history[2].Status)
}

func TestDeliveredConsumesReservation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	part := seedPart(t, db, "Radiator", 6, "5400.00")
	created, err := svc.CreateOrder(orderRequest(
		order.OrderItemRequest{PartID: part.ID, Quantity: 2},
	))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(created.ID, &order.UpdateStatusRequest{Status: order.StatusDelivered}, nil)
	require.NoError(t, err)

	delivered := reloadPart(t, db, part.ID)
	assert.Equal(t, 4, delivered.Stock)
	assert.Equal(t, 0, delivered.Reserve)
	assert.Equal(t, 4, delivered.Available)
}

func TestCancelledReleasesReservation(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	part := seedPart(t, db, "Shock absorber", 8, "2900.00")
	created, err := svc.CreateOrder(orderRequest(
		order.OrderItemRequest{PartID: part.ID, Quantity: 3},
	))
	require.NoError(t, err)

	_, err = svc.CancelOrder(created.ID, "customer changed mind", nil)
	require.NoError(t, err)

	released := reloadPart(t, db, part.ID)
	assert.Equal(t, 0, released.Reserve)
	assert.Equal(t, 8, released.Stock)
	assert.Equal(t, 8, released.Available)
}

// Validation failures answer 400; an unreachable database answers 500.
func TestCreateOrderHandlerStatusCodes(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/orders", handlers.NewOrderHandler(svc, silentLogger()).CreateOrder)

	part := seedPart(t, db, "Air filter", 2, "300.00")

	post := func(req *order.CreateOrderRequest) *httptest.ResponseRecorder {
		body, err := json.Marshal(req)
		require.NoError(t, err)
		w := httptest.NewRecorder()
		r, err := http.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
		require.NoError(t, err)
		r.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, r)
		return w
	}

	w := post(orderRequest(order.OrderItemRequest{PartID: 99999, Quantity: 1}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(orderRequest(order.OrderItemRequest{PartID: part.ID, Quantity: 50}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = post(orderRequest(order.OrderItemRequest{PartID: part.ID, Quantity: 1}))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
