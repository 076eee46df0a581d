package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/outpost-commerce/backend/internal/domain/order"
	"github.com/outpost-commerce/backend/internal/domain/shared"
	"github.com/outpost-commerce/backend/internal/domain/shared/valueobject"
)

// OrderModelSQLite is a SQLite-compatible version of the orders table for testing
type OrderModelSQLite struct {
	ID              string `gorm:"primaryKey"`
	OrderNumber     string `gorm:"not null;uniqueIndex"`
	UserID          string `gorm:"not null;index"`
	ShippingAddress string
	PaymentMethod   string `gorm:"not null"`
	ItemsPrice      string `gorm:"not null"`
	ShippingPrice   string `gorm:"not null"`
	TaxPrice        string `gorm:"not null"`
	TotalPrice      string `gorm:"not null"`
	IsPaid          bool   `gorm:"not null;default:false"`
	PaidAt          *time.Time
	IsDelivered     bool `gorm:"not null;default:false"`
	DeliveredAt     *time.Time
	IdempotencyKey  string `gorm:"index"`
	Version         int    `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (OrderModelSQLite) TableName() string {
	return "orders"
}

// OrderItemModelSQLite is a SQLite-compatible version of the order_items table
type OrderItemModelSQLite struct {
	ID         string `gorm:"primaryKey"`
	OrderID    string `gorm:"not null;index"`
	ProductRef string `gorm:"not null"`
	Name       string `gorm:"not null"`
	UnitPrice  string `gorm:"not null"`
	ImageRef   string
	Qty        int `gorm:"not null"`
	CreatedAt  time.Time
}

func (OrderItemModelSQLite) TableName() string {
	return "order_items"
}

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&OrderModelSQLite{}, &OrderItemModelSQLite{})
	require.NoError(t, err)

	return db
}

var orderNumberSeq atomic.Int64

func testOrder(t *testing.T, userID uuid.UUID) *order.Order {
	t.Helper()
	item, err := order.NewOrderItem(uuid.Nil, "prod-1", "Oak Table", valueobject.NewMoneyGBPFromFloat(100), "/images/table.jpg", 2)
	require.NoError(t, err)

	addr, err := valueobject.NewAddressFull("1 High Street", "London", "SW1A 1AA", "UK")
	require.NoError(t, err)

	o, err := order.NewOrder(fmt.Sprintf("ORD-2026-%05d", orderNumberSeq.Add(1)), userID, []order.OrderItem{*item}, addr, order.PaymentMethodCOD)
	require.NoError(t, err)
	return o
}

func TestGormOrderRepository_SaveAndFind(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	o := testOrder(t, userID)
	require.NoError(t, repo.Save(ctx, o))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, found.OrderNumber)
	assert.Equal(t, userID, found.UserID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "prod-1", found.Items[0].ProductRef)
	assert.Equal(t, 2, found.Items[0].Qty)
	assert.False(t, found.IsPaid)
	assert.Equal(t, "London", found.ShippingAddress.City())
}

func TestGormOrderRepository_FindByID_NotFound(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_FindByUserID(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	other := uuid.New()

	require.NoError(t, repo.Save(ctx, testOrder(t, owner)))
	require.NoError(t, repo.Save(ctx, testOrder(t, owner)))
	require.NoError(t, repo.Save(ctx, testOrder(t, other)))

	orders, err := repo.FindByUserID(ctx, owner, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, owner, o.UserID)
	}
}

func TestGormOrderRepository_SaveReplacesItems(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := testOrder(t, uuid.New())
	require.NoError(t, repo.Save(ctx, o))

	item, err := order.NewOrderItem(o.ID, "prod-2", "Walnut Chair", valueobject.NewMoneyGBPFromFloat(45), "", 1)
	require.NoError(t, err)
	o.Items = []order.OrderItem{*item}
	require.NoError(t, repo.Save(ctx, o))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "prod-2", found.Items[0].ProductRef)
}

func TestGormOrderRepository_SaveDuplicateOrderNumber(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	first := testOrder(t, uuid.New())
	require.NoError(t, repo.Save(ctx, first))

	second := testOrder(t, uuid.New())
	second.OrderNumber = first.OrderNumber

	err := repo.Save(ctx, second)
	assert.ErrorIs(t, err, order.ErrDuplicateOrderNumber)
}

func TestIsDuplicateOrderNumber(t *testing.T) {
	assert.True(t, isDuplicateOrderNumber(errors.New(`duplicate key value violates unique constraint "idx_orders_order_number"`)))
	assert.True(t, isDuplicateOrderNumber(errors.New("UNIQUE constraint failed: orders.order_number")))
	assert.False(t, isDuplicateOrderNumber(errors.New("UNIQUE constraint failed: users.email")))
	assert.False(t, isDuplicateOrderNumber(nil))
}

// ============================================================================
// Order number generation (sqlmock)
// ============================================================================

func newMockOrderRepository(t *testing.T) (*GormOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewGormOrderRepository(gormDB), mock, mockDB
}

func TestGormOrderRepository_GenerateOrderNumber(t *testing.T) {
	year := time.Now().Year()

	t.Run("first order of the year", func(t *testing.T) {
		repo, mock, db := newMockOrderRepository(t)
		defer db.Close()

		mock.ExpectQuery(`SELECT \* FROM "orders"`).
			WillReturnError(gorm.ErrRecordNotFound)

		num, err := repo.GenerateOrderNumber(context.Background())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-%d-00001", year), num)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increments the highest existing number", func(t *testing.T) {
		repo, mock, db := newMockOrderRepository(t)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"id", "order_number"}).
			AddRow(uuid.New().String(), fmt.Sprintf("ORD-%d-00041", year))
		mock.ExpectQuery(`SELECT \* FROM "orders"`).WillReturnRows(rows)

		num, err := repo.GenerateOrderNumber(context.Background())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("ORD-%d-00042", year), num)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
