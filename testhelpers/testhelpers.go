package testhelpers

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/teamkeel/dataservice/schema"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Schema is a small store of customers, their orders and order lines, plus
// a vehicles table shared by several runtime types.
const Schema = `
resourceTypes:
  - name: Customer
    table: customers
    key: id
    properties:
      - name: Id
      - name: Name
      - name: VehicleId
    navigations:
      - name: Orders_Order
        target: Order
        foreignKey: customer_id
        many: true
      - name: Vehicle_Vehicle
        target: Vehicle
        foreignKey: vehicle_id
  - name: Order
    table: orders
    key: id
    properties:
      - name: Id
      - name: CustomerId
      - name: Status
      - name: Total
      - name: CreatedAt
    navigations:
      - name: Customer_Customer
        target: Customer
        foreignKey: customer_id
      - name: Lines
        target: OrderLine
        foreignKey: order_id
        many: true
  - name: OrderLine
    table: order_lines
    key: id
    properties:
      - name: Id
      - name: OrderId
      - name: Sku
  - name: Vehicle
    table: vehicles
    key: id
    discriminator: kind
    properties:
      - name: Id
      - name: Kind
      - name: Wheels
    navigations:
      - name: Drivers
        target: Customer
        foreignKey: vehicle_id
        many: true
resourceSets:
  - name: Customers
    type: Customer
  - name: Orders
    type: Order
  - name: OrderLines
    type: OrderLine
  - name: Vehicles
    type: Vehicle
`

var tables = []string{
	`CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT, vehicle_id INTEGER)`,
	`CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER, status TEXT, total REAL, created_at TEXT)`,
	`CREATE TABLE order_lines (id INTEGER PRIMARY KEY, order_id INTEGER, sku TEXT)`,
	`CREATE TABLE vehicles (id INTEGER PRIMARY KEY, kind TEXT, wheels INTEGER)`,
}

func NewSchema(t *testing.T) *schema.Schema {
	s, err := schema.Parse([]byte(Schema))
	require.NoError(t, err)
	return s
}

// NewDatabase opens a private in-memory database with the tables of Schema.
func NewDatabase(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every connection to :memory: is a new database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	Exec(t, db, tables...)
	return db
}

func Exec(t *testing.T, db *gorm.DB, statements ...string) {
	for _, s := range statements {
		require.NoError(t, db.Exec(s).Error, s)
	}
}

// CountQueries returns a counter incremented by every select run on db.
func CountQueries(t *testing.T, db *gorm.DB) *atomic.Int64 {
	var n atomic.Int64
	err := db.Callback().Query().Before("gorm:query").Register("testhelpers:count_queries", func(*gorm.DB) {
		n.Add(1)
	})
	require.NoError(t, err)
	return &n
}

// InsertOrders inserts n orders with ids 1..n using a recursive sequence.
// Every order belongs to customer 1 and has total equal to its id; orders
// whose id is a multiple of every are "flagged", the rest "open".
func InsertOrders(t *testing.T, db *gorm.DB, n int, every int) {
	err := db.Exec(`INSERT INTO orders (id, customer_id, status, total, created_at)
		WITH RECURSIVE seq(n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM seq WHERE n < ?)
		SELECT n, 1, CASE WHEN n % ? = 0 THEN 'flagged' ELSE 'open' END, n, '2020-01-01T00:00:00Z' FROM seq`, n, every).Error
	require.NoError(t, err)
}
