// Package datasettest builds small Northwind-shaped SQLite files for tests.
package datasettest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	// Register modernc SQLite driver with database/sql.
	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE Categories (CategoryID INTEGER PRIMARY KEY, CategoryName TEXT NOT NULL)`,
	`CREATE TABLE Products (ProductID INTEGER PRIMARY KEY, ProductName TEXT NOT NULL, CategoryID INTEGER, UnitPrice REAL)`,
	`CREATE TABLE Customers (CustomerID TEXT PRIMARY KEY, CompanyName TEXT NOT NULL, Country TEXT)`,
	`CREATE TABLE Orders (OrderID INTEGER PRIMARY KEY, CustomerID TEXT, OrderDate TEXT, Freight REAL)`,
	`CREATE TABLE "Order Details" (OrderID INTEGER, ProductID INTEGER, UnitPrice REAL, Quantity INTEGER, Discount REAL)`,
}

var seed = []string{
	`INSERT INTO Categories VALUES (1, 'Beverages'), (2, 'Condiments'), (3, 'Confections')`,
	`INSERT INTO Products VALUES
		(1, 'Chai', 1, 18.0),
		(2, 'Chang', 1, 19.0),
		(3, 'Aniseed Syrup', 2, 10.0),
		(4, 'Pavlova', 3, 17.45),
		(5, 'Cote de Blaye', 1, 263.5)`,
	`INSERT INTO Customers VALUES
		('ALFKI', 'Alfreds Futterkiste', 'Germany'),
		('BONAP', 'Bon app''', 'France'),
		('QUICK', 'QUICK-Stop', 'Germany')`,
	`INSERT INTO Orders VALUES
		(10248, 'ALFKI', '2017-06-04', 32.38),
		(10249, 'BONAP', '2017-07-05', 11.61),
		(10250, 'QUICK', '2017-12-08', 65.83),
		(10251, 'ALFKI', '2016-03-01', 41.34)`,
	`INSERT INTO "Order Details" VALUES
		(10248, 1, 18.0, 12, 0),
		(10248, 2, 19.0, 10, 0),
		(10249, 3, 10.0, 5, 0.1),
		(10250, 5, 263.5, 2, 0),
		(10250, 4, 17.45, 20, 0.05),
		(10251, 1, 18.0, 3, 0)`,
}

// NewNorthwind writes a seeded database to a temp dir and returns its path.
func NewNorthwind(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "northwind.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	for _, stmt := range append(append([]string{}, schema...), seed...) {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return path
}
