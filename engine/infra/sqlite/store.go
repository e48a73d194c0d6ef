package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/compozy/hybridqa/engine/core"
	"github.com/compozy/hybridqa/pkg/logger"
	// Register modernc SQLite driver with database/sql.
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// viewStatements alias tables whose names need quoting or differ in case.
var viewStatements = []string{
	`CREATE VIEW IF NOT EXISTS orders AS SELECT * FROM Orders;`,
	`CREATE VIEW IF NOT EXISTS order_items AS SELECT * FROM "Order Details";`,
	`CREATE VIEW IF NOT EXISTS products AS SELECT * FROM Products;`,
	`CREATE VIEW IF NOT EXISTS customers AS SELECT * FROM Customers;`,
}

// buildDSN returns a DSN whose pragmas modernc applies to every new connection.
func buildDSN(cfg *Config, readOnly bool) string {
	path := cfg.Path
	if path == memoryPath {
		path = "file::memory:?cache=shared"
	}
	params := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", cfg.busyTimeout().Milliseconds()),
	}
	if readOnly {
		params = append(params, "_pragma=query_only(1)")
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// Open prepares the dataset and returns a read-only pool. A missing file is
// an error rather than a silently created empty database.
func Open(ctx context.Context, cfg *Config) (*sql.DB, error) {
	if cfg == nil || strings.TrimSpace(cfg.Path) == "" {
		return nil, core.NewError(errors.New("dataset path is required"), core.ErrCodeDatasetOpen, nil)
	}
	if cfg.Path != memoryPath {
		if _, err := os.Stat(cfg.Path); err != nil {
			return nil, core.NewError(
				fmt.Errorf("sqlite: dataset %s: %w", cfg.Path, err),
				core.ErrCodeDatasetOpen,
				map[string]any{"path": cfg.Path},
			)
		}
	}
	if cfg.CreateViews {
		createViews(ctx, cfg)
	}
	db, err := sql.Open("sqlite", buildDSN(cfg, true))
	if err != nil {
		return nil, core.NewError(fmt.Errorf("sqlite: open database: %w", err), core.ErrCodeDatasetOpen, nil)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, core.NewError(fmt.Errorf("sqlite: ping database: %w", err), core.ErrCodeDatasetOpen, nil)
	}
	return db, nil
}

// createViews is best effort: failures are logged and the dataset stays usable.
// Names that already exist as tables are left alone.
func createViews(ctx context.Context, cfg *Config) {
	log := logger.FromContext(ctx)
	db, err := sql.Open("sqlite", buildDSN(cfg, false))
	if err != nil {
		log.Warn("Could not create views", "error", err)
		return
	}
	defer db.Close()
	for _, stmt := range viewStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Warn("Could not create view", "statement", stmt, "error", err)
		}
	}
}
