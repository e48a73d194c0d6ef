package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	t.Run("Should pin read-only connections with pragmas", func(t *testing.T) {
		d := buildDSN(&Config{Path: "/tmp/northwind.sqlite"}, true)

		assert.Equal(t, "/tmp/northwind.sqlite?_pragma=busy_timeout(5000)&_pragma=query_only(1)", d)
	})

	t.Run("Should leave the write connection unrestricted", func(t *testing.T) {
		d := buildDSN(&Config{Path: ":memory:"}, false)

		assert.Equal(t, "file::memory:?cache=shared&_pragma=busy_timeout(5000)", d)
	})
}

func TestOpen(t *testing.T) {
	t.Run("Should create the order_items view over Order Details", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nw.sqlite")
		raw, err := sql.Open("sqlite", path)
		require.NoError(t, err)
		_, err = raw.Exec(`CREATE TABLE "Order Details" (OrderID INTEGER, Quantity INTEGER)`)
		require.NoError(t, err)
		_, err = raw.Exec(`INSERT INTO "Order Details" VALUES (1, 7)`)
		require.NoError(t, err)
		require.NoError(t, raw.Close())

		db, err := Open(t.Context(), &Config{Path: path, CreateViews: true})
		require.NoError(t, err)
		defer db.Close()

		var qty int
		require.NoError(t, db.QueryRowContext(t.Context(), "SELECT Quantity FROM order_items").Scan(&qty))
		assert.Equal(t, 7, qty)
		_, err = db.ExecContext(t.Context(), "INSERT INTO \"Order Details\" VALUES (2, 1)")
		assert.Error(t, err)
	})

	t.Run("Should require a path", func(t *testing.T) {
		_, err := Open(t.Context(), &Config{})
		assert.Error(t, err)
	})
}
