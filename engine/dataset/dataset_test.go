package dataset

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/compozy/hybridqa/engine/core"
	"github.com/compozy/hybridqa/engine/dataset/datasettest"
	"github.com/compozy/hybridqa/engine/infra/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openNorthwind(t *testing.T) *Dataset {
	t.Helper()
	ds, err := Open(t.Context(), &sqlite.Config{Path: datasettest.NewNorthwind(t), CreateViews: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

func TestDataset_Execute(t *testing.T) {
	ds := openNorthwind(t)

	t.Run("Should return rows in column order through the views", func(t *testing.T) {
		out := ds.Execute(t.Context(), `
			SELECT p.ProductName, ROUND(SUM(oi.UnitPrice * oi.Quantity * (1 - oi.Discount)), 2) AS TotalRevenue
			FROM order_items oi JOIN products p ON p.ProductID = oi.ProductID
			GROUP BY p.ProductName ORDER BY TotalRevenue DESC LIMIT 2`)

		require.Equal(t, OutcomeRows, out.Kind)
		require.Len(t, out.Rows, 2)
		assert.Equal(t, []string{"ProductName", "TotalRevenue"}, out.Rows[0].Columns())
		assert.Equal(t, "Cote de Blaye", out.Rows[0].First())
		revenue, ok := out.Rows[0].Get("TotalRevenue")
		require.True(t, ok)
		assert.InDelta(t, 527.0, revenue, 1e-9)
		assert.True(t, out.Succeeded())
	})

	t.Run("Should report an empty result as no rows", func(t *testing.T) {
		out := ds.Execute(t.Context(), "SELECT OrderID FROM orders WHERE Freight > 1000")

		assert.Equal(t, OutcomeNoRows, out.Kind)
		assert.True(t, out.Succeeded())
		assert.Equal(t, NoRowsMessage, out.Describe())
	})

	t.Run("Should reject mutating statements in any case without running them", func(t *testing.T) {
		out := ds.Execute(t.Context(), "select 1; drop TABLE Orders")

		assert.True(t, out.Failed())
		assert.Equal(t, ErrorUnsafe, out.ErrorKind)
		assert.Equal(t, UnsafeQueryMessage, out.Message)
		assert.Equal(t, OutcomeRows, ds.Execute(t.Context(), "SELECT COUNT(*) FROM Orders").Kind)
	})

	t.Run("Should classify driver failures", func(t *testing.T) {
		out := ds.Execute(t.Context(), "SELECT nope FROM orders")

		assert.Equal(t, ErrorExecution, out.ErrorKind)
		assert.True(t, strings.HasPrefix(out.Message, "SQL Error: "))
		assert.Equal(t, out.Message, out.Describe())
	})

	t.Run("Should refuse writes that pass the keyword gate", func(t *testing.T) {
		out := ds.Execute(t.Context(), "CREATE TABLE scratch (a INTEGER)")

		assert.Equal(t, ErrorExecution, out.ErrorKind)
	})
}

func TestDataset_DescribeSchema(t *testing.T) {
	t.Run("Should list columns for every vocabulary table", func(t *testing.T) {
		schema := openNorthwind(t).DescribeSchema(t.Context())

		assert.True(t, strings.HasPrefix(schema, "Table: orders\nColumns: OrderID, CustomerID, OrderDate, Freight\n--------------------"))
		assert.Contains(t, schema, "Table: order_items\nColumns: OrderID, ProductID, UnitPrice, Quantity, Discount")
		assert.Contains(t, schema, "Table: categories\nColumns: CategoryID, CategoryName")
		assert.Equal(t, 5, strings.Count(schema, "--------------------"))
	})
}

func TestOpen(t *testing.T) {
	t.Run("Should fail for a missing file", func(t *testing.T) {
		_, err := Open(t.Context(), &sqlite.Config{Path: filepath.Join(t.TempDir(), "absent.sqlite")})

		assert.Equal(t, core.ErrCodeDatasetOpen, core.ErrorCode(err))
	})
}

func TestRow(t *testing.T) {
	t.Run("Should marshal preserving column order", func(t *testing.T) {
		row := NewRow([]string{"b", "a"}, []any{1, "x"})

		b, err := json.Marshal(row)

		require.NoError(t, err)
		assert.Equal(t, `{"b":1,"a":"x"}`, string(b))
	})

	t.Run("Should render rows for prompts", func(t *testing.T) {
		out := RowsOutcome([]Row{NewRow([]string{"CategoryName"}, []any{"Beverages"})})

		assert.Equal(t, `[{"CategoryName":"Beverages"}]`, out.Describe())
		assert.Equal(t, "No data", Outcome{}.Describe())
	})

	t.Run("Should treat an empty row set as no rows", func(t *testing.T) {
		assert.Equal(t, OutcomeNoRows, RowsOutcome(nil).Kind)
	})
}
