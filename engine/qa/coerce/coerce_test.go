package coerce

import (
	"math"
	"testing"

	"github.com/compozy/hybridqa/engine/dataset"
	"github.com/stretchr/testify/assert"
)

func rowsOf(columns []string, values ...[]any) dataset.Outcome {
	rows := make([]dataset.Row, 0, len(values))
	for _, v := range values {
		rows = append(rows, dataset.NewRow(columns, v))
	}
	return dataset.RowsOutcome(rows)
}

func TestParseHint(t *testing.T) {
	t.Run("Should classify scalar hints exactly", func(t *testing.T) {
		assert.Equal(t, ShapeInt, ParseHint(" INT ").Shape)
		assert.Equal(t, ShapeFloat, ParseHint("float").Shape)
		assert.Equal(t, ShapeDefault, ParseHint("integer please").Shape)
		assert.Equal(t, ShapeDefault, ParseHint("").Shape)
	})

	t.Run("Should parse object fields in order", func(t *testing.T) {
		h := ParseHint("{category:str, quantity:int}")

		assert.Equal(t, ShapeObject, h.Shape)
		assert.Equal(t, []Field{{Name: "category", Type: "str"}, {Name: "quantity", Type: "int"}}, h.Fields)
	})

	t.Run("Should check list before object", func(t *testing.T) {
		h := ParseHint("list[{product:str, revenue:float}]")

		assert.Equal(t, ShapeList, h.Shape)
		assert.True(t, h.HasObjectElements())
		assert.Len(t, h.Fields, 2)
	})

	t.Run("Should default list elements to str", func(t *testing.T) {
		assert.Equal(t, "str", ParseHint("list").Element)
		assert.Equal(t, "str", ParseHint("list[str]").Element)
		assert.Equal(t, "int", ParseHint("list[int]").Element)
	})
}

func TestCoerce_Int(t *testing.T) {
	t.Run("Should take the first digit run of the answer", func(t *testing.T) {
		assert.Equal(t, 14, Coerce("There were 14 orders (out of 830).", "int", dataset.Outcome{}))
	})

	t.Run("Should fall back to the first value of the first row", func(t *testing.T) {
		out := rowsOf([]string{"cnt"}, []any{int64(42)}, []any{int64(7)})

		assert.Equal(t, 42, Coerce("unknown", "int", out))
	})

	t.Run("Should truncate fractional fallbacks", func(t *testing.T) {
		out := rowsOf([]string{"avg"}, []any{"12.9"})

		assert.Equal(t, 12, Coerce("", "int", out))
	})

	t.Run("Should saturate values beyond the int range", func(t *testing.T) {
		big := rowsOf([]string{"n"}, []any{"99999999999999999999999"})
		small := rowsOf([]string{"n"}, []any{"-99999999999999999999999"})

		assert.Equal(t, math.MaxInt, Coerce("", "int", big))
		assert.Equal(t, math.MinInt, Coerce("", "int", small))
	})

	t.Run("Should return zero for infinite and NaN rows", func(t *testing.T) {
		for _, v := range []any{math.Inf(1), math.Inf(-1), math.NaN(), float32(math.Inf(1))} {
			out := rowsOf([]string{"n"}, []any{v})

			assert.NotPanics(t, func() {
				assert.Equal(t, 0, Coerce("", "int", out))
			})
		}
	})

	t.Run("Should return zero without rows", func(t *testing.T) {
		assert.Equal(t, 0, Coerce("none", "int", dataset.NoRowsOutcome()))
		assert.Equal(t, 0, Coerce("none", "int", dataset.ErrorOutcome(dataset.ErrorExecution, "SQL Error: x")))
	})
}

func TestCoerce_Float(t *testing.T) {
	t.Run("Should round the extracted numeral to two decimals", func(t *testing.T) {
		assert.Equal(t, 3.14, Coerce("about 3.14159 on average", "float", dataset.Outcome{}))
		assert.Equal(t, 1234.0, Coerce("1234.", "float", dataset.Outcome{}))
	})

	t.Run("Should use the row value when the answer has no numeral", func(t *testing.T) {
		out := rowsOf([]string{"TotalRevenue"}, []any{1234.5})

		assert.Equal(t, 1234.5, Coerce("", "float", out))
	})

	t.Run("Should parse textual row values", func(t *testing.T) {
		out := rowsOf([]string{"AOV"}, []any{[]byte("1057.456")})

		assert.Equal(t, 1057.46, Coerce("n/a", "float", out))
	})

	t.Run("Should return zero for infinite and NaN rows", func(t *testing.T) {
		for _, v := range []any{math.Inf(1), math.NaN()} {
			out := rowsOf([]string{"x"}, []any{v})

			assert.NotPanics(t, func() {
				assert.Equal(t, 0.0, Coerce("n/a", "float", out))
			})
		}
	})

	t.Run("Should return zero for unreadable values", func(t *testing.T) {
		out := rowsOf([]string{"x"}, []any{nil})

		assert.Equal(t, 0.0, Coerce("n/a", "float", out))
		assert.Equal(t, 0.0, Coerce("n/a", "float", dataset.NoRowsOutcome()))
	})
}

func TestCoerce_List(t *testing.T) {
	t.Run("Should parse a single-quoted list from the answer", func(t *testing.T) {
		got := Coerce("Categories: ['Beverages', 'Condiments']", "list[str]", dataset.Outcome{})

		assert.Equal(t, []any{"Beverages", "Condiments"}, got)
	})

	t.Run("Should convert parsed elements to the element type", func(t *testing.T) {
		assert.Equal(t, []any{"1", "2"}, Coerce("[1, 2]", "list[str]", dataset.Outcome{}))
		assert.Equal(t, []any{3, 4}, Coerce("ids: [3.7, '4']", "list[int]", dataset.Outcome{}))
	})

	t.Run("Should convert declared fields of parsed objects", func(t *testing.T) {
		got := Coerce(
			`[{"product": "Chai", "revenue": "36.004", "rank": 1}]`,
			"list[{product:str, revenue:float}]",
			dataset.Outcome{},
		)

		assert.Equal(t, []any{
			map[string]any{"product": "Chai", "revenue": 36.0, "rank": 1.0},
		}, got)
	})

	t.Run("Should build string lists from the first column in row order", func(t *testing.T) {
		names := []string{"Beverages", "Condiments", "Confections", "Dairy Products", "Seafood"}
		values := make([][]any, 0, len(names))
		for _, n := range names {
			values = append(values, []any{n})
		}

		got := Coerce("I could not decide", "list[str]", rowsOf([]string{"CategoryName"}, values...))

		assert.Equal(t, []any{"Beverages", "Condiments", "Confections", "Dairy Products", "Seafood"}, got)
	})

	t.Run("Should fall back when the parsed list is empty", func(t *testing.T) {
		got := Coerce("[]", "list", rowsOf([]string{"n"}, []any{int64(1)}, []any{int64(2)}))

		assert.Equal(t, []any{"1", "2"}, got)
	})

	t.Run("Should build objects through the alias table", func(t *testing.T) {
		out := rowsOf(
			[]string{"ProductName", "total_revenue"},
			[]any{"Cote de Blaye", 527.0},
			[]any{"Chai", 36.004},
		)

		got := Coerce("see table", "list[{product:str, revenue:float}]", out)

		assert.Equal(t, []any{
			map[string]any{"product": "Cote de Blaye", "revenue": 527.0},
			map[string]any{"product": "Chai", "revenue": 36.0},
		}, got)
	})

	t.Run("Should return an empty list without rows", func(t *testing.T) {
		assert.Equal(t, []any{}, Coerce("nothing", "list[str]", dataset.NoRowsOutcome()))
	})
}

func TestCoerce_Object(t *testing.T) {
	t.Run("Should build the object from the first row", func(t *testing.T) {
		out := rowsOf([]string{"CategoryName", "TotalQuantity"}, []any{"Beverages", "42"})

		got := Coerce("unparseable", "{category:str, quantity:int}", out)

		assert.Equal(t, map[string]any{"category": "Beverages", "quantity": 42}, got)
	})

	t.Run("Should prefer an object embedded in the answer", func(t *testing.T) {
		got := Coerce("Answer: {'customer': 'Ernst Handel', 'margin': 1234.5}", "{customer:str, margin:float}", dataset.Outcome{})

		assert.Equal(t, map[string]any{"customer": "Ernst Handel", "margin": 1234.5}, got)
	})

	t.Run("Should skip null aliases in priority order", func(t *testing.T) {
		out := rowsOf([]string{"OrderID", "freight", "Freight"}, []any{int64(10248), nil, 32.378})

		got := Coerce("", "{order_id:int, freight:float}", out)

		assert.Equal(t, map[string]any{"order_id": 10248, "freight": 32.38}, got)
	})

	t.Run("Should match unknown fields by exact name", func(t *testing.T) {
		out := rowsOf([]string{"city"}, []any{"Lyon"})

		assert.Equal(t, map[string]any{"city": "Lyon"}, Coerce("", "{city:str}", out))
	})

	t.Run("Should not panic on infinite or NaN row values", func(t *testing.T) {
		out := rowsOf([]string{"x"}, []any{math.Inf(1)})
		nan := rowsOf([]string{"x"}, []any{math.NaN()})

		assert.NotPanics(t, func() {
			assert.Equal(t, map[string]any{"x": 0.0}, Coerce("", "{x:float}", out))
			assert.Equal(t, map[string]any{"x": nil}, Coerce("", "{x}", out))
			assert.Equal(t, map[string]any{"x": nil}, Coerce("", "{x}", nan))
		})
	})

	t.Run("Should return an empty object without rows", func(t *testing.T) {
		assert.Equal(t, map[string]any{}, Coerce("{}", "{category:str, quantity:int}", dataset.NoRowsOutcome()))
	})
}

func TestCoerce_Default(t *testing.T) {
	t.Run("Should return the trimmed answer", func(t *testing.T) {
		assert.Equal(t, "14 days", Coerce("  14 days \n", "str", dataset.Outcome{}))
		assert.Equal(t, "", Coerce("", "", dataset.Outcome{}))
	})
}

func TestAliases(t *testing.T) {
	t.Run("Should return a copy of the priority list", func(t *testing.T) {
		names := Aliases("revenue")
		names[0] = "changed"

		assert.Equal(t, "TotalRevenue", Aliases("revenue")[0])
		assert.Equal(t, []string{"city"}, Aliases("city"))
	})
}
