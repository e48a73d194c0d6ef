package task

// Input and output field names shared with the orchestrator.
const (
	FieldQuestion       = "question"
	FieldClassification = "classification"
	FieldDBSchema       = "db_schema"
	FieldSQLQuery       = "sql_query"
	FieldContext        = "context"
	FieldSQLResult      = "sql_result"
	FieldFormatHint     = "format_hint"
	FieldFinalAnswer    = "final_answer"
	FieldExplanation    = "explanation"
	FieldCitations      = "citations"
)

// Route classifies a question into data, document or combined.
func Route() *Definition {
	return &Definition{
		Name: "route",
		Instructions: `Classify the question.
Output 'data' if it asks for numbers, aggregates, counts or top lists.
Output 'document' if it asks for definitions, policies or other text.
Output 'combined' if it needs definitions AND data.`,
		Inputs: []Field{{Name: FieldQuestion}},
		Outputs: []Field{{
			Name: FieldClassification,
			Desc: "Must be one of: 'data', 'document', 'combined'",
		}},
	}
}

// GenerateSQL writes one read-only SQLite query.
func GenerateSQL() *Definition {
	return &Definition{
		Name: "generate_sql",
		Instructions: `Write a SQLite query.
- Tables: 'orders', 'order_items', 'products', 'customers'.
- CRITICAL: Always JOIN 'products p' if you filter by Category or Product Name.
- Date format: strftime('%Y-%m', OrderDate) = '1997-06'.
- Revenue: SUM(UnitPrice * Quantity * (1 - Discount)).
- Margin: SUM((UnitPrice * 0.3) * Quantity * (1 - Discount)).
- Syntax: Check parenthesis carefully. Example: ROUND(SUM(...), 2)
- Only SELECT statements are allowed.`,
		Inputs: []Field{
			{Name: FieldQuestion},
			{Name: FieldDBSchema, Desc: "Schema info"},
		},
		Outputs: []Field{{Name: FieldSQLQuery, Desc: "SQL query starting with SELECT"}},
		Demos:   sqlDemos,
	}
}

// sqlDemos are queries known to run against the 2017 Northwind dataset.
var sqlDemos = []Demo{
	{
		Inputs: map[string]string{
			FieldQuestion: "During 'Summer Beverages 2017' as defined in the marketing calendar, " +
				"which product category had the highest total quantity sold?",
		},
		Outputs: map[string]string{
			FieldSQLQuery: "SELECT cat.CategoryName, SUM(oi.Quantity) AS TotalQuantitySold FROM orders AS o " +
				"JOIN order_items AS oi ON o.OrderID = oi.OrderID JOIN products AS p ON oi.ProductID = p.ProductID " +
				"JOIN categories AS cat ON p.CategoryID = cat.CategoryID " +
				"WHERE strftime('%Y-%m', o.OrderDate) IN ('2017-06', '2017-07', '2017-08') " +
				"GROUP BY cat.CategoryName ORDER BY TotalQuantitySold DESC LIMIT 1;",
		},
	},
	{
		Inputs: map[string]string{
			FieldQuestion: "What was the Average Order Value during 'Winter Classics 2017'?",
		},
		Outputs: map[string]string{
			FieldSQLQuery: "SELECT ROUND(SUM(oi.UnitPrice * oi.Quantity * (1 - oi.Discount)) / COUNT(DISTINCT o.OrderID), 2) " +
				"FROM orders o JOIN order_items oi ON o.OrderID = oi.OrderID " +
				"WHERE o.OrderDate BETWEEN '2017-12-01' AND '2017-12-31';",
		},
	},
	{
		Inputs: map[string]string{
			FieldQuestion: "Who was the top customer by gross margin in 2017? Assume CostOfGoods is 70% of UnitPrice.",
		},
		Outputs: map[string]string{
			FieldSQLQuery: "SELECT c.CompanyName, ROUND(SUM(oi.UnitPrice * 0.3 * oi.Quantity * (1 - oi.Discount)), 2) " +
				"AS total_gross_margin FROM customers AS c JOIN orders AS o ON c.CustomerID = o.CustomerID " +
				"JOIN order_items AS oi ON o.OrderID = oi.OrderID WHERE strftime('%Y', o.OrderDate) = '2017' " +
				"GROUP BY c.CustomerID, c.CompanyName ORDER BY total_gross_margin DESC LIMIT 1;",
		},
	},
}

// Synthesize composes the final answer from documents and query results.
func Synthesize() *Definition {
	return &Definition{
		Name: "synthesize",
		Instructions: `Answer the question using the context.
- Output strict JSON.
- citations must be a list of strings.
- final_answer must match the format_hint.`,
		Inputs: []Field{
			{Name: FieldQuestion},
			{Name: FieldContext},
			{Name: FieldSQLQuery},
			{Name: FieldSQLResult},
			{Name: FieldFormatHint},
		},
		Outputs: []Field{
			{Name: FieldFinalAnswer, Desc: "Value matching format_hint", Type: TypeAny},
			{Name: FieldExplanation, Desc: "Brief explanation"},
			{Name: FieldCitations, Desc: "List of strings like ['orders']", Type: TypeArray},
		},
	}
}
