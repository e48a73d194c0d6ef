package coerce

import "github.com/compozy/hybridqa/engine/dataset"

// aliases lists the source columns accepted for each answer field, in
// priority order. Matching is case-sensitive and the first non-null value
// wins, so a schema that renames columns may resolve to a different one.
var aliases = map[string][]string{
	"category": {"CategoryName", "category", "Category"},
	"quantity": {"TotalQuantity", "TotalQuantitySold", "total_quantity", "quantity", "Quantity"},
	"customer": {"CompanyName", "customer", "Customer"},
	"margin":   {"gross_margin", "total_gross_margin", "margin", "Margin"},
	"product":  {"ProductName", "product", "Product"},
	"revenue":  {"TotalRevenue", "total_revenue", "revenue", "Revenue"},
	"order_id": {"OrderID", "order_id"},
	"freight":  {"freight", "Freight"},
}

// Aliases returns the candidate columns for field. Fields outside the
// table match only their own name.
func Aliases(field string) []string {
	if names, ok := aliases[field]; ok {
		return append([]string(nil), names...)
	}
	return []string{field}
}

func lookup(row dataset.Row, field string) (any, bool) {
	for _, name := range Aliases(field) {
		if v, ok := row.Get(name); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
