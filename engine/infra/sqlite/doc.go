// Package sqlite opens the modernc.org/sqlite dataset the engine queries.
//
// Views that smooth over awkward Northwind table names are created once on
// open; afterwards every pooled connection is pinned to query_only.
package sqlite
