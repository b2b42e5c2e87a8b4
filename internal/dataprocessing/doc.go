// Package dataprocessing turns raw shop exports into the sales fact table.
//
// The pipeline has four steps:
//
//  1. Loader reads the orders, order items, products, customers and reviews
//     tables from CSV or XLSX files into header-indexed RawTables.
//  2. Normalize converts cells into typed domain records, parsing
//     timestamps and numbers and deriving the purchase year and month.
//  3. FactBuilder inner-joins items with orders, applies the status filter
//     and left-joins category, customer geography and review score. Every
//     enrichment goes through a unique-key lookup, so joins never duplicate
//     line items.
//  4. FilterRange restricts rows to an inclusive calendar period.
//
// Usage:
//
//	ds, err := dataprocessing.LoadDataset(ctx, "data", cfg.Analysis.Files)
//	if err != nil {
//	    return err
//	}
//	table, err := dataprocessing.BuildFactTable(ds, dataprocessing.FactOptions{StatusFilter: "delivered"})
//	current := dataprocessing.FilterTable(table, domain.NewPeriod(2023, 1, 2023, 12))
package dataprocessing
