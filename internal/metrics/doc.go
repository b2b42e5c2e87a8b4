// Package metrics computes business metrics over sales fact rows.
//
// Every function is pure and deterministic. Line-item metrics (revenue and
// its breakdowns) read the fact rows directly. Order-level metrics (order
// value, review and delivery statistics) first collapse the rows with
// OrderProjection so an order with several line items is counted once.
//
// Money is summed exactly with shopspring/decimal; means, shares and growth
// rates are converted to float64 once computed. Growth rates are fractions
// (0.1 is 10%). A growth against a zero base is reported as 0.
package metrics
