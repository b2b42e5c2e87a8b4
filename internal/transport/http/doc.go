// Package http implements the HTTP handlers of the analysis API.
//
// Handlers are thin: they parse and validate the request, call the service
// layer and render the result with go-chi/render. Every failure is rendered
// as RFC 7807 problem details by the shared errors.ErrorHandler.
//
// Routes mounted under /api/analysis:
//
//	POST /run                   run an analysis, optionally overriding periods and status
//	GET  /report                the full last report
//	GET  /summary               headline statistics (?scope=current|previous)
//	GET  /comparison            period-over-period comparison
//	GET  /revenue               revenue by ?period=year|month|year-month
//	GET  /revenue/growth        month-over-month growth
//	GET  /categories, /states   revenue ranking (?limit=)
//	GET  /reviews/distribution  review score shares
//	GET  /reviews/delivery      review score per delivery speed
//	GET  /orders/status         order status shares
//
// Queries read the last successful run and answer 404 REPORT_NOT_FOUND
// until one exists.
package http
