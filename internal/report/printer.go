package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"ecomcli/internal/metrics"
	"ecomcli/pkg/contracts/domain"
)

const (
	wideRule   = 70
	narrowRule = 50

	// DefaultTopN is how many categories and states are listed
	DefaultTopN = 5
)

// NotAvailable is printed for metrics without data
const NotAvailable = "N/A"

// Printer writes the console report
type Printer struct {
	w    io.Writer
	p    *message.Printer
	topN int
	err  error
}

// NewPrinter creates a printer writing to w. Numbers use English digit
// grouping (1,234.56).
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:    w,
		p:    message.NewPrinter(language.English),
		topN: DefaultTopN,
	}
}

// WithTopN sets how many categories and states are listed
func (pr *Printer) WithTopN(n int) *Printer {
	if n > 0 {
		pr.topN = n
	}
	return pr
}

// Print writes the full report and returns the first write error
func (pr *Printer) Print(r *domain.AnalysisReport) error {
	pr.err = nil

	pr.banner("E-COMMERCE BUSINESS ANALYTICS")
	pr.linef("Run %s generated %s", r.RunID, r.GeneratedAt.UTC().Format(time.RFC3339))
	pr.linef("Status filter: %s", statusLabel(r.StatusFilter))
	pr.buildStats(r.BuildStats)

	pr.revenueComparison(r)
	pr.monthly(r.Current)
	pr.groups("PRODUCT PERFORMANCE", "Product Categories", r.Current.RevenueByCategory, r.Current)
	pr.groups("GEOGRAPHIC PERFORMANCE", "States", r.Current.RevenueByState, r.Current)
	pr.customerExperience(r.Current)
	pr.executiveSummary(r)

	pr.line("")
	pr.line(strings.Repeat("=", wideRule))
	pr.line("Analysis complete!")
	pr.line(strings.Repeat("=", wideRule))

	return pr.err
}

func (pr *Printer) buildStats(s domain.FactBuildStats) {
	pr.linef("Fact rows: %d of %d line items", s.RowsOut, s.ItemsIn)
	if s.DroppedNoOrder > 0 {
		pr.linef("  - %d line items without a matching order dropped", s.DroppedNoOrder)
	}
	if s.DroppedByStatus > 0 {
		pr.linef("  - %d line items excluded by status", s.DroppedByStatus)
	}
	if s.DiscardedReviews > 0 {
		pr.linef("  - %d duplicate reviews discarded", s.DiscardedReviews)
	}
}

func (pr *Printer) revenueComparison(r *domain.AnalysisReport) {
	c := r.Comparison
	pr.banner("REVENUE COMPARISON")

	pr.linef("\nCurrent Period (%s)", r.Current.Period)
	pr.linef("  Total Revenue: %s", pr.money(c.CurrentRevenue))
	pr.linef("  Total Orders: %s", pr.count(c.CurrentOrders))
	pr.linef("  Average Order Value: %s", pr.optMoney(c.CurrentAOV))

	pr.linef("\nComparison Period (%s)", r.Previous.Period)
	pr.linef("  Total Revenue: %s", pr.money(c.PreviousRevenue))
	pr.linef("  Total Orders: %s", pr.count(c.PreviousOrders))
	pr.linef("  Average Order Value: %s", pr.optMoney(c.PreviousAOV))

	pr.line("\nPeriod-over-Period Growth")
	pr.linef("  Revenue Growth: %s", pr.percent(c.RevenueGrowthRate))
	pr.linef("  Orders Growth: %s", pr.percent(c.OrdersGrowthRate))
	pr.linef("  AOV Growth: %s", pr.optPercent(c.AOVGrowthRate))
}

func (pr *Printer) monthly(b domain.MetricBundle) {
	pr.banner("MONTHLY PERFORMANCE")
	pr.linef("\nMonth-over-Month Growth - %s", b.Period)
	pr.line(strings.Repeat("-", narrowRule))

	if len(b.MoMGrowth) == 0 {
		pr.line("  No sales in this period")
	}
	for _, m := range b.MoMGrowth {
		month := fmt.Sprintf("%04d %s", m.Year, time.Month(m.Month).String()[:3])
		pr.linef("  %s: %s (%s)", month, pr.money(m.Revenue), pr.optPercent(m.Growth))
	}

	pr.line(strings.Repeat("-", narrowRule))
	pr.linef("  Average MoM Growth: %s", pr.optPercent(b.AverageMoMGrowth))
}

func (pr *Printer) groups(title, label string, groups []domain.GroupRevenue, b domain.MetricBundle) {
	pr.banner(title)
	pr.linef("\nTop %d %s by Revenue - %s", pr.topN, label, b.Period)
	pr.line(strings.Repeat("-", 60))

	for _, g := range metrics.TopN(groups, pr.topN) {
		share := metrics.Share(g.Revenue, b.Summary.TotalRevenue)
		pr.linef("  %-30s %14s (%5.1f%%)", g.Label(), pr.money(g.Revenue), share)
	}
}

func (pr *Printer) customerExperience(b domain.MetricBundle) {
	pr.banner("CUSTOMER EXPERIENCE")

	pr.linef("\nOrder Status Distribution - %s", b.Period)
	pr.line(strings.Repeat("-", narrowRule))
	for _, s := range b.StatusDistribution {
		pr.linef("  %-12s: %5s (%5.1f%%)", s.Status, pr.count(s.Count), s.Percentage)
	}

	if b.Summary.HasReviewScore() {
		pr.linef("\nCustomer Review Analysis - %s", b.Period)
		pr.line(strings.Repeat("-", narrowRule))
		pr.linef("  Average Review Score: %s/5.00", pr.optFixed(b.Summary.AverageReviewScore, 2))
		pr.line("\n  Review Score Distribution:")
		for _, s := range b.ReviewDistribution {
			pr.linef("    %d stars: %4s reviews (%5.1f%%)", s.Score, pr.count(s.Count), s.Percentage)
		}
	}

	if b.Summary.HasDeliveryDays() {
		pr.linef("\nDelivery Performance - %s", b.Period)
		pr.line(strings.Repeat("-", narrowRule))
		pr.linef("  Average Delivery Time: %s days", pr.optFixed(b.Summary.AverageDeliveryDays, 1))
		if b.ReviewByDelivery != nil {
			pr.line("\n  Review Score by Delivery Speed:")
			for _, d := range b.ReviewByDelivery {
				pr.linef("    %-10s: %.2f/5.00", d.Category, d.AvgReviewScore)
			}
		}
	}
}

func (pr *Printer) executiveSummary(r *domain.AnalysisReport) {
	s := r.Current.Summary
	c := r.Comparison

	pr.banner("EXECUTIVE SUMMARY")
	pr.linef("\nAnalysis Period: %s", r.Current.Period)
	pr.linef("Comparison Period: %s", r.Previous.Period)

	pr.rule("KEY METRICS")
	pr.linef("  Total Revenue: %s", pr.money(s.TotalRevenue))
	pr.linef("  Total Orders: %s", pr.count(s.TotalOrders))
	pr.linef("  Average Order Value: %s", pr.optMoney(s.AverageOrderValue))
	pr.linef("  Average Items per Order: %s", pr.optFixed(s.AverageItemsPerOrder, 2))
	if s.HasReviewScore() {
		pr.linef("  Average Review Score: %s/5.00", pr.optFixed(s.AverageReviewScore, 2))
	}
	if s.HasDeliveryDays() {
		pr.linef("  Average Delivery Time: %s days", pr.optFixed(s.AverageDeliveryDays, 1))
	}

	pr.rule("PERIOD-OVER-PERIOD COMPARISON")
	pr.linef("  Revenue Change: %s", pr.percent(c.RevenueGrowthRate))
	pr.linef("  Orders Change: %s", pr.percent(c.OrdersGrowthRate))
	pr.linef("  AOV Change: %s", pr.optPercent(c.AOVGrowthRate))

	pr.rule("TOP PERFORMERS")
	if len(r.Current.RevenueByCategory) > 0 {
		top := r.Current.RevenueByCategory[0]
		pr.linef("  Top Category: %s (%s)", top.Label(), pr.money(top.Revenue))
	}
	if len(r.Current.RevenueByState) > 0 {
		top := r.Current.RevenueByState[0]
		pr.linef("  Top State: %s (%s)", top.Label(), pr.money(top.Revenue))
	}

	pr.rule("KEY OBSERVATIONS")
	pr.line("\n1. Revenue Performance:")
	if c.RevenueGrowthRate >= 0 {
		pr.linef("   - Revenue increased by %.2f%% vs prior period", c.RevenueGrowthRate*100)
	} else {
		pr.linef("   - Revenue declined by %.2f%% vs prior period", -c.RevenueGrowthRate*100)
	}
	pr.linef("   - Average month-over-month growth: %s", pr.optPercent(r.Current.AverageMoMGrowth))

	top3 := metrics.TopN(r.Current.RevenueByCategory, 3)
	if len(top3) > 0 {
		sum := decimal.Zero
		for _, g := range top3 {
			sum = sum.Add(g.Revenue)
		}
		pr.line("\n2. Product Performance:")
		pr.linef("   - Top %d categories account for %.1f%% of revenue", len(top3), metrics.Share(sum, s.TotalRevenue))
		for _, g := range top3 {
			pr.linef("   - %s: %.1f%%", g.Label(), metrics.Share(g.Revenue, s.TotalRevenue))
		}
	}
}

func (pr *Printer) banner(title string) {
	pr.line("\n" + strings.Repeat("=", wideRule))
	pr.line(title)
	pr.line(strings.Repeat("=", wideRule))
}

func (pr *Printer) rule(title string) {
	pr.line("\n" + strings.Repeat("-", wideRule))
	pr.line(title)
	pr.line(strings.Repeat("-", wideRule))
}

func (pr *Printer) line(s string) {
	if pr.err != nil {
		return
	}
	_, pr.err = fmt.Fprintln(pr.w, s)
}

func (pr *Printer) linef(format string, args ...interface{}) {
	pr.line(pr.p.Sprintf(format, args...))
}

func (pr *Printer) money(v decimal.Decimal) string {
	return pr.p.Sprintf("$%.2f", v.Round(2).InexactFloat64())
}

func (pr *Printer) optMoney(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return pr.p.Sprintf("$%.2f", *v)
}

func (pr *Printer) count(n int) string {
	return pr.p.Sprintf("%d", n)
}

func (pr *Printer) percent(rate float64) string {
	return pr.p.Sprintf("%+.2f%%", rate*100)
}

func (pr *Printer) optPercent(rate *float64) string {
	if rate == nil {
		return NotAvailable
	}
	return pr.percent(*rate)
}

func (pr *Printer) optFixed(v *float64, decimals int) string {
	if v == nil {
		return NotAvailable
	}
	return pr.p.Sprintf(fmt.Sprintf("%%.%df", decimals), *v)
}

func statusLabel(filter string) string {
	if filter == "" {
		return "all statuses"
	}
	return filter
}
