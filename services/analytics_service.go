package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"smart-trolley-backend/audit"
	"smart-trolley-backend/models"
	"smart-trolley-backend/repository"
)

const (
	lowStockThreshold    = 5
	auditScanLimit       = 50
	topProductsLimit     = 20
	hourlyWindowStart    = 8
	hourlyWindowEnd      = 22
	abandonedCartMinimum = 500.0
)

// demoCategoryBaseline is the fixed illustrative floor merged into the
// category distribution when the demo-baseline flag is on.
var demoCategoryBaseline = map[string]float64{
	"Grains":    1200,
	"Dairy":     800,
	"Snacks":    600,
	"Beverages": 500,
	"Oil":       400,
	"Bakery":    300,
}

// AnalyticsService derives dashboard statistics from the sales ledger, the
// catalog, the audit tail and the trolley heartbeat. Everything is
// recomputed per request; there is no materialized view.
type AnalyticsService interface {
	Report(ctx context.Context, endDate *time.Time) *models.AnalyticsReport
	Alerts(ctx context.Context) []models.Alert
}

type analyticsServiceImpl struct {
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	auditLog     audit.Log
	heartbeat    *HeartbeatTracker
	logger       *zap.Logger
	demoBaseline bool
	nowFunc      func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService. demoBaseline merges
// the illustrative per-category floor into the category distribution.
func NewAnalyticsService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	auditLog audit.Log,
	heartbeat *HeartbeatTracker,
	demoBaseline bool,
	logger *zap.Logger,
) AnalyticsService {
	return &analyticsServiceImpl{
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		auditLog:     auditLog,
		heartbeat:    heartbeat,
		logger:       logger,
		demoBaseline: demoBaseline,
		nowFunc:      time.Now,
	}
}

// Report computes the full dashboard payload. The aggregation is fail-open:
// any fault degrades to an error-status empty report, never a 500 for the
// whole dashboard.
func (s *analyticsServiceImpl) Report(ctx context.Context, endDate *time.Time) (report *models.AnalyticsReport) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Analytics aggregation panicked", zap.Any("panic", r))
			report = &models.AnalyticsReport{Status: "error"}
		}
	}()

	sales, err := s.saleRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load sales for analytics", zap.Error(err))
		return &models.AnalyticsReport{Status: "error"}
	}

	// A sale without a usable timestamp is skipped, not fatal.
	valid := sales[:0]
	for _, sale := range sales {
		if !sale.Timestamp.IsZero() {
			valid = append(valid, sale)
		}
	}
	sales = valid

	now := s.nowFunc()
	end := now
	if endDate != nil {
		end = *endDate
	}

	todayTotal, todayCount := sumForDay(sales, now)
	yesterdayTotal, _ := sumForDay(sales, now.AddDate(0, 0, -1))

	trend := 0.0
	if yesterdayTotal > 0 {
		trend = models.Round2((todayTotal - yesterdayTotal) / yesterdayTotal * 100)
	}

	return &models.AnalyticsReport{
		Status:       "ok",
		TodayTotal:   models.Round2(todayTotal),
		TodayCount:   todayCount,
		TrendPercent: trend,
		Daily:        s.dailySeries(sales, now, end),
		Hourly:       s.hourlySeries(sales, now),
		Weekly:       s.weeklySeries(sales, now),
		Monthly:      s.monthlySeries(sales, now),
		Categories:   s.categoryDistribution(sales),
		TopProducts:  s.topProducts(sales),
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sumForDay(sales []models.Sale, day time.Time) (float64, int) {
	total := 0.0
	count := 0
	for _, sale := range sales {
		if sameDay(sale.Timestamp, day) {
			total += sale.Total
			count++
		}
	}
	return total, count
}

// dailySeries is a fixed 7-day window ending at the requested end date,
// zero-filled.
func (s *analyticsServiceImpl) dailySeries(sales []models.Sale, now, end time.Time) []models.SeriesPoint {
	points := make([]models.SeriesPoint, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		day := end.AddDate(0, 0, -offset)
		total, count := sumForDay(sales, day)

		label := day.Format("Mon 2")
		if sameDay(day, now) {
			label = "Today"
		} else if sameDay(day, end) {
			label = "Selected day"
		}

		points = append(points, models.SeriesPoint{
			Label:  label,
			Date:   day.Format("2006-01-02"),
			Amount: models.Round2(total),
			Count:  count,
		})
	}
	return points
}

// hourlySeries buckets today's sales into the store's fixed opening hours.
// Timestamps outside the window are ignored.
func (s *analyticsServiceImpl) hourlySeries(sales []models.Sale, now time.Time) []models.SeriesPoint {
	points := make([]models.SeriesPoint, 0, hourlyWindowEnd-hourlyWindowStart)
	for hour := hourlyWindowStart; hour < hourlyWindowEnd; hour++ {
		points = append(points, models.SeriesPoint{Label: fmt.Sprintf("%02d:00", hour)})
	}

	for _, sale := range sales {
		if !sameDay(sale.Timestamp, now) {
			continue
		}
		hour := sale.Timestamp.Hour()
		if hour < hourlyWindowStart || hour >= hourlyWindowEnd {
			continue
		}
		idx := hour - hourlyWindowStart
		points[idx].Amount = models.Round2(points[idx].Amount + sale.Total)
		points[idx].Count++
	}
	return points
}

// weeklySeries covers the last 8 ISO calendar weeks, Monday to Sunday.
func (s *analyticsServiceImpl) weeklySeries(sales []models.Sale, now time.Time) []models.SeriesPoint {
	thisMonday := startOfISOWeek(now)

	points := make([]models.SeriesPoint, 0, 8)
	for offset := 7; offset >= 0; offset-- {
		monday := thisMonday.AddDate(0, 0, -7*offset)

		label := monday.Format("Jan 2")
		if offset == 0 {
			label = "This week"
		}
		points = append(points, models.SeriesPoint{
			Label: label,
			Date:  monday.Format("2006-01-02"),
		})
	}

	for _, sale := range sales {
		monday := startOfISOWeek(sale.Timestamp)
		offset := int(math.Round(thisMonday.Sub(monday).Hours() / (24 * 7)))
		if offset < 0 || offset > 7 {
			continue
		}
		idx := 7 - offset
		points[idx].Amount = models.Round2(points[idx].Amount + sale.Total)
		points[idx].Count++
	}
	return points
}

func startOfISOWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started last Monday
	}
	y, m, d := t.AddDate(0, 0, -(weekday - 1)).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// monthlySeries covers the last 12 calendar months ending at the current
// month, oldest first.
func (s *analyticsServiceImpl) monthlySeries(sales []models.Sale, now time.Time) []models.SeriesPoint {
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	points := make([]models.SeriesPoint, 0, 12)
	index := make(map[string]int, 12)
	for offset := 11; offset >= 0; offset-- {
		month := thisMonth.AddDate(0, -offset, 0)
		key := month.Format("2006-01")
		index[key] = len(points)
		points = append(points, models.SeriesPoint{
			Label: month.Format("Jan 2006"),
			Date:  key,
		})
	}

	for _, sale := range sales {
		if idx, ok := index[sale.Timestamp.Format("2006-01")]; ok {
			points[idx].Amount = models.Round2(points[idx].Amount + sale.Total)
			points[idx].Count++
		}
	}
	return points
}

// categoryDistribution sums line revenue by category from real history,
// optionally merged with the demo baseline, then converts to percentages.
func (s *analyticsServiceImpl) categoryDistribution(sales []models.Sale) []models.CategoryShare {
	revenue := map[string]float64{}
	for _, sale := range sales {
		for _, item := range sale.Items {
			category := item.Category
			if category == "" {
				category = "Uncategorized"
			}
			revenue[category] += item.FinalPrice * float64(item.Qty)
		}
	}

	if s.demoBaseline {
		for category, base := range demoCategoryBaseline {
			revenue[category] += base
		}
	}

	combined := 0.0
	for _, amount := range revenue {
		combined += amount
	}

	shares := make([]models.CategoryShare, 0, len(revenue))
	for category, amount := range revenue {
		percent := 0.0
		if combined > 0 {
			percent = models.Round2(amount / combined * 100)
		}
		shares = append(shares, models.CategoryShare{
			Category: category,
			Revenue:  models.Round2(amount),
			Percent:  percent,
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Percent == shares[j].Percent {
			return shares[i].Category < shares[j].Category
		}
		return shares[i].Percent > shares[j].Percent
	})
	return shares
}

// topProducts aggregates quantity and revenue per product name, revenue
// descending, capped at 20.
func (s *analyticsServiceImpl) topProducts(sales []models.Sale) []models.ProductStat {
	stats := map[string]*models.ProductStat{}
	for _, sale := range sales {
		for _, item := range sale.Items {
			stat, ok := stats[item.Name]
			if !ok {
				stat = &models.ProductStat{Name: item.Name}
				stats[item.Name] = stat
			}
			stat.Qty += item.Qty
			stat.Revenue = models.Round2(stat.Revenue + item.FinalPrice*float64(item.Qty))
		}
	}

	result := make([]models.ProductStat, 0, len(stats))
	for _, stat := range stats {
		result = append(result, *stat)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Revenue == result[j].Revenue {
			return result[i].Name < result[j].Name
		}
		return result[i].Revenue > result[j].Revenue
	})
	if len(result) > topProductsLimit {
		result = result[:topProductsLimit]
	}
	return result
}

var alertSeverityRank = map[string]int{
	models.AlertSeverityCritical: 0,
	models.AlertSeverityHigh:     1,
	models.AlertSeverityMedium:   2,
	models.AlertSeverityLow:      3,
}

// Alerts combines inventory warnings, audit anomalies and the high-value
// abandoned-cart signal. Each source degrades independently; a failed
// source contributes nothing rather than failing the endpoint.
func (s *analyticsServiceImpl) Alerts(ctx context.Context) []models.Alert {
	alerts := []models.Alert{}

	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load products for alerts", zap.Error(err))
	} else {
		for _, p := range products {
			switch {
			case p.Stock == 0:
				alerts = append(alerts, models.Alert{
					Severity: models.AlertSeverityCritical,
					Source:   "inventory",
					Title:    "Out of stock",
					Message:  fmt.Sprintf("%s (%s) is out of stock", p.Name, p.ID),
				})
			case p.Stock < lowStockThreshold:
				alerts = append(alerts, models.Alert{
					Severity: models.AlertSeverityHigh,
					Source:   "inventory",
					Title:    "Low stock",
					Message:  fmt.Sprintf("%s (%s) has only %d units left", p.Name, p.ID, p.Stock),
				})
			}
		}
	}

	entries, err := s.auditLog.ReadRecent(auditScanLimit)
	if err != nil {
		s.logger.Error("Failed to read audit log for alerts", zap.Error(err))
	} else {
		for _, entry := range entries {
			switch entry.Action {
			case models.AuditActionProductDeleted:
				alerts = append(alerts, models.Alert{
					Severity: models.AlertSeverityMedium,
					Source:   "audit",
					Title:    "Product deleted",
					Message:  fmt.Sprintf("%s deleted product %s", entry.Actor, entry.TargetID),
				})
			case models.AuditActionProductUpdated, models.AuditActionStockAdjusted:
				if stockSetToZero(entry.Details) {
					alerts = append(alerts, models.Alert{
						Severity: models.AlertSeverityMedium,
						Source:   "audit",
						Title:    "Stock zeroed by staff",
						Message:  fmt.Sprintf("%s set stock of %s to 0", entry.Actor, entry.TargetID),
					})
				}
			}
		}
	}

	if entry := s.heartbeat.Snapshot(); entry != nil {
		age := s.nowFunc().Sub(entry.LastBeat)
		if age > heartbeatIdleWindow && entry.Total > abandonedCartMinimum {
			alerts = append(alerts, models.Alert{
				Severity: models.AlertSeverityHigh,
				Source:   "trolley",
				Title:    "High-value cart abandoned",
				Message: fmt.Sprintf("Cart worth %.2f idle for %d seconds",
					entry.Total, int(age.Seconds())),
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alertSeverityRank[alerts[i].Severity] < alertSeverityRank[alerts[j].Severity]
	})
	return alerts
}

// stockSetToZero checks a decoded audit payload; JSON numbers arrive as
// float64.
func stockSetToZero(details map[string]interface{}) bool {
	v, ok := details["stock"]
	if !ok {
		return false
	}
	switch n := v.(type) {
	case float64:
		return n == 0
	case int:
		return n == 0
	default:
		return false
	}
}
