package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"smart-trolley-backend/models"
)

type stubSaleSource struct {
	sales []models.Sale
	err   error
}

func (r *stubSaleSource) CreateWithStockDecrement(_ context.Context, _ *models.Sale) error {
	return nil
}

func (r *stubSaleSource) FindAll(_ context.Context) ([]models.Sale, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.sales, nil
}

type stubCatalog struct {
	products []models.Product
	err      error
}

func (r *stubCatalog) FindByID(_ context.Context, _ string) (*models.Product, error) {
	return nil, errors.New("not implemented")
}
func (r *stubCatalog) FindAll(_ context.Context) ([]models.Product, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.products, nil
}
func (r *stubCatalog) Create(_ context.Context, _ *models.Product) error { return nil }
func (r *stubCatalog) UpdateFields(_ context.Context, _ string, _ map[string]interface{}) error {
	return nil
}
func (r *stubCatalog) Delete(_ context.Context, _ string) error { return nil }
func (r *stubCatalog) AdjustStock(_ context.Context, _ string, _ int) (int, error) {
	return 0, nil
}

type stubAuditLog struct {
	entries []models.AuditEntry
	err     error
}

func (l *stubAuditLog) Record(_, _, _ string, _ map[string]interface{}) {}

func (l *stubAuditLog) ReadRecent(_ int) ([]models.AuditEntry, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.entries, nil
}

// Wednesday, mid-month, well inside opening hours.
var analyticsNow = time.Date(2024, 6, 19, 12, 0, 0, 0, time.UTC)

func newAnalyticsFixture(sales []models.Sale) (*analyticsServiceImpl, *stubCatalog, *stubAuditLog, *HeartbeatTracker) {
	catalog := &stubCatalog{}
	auditLog := &stubAuditLog{}
	heartbeat := NewHeartbeatTracker("TROLLEY-01", "Walk-in Customer")
	svc := NewAnalyticsService(&stubSaleSource{sales: sales}, catalog, auditLog, heartbeat, false, zap.NewNop()).(*analyticsServiceImpl)
	svc.nowFunc = func() time.Time { return analyticsNow }
	return svc, catalog, auditLog, heartbeat
}

func saleAt(ts time.Time, total float64, items ...models.SaleItem) models.Sale {
	return models.Sale{Timestamp: ts, Total: total, Items: items}
}

func TestReport_TodayTotalsAndTrend(t *testing.T) {
	svc, _, _, _ := newAnalyticsFixture([]models.Sale{
		saleAt(analyticsNow.Add(-2*time.Hour), 100),
		saleAt(analyticsNow.Add(-1*time.Hour), 200),
		saleAt(analyticsNow.AddDate(0, 0, -1), 200),
	})

	report := svc.Report(context.Background(), nil)
	assert.Equal(t, "ok", report.Status)
	assert.Equal(t, 300.0, report.TodayTotal)
	assert.Equal(t, 2, report.TodayCount)
	assert.Equal(t, 50.0, report.TrendPercent)
}

func TestReport_TrendZeroWithoutYesterday(t *testing.T) {
	svc, _, _, _ := newAnalyticsFixture([]models.Sale{
		saleAt(analyticsNow, 100),
	})

	report := svc.Report(context.Background(), nil)
	assert.Equal(t, 0.0, report.TrendPercent)
}

func TestReport_SkipsZeroTimestampSales(t *testing.T) {
	svc, _, _, _ := newAnalyticsFixture([]models.Sale{
		saleAt(time.Time{}, 9999),
		saleAt(analyticsNow, 50),
	})

	report := svc.Report(context.Background(), nil)
	assert.Equal(t, 50.0, report.TodayTotal)
	assert.Equal(t, 1, report.TodayCount)
}

func TestReport_SalesLoadFailureDegrades(t *testing.T) {
	svc, _, _, _ := newAnalyticsFixture(nil)
	svc.saleRepo = &stubSaleSource{err: errors.New("connection refused")}

	report := svc.Report(context.Background(), nil)
	assert.Equal(t, "error", report.Status)
	assert.Equal(t, 0.0, report.TodayTotal)
}

func TestDailySeries_SevenDaysZeroFilled(t *testing.T) {
	svc, _, _, _ := newAnalyticsFixture([]models.Sale{
		saleAt(analyticsNow, 120),
		saleAt(analyticsNow.AddDate(0, 0, -3), 80),
		saleAt(analyticsNow.AddDate(0, 0, -7), 999), // outside the window
	})

	report := svc.Report(context.Background(), nil)
	assert.Len(t, report.Daily, 7)
	assert.Equal(t, "Today", report.Daily[6].Label)
	assert.Equal(t, 120.0, report.Daily[6].Amount)
	assert.Equal(t, 80.0, report.Daily[3].Amount)
	assert.Equal(t, 0.0, report.Daily[0].Amount)
	assert.Equal(t, 0, report.Daily[0].Count)
}

func TestDailySeries_SelectedEndDate(t *testing.T) {
	end := analyticsNow.AddDate(0, 0, -10)
	svc, _, _, _ := newAnalyticsFixture([]models.Sale{
		saleAt(end, 60),
	})

	report := svc.Report(context.Background(), &end)
	assert.Len(t, report.Daily, 7)
	assert.Equal(t, "Selected day", report.Daily[6].Label)
	assert.Equal(t, 60.0, report.Daily[6].Amount)
}

func TestHourlySeries_OpeningHoursOnly(t *testing.T) {
	today := analyticsNow.Truncate(24 * time.Hour)
	svc, _, _, _ := newAnalyticsFixture([]models.Sale{
		saleAt(today.Add(7*time.Hour+30*time.Minute), 10),  // before opening
		saleAt(today.Add(8*time.Hour+15*time.Minute), 20),  // first bucket
		saleAt(today.Add(21*time.Hour+59*time.Minute), 30), // last bucket
		saleAt(today.Add(22*time.Hour+5*time.Minute), 40),  // after closing
	})

	report := svc.Report(context.Background(), nil)
	assert.Len(t, report.Hourly, 14)
	assert.Equal(t, "08:00", report.Hourly[0].Label)
	assert.Equal(t, 20.0, report.Hourly[0].Amount)
	assert.Equal(t, "21:00", report.Hourly[13].Label)
	assert.Equal(t, 30.0, report.Hourly[13].Amount)

	var total float64
	for _, point := range report.Hourly {
		total += point.Amount
	}
	assert.Equal(t, 50.0, total, "out-of-hours sales are excluded")
}

func TestWeeklySeries_EightISOWeeks(t *testing.T) {
	svc, _, _, _ := newAnalyticsFixture([]models.Sale{
		saleAt(analyticsNow, 100),                    // this week
		saleAt(analyticsNow.AddDate(0, 0, -7*7), 70), // oldest kept week
		saleAt(analyticsNow.AddDate(0, 0, -8*7), 99), // too old
	})

	report := svc.Report(context.Background(), nil)
	assert.Len(t, report.Weekly, 8)
	assert.Equal(t, "This week", report.Weekly[7].Label)
	assert.Equal(t, 100.0, report.Weekly[7].Amount)
	assert.Equal(t, 70.0, report.Weekly[0].Amount)

	// Sunday of this week still lands in the bucket that opened Monday.
	sunday := time.Date(2024, 6, 23, 10, 0, 0, 0, time.UTC)
	svc.saleRepo = &stubSaleSource{sales: []models.Sale{saleAt(sunday, 40)}}
	report = svc.Report(context.Background(), nil)
	assert.Equal(t, 40.0, report.Weekly[7].Amount)
}

func TestMonthlySeries_TwelveMonths(t *testing.T) {
	svc, _, _, _ := newAnalyticsFixture([]models.Sale{
		saleAt(analyticsNow, 100),
		saleAt(analyticsNow.AddDate(0, -11, 0), 50),
		saleAt(analyticsNow.AddDate(-1, 0, 0), 99), // 12 months back, excluded
	})

	report := svc.Report(context.Background(), nil)
	assert.Len(t, report.Monthly, 12)
	assert.Equal(t, "Jun 2024", report.Monthly[11].Label)
	assert.Equal(t, 100.0, report.Monthly[11].Amount)
	assert.Equal(t, 50.0, report.Monthly[0].Amount)
	assert.Equal(t, "2023-07", report.Monthly[0].Date)
}

func TestCategoryDistribution_PercentagesAndOrder(t *testing.T) {
	svc, _, _, _ := newAnalyticsFixture([]models.Sale{
		saleAt(analyticsNow, 400,
			models.SaleItem{Name: "Rice", Category: "Grains", FinalPrice: 300, Qty: 1},
			models.SaleItem{Name: "Milk", Category: "Dairy", FinalPrice: 50, Qty: 2},
		),
	})

	report := svc.Report(context.Background(), nil)
	assert.Len(t, report.Categories, 2)
	assert.Equal(t, "Grains", report.Categories[0].Category)
	assert.Equal(t, 75.0, report.Categories[0].Percent)
	assert.Equal(t, "Dairy", report.Categories[1].Category)
	assert.Equal(t, 25.0, report.Categories[1].Percent)
}

func TestCategoryDistribution_UncategorizedFallback(t *testing.T) {
	svc, _, _, _ := newAnalyticsFixture([]models.Sale{
		saleAt(analyticsNow, 100,
			models.SaleItem{Name: "Mystery", Category: "", FinalPrice: 100, Qty: 1},
		),
	})

	report := svc.Report(context.Background(), nil)
	assert.Equal(t, "Uncategorized", report.Categories[0].Category)
}

func TestCategoryDistribution_DemoBaseline(t *testing.T) {
	svc, _, _, _ := newAnalyticsFixture(nil)
	svc.demoBaseline = true

	report := svc.Report(context.Background(), nil)
	assert.Len(t, report.Categories, len(demoCategoryBaseline))
	assert.Equal(t, "Grains", report.Categories[0].Category)
	assert.Equal(t, 1200.0, report.Categories[0].Revenue)

	var totalPercent float64
	for _, share := range report.Categories {
		totalPercent += share.Percent
	}
	assert.InDelta(t, 100.0, totalPercent, 0.1)
}

func TestTopProducts_AggregatedByName(t *testing.T) {
	svc, _, _, _ := newAnalyticsFixture([]models.Sale{
		saleAt(analyticsNow, 0,
			models.SaleItem{Name: "Rice", FinalPrice: 300, Qty: 1},
			models.SaleItem{Name: "Milk", FinalPrice: 50, Qty: 1},
		),
		saleAt(analyticsNow.AddDate(0, 0, -1), 0,
			models.SaleItem{Name: "Milk", FinalPrice: 50, Qty: 3},
		),
	})

	report := svc.Report(context.Background(), nil)
	assert.Len(t, report.TopProducts, 2)
	assert.Equal(t, "Rice", report.TopProducts[0].Name)
	assert.Equal(t, 300.0, report.TopProducts[0].Revenue)
	assert.Equal(t, "Milk", report.TopProducts[1].Name)
	assert.Equal(t, 4, report.TopProducts[1].Qty)
	assert.Equal(t, 200.0, report.TopProducts[1].Revenue)
}

func TestAlerts_Inventory(t *testing.T) {
	svc, catalog, _, _ := newAnalyticsFixture(nil)
	catalog.products = []models.Product{
		{ID: "A", Name: "Sugar", Stock: 0},
		{ID: "B", Name: "Salt", Stock: 3},
		{ID: "C", Name: "Flour", Stock: 5},
	}

	alerts := svc.Alerts(context.Background())
	assert.Len(t, alerts, 2)
	assert.Equal(t, models.AlertSeverityCritical, alerts[0].Severity)
	assert.Equal(t, "Out of stock", alerts[0].Title)
	assert.Equal(t, models.AlertSeverityHigh, alerts[1].Severity)
	assert.Equal(t, "Low stock", alerts[1].Title)
}

func TestAlerts_AuditAnomalies(t *testing.T) {
	svc, _, auditLog, _ := newAnalyticsFixture(nil)
	auditLog.entries = []models.AuditEntry{
		{Actor: "staff-1", Action: models.AuditActionProductDeleted, TargetID: "P1"},
		{Actor: "staff-2", Action: models.AuditActionStockAdjusted, TargetID: "P2",
			Details: map[string]interface{}{"stock": float64(0)}},
		{Actor: "staff-3", Action: models.AuditActionStockAdjusted, TargetID: "P3",
			Details: map[string]interface{}{"stock": float64(4)}},
		{Actor: "staff-4", Action: models.AuditActionProductAdded, TargetID: "P4"},
	}

	alerts := svc.Alerts(context.Background())
	assert.Len(t, alerts, 2)
	assert.Equal(t, "Product deleted", alerts[0].Title)
	assert.Equal(t, "Stock zeroed by staff", alerts[1].Title)
}

func TestAlerts_HighValueAbandonedCart(t *testing.T) {
	svc, _, _, heartbeat := newAnalyticsFixture(nil)
	heartbeat.nowFunc = func() time.Time { return analyticsNow.Add(-10 * time.Minute) }
	heartbeat.Touch(&models.CartView{
		Items: map[string]models.CartViewItem{"P1": {ID: "P1", Qty: 6}},
		Total: 750,
	})

	alerts := svc.Alerts(context.Background())
	assert.Len(t, alerts, 1)
	assert.Equal(t, models.AlertSeverityHigh, alerts[0].Severity)
	assert.Equal(t, "High-value cart abandoned", alerts[0].Title)
}

func TestAlerts_CheapAbandonedCartIgnored(t *testing.T) {
	svc, _, _, heartbeat := newAnalyticsFixture(nil)
	heartbeat.nowFunc = func() time.Time { return analyticsNow.Add(-10 * time.Minute) }
	heartbeat.Touch(&models.CartView{
		Items: map[string]models.CartViewItem{"P1": {ID: "P1", Qty: 1}},
		Total: 120,
	})

	assert.Empty(t, svc.Alerts(context.Background()))
}

func TestAlerts_SeverityOrdering(t *testing.T) {
	svc, catalog, auditLog, heartbeat := newAnalyticsFixture(nil)
	auditLog.entries = []models.AuditEntry{
		{Actor: "staff-1", Action: models.AuditActionProductDeleted, TargetID: "P1"},
	}
	heartbeat.nowFunc = func() time.Time { return analyticsNow.Add(-10 * time.Minute) }
	heartbeat.Touch(&models.CartView{
		Items: map[string]models.CartViewItem{"P1": {ID: "P1", Qty: 6}},
		Total: 750,
	})
	catalog.products = []models.Product{{ID: "A", Name: "Sugar", Stock: 0}}

	alerts := svc.Alerts(context.Background())
	assert.Len(t, alerts, 3)
	assert.Equal(t, models.AlertSeverityCritical, alerts[0].Severity)
	assert.Equal(t, models.AlertSeverityHigh, alerts[1].Severity)
	assert.Equal(t, models.AlertSeverityMedium, alerts[2].Severity)
}

func TestAlerts_SourceFailureDegrades(t *testing.T) {
	svc, catalog, auditLog, _ := newAnalyticsFixture(nil)
	catalog.err = errors.New("db down")
	auditLog.entries = []models.AuditEntry{
		{Actor: "staff-1", Action: models.AuditActionProductDeleted, TargetID: "P1"},
	}

	alerts := svc.Alerts(context.Background())
	assert.Len(t, alerts, 1, "audit alerts survive an inventory failure")
	assert.Equal(t, "Product deleted", alerts[0].Title)
}
