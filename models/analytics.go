package models

// SeriesPoint is one bucket of a time series, zero-filled when empty.
type SeriesPoint struct {
	Label  string  `json:"label"`
	Date   string  `json:"date,omitempty"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// CategoryShare is one slice of the category distribution.
type CategoryShare struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Percent  float64 `json:"percent"`
}

// ProductStat aggregates sales per product name.
type ProductStat struct {
	Name    string  `json:"name"`
	Qty     int     `json:"qty"`
	Revenue float64 `json:"revenue"`
}

// Alert severities, highest first.
const (
	AlertSeverityCritical = "critical"
	AlertSeverityHigh     = "high"
	AlertSeverityMedium   = "medium"
	AlertSeverityLow      = "low"
)

// Alert is one dashboard warning derived from inventory, audit history or
// the trolley heartbeat.
type Alert struct {
	Severity string `json:"severity"`
	Source   string `json:"source"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}

// AnalyticsReport is the full dashboard payload, recomputed per request.
// Status is "ok", or "error" with zeroed content when aggregation failed.
type AnalyticsReport struct {
	Status       string          `json:"status"`
	TodayTotal   float64         `json:"today_total"`
	TodayCount   int             `json:"today_count"`
	TrendPercent float64         `json:"trend_percent"`
	Daily        []SeriesPoint   `json:"daily"`
	Hourly       []SeriesPoint   `json:"hourly"`
	Weekly       []SeriesPoint   `json:"weekly"`
	Monthly      []SeriesPoint   `json:"monthly"`
	Categories   []CategoryShare `json:"categories"`
	TopProducts  []ProductStat   `json:"top_products"`
}
