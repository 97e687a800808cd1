// Package domain contains the read-only analytics surface built from the
// medicines table and the sales ledger.
package domain

import (
	"context"
	"errors"
)

type Service interface {
	// Dashboard aggregates current inventory health and recent sales.
	Dashboard(ctx context.Context) (*DashboardResponse, error)

	// Report buckets the sales ledger over the requested range:
	// "weekly" (last 7 days, daily), "monthly" (last 30 days, daily) or
	// "yearly" (last 12 months, monthly).
	Report(ctx context.Context, rangeKey string) (*ReportResponse, error)
}

type DashboardResponse struct {
	TotalMedicines int64 `json:"total_medicines"`

	StatusBreakdown StatusBreakdown `json:"status_breakdown"`

	// ExpiringSoon counts batches expiring within the next 30 days.
	ExpiringSoon int64 `json:"expiring_soon"`

	TopSold []TopSoldItem `json:"top_sold"`

	Today PeriodTotals `json:"today"`
}

type StatusBreakdown struct {
	Available  int64 `json:"available"`
	LowStock   int64 `json:"low_stock"`
	OutOfStock int64 `json:"out_of_stock"`
	Expired    int64 `json:"expired"`
}

type TopSoldItem struct {
	MedicineID string  `json:"medicine_id"`
	BrandName  string  `json:"brand_name"`
	Strength   string  `json:"strength"`
	Units      int64   `json:"units"`
	Revenue    float64 `json:"revenue"`
}

type PeriodTotals struct {
	Units   int64   `json:"units"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

type ReportResponse struct {
	Range  string       `json:"range"`
	Totals PeriodTotals `json:"totals"`
	Trend  []TrendPoint `json:"trend"`
}

type TrendPoint struct {
	Label   string  `json:"label"`
	Units   int64   `json:"units"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

var ErrInvalidRange = errors.New("invalid_range")
