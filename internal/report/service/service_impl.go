package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/johnwalle/pharma-stock-api/internal/clock"
	medicinedomain "github.com/johnwalle/pharma-stock-api/internal/medicine/domain"
	"github.com/johnwalle/pharma-stock-api/internal/report/domain"
	saledomain "github.com/johnwalle/pharma-stock-api/internal/sale/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const topSoldLimit = 5

const topSoldWindow = 30 * 24 * time.Hour

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Sales saledomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	sales saledomain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("report.service"),
		clock: p.Clock,
		sales: p.Sales,
	}
}

type statusCountRow struct {
	Status medicinedomain.Status `gorm:"column:status"`
	Count  int64                 `gorm:"column:count"`
}

type topSoldRow struct {
	MedicineID snowflake.ID `gorm:"column:medicine_id"`
	BrandName  string       `gorm:"column:brand_name"`
	Strength   string       `gorm:"column:strength"`
	Units      int64        `gorm:"column:units"`
	Revenue    float64      `gorm:"column:revenue"`
}

func (s *Service) Dashboard(ctx context.Context) (*domain.DashboardResponse, error) {
	now := s.clock.Now()
	resp := &domain.DashboardResponse{}

	var statusRows []statusCountRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT status, COUNT(*) AS count
		FROM medicines
		WHERE is_deleted = ?
		GROUP BY status
	`, false).Scan(&statusRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range statusRows {
		resp.TotalMedicines += row.Count
		switch row.Status {
		case medicinedomain.StatusAvailable:
			resp.StatusBreakdown.Available = row.Count
		case medicinedomain.StatusLowStock:
			resp.StatusBreakdown.LowStock = row.Count
		case medicinedomain.StatusOutOfStock:
			resp.StatusBreakdown.OutOfStock = row.Count
		case medicinedomain.StatusExpired:
			resp.StatusBreakdown.Expired = row.Count
		}
	}

	err = s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM medicines
		WHERE is_deleted = ?
		  AND expiry_date >= ?
		  AND expiry_date < ?
	`, false, now, now.AddDate(0, 0, 30)).Scan(&resp.ExpiringSoon).Error
	if err != nil {
		return nil, err
	}

	var topRows []topSoldRow
	err = s.db.WithContext(ctx).Raw(`
		SELECT medicine_id,
		       brand_name,
		       strength,
		       SUM(quantity) AS units,
		       SUM(total) AS revenue
		FROM sale_records
		WHERE sold_at >= ?
		GROUP BY medicine_id, brand_name, strength
		ORDER BY units DESC
		LIMIT ?
	`, now.Add(-topSoldWindow), topSoldLimit).Scan(&topRows).Error
	if err != nil {
		return nil, err
	}
	resp.TopSold = make([]domain.TopSoldItem, 0, len(topRows))
	for _, row := range topRows {
		resp.TopSold = append(resp.TopSold, domain.TopSoldItem{
			MedicineID: row.MedicineID.String(),
			BrandName:  row.BrandName,
			Strength:   row.Strength,
			Units:      row.Units,
			Revenue:    row.Revenue,
		})
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	todays, err := s.sales.ListBetween(ctx, s.db, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	for _, record := range todays {
		resp.Today.Units += int64(record.Quantity)
		resp.Today.Revenue += record.Total
		resp.Today.Profit += record.Profit
	}

	return resp, nil
}

func (s *Service) Report(ctx context.Context, rangeKey string) (*domain.ReportResponse, error) {
	now := s.clock.Now()

	var (
		from    time.Time
		bucket  func(t time.Time) string
		labels  []string
		monthly bool
	)
	switch rangeKey {
	case "weekly":
		from = startOfDay(now).AddDate(0, 0, -6)
	case "monthly":
		from = startOfDay(now).AddDate(0, 0, -29)
	case "yearly":
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
		monthly = true
	default:
		return nil, domain.ErrInvalidRange
	}

	if monthly {
		bucket = func(t time.Time) string { return t.Format("2006-01") }
		for cursor := from; !cursor.After(now); cursor = cursor.AddDate(0, 1, 0) {
			labels = append(labels, bucket(cursor))
		}
	} else {
		bucket = func(t time.Time) string { return t.Format("2006-01-02") }
		for cursor := from; !cursor.After(now); cursor = cursor.AddDate(0, 0, 1) {
			labels = append(labels, bucket(cursor))
		}
	}

	records, err := s.sales.ListBetween(ctx, s.db, from, now.Add(time.Second))
	if err != nil {
		return nil, err
	}

	// Bucketing happens here rather than in SQL so the query stays portable
	// across the supported dialects.
	points := make(map[string]*domain.TrendPoint, len(labels))
	resp := &domain.ReportResponse{Range: rangeKey}
	for _, label := range labels {
		point := &domain.TrendPoint{Label: label}
		points[label] = point
	}
	for _, record := range records {
		point, ok := points[bucket(record.SoldAt.UTC())]
		if !ok {
			continue
		}
		point.Units += int64(record.Quantity)
		point.Revenue += record.Total
		point.Profit += record.Profit

		resp.Totals.Units += int64(record.Quantity)
		resp.Totals.Revenue += record.Total
		resp.Totals.Profit += record.Profit
	}

	resp.Trend = make([]domain.TrendPoint, 0, len(labels))
	for _, label := range labels {
		resp.Trend = append(resp.Trend, *points[label])
	}
	return resp, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
