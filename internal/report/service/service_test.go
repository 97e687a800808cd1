package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/johnwalle/pharma-stock-api/internal/clock"
	medicinedomain "github.com/johnwalle/pharma-stock-api/internal/medicine/domain"
	"github.com/johnwalle/pharma-stock-api/internal/report/domain"
	saledomain "github.com/johnwalle/pharma-stock-api/internal/sale/domain"
	salerepository "github.com/johnwalle/pharma-stock-api/internal/sale/repository"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&medicinedomain.Medicine{}, &saledomain.SaleRecord{}))

	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fc,
		Sales: salerepository.Provide(),
	})
	return &fixture{svc: svc, db: db, node: node, clock: fc}
}

func (f *fixture) seedMedicine(t *testing.T, status medicinedomain.Status, expiry time.Time) *medicinedomain.Medicine {
	t.Helper()
	now := f.clock.Now()
	m := &medicinedomain.Medicine{
		ID:                 f.node.Generate(),
		BrandName:          "Amoxil",
		GenericName:        "Amoxicillin",
		DosageForm:         "Capsule",
		Strength:           "500mg",
		UnitType:           "Box",
		StoreQuantity:      10,
		SellingPrice:       4,
		ReorderThreshold:   10,
		ExpiryDate:         expiry,
		ReceivedDate:       now,
		BatchNumber:        f.node.Generate().String(),
		PrescriptionStatus: medicinedomain.PrescriptionOTC,
		Status:             status,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	assert.NoError(t, f.db.Create(m).Error)
	return m
}

func (f *fixture) seedSale(t *testing.T, medicineID snowflake.ID, brand string, qty int, unitPrice, unitCost float64, soldAt time.Time) {
	t.Helper()
	assert.NoError(t, f.db.Create(&saledomain.SaleRecord{
		ID:          f.node.Generate(),
		MedicineID:  medicineID,
		BrandName:   brand,
		Strength:    "500mg",
		BatchNumber: "B-1001",
		Quantity:    qty,
		UnitPrice:   unitPrice,
		UnitCost:    unitCost,
		Total:       unitPrice * float64(qty),
		Profit:      (unitPrice - unitCost) * float64(qty),
		StockBefore: 100,
		StockAfter:  100 - qty,
		SoldByName:  "Dana",
		SoldAt:      soldAt,
	}).Error)
}

func TestDashboard(t *testing.T) {
	f := setup(t)
	now := f.clock.Now()

	f.seedMedicine(t, medicinedomain.StatusAvailable, now.AddDate(1, 0, 0))
	f.seedMedicine(t, medicinedomain.StatusAvailable, now.AddDate(0, 0, 10))
	f.seedMedicine(t, medicinedomain.StatusLowStock, now.AddDate(0, 2, 0))
	f.seedMedicine(t, medicinedomain.StatusExpired, now.AddDate(0, 0, -5))

	deleted := f.seedMedicine(t, medicinedomain.StatusAvailable, now.AddDate(1, 0, 0))
	assert.NoError(t, f.db.Model(deleted).Update("is_deleted", true).Error)

	a := f.seedMedicine(t, medicinedomain.StatusAvailable, now.AddDate(1, 0, 0))
	b := f.seedMedicine(t, medicinedomain.StatusAvailable, now.AddDate(1, 0, 0))
	f.seedSale(t, a.ID, "Amoxil", 10, 4, 2.5, now.Add(-time.Hour))
	f.seedSale(t, a.ID, "Amoxil", 5, 4, 2.5, now.AddDate(0, 0, -3))
	f.seedSale(t, b.ID, "Panadol", 8, 2, 1, now.AddDate(0, 0, -40))

	resp, err := f.svc.Dashboard(context.Background())
	assert.NoError(t, err)

	assert.EqualValues(t, 6, resp.TotalMedicines)
	assert.EqualValues(t, 4, resp.StatusBreakdown.Available)
	assert.EqualValues(t, 1, resp.StatusBreakdown.LowStock)
	assert.EqualValues(t, 1, resp.StatusBreakdown.Expired)
	assert.EqualValues(t, 1, resp.ExpiringSoon)

	// Sales older than the window do not rank.
	assert.Len(t, resp.TopSold, 1)
	assert.Equal(t, "Amoxil", resp.TopSold[0].BrandName)
	assert.EqualValues(t, 15, resp.TopSold[0].Units)

	// Only the sale from earlier today counts toward today's totals.
	assert.EqualValues(t, 10, resp.Today.Units)
	assert.Equal(t, 40.0, resp.Today.Revenue)
	assert.Equal(t, 15.0, resp.Today.Profit)
}

func TestReportWeekly(t *testing.T) {
	f := setup(t)
	now := f.clock.Now()
	id := f.node.Generate()

	f.seedSale(t, id, "Amoxil", 2, 4, 2.5, now.Add(-time.Hour))
	f.seedSale(t, id, "Amoxil", 3, 4, 2.5, now.AddDate(0, 0, -2))
	// Outside the 7-day window.
	f.seedSale(t, id, "Amoxil", 50, 4, 2.5, now.AddDate(0, 0, -10))

	resp, err := f.svc.Report(context.Background(), "weekly")
	assert.NoError(t, err)
	assert.Equal(t, "weekly", resp.Range)
	assert.Len(t, resp.Trend, 7)
	assert.EqualValues(t, 5, resp.Totals.Units)
	assert.Equal(t, 20.0, resp.Totals.Revenue)

	assert.Equal(t, "2026-03-08", resp.Trend[4].Label)
	assert.EqualValues(t, 3, resp.Trend[4].Units)
	assert.Equal(t, "2026-03-10", resp.Trend[6].Label)
	assert.EqualValues(t, 2, resp.Trend[6].Units)
}

func TestReportYearlyBucketsByMonth(t *testing.T) {
	f := setup(t)
	now := f.clock.Now()
	id := f.node.Generate()

	f.seedSale(t, id, "Amoxil", 2, 4, 2.5, now)
	f.seedSale(t, id, "Amoxil", 4, 4, 2.5, now.AddDate(0, -1, 0))

	resp, err := f.svc.Report(context.Background(), "yearly")
	assert.NoError(t, err)
	assert.Len(t, resp.Trend, 12)
	assert.Equal(t, "2026-02", resp.Trend[10].Label)
	assert.EqualValues(t, 4, resp.Trend[10].Units)
	assert.Equal(t, "2026-03", resp.Trend[11].Label)
	assert.EqualValues(t, 2, resp.Trend[11].Units)
}

func TestReportRejectsUnknownRange(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Report(context.Background(), "hourly")
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}
