package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/johnwalle/pharma-stock-api/internal/actorcontext"
	auditdomain "github.com/johnwalle/pharma-stock-api/internal/audit/domain"
	"github.com/johnwalle/pharma-stock-api/internal/clock"
	medicinedomain "github.com/johnwalle/pharma-stock-api/internal/medicine/domain"
	notificationdomain "github.com/johnwalle/pharma-stock-api/internal/notification/domain"
	"github.com/johnwalle/pharma-stock-api/internal/sale/domain"
	"github.com/johnwalle/pharma-stock-api/internal/sale/repository"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type auditStub struct {
	mu      sync.Mutex
	details []string
}

func (s *auditStub) Record(ctx context.Context, action auditdomain.Action, details string) {
	s.mu.Lock()
	s.details = append(s.details, details)
	s.mu.Unlock()
}

func (s *auditStub) List(ctx context.Context) ([]auditdomain.AuditLog, error) { return nil, nil }

func (s *auditStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.details)
}

type notifierStub struct {
	mu     sync.Mutex
	alerts []string
}

func (s *notifierStub) Create(ctx context.Context, req notificationdomain.CreateRequest) (*notificationdomain.Notification, error) {
	return nil, nil
}

func (s *notifierStub) List(ctx context.Context) ([]notificationdomain.Notification, error) {
	return nil, nil
}

func (s *notifierStub) MarkRead(ctx context.Context, id string) error { return nil }

func (s *notifierStub) MarkAllRead(ctx context.Context) error { return nil }

func (s *notifierStub) StockAlert(ctx context.Context, brandName, batchNumber, status string) {
	s.mu.Lock()
	s.alerts = append(s.alerts, status)
	s.mu.Unlock()
}

func (s *notifierStub) Alerts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.alerts...)
}

type fixture struct {
	svc      domain.Service
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	audit    *auditStub
	notifier *notifierStub
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&medicinedomain.Medicine{}, &domain.SaleRecord{}))

	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	auditRec := &auditStub{}
	notifier := &notifierStub{}

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fc,
		Repo:     repository.Provide(),
		Audit:    auditRec,
		Notifier: notifier,
	})
	return &fixture{svc: svc, db: db, node: node, clock: fc, audit: auditRec, notifier: notifier}
}

func (f *fixture) seedMedicine(t *testing.T, store, dispenser int, mutate ...func(*medicinedomain.Medicine)) *medicinedomain.Medicine {
	t.Helper()

	now := f.clock.Now()
	m := &medicinedomain.Medicine{
		ID:                 f.node.Generate(),
		BrandName:          "Amoxil",
		GenericName:        "Amoxicillin",
		DosageForm:         "Capsule",
		Strength:           "500mg",
		UnitType:           "Box",
		StoreQuantity:      store,
		DispenserQuantity:  dispenser,
		PurchaseCost:       2.5,
		SellingPrice:       4.0,
		ReorderThreshold:   10,
		ExpiryDate:         now.AddDate(1, 0, 0),
		ReceivedDate:       now.AddDate(0, -1, 0),
		BatchNumber:        "B-1001",
		PrescriptionStatus: medicinedomain.PrescriptionOnly,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, fn := range mutate {
		fn(m)
	}
	m.Status = medicinedomain.DeriveStatus(m.StoreQuantity, m.DispenserQuantity, m.ReorderThreshold, m.ExpiryDate, now)
	assert.NoError(t, f.db.Create(m).Error)
	return m
}

func (f *fixture) reload(t *testing.T, id snowflake.ID) *medicinedomain.Medicine {
	t.Helper()
	var m medicinedomain.Medicine
	assert.NoError(t, f.db.Where("id = ?", id.Int64()).First(&m).Error)
	return &m
}

func TestSellDecrementsDispenserAndWritesLedger(t *testing.T) {
	f := setup(t)
	m := f.seedMedicine(t, 80, 20)

	ctx := actorcontext.WithActor(context.Background(), actorcontext.Actor{
		ID:   f.node.Generate(),
		Name: "Dana",
		Role: "pharmacist",
	})

	resp, err := f.svc.Sell(ctx, domain.Line{MedicineID: m.ID.String(), Quantity: 5})
	assert.NoError(t, err)
	assert.Equal(t, 5, resp.Quantity)
	assert.Equal(t, 20.0, resp.Total)
	assert.Equal(t, 7.5, resp.Profit)
	// Snapshots track the dispenser pool; the store pool is untouched.
	assert.Equal(t, 20, resp.StockBefore)
	assert.Equal(t, 15, resp.StockAfter)
	assert.Equal(t, string(medicinedomain.StatusAvailable), resp.Status)
	assert.Equal(t, "Dana", resp.SoldBy)

	got := f.reload(t, m.ID)
	assert.Equal(t, 80, got.StoreQuantity)
	assert.Equal(t, 15, got.DispenserQuantity)

	var record domain.SaleRecord
	assert.NoError(t, f.db.First(&record).Error)
	assert.Equal(t, m.ID, record.MedicineID)
	assert.Equal(t, "Amoxicillin", record.GenericName)
	assert.Equal(t, "Capsule", record.DosageForm)
	assert.Equal(t, "Box", record.UnitType)
	assert.Equal(t, 20, record.StockBefore)
	assert.Equal(t, 15, record.StockAfter)
	assert.Equal(t, 1, f.audit.Count())
}

func TestSellInsufficientDispenser(t *testing.T) {
	f := setup(t)
	// Plenty in store: only the dispenser pool is sellable.
	m := f.seedMedicine(t, 100, 3)

	_, err := f.svc.Sell(context.Background(), domain.Line{MedicineID: m.ID.String(), Quantity: 4})
	assert.ErrorIs(t, err, domain.ErrInsufficientDispenserStock)

	got := f.reload(t, m.ID)
	assert.Equal(t, 3, got.DispenserQuantity)

	var count int64
	assert.NoError(t, f.db.Model(&domain.SaleRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSellExpiredMedicine(t *testing.T) {
	f := setup(t)
	m := f.seedMedicine(t, 10, 10, func(m *medicinedomain.Medicine) {
		m.ExpiryDate = f.clock.Now().AddDate(0, 0, -1)
	})

	_, err := f.svc.Sell(context.Background(), domain.Line{MedicineID: m.ID.String(), Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrMedicineExpired)
}

func TestSellUnknownOrDeletedMedicine(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Sell(context.Background(), domain.Line{MedicineID: "999999", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrMedicineNotFound)

	m := f.seedMedicine(t, 10, 10, func(m *medicinedomain.Medicine) { m.IsDeleted = true })
	_, err = f.svc.Sell(context.Background(), domain.Line{MedicineID: m.ID.String(), Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrMedicineNotFound)
}

func TestSellBatchAllOrNothing(t *testing.T) {
	f := setup(t)
	a := f.seedMedicine(t, 50, 30)
	b := f.seedMedicine(t, 50, 2, func(m *medicinedomain.Medicine) {
		m.BrandName = "Panadol"
		m.BatchNumber = "B-2001"
	})

	_, err := f.svc.SellBatch(context.Background(), domain.BatchRequest{Lines: []domain.Line{
		{MedicineID: a.ID.String(), Quantity: 10},
		{MedicineID: b.ID.String(), Quantity: 5},
	}})
	assert.ErrorIs(t, err, domain.ErrInsufficientDispenserStock)

	// The failing line rolled back the whole batch.
	assert.Equal(t, 30, f.reload(t, a.ID).DispenserQuantity)
	assert.Equal(t, 2, f.reload(t, b.ID).DispenserQuantity)

	var count int64
	assert.NoError(t, f.db.Model(&domain.SaleRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSellBatchDuplicateLinesValidateCumulatively(t *testing.T) {
	f := setup(t)
	m := f.seedMedicine(t, 0, 10)

	// Each line alone fits, the pair does not.
	_, err := f.svc.SellBatch(context.Background(), domain.BatchRequest{Lines: []domain.Line{
		{MedicineID: m.ID.String(), Quantity: 6},
		{MedicineID: m.ID.String(), Quantity: 6},
	}})
	assert.ErrorIs(t, err, domain.ErrInsufficientDispenserStock)
	assert.Equal(t, 10, f.reload(t, m.ID).DispenserQuantity)
}

func TestSellBatchDuplicateLinesChainSnapshots(t *testing.T) {
	f := setup(t)
	// A stocked store pool must not leak into the snapshots.
	m := f.seedMedicine(t, 40, 10)

	resp, err := f.svc.SellBatch(context.Background(), domain.BatchRequest{Lines: []domain.Line{
		{MedicineID: m.ID.String(), Quantity: 4},
		{MedicineID: m.ID.String(), Quantity: 3},
	}})
	assert.NoError(t, err)
	assert.Len(t, resp.Sales, 2)
	assert.Equal(t, 10, resp.Sales[0].StockBefore)
	assert.Equal(t, 6, resp.Sales[0].StockAfter)
	assert.Equal(t, 6, resp.Sales[1].StockBefore)
	assert.Equal(t, 3, resp.Sales[1].StockAfter)

	assert.Equal(t, 3, f.reload(t, m.ID).DispenserQuantity)
	// One audit entry per batch, not per line.
	assert.Equal(t, 1, f.audit.Count())
}

func TestSellTriggersStockAlert(t *testing.T) {
	f := setup(t)
	m := f.seedMedicine(t, 0, 11)

	resp, err := f.svc.Sell(context.Background(), domain.Line{MedicineID: m.ID.String(), Quantity: 3})
	assert.NoError(t, err)
	assert.Equal(t, string(medicinedomain.StatusLowStock), resp.Status)
	assert.Contains(t, f.notifier.Alerts(), string(medicinedomain.StatusLowStock))

	_, err = f.svc.Sell(context.Background(), domain.Line{MedicineID: m.ID.String(), Quantity: 8})
	assert.NoError(t, err)
	assert.Contains(t, f.notifier.Alerts(), string(medicinedomain.StatusOutOfStock))
	assert.Equal(t, medicinedomain.StatusOutOfStock, f.reload(t, m.ID).Status)
}

func TestSellBatchValidation(t *testing.T) {
	f := setup(t)

	_, err := f.svc.SellBatch(context.Background(), domain.BatchRequest{})
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)

	_, err = f.svc.SellBatch(context.Background(), domain.BatchRequest{Lines: []domain.Line{
		{MedicineID: "1", Quantity: 0},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.svc.SellBatch(context.Background(), domain.BatchRequest{Lines: []domain.Line{
		{MedicineID: "nope", Quantity: 1},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

// Mirrors the common lifecycle: receive 100 to the store, move 90 to the
// dispenser, sell 85, and end up low on stock.
func TestStockLifecycle(t *testing.T) {
	f := setup(t)
	m := f.seedMedicine(t, 100, 0)

	res := f.db.Exec(`UPDATE medicines SET store_quantity = store_quantity - 90, dispenser_quantity = dispenser_quantity + 90 WHERE id = ?`, m.ID.Int64())
	assert.NoError(t, res.Error)

	resp, err := f.svc.Sell(context.Background(), domain.Line{MedicineID: m.ID.String(), Quantity: 85})
	assert.NoError(t, err)
	assert.Equal(t, 90, resp.StockBefore)
	assert.Equal(t, 5, resp.StockAfter)

	got := f.reload(t, m.ID)
	assert.Equal(t, 10, got.StoreQuantity)
	assert.Equal(t, 5, got.DispenserQuantity)
	assert.Equal(t, medicinedomain.StatusAvailable, got.Status)

	// One more sale tips the combined total under the threshold.
	_, err = f.svc.Sell(context.Background(), domain.Line{MedicineID: m.ID.String(), Quantity: 4})
	assert.NoError(t, err)
	assert.Equal(t, medicinedomain.StatusLowStock, f.reload(t, m.ID).Status)
}
