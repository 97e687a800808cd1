package domain

import (
	"context"
	"time"

	medicinedomain "github.com/johnwalle/pharma-stock-api/internal/medicine/domain"
	"gorm.io/gorm"
)

type Repository interface {
	FindMedicine(ctx context.Context, db *gorm.DB, id int64) (*medicinedomain.Medicine, error)

	// ApplySale executes the conditional dispenser decrement. The WHERE clause
	// is keyed on the dispenser quantity the caller read, so zero rows affected
	// means a concurrent writer interleaved.
	ApplySale(ctx context.Context, db *gorm.DB, id int64, seenDispenser, qty int, status medicinedomain.Status, at time.Time) (int64, error)

	InsertRecords(ctx context.Context, db *gorm.DB, records []SaleRecord) error
	ListBetween(ctx context.Context, db *gorm.DB, from, until time.Time) ([]SaleRecord, error)
}
