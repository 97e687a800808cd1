package repository

import (
	"context"
	"time"

	medicinedomain "github.com/johnwalle/pharma-stock-api/internal/medicine/domain"
	"github.com/johnwalle/pharma-stock-api/internal/sale/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindMedicine(ctx context.Context, db *gorm.DB, id int64) (*medicinedomain.Medicine, error) {
	var m medicinedomain.Medicine
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *repo) ApplySale(ctx context.Context, db *gorm.DB, id int64, seenDispenser, qty int, status medicinedomain.Status, at time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(`
		UPDATE medicines
		SET dispenser_quantity = dispenser_quantity - ?,
		    status = ?,
		    updated_at = ?
		WHERE id = ?
		  AND is_deleted = ?
		  AND dispenser_quantity = ?
	`, qty, status, at, id, false, seenDispenser)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) InsertRecords(ctx context.Context, db *gorm.DB, records []domain.SaleRecord) error {
	return db.WithContext(ctx).Create(&records).Error
}

func (r *repo) ListBetween(ctx context.Context, db *gorm.DB, from, until time.Time) ([]domain.SaleRecord, error) {
	var records []domain.SaleRecord
	err := db.WithContext(ctx).
		Where("sold_at >= ? AND sold_at < ?", from, until).
		Order("sold_at asc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
