package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/johnwalle/pharma-stock-api/internal/medicine/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, m *domain.Medicine) error {
	return db.WithContext(ctx).Create(m).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Medicine, error) {
	var m domain.Medicine
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

func (r *repo) BatchIdentityExists(ctx context.Context, db *gorm.DB, brandName, strength, batchNumber string, excludeID snowflake.ID) (bool, error) {
	var count int64
	stmt := db.WithContext(ctx).
		Model(&domain.Medicine{}).
		Where("brand_name = ? AND strength = ? AND batch_number = ?", brandName, strength, batchNumber).
		Where("is_deleted = ?", false)
	if excludeID != 0 {
		stmt = stmt.Where("id <> ?", excludeID.Int64())
	}
	if err := stmt.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, m *domain.Medicine) error {
	if m == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.Medicine{}).
		Where("id = ?", m.ID.Int64()).
		Select("*").
		Omit("id", "created_at").
		Updates(m).Error
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, id int64, at time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Medicine{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{"is_deleted": true, "updated_at": at})
	return res.RowsAffected, res.Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Medicine, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Medicine{}).
		Where("is_deleted = ?", false)

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		stmt = stmt.Where("brand_name LIKE ? OR generic_name LIKE ? OR batch_number LIKE ?", pattern, pattern, pattern)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if filter.ExpiryFrom != nil {
		stmt = stmt.Where("expiry_date >= ?", filter.ExpiryFrom.UTC())
	}
	if filter.ExpiryUntil != nil {
		stmt = stmt.Where("expiry_date <= ?", filter.ExpiryUntil.UTC())
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	stmt = stmt.Order(orderClause(filter.SortBy, filter.Order))
	if filter.Limit > 0 {
		stmt = stmt.Offset(filter.Offset).Limit(filter.Limit)
	}

	var items []domain.Medicine
	if err := stmt.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) TransferStock(ctx context.Context, db *gorm.DB, id int64, seenStore, seenDispenser, qty int, status domain.Status, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE medicines
		 SET store_quantity = store_quantity - ?,
		     dispenser_quantity = dispenser_quantity + ?,
		     status = ?,
		     updated_at = ?
		 WHERE id = ? AND is_deleted = ?
		   AND store_quantity = ? AND dispenser_quantity = ?`,
		qty,
		qty,
		status,
		at,
		id,
		false,
		seenStore,
		seenDispenser,
	)
	return res.RowsAffected, res.Error
}

var sortableColumns = map[string]bool{
	"brand_name":    true,
	"generic_name":  true,
	"expiry_date":   true,
	"received_date": true,
	"selling_price": true,
	"created_at":    true,
	"updated_at":    true,
}

func orderClause(sortBy, order string) string {
	column := strings.TrimSpace(sortBy)
	if !sortableColumns[column] {
		column = "expiry_date"
	}
	direction := "DESC"
	if strings.EqualFold(strings.TrimSpace(order), "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}
