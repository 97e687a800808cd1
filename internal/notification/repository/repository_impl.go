package repository

import (
	"context"

	"github.com/johnwalle/pharma-stock-api/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	if n == nil {
		return nil
	}
	return db.WithContext(ctx).Create(n).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Notification, error) {
	var items []domain.Notification
	err := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Order("created_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MarkRead(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (r *repo) MarkAllRead(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("read = ?", false).
		Update("read", true).Error
}
