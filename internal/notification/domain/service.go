package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type CreateRequest struct {
	Title   string  `json:"title"`
	Message string  `json:"message"`
	Link    *string `json:"link"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Notification, error)
	List(ctx context.Context) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error

	// StockAlert posts a low-stock/out-of-stock notification. Fire-and-forget:
	// failures are logged, never propagated to the stock mutation.
	StockAlert(ctx context.Context, brandName, batchNumber, status string)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, n *Notification) error
	List(ctx context.Context, db *gorm.DB) ([]Notification, error)
	MarkRead(ctx context.Context, db *gorm.DB, id int64) (int64, error)
	MarkAllRead(ctx context.Context, db *gorm.DB) error
}

var (
	ErrNotFound       = errors.New("notification_not_found")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidTitle   = errors.New("invalid_title")
	ErrInvalidMessage = errors.New("invalid_message")
)
