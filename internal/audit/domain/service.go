package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Service appends and reads audit entries. Record is fire-and-forget: a
// failed append is logged internally and never fails the calling operation.
type Service interface {
	Record(ctx context.Context, action Action, details string)
	List(ctx context.Context) ([]AuditLog, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, limit int) ([]AuditLog, error)
}

var ErrInvalidAction = errors.New("invalid_action")
