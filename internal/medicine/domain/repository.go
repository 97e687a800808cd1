package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Search      string
	Status      string
	ExpiryFrom  *time.Time
	ExpiryUntil *time.Time
	SortBy      string
	Order       string
	Offset      int
	Limit       int
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, m *Medicine) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Medicine, error)
	BatchIdentityExists(ctx context.Context, db *gorm.DB, brandName, strength, batchNumber string, excludeID snowflake.ID) (bool, error)
	Update(ctx context.Context, db *gorm.DB, m *Medicine) error
	SoftDelete(ctx context.Context, db *gorm.DB, id int64, at time.Time) (int64, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Medicine, int64, error)

	// TransferStock executes the conditional store→dispenser move. The WHERE
	// clause is keyed on the quantities the caller read, so zero rows affected
	// means a concurrent writer got there first.
	TransferStock(ctx context.Context, db *gorm.DB, id int64, seenStore, seenDispenser, qty int, status Status, at time.Time) (int64, error)
}
