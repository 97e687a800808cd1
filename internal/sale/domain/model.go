package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// SaleRecord is an immutable ledger entry for one dispensed line. Catalog
// fields are denormalized at the moment of sale so later edits or deletions
// of the medicine never rewrite history.
type SaleRecord struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	MedicineID snowflake.ID `json:"medicine_id" gorm:"not null;index"`

	BrandName   string `json:"brand_name" gorm:"type:text;not null"`
	GenericName string `json:"generic_name" gorm:"type:text;not null"`
	DosageForm  string `json:"dosage_form" gorm:"type:text;not null"`
	Strength    string `json:"strength" gorm:"type:text;not null"`
	UnitType    string `json:"unit_type" gorm:"type:text;not null"`
	BatchNumber string `json:"batch_number" gorm:"type:text;not null"`

	Quantity  int     `json:"quantity" gorm:"not null"`
	UnitPrice float64 `json:"unit_price" gorm:"not null"`
	UnitCost  float64 `json:"unit_cost" gorm:"not null"`
	Total     float64 `json:"total" gorm:"not null"`
	Profit    float64 `json:"profit" gorm:"not null"`

	// Dispenser-pool snapshots around this line; the store pool is untouched
	// by a sale.
	StockBefore int `json:"stock_before" gorm:"not null"`
	StockAfter  int `json:"stock_after" gorm:"not null"`

	SoldByID   int64  `json:"sold_by_id" gorm:"not null;default:0"`
	SoldByName string `json:"sold_by_name" gorm:"type:text;not null"`

	SoldAt time.Time `json:"sold_at" gorm:"not null;index"`
}

func (SaleRecord) TableName() string { return "sale_records" }
