package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the derived availability of a medicine. It is never written
// directly by callers; every mutation recomputes it via DeriveStatus.
type Status string

const (
	StatusAvailable  Status = "available"
	StatusLowStock   Status = "low-stock"
	StatusOutOfStock Status = "out-of-stock"
	StatusExpired    Status = "expired"
)

type PrescriptionStatus string

const (
	PrescriptionOnly       PrescriptionStatus = "Prescription"
	PrescriptionOTC        PrescriptionStatus = "OTC"
	PrescriptionControlled PrescriptionStatus = "Controlled"
)

func ValidPrescriptionStatus(value PrescriptionStatus) bool {
	switch value {
	case PrescriptionOnly, PrescriptionOTC, PrescriptionControlled:
		return true
	default:
		return false
	}
}

const DefaultReorderThreshold = 10

// Medicine is the inventory record for one batch of a product. Stock is held
// in two pools: StoreQuantity (bulk) and DispenserQuantity (point of sale).
type Medicine struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	BrandName   string       `json:"brand_name" gorm:"type:text;not null;index:ux_medicines_batch_identity,priority:1"`
	GenericName string       `json:"generic_name" gorm:"type:text;not null"`
	DosageForm  string       `json:"dosage_form" gorm:"type:text;not null"`
	Strength    string       `json:"strength" gorm:"type:text;not null;index:ux_medicines_batch_identity,priority:2"`
	UnitType    string       `json:"unit_type" gorm:"type:text;not null"`

	StoreQuantity     int  `json:"store_quantity" gorm:"not null;default:0"`
	DispenserQuantity int  `json:"dispenser_quantity" gorm:"not null;default:0"`
	SubUnitQuantity   *int `json:"sub_unit_quantity,omitempty"`

	PurchaseCost float64 `json:"purchase_cost" gorm:"not null;default:0"`
	SellingPrice float64 `json:"selling_price" gorm:"not null"`

	ReorderThreshold int `json:"reorder_threshold" gorm:"not null;default:10"`

	ExpiryDate   time.Time `json:"expiry_date" gorm:"not null;index"`
	ReceivedDate time.Time `json:"received_date" gorm:"not null"`
	BatchNumber  string    `json:"batch_number" gorm:"type:text;not null;index:ux_medicines_batch_identity,priority:3"`

	StorageConditions *string `json:"storage_conditions,omitempty" gorm:"type:text"`
	SupplierInfo      *string `json:"supplier_info,omitempty" gorm:"type:text"`
	StorageLocation   *string `json:"storage_location,omitempty" gorm:"type:text"`

	PrescriptionStatus PrescriptionStatus `json:"prescription_status" gorm:"type:text;not null"`

	Status   Status  `json:"status" gorm:"type:text;not null;index:ix_medicines_deleted_status,priority:2"`
	ImageURL string  `json:"image_url" gorm:"type:text"`
	Notes    *string `json:"notes,omitempty" gorm:"type:text"`

	IsDeleted bool `json:"-" gorm:"not null;default:false;index:ix_medicines_deleted_status,priority:1"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Medicine) TableName() string { return "medicines" }

// TotalStock is the combined store + dispenser quantity.
func (m *Medicine) TotalStock() int {
	return m.StoreQuantity + m.DispenserQuantity
}
