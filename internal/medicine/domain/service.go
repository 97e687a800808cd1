package domain

import (
	"context"
	"errors"
	"time"

	"github.com/johnwalle/pharma-stock-api/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, id string, patch UpdateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Transfer(ctx context.Context, req TransferRequest) (*Response, error)
}

type CreateRequest struct {
	BrandName   string `json:"brand_name"`
	GenericName string `json:"generic_name"`
	DosageForm  string `json:"dosage_form"`
	Strength    string `json:"strength"`
	UnitType    string `json:"unit_type"`

	StoreQuantity   int  `json:"store_quantity"`
	SubUnitQuantity *int `json:"sub_unit_quantity"`

	PurchaseCost float64 `json:"purchase_cost"`
	SellingPrice float64 `json:"selling_price"`

	ReorderThreshold *int `json:"reorder_threshold"`

	ExpiryDate   time.Time `json:"expiry_date"`
	ReceivedDate time.Time `json:"received_date"`
	BatchNumber  string    `json:"batch_number"`

	StorageConditions *string `json:"storage_conditions"`
	SupplierInfo      *string `json:"supplier_info"`
	StorageLocation   *string `json:"storage_location"`

	PrescriptionStatus PrescriptionStatus `json:"prescription_status"`
	Notes              *string            `json:"notes"`

	Image []byte `json:"-"`
}

// UpdateRequest is an explicit patch: nil means the field is unchanged.
type UpdateRequest struct {
	BrandName   *string `json:"brand_name"`
	GenericName *string `json:"generic_name"`
	DosageForm  *string `json:"dosage_form"`
	Strength    *string `json:"strength"`
	UnitType    *string `json:"unit_type"`

	StoreQuantity   *int `json:"store_quantity"`
	SubUnitQuantity *int `json:"sub_unit_quantity"`

	PurchaseCost *float64 `json:"purchase_cost"`
	SellingPrice *float64 `json:"selling_price"`

	ReorderThreshold *int `json:"reorder_threshold"`

	ExpiryDate   *time.Time `json:"expiry_date"`
	ReceivedDate *time.Time `json:"received_date"`
	BatchNumber  *string    `json:"batch_number"`

	StorageConditions *string `json:"storage_conditions"`
	SupplierInfo      *string `json:"supplier_info"`
	StorageLocation   *string `json:"storage_location"`

	PrescriptionStatus *PrescriptionStatus `json:"prescription_status"`
	Notes              *string             `json:"notes"`

	Image []byte `json:"-"`
}

type ListRequest struct {
	pagination.Pagination
	Search string
	Status string
	Expiry string // "30days" or "6months"
	SortBy string
	Order  string
}

type ListResponse struct {
	pagination.PageInfo
	Medicines []Response `json:"medicines"`
}

type TransferRequest struct {
	ID       string
	Quantity int
}

type Response struct {
	ID          string `json:"id"`
	BrandName   string `json:"brand_name"`
	GenericName string `json:"generic_name"`
	DosageForm  string `json:"dosage_form"`
	Strength    string `json:"strength"`
	UnitType    string `json:"unit_type"`

	StoreQuantity     int  `json:"store_quantity"`
	DispenserQuantity int  `json:"dispenser_quantity"`
	SubUnitQuantity   *int `json:"sub_unit_quantity,omitempty"`

	PurchaseCost float64 `json:"purchase_cost"`
	SellingPrice float64 `json:"selling_price"`

	ReorderThreshold int `json:"reorder_threshold"`

	ExpiryDate   time.Time `json:"expiry_date"`
	ReceivedDate time.Time `json:"received_date"`
	BatchNumber  string    `json:"batch_number"`

	StorageConditions *string `json:"storage_conditions,omitempty"`
	SupplierInfo      *string `json:"supplier_info,omitempty"`
	StorageLocation   *string `json:"storage_location,omitempty"`

	PrescriptionStatus PrescriptionStatus `json:"prescription_status"`

	Status   Status  `json:"status"`
	ImageURL string  `json:"image_url,omitempty"`
	Notes    *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrNotFound  = errors.New("medicine_not_found")
	ErrInvalidID = errors.New("invalid_id")

	ErrInvalidBrandName          = errors.New("invalid_brand_name")
	ErrInvalidGenericName        = errors.New("invalid_generic_name")
	ErrInvalidDosageForm         = errors.New("invalid_dosage_form")
	ErrInvalidStrength           = errors.New("invalid_strength")
	ErrInvalidUnitType           = errors.New("invalid_unit_type")
	ErrInvalidBatchNumber        = errors.New("invalid_batch_number")
	ErrInvalidPrescriptionStatus = errors.New("invalid_prescription_status")
	ErrInvalidStoreQuantity      = errors.New("invalid_store_quantity")
	ErrInvalidSubUnitQuantity    = errors.New("invalid_sub_unit_quantity")
	ErrInvalidPurchaseCost       = errors.New("invalid_purchase_cost")
	ErrInvalidSellingPrice       = errors.New("invalid_selling_price")
	ErrInvalidReorderThreshold   = errors.New("invalid_reorder_threshold")
	ErrInvalidExpiryDate         = errors.New("invalid_expiry_date")
	ErrInvalidReceivedDate       = errors.New("invalid_received_date")

	ErrInvalidQuantity        = errors.New("invalid_quantity")
	ErrInsufficientStoreStock = errors.New("insufficient_store_stock")
	ErrDuplicateBatch         = errors.New("duplicate_batch")
	ErrImageRequired          = errors.New("image_required")
	ErrImageUploadFailed      = errors.New("image_upload_failed")
	ErrConcurrentUpdate       = errors.New("concurrent_update")
)
