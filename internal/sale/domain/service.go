package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Sell dispenses a single line. Equivalent to SellBatch with one line.
	Sell(ctx context.Context, line Line) (*Response, error)

	// SellBatch dispenses every line or none of them. Lines naming the same
	// medicine are validated against their combined quantity.
	SellBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error)
}

type Line struct {
	MedicineID string `json:"medicine_id"`
	Quantity   int    `json:"quantity"`
}

type BatchRequest struct {
	Lines []Line `json:"items"`
}

type Response struct {
	ID          string    `json:"id"`
	MedicineID  string    `json:"medicine_id"`
	BrandName   string    `json:"brand_name"`
	GenericName string    `json:"generic_name"`
	DosageForm  string    `json:"dosage_form"`
	Strength    string    `json:"strength"`
	UnitType    string    `json:"unit_type"`
	BatchNumber string    `json:"batch_number"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	Total       float64   `json:"total"`
	Profit      float64   `json:"profit"`
	StockBefore int       `json:"stock_before"`
	StockAfter  int       `json:"stock_after"`
	Status      string    `json:"status"`
	SoldBy      string    `json:"sold_by"`
	SoldAt      time.Time `json:"sold_at"`
}

type BatchResponse struct {
	Sales []Response `json:"sales"`
	Total float64    `json:"total"`
}

var (
	ErrEmptyBatch                 = errors.New("empty_batch")
	ErrInvalidID                  = errors.New("invalid_id")
	ErrInvalidQuantity            = errors.New("invalid_quantity")
	ErrMedicineNotFound           = errors.New("medicine_not_found")
	ErrMedicineExpired            = errors.New("medicine_expired")
	ErrInsufficientDispenserStock = errors.New("insufficient_dispenser_stock")
	ErrConcurrentUpdate           = errors.New("concurrent_update")
)
