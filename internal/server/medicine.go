package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	medicinedomain "github.com/johnwalle/pharma-stock-api/internal/medicine/domain"
	"github.com/johnwalle/pharma-stock-api/pkg/db/pagination"
)

const dateOnlyLayout = "2006-01-02"

// maxImageBytes caps uploaded medicine images at 5 MiB.
const maxImageBytes = 5 << 20

type listMedicinesQuery struct {
	pagination.Pagination
	Search string `form:"search"`
	Status string `form:"status"`
	Expiry string `form:"expiry"`
	SortBy string `form:"sort_by"`
	Order  string `form:"order"`
}

func (s *Server) ListMedicines(c *gin.Context) {
	var query listMedicinesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.medicineSvc.List(c.Request.Context(), medicinedomain.ListRequest{
		Pagination: query.Pagination,
		Search:     query.Search,
		Status:     query.Status,
		Expiry:     query.Expiry,
		SortBy:     query.SortBy,
		Order:      query.Order,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp.Medicines, "page_info": resp.PageInfo})
}

func (s *Server) CreateMedicine(c *gin.Context) {
	req, err := bindCreateMedicineForm(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.medicineSvc.Create(c.Request.Context(), *req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetMedicine(c *gin.Context) {
	resp, err := s.medicineSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateMedicine(c *gin.Context) {
	var patch medicinedomain.UpdateRequest
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		parsed, err := bindUpdateMedicineForm(c)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		patch = *parsed
	} else if err := c.ShouldBindJSON(&patch); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.medicineSvc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteMedicine(c *gin.Context) {
	if err := s.medicineSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type transferRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) TransferMedicine(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.medicineSvc.Transfer(c.Request.Context(), medicinedomain.TransferRequest{
		ID:       c.Param("id"),
		Quantity: req.Quantity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.metrics.RecordTransfer()
	c.JSON(http.StatusOK, resp)
}

func bindCreateMedicineForm(c *gin.Context) (*medicinedomain.CreateRequest, error) {
	req := &medicinedomain.CreateRequest{
		BrandName:          c.PostForm("brand_name"),
		GenericName:        c.PostForm("generic_name"),
		DosageForm:         c.PostForm("dosage_form"),
		Strength:           c.PostForm("strength"),
		UnitType:           c.PostForm("unit_type"),
		BatchNumber:        c.PostForm("batch_number"),
		PrescriptionStatus: medicinedomain.PrescriptionStatus(c.PostForm("prescription_status")),
		StorageConditions:  optionalForm(c, "storage_conditions"),
		SupplierInfo:       optionalForm(c, "supplier_info"),
		StorageLocation:    optionalForm(c, "storage_location"),
		Notes:              optionalForm(c, "notes"),
	}

	var err error
	if req.StoreQuantity, err = formInt(c, "store_quantity"); err != nil {
		return nil, newValidationError("store_quantity", "invalid_store_quantity", "must be an integer")
	}
	if req.SubUnitQuantity, err = optionalFormInt(c, "sub_unit_quantity"); err != nil {
		return nil, newValidationError("sub_unit_quantity", "invalid_sub_unit_quantity", "must be an integer")
	}
	if req.ReorderThreshold, err = optionalFormInt(c, "reorder_threshold"); err != nil {
		return nil, newValidationError("reorder_threshold", "invalid_reorder_threshold", "must be an integer")
	}
	if req.PurchaseCost, err = formFloat(c, "purchase_cost"); err != nil {
		return nil, newValidationError("purchase_cost", "invalid_purchase_cost", "must be a number")
	}
	if req.SellingPrice, err = formFloat(c, "selling_price"); err != nil {
		return nil, newValidationError("selling_price", "invalid_selling_price", "must be a number")
	}
	if req.ExpiryDate, err = formDate(c, "expiry_date"); err != nil {
		return nil, newValidationError("expiry_date", "invalid_expiry_date", "must be a date")
	}
	if req.ReceivedDate, err = formDate(c, "received_date"); err != nil {
		return nil, newValidationError("received_date", "invalid_received_date", "must be a date")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return nil, medicinedomain.ErrImageRequired
	}
	if req.Image, err = readUpload(file); err != nil {
		return nil, err
	}
	return req, nil
}

func bindUpdateMedicineForm(c *gin.Context) (*medicinedomain.UpdateRequest, error) {
	patch := &medicinedomain.UpdateRequest{
		BrandName:         optionalForm(c, "brand_name"),
		GenericName:       optionalForm(c, "generic_name"),
		DosageForm:        optionalForm(c, "dosage_form"),
		Strength:          optionalForm(c, "strength"),
		UnitType:          optionalForm(c, "unit_type"),
		BatchNumber:       optionalForm(c, "batch_number"),
		StorageConditions: optionalForm(c, "storage_conditions"),
		SupplierInfo:      optionalForm(c, "supplier_info"),
		StorageLocation:   optionalForm(c, "storage_location"),
		Notes:             optionalForm(c, "notes"),
	}
	if value := optionalForm(c, "prescription_status"); value != nil {
		status := medicinedomain.PrescriptionStatus(*value)
		patch.PrescriptionStatus = &status
	}

	var err error
	if patch.StoreQuantity, err = optionalFormInt(c, "store_quantity"); err != nil {
		return nil, newValidationError("store_quantity", "invalid_store_quantity", "must be an integer")
	}
	if patch.SubUnitQuantity, err = optionalFormInt(c, "sub_unit_quantity"); err != nil {
		return nil, newValidationError("sub_unit_quantity", "invalid_sub_unit_quantity", "must be an integer")
	}
	if patch.ReorderThreshold, err = optionalFormInt(c, "reorder_threshold"); err != nil {
		return nil, newValidationError("reorder_threshold", "invalid_reorder_threshold", "must be an integer")
	}
	if patch.PurchaseCost, err = optionalFormFloat(c, "purchase_cost"); err != nil {
		return nil, newValidationError("purchase_cost", "invalid_purchase_cost", "must be a number")
	}
	if patch.SellingPrice, err = optionalFormFloat(c, "selling_price"); err != nil {
		return nil, newValidationError("selling_price", "invalid_selling_price", "must be a number")
	}
	if patch.ExpiryDate, err = optionalFormDate(c, "expiry_date"); err != nil {
		return nil, newValidationError("expiry_date", "invalid_expiry_date", "must be a date")
	}
	if patch.ReceivedDate, err = optionalFormDate(c, "received_date"); err != nil {
		return nil, newValidationError("received_date", "invalid_received_date", "must be a date")
	}

	if file, err := c.FormFile("image"); err == nil {
		if patch.Image, err = readUpload(file); err != nil {
			return nil, err
		}
	}
	return patch, nil
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	if file.Size > maxImageBytes {
		return nil, newValidationError("image", "image_too_large", "image exceeds the size limit")
	}
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(io.LimitReader(src, maxImageBytes))
}

func optionalForm(c *gin.Context, key string) *string {
	value, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &value
}

func formInt(c *gin.Context, key string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(c.PostForm(key)))
}

func formFloat(c *gin.Context, key string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(c.PostForm(key)), 64)
}

func formDate(c *gin.Context, key string) (time.Time, error) {
	return parseDate(c.PostForm(key))
}

func optionalFormInt(c *gin.Context, key string) (*int, error) {
	value, ok := c.GetPostForm(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func optionalFormFloat(c *gin.Context, key string) (*float64, error) {
	value, ok := c.GetPostForm(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func optionalFormDate(c *gin.Context, key string) (*time.Time, error) {
	value, ok := c.GetPostForm(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parsed, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return parsed, nil
	}
	return time.Parse(dateOnlyLayout, trimmed)
}
