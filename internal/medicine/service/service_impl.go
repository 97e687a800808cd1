package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/johnwalle/pharma-stock-api/internal/audit/domain"
	"github.com/johnwalle/pharma-stock-api/internal/clock"
	"github.com/johnwalle/pharma-stock-api/internal/imagestore"
	"github.com/johnwalle/pharma-stock-api/internal/medicine/domain"
	notificationdomain "github.com/johnwalle/pharma-stock-api/internal/notification/domain"
	"github.com/johnwalle/pharma-stock-api/pkg/db"
	"github.com/johnwalle/pharma-stock-api/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// transferAttempts bounds the optimistic retry loop on the conditional
// stock move before giving up with ErrConcurrentUpdate.
const transferAttempts = 5

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Images   imagestore.Store
	Audit    auditdomain.Service
	Notifier notificationdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	images   imagestore.Store
	audit    auditdomain.Service
	notifier notificationdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("medicine.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		images:   p.Images,
		audit:    p.Audit,
		notifier: p.Notifier,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	req.BrandName = strings.TrimSpace(req.BrandName)
	req.GenericName = strings.TrimSpace(req.GenericName)
	req.DosageForm = strings.TrimSpace(req.DosageForm)
	req.Strength = strings.TrimSpace(req.Strength)
	req.UnitType = strings.TrimSpace(req.UnitType)
	req.BatchNumber = strings.TrimSpace(req.BatchNumber)

	if err := validateCreate(req); err != nil {
		return nil, err
	}
	if len(req.Image) == 0 {
		return nil, domain.ErrImageRequired
	}

	exists, err := s.repo.BatchIdentityExists(ctx, s.db, req.BrandName, req.Strength, req.BatchNumber, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateBatch
	}

	// No medicine is persisted without its image.
	imageURL, err := s.images.Upload(ctx, req.Image)
	if err != nil {
		s.log.Error("image upload failed", zap.Error(err))
		return nil, domain.ErrImageUploadFailed
	}

	threshold := domain.DefaultReorderThreshold
	if req.ReorderThreshold != nil {
		threshold = *req.ReorderThreshold
	}

	now := s.clock.Now()
	m := &domain.Medicine{
		ID:                 s.genID.Generate(),
		BrandName:          req.BrandName,
		GenericName:        req.GenericName,
		DosageForm:         req.DosageForm,
		Strength:           req.Strength,
		UnitType:           req.UnitType,
		StoreQuantity:      req.StoreQuantity,
		DispenserQuantity:  0,
		SubUnitQuantity:    req.SubUnitQuantity,
		PurchaseCost:       req.PurchaseCost,
		SellingPrice:       req.SellingPrice,
		ReorderThreshold:   threshold,
		ExpiryDate:         req.ExpiryDate.UTC(),
		ReceivedDate:       req.ReceivedDate.UTC(),
		BatchNumber:        req.BatchNumber,
		StorageConditions:  normalizePtr(req.StorageConditions),
		SupplierInfo:       normalizePtr(req.SupplierInfo),
		StorageLocation:    normalizePtr(req.StorageLocation),
		PrescriptionStatus: req.PrescriptionStatus,
		ImageURL:           imageURL,
		Notes:              normalizePtr(req.Notes),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	m.Status = domain.DeriveStatus(m.StoreQuantity, m.DispenserQuantity, m.ReorderThreshold, m.ExpiryDate, now)

	if err := s.repo.Create(ctx, s.db, m); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateBatch
		}
		return nil, err
	}

	s.audit.Record(ctx, auditdomain.ActionAdd,
		fmt.Sprintf("Added medicine %s %s (batch %s)", m.BrandName, m.Strength, m.BatchNumber))

	resp := toResponse(m)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, id string, patch domain.UpdateRequest) (*domain.Response, error) {
	medicineID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	m, err := s.findActive(ctx, medicineID)
	if err != nil {
		return nil, err
	}

	if err := applyPatch(m, patch); err != nil {
		return nil, err
	}

	identityChanged := patch.BrandName != nil || patch.Strength != nil || patch.BatchNumber != nil
	if identityChanged {
		exists, err := s.repo.BatchIdentityExists(ctx, s.db, m.BrandName, m.Strength, m.BatchNumber, m.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateBatch
		}
	}

	if len(patch.Image) > 0 {
		imageURL, err := s.images.Upload(ctx, patch.Image)
		if err != nil {
			s.log.Error("image upload failed", zap.Error(err))
			return nil, domain.ErrImageUploadFailed
		}
		m.ImageURL = imageURL
	}

	now := s.clock.Now()
	m.Status = domain.DeriveStatus(m.StoreQuantity, m.DispenserQuantity, m.ReorderThreshold, m.ExpiryDate, now)
	m.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, m); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateBatch
		}
		return nil, err
	}

	s.audit.Record(ctx, auditdomain.ActionEdit,
		fmt.Sprintf("Edited medicine %s %s (batch %s)", m.BrandName, m.Strength, m.BatchNumber))
	s.alertIfDepleted(ctx, m)

	resp := toResponse(m)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	medicineID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	m, err := s.findActive(ctx, medicineID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(m)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	medicineID, err := parseID(id)
	if err != nil {
		return err
	}

	m, err := s.findActive(ctx, medicineID)
	if err != nil {
		return err
	}

	rows, err := s.repo.SoftDelete(ctx, s.db, medicineID.Int64(), s.clock.Now())
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	s.audit.Record(ctx, auditdomain.ActionDelete,
		fmt.Sprintf("Deleted medicine %s %s (batch %s)", m.BrandName, m.Strength, m.BatchNumber))
	return nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	page, limit := req.Normalize()

	filter := domain.ListFilter{
		Search: strings.TrimSpace(req.Search),
		Status: strings.TrimSpace(req.Status),
		SortBy: strings.TrimSpace(req.SortBy),
		Order:  strings.TrimSpace(req.Order),
		Offset: (page - 1) * limit,
		Limit:  limit,
	}

	now := s.clock.Now()
	switch req.Expiry {
	case "30days":
		until := now.AddDate(0, 0, 30)
		filter.ExpiryFrom = &now
		filter.ExpiryUntil = &until
	case "6months":
		until := now.AddDate(0, 6, 0)
		filter.ExpiryFrom = &now
		filter.ExpiryUntil = &until
	}

	items, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := &domain.ListResponse{
		PageInfo:  pagination.BuildPageInfo(total, page, limit),
		Medicines: make([]domain.Response, 0, len(items)),
	}
	for i := range items {
		resp.Medicines = append(resp.Medicines, toResponse(&items[i]))
	}
	return resp, nil
}

// Transfer moves quantity from the bulk store pool into the dispenser. The
// decrement and increment are one conditional UPDATE keyed on the quantities
// this call observed, retried while concurrent writers interleave.
func (s *Service) Transfer(ctx context.Context, req domain.TransferRequest) (*domain.Response, error) {
	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	medicineID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < transferAttempts; attempt++ {
		m, err := s.findActive(ctx, medicineID)
		if err != nil {
			return nil, err
		}
		if req.Quantity > m.StoreQuantity {
			return nil, domain.ErrInsufficientStoreStock
		}

		now := s.clock.Now()
		newStore := m.StoreQuantity - req.Quantity
		newDispenser := m.DispenserQuantity + req.Quantity
		status := domain.DeriveStatus(newStore, newDispenser, m.ReorderThreshold, m.ExpiryDate, now)

		rows, err := s.repo.TransferStock(ctx, s.db, medicineID.Int64(),
			m.StoreQuantity, m.DispenserQuantity, req.Quantity, status, now)
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			// Lost the race; re-read and re-validate.
			continue
		}

		m.StoreQuantity = newStore
		m.DispenserQuantity = newDispenser
		m.Status = status
		m.UpdatedAt = now

		s.audit.Record(ctx, auditdomain.ActionTransfer,
			fmt.Sprintf("Transferred %d x %s (batch %s) from store to dispenser", req.Quantity, m.BrandName, m.BatchNumber))
		s.alertIfDepleted(ctx, m)

		resp := toResponse(m)
		return &resp, nil
	}

	return nil, domain.ErrConcurrentUpdate
}

func (s *Service) findActive(ctx context.Context, id snowflake.ID) (*domain.Medicine, error) {
	m, err := s.repo.FindByID(ctx, s.db, id.Int64())
	if err != nil {
		return nil, err
	}
	if m == nil || m.IsDeleted {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func (s *Service) alertIfDepleted(ctx context.Context, m *domain.Medicine) {
	if m.Status == domain.StatusLowStock || m.Status == domain.StatusOutOfStock {
		s.notifier.StockAlert(ctx, m.BrandName, m.BatchNumber, string(m.Status))
	}
}

func validateCreate(req domain.CreateRequest) error {
	switch {
	case req.BrandName == "":
		return domain.ErrInvalidBrandName
	case req.GenericName == "":
		return domain.ErrInvalidGenericName
	case req.DosageForm == "":
		return domain.ErrInvalidDosageForm
	case req.Strength == "":
		return domain.ErrInvalidStrength
	case req.UnitType == "":
		return domain.ErrInvalidUnitType
	case req.BatchNumber == "":
		return domain.ErrInvalidBatchNumber
	}
	if !domain.ValidPrescriptionStatus(req.PrescriptionStatus) {
		return domain.ErrInvalidPrescriptionStatus
	}
	if req.StoreQuantity < 0 {
		return domain.ErrInvalidStoreQuantity
	}
	if req.SubUnitQuantity != nil && *req.SubUnitQuantity <= 0 {
		return domain.ErrInvalidSubUnitQuantity
	}
	if req.PurchaseCost < 0 {
		return domain.ErrInvalidPurchaseCost
	}
	if req.SellingPrice < 0 {
		return domain.ErrInvalidSellingPrice
	}
	if req.ReorderThreshold != nil && *req.ReorderThreshold < 0 {
		return domain.ErrInvalidReorderThreshold
	}
	if req.ExpiryDate.IsZero() {
		return domain.ErrInvalidExpiryDate
	}
	if req.ReceivedDate.IsZero() {
		return domain.ErrInvalidReceivedDate
	}
	return nil
}

// applyPatch merges the explicit patch into the row: nil fields keep their
// prior value. Merged values are validated before the caller persists.
func applyPatch(m *domain.Medicine, patch domain.UpdateRequest) error {
	if patch.BrandName != nil {
		value := strings.TrimSpace(*patch.BrandName)
		if value == "" {
			return domain.ErrInvalidBrandName
		}
		m.BrandName = value
	}
	if patch.GenericName != nil {
		value := strings.TrimSpace(*patch.GenericName)
		if value == "" {
			return domain.ErrInvalidGenericName
		}
		m.GenericName = value
	}
	if patch.DosageForm != nil {
		value := strings.TrimSpace(*patch.DosageForm)
		if value == "" {
			return domain.ErrInvalidDosageForm
		}
		m.DosageForm = value
	}
	if patch.Strength != nil {
		value := strings.TrimSpace(*patch.Strength)
		if value == "" {
			return domain.ErrInvalidStrength
		}
		m.Strength = value
	}
	if patch.UnitType != nil {
		value := strings.TrimSpace(*patch.UnitType)
		if value == "" {
			return domain.ErrInvalidUnitType
		}
		m.UnitType = value
	}
	if patch.BatchNumber != nil {
		value := strings.TrimSpace(*patch.BatchNumber)
		if value == "" {
			return domain.ErrInvalidBatchNumber
		}
		m.BatchNumber = value
	}
	if patch.StoreQuantity != nil {
		if *patch.StoreQuantity < 0 {
			return domain.ErrInvalidStoreQuantity
		}
		m.StoreQuantity = *patch.StoreQuantity
	}
	if patch.SubUnitQuantity != nil {
		if *patch.SubUnitQuantity <= 0 {
			return domain.ErrInvalidSubUnitQuantity
		}
		m.SubUnitQuantity = patch.SubUnitQuantity
	}
	if patch.PurchaseCost != nil {
		if *patch.PurchaseCost < 0 {
			return domain.ErrInvalidPurchaseCost
		}
		m.PurchaseCost = *patch.PurchaseCost
	}
	if patch.SellingPrice != nil {
		if *patch.SellingPrice < 0 {
			return domain.ErrInvalidSellingPrice
		}
		m.SellingPrice = *patch.SellingPrice
	}
	if patch.ReorderThreshold != nil {
		if *patch.ReorderThreshold < 0 {
			return domain.ErrInvalidReorderThreshold
		}
		m.ReorderThreshold = *patch.ReorderThreshold
	}
	if patch.ExpiryDate != nil {
		if patch.ExpiryDate.IsZero() {
			return domain.ErrInvalidExpiryDate
		}
		m.ExpiryDate = patch.ExpiryDate.UTC()
	}
	if patch.ReceivedDate != nil {
		if patch.ReceivedDate.IsZero() {
			return domain.ErrInvalidReceivedDate
		}
		m.ReceivedDate = patch.ReceivedDate.UTC()
	}
	if patch.StorageConditions != nil {
		m.StorageConditions = normalizePtr(patch.StorageConditions)
	}
	if patch.SupplierInfo != nil {
		m.SupplierInfo = normalizePtr(patch.SupplierInfo)
	}
	if patch.StorageLocation != nil {
		m.StorageLocation = normalizePtr(patch.StorageLocation)
	}
	if patch.PrescriptionStatus != nil {
		if !domain.ValidPrescriptionStatus(*patch.PrescriptionStatus) {
			return domain.ErrInvalidPrescriptionStatus
		}
		m.PrescriptionStatus = *patch.PrescriptionStatus
	}
	if patch.Notes != nil {
		m.Notes = normalizePtr(patch.Notes)
	}
	return nil
}

func parseID(id string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return 0, domain.ErrInvalidID
	}
	return parsed, nil
}

func toResponse(m *domain.Medicine) domain.Response {
	return domain.Response{
		ID:                 m.ID.String(),
		BrandName:          m.BrandName,
		GenericName:        m.GenericName,
		DosageForm:         m.DosageForm,
		Strength:           m.Strength,
		UnitType:           m.UnitType,
		StoreQuantity:      m.StoreQuantity,
		DispenserQuantity:  m.DispenserQuantity,
		SubUnitQuantity:    m.SubUnitQuantity,
		PurchaseCost:       m.PurchaseCost,
		SellingPrice:       m.SellingPrice,
		ReorderThreshold:   m.ReorderThreshold,
		ExpiryDate:         m.ExpiryDate,
		ReceivedDate:       m.ReceivedDate,
		BatchNumber:        m.BatchNumber,
		StorageConditions:  m.StorageConditions,
		SupplierInfo:       m.SupplierInfo,
		StorageLocation:    m.StorageLocation,
		PrescriptionStatus: m.PrescriptionStatus,
		Status:             m.Status,
		ImageURL:           m.ImageURL,
		Notes:              m.Notes,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func normalizePtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
