package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/johnwalle/pharma-stock-api/internal/actorcontext"
	auditdomain "github.com/johnwalle/pharma-stock-api/internal/audit/domain"
	"github.com/johnwalle/pharma-stock-api/internal/clock"
	medicinedomain "github.com/johnwalle/pharma-stock-api/internal/medicine/domain"
	notificationdomain "github.com/johnwalle/pharma-stock-api/internal/notification/domain"
	"github.com/johnwalle/pharma-stock-api/internal/sale/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sellAttempts bounds the whole-transaction retry on lost CAS races.
const sellAttempts = 5

// errRetry signals the transaction lost a dispenser race and should be rerun.
var errRetry = errors.New("retry")

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Audit    auditdomain.Service
	Notifier notificationdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	audit    auditdomain.Service
	notifier notificationdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("sale.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		audit:    p.Audit,
		notifier: p.Notifier,
	}
}

func (s *Service) Sell(ctx context.Context, line domain.Line) (*domain.Response, error) {
	batch, err := s.SellBatch(ctx, domain.BatchRequest{Lines: []domain.Line{line}})
	if err != nil {
		return nil, err
	}
	return &batch.Sales[0], nil
}

func (s *Service) SellBatch(ctx context.Context, req domain.BatchRequest) (*domain.BatchResponse, error) {
	if len(req.Lines) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	type parsedLine struct {
		id  snowflake.ID
		qty int
	}
	lines := make([]parsedLine, 0, len(req.Lines))
	wanted := make(map[snowflake.ID]int, len(req.Lines))
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		id, err := snowflake.ParseString(strings.TrimSpace(line.MedicineID))
		if err != nil || id == 0 {
			return nil, domain.ErrInvalidID
		}
		lines = append(lines, parsedLine{id: id, qty: line.Quantity})
		wanted[id] += line.Quantity
	}

	var (
		records  []domain.SaleRecord
		statuses map[snowflake.ID]medicinedomain.Status
		depleted []*medicinedomain.Medicine
	)
	actor, ok := actorcontext.ActorFromContext(ctx)
	if !ok {
		actor.Name = "system"
	}

	for attempt := 0; attempt < sellAttempts; attempt++ {
		records = records[:0]
		statuses = make(map[snowflake.ID]medicinedomain.Status, len(wanted))
		depleted = depleted[:0]
		now := s.clock.Now()

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// Validate every line against the combined requested quantity
			// before touching any row: the batch commits whole or not at all.
			meds := make(map[snowflake.ID]*medicinedomain.Medicine, len(wanted))
			for id, qty := range wanted {
				m, err := s.repo.FindMedicine(ctx, tx, id.Int64())
				if err != nil {
					return err
				}
				if m == nil || m.IsDeleted {
					return domain.ErrMedicineNotFound
				}
				if m.ExpiryDate.Before(now) {
					return domain.ErrMedicineExpired
				}
				if qty > m.DispenserQuantity {
					return domain.ErrInsufficientDispenserStock
				}
				meds[id] = m
			}

			for id, qty := range wanted {
				m := meds[id]
				newDispenser := m.DispenserQuantity - qty
				status := medicinedomain.DeriveStatus(m.StoreQuantity, newDispenser, m.ReorderThreshold, m.ExpiryDate, now)

				rows, err := s.repo.ApplySale(ctx, tx, id.Int64(), m.DispenserQuantity, qty, status, now)
				if err != nil {
					return err
				}
				if rows == 0 {
					return errRetry
				}
				m.Status = status
				statuses[id] = status
				if status == medicinedomain.StatusLowStock || status == medicinedomain.StatusOutOfStock {
					depleted = append(depleted, m)
				}
			}

			// Ledger entries snapshot the dispenser pool around each line, with
			// a running offset so repeated lines for the same medicine chain.
			running := make(map[snowflake.ID]int, len(wanted))
			for _, line := range lines {
				m := meds[line.id]
				before := m.DispenserQuantity - running[line.id]
				running[line.id] += line.qty
				after := m.DispenserQuantity - running[line.id]

				records = append(records, domain.SaleRecord{
					ID:          s.genID.Generate(),
					MedicineID:  m.ID,
					BrandName:   m.BrandName,
					GenericName: m.GenericName,
					DosageForm:  m.DosageForm,
					Strength:    m.Strength,
					UnitType:    m.UnitType,
					BatchNumber: m.BatchNumber,
					Quantity:    line.qty,
					UnitPrice:   m.SellingPrice,
					UnitCost:    m.PurchaseCost,
					Total:       m.SellingPrice * float64(line.qty),
					Profit:      (m.SellingPrice - m.PurchaseCost) * float64(line.qty),
					StockBefore: before,
					StockAfter:  after,
					SoldByID:    actor.ID.Int64(),
					SoldByName:  actor.Name,
					SoldAt:      now,
				})
			}

			return s.repo.InsertRecords(ctx, tx, records)
		})
		if err == nil {
			return s.finishBatch(ctx, records, statuses, depleted), nil
		}
		if errors.Is(err, errRetry) {
			continue
		}
		return nil, err
	}

	return nil, domain.ErrConcurrentUpdate
}

func (s *Service) finishBatch(ctx context.Context, records []domain.SaleRecord, statuses map[snowflake.ID]medicinedomain.Status, depleted []*medicinedomain.Medicine) *domain.BatchResponse {
	resp := &domain.BatchResponse{
		Sales: make([]domain.Response, 0, len(records)),
	}

	var units int
	for _, record := range records {
		units += record.Quantity
		resp.Total += record.Total
		resp.Sales = append(resp.Sales, domain.Response{
			ID:          record.ID.String(),
			MedicineID:  record.MedicineID.String(),
			BrandName:   record.BrandName,
			GenericName: record.GenericName,
			DosageForm:  record.DosageForm,
			Strength:    record.Strength,
			UnitType:    record.UnitType,
			BatchNumber: record.BatchNumber,
			Quantity:    record.Quantity,
			UnitPrice:   record.UnitPrice,
			Total:       record.Total,
			Profit:      record.Profit,
			StockBefore: record.StockBefore,
			StockAfter:  record.StockAfter,
			Status:      string(statuses[record.MedicineID]),
			SoldBy:      record.SoldByName,
			SoldAt:      record.SoldAt,
		})
	}

	if len(records) == 1 {
		record := records[0]
		s.audit.Record(ctx, auditdomain.ActionSell,
			fmt.Sprintf("Sold %d x %s (batch %s)", record.Quantity, record.BrandName, record.BatchNumber))
	} else {
		s.audit.Record(ctx, auditdomain.ActionSell,
			fmt.Sprintf("Sold %d items across %d lines", units, len(records)))
	}

	for _, m := range depleted {
		s.notifier.StockAlert(ctx, m.BrandName, m.BatchNumber, string(m.Status))
	}
	return resp
}
