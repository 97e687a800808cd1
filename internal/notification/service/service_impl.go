package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/johnwalle/pharma-stock-api/internal/clock"
	"github.com/johnwalle/pharma-stock-api/internal/notification/domain"
	"github.com/johnwalle/pharma-stock-api/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("notification.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Notification, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.ErrInvalidMessage
	}

	n := &domain.Notification{
		ID:        s.genID.Generate(),
		Title:     title,
		Message:   message,
		Link:      req.Link,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Notification, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.ErrInvalidID
	}
	rows, err := s.repo.MarkRead(ctx, s.db, parsed.Int64())
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context) error {
	return s.repo.MarkAllRead(ctx, s.db)
}

func (s *Service) StockAlert(ctx context.Context, brandName, batchNumber, status string) {
	title := "Low stock alert"
	switch status {
	case "out-of-stock":
		title = "Out of stock"
	case "expired":
		title = "Expired stock"
	}
	s.metrics.RecordStockAlert(status)
	_, err := s.Create(ctx, domain.CreateRequest{
		Title:   title,
		Message: fmt.Sprintf("%s (batch %s) is %s", brandName, batchNumber, status),
	})
	if err != nil {
		s.log.Warn("failed to write stock notification",
			zap.String("brand_name", brandName),
			zap.Error(err),
		)
	}
}
