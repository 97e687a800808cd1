package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/johnwalle/pharma-stock-api/internal/actorcontext"
	auditdomain "github.com/johnwalle/pharma-stock-api/internal/audit/domain"
	"github.com/johnwalle/pharma-stock-api/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// listLimit caps how much history the audit endpoint returns.
const listLimit = 250

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func New(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, action auditdomain.Action, details string) {
	details = strings.TrimSpace(details)
	if action == "" || details == "" {
		return
	}

	actor, ok := actorcontext.ActorFromContext(ctx)
	if !ok {
		actor.Name = "system"
	}

	entry := auditdomain.AuditLog{
		ID:        s.genID.Generate(),
		UserID:    actor.ID,
		UserName:  actor.Name,
		Action:    action,
		Details:   details,
		CreatedAt: s.clock.Now(),
	}

	// Audit failures never fail the primary operation.
	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write audit log",
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}

func (s *Service) List(ctx context.Context) ([]auditdomain.AuditLog, error) {
	return s.repo.List(ctx, s.db, listLimit)
}
