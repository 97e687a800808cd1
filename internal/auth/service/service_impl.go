package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/johnwalle/pharma-stock-api/internal/actorcontext"
	"github.com/johnwalle/pharma-stock-api/internal/auth/domain"
	"github.com/johnwalle/pharma-stock-api/internal/auth/password"
	"github.com/johnwalle/pharma-stock-api/internal/auth/token"
	"github.com/johnwalle/pharma-stock-api/internal/clock"
	"github.com/johnwalle/pharma-stock-api/internal/ratelimit"
	"github.com/johnwalle/pharma-stock-api/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Issuer  *token.Issuer
	Limiter *ratelimit.LoginLimiter `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	issuer  *token.Issuer
	limiter *ratelimit.LoginLimiter
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("auth.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		issuer:  p.Issuer,
		limiter: p.Limiter,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, domain.ErrInvalidEmail
	}
	if req.Password == "" {
		return nil, domain.ErrInvalidPassword
	}

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.log.Warn("login rate limit check failed", zap.Error(err))
	}
	if !allowed {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	signed, expiresAt, err := s.issuer.Issue(user, s.clock.Now())
	if err != nil {
		return nil, err
	}
	s.limiter.Reset(ctx, email)

	return &domain.LoginResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      toResponse(user),
	}, nil
}

func (s *Service) Me(ctx context.Context) (*domain.UserResponse, error) {
	actor, ok := actorcontext.ActorFromContext(ctx)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user, err := s.repo.FindByID(ctx, s.db, actor.ID.Int64())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	resp := toResponse(user)
	return &resp, nil
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	fullName := strings.TrimSpace(req.FullName)
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return nil, domain.ErrInvalidEmail
	case len(req.Password) < minPasswordLength:
		return nil, domain.ErrInvalidPassword
	case !domain.ValidRole(req.Role):
		return nil, domain.ErrInvalidRole
	}
	if fullName == "" {
		fullName = email
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           s.genID.Generate(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}

	s.log.Info("user created", zap.String("email", email), zap.String("role", string(req.Role)))
	resp := toResponse(user)
	return &resp, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]domain.UserResponse, error) {
	users, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toResponse(&users[i]))
	}
	return out, nil
}

func toResponse(user *domain.User) domain.UserResponse {
	return domain.UserResponse{
		ID:        user.ID.String(),
		FullName:  user.FullName,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
