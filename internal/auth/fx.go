package auth

import (
	"time"

	"github.com/johnwalle/pharma-stock-api/internal/auth/repository"
	"github.com/johnwalle/pharma-stock-api/internal/auth/service"
	"github.com/johnwalle/pharma-stock-api/internal/auth/token"
	"github.com/johnwalle/pharma-stock-api/internal/config"
	"go.uber.org/fx"
)

func newIssuer(cfg config.Config) *token.Issuer {
	return token.NewIssuer(cfg.AuthJWTSecret, time.Duration(cfg.AuthTokenTTLHours)*time.Hour)
}

var Module = fx.Module("auth.service",
	fx.Provide(newIssuer),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
