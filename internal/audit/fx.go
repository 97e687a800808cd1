package audit

import (
	"github.com/johnwalle/pharma-stock-api/internal/audit/repository"
	"github.com/johnwalle/pharma-stock-api/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
