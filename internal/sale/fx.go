package sale

import (
	"github.com/johnwalle/pharma-stock-api/internal/sale/repository"
	"github.com/johnwalle/pharma-stock-api/internal/sale/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sale.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
