package medicine

import (
	"github.com/johnwalle/pharma-stock-api/internal/medicine/repository"
	"github.com/johnwalle/pharma-stock-api/internal/medicine/service"
	"go.uber.org/fx"
)

var Module = fx.Module("medicine.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
