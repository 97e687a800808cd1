package report

import (
	"github.com/johnwalle/pharma-stock-api/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(service.NewService),
)
