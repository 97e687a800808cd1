package observability

import (
	"github.com/johnwalle/pharma-stock-api/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(metrics.New),
)
