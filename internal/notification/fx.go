package notification

import (
	"github.com/johnwalle/pharma-stock-api/internal/notification/repository"
	"github.com/johnwalle/pharma-stock-api/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
