package imagestore

import (
	"github.com/johnwalle/pharma-stock-api/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module wires the HTTP-backed image store.
var Module = fx.Module("imagestore",
	fx.Provide(func(cfg config.Config, log *zap.Logger) Store {
		return NewHTTPStore(cfg.ImageUploadURL, cfg.ImageUploadPreset, log)
	}),
)
