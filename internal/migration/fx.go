package migration

import (
	auditdomain "github.com/johnwalle/pharma-stock-api/internal/audit/domain"
	authdomain "github.com/johnwalle/pharma-stock-api/internal/auth/domain"
	"github.com/johnwalle/pharma-stock-api/internal/config"
	medicinedomain "github.com/johnwalle/pharma-stock-api/internal/medicine/domain"
	notificationdomain "github.com/johnwalle/pharma-stock-api/internal/notification/domain"
	saledomain "github.com/johnwalle/pharma-stock-api/internal/sale/domain"
	"github.com/johnwalle/pharma-stock-api/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres dialects (mysql, sqlite) get the schema from the
			// model definitions directly.
			if err := conn.AutoMigrate(
				&authdomain.User{},
				&medicinedomain.Medicine{},
				&saledomain.SaleRecord{},
				&auditdomain.AuditLog{},
				&notificationdomain.Notification{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureAdminUser(conn, cfg)
	}),
)
