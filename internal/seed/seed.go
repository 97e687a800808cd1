// Package seed bootstraps the records a fresh install needs to be usable.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/johnwalle/pharma-stock-api/internal/auth/domain"
	"github.com/johnwalle/pharma-stock-api/internal/auth/password"
	"github.com/johnwalle/pharma-stock-api/internal/config"
	"gorm.io/gorm"
)

// EnsureAdminUser creates the bootstrap admin account when none exists.
// A blank bootstrap email disables seeding.
func EnsureAdminUser(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	email := strings.ToLower(strings.TrimSpace(cfg.BootstrapAdminMail))
	if email == "" {
		return nil
	}
	if cfg.BootstrapAdminPass == "" {
		return errors.New("bootstrap admin password is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&authdomain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hash, err := password.Hash(cfg.BootstrapAdminPass)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		return tx.Create(&authdomain.User{
			ID:           node.Generate(),
			FullName:     "Administrator",
			Email:        email,
			PasswordHash: hash,
			Role:         authdomain.RoleAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
		}).Error
	})
}
