// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RolePharmacist Role = "pharmacist"
)

func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RolePharmacist
}

// User is a staff account. Passwords are stored as Argon2id hashes.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	FullName     string       `gorm:"type:text;not null"`
	Email        string       `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string       `gorm:"type:text;not null"`
	Role         Role         `gorm:"type:text;not null"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (User) TableName() string { return "users" }
