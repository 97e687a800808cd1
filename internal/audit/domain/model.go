package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Action string

const (
	ActionAdd      Action = "Add"
	ActionEdit     Action = "Edit"
	ActionDelete   Action = "Delete"
	ActionSell     Action = "Sell"
	ActionTransfer Action = "Transfer"
)

// AuditLog records who did what, in human-readable form.
type AuditLog struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID    snowflake.ID `json:"user_id" gorm:"not null;index"`
	UserName  string       `json:"user_name" gorm:"type:text;not null"`
	Action    Action       `json:"action" gorm:"type:text;not null;index"`
	Details   string       `json:"details" gorm:"type:text;not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (AuditLog) TableName() string { return "audit_logs" }
