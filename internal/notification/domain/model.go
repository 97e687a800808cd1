package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Notification is a broadcast message for the pharmacy staff dashboard.
type Notification struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Title     string       `json:"title" gorm:"type:text;not null"`
	Message   string       `json:"message" gorm:"type:text;not null"`
	Link      *string      `json:"link,omitempty" gorm:"type:text"`
	Read      bool         `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (Notification) TableName() string { return "notifications" }
