package Models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityLog records who did what to which record. Every workflow mutation
// appends one row.
type ActivityLog struct {
	gorm.Model
	UserID   uint           `json:"user_id" gorm:"index"`
	UserName string         `json:"user_name" gorm:"size:255"`
	Action   string         `json:"action" gorm:"size:100;not null;index"`
	Entity   string         `json:"entity" gorm:"size:50;not null;index"`
	EntityID uint           `json:"entity_id" gorm:"index"`
	Detail   datatypes.JSON `json:"detail"`
}
