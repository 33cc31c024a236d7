package Models

import (
	"gorm.io/gorm"
)

// Notification is a user-visible message produced by workflow transitions.
// Rows are listed in the portal; delivery is also attempted over FCM.
type Notification struct {
	gorm.Model
	UserID   uint   `json:"user_id" gorm:"not null;index"`
	Title    string `json:"title" gorm:"size:255;not null"`
	Body     string `json:"body" gorm:"type:text;not null"`
	Entity   string `json:"entity" gorm:"size:50"` // origin entity kind, e.g. "project"
	EntityID uint   `json:"entity_id"`
	Read     bool   `json:"read" gorm:"default:false;index"`
}
