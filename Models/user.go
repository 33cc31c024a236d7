package Models

import (
	"gorm.io/gorm"
)

// Permission levels: 1 = client, 2 = accounting, 3 = admin, 4 = superadmin
const (
	PermissionClient     = 1
	PermissionAccounting = 2
	PermissionAdmin      = 3
	PermissionSuperAdmin = 4
)

type User struct {
	gorm.Model
	Name         string `json:"name" gorm:"size:255;not null"`
	Email        string `json:"email" gorm:"size:255;not null;uniqueIndex"`
	Password     []byte `json:"-" gorm:"not null"`
	MobileNumber string `json:"mobile_number" gorm:"size:50"`
	Permission   int    `json:"permission" gorm:"not null;default:1"`
	IsApproved   int    `json:"is_approved" gorm:"default:1"`
}
