package Models

import (
	"gorm.io/gorm"
)

// CarouselEntry is an admin-managed image shown on the landing page.
type CarouselEntry struct {
	gorm.Model
	Title         string `json:"title" gorm:"size:255"`
	Caption       string `json:"caption" gorm:"size:500"`
	ImageFileName string `json:"image_file_name" gorm:"size:255;not null"`
	SortOrder     int    `json:"sort_order" gorm:"default:0"`
	Active        bool   `json:"active" gorm:"default:true"`
}
