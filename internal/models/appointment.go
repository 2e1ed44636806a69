package models

import (
	"time"

	"gorm.io/gorm"
)

// Встреча/посещение вне сертификационного цикла; показывается в календаре
type Appointment struct {
	gorm.Model

	CompanyID *uint
	Company   *Company

	Title string    `gorm:"size:255;not null"`
	Date  time.Time `gorm:"not null"`
	Notes string    `gorm:"type:text"`
}
