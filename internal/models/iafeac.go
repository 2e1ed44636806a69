package models

import "gorm.io/gorm"

// IAF/EAC код области активности, например "03a"
type IAFEACCode struct {
	gorm.Model
	Code        string `gorm:"size:8;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
	IAFScope    string `gorm:"size:64"` // ссылка на IAF scope (группировка)
}
