package models

import "gorm.io/gorm"

// Каталог стандарта (ISO 9001, 14001, 45001 ...)
type Standard struct {
	gorm.Model
	Code   string `gorm:"size:16;uniqueIndex"` // краткий код: "9001", "14001"
	Name   string `gorm:"size:255;not null"`   // каноническое название
	Active bool   `gorm:"default:true"`
}

// Стандарты, по которым считается "интегрисани систем"
var IntegratedSystemCodes = []string{"9001", "14001", "45001"}
