package models

import (
	"time"

	"gorm.io/gorm"
)

// Клиент сертификационного тела
type Company struct {
	gorm.Model
	Name          string `gorm:"size:255;not null"` // Название организации
	CertificateNo string `gorm:"size:64"`           // Номер сертификата
	ImportRef     string `gorm:"size:32;index"`     // company_id из исходных таблиц импорта
	Address       string `gorm:"size:255"`
	City          string `gorm:"size:100"`
	ContactName   string `gorm:"size:255"`
	ContactEmail  string `gorm:"size:255"`
	ContactPhone  string `gorm:"size:50"`
	Notes         string `gorm:"type:text"`

	InitRegDate      *time.Time // дата первичной регистрации
	SuspensionUntil  *time.Time
	CertificateState string `gorm:"size:50"` // active / suspended / withdrawn

	Standards []CompanyStandard
	IAFCodes  []CompanyIAFEACCode
	Cycles    []CertificationCycle
}

// Связь "клиент → стандарт, по которому сертифицирован"
type CompanyStandard struct {
	gorm.Model

	CompanyID  uint `gorm:"index:idx_company_standard,unique"`
	StandardID uint `gorm:"index:idx_company_standard,unique"`

	Company  Company
	Standard Standard
}

// Связь "клиент → IAF/EAC код деятельности"; максимум один primary на клиента
type CompanyIAFEACCode struct {
	gorm.Model

	CompanyID uint `gorm:"index:idx_company_iafeac,unique"`
	CodeID    uint `gorm:"index:idx_company_iafeac,unique"`
	IsPrimary bool `gorm:"default:false"`

	Company Company
	Code    IAFEACCode
}
