package models

import "gorm.io/gorm"

type AuditorCategory string

const (
	CategoryLeadAuditor     AuditorCategory = "lead_auditor"
	CategoryAuditor         AuditorCategory = "auditor"
	CategoryTechnicalExpert AuditorCategory = "technical_expert"
	CategoryTrainer         AuditorCategory = "trainer"
)

// Аудитор. Технический эксперт квалифицируется напрямую по IAF/EAC кодам,
// остальные категории — через стандарты (AuditorStandard), коды висят на связи.
type Auditor struct {
	gorm.Model
	Name     string          `gorm:"size:255;not null"`
	Email    string          `gorm:"size:255"`
	Phone    string          `gorm:"size:50"`
	Category AuditorCategory `gorm:"type:varchar(30);not null"`
	Active   bool            `gorm:"default:true"`

	Standards   []AuditorStandard
	DirectCodes []AuditorIAFEACCode
}

func (a *Auditor) IsTechnicalExpert() bool {
	return a.Category == CategoryTechnicalExpert
}

// Связь "аудитор → стандарт"
type AuditorStandard struct {
	gorm.Model

	AuditorID  uint `gorm:"index:idx_auditor_standard,unique"`
	StandardID uint `gorm:"index:idx_auditor_standard,unique"`

	Auditor  Auditor
	Standard Standard

	Codes []AuditorStandardIAFEACCode
}

// IAF/EAC коды на связи "аудитор-стандарт"; максимум один primary на связь
type AuditorStandardIAFEACCode struct {
	gorm.Model

	AuditorStandardID uint `gorm:"index:idx_audstd_code,unique"`
	CodeID            uint `gorm:"index:idx_audstd_code,unique"`
	IsPrimary         bool `gorm:"default:false"`

	AuditorStandard AuditorStandard
	Code            IAFEACCode
}

// Прямые IAF/EAC коды технического эксперта; максимум один primary на аудитора
type AuditorIAFEACCode struct {
	gorm.Model

	AuditorID uint `gorm:"index:idx_auditor_code,unique"`
	CodeID    uint `gorm:"index:idx_auditor_code,unique"`
	IsPrimary bool `gorm:"default:false"`

	Auditor Auditor
	Code    IAFEACCode
}
