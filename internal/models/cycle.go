package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CycleStatus string

const (
	CycleActive    CycleStatus = "active"
	CycleCompleted CycleStatus = "completed"
	CycleCancelled CycleStatus = "cancelled"
)

// Трёхлетний сертификационный цикл клиента
type CertificationCycle struct {
	gorm.Model
	CompanyID uint `gorm:"index;not null"`
	Company   Company

	PlannedDate        time.Time  `gorm:"not null"` // planirani datum = дата инициального аудита
	InitialConducted   *time.Time // datum sprovodjenja inicijalne
	IsIntegratedSystem bool       `gorm:"default:false"`
	Status             CycleStatus `gorm:"type:varchar(20);not null;default:'active'"`

	// бюджеты дней на аудит, десятичные; при использовании округляются вверх
	InitialDays         decimal.Decimal `gorm:"type:decimal(4,1)"`
	SurveillanceDays    decimal.Decimal `gorm:"type:decimal(4,1)"`
	RecertificationDays decimal.Decimal `gorm:"type:decimal(4,1)"`

	Notes string `gorm:"type:text"`

	Standards []CycleStandard `gorm:"foreignKey:CycleID"`
	Audits    []CycleAudit    `gorm:"foreignKey:CycleID"`
}

// RoundDays округляет десятичный бюджет вверх до целых дней (ceil);
// отрицательный бюджет приравнивается к нулю.
func RoundDays(d decimal.Decimal) int {
	n := int(d.Ceil().IntPart())
	if n < 0 {
		return 0
	}
	return n
}

// BudgetFor возвращает бюджет дней для типа аудита.
func (c *CertificationCycle) BudgetFor(t AuditType) decimal.Decimal {
	switch t {
	case AuditInitial:
		return c.InitialDays
	case AuditRecertification:
		return c.RecertificationDays
	default:
		// surveillance_1, surveillance_2 и special идут по надзорному бюджету
		return c.SurveillanceDays
	}
}

// DaysFor — округлённый бюджет в целых днях.
func (c *CertificationCycle) DaysFor(t AuditType) int {
	return RoundDays(c.BudgetFor(t))
}

// Стандарт в составе цикла
type CycleStandard struct {
	gorm.Model

	CycleID    uint `gorm:"index:idx_cycle_standard,unique"`
	StandardID uint `gorm:"index:idx_cycle_standard,unique"`

	Cycle    CertificationCycle
	Standard Standard
}
