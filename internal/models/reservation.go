package models

import (
	"time"

	"gorm.io/gorm"
)

// Производный индекс занятости: одна строка на (аудитор, дата, аудит).
// Единственный источник истины для проверок двойного бронирования.
type AuditorReservation struct {
	gorm.Model

	AuditorID uint      `gorm:"index:idx_reservation,unique;index:idx_res_auditor_date"`
	Date      time.Time `gorm:"index:idx_reservation,unique;index:idx_res_auditor_date"`
	AuditID   uint      `gorm:"index:idx_reservation,unique"`

	Auditor Auditor
	Audit   CycleAudit `gorm:"constraint:OnDelete:CASCADE"`
}
