package models

import (
	"time"

	"gorm.io/gorm"
)

type AuditType string
type AuditStatus string

const (
	AuditInitial         AuditType = "initial"
	AuditSurveillance1   AuditType = "surveillance_1"
	AuditSurveillance2   AuditType = "surveillance_2"
	AuditRecertification AuditType = "recertification"
	AuditSpecial         AuditType = "special"

	AuditPlanned    AuditStatus = "planned"
	AuditInProgress AuditStatus = "in_progress"
	AuditCompleted  AuditStatus = "completed"
	AuditCancelled  AuditStatus = "cancelled"
	AuditPostponed  AuditStatus = "postponed"
)

// Аудит в составе цикла
type CycleAudit struct {
	gorm.Model
	CycleID uint `gorm:"index;not null"`
	Cycle   CertificationCycle

	AuditType   AuditType   `gorm:"type:varchar(20);not null"` // неизменяем после создания
	PlannedDate time.Time   `gorm:"not null"`
	ActualDate  *time.Time
	Status      AuditStatus `gorm:"type:varchar(20);not null;default:'planned'"`

	LeadAuditorID *uint
	LeadAuditor   *Auditor
	Team          []AuditTeamMember `gorm:"foreignKey:AuditID"`

	Findings        string `gorm:"type:text"`
	Recommendations string `gorm:"type:text"`
	Notes           string `gorm:"type:text"`
	ReportNumber    string `gorm:"size:64"`
	ReportSent      bool   `gorm:"default:false"`

	Days []AuditDay `gorm:"foreignKey:AuditID"`
}

// Член аудиторской группы (без ведущего)
type AuditTeamMember struct {
	gorm.Model

	AuditID   uint `gorm:"index:idx_audit_team,unique"`
	AuditorID uint `gorm:"index:idx_audit_team,unique"`

	Audit   CycleAudit `gorm:"constraint:OnDelete:CASCADE"`
	Auditor Auditor
}

// День, который аудит физически занимает; единица drag-and-drop
type AuditDay struct {
	gorm.Model

	AuditID uint       `gorm:"index;not null"`
	Audit   CycleAudit `gorm:"constraint:OnDelete:CASCADE"`

	Date      time.Time `gorm:"index;not null"`
	IsPlanned bool      `gorm:"default:false"`
	IsActual  bool      `gorm:"default:false"`
}
