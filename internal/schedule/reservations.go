package schedule

import (
	"time"

	"certcycle/internal/models"

	"gorm.io/gorm"
)

// Конфликт занятости: аудитор уже зарезервирован на эту дату другим аудитом.
type Conflict struct {
	AuditorID   uint
	AuditorName string
	Date        time.Time
	CompanyName string
	AuditType   models.AuditType
}

// AssignedAuditorIDs — группа ∪ {ведущий}, без дублей.
func AssignedAuditorIDs(tx *gorm.DB, audit *models.CycleAudit) ([]uint, error) {
	ids := make([]uint, 0, 4)
	seen := make(map[uint]bool)
	if audit.LeadAuditorID != nil {
		ids = append(ids, *audit.LeadAuditorID)
		seen[*audit.LeadAuditorID] = true
	}
	var team []models.AuditTeamMember
	if err := tx.Where("audit_id = ?", audit.ID).Find(&team).Error; err != nil {
		return nil, err
	}
	for _, m := range team {
		if !seen[m.AuditorID] {
			ids = append(ids, m.AuditorID)
			seen[m.AuditorID] = true
		}
	}
	return ids, nil
}

// SyncReservations пересобирает строки резервации аудита так, чтобы они
// точно равнялись (группа ∪ ведущий) × даты AuditDay. Вызывается после
// каждой смены группы, ведущего или набора дней.
func SyncReservations(tx *gorm.DB, audit *models.CycleAudit) error {
	if err := tx.Unscoped().
		Where("audit_id = ?", audit.ID).
		Delete(&models.AuditorReservation{}).Error; err != nil {
		return err
	}

	auditorIDs, err := AssignedAuditorIDs(tx, audit)
	if err != nil {
		return err
	}
	if len(auditorIDs) == 0 {
		return nil
	}

	dates, err := DayDates(tx, audit.ID)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		return nil
	}

	rows := make([]models.AuditorReservation, 0, len(auditorIDs)*len(dates))
	for _, aid := range auditorIDs {
		for _, d := range dates {
			rows = append(rows, models.AuditorReservation{
				AuditorID: aid,
				Date:      d,
				AuditID:   audit.ID,
			})
		}
	}
	return tx.Create(&rows).Error
}

// Conflicts ищет резервации аудитора на заданные даты, исключая сам аудит.
// Непустой результат означает двойное бронирование.
func Conflicts(tx *gorm.DB, auditorID uint, dates []time.Time, excludeAuditID uint) ([]Conflict, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	norm := make([]time.Time, len(dates))
	for i, d := range dates {
		norm[i] = DateOnly(d)
	}

	var out []Conflict
	err := tx.Model(&models.AuditorReservation{}).
		Select("auditor_reservations.auditor_id as auditor_id, auditors.name as auditor_name, auditor_reservations.date as date, companies.name as company_name, cycle_audits.audit_type as audit_type").
		Joins("JOIN auditors ON auditors.id = auditor_reservations.auditor_id").
		Joins("JOIN cycle_audits ON cycle_audits.id = auditor_reservations.audit_id").
		Joins("JOIN certification_cycles ON certification_cycles.id = cycle_audits.cycle_id").
		Joins("JOIN companies ON companies.id = certification_cycles.company_id").
		Where("auditor_reservations.auditor_id = ?", auditorID).
		Where("auditor_reservations.date IN ?", norm).
		Where("auditor_reservations.audit_id <> ?", excludeAuditID).
		Where("auditor_reservations.deleted_at IS NULL").
		Order("auditor_reservations.date asc").
		Scan(&out).Error
	return out, err
}
