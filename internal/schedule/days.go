package schedule

import (
	"time"

	"certcycle/internal/models"

	"gorm.io/gorm"
)

// DateOnly нормализует дату к полуночи UTC; компонент даты берётся из
// зоны самого значения. Все даты в базе хранятся в этом виде.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ExpandDays раскладывает один якорный день в n дней назад:
// d, d-1, ..., d-(n-1). Выходные не фильтруются.
func ExpandDays(anchor time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	anchor = DateOnly(anchor)
	days := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, anchor.AddDate(0, 0, -i))
	}
	return days
}

// RegenerateDays пересобирает AuditDay аудита под текущие даты и бюджет.
// Плановые строки удаляются и строятся от planned_date; фактические —
// от actual_date, когда она установлена. Вызывается внутри транзакции
// сохранения аудита.
func RegenerateDays(tx *gorm.DB, audit *models.CycleAudit, budgetDays int) error {
	if err := tx.Unscoped().
		Where("audit_id = ? AND is_planned = ?", audit.ID, true).
		Delete(&models.AuditDay{}).Error; err != nil {
		return err
	}

	rows := make([]models.AuditDay, 0, budgetDays*2)
	for _, d := range ExpandDays(audit.PlannedDate, budgetDays) {
		rows = append(rows, models.AuditDay{
			AuditID:   audit.ID,
			Date:      d,
			IsPlanned: true,
		})
	}

	if err := tx.Unscoped().
		Where("audit_id = ? AND is_actual = ?", audit.ID, true).
		Delete(&models.AuditDay{}).Error; err != nil {
		return err
	}
	if audit.ActualDate != nil {
		for _, d := range ExpandDays(*audit.ActualDate, budgetDays) {
			rows = append(rows, models.AuditDay{
				AuditID:  audit.ID,
				Date:     d,
				IsActual: true,
			})
		}
	}

	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

// DayDates возвращает уникальные даты всех AuditDay аудита.
func DayDates(tx *gorm.DB, auditID uint) ([]time.Time, error) {
	var days []models.AuditDay
	if err := tx.Where("audit_id = ?", auditID).Order("date asc").Find(&days).Error; err != nil {
		return nil, err
	}
	seen := make(map[time.Time]bool, len(days))
	out := make([]time.Time, 0, len(days))
	for _, d := range days {
		key := DateOnly(d.Date)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out, nil
}
