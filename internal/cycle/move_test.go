package cycle

import (
	"testing"
	"time"

	"certcycle/internal/models"
	"certcycle/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dayRowIDs(t *testing.T, db *gorm.DB, auditID uint) []uint {
	var ids []uint
	require.NoError(t, db.Model(&models.AuditDay{}).
		Where("audit_id = ?", auditID).Order("id asc").Pluck("id", &ids).Error)
	return ids
}

// сценарий 5: перенос surveillance_1 с 2026-03-08 на 2026-03-09
func TestMoveAuditRecomputesDays(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)

	surv1 := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	moved, rejected, err := svc.MoveAudit(surv1.ID, d(2026, 3, 9))
	require.NoError(t, err)
	require.Nil(t, rejected)
	assert.Equal(t, d(2026, 3, 9), schedule.DateOnly(moved.PlannedDate))

	dates, err := schedule.DayDates(db, surv1.ID)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{d(2026, 3, 8), d(2026, 3, 9)}, dates)
}

// перенос на ту же дату не трогает ни дни, ни резервации
func TestMoveAuditIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)
	surv1 := auditByType(t, db, cyc.ID, models.AuditSurveillance1)

	before := dayRowIDs(t, db, surv1.ID)
	_, rejected, err := svc.MoveAudit(surv1.ID, schedule.DateOnly(surv1.PlannedDate))
	require.NoError(t, err)
	require.Nil(t, rejected)
	assert.Equal(t, before, dayRowIDs(t, db, surv1.ID))
}

// при конфликте перенос не сохраняется
func TestMoveAuditConflictLeavesStateUnchanged(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)
	ids := cycleStandardIDs(t, db, cyc.ID)
	m := makeAuditor(t, db, "M", models.CategoryLeadAuditor, ids...)

	surv1 := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	_, rejected, err := svc.SaveAudit(surv1.ID, SaveAuditInput{
		Intent:        IntentEdit,
		SetLead:       true,
		LeadAuditorID: &m.ID,
	})
	require.NoError(t, err)
	require.Nil(t, rejected)

	// тот же аудитор занят другим аудитом на 2026-04-01
	other := makeCompany(t, db, "Druga kompanija")
	otherCycle := models.CertificationCycle{
		CompanyID:        other.ID,
		PlannedDate:      d(2026, 4, 1),
		Status:           models.CycleActive,
		SurveillanceDays: cyc.SurveillanceDays,
	}
	require.NoError(t, db.Create(&otherCycle).Error)
	otherAudit := models.CycleAudit{
		CycleID:       otherCycle.ID,
		AuditType:     models.AuditSurveillance1,
		PlannedDate:   d(2026, 4, 1),
		Status:        models.AuditPlanned,
		LeadAuditorID: &m.ID,
	}
	require.NoError(t, db.Create(&otherAudit).Error)
	require.NoError(t, schedule.RegenerateDays(db, &otherAudit, 2))
	require.NoError(t, schedule.SyncReservations(db, &otherAudit))

	_, rejected, err = svc.MoveAudit(surv1.ID, d(2026, 4, 1))
	require.NoError(t, err)
	require.NotNil(t, rejected)
	assert.True(t, rejected.HasConflict())

	reloaded := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	assert.Equal(t, d(2026, 3, 8), schedule.DateOnly(reloaded.PlannedDate))

	dates, err := schedule.DayDates(db, surv1.ID)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{d(2026, 3, 7), d(2026, 3, 8)}, dates)
}

func TestMoveSingleAuditDay(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)
	surv1 := auditByType(t, db, cyc.ID, models.AuditSurveillance1)

	var day models.AuditDay
	require.NoError(t, db.Where("audit_id = ?", surv1.ID).Order("date asc").First(&day).Error)

	moved, rejected, err := svc.MoveAuditDay(day.ID, d(2026, 3, 11))
	require.NoError(t, err)
	require.Nil(t, rejected)
	assert.Equal(t, d(2026, 3, 11), schedule.DateOnly(moved.Date))

	dates, err := schedule.DayDates(db, surv1.ID)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{d(2026, 3, 8), d(2026, 3, 11)}, dates)
}
