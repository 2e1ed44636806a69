package cycle

import (
	"testing"
	"time"

	"certcycle/internal/database"
	"certcycle/internal/models"
	"certcycle/internal/schedule"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, database.Migrate(db), "failed to migrate test database")
	return db
}

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func makeStandard(t *testing.T, db *gorm.DB, code string) *models.Standard {
	s := models.Standard{Code: code, Name: "ISO " + code, Active: true}
	require.NoError(t, db.Create(&s).Error)
	return &s
}

func makeCompany(t *testing.T, db *gorm.DB, name string) *models.Company {
	c := models.Company{Name: name}
	require.NoError(t, db.Create(&c).Error)
	return &c
}

// цикл из сценария 1: стандарты {9001, 14001}, бюджеты 3/2/3,
// planirani datum 2025-03-10
func makeScenarioCycle(t *testing.T, db *gorm.DB) (*Service, *models.CertificationCycle) {
	svc := NewService(db)
	company := makeCompany(t, db, "Kompanija X")
	s9001 := makeStandard(t, db, "9001")
	s14001 := makeStandard(t, db, "14001")

	cyc, err := svc.CreateCycle(CreateCycleInput{
		CompanyID:           company.ID,
		PlannedDate:         d(2025, 3, 10),
		StandardIDs:         []uint{s9001.ID, s14001.ID},
		InitialDays:         decimal.NewFromInt(3),
		SurveillanceDays:    decimal.NewFromInt(2),
		RecertificationDays: decimal.NewFromInt(3),
		IsFirstCycle:        true,
	})
	require.NoError(t, err)
	return svc, cyc
}

func auditByType(t *testing.T, db *gorm.DB, cycleID uint, at models.AuditType) *models.CycleAudit {
	var audit models.CycleAudit
	require.NoError(t, db.Where("cycle_id = ? AND audit_type = ?", cycleID, at).First(&audit).Error)
	return &audit
}

func TestRoundDays(t *testing.T) {
	assert.Equal(t, 2, models.RoundDays(decimal.NewFromFloat(1.5)))
	assert.Equal(t, 1, models.RoundDays(decimal.NewFromFloat(1.0)))
	assert.Equal(t, 3, models.RoundDays(decimal.NewFromFloat(2.5)))
	// ceil, а не "≥ .5": любая дробная часть идёт вверх
	assert.Equal(t, 2, models.RoundDays(decimal.NewFromFloat(1.2)))
	// отрицательный бюджет не даёт отрицательного числа дней
	assert.Equal(t, 0, models.RoundDays(decimal.NewFromFloat(-1.5)))
	assert.Equal(t, 0, models.RoundDays(decimal.Zero))
}

func TestCreateFirstCycle(t *testing.T) {
	db := setupTestDB(t)
	_, cyc := makeScenarioCycle(t, db)

	assert.True(t, cyc.IsIntegratedSystem)

	initial := auditByType(t, db, cyc.ID, models.AuditInitial)
	assert.Equal(t, models.AuditCompleted, initial.Status)
	require.NotNil(t, initial.ActualDate)
	assert.Equal(t, d(2025, 3, 10), schedule.DateOnly(*initial.ActualDate))

	dates, err := schedule.DayDates(db, initial.ID)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{d(2025, 3, 8), d(2025, 3, 9), d(2025, 3, 10)}, dates)

	// surveillance_1: 2025-03-10 + 365 − 2 = 2026-03-08
	surv1 := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	assert.Equal(t, d(2026, 3, 8), schedule.DateOnly(surv1.PlannedDate))
	assert.Equal(t, models.AuditPlanned, surv1.Status)
}

func TestIntegratedSystemFlag(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	company := makeCompany(t, db, "Kompanija Y")
	s9001 := makeStandard(t, db, "9001")
	s27001 := makeStandard(t, db, "27001")
	s45001 := makeStandard(t, db, "45001")

	cyc, err := svc.CreateCycle(CreateCycleInput{
		CompanyID:        company.ID,
		PlannedDate:      d(2025, 1, 1),
		StandardIDs:      []uint{s9001.ID, s27001.ID},
		SurveillanceDays: decimal.NewFromInt(1),
		IsFirstCycle:     true,
	})
	require.NoError(t, err)
	assert.False(t, cyc.IsIntegratedSystem)

	// второй стандарт из тройки {9001, 14001, 45001} включает флаг
	require.NoError(t, svc.AddStandard(cyc.ID, s45001.ID))
	var reloaded models.CertificationCycle
	require.NoError(t, db.First(&reloaded, cyc.ID).Error)
	assert.True(t, reloaded.IsIntegratedSystem)

	require.NoError(t, svc.RemoveStandard(cyc.ID, s45001.ID))
	require.NoError(t, db.First(&reloaded, cyc.ID).Error)
	assert.False(t, reloaded.IsIntegratedSystem)
}

func TestCompleteSurveillance1MaterializesSurveillance2(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)

	surv1 := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	actual := d(2026, 3, 9)
	saved, rejected, err := svc.SaveAudit(surv1.ID, SaveAuditInput{
		Intent:     IntentComplete,
		ActualDate: &actual,
	})
	require.NoError(t, err)
	require.Nil(t, rejected)
	assert.Equal(t, models.AuditCompleted, saved.Status)

	// 2026-03-09 + 365 − 2 = 2027-03-07
	surv2 := auditByType(t, db, cyc.ID, models.AuditSurveillance2)
	assert.Equal(t, d(2027, 3, 7), schedule.DateOnly(surv2.PlannedDate))
}

func TestActualDateAutoPromotes(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)

	surv1 := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	actual := d(2026, 3, 8)
	saved, rejected, err := svc.SaveAudit(surv1.ID, SaveAuditInput{
		Intent:     IntentEdit,
		ActualDate: &actual,
	})
	require.NoError(t, err)
	require.Nil(t, rejected)
	assert.Equal(t, models.AuditCompleted, saved.Status)
}

func TestCompleteWithoutActualRejected(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)

	surv1 := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	_, rejected, err := svc.SaveAudit(surv1.ID, SaveAuditInput{Intent: IntentComplete})
	require.NoError(t, err)
	require.NotNil(t, rejected)
	assert.Equal(t, KindInvalidTransition, rejected.Reasons[0].Kind)

	// состояние не изменилось
	reloaded := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	assert.Equal(t, models.AuditPlanned, reloaded.Status)
}

func TestCancelWithActualRejected(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)

	initial := auditByType(t, db, cyc.ID, models.AuditInitial)
	_, rejected, err := svc.SaveAudit(initial.ID, SaveAuditInput{Intent: IntentCancel})
	require.NoError(t, err)
	require.NotNil(t, rejected)
	assert.Equal(t, KindInvalidTransition, rejected.Reasons[0].Kind)
}

func TestPostponeAndReplan(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)

	surv1 := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	saved, rejected, err := svc.SaveAudit(surv1.ID, SaveAuditInput{Intent: IntentPostpone})
	require.NoError(t, err)
	require.Nil(t, rejected)
	assert.Equal(t, models.AuditPostponed, saved.Status)

	// новая плановая дата возвращает отложенный аудит в planned
	newDate := d(2026, 4, 1)
	saved, rejected, err = svc.SaveAudit(surv1.ID, SaveAuditInput{
		Intent:      IntentEdit,
		PlannedDate: &newDate,
	})
	require.NoError(t, err)
	require.Nil(t, rejected)
	assert.Equal(t, models.AuditPlanned, saved.Status)
	assert.Equal(t, d(2026, 4, 1), schedule.DateOnly(saved.PlannedDate))
}

func TestDuplicateAuditTypeRejected(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)

	_, rejected, err := svc.AddAudit(cyc.ID, models.AuditSurveillance1, d(2026, 5, 1))
	require.NoError(t, err)
	require.NotNil(t, rejected)
	assert.Equal(t, KindDuplicateAuditType, rejected.Reasons[0].Kind)

	// special разрешён в любом количестве
	_, rejected, err = svc.AddAudit(cyc.ID, models.AuditSpecial, d(2026, 5, 1))
	require.NoError(t, err)
	assert.Nil(t, rejected)
	_, rejected, err = svc.AddAudit(cyc.ID, models.AuditSpecial, d(2026, 6, 1))
	require.NoError(t, err)
	assert.Nil(t, rejected)
}

// surveillance_2 и recertification требуют предшественника в цикле
func TestAddAuditRequiresPredecessor(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)

	// в свежем цикле есть initial и surveillance_1, но не surveillance_2
	_, rejected, err := svc.AddAudit(cyc.ID, models.AuditRecertification, d(2028, 3, 6))
	require.NoError(t, err)
	require.NotNil(t, rejected)
	assert.Equal(t, KindInvalidTransition, rejected.Reasons[0].Kind)

	_, rejected, err = svc.AddAudit(cyc.ID, models.AuditSurveillance2, d(2027, 3, 7))
	require.NoError(t, err)
	require.Nil(t, rejected)

	_, rejected, err = svc.AddAudit(cyc.ID, models.AuditRecertification, d(2028, 3, 6))
	require.NoError(t, err)
	assert.Nil(t, rejected)
}

func TestImportModeSuppressesChaining(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)

	surv1 := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	actual := d(2026, 3, 9)
	_, rejected, err := svc.SaveAudit(surv1.ID, SaveAuditInput{
		Intent:     IntentComplete,
		ActualDate: &actual,
		ImportMode: true,
	})
	require.NoError(t, err)
	require.Nil(t, rejected)

	var count int64
	db.Model(&models.CycleAudit{}).
		Where("cycle_id = ? AND audit_type = ?", cyc.ID, models.AuditSurveillance2).
		Count(&count)
	assert.Zero(t, count)
}

func TestRecertificationFallbackWithoutBudget(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	company := makeCompany(t, db, "Kompanija Z")
	s9001 := makeStandard(t, db, "9001")

	cyc, err := svc.CreateCycle(CreateCycleInput{
		CompanyID:        company.ID,
		PlannedDate:      d(2025, 1, 10),
		StandardIDs:      []uint{s9001.ID},
		SurveillanceDays: decimal.NewFromInt(1),
		IsFirstCycle:     true,
	})
	require.NoError(t, err)

	for _, at := range []models.AuditType{models.AuditSurveillance1, models.AuditSurveillance2} {
		audit := auditByType(t, db, cyc.ID, at)
		actual := schedule.DateOnly(audit.PlannedDate)
		_, rejected, err := svc.SaveAudit(audit.ID, SaveAuditInput{Intent: IntentComplete, ActualDate: &actual})
		require.NoError(t, err)
		require.Nil(t, rejected)
	}

	surv2 := auditByType(t, db, cyc.ID, models.AuditSurveillance2)
	recert := auditByType(t, db, cyc.ID, models.AuditRecertification)
	expected := schedule.DateOnly(*surv2.ActualDate).AddDate(0, 0, 365-30)
	assert.Equal(t, expected, schedule.DateOnly(recert.PlannedDate))
}

// сценарий 6: завершение ресертификации закрывает цикл и открывает преемника
func TestSuccessorCycle(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)

	complete := func(at models.AuditType, actual time.Time) {
		audit := auditByType(t, db, cyc.ID, at)
		_, rejected, err := svc.SaveAudit(audit.ID, SaveAuditInput{Intent: IntentComplete, ActualDate: &actual})
		require.NoError(t, err)
		require.Nil(t, rejected)
	}
	complete(models.AuditSurveillance1, d(2026, 3, 9))
	complete(models.AuditSurveillance2, d(2027, 3, 7))
	complete(models.AuditRecertification, d(2028, 3, 6))

	var old models.CertificationCycle
	require.NoError(t, db.First(&old, cyc.ID).Error)
	assert.Equal(t, models.CycleCompleted, old.Status)
	assert.Contains(t, old.Notes, "novi ciklus")

	var successor models.CertificationCycle
	require.NoError(t, db.Where("company_id = ? AND id <> ?", cyc.CompanyID, cyc.ID).
		First(&successor).Error)
	assert.Equal(t, d(2028, 3, 6), schedule.DateOnly(successor.PlannedDate))
	require.NotNil(t, successor.InitialConducted)
	assert.Equal(t, d(2028, 3, 6), schedule.DateOnly(*successor.InitialConducted))
	assert.Equal(t, models.CycleActive, successor.Status)
	assert.True(t, successor.IsIntegratedSystem)
	assert.True(t, successor.SurveillanceDays.Equal(old.SurveillanceDays))

	// инициального аудита у преемника нет
	var initialCount int64
	db.Model(&models.CycleAudit{}).
		Where("cycle_id = ? AND audit_type = ?", successor.ID, models.AuditInitial).
		Count(&initialCount)
	assert.Zero(t, initialCount)

	// surveillance_1: 2028-03-06 + 365 − 2 = 2029-03-04
	surv1 := auditByType(t, db, successor.ID, models.AuditSurveillance1)
	assert.Equal(t, d(2029, 3, 4), schedule.DateOnly(surv1.PlannedDate))

	// стандарты скопированы
	var stdCount int64
	db.Model(&models.CycleStandard{}).Where("cycle_id = ?", successor.ID).Count(&stdCount)
	assert.EqualValues(t, 2, stdCount)

	// ровно один преемник
	var cycleCount int64
	db.Model(&models.CertificationCycle{}).Where("company_id = ?", cyc.CompanyID).Count(&cycleCount)
	assert.EqualValues(t, 2, cycleCount)
}
