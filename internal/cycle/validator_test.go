package cycle

import (
	"testing"

	"certcycle/internal/competency"
	"certcycle/internal/models"
	"certcycle/internal/schedule"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func makeAuditor(t *testing.T, db *gorm.DB, name string, cat models.AuditorCategory, standardIDs ...uint) *models.Auditor {
	a := models.Auditor{Name: name, Category: cat, Active: true}
	require.NoError(t, db.Create(&a).Error)
	reg := competency.New(db)
	for _, sid := range standardIDs {
		_, err := reg.AddStandard(a.ID, sid)
		require.NoError(t, err)
	}
	return &a
}

func cycleStandardIDs(t *testing.T, db *gorm.DB, cycleID uint) []uint {
	var ids []uint
	require.NoError(t, db.Model(&models.CycleStandard{}).
		Where("cycle_id = ?", cycleID).Pluck("standard_id", &ids).Error)
	return ids
}

// сценарий 3: аудитор только с 9001 не проходит в цикл {9001, 14001}
func TestLeadMissingStandard(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)

	ids := cycleStandardIDs(t, db, cyc.ID)
	lead := makeAuditor(t, db, "L", models.CategoryLeadAuditor, ids[0])

	surv1 := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	_, rejected, err := svc.SaveAudit(surv1.ID, SaveAuditInput{
		Intent:        IntentEdit,
		SetLead:       true,
		LeadAuditorID: &lead.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, rejected)
	require.Len(t, rejected.Reasons, 1)
	assert.Equal(t, KindMissingQualification, rejected.Reasons[0].Kind)
	assert.Equal(t, "lead_auditor", rejected.Reasons[0].Field)
	assert.Equal(t, []string{"14001"}, rejected.Reasons[0].Missing)

	// назначение не сохранилось
	reloaded := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	assert.Nil(t, reloaded.LeadAuditorID)
}

// сценарий 4: квалифицированный аудитор, но занятый другим аудитом
func TestLeadReservationConflict(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)
	ids := cycleStandardIDs(t, db, cyc.ID)
	m := makeAuditor(t, db, "M", models.CategoryLeadAuditor, ids...)

	// M уже ведёт аудит другой компании 2026-03-08
	other := makeCompany(t, db, "Druga kompanija")
	otherCycle, err := svc.CreateCycle(CreateCycleInput{
		CompanyID:        other.ID,
		PlannedDate:      d(2025, 3, 8),
		StandardIDs:      ids[:1],
		SurveillanceDays: decimal.NewFromInt(1),
		IsFirstCycle:     true,
	})
	require.NoError(t, err)
	otherAudit := models.CycleAudit{
		CycleID:       otherCycle.ID,
		AuditType:     models.AuditSpecial,
		PlannedDate:   d(2026, 3, 8),
		Status:        models.AuditPlanned,
		LeadAuditorID: &m.ID,
	}
	require.NoError(t, db.Create(&otherAudit).Error)
	require.NoError(t, schedule.RegenerateDays(db, &otherAudit, 1))
	require.NoError(t, schedule.SyncReservations(db, &otherAudit))

	// surveillance_1 цикла C занимает {2026-03-07, 2026-03-08}
	surv1 := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	_, rejected, err := svc.SaveAudit(surv1.ID, SaveAuditInput{
		Intent:        IntentEdit,
		SetLead:       true,
		LeadAuditorID: &m.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, rejected)
	require.Len(t, rejected.Reasons, 1)
	assert.Equal(t, KindReservationConflict, rejected.Reasons[0].Kind)
	require.Len(t, rejected.Reasons[0].Conflicts, 1)
	assert.Equal(t, d(2026, 3, 8), schedule.DateOnly(rejected.Reasons[0].Conflicts[0].Date))
	assert.Equal(t, "Druga kompanija", rejected.Reasons[0].Conflicts[0].CompanyName)
}

func TestTechnicalExpertCannotLead(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)
	te := makeAuditor(t, db, "TE", models.CategoryTechnicalExpert)

	surv1 := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	_, rejected, err := svc.SaveAudit(surv1.ID, SaveAuditInput{
		Intent:        IntentEdit,
		SetLead:       true,
		LeadAuditorID: &te.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, rejected)
	assert.Equal(t, KindCategoryViolation, rejected.Reasons[0].Kind)
}

func TestLeadCannotBeTeamMember(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)
	ids := cycleStandardIDs(t, db, cyc.ID)
	lead := makeAuditor(t, db, "L", models.CategoryLeadAuditor, ids...)

	surv1 := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	_, rejected, err := svc.SaveAudit(surv1.ID, SaveAuditInput{
		Intent:        IntentEdit,
		SetLead:       true,
		LeadAuditorID: &lead.ID,
		SetTeam:       true,
		TeamIDs:       []uint{lead.ID},
	})
	require.NoError(t, err)
	require.NotNil(t, rejected)
	assert.Equal(t, KindInvalidTransition, rejected.Reasons[0].Kind)
}

// покрытие IAF/EAC кодов клиента: технический эксперт в группе закрывает код
func TestCompanyCodeCoverage(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)
	ids := cycleStandardIDs(t, db, cyc.ID)
	reg := competency.New(db)

	code := models.IAFEACCode{Code: "03a"}
	require.NoError(t, db.Create(&code).Error)
	require.NoError(t, reg.AddCompanyCode(cyc.CompanyID, code.ID, true))

	lead := makeAuditor(t, db, "L", models.CategoryLeadAuditor, ids...)

	surv1 := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	_, rejected, err := svc.SaveAudit(surv1.ID, SaveAuditInput{
		Intent:        IntentEdit,
		SetLead:       true,
		LeadAuditorID: &lead.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, rejected)
	assert.Equal(t, KindMissingQualification, rejected.Reasons[0].Kind)
	assert.Equal(t, []string{"03a"}, rejected.Reasons[0].Missing)

	// технический эксперт с кодом 03a в группе снимает причину
	te := makeAuditor(t, db, "TE", models.CategoryTechnicalExpert)
	require.NoError(t, reg.AddDirectCode(te.ID, code.ID, true))

	saved, rejected, err := svc.SaveAudit(surv1.ID, SaveAuditInput{
		Intent:        IntentEdit,
		SetLead:       true,
		LeadAuditorID: &lead.ID,
		SetTeam:       true,
		TeamIDs:       []uint{te.ID},
	})
	require.NoError(t, err)
	require.Nil(t, rejected)
	require.NotNil(t, saved.LeadAuditorID)
	assert.Equal(t, lead.ID, *saved.LeadAuditorID)

	// резервации: (ведущий + эксперт) × 2 дня
	var resCount int64
	db.Model(&models.AuditorReservation{}).Where("audit_id = ?", surv1.ID).Count(&resCount)
	assert.EqualValues(t, 4, resCount)
}

func TestValidatorCollectsAllReasons(t *testing.T) {
	db := setupTestDB(t)
	svc, cyc := makeScenarioCycle(t, db)
	ids := cycleStandardIDs(t, db, cyc.ID)
	reg := competency.New(db)

	code := models.IAFEACCode{Code: "17"}
	require.NoError(t, db.Create(&code).Error)
	require.NoError(t, reg.AddCompanyCode(cyc.CompanyID, code.ID, true))

	// аудитор без второго стандарта и без кода — две причины сразу
	lead := makeAuditor(t, db, "L", models.CategoryLeadAuditor, ids[0])

	surv1 := auditByType(t, db, cyc.ID, models.AuditSurveillance1)
	_, rejected, err := svc.SaveAudit(surv1.ID, SaveAuditInput{
		Intent:        IntentEdit,
		SetLead:       true,
		LeadAuditorID: &lead.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, rejected)
	assert.Len(t, rejected.Reasons, 2)
}
