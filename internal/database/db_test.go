package database

import (
	"testing"
	"time"

	"certcycle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// связи с нестандартными именами ключей (CycleID, AuditID) должны
// мигрировать и прогружаться
func TestMigrateAndPreloadAssociations(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, Migrate(db), "failed to migrate test database")

	company := models.Company{Name: "Kompanija X"}
	require.NoError(t, db.Create(&company).Error)
	std := models.Standard{Code: "9001", Name: "ISO 9001", Active: true}
	require.NoError(t, db.Create(&std).Error)
	auditor := models.Auditor{Name: "Ana", Category: models.CategoryAuditor, Active: true}
	require.NoError(t, db.Create(&auditor).Error)

	cyc := models.CertificationCycle{
		CompanyID:   company.ID,
		PlannedDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Status:      models.CycleActive,
	}
	require.NoError(t, db.Create(&cyc).Error)
	require.NoError(t, db.Create(&models.CycleStandard{CycleID: cyc.ID, StandardID: std.ID}).Error)

	audit := models.CycleAudit{
		CycleID:     cyc.ID,
		AuditType:   models.AuditInitial,
		PlannedDate: cyc.PlannedDate,
		Status:      models.AuditPlanned,
	}
	require.NoError(t, db.Create(&audit).Error)
	require.NoError(t, db.Create(&models.AuditTeamMember{AuditID: audit.ID, AuditorID: auditor.ID}).Error)
	require.NoError(t, db.Create(&models.AuditDay{AuditID: audit.ID, Date: cyc.PlannedDate, IsPlanned: true}).Error)

	var loaded models.CertificationCycle
	require.NoError(t, db.
		Preload("Standards.Standard").
		Preload("Audits.Team").
		Preload("Audits.Days").
		First(&loaded, cyc.ID).Error)

	require.Len(t, loaded.Standards, 1)
	assert.Equal(t, "9001", loaded.Standards[0].Standard.Code)
	require.Len(t, loaded.Audits, 1)
	require.Len(t, loaded.Audits[0].Team, 1)
	assert.Equal(t, auditor.ID, loaded.Audits[0].Team[0].AuditorID)
	require.Len(t, loaded.Audits[0].Days, 1)
}
