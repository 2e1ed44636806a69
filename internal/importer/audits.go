package importer

import (
	"fmt"

	"certcycle/internal/cycle"
	"certcycle/internal/models"

	"github.com/xuri/excelize/v2"
)

var legacyColumns = []string{
	"naredne_provere_id", "company_id", "first_surv_due", "first_surv_cond",
	"second_surv_due", "second_surv_cond", "trinial_audit_due", "trinial_audit_cond",
	"status_id",
}

// ImportAudits читает legacy-лист надзорных проверок и переносит даты в
// цикловую модель. Компания ищется по import_ref из листа компаний;
// строки без совпадения помечаются пропущенными — legacy-only компании
// не угадываются.
func (im *Importer) ImportAudits(path, sheet string) (*Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return &Report{}, nil
	}

	cols := columnIndex(rows[0], legacyColumns)
	report := &Report{}

	for i, raw := range rows[1:] {
		rowNum := i + 2

		ref := cell(raw, cols["company_id"])
		if ref == "" {
			report.skip(rowNum, "company_id je prazan")
			continue
		}

		var company models.Company
		if err := im.db.Where("import_ref = ?", ref).First(&company).Error; err != nil {
			report.skip(rowNum, "kompanija samo u legacy listu, preskočena: "+ref)
			continue
		}

		var cyc models.CertificationCycle
		if err := im.db.Where("company_id = ? AND status = ?", company.ID, models.CycleActive).
			Order("planned_date desc").First(&cyc).Error; err != nil {
			report.skip(rowNum, "kompanija nema aktivan ciklus: "+ref)
			continue
		}

		ok := true
		ok = im.importLegacyAudit(&cyc, models.AuditSurveillance1,
			cell(raw, cols["first_surv_due"]), cell(raw, cols["first_surv_cond"]), rowNum, report) && ok
		ok = im.importLegacyAudit(&cyc, models.AuditSurveillance2,
			cell(raw, cols["second_surv_due"]), cell(raw, cols["second_surv_cond"]), rowNum, report) && ok
		ok = im.importLegacyAudit(&cyc, models.AuditRecertification,
			cell(raw, cols["trinial_audit_due"]), cell(raw, cols["trinial_audit_cond"]), rowNum, report) && ok

		if ok {
			report.Updated++
		}
	}

	return report, nil
}

func (im *Importer) importLegacyAudit(cyc *models.CertificationCycle, auditType models.AuditType, dueRaw, condRaw string, rowNum int, report *Report) bool {
	due, err := ParseDate(dueRaw)
	if err != nil {
		report.skip(rowNum, fmt.Sprintf("%s: %v", auditType, err))
		return false
	}
	cond, err := ParseDate(condRaw)
	if err != nil {
		report.skip(rowNum, fmt.Sprintf("%s: %v", auditType, err))
		return false
	}
	if due == nil && cond == nil {
		return true
	}

	planned := due
	if planned == nil {
		planned = cond
	}

	audit, rejected, err := im.cycles.AddAudit(cyc.ID, auditType, *planned)
	if err != nil {
		report.skip(rowNum, fmt.Sprintf("%s: %v", auditType, err))
		return false
	}
	if rejected != nil {
		report.skip(rowNum, fmt.Sprintf("%s: %s", auditType, rejected.Reasons[0].Message))
		return false
	}

	if cond == nil {
		return true
	}

	_, rejected, err = im.cycles.SaveAudit(audit.ID, cycle.SaveAuditInput{
		Intent:     cycle.IntentComplete,
		ActualDate: cond,
		ImportMode: true,
	})
	if err != nil {
		report.skip(rowNum, fmt.Sprintf("%s: %v", auditType, err))
		return false
	}
	if rejected != nil {
		report.skip(rowNum, fmt.Sprintf("%s: %s", auditType, rejected.Reasons[0].Message))
		return false
	}
	return true
}
