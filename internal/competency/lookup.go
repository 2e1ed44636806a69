package competency

import (
	"certcycle/internal/models"
)

// QualifiedForStandards — активные аудиторы, держащие ВСЕ переданные
// стандарты; используется для фильтра выпадающих списков в UI.
func (r *Registry) QualifiedForStandards(standardIDs []uint) ([]models.Auditor, error) {
	if len(standardIDs) == 0 {
		var out []models.Auditor
		err := r.db.Where("active = ?", true).Order("name asc").Find(&out).Error
		return out, err
	}

	var out []models.Auditor
	err := r.db.
		Joins("JOIN auditor_standards ON auditor_standards.auditor_id = auditors.id AND auditor_standards.deleted_at IS NULL").
		Where("auditors.active = ?", true).
		Where("auditor_standards.standard_id IN ?", standardIDs).
		Group("auditors.id").
		Having("COUNT(DISTINCT auditor_standards.standard_id) = ?", len(standardIDs)).
		Order("auditors.name asc").
		Find(&out).Error
	return out, err
}

// QualifiedForCompany — по стандартам, на которые сертифицирован клиент.
func (r *Registry) QualifiedForCompany(companyID uint) ([]models.Auditor, error) {
	var ids []uint
	if err := r.db.Model(&models.CompanyStandard{}).
		Where("company_id = ?", companyID).
		Pluck("standard_id", &ids).Error; err != nil {
		return nil, err
	}
	return r.QualifiedForStandards(ids)
}

// QualifiedForAudit — по стандартам цикла, которому принадлежит аудит.
func (r *Registry) QualifiedForAudit(auditID uint) ([]models.Auditor, error) {
	var audit models.CycleAudit
	if err := r.db.First(&audit, auditID).Error; err != nil {
		return nil, err
	}
	var ids []uint
	if err := r.db.Model(&models.CycleStandard{}).
		Where("cycle_id = ?", audit.CycleID).
		Pluck("standard_id", &ids).Error; err != nil {
		return nil, err
	}
	return r.QualifiedForStandards(ids)
}
