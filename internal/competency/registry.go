package competency

import (
	"errors"

	"certcycle/internal/models"

	"gorm.io/gorm"
)

// Нарушение инварианта категории: технический эксперт не может иметь
// стандарты, остальные категории — прямые IAF/EAC коды.
var ErrCategoryViolation = errors.New("category violation")

type Registry struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Standards возвращает стандарты аудитора; для технического эксперта
// всегда пустой набор.
func (r *Registry) Standards(auditorID uint) ([]models.Standard, error) {
	var out []models.Standard
	err := r.db.
		Joins("JOIN auditor_standards ON auditor_standards.standard_id = standards.id").
		Where("auditor_standards.auditor_id = ? AND auditor_standards.deleted_at IS NULL", auditorID).
		Find(&out).Error
	return out, err
}

// EffectiveCodes: для технического эксперта — прямые коды, иначе
// объединение кодов по всем его стандартам.
func (r *Registry) EffectiveCodes(auditorID uint) ([]models.IAFEACCode, error) {
	var auditor models.Auditor
	if err := r.db.First(&auditor, auditorID).Error; err != nil {
		return nil, err
	}

	var out []models.IAFEACCode
	if auditor.IsTechnicalExpert() {
		err := r.db.
			Joins("JOIN auditor_iafeac_codes ON auditor_iafeac_codes.code_id = iafeac_codes.id").
			Where("auditor_iafeac_codes.auditor_id = ? AND auditor_iafeac_codes.deleted_at IS NULL", auditorID).
			Find(&out).Error
		return out, err
	}

	err := r.db.Distinct("iafeac_codes.*").
		Joins("JOIN auditor_standard_iafeac_codes ON auditor_standard_iafeac_codes.code_id = iafeac_codes.id").
		Joins("JOIN auditor_standards ON auditor_standards.id = auditor_standard_iafeac_codes.auditor_standard_id").
		Where("auditor_standards.auditor_id = ? AND auditor_standards.deleted_at IS NULL AND auditor_standard_iafeac_codes.deleted_at IS NULL", auditorID).
		Find(&out).Error
	return out, err
}

// HoldsStandard — быстрый ответ на "квалифицирован ли по стандарту"
func (r *Registry) HoldsStandard(auditorID, standardID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.AuditorStandard{}).
		Where("auditor_id = ? AND standard_id = ?", auditorID, standardID).
		Count(&count).Error
	return count > 0, err
}

func (r *Registry) AddStandard(auditorID, standardID uint) (*models.AuditorStandard, error) {
	var auditor models.Auditor
	if err := r.db.First(&auditor, auditorID).Error; err != nil {
		return nil, err
	}
	if auditor.IsTechnicalExpert() {
		return nil, ErrCategoryViolation
	}

	link := models.AuditorStandard{AuditorID: auditorID, StandardID: standardID}
	err := r.db.Where(models.AuditorStandard{AuditorID: auditorID, StandardID: standardID}).
		FirstOrCreate(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *Registry) RemoveStandard(auditorID, standardID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var link models.AuditorStandard
		if err := tx.Where("auditor_id = ? AND standard_id = ?", auditorID, standardID).
			First(&link).Error; err != nil {
			return err
		}
		// коды на связи уходят вместе с ней
		if err := tx.Unscoped().Where("auditor_standard_id = ?", link.ID).
			Delete(&models.AuditorStandardIAFEACCode{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&link).Error
	})
}

// AddDirectCode вешает IAF/EAC код напрямую на аудитора; разрешено
// только техническим экспертам.
func (r *Registry) AddDirectCode(auditorID, codeID uint, isPrimary bool) error {
	var auditor models.Auditor
	if err := r.db.First(&auditor, auditorID).Error; err != nil {
		return err
	}
	if !auditor.IsTechnicalExpert() {
		return ErrCategoryViolation
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.AuditorIAFEACCode{}).
			Where("auditor_id = ?", auditorID).
			Count(&count).Error; err != nil {
			return err
		}
		// первый код в группе становится primary
		if count == 0 {
			isPrimary = true
		}
		if isPrimary {
			if err := tx.Model(&models.AuditorIAFEACCode{}).
				Where("auditor_id = ?", auditorID).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}

		link := models.AuditorIAFEACCode{AuditorID: auditorID, CodeID: codeID}
		if err := tx.Where(models.AuditorIAFEACCode{AuditorID: auditorID, CodeID: codeID}).
			FirstOrCreate(&link).Error; err != nil {
			return err
		}
		if link.IsPrimary != isPrimary {
			return tx.Model(&link).Update("is_primary", isPrimary).Error
		}
		return nil
	})
}

func (r *Registry) RemoveDirectCode(auditorID, codeID uint) error {
	return r.db.Unscoped().
		Where("auditor_id = ? AND code_id = ?", auditorID, codeID).
		Delete(&models.AuditorIAFEACCode{}).Error
}

// AddStandardCode вешает код на связь "аудитор-стандарт"
func (r *Registry) AddStandardCode(auditorStandardID, codeID uint, isPrimary bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var link models.AuditorStandard
		if err := tx.First(&link, auditorStandardID).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.AuditorStandardIAFEACCode{}).
			Where("auditor_standard_id = ?", auditorStandardID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			isPrimary = true
		}
		if isPrimary {
			if err := tx.Model(&models.AuditorStandardIAFEACCode{}).
				Where("auditor_standard_id = ?", auditorStandardID).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}

		row := models.AuditorStandardIAFEACCode{AuditorStandardID: auditorStandardID, CodeID: codeID}
		if err := tx.Where(models.AuditorStandardIAFEACCode{AuditorStandardID: auditorStandardID, CodeID: codeID}).
			FirstOrCreate(&row).Error; err != nil {
			return err
		}
		if row.IsPrimary != isPrimary {
			return tx.Model(&row).Update("is_primary", isPrimary).Error
		}
		return nil
	})
}

// AddCompanyCode — коды деятельности клиента живут по тому же правилу
// primary, поэтому ведутся здесь же
func (r *Registry) AddCompanyCode(companyID, codeID uint, isPrimary bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.CompanyIAFEACCode{}).
			Where("company_id = ?", companyID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			isPrimary = true
		}
		if isPrimary {
			if err := tx.Model(&models.CompanyIAFEACCode{}).
				Where("company_id = ?", companyID).
				Update("is_primary", false).Error; err != nil {
				return err
			}
		}

		row := models.CompanyIAFEACCode{CompanyID: companyID, CodeID: codeID}
		if err := tx.Where(models.CompanyIAFEACCode{CompanyID: companyID, CodeID: codeID}).
			FirstOrCreate(&row).Error; err != nil {
			return err
		}
		if row.IsPrimary != isPrimary {
			return tx.Model(&row).Update("is_primary", isPrimary).Error
		}
		return nil
	})
}
