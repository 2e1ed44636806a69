package cycle

import (
	"fmt"
	"strings"
	"time"

	"certcycle/internal/competency"
	"certcycle/internal/models"
	"certcycle/internal/schedule"

	"gorm.io/gorm"
)

// Валидатор назначений: квалификация по стандартам цикла, покрытие
// IAF/EAC кодов клиента и конфликты занятости. Выполняется внутри
// транзакции сохранения, перед изменением основной строки.
type Validator struct{}

// Validate прогоняет все проверки и собирает каждую причину отказа.
func (v *Validator) Validate(tx *gorm.DB, audit *models.CycleAudit, leadID *uint, teamIDs []uint) (Result, error) {
	var res Result

	var cyc models.CertificationCycle
	if err := tx.Preload("Standards.Standard").
		Preload("Company.IAFCodes.Code").
		First(&cyc, audit.CycleID).Error; err != nil {
		return res, err
	}

	// ведущий не может состоять в группе
	if leadID != nil {
		for _, tid := range teamIDs {
			if tid == *leadID {
				res.add(Reason{
					Kind:    KindInvalidTransition,
					Field:   "audit_team",
					Message: "vodeći auditor ne može biti i član tima",
				})
				break
			}
		}
	}

	assigned := assignedSet(leadID, teamIDs)
	if len(assigned) == 0 {
		return res, nil
	}

	var auditors []models.Auditor
	if err := tx.Where("id IN ?", assigned).Find(&auditors).Error; err != nil {
		return res, err
	}
	byID := make(map[uint]models.Auditor, len(auditors))
	for _, a := range auditors {
		byID[a.ID] = a
	}

	reg := competency.New(tx)

	// 1. квалификация по каждому стандарту цикла; технические эксперты
	// стандарты не покрывают: в роли ведущего — нарушение категории,
	// в группе — просто пропускаются
	if leadID != nil {
		if lead, ok := byID[*leadID]; ok && lead.IsTechnicalExpert() {
			res.add(Reason{
				Kind:    KindCategoryViolation,
				Field:   "lead_auditor",
				Message: fmt.Sprintf("tehnički ekspert %s ne može biti vodeći auditor", lead.Name),
			})
		}
	}
	for _, aid := range assigned {
		a, ok := byID[aid]
		if !ok || a.IsTechnicalExpert() {
			continue
		}
		held, err := reg.Standards(aid)
		if err != nil {
			return res, err
		}
		heldSet := make(map[uint]bool, len(held))
		for _, s := range held {
			heldSet[s.ID] = true
		}
		var missing []string
		for _, cs := range cyc.Standards {
			if !heldSet[cs.StandardID] {
				missing = append(missing, cs.Standard.Code)
			}
		}
		if len(missing) > 0 {
			field := "audit_team"
			if leadID != nil && aid == *leadID {
				field = "lead_auditor"
			}
			res.add(Reason{
				Kind:    KindMissingQualification,
				Field:   field,
				Message: fmt.Sprintf("auditor %s nije kvalifikovan za standarde: %s", a.Name, strings.Join(missing, ", ")),
				Missing: missing,
			})
		}
	}

	// 2. покрытие IAF/EAC кодов клиента: каждый код должен покрыть хотя бы
	// один назначенный аудитор или технический эксперт
	if len(cyc.Company.IAFCodes) > 0 {
		covered := make(map[uint]bool)
		for _, aid := range assigned {
			codes, err := reg.EffectiveCodes(aid)
			if err != nil {
				return res, err
			}
			for _, c := range codes {
				covered[c.ID] = true
			}
		}
		var missing []string
		for _, cc := range cyc.Company.IAFCodes {
			if !covered[cc.CodeID] {
				missing = append(missing, cc.Code.Code)
			}
		}
		if len(missing) > 0 {
			res.add(Reason{
				Kind:    KindMissingQualification,
				Field:   "audit_team",
				Message: fmt.Sprintf("nijedan auditor ne pokriva IAF/EAC kodove: %s", strings.Join(missing, ", ")),
				Missing: missing,
			})
		}
	}

	// 3. конфликты занятости по кандидатным датам аудита
	dates := CandidateDates(&cyc, audit)
	for _, aid := range assigned {
		conflicts, err := schedule.Conflicts(tx, aid, dates, audit.ID)
		if err != nil {
			return res, err
		}
		if len(conflicts) == 0 {
			continue
		}
		a := byID[aid]
		var parts []string
		for _, c := range conflicts {
			parts = append(parts, fmt.Sprintf("%s (%s, %s)", c.Date.Format("2006-01-02"), c.CompanyName, c.AuditType))
		}
		res.add(Reason{
			Kind:      KindReservationConflict,
			Field:     "audit_team",
			Message:   fmt.Sprintf("auditor %s je već rezervisan: %s", a.Name, strings.Join(parts, "; ")),
			Conflicts: conflicts,
		})
	}

	return res, nil
}

// CandidateDates — даты, которые аудит займёт: якорь — фактическая дата,
// если есть, иначе плановая; глубина — округлённый бюджет цикла.
func CandidateDates(cyc *models.CertificationCycle, audit *models.CycleAudit) []time.Time {
	anchor := audit.PlannedDate
	if audit.ActualDate != nil {
		anchor = *audit.ActualDate
	}
	return schedule.ExpandDays(anchor, cyc.DaysFor(audit.AuditType))
}

func assignedSet(leadID *uint, teamIDs []uint) []uint {
	out := make([]uint, 0, len(teamIDs)+1)
	seen := make(map[uint]bool)
	if leadID != nil {
		out = append(out, *leadID)
		seen[*leadID] = true
	}
	for _, id := range teamIDs {
		if !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	return out
}
