package cycle

import (
	"fmt"
	"time"

	"certcycle/internal/logging"
	"certcycle/internal/models"
	"certcycle/internal/schedule"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const yearDays = 365

type Intent string

const (
	IntentEdit     Intent = "edit_metadata"
	IntentStart    Intent = "start"
	IntentComplete Intent = "complete"
	IntentPostpone Intent = "postpone"
	IntentCancel   Intent = "cancel"
)

// Сервис сертификационного цикла: создание, сохранение аудитов с
// валидацией, распространение дат и переход в следующий цикл. Все
// производные изменения (AuditDay, резервации, следующий аудит) идут
// в одной транзакции с основной строкой.
type Service struct {
	db        *gorm.DB
	validator Validator
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CreateCycleInput struct {
	CompanyID   uint
	PlannedDate time.Time // planirani datum = дата инициального аудита
	StandardIDs []uint

	// десятичные бюджеты дней, напр. 1.5; при использовании ceil
	InitialDays         decimal.Decimal
	SurveillanceDays    decimal.Decimal
	RecertificationDays decimal.Decimal

	IsFirstCycle bool
	ImportMode   bool // подавляет цепную материализацию при импорте
	Notes        string
}

// CreateCycle создаёт цикл. Для первого цикла материализуется завершённый
// инициальный аудит на planirani datum и surveillance_1 по формуле; для
// цикла-преемника инициальный не создаётся.
func (s *Service) CreateCycle(in CreateCycleInput) (*models.CertificationCycle, error) {
	var created *models.CertificationCycle

	err := s.db.Transaction(func(tx *gorm.DB) error {
		planned := schedule.DateOnly(in.PlannedDate)

		cyc := models.CertificationCycle{
			CompanyID:           in.CompanyID,
			PlannedDate:         planned,
			InitialConducted:    &planned,
			Status:              models.CycleActive,
			InitialDays:         in.InitialDays,
			SurveillanceDays:    in.SurveillanceDays,
			RecertificationDays: in.RecertificationDays,
			Notes:               in.Notes,
		}
		if err := tx.Create(&cyc).Error; err != nil {
			return err
		}

		for _, sid := range in.StandardIDs {
			cs := models.CycleStandard{CycleID: cyc.ID, StandardID: sid}
			if err := tx.Create(&cs).Error; err != nil {
				return err
			}
		}
		if err := recomputeIntegrated(tx, &cyc); err != nil {
			return err
		}

		if in.IsFirstCycle {
			// создание цикла происходит на дату инициального аудита или
			// позже, поэтому он сразу completed с фактической датой
			initial := models.CycleAudit{
				CycleID:     cyc.ID,
				AuditType:   models.AuditInitial,
				PlannedDate: planned,
				ActualDate:  &planned,
				Status:      models.AuditCompleted,
			}
			if err := tx.Create(&initial).Error; err != nil {
				return err
			}
			if err := schedule.RegenerateDays(tx, &initial, cyc.DaysFor(models.AuditInitial)); err != nil {
				return err
			}
			if err := schedule.SyncReservations(tx, &initial); err != nil {
				return err
			}
		}

		if !in.ImportMode {
			if _, err := s.materializeAudit(tx, &cyc, models.AuditSurveillance1,
				nextDate(planned, cyc.DaysFor(models.AuditSurveillance1))); err != nil {
				return err
			}
		}

		created = &cyc
		return nil
	})
	if err != nil {
		logging.LogError("cycle", "CreateCycle", "create cycle", in.CompanyID, err)
		return nil, err
	}
	return created, nil
}

type SaveAuditInput struct {
	Intent Intent

	PlannedDate *time.Time
	ActualDate  *time.Time
	ClearActual bool

	LeadAuditorID *uint
	SetLead       bool
	TeamIDs       []uint // nil — не менять группу
	SetTeam       bool

	Findings        *string
	Recommendations *string
	Notes           *string
	ReportNumber    *string
	ReportSent      *bool

	ImportMode bool
}

// SaveAudit — единственный путь изменения аудита. Порядок внутри
// транзакции: валидатор → основная строка → AuditDay → резервации →
// цепная материализация при завершении.
func (s *Service) SaveAudit(auditID uint, in SaveAuditInput) (*models.CycleAudit, *Result, error) {
	var saved *models.CycleAudit
	var rejected *Result

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var audit models.CycleAudit
		if err := tx.Preload("Team").First(&audit, auditID).Error; err != nil {
			return err
		}
		var cyc models.CertificationCycle
		if err := tx.First(&cyc, audit.CycleID).Error; err != nil {
			return err
		}

		wasCompleted := audit.Status == models.AuditCompleted

		if in.PlannedDate != nil {
			audit.PlannedDate = schedule.DateOnly(*in.PlannedDate)
		}
		if in.ActualDate != nil {
			d := schedule.DateOnly(*in.ActualDate)
			audit.ActualDate = &d
		}
		if in.ClearActual {
			audit.ActualDate = nil
		}
		if in.SetLead {
			audit.LeadAuditorID = in.LeadAuditorID
		}
		if in.Findings != nil {
			audit.Findings = *in.Findings
		}
		if in.Recommendations != nil {
			audit.Recommendations = *in.Recommendations
		}
		if in.Notes != nil {
			audit.Notes = *in.Notes
		}
		if in.ReportNumber != nil {
			audit.ReportNumber = *in.ReportNumber
		}
		if in.ReportSent != nil {
			audit.ReportSent = *in.ReportSent
		}

		teamIDs := currentTeamIDs(&audit)
		if in.SetTeam {
			teamIDs = in.TeamIDs
		}

		var res Result
		applyIntent(&audit, in.Intent, &res)
		promoteOnActual(&audit)
		checkStatusInvariants(&audit, &res)

		vres, err := s.validator.Validate(tx, &audit, audit.LeadAuditorID, teamIDs)
		if err != nil {
			return err
		}
		res.Reasons = append(res.Reasons, vres.Reasons...)

		if !res.Ok() {
			rejected = &res
			return ErrRejected
		}

		if err := tx.Omit(clause.Associations).Save(&audit).Error; err != nil {
			return err
		}
		if in.SetTeam {
			if err := replaceTeam(tx, audit.ID, teamIDs); err != nil {
				return err
			}
		}
		if err := schedule.RegenerateDays(tx, &audit, cyc.DaysFor(audit.AuditType)); err != nil {
			return err
		}
		if err := schedule.SyncReservations(tx, &audit); err != nil {
			return err
		}

		if !wasCompleted && audit.Status == models.AuditCompleted && !in.ImportMode {
			if err := s.onCompleted(tx, &cyc, &audit); err != nil {
				return err
			}
		}

		saved = &audit
		return nil
	})

	if err == ErrRejected {
		return nil, rejected, nil
	}
	if err != nil {
		logging.LogError("cycle", "SaveAudit", "save audit", auditID, err)
		return nil, nil, err
	}
	return saved, nil, nil
}

// надзорные и ресертификационный аудиты идут по порядку; инициальный
// не требуется, у циклов-преемников его нет
var auditPredecessor = map[models.AuditType]models.AuditType{
	models.AuditSurveillance2:   models.AuditSurveillance1,
	models.AuditRecertification: models.AuditSurveillance2,
}

// AddAudit создаёт дополнительный аудит в цикле; дубликаты типов,
// кроме special, запрещены, как и аудит без своего предшественника.
func (s *Service) AddAudit(cycleID uint, auditType models.AuditType, plannedDate time.Time) (*models.CycleAudit, *Result, error) {
	var created *models.CycleAudit
	var rejected *Result

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cyc models.CertificationCycle
		if err := tx.First(&cyc, cycleID).Error; err != nil {
			return err
		}

		if auditType != models.AuditSpecial {
			var count int64
			if err := tx.Model(&models.CycleAudit{}).
				Where("cycle_id = ? AND audit_type = ?", cycleID, auditType).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				rejected = &Result{Reasons: []Reason{{
					Kind:    KindDuplicateAuditType,
					Field:   "audit_type",
					Message: fmt.Sprintf("audit tipa %s već postoji u ciklusu", auditType),
				}}}
				return ErrRejected
			}
		}

		if pred, ok := auditPredecessor[auditType]; ok {
			var count int64
			if err := tx.Model(&models.CycleAudit{}).
				Where("cycle_id = ? AND audit_type = ?", cycleID, pred).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				rejected = &Result{Reasons: []Reason{{
					Kind:    KindInvalidTransition,
					Field:   "audit_type",
					Message: fmt.Sprintf("audit tipa %s zahteva prethodni %s u ciklusu", auditType, pred),
				}}}
				return ErrRejected
			}
		}

		audit, err := s.materializeAudit(tx, &cyc, auditType, schedule.DateOnly(plannedDate))
		if err != nil {
			return err
		}
		created = audit
		return nil
	})

	if err == ErrRejected {
		return nil, rejected, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return created, nil, nil
}

// onCompleted — распространение дат: завершение аудита порождает
// следующий по формуле t + 365 − round(бюджет).
func (s *Service) onCompleted(tx *gorm.DB, cyc *models.CertificationCycle, audit *models.CycleAudit) error {
	t := audit.PlannedDate
	if audit.ActualDate != nil {
		t = *audit.ActualDate
	}

	switch audit.AuditType {
	case models.AuditInitial:
		_, err := s.materializeAudit(tx, cyc, models.AuditSurveillance1,
			nextDate(t, cyc.DaysFor(models.AuditSurveillance1)))
		return err
	case models.AuditSurveillance1:
		_, err := s.materializeAudit(tx, cyc, models.AuditSurveillance2,
			nextDate(t, cyc.DaysFor(models.AuditSurveillance2)))
		return err
	case models.AuditSurveillance2:
		days := cyc.DaysFor(models.AuditRecertification)
		if days == 0 {
			days = 30
		}
		_, err := s.materializeAudit(tx, cyc, models.AuditRecertification, nextDate(t, days))
		return err
	case models.AuditRecertification:
		return s.startSuccessor(tx, cyc, t)
	}
	return nil
}

// materializeAudit — get_or_create: существующий аудит того же типа не
// дублируется, его плановая дата не трогается.
func (s *Service) materializeAudit(tx *gorm.DB, cyc *models.CertificationCycle, auditType models.AuditType, planned time.Time) (*models.CycleAudit, error) {
	if auditType != models.AuditSpecial {
		var existing models.CycleAudit
		err := tx.Where("cycle_id = ? AND audit_type = ?", cyc.ID, auditType).First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	audit := models.CycleAudit{
		CycleID:     cyc.ID,
		AuditType:   auditType,
		PlannedDate: planned,
		Status:      models.AuditPlanned,
	}
	if err := tx.Create(&audit).Error; err != nil {
		return nil, err
	}
	if err := schedule.RegenerateDays(tx, &audit, cyc.DaysFor(auditType)); err != nil {
		return nil, err
	}
	if err := schedule.SyncReservations(tx, &audit); err != nil {
		return nil, err
	}
	return &audit, nil
}

// startSuccessor закрывает цикл и открывает преемника: та же компания,
// флаг, бюджеты и стандарты; инициального аудита нет, surveillance_1
// считается от даты завершения ресертификации.
func (s *Service) startSuccessor(tx *gorm.DB, old *models.CertificationCycle, t time.Time) error {
	start := schedule.DateOnly(t)

	next := models.CertificationCycle{
		CompanyID:           old.CompanyID,
		PlannedDate:         start,
		InitialConducted:    &start,
		IsIntegratedSystem:  old.IsIntegratedSystem,
		Status:              models.CycleActive,
		InitialDays:         old.InitialDays,
		SurveillanceDays:    old.SurveillanceDays,
		RecertificationDays: old.RecertificationDays,
	}
	if err := tx.Create(&next).Error; err != nil {
		return err
	}

	var standards []models.CycleStandard
	if err := tx.Where("cycle_id = ?", old.ID).Find(&standards).Error; err != nil {
		return err
	}
	for _, cs := range standards {
		row := models.CycleStandard{CycleID: next.ID, StandardID: cs.StandardID}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}

	if _, err := s.materializeAudit(tx, &next, models.AuditSurveillance1,
		nextDate(start, next.DaysFor(models.AuditSurveillance1))); err != nil {
		return err
	}

	note := fmt.Sprintf("Ciklus završen %s, resertifikacija sprovedena; otvoren novi ciklus #%d.",
		start.Format("2006-01-02"), next.ID)
	if old.Notes != "" {
		note = old.Notes + "\n" + note
	}
	return tx.Model(old).Updates(map[string]interface{}{
		"status": models.CycleCompleted,
		"notes":  note,
	}).Error
}

// AddStandard добавляет стандарт в цикл и пересчитывает флаг
// интегрированной системы в той же транзакции.
func (s *Service) AddStandard(cycleID, standardID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var cyc models.CertificationCycle
		if err := tx.First(&cyc, cycleID).Error; err != nil {
			return err
		}
		cs := models.CycleStandard{CycleID: cycleID, StandardID: standardID}
		if err := tx.Where(models.CycleStandard{CycleID: cycleID, StandardID: standardID}).
			FirstOrCreate(&cs).Error; err != nil {
			return err
		}
		return recomputeIntegrated(tx, &cyc)
	})
}

func (s *Service) RemoveStandard(cycleID, standardID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var cyc models.CertificationCycle
		if err := tx.First(&cyc, cycleID).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().
			Where("cycle_id = ? AND standard_id = ?", cycleID, standardID).
			Delete(&models.CycleStandard{}).Error; err != nil {
			return err
		}
		return recomputeIntegrated(tx, &cyc)
	})
}

// nextDate: t + 365 − округлённый бюджет дней
func nextDate(t time.Time, days int) time.Time {
	return schedule.DateOnly(t).AddDate(0, 0, yearDays-days)
}

// интегрированная система = минимум два из {9001, 14001, 45001}
func recomputeIntegrated(tx *gorm.DB, cyc *models.CertificationCycle) error {
	var count int64
	err := tx.Model(&models.CycleStandard{}).
		Joins("JOIN standards ON standards.id = cycle_standards.standard_id").
		Where("cycle_standards.cycle_id = ?", cyc.ID).
		Where("standards.code IN ?", models.IntegratedSystemCodes).
		Count(&count).Error
	if err != nil {
		return err
	}
	integrated := count >= 2
	if integrated == cyc.IsIntegratedSystem {
		return nil
	}
	cyc.IsIntegratedSystem = integrated
	return tx.Model(cyc).Update("is_integrated_system", integrated).Error
}

func applyIntent(audit *models.CycleAudit, intent Intent, res *Result) {
	switch intent {
	case IntentStart:
		if audit.Status != models.AuditPlanned {
			res.add(Reason{
				Kind:    KindInvalidTransition,
				Field:   "audit_status",
				Message: fmt.Sprintf("prelaz %s → in_progress nije dozvoljen", audit.Status),
			})
			return
		}
		audit.Status = models.AuditInProgress
	case IntentComplete:
		audit.Status = models.AuditCompleted
	case IntentPostpone:
		if audit.Status != models.AuditPlanned && audit.Status != models.AuditInProgress {
			res.add(Reason{
				Kind:    KindInvalidTransition,
				Field:   "audit_status",
				Message: fmt.Sprintf("prelaz %s → postponed nije dozvoljen", audit.Status),
			})
			return
		}
		audit.Status = models.AuditPostponed
	case IntentCancel:
		audit.Status = models.AuditCancelled
	case IntentEdit, "":
		// отложенный аудит с новой плановой датой возвращается в planned
		if audit.Status == models.AuditPostponed {
			audit.Status = models.AuditPlanned
		}
	}
}

// фактическая дата автоматически завершает аудит
func promoteOnActual(audit *models.CycleAudit) {
	if audit.ActualDate == nil {
		return
	}
	switch audit.Status {
	case models.AuditPlanned, models.AuditInProgress, models.AuditPostponed:
		audit.Status = models.AuditCompleted
	}
}

func checkStatusInvariants(audit *models.CycleAudit, res *Result) {
	if audit.Status == models.AuditCompleted && audit.ActualDate == nil {
		res.add(Reason{
			Kind:    KindInvalidTransition,
			Field:   "actual_date",
			Message: "završen audit mora imati datum sprovođenja",
		})
	}
	if audit.Status == models.AuditCancelled && audit.ActualDate != nil {
		res.add(Reason{
			Kind:    KindInvalidTransition,
			Field:   "actual_date",
			Message: "otkazan audit ne sme imati datum sprovođenja",
		})
	}
}

func currentTeamIDs(audit *models.CycleAudit) []uint {
	out := make([]uint, 0, len(audit.Team))
	for _, m := range audit.Team {
		out = append(out, m.AuditorID)
	}
	return out
}

func replaceTeam(tx *gorm.DB, auditID uint, teamIDs []uint) error {
	if err := tx.Unscoped().Where("audit_id = ?", auditID).
		Delete(&models.AuditTeamMember{}).Error; err != nil {
		return err
	}
	for _, aid := range teamIDs {
		row := models.AuditTeamMember{AuditID: auditID, AuditorID: aid}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
