package cycle

import (
	"fmt"
	"strings"
	"time"

	"certcycle/internal/models"
	"certcycle/internal/schedule"

	"gorm.io/gorm"
)

// MoveAudit — drag-and-drop плановой даты аудита. Идёт мимо полного
// пути сохранения, чтобы не пересобирать AuditDay дважды: проверка
// конфликтов → плановая дата → дни → резервации. При конфликте
// состояние не меняется.
func (s *Service) MoveAudit(auditID uint, newDate time.Time) (*models.CycleAudit, *Result, error) {
	var moved *models.CycleAudit
	var rejected *Result

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var audit models.CycleAudit
		if err := tx.First(&audit, auditID).Error; err != nil {
			return err
		}
		var cyc models.CertificationCycle
		if err := tx.First(&cyc, audit.CycleID).Error; err != nil {
			return err
		}

		target := schedule.DateOnly(newDate)
		if target.Equal(schedule.DateOnly(audit.PlannedDate)) {
			// перенос на ту же дату — дни и резервации не трогаем
			moved = &audit
			return nil
		}

		candidate := audit
		candidate.PlannedDate = target
		dates := CandidateDates(&cyc, &candidate)

		if res, err := s.reservationCheck(tx, &audit, dates); err != nil {
			return err
		} else if !res.Ok() {
			rejected = res
			return ErrRejected
		}

		audit.PlannedDate = target
		if err := tx.Model(&audit).Update("planned_date", target).Error; err != nil {
			return err
		}
		if err := schedule.RegenerateDays(tx, &audit, cyc.DaysFor(audit.AuditType)); err != nil {
			return err
		}
		if err := schedule.SyncReservations(tx, &audit); err != nil {
			return err
		}

		moved = &audit
		return nil
	})

	if err == ErrRejected {
		return nil, rejected, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return moved, nil, nil
}

// MoveAuditDay переносит один день аудита после проверки конфликтов
// на целевую дату.
func (s *Service) MoveAuditDay(dayID uint, newDate time.Time) (*models.AuditDay, *Result, error) {
	var moved *models.AuditDay
	var rejected *Result

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var day models.AuditDay
		if err := tx.First(&day, dayID).Error; err != nil {
			return err
		}
		var audit models.CycleAudit
		if err := tx.First(&audit, day.AuditID).Error; err != nil {
			return err
		}

		target := schedule.DateOnly(newDate)
		if target.Equal(schedule.DateOnly(day.Date)) {
			moved = &day
			return nil
		}

		if res, err := s.reservationCheck(tx, &audit, []time.Time{target}); err != nil {
			return err
		} else if !res.Ok() {
			rejected = res
			return ErrRejected
		}

		day.Date = target
		if err := tx.Model(&day).Update("date", target).Error; err != nil {
			return err
		}
		if err := schedule.SyncReservations(tx, &audit); err != nil {
			return err
		}

		moved = &day
		return nil
	})

	if err == ErrRejected {
		return nil, rejected, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return moved, nil, nil
}

// MoveAppointment — перенос встречи; резервации не участвуют.
func (s *Service) MoveAppointment(id uint, newDate time.Time) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.First(&appt, id).Error; err != nil {
		return nil, err
	}
	target := schedule.DateOnly(newDate)
	if err := s.db.Model(&appt).Update("date", target).Error; err != nil {
		return nil, err
	}
	appt.Date = target
	return &appt, nil
}

// reservationCheck прогоняет только проверку занятости для всех
// назначенных аудиторов аудита на заданных датах.
func (s *Service) reservationCheck(tx *gorm.DB, audit *models.CycleAudit, dates []time.Time) (*Result, error) {
	var res Result

	auditorIDs, err := schedule.AssignedAuditorIDs(tx, audit)
	if err != nil {
		return nil, err
	}
	for _, aid := range auditorIDs {
		conflicts, err := schedule.Conflicts(tx, aid, dates, audit.ID)
		if err != nil {
			return nil, err
		}
		if len(conflicts) == 0 {
			continue
		}
		var parts []string
		for _, c := range conflicts {
			parts = append(parts, fmt.Sprintf("%s (%s, %s)", c.Date.Format("2006-01-02"), c.CompanyName, c.AuditType))
		}
		res.add(Reason{
			Kind:      KindReservationConflict,
			Field:     "audit_team",
			Message:   fmt.Sprintf("auditor %s je već rezervisan: %s", conflicts[0].AuditorName, strings.Join(parts, "; ")),
			Conflicts: conflicts,
		})
	}
	return &res, nil
}
