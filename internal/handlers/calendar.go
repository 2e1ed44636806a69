package handlers

import (
	"net/http"
	"strconv"
	"time"

	"certcycle/internal/database"
	"certcycle/internal/models"
	"certcycle/internal/schedule"

	"github.com/gin-gonic/gin"
)

// цвета событий календаря: плановые и фактические различаются
const (
	colorPlanned   = "#3788d8"
	colorActual    = "#2e7d32"
	colorPostponed = "#f9a825"
	colorCancelled = "#9e9e9e"
	colorAppt      = "#8e24aa"
)

type calendarEvent struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Start         string         `json:"start"`
	End           string         `json:"end,omitempty"`
	AllDay        bool           `json:"allDay"`
	Color         string         `json:"color"`
	ExtendedProps map[string]any `json:"extendedProps"`
}

// CalendarFeed отдаёт аудиты (плановые и фактические наборы дней) и
// встречи за период как JSON-события. Только чтение.
func CalendarFeed(c *gin.Context) {
	start, err1 := parseEventDate(c.DefaultQuery("start", "1970-01-01"))
	end, err2 := parseEventDate(c.DefaultQuery("end", "2100-01-01"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći period"})
		return
	}
	start = schedule.DateOnly(start)
	end = schedule.DateOnly(end)

	var audits []models.CycleAudit
	if err := database.DB.
		Preload("Cycle.Company").
		Preload("Days").
		Where("planned_date BETWEEN ? AND ? OR actual_date BETWEEN ? AND ?", start, end, start, end).
		Find(&audits).Error; err != nil {
		respondError(c, err)
		return
	}

	events := make([]calendarEvent, 0, len(audits)*2)
	for i := range audits {
		events = append(events, auditEvents(&audits[i])...)
	}

	var appts []models.Appointment
	if err := database.DB.Preload("Company").
		Where("date BETWEEN ? AND ?", start, end).
		Find(&appts).Error; err != nil {
		respondError(c, err)
		return
	}
	for _, a := range appts {
		companyName := ""
		if a.Company != nil {
			companyName = a.Company.Name
		}
		events = append(events, calendarEvent{
			ID:     "appointment-" + itoa(a.ID),
			Title:  a.Title,
			Start:  a.Date.Format("2006-01-02"),
			AllDay: true,
			Color:  colorAppt,
			ExtendedProps: map[string]any{
				"company":     companyName,
				"type":        "appointment",
				"audit_type":  "",
				"status":      "",
				"cycle_id":    0,
				"eventType":   "appointment",
				"auditStatus": "planned",
				"modelType":   "Appointment",
				"notes":       a.Notes,
			},
		})
	}

	c.JSON(http.StatusOK, events)
}

// auditEvents строит до двух событий: плановый набор дней и, если есть
// фактическая дата, фактический набор.
func auditEvents(audit *models.CycleAudit) []calendarEvent {
	out := make([]calendarEvent, 0, 2)

	planned := spanOf(audit.Days, true)
	if len(planned) > 0 {
		out = append(out, auditEvent(audit, planned, false))
	} else {
		// аудит без дней (нулевой бюджет) показывается одним днём
		out = append(out, auditEvent(audit, []time.Time{schedule.DateOnly(audit.PlannedDate)}, false))
	}

	if audit.ActualDate != nil {
		actual := spanOf(audit.Days, false)
		if len(actual) == 0 {
			actual = []time.Time{schedule.DateOnly(*audit.ActualDate)}
		}
		out = append(out, auditEvent(audit, actual, true))
	}
	return out
}

func auditEvent(audit *models.CycleAudit, days []time.Time, actual bool) calendarEvent {
	first, last := days[0], days[0]
	for _, d := range days {
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	color := colorPlanned
	auditStatus := "planned"
	if actual {
		color = colorActual
		auditStatus = "completed"
	}
	switch audit.Status {
	case models.AuditPostponed:
		color = colorPostponed
	case models.AuditCancelled:
		color = colorCancelled
	}

	suffix := "-planned"
	if actual {
		suffix = "-actual"
	}
	return calendarEvent{
		ID:     "cycle_audit-" + itoa(audit.ID) + suffix,
		Title:  audit.Cycle.Company.Name + " — " + string(audit.AuditType),
		Start:  first.Format("2006-01-02"),
		End:    last.AddDate(0, 0, 1).Format("2006-01-02"),
		AllDay: true,
		Color:  color,
		ExtendedProps: map[string]any{
			"company":     audit.Cycle.Company.Name,
			"type":        "audit",
			"audit_type":  audit.AuditType,
			"status":      audit.Status,
			"cycle_id":    audit.CycleID,
			"eventType":   "cycle_audit",
			"auditStatus": auditStatus,
			"modelType":   "CycleAudit",
			"notes":       audit.Notes,
		},
	}
}

func spanOf(days []models.AuditDay, planned bool) []time.Time {
	out := make([]time.Time, 0, len(days))
	for _, d := range days {
		if (planned && d.IsPlanned) || (!planned && d.IsActual) {
			out = append(out, schedule.DateOnly(d.Date))
		}
	}
	return out
}

func itoa(id uint) string {
	return strconv.Itoa(int(id))
}
