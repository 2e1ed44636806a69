package handlers

import (
	"net/http"

	"certcycle/internal/cycle"
	"certcycle/internal/database"

	"github.com/gin-gonic/gin"
)

type moveRequest struct {
	EventType string `json:"eventType" binding:"required,oneof=cycle_audit audit_day appointment"`
	EventID   uint   `json:"eventId" binding:"required"`
	NewDate   string `json:"newDate" binding:"required"`
}

// MoveEvent — drag-and-drop из календаря. 409 при конфликте занятости,
// состояние при этом не меняется.
func MoveEvent(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći zahtev"})
		return
	}
	newDate, err := parseEventDate(req.NewDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći datum"})
		return
	}

	svc := cycle.NewService(database.DB)

	switch req.EventType {
	case "cycle_audit":
		audit, rejected, err := svc.MoveAudit(req.EventID, newDate)
		if err != nil {
			respondError(c, err)
			return
		}
		if rejected != nil {
			conflictResponse(c, rejected)
			return
		}
		database.LogActivity(database.DB, currentUserID(c), "audit", audit.ID, "move",
			"Audit pomeren na "+audit.PlannedDate.Format("2006-01-02"))
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"id":           audit.ID,
			"planned_date": audit.PlannedDate.Format("2006-01-02"),
		}})

	case "audit_day":
		day, rejected, err := svc.MoveAuditDay(req.EventID, newDate)
		if err != nil {
			respondError(c, err)
			return
		}
		if rejected != nil {
			conflictResponse(c, rejected)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"id":   day.ID,
			"date": day.Date.Format("2006-01-02"),
		}})

	case "appointment":
		appt, err := svc.MoveAppointment(req.EventID, newDate)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
			"id":   appt.ID,
			"date": appt.Date.Format("2006-01-02"),
		}})
	}
}

func conflictResponse(c *gin.Context, rejected *cycle.Result) {
	msg := "Nemoguće pomeriti audit"
	if len(rejected.Reasons) > 0 {
		msg = "Nemoguće pomeriti audit: " + rejected.Reasons[0].Message
	}
	c.JSON(http.StatusConflict, gin.H{
		"success": false,
		"error":   msg,
		"reasons": rejected.Reasons,
	})
}
