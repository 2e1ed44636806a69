package handlers

import (
	"net/http"

	"certcycle/internal/cycle"
	"certcycle/internal/database"
	"certcycle/internal/models"

	"github.com/gin-gonic/gin"
)

type saveAuditRequest struct {
	Intent string `json:"intent"` // edit_metadata | start | complete | postpone | cancel

	PlannedDate *string `json:"planned_date"`
	ActualDate  *string `json:"actual_date"`
	ClearActual bool    `json:"clear_actual"`

	LeadAuditorID *uint   `json:"lead_auditor_id"` // 0 снимает ведущего
	TeamIDs       *[]uint `json:"team_ids"`        // отсутствие поля — группу не менять

	Findings        *string `json:"findings"`
	Recommendations *string `json:"recommendations"`
	Notes           *string `json:"notes"`
	ReportNumber    *string `json:"report_number"`
	ReportSent      *bool   `json:"report_sent"`
}

// SaveAudit — сохранение аудита с намерением; при отказе валидатора 422
// со всеми причинами, состояние не меняется.
func SaveAudit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req saveAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći zahtev"})
		return
	}

	in := cycle.SaveAuditInput{
		Intent:          cycle.Intent(req.Intent),
		ClearActual:     req.ClearActual,
		Findings:        req.Findings,
		Recommendations: req.Recommendations,
		Notes:           req.Notes,
		ReportNumber:    req.ReportNumber,
		ReportSent:      req.ReportSent,
	}
	if req.PlannedDate != nil {
		d, err := parseEventDate(*req.PlannedDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći datum"})
			return
		}
		in.PlannedDate = &d
	}
	if req.ActualDate != nil {
		d, err := parseEventDate(*req.ActualDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći datum"})
			return
		}
		in.ActualDate = &d
	}
	if req.LeadAuditorID != nil {
		in.SetLead = true
		if *req.LeadAuditorID != 0 {
			in.LeadAuditorID = req.LeadAuditorID
		}
	}
	if req.TeamIDs != nil {
		in.SetTeam = true
		in.TeamIDs = *req.TeamIDs
	}

	svc := cycle.NewService(database.DB)
	saved, rejected, err := svc.SaveAudit(id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	if rejected != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "čuvanje odbijeno",
			"reasons": rejected.Reasons,
		})
		return
	}

	database.LogActivity(database.DB, currentUserID(c), "audit", saved.ID, string(in.Intent),
		"Audit sačuvan, status: "+string(saved.Status))
	c.JSON(http.StatusOK, gin.H{"success": true, "data": saved})
}

type addAuditRequest struct {
	AuditType   string `json:"audit_type" binding:"required,oneof=initial surveillance_1 surveillance_2 recertification special"`
	PlannedDate string `json:"planned_date" binding:"required"`
}

func AddAudit(c *gin.Context) {
	cycleID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req addAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći zahtev"})
		return
	}
	planned, err := parseEventDate(req.PlannedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći datum"})
		return
	}

	svc := cycle.NewService(database.DB)
	created, rejected, err := svc.AddAudit(cycleID, models.AuditType(req.AuditType), planned)
	if err != nil {
		respondError(c, err)
		return
	}
	if rejected != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   "audit odbijen",
			"reasons": rejected.Reasons,
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": created})
}

func GetAudit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var audit models.CycleAudit
	if err := database.DB.
		Preload("Cycle.Company").
		Preload("Days").
		Preload("Team.Auditor").
		Preload("LeadAuditor").
		First(&audit, id).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": audit})
}
