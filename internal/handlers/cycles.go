package handlers

import (
	"net/http"

	"certcycle/internal/cycle"
	"certcycle/internal/database"
	"certcycle/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createCycleRequest struct {
	CompanyID   uint   `json:"company_id" binding:"required"`
	PlannedDate string `json:"planned_date" binding:"required"`
	StandardIDs []uint `json:"standard_ids" binding:"required,min=1"`

	InitialDays         decimal.Decimal `json:"initial_days"`
	SurveillanceDays    decimal.Decimal `json:"surveillance_days"`
	RecertificationDays decimal.Decimal `json:"recertification_days"`

	IsFirstCycle bool   `json:"is_first_cycle"`
	Notes        string `json:"notes"`
}

func CreateCycle(c *gin.Context) {
	var req createCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći zahtev"})
		return
	}
	planned, err := parseEventDate(req.PlannedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći datum"})
		return
	}
	if req.InitialDays.IsNegative() || req.SurveillanceDays.IsNegative() || req.RecertificationDays.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "broj dana ne može biti negativan"})
		return
	}

	svc := cycle.NewService(database.DB)
	created, err := svc.CreateCycle(cycle.CreateCycleInput{
		CompanyID:           req.CompanyID,
		PlannedDate:         planned,
		StandardIDs:         req.StandardIDs,
		InitialDays:         req.InitialDays,
		SurveillanceDays:    req.SurveillanceDays,
		RecertificationDays: req.RecertificationDays,
		IsFirstCycle:        req.IsFirstCycle,
		Notes:               req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	database.LogActivity(database.DB, currentUserID(c), "cycle", created.ID, "create",
		"Otvoren ciklus za kompaniju #"+itoa(created.CompanyID))
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": cycleResponse(created.ID)})
}

func GetCycle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var cyc models.CertificationCycle
	if err := database.DB.
		Preload("Company").
		Preload("Standards.Standard").
		Preload("Audits.Days").
		Preload("Audits.Team").
		First(&cyc, id).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": cyc})
}

func ListCycles(c *gin.Context) {
	var cycles []models.CertificationCycle
	q := database.DB.Preload("Company").Order("planned_date desc")
	if companyID := c.Query("company_id"); companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	if err := q.Find(&cycles).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": cycles})
}

type cycleStandardRequest struct {
	StandardID uint `json:"standard_id" binding:"required"`
}

func AddCycleStandard(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req cycleStandardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći zahtev"})
		return
	}
	svc := cycle.NewService(database.DB)
	if err := svc.AddStandard(id, req.StandardID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": cycleResponse(id)})
}

func RemoveCycleStandard(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	standardID, ok := paramID(c, "standard_id")
	if !ok {
		return
	}
	svc := cycle.NewService(database.DB)
	if err := svc.RemoveStandard(id, standardID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": cycleResponse(id)})
}

func cycleResponse(id uint) gin.H {
	var cyc models.CertificationCycle
	if err := database.DB.Preload("Standards.Standard").Preload("Audits").First(&cyc, id).Error; err != nil {
		return gin.H{"id": id}
	}
	return gin.H{
		"id":                   cyc.ID,
		"company_id":           cyc.CompanyID,
		"planned_date":         cyc.PlannedDate.Format("2006-01-02"),
		"is_integrated_system": cyc.IsIntegratedSystem,
		"status":               cyc.Status,
		"standards":            cyc.Standards,
		"audits":               cyc.Audits,
	}
}
