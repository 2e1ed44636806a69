package handlers

import (
	"net/http"
	"strings"

	"certcycle/internal/competency"
	"certcycle/internal/database"
	"certcycle/internal/models"

	"github.com/gin-gonic/gin"
)

func ListCompanies(c *gin.Context) {
	var companies []models.Company
	if err := database.DB.Order("name asc").Find(&companies).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": companies})
}

func GetCompany(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var company models.Company
	if err := database.DB.
		Preload("Standards.Standard").
		Preload("IAFCodes.Code").
		Preload("Cycles").
		First(&company, id).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": company})
}

type createCompanyRequest struct {
	Name          string `json:"name" binding:"required,min=3"`
	CertificateNo string `json:"certificate_no"`
	Address       string `json:"address"`
	City          string `json:"city"`
	ContactName   string `json:"contact_name"`
	ContactEmail  string `json:"contact_email"`
	ContactPhone  string `json:"contact_phone"`
	Notes         string `json:"notes"`
}

func CreateCompany(c *gin.Context) {
	var req createCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "naziv je obavezan (min 3 znaka)"})
		return
	}

	name := strings.TrimSpace(req.Name)
	var count int64
	database.DB.Model(&models.Company{}).
		Where("LOWER(name) = LOWER(?)", name).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "kompanija sa ovim nazivom već postoji"})
		return
	}

	company := models.Company{
		Name:          name,
		CertificateNo: req.CertificateNo,
		Address:       req.Address,
		City:          req.City,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		Notes:         req.Notes,
	}
	if err := database.DB.Create(&company).Error; err != nil {
		respondError(c, err)
		return
	}

	database.LogActivity(database.DB, currentUserID(c), "company", company.ID, "create",
		"Kreirana kompanija: "+company.Name)
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": company})
}

type companyCodeRequest struct {
	CodeID    uint `json:"code_id" binding:"required"`
	IsPrimary bool `json:"is_primary"`
}

func AddCompanyCode(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req companyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći zahtev"})
		return
	}

	reg := competency.New(database.DB)
	if err := reg.AddCompanyCode(id, req.CodeID, req.IsPrimary); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

type companyStandardRequest struct {
	StandardID uint `json:"standard_id" binding:"required"`
}

func AddCompanyStandard(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req companyStandardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći zahtev"})
		return
	}

	link := models.CompanyStandard{CompanyID: id, StandardID: req.StandardID}
	if err := database.DB.Where(models.CompanyStandard{CompanyID: id, StandardID: req.StandardID}).
		FirstOrCreate(&link).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": link})
}
