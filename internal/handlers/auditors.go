package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"certcycle/internal/competency"
	"certcycle/internal/database"
	"certcycle/internal/models"

	"github.com/gin-gonic/gin"
)

// QualifiedAuditors возвращает аудиторов, квалифицированных по ВСЕМ
// стандартам компании или цикла аудита; для фильтра списков в UI.
func QualifiedAuditors(c *gin.Context) {
	reg := competency.New(database.DB)

	var (
		auditors []models.Auditor
		err      error
	)
	if companyID := c.Query("company_id"); companyID != "" {
		id, convErr := strconv.Atoi(companyID)
		if convErr != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći company_id"})
			return
		}
		auditors, err = reg.QualifiedForCompany(uint(id))
	} else if auditID := c.Query("audit_id"); auditID != "" {
		id, convErr := strconv.Atoi(auditID)
		if convErr != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći audit_id"})
			return
		}
		auditors, err = reg.QualifiedForAudit(uint(id))
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "company_id ili audit_id je obavezan"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]gin.H, 0, len(auditors))
	for _, a := range auditors {
		data = append(data, gin.H{
			"id":       a.ID,
			"name":     a.Name,
			"email":    a.Email,
			"category": a.Category,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func ListAuditors(c *gin.Context) {
	var auditors []models.Auditor
	if err := database.DB.Order("name asc").Find(&auditors).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": auditors})
}

type createAuditorRequest struct {
	Name     string `json:"name" binding:"required,min=3"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Category string `json:"category" binding:"required,oneof=lead_auditor auditor technical_expert trainer"`
}

func CreateAuditor(c *gin.Context) {
	var req createAuditorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći zahtev"})
		return
	}

	auditor := models.Auditor{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Category: models.AuditorCategory(req.Category),
		Active:   true,
	}
	if err := database.DB.Create(&auditor).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": auditor})
}

type auditorStandardRequest struct {
	StandardID uint `json:"standard_id" binding:"required"`
}

// AddAuditorStandard — квалификация по стандарту; технический эксперт
// получает CategoryViolation.
func AddAuditorStandard(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req auditorStandardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći zahtev"})
		return
	}

	reg := competency.New(database.DB)
	link, err := reg.AddStandard(id, req.StandardID)
	if err != nil {
		if errors.Is(err, competency.ErrCategoryViolation) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"error":   "tehnički ekspert ne može imati standarde",
				"field":   "standards",
			})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": link})
}

func RemoveAuditorStandard(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	standardID, ok := paramID(c, "standard_id")
	if !ok {
		return
	}
	reg := competency.New(database.DB)
	if err := reg.RemoveStandard(id, standardID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type auditorCodeRequest struct {
	CodeID    uint `json:"code_id" binding:"required"`
	IsPrimary bool `json:"is_primary"`
}

// AddAuditorCode — прямой IAF/EAC код; разрешён только техническим
// экспертам.
func AddAuditorCode(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req auditorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći zahtev"})
		return
	}

	reg := competency.New(database.DB)
	if err := reg.AddDirectCode(id, req.CodeID, req.IsPrimary); err != nil {
		if errors.Is(err, competency.ErrCategoryViolation) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"error":   "direktni kodovi su dozvoljeni samo tehničkim ekspertima",
				"field":   "direct_codes",
			})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// AddAuditorStandardCode вешает код на связь "аудитор-стандарт"
func AddAuditorStandardCode(c *gin.Context) {
	linkID, ok := paramID(c, "link_id")
	if !ok {
		return
	}
	var req auditorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nevažeći zahtev"})
		return
	}

	reg := competency.New(database.DB)
	if err := reg.AddStandardCode(linkID, req.CodeID, req.IsPrimary); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}
