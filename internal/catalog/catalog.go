package catalog

import (
	"fmt"
	"strings"

	"certcycle/internal/models"

	"gorm.io/gorm"
)

// канонические названия известных стандартов; для неизвестных кодов
// ставится заглушка
var canonicalNames = map[string]string{
	"9001":  "ISO 9001",
	"14001": "ISO 14001",
	"45001": "ISO 45001",
	"18001": "OHSAS 18001",
	"22000": "ISO 22000",
	"27001": "ISO/IEC 27001",
	"22301": "ISO 22301",
	"20000": "ISO/IEC 20000-1",
	"50001": "ISO 50001",
	"3834":  "EN ISO 3834-2",
}

type Catalog struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) StandardByCode(code string) (*models.Standard, error) {
	var s models.Standard
	if err := c.db.Where("code = ?", code).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Catalog) CodeByCode(code string) (*models.IAFEACCode, error) {
	var ic models.IAFEACCode
	if err := c.db.Where("code = ?", code).First(&ic).Error; err != nil {
		return nil, err
	}
	return &ic, nil
}

func (c *Catalog) ListStandards() ([]models.Standard, error) {
	var out []models.Standard
	err := c.db.Order("code asc").Find(&out).Error
	return out, err
}

func (c *Catalog) ListCodes() ([]models.IAFEACCode, error) {
	var out []models.IAFEACCode
	err := c.db.Order("code asc").Find(&out).Error
	return out, err
}

// GetOrCreateStandard используется импортом: неизвестный код создаётся
// с каноническим названием, если оно известно, иначе с заглушкой.
// Дубликаты исключены уникальным индексом по code.
func (c *Catalog) GetOrCreateStandard(code string) (*models.Standard, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("empty standard code")
	}

	name, known := canonicalNames[code]
	if !known {
		name = "Standard " + code
	}

	var s models.Standard
	err := c.db.Where(models.Standard{Code: code}).
		Attrs(models.Standard{Name: name, Active: true}).
		FirstOrCreate(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetOrCreateCode — то же для IAF/EAC кодов
func (c *Catalog) GetOrCreateCode(code string) (*models.IAFEACCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("empty IAF/EAC code")
	}

	var ic models.IAFEACCode
	err := c.db.Where(models.IAFEACCode{Code: code}).
		FirstOrCreate(&ic).Error
	if err != nil {
		return nil, err
	}
	return &ic, nil
}
