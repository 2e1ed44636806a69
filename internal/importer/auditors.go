package importer

import (
	"fmt"
	"strings"

	"certcycle/internal/competency"
	"certcycle/internal/models"

	"github.com/xuri/excelize/v2"
)

var auditorColumns = []string{
	"name", "email", "category", "standards", "iaf_eac_codes",
}

// ImportAuditors читает лист аудиторов: стандарты и IAF/EAC коды;
// однозначные числовые префиксы кодов добиваются нулём ("6a" → "06a").
// Технические эксперты получают прямые коды, остальные — стандарты с
// кодами на каждой связи.
func (im *Importer) ImportAuditors(path, sheet string) (*Report, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return &Report{}, nil
	}

	cols := columnIndex(rows[0], auditorColumns)
	report := &Report{}
	reg := competency.New(im.db)

	for i, raw := range rows[1:] {
		rowNum := i + 2

		name := cell(raw, cols["name"])
		category := models.AuditorCategory(cell(raw, cols["category"]))
		if name == "" || category == "" {
			report.skip(rowNum, "name i category su obavezni")
			continue
		}

		auditor := models.Auditor{Name: name, Category: category, Active: true}
		if err := im.db.Where(models.Auditor{Name: name, Category: category}).
			Attrs(models.Auditor{Email: cell(raw, cols["email"]), Active: true}).
			FirstOrCreate(&auditor).Error; err != nil {
			report.skip(rowNum, err.Error())
			continue
		}

		codes := parseCodeList(cell(raw, cols["iaf_eac_codes"]))

		if auditor.IsTechnicalExpert() {
			for _, code := range codes {
				ic, err := im.catalog.GetOrCreateCode(code)
				if err != nil {
					report.skip(rowNum, err.Error())
					continue
				}
				if err := reg.AddDirectCode(auditor.ID, ic.ID, false); err != nil {
					report.skip(rowNum, err.Error())
				}
			}
			report.Created++
			continue
		}

		stdCodes, leftover := ParseStandardCodes(cell(raw, cols["standards"]))
		if len(leftover) > 0 {
			report.skip(rowNum, "neprepoznat ostatak standarda: "+strings.Join(leftover, ", "))
		}
		for _, sc := range stdCodes {
			std, err := im.catalog.GetOrCreateStandard(sc)
			if err != nil {
				report.skip(rowNum, err.Error())
				continue
			}
			link, err := reg.AddStandard(auditor.ID, std.ID)
			if err != nil {
				report.skip(rowNum, err.Error())
				continue
			}
			for _, code := range codes {
				ic, err := im.catalog.GetOrCreateCode(code)
				if err != nil {
					report.skip(rowNum, err.Error())
					continue
				}
				if err := reg.AddStandardCode(link.ID, ic.ID, false); err != nil {
					report.skip(rowNum, err.Error())
				}
			}
		}
		report.Created++
	}

	return report, nil
}

func parseCodeList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' '
	})
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool)
	for _, p := range parts {
		code := NormalizeIAFEAC(p)
		if code != "" && !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	return out
}
