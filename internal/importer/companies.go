package importer

import (
	"fmt"
	"strings"

	"certcycle/internal/catalog"
	"certcycle/internal/cycle"
	"certcycle/internal/logging"
	"certcycle/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Импорт исторических данных из .xlsx. Всегда работает в import mode:
// цепная материализация аудитов подавлена, даты берутся из таблиц как есть.
type Importer struct {
	db       *gorm.DB
	catalog  *catalog.Catalog
	cycles   *cycle.Service
	validate *validator.Validate
}

func New(db *gorm.DB) *Importer {
	return &Importer{
		db:       db,
		catalog:  catalog.New(db),
		cycles:   cycle.NewService(db),
		validate: validator.New(),
	}
}

type SkippedRow struct {
	Row    int
	Reason string
}

type Report struct {
	Created int
	Updated int
	Skipped []SkippedRow
}

func (r *Report) skip(row int, reason string) {
	r.Skipped = append(r.Skipped, SkippedRow{Row: row, Reason: reason})
}

type companyRow struct {
	CompanyID     string `validate:"required"`
	CompanyName   string `validate:"required,min=2"`
	CertificateNo string
	InitRegDate   string
	Standard      string `validate:"required"`
	CertStatus    string
	SuspUntil     string
	AuditDays     string
	InitialDate   string
	VisitsPerYear string
	AuditDaysEach string
}

var companyColumns = []string{
	"company_id", "company_name", "certificate_no", "init_reg_date", "standard",
	"certificate_status", "suspension_until_date", "audit_days",
	"initial_audit_conducted_date", "visits_per_year", "audit_days_each",
}

// ImportCompanies читает лист компаний и создаёт Company + стандарты +
// цикл с инициальным аудитом. Строки без разбираемой инициальной даты
// попадают в отчёт как пропущенные — цикл по ним не угадывается.
func (im *Importer) ImportCompanies(path, sheet string) (*Report, error) {
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

	cols := columnIndex(rows[0], companyColumns)
	report := &Report{}

	for i, raw := range rows[1:] {
		rowNum := i + 2
		row := companyRow{
			CompanyID:     cell(raw, cols["company_id"]),
			CompanyName:   cell(raw, cols["company_name"]),
			CertificateNo: cell(raw, cols["certificate_no"]),
			InitRegDate:   cell(raw, cols["init_reg_date"]),
			Standard:      cell(raw, cols["standard"]),
			CertStatus:    cell(raw, cols["certificate_status"]),
			SuspUntil:     cell(raw, cols["suspension_until_date"]),
			AuditDays:     cell(raw, cols["audit_days"]),
			InitialDate:   cell(raw, cols["initial_audit_conducted_date"]),
			VisitsPerYear: cell(raw, cols["visits_per_year"]),
			AuditDaysEach: cell(raw, cols["audit_days_each"]),
		}

		if err := im.validate.Struct(row); err != nil {
			report.skip(rowNum, "nedostaju obavezna polja: "+err.Error())
			continue
		}

		if err := im.importCompanyRow(row, rowNum, report); err != nil {
			logging.LogError("importer", "ImportCompanies", "import row", rowNum, err)
			report.skip(rowNum, err.Error())
		}
	}

	return report, nil
}

func (im *Importer) importCompanyRow(row companyRow, rowNum int, report *Report) error {
	codes, leftover := ParseStandardCodes(row.Standard)
	if len(codes) == 0 {
		report.skip(rowNum, "nijedan standard nije prepoznat: "+row.Standard)
		return nil
	}
	if len(leftover) > 0 {
		report.skip(rowNum, "neprepoznat ostatak standarda: "+strings.Join(leftover, ", "))
	}

	initRegDate, err := ParseDate(row.InitRegDate)
	if err != nil {
		return err
	}
	suspUntil, err := ParseDate(row.SuspUntil)
	if err != nil {
		return err
	}
	initialDate, err := ParseDate(row.InitialDate)
	if err != nil {
		return err
	}

	var company models.Company
	err = im.db.Where(models.Company{ImportRef: row.CompanyID}).
		Attrs(models.Company{
			Name:             row.CompanyName,
			CertificateNo:    row.CertificateNo,
			CertificateState: row.CertStatus,
			InitRegDate:      initRegDate,
			SuspensionUntil:  suspUntil,
		}).
		FirstOrCreate(&company).Error
	if err != nil {
		return err
	}

	standardIDs := make([]uint, 0, len(codes))
	for _, code := range codes {
		std, err := im.catalog.GetOrCreateStandard(code)
		if err != nil {
			return err
		}
		standardIDs = append(standardIDs, std.ID)

		link := models.CompanyStandard{CompanyID: company.ID, StandardID: std.ID}
		if err := im.db.Where(models.CompanyStandard{CompanyID: company.ID, StandardID: std.ID}).
			FirstOrCreate(&link).Error; err != nil {
			return err
		}
	}

	// без инициальной даты цикл не создаётся: компания могла попасть
	// только в legacy-лист, поведение там неоднозначно
	if initialDate == nil {
		report.skip(rowNum, "bez datuma inicijalne provere, ciklus nije kreiran")
		return nil
	}

	days := parseDecimal(row.AuditDays)
	daysEach := parseDecimal(row.AuditDaysEach)
	if daysEach.IsZero() {
		daysEach = days
	}

	_, err = im.cycles.CreateCycle(cycle.CreateCycleInput{
		CompanyID:           company.ID,
		PlannedDate:         *initialDate,
		StandardIDs:         standardIDs,
		InitialDays:         days,
		SurveillanceDays:    daysEach,
		RecertificationDays: days,
		IsFirstCycle:        true,
		ImportMode:          true,
	})
	if err != nil {
		return err
	}

	report.Created++
	return nil
}

func columnIndex(header []string, wanted []string) map[string]int {
	idx := make(map[string]int, len(wanted))
	for _, name := range wanted {
		idx[name] = -1
	}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, ok := idx[key]; ok {
			idx[key] = i
		}
	}
	return idx
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseDecimal(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
