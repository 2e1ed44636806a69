package main

import (
	"flag"
	"log"
	"os"

	"certcycle/internal/database"
	"certcycle/internal/importer"

	"github.com/joho/godotenv"
)

// Одноразовый импорт исторических таблиц:
//
//	go run ./cmd/import -kind companies -file podaci.xlsx -sheet Sheet1
func main() {
	kind := flag.String("kind", "", "companies | audits | auditors")
	file := flag.String("file", "", "путь к .xlsx")
	sheet := flag.String("sheet", "Sheet1", "имя листа")
	flag.Parse()

	if *kind == "" || *file == "" {
		log.Fatal("usage: import -kind companies|audits|auditors -file data.xlsx [-sheet Sheet1]")
	}

	_ = godotenv.Load()
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set")
	}
	database.Init(dsn)

	im := importer.New(database.DB)

	var (
		report *importer.Report
		err    error
	)
	switch *kind {
	case "companies":
		report, err = im.ImportCompanies(*file, *sheet)
	case "audits":
		report, err = im.ImportAudits(*file, *sheet)
	case "auditors":
		report, err = im.ImportAuditors(*file, *sheet)
	default:
		log.Fatalf("unknown kind: %s", *kind)
	}
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	log.Printf("created: %d, updated: %d, skipped: %d", report.Created, report.Updated, len(report.Skipped))
	for _, s := range report.Skipped {
		log.Printf("  row %d: %s", s.Row, s.Reason)
	}
}
