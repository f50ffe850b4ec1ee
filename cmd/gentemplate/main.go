// Command gentemplate generates the Excel import template for sites.
// Usage: go run cmd/gentemplate/main.go
package main

import (
	"log"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/gosites/internal/importer"
)

func main() {
	f := excelize.NewFile()

	// Rename Sheet1 to Sites
	if err := f.SetSheetName("Sheet1", importer.SheetName); err != nil {
		log.Fatal(err)
	}

	// Add headers
	for i, h := range importer.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			log.Fatal(err)
		}
		if err := f.SetCellValue(importer.SheetName, cell, h); err != nil {
			log.Fatal(err)
		}
	}

	// Example rows
	rows := [][]string{
		{"https://blog.example.com", "admin", "app-password-here", "Technology", "6", "4"},
		{"https://news.example.org", "editor", "app-password-here", "Business", "", ""},
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				log.Fatal(err)
			}
			if err := f.SetCellValue(importer.SheetName, cell, v); err != nil {
				log.Fatal(err)
			}
		}
	}

	const out = "sites-import-template.xlsx"
	if err := f.SaveAs(out); err != nil {
		log.Fatal(err)
	}

	if _, err := os.Stat(out); err != nil {
		log.Fatal(err)
	}
	log.Printf("Template written to %s", out)
}
