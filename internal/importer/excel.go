// Package importer parses bulk site imports from Excel spreadsheets.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/gosites/internal/models"
)

// SheetName is the worksheet the importer reads.
const SheetName = "Sites"

// Column indices for the import spreadsheet (0-based).
const (
	colURL            = 0 // Column A
	colUsername       = 1 // Column B
	colPassword       = 2 // Column C
	colCategory       = 3 // Column D
	colPostInterval   = 4 // Column E
	colMaxPostsPerDay = 5 // Column F

	headerRowIndex = 1 // Excel rows are 1-based, header is row 1
)

// Headers is the expected header row, in column order.
var Headers = []string{
	"url", "username", "password", "category", "post_interval", "max_posts_per_day",
}

// ImportError reports a validation failure for a specific row.
type ImportError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Result holds the parsed sites and the rows that failed validation.
type Result struct {
	Sites  []models.Site `json:"sites"`
	Errors []ImportError `json:"errors"`
}

// ParseFile reads an .xlsx import file. Rows that fail validation are
// reported in Result.Errors with their Excel row number; valid rows become
// site records with normalized URLs. A malformed workbook fails outright.
func ParseFile(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", SheetName, err)
	}

	result := &Result{Sites: []models.Site{}, Errors: []ImportError{}}
	for i, cells := range rows {
		rowNum := i + 1
		if rowNum == headerRowIndex {
			continue
		}
		if isEmptyRow(cells) {
			continue
		}

		site := rowToSite(cells)
		if msg := validateRow(site); msg != "" {
			result.Errors = append(result.Errors, ImportError{Row: rowNum, Error: msg})
			continue
		}
		site.Normalize()
		result.Sites = append(result.Sites, site)
	}
	return result, nil
}

func rowToSite(cells []string) models.Site {
	return models.Site{
		URL:            cell(cells, colURL),
		Username:       cell(cells, colUsername),
		Password:       cell(cells, colPassword),
		Category:       cell(cells, colCategory),
		PostInterval:   cell(cells, colPostInterval),
		MaxPostsPerDay: cell(cells, colMaxPostsPerDay),
	}
}

// validateRow returns an error message or empty string.
func validateRow(site models.Site) string {
	if strings.TrimSpace(site.URL) == "" {
		return "url is required"
	}
	if strings.TrimSpace(site.Username) == "" {
		return "username is required"
	}
	if strings.TrimSpace(site.Password) == "" {
		return "password is required"
	}
	if err := site.Validate(); err != nil {
		return err.Error()
	}

	// Cadence hints stay strings in the record but must be numeric if given.
	if site.PostInterval != "" {
		if _, err := strconv.Atoi(site.PostInterval); err != nil {
			return "post_interval must be a whole number of hours"
		}
	}
	if site.MaxPostsPerDay != "" {
		if _, err := strconv.Atoi(site.MaxPostsPerDay); err != nil {
			return "max_posts_per_day must be a whole number"
		}
	}
	return ""
}

func cell(cells []string, idx int) string {
	if idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
