package importer_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/gosites/internal/importer"
)

// buildWorkbook writes a Sites sheet with the given rows below the header.
func buildWorkbook(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", importer.SheetName))

	for i, h := range importer.Headers {
		cellName, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(importer.SheetName, cellName, h))
	}
	for r, row := range rows {
		for c, v := range row {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(importer.SheetName, cellName, v))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestParseFile_ValidRows(t *testing.T) {
	buf := buildWorkbook(t, [][]string{
		{"https://a.example", "admin", "x", "tech", "6", "4"},
		{"b.example", "editor", "y", "business", "", ""},
	})

	result, err := importer.ParseFile(buf)
	require.NoError(t, err)

	assert.Empty(t, result.Errors)
	require.Len(t, result.Sites, 2)
	assert.Equal(t, "https://a.example", result.Sites[0].URL)
	assert.Equal(t, "6", result.Sites[0].PostInterval)
	assert.Equal(t, "https://b.example", result.Sites[1].URL, "URL should be normalized")
}

func TestParseFile_ReportsRowNumbers(t *testing.T) {
	buf := buildWorkbook(t, [][]string{
		{"https://a.example", "admin", "x", "", "", ""},
		{"", "admin", "x", "", "", ""},
		{"https://c.example", "", "x", "", "", ""},
		{"https://d.example", "admin", "", "", "", ""},
		{"https://e.example", "admin", "x", "", "six", ""},
	})

	result, err := importer.ParseFile(buf)
	require.NoError(t, err)

	require.Len(t, result.Sites, 1)
	require.Len(t, result.Errors, 4)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Error, "url is required")
	assert.Equal(t, 4, result.Errors[1].Row)
	assert.Contains(t, result.Errors[1].Error, "username is required")
	assert.Equal(t, 5, result.Errors[2].Row)
	assert.Contains(t, result.Errors[2].Error, "password is required")
	assert.Equal(t, 6, result.Errors[3].Row)
	assert.Contains(t, result.Errors[3].Error, "post_interval")
}

func TestParseFile_SkipsEmptyRows(t *testing.T) {
	buf := buildWorkbook(t, [][]string{
		{"https://a.example", "admin", "x", "", "", ""},
		{"", "", "", "", "", ""},
	})

	result, err := importer.ParseFile(buf)
	require.NoError(t, err)

	assert.Len(t, result.Sites, 1)
	assert.Empty(t, result.Errors)
}

func TestParseFile_MissingSheet(t *testing.T) {
	f := excelize.NewFile()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := importer.ParseFile(&buf)
	assert.Error(t, err)
}

func TestParseFile_NotAWorkbook(t *testing.T) {
	_, err := importer.ParseFile(bytes.NewBufferString("not an xlsx file"))
	assert.Error(t, err)
}
