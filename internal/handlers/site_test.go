package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/gosites/internal/api"
	"github.com/jonesrussell/gosites/internal/handlers"
	"github.com/jonesrussell/gosites/internal/importer"
	"github.com/jonesrussell/gosites/internal/metadata"
	"github.com/jonesrussell/gosites/internal/models"
	"github.com/jonesrussell/gosites/internal/probe"
	"github.com/jonesrussell/gosites/internal/registry"
	"github.com/jonesrussell/gosites/internal/store"
	"github.com/jonesrussell/gosites/internal/testhelpers"
)

func setupRouter(t *testing.T, reg handlers.Registry) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := testhelpers.NewTestLogger()
	handler := handlers.NewSiteHandler(
		reg,
		probe.NewChecker(log),
		metadata.NewExtractor(log),
		nil, // events disabled in tests
		log,
	)
	return api.NewRouter(handler, []string{"http://localhost:3000"}, log)
}

func validSite(url string) models.Site {
	return models.Site{
		URL:            url,
		Username:       "admin",
		Password:       "x",
		Category:       "tech",
		PostInterval:   "6",
		MaxPostsPerDay: "4",
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestList_Empty(t *testing.T) {
	reg, _ := testhelpers.NewTestRegistry(t)
	router := setupRouter(t, reg)

	w := doJSON(t, router, http.MethodGet, "/sites", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var sites []models.Site
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sites))
	assert.Empty(t, sites)
}

func TestList_StoreFailure(t *testing.T) {
	// Store over a document that was never created.
	fs := store.New(t.TempDir()+"/config.json", testhelpers.NewTestLogger())
	reg := registry.New(fs, testhelpers.NewTestLogger())
	router := setupRouter(t, reg)

	w := doJSON(t, router, http.MethodGet, "/sites", nil)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, handlers.CodeStoreReadFailed, resp["code"])
	assert.NotEmpty(t, resp["error"])
}

func TestUpsert_PersistsRecord(t *testing.T) {
	reg, _ := testhelpers.NewTestRegistry(t)
	router := setupRouter(t, reg)

	w := doJSON(t, router, http.MethodPost, "/sites", validSite("https://a.example"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	sites, err := reg.List()
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "https://a.example", sites[0].URL)
}

func TestUpsert_ReplacesByURL(t *testing.T) {
	reg, _ := testhelpers.NewTestRegistry(t)
	router := setupRouter(t, reg)

	first := validSite("https://a.example")
	second := validSite("https://a.example")
	second.Category = "business"

	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/sites", first).Code)
	require.Equal(t, http.StatusOK, doJSON(t, router, http.MethodPost, "/sites", second).Code)

	sites, err := reg.List()
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "business", sites[0].Category)
}

func TestUpsert_ValidationFailure(t *testing.T) {
	reg, _ := testhelpers.NewTestRegistry(t)
	router := setupRouter(t, reg)

	bad := validSite("https://a.example")
	bad.Username = ""
	w := doJSON(t, router, http.MethodPost, "/sites", bad)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, handlers.CodeValidationFailed, resp["code"])

	// Nothing was written.
	sites, err := reg.List()
	require.NoError(t, err)
	assert.Empty(t, sites)
}

func TestUpsert_MalformedBody(t *testing.T) {
	reg, _ := testhelpers.NewTestRegistry(t)
	router := setupRouter(t, reg)

	req := httptest.NewRequest(http.MethodPost, "/sites", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDelete_RemovesRecord(t *testing.T) {
	reg, _ := testhelpers.NewTestRegistry(t)
	router := setupRouter(t, reg)

	_, _, err := reg.Upsert(validSite("https://a.example"))
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodDelete, "/sites", gin.H{"url": "https://a.example"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	sites, err := reg.List()
	require.NoError(t, err)
	assert.Empty(t, sites)
}

func TestDelete_MissingURLIsStillSuccess(t *testing.T) {
	reg, _ := testhelpers.NewTestRegistry(t)
	router := setupRouter(t, reg)

	_, _, err := reg.Upsert(validSite("https://a.example"))
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodDelete, "/sites", gin.H{"url": "https://missing.example"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	sites, err := reg.List()
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "https://a.example", sites[0].URL)
}

func TestDelete_RequiresURL(t *testing.T) {
	reg, _ := testhelpers.NewTestRegistry(t)
	router := setupRouter(t, reg)

	w := doJSON(t, router, http.MethodDelete, "/sites", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConnectivityCheck_Reachable(t *testing.T) {
	wp := testhelpers.NewWordPressServer(t, `[{"date":"2026-08-20T09:15:00"},{"date":"2026-08-18T07:00:00"}]`, "2")
	defer wp.Close()

	reg, _ := testhelpers.NewTestRegistry(t)
	router := setupRouter(t, reg)

	w := doJSON(t, router, http.MethodPost, "/connectivity-check", validSite(wp.URL))
	require.Equal(t, http.StatusOK, w.Code)

	var result probe.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Connected)
	assert.Equal(t, 2, result.PostCount)
	assert.NotNil(t, result.LastPostDate)
}

func TestConnectivityCheck_UnreachableIsStillOK(t *testing.T) {
	closed := testhelpers.NewWordPressServer(t, `[]`, "")
	closed.Close()

	reg, _ := testhelpers.NewTestRegistry(t)
	router := setupRouter(t, reg)

	w := doJSON(t, router, http.MethodPost, "/connectivity-check", validSite(closed.URL))
	require.Equal(t, http.StatusOK, w.Code)

	var result probe.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Connected)
	assert.Equal(t, probe.ReasonNetwork, result.FailureReason)
}

func TestConnectivityCheck_ValidationFailure(t *testing.T) {
	reg, _ := testhelpers.NewTestRegistry(t)
	router := setupRouter(t, reg)

	w := doJSON(t, router, http.MethodPost, "/connectivity-check", gin.H{"url": "https://a.example"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["connected"])
	assert.Equal(t, handlers.CodeValidationFailed, resp["code"])
}

func TestImport_UpsertsValidRows(t *testing.T) {
	reg, _ := testhelpers.NewTestRegistry(t)
	router := setupRouter(t, reg)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", importer.SheetName))
	for i, h := range importer.Headers {
		cellName, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(importer.SheetName, cellName, h))
	}
	rows := [][]string{
		{"https://a.example", "admin", "x", "tech", "6", "4"},
		{"", "admin", "x", "", "", ""},
	}
	for r, row := range rows {
		for c, v := range row {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(importer.SheetName, cellName, v))
		}
	}
	var workbook bytes.Buffer
	require.NoError(t, f.Write(&workbook))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "sites.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/sites/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Imported int                    `json:"imported"`
		Errors   []importer.ImportError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Imported)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, 3, resp.Errors[0].Row)

	sites, err := reg.List()
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "https://a.example", sites[0].URL)
}

func TestMetadata_RequiresURL(t *testing.T) {
	reg, _ := testhelpers.NewTestRegistry(t)
	router := setupRouter(t, reg)

	w := doJSON(t, router, http.MethodGet, "/site-metadata", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetadata_ReturnsSuggestions(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head>
			<title>Example Blog</title>
			<meta name="generator" content="WordPress 6.4">
		</head></html>`))
	}))
	defer page.Close()

	reg, _ := testhelpers.NewTestRegistry(t)
	router := setupRouter(t, reg)

	w := doJSON(t, router, http.MethodGet, "/site-metadata?url="+page.URL, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var meta metadata.SiteMetadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, "Example Blog", meta.Name)
	assert.True(t, meta.IsWordPress)
}
