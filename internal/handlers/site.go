// Package handlers exposes the site registry and connectivity probe over HTTP.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/gosites/internal/events"
	"github.com/jonesrussell/gosites/internal/importer"
	"github.com/jonesrussell/gosites/internal/logger"
	"github.com/jonesrussell/gosites/internal/metadata"
	"github.com/jonesrussell/gosites/internal/models"
	"github.com/jonesrussell/gosites/internal/probe"
)

// Machine-readable error codes carried in error payloads so callers can
// distinguish failure classes without parsing messages.
const (
	CodeStoreReadFailed  = "store_read_failed"
	CodeStoreWriteFailed = "store_write_failed"
	CodeValidationFailed = "validation_failed"
	CodeBadRequest       = "bad_request"
	CodeImportFailed     = "import_failed"
	CodeMetadataFailed   = "metadata_failed"
)

// metadataTimeout bounds a metadata extraction request.
const metadataTimeout = 30 * time.Second

// Registry is the subset of registry operations the handlers need.
type Registry interface {
	List() ([]models.Site, error)
	Upsert(site models.Site) ([]models.Site, bool, error)
	Delete(url string) ([]models.Site, bool, error)
}

// SiteHandler serves the /sites and /connectivity-check endpoints.
type SiteHandler struct {
	registry  Registry
	checker   *probe.Checker
	extractor *metadata.Extractor
	publisher *events.Publisher
	logger    logger.Logger
}

// NewSiteHandler creates the handler set. publisher may be nil.
func NewSiteHandler(
	reg Registry,
	checker *probe.Checker,
	extractor *metadata.Extractor,
	publisher *events.Publisher,
	log logger.Logger,
) *SiteHandler {
	return &SiteHandler{
		registry:  reg,
		checker:   checker,
		extractor: extractor,
		publisher: publisher,
		logger:    log,
	}
}

// List returns the full site collection, empty included. A store failure is
// the only error path.
func (h *SiteHandler) List(c *gin.Context) {
	sites, err := h.registry.List()
	if err != nil {
		h.logger.Error("Failed to list sites",
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list sites",
			"code":  CodeStoreReadFailed,
		})
		return
	}

	c.JSON(http.StatusOK, sites)
}

// Upsert validates and inserts-or-replaces one site record keyed by URL.
func (h *SiteHandler) Upsert(c *gin.Context) {
	var site models.Site
	if err := c.ShouldBindJSON(&site); err != nil {
		h.logger.Debug("Invalid request body",
			logger.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
			"code":  CodeBadRequest,
		})
		return
	}

	if err := site.Validate(); err != nil {
		h.logger.Debug("Site failed validation",
			logger.String("url", site.URL),
			logger.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  CodeValidationFailed,
		})
		return
	}

	_, created, err := h.registry.Upsert(site)
	if err != nil {
		h.logger.Error("Failed to upsert site",
			logger.String("url", site.URL),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to save site",
			"code":  CodeStoreWriteFailed,
		})
		return
	}

	eventType := events.SiteUpdated
	if created {
		eventType = events.SiteCreated
	}
	h.publisher.PublishAsync(events.SiteEvent{
		EventType: eventType,
		SiteURL:   models.NormalizeURL(site.URL),
	})

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type deleteRequest struct {
	URL string `json:"url"`
}

// Delete removes the record matching the given URL. Deleting an unknown URL
// still acknowledges success.
func (h *SiteHandler) Delete(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Request body must contain a url",
			"code":  CodeBadRequest,
		})
		return
	}

	_, removed, err := h.registry.Delete(req.URL)
	if err != nil {
		h.logger.Error("Failed to delete site",
			logger.String("url", req.URL),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete site",
			"code":  CodeStoreWriteFailed,
		})
		return
	}

	if removed {
		h.publisher.PublishAsync(events.SiteEvent{
			EventType: events.SiteDeleted,
			SiteURL:   models.NormalizeURL(req.URL),
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ConnectivityCheck probes a candidate record. Probe outcomes, including
// failures, are data: the response is 200 with connected=false and a reason
// rather than an error status.
func (h *SiteHandler) ConnectivityCheck(c *gin.Context) {
	var site models.Site
	if err := c.ShouldBindJSON(&site); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"connected": false,
			"error":     "Invalid request body",
			"code":      CodeBadRequest,
		})
		return
	}

	if err := site.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"connected": false,
			"error":     err.Error(),
			"code":      CodeValidationFailed,
		})
		return
	}

	result := h.checker.Check(c.Request.Context(), site)

	h.publisher.PublishAsync(events.SiteEvent{
		EventType: events.SiteChecked,
		SiteURL:   models.NormalizeURL(site.URL),
		Connected: &result.Connected,
	})

	c.JSON(http.StatusOK, result)
}

// Import bulk-upserts sites from an uploaded .xlsx file. Row validation
// failures are reported per row; rows that validate are persisted.
func (h *SiteHandler) Import(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Multipart field 'file' is required",
			"code":  CodeBadRequest,
		})
		return
	}
	defer file.Close()

	parsed, err := importer.ParseFile(file)
	if err != nil {
		h.logger.Debug("Import file unreadable",
			logger.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Could not read import file",
			"code":  CodeImportFailed,
		})
		return
	}

	imported := 0
	for _, site := range parsed.Sites {
		if _, _, upsertErr := h.registry.Upsert(site); upsertErr != nil {
			h.logger.Error("Failed to import site",
				logger.String("url", site.URL),
				logger.Error(upsertErr),
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":    "Failed to save imported sites",
				"code":     CodeStoreWriteFailed,
				"imported": imported,
			})
			return
		}
		imported++
	}

	h.logger.Info("Sites imported",
		logger.Int("imported", imported),
		logger.Int("rejected", len(parsed.Errors)),
	)

	c.JSON(http.StatusOK, gin.H{
		"imported": imported,
		"errors":   parsed.Errors,
	})
}

// Metadata suggests form-prefill values for a candidate URL.
func (h *SiteHandler) Metadata(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'url' is required",
			"code":  CodeBadRequest,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), metadataTimeout)
	defer cancel()

	meta, err := h.extractor.Extract(ctx, rawURL)
	if err != nil {
		h.logger.Debug("Metadata extraction failed",
			logger.String("url", rawURL),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch site metadata",
			"code":  CodeMetadataFailed,
		})
		return
	}

	c.JSON(http.StatusOK, meta)
}
