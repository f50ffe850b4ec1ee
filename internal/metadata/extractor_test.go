package metadata_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/gosites/internal/logger"
	"github.com/jonesrussell/gosites/internal/metadata"
)

func TestExtractor_ExtractWordPressSite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head>
			<title>Example Blog - Home</title>
			<meta property="og:site_name" content="Example Blog">
			<meta name="generator" content="WordPress 6.4.2">
		</head><body></body></html>`))
	}))
	defer srv.Close()

	extractor := metadata.NewExtractor(logger.NewNop())
	meta, err := extractor.Extract(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Example Blog", meta.Name)
	assert.Equal(t, "WordPress 6.4.2", meta.Generator)
	assert.True(t, meta.IsWordPress)
}

func TestExtractor_ExtractFallsBackToTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Plain Site</title></head><body></body></html>`))
	}))
	defer srv.Close()

	extractor := metadata.NewExtractor(logger.NewNop())
	meta, err := extractor.Extract(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Plain Site", meta.Name)
	assert.Empty(t, meta.Generator)
	assert.False(t, meta.IsWordPress)
}

func TestExtractor_ExtractNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	extractor := metadata.NewExtractor(logger.NewNop())
	_, err := extractor.Extract(context.Background(), srv.URL)
	assert.Error(t, err)
}
