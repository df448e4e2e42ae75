package catalog

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ginjaninja78/sales-analytics/internal/catalog/catalogtest"
	"github.com/ginjaninja78/sales-analytics/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

var products = []catalogtest.Product{
	{ID: 1, Title: "Widget", Category: "tools", Brand: "Acme", Rating: catalogtest.Rating(4.2)},
	{ID: 2, Title: "  ", Category: "ghost"},
	{ID: 3, Title: "Gadget", Category: "electronics"},
}

func newSource(t *testing.T, url string, retries int) *HTTPSource {
	src := NewHTTPSource(HTTPOptions{
		URL:       url,
		Limit:     100,
		Timeout:   2 * time.Second,
		Retries:   retries,
		RetryWait: time.Millisecond,
		Logger:    zaptest.NewLogger(t),
	})
	t.Cleanup(func() { _ = src.Close() })
	return src
}

func TestHTTPSource_Fetch(t *testing.T) {
	server := catalogtest.New(t, products)
	src := newSource(t, server.ProductsURL(), 0)

	entries, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2, "untitled products are skipped")

	assert.Equal(t, 1, entries[0].ProductID)
	assert.Equal(t, "Widget", entries[0].Name)
	assert.Equal(t, "tools", entries[0].Category)
	assert.Equal(t, "Acme", entries[0].Brand)
	require.NotNil(t, entries[0].Rating)
	assert.InDelta(t, 4.2, *entries[0].Rating, 1e-9)

	assert.Equal(t, "Gadget", entries[1].Name)
	assert.Empty(t, entries[1].Brand)
	assert.Nil(t, entries[1].Rating, "missing rating stays nil")
}

func TestHTTPSource_SendsLimit(t *testing.T) {
	server := catalogtest.New(t, products)
	src := NewHTTPSource(HTTPOptions{URL: server.ProductsURL(), Limit: 1, Timeout: time.Second})
	defer src.Close()

	entries, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Widget", entries[0].Name)
}

func TestHTTPSource_ErrorStatus(t *testing.T) {
	server := catalogtest.New(t, products, catalogtest.WithStatus(http.StatusNotFound))
	src := newSource(t, server.ProductsURL(), 0)

	_, err := src.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrBadStatus)
}

func TestHTTPSource_RetriesServerErrors(t *testing.T) {
	server := catalogtest.New(t, products, catalogtest.FailFirst(2))
	src := newSource(t, server.ProductsURL(), 2)

	entries, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 3, server.Hits())
}

func TestHTTPSource_MalformedPayload(t *testing.T) {
	server := catalogtest.New(t, nil, catalogtest.WithRawBody(`{"products": [{"id": "one"`))
	src := newSource(t, server.ProductsURL(), 0)

	_, err := src.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrBadPayload)
}

func TestDecode(t *testing.T) {
	_, err := Decode([]byte(`{"items": []}`))
	assert.ErrorIs(t, err, ErrBadPayload, "payload without products array")

	entries, err := Decode([]byte(`{"products": []}`))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"products":[{"id":7,"title":"Stapler","category":"office","brand":"Swingline","rating":3.5}]}`), 0o644))

	entries, err := FileSource{Path: path}.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Stapler", entries[0].Name)
	assert.Equal(t, "Swingline", entries[0].Brand)

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}.Fetch(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Success(t *testing.T) {
	server := catalogtest.New(t, products)
	src := newSource(t, server.ProductsURL(), 0)

	result := Load(context.Background(), src, zaptest.NewLogger(t))
	assert.False(t, result.Degraded)
	assert.NoError(t, result.Err)
	assert.Len(t, result.Entries, 2)
}

func TestLoad_DegradesOnFailure(t *testing.T) {
	server := catalogtest.New(t, products, catalogtest.WithStatus(http.StatusInternalServerError))
	src := newSource(t, server.ProductsURL(), 0)

	result := Load(context.Background(), src, zap.NewNop())
	assert.True(t, result.Degraded)
	assert.ErrorIs(t, result.Err, ErrBadStatus)
	assert.NotNil(t, result.Entries)
	assert.Empty(t, result.Entries)
	assert.Equal(t, 1, server.Hits(), "the catalog is fetched exactly once")
}

func TestLoad_CancelledContext(t *testing.T) {
	server := catalogtest.New(t, products)
	src := newSource(t, server.ProductsURL(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Load(ctx, src, zap.NewNop())
	assert.True(t, result.Degraded)
	assert.Empty(t, result.Entries)
}

func TestLoad_NilLogger(t *testing.T) {
	missing := FileSource{Path: filepath.Join(t.TempDir(), "absent.json")}

	var result Result
	assert.NotPanics(t, func() {
		result = Load(context.Background(), missing, nil)
	})
	assert.True(t, result.Degraded)

	server := catalogtest.New(t, products)
	assert.NotPanics(t, func() {
		result = Load(context.Background(), newSource(t, server.ProductsURL(), 0), nil)
	})
	assert.Len(t, result.Entries, 2)
}

func TestFromConfig(t *testing.T) {
	src, closeFn := FromConfig(config.CatalogConfig{File: "snapshot.json", URL: "http://example.invalid"}, zap.NewNop())
	assert.IsType(t, FileSource{}, src)
	assert.NoError(t, closeFn())

	src, closeFn = FromConfig(config.CatalogConfig{URL: "http://example.invalid", Timeout: time.Second}, zap.NewNop())
	assert.IsType(t, &HTTPSource{}, src)
	assert.NoError(t, closeFn())
}
