package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autodocs/manuals-cli/internal/fetcher"
)

const productsJSON = `[
	{"brand":"Toyota","model":"RAV4","modelType":"XA50","ngtdModelId":42,"year":2022,"lineOffDate":"2021-11-01T00:00:00"},
	{"brand":"Toyota","model":"RAV4","modelType":"XA50","ngtdModelId":42,"year":2023,"lineOffDate":"2022-11-01T00:00:00"},
	{"brand":"Toyota","model":"RAV4","modelType":"XA50","ngtdModelId":42,"year":2024,"lineOffDate":"2023-11-01T00:00:00"}
]`

const publicationsHTML = `<html><body>
<script id="__NEXT_DATA__" type="application/json">{
	"props": {"pageProps": {"publications": [
		{"partNumber":"OM777","publicationType":"OM","language":"en-GB",
		 "title":"Owner's Manual","lineOffDate":"2024-02-01T00:00:00",
		 "modelType":"XA50","year":2024},
		{"partNumber":"SM001","publicationType":"SM","language":"fr",
		 "title":"Service Manual","lineOffDate":"2024-03-01T00:00:00"}
	]}}
}</script>
</body></html>`

// testVendor simulates the catalog endpoint, the publications portal, the
// pdf link endpoint, and the file CDN on a single server.
type testVendor struct {
	srv      *httptest.Server
	pdfCalls atomic.Int32
}

func newTestVendor(t *testing.T) *testVendor {
	t.Helper()
	v := &testVendor{}

	mux := http.NewServeMux()
	mux.HandleFunc("/pubhub/info/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productsJSON))
	})
	mux.HandleFunc("/publications", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(publicationsHTML))
	})
	mux.HandleFunc("/publications/content/pdfLink", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "OM777", r.URL.Query().Get("partNumber"))
		assert.Equal(t, "XA50", r.URL.Query().Get("modelType"))
		assert.Equal(t, "2024-02-01", r.URL.Query().Get("lineOffDate"))
		fmt.Fprintf(w, `{"url":"%s/files/manual.pdf"}`, v.srv.URL)
	})
	mux.HandleFunc("/files/manual.pdf", func(w http.ResponseWriter, r *http.Request) {
		v.pdfCalls.Add(1)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake manual"))
	})

	v.srv = httptest.NewServer(mux)
	t.Cleanup(v.srv.Close)
	return v
}

func newTestPipeline(srv *httptest.Server, outDir string) *Pipeline {
	f := fetcher.New(fetcher.Options{Timeout: 5 * time.Second, MaxRetries: 1})
	return New(f, Options{
		APIBase:      srv.URL,
		PortalBase:   srv.URL,
		OutDir:       outDir,
		Language:     "en",
		YearCap:      12,
		SiblingYears: true,
		Merge:        true,
	})
}

func TestRun_EndToEnd(t *testing.T) {
	vendor := newTestVendor(t)
	outDir := t.TempDir()

	sum, err := newTestPipeline(vendor.srv, outDir).Run(context.Background())
	require.NoError(t, err)

	// Three variants collapse to one logical product.
	assert.Equal(t, 1, sum.Products)
	assert.Equal(t, 1, sum.Downloaded)
	assert.Equal(t, 0, sum.Skipped)

	// Representative is the 2024 variant and the name carries its year.
	want := filepath.Join(outDir, "Toyota.RAV4.XA50.2024.OM777.pdf")
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake manual", string(data))
}

func TestRun_RerunDoesNotRedownload(t *testing.T) {
	vendor := newTestVendor(t)
	outDir := t.TempDir()
	p := newTestPipeline(vendor.srv, outDir)

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), vendor.pdfCalls.Load())
}

func TestRun_NoManualIsSkipNotFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pubhub/info/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productsJSON))
	})
	mux.HandleFunc("/publications", func(w http.ResponseWriter, r *http.Request) {
		// Hydration payload present but holds no English OM.
		w.Write([]byte(`<script id="__NEXT_DATA__" type="application/json">{"publications":[{"partNumber":"SM1","publicationType":"SM","language":"fr"}]}</script>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sum, err := newTestPipeline(srv, t.TempDir()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Products)
	assert.Equal(t, 0, sum.Downloaded)
	assert.Equal(t, 1, sum.Skipped)
}

func TestRun_PublicationsPageErrorIsSkip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pubhub/info/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(productsJSON))
	})
	mux.HandleFunc("/publications", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sum, err := newTestPipeline(srv, t.TempDir()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped)
}

func TestRun_CatalogFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestPipeline(srv, t.TempDir()).Run(context.Background())
	require.Error(t, err)
}

func TestRun_ProductLimit(t *testing.T) {
	vendor := newTestVendor(t)

	p := newTestPipeline(vendor.srv, t.TempDir())
	p.opts.Merge = false
	p.opts.ProductLimit = 2

	sum, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Products)
}
