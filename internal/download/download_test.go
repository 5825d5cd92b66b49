package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch_WritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "manual.pdf")
	got, err := Fetch(context.Background(), testFetcher(), srv.URL, path, false)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
}

func TestFetch_SkipsExistingFile(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "manual.pdf")

	_, err := Fetch(context.Background(), testFetcher(), srv.URL, path, false)
	require.NoError(t, err)
	_, err = Fetch(context.Background(), testFetcher(), srv.URL, path, false)
	require.NoError(t, err)

	// Exactly one network transfer across both calls.
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_ForceRedownloads(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fresh"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "manual.pdf")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	_, err := Fetch(context.Background(), testFetcher(), srv.URL, path, true)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fresh", string(data))
}

func TestFetch_NonPDFContentTypeStillSaves(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>error page</html>"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "manual.pdf")
	_, err := Fetch(context.Background(), testFetcher(), srv.URL, path, false)
	require.NoError(t, err)
	assert.FileExists(t, path)
}
