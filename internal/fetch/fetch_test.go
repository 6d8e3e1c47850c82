package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSendsBrowserUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := NewClient(5*time.Second, nil)
	body, err := c.Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, userAgent, gotUA)
}

func TestGetRejectsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(5*time.Second, nil)
	_, err := c.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestDownloadCachedWritesAndReuses(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("archive-bytes-archive-bytes"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "raw", "2024", "handbook.zip")
	c := NewClient(5*time.Second, nil)

	require.NoError(t, c.DownloadCached(context.Background(), server.URL, dest, 10))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "archive-bytes-archive-bytes", string(data))

	// Second call is served from disk.
	require.NoError(t, c.DownloadCached(context.Background(), server.URL, dest, 10))
	assert.Equal(t, 1, hits)
}

func TestDownloadCachedRejectsTinyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("err"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "handbook.zip")
	c := NewClient(5*time.Second, nil)
	err := c.DownloadCached(context.Background(), server.URL, dest, 1000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too small")

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadCachedRefetchesUndersizedCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("full-archive-content"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "handbook.zip")
	require.NoError(t, os.WriteFile(dest, []byte("x"), 0o644))

	c := NewClient(5*time.Second, nil)
	require.NoError(t, c.DownloadCached(context.Background(), server.URL, dest, 5))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "full-archive-content", string(data))
}

func TestDiscoverArchiveLinks(t *testing.T) {
	const listing = `<html><body>
		<a href="/2025-02/Handbook_India_2023_24.zip">Handbook on Indian Insurance Statistics 2023-24</a>
		<a href="https://cdn.example.org/docs/handbook-2022-23.zip">Handbook 2022-23</a>
		<a href="/docs/annual_report_2023_24.pdf">Annual Report 2023-24</a>
		<a href="/old/handbook_2017_18.zip">Handbook 2017-18</a>
		<a href="/docs/misc.zip">Miscellaneous archive</a>
	</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listing))
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewClient(5*time.Second, nil)
	found := DiscoverArchiveLinks(context.Background(), c, []string{server.URL + "/listing"}, 2019, logger)

	require.Len(t, found, 2)
	assert.Equal(t, server.URL+"/2025-02/Handbook_India_2023_24.zip", found[2024])
	assert.Equal(t, "https://cdn.example.org/docs/handbook-2022-23.zip", found[2023])
}

func TestDiscoverReportLinks(t *testing.T) {
	const listing = `<html><body>
		<a href="/docs/annual_report_2023_24.pdf">Annual Report 2023-24</a>
		<a href="/2025-02/Handbook_India_2023_24.zip">Handbook 2023-24</a>
	</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listing))
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewClient(5*time.Second, nil)
	found := DiscoverReportLinks(context.Background(), c, []string{server.URL + "/listing"}, 2019, logger)
	require.Len(t, found, 1)
	assert.Equal(t, server.URL+"/docs/annual_report_2023_24.pdf", found[2024])
}

func TestDiscoverSkipsDeadListingPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/dead" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`<a href="/h_2023_24.zip">Handbook 2023-24</a>`))
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewClient(5*time.Second, nil)
	found := DiscoverArchiveLinks(context.Background(), c, []string{server.URL + "/dead", server.URL + "/live"}, 2019, logger)
	require.Len(t, found, 1)
	assert.Equal(t, server.URL+"/h_2023_24.zip", found[2024])
}

func TestLatestYear(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
		ok   bool
	}{
		{"underscore span", "Handbook_India_2023_24.zip", 2024, true},
		{"hyphen span", "handbook-2022-23.zip", 2023, true},
		{"date segment is not a span", "/2025-02/Handbook_India_2023_24.zip", 2024, true},
		{"plain year fallback", "statistics_2021.zip", 2021, true},
		{"highest plain year wins", "retrospective 2019 to 2022 data", 2022, true},
		{"no year at all", "miscellaneous.zip", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := latestYear(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
