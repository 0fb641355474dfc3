package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/truthlens/internal/cache"
	"github.com/ppiankov/truthlens/internal/model"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:       5 * time.Second,
		UserAgent:     "truthlens-test/0.1",
		MaxBodyBytes:  1 << 20,
		RespectRobots: true,
	}
}

func TestDownloader_DownloadExtracts(t *testing.T) {
	archive := buildZip(t, map[string]string{
		"train.tsv": sampleTSV,
		"README":    "LIAR dataset",
		"sub/x.tsv": "nested",
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(archive)
	}))
	defer server.Close()

	dest := t.TempDir()
	d := NewDownloader(DownloaderOptions{HTTP: testHTTPConfig()})

	files, err := d.Download(context.Background(), server.URL+"/liar_dataset.zip", dest)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if len(files) != 3 {
		t.Errorf("expected 3 extracted files, got %v", files)
	}

	data, err := os.ReadFile(filepath.Join(dest, "train.tsv"))
	if err != nil {
		t.Fatalf("read extracted train.tsv: %v", err)
	}
	if string(data) != sampleTSV {
		t.Error("extracted train.tsv content mismatch")
	}
	if _, err := os.Stat(filepath.Join(dest, "sub", "x.tsv")); err != nil {
		t.Errorf("expected nested file extracted: %v", err)
	}
}

func TestDownloader_HTTPErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	d := NewDownloader(DownloaderOptions{HTTP: testHTTPConfig()})
	_, err := d.Download(context.Background(), server.URL+"/liar_dataset.zip", t.TempDir())
	if err == nil {
		t.Fatal("expected error for 503")
	}
	if got := err.Error(); got != "unexpected status: 503 Service Unavailable" {
		t.Errorf("unexpected error: %s", got)
	}
	if hits.Load() != 1 {
		t.Errorf("expected exactly one attempt, got %d", hits.Load())
	}
}

func TestDownloader_RobotsDisallow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /\n"))
			return
		}
		t.Error("dataset should not be requested when disallowed")
	}))
	defer server.Close()

	d := NewDownloader(DownloaderOptions{HTTP: testHTTPConfig()})
	_, err := d.Fetch(context.Background(), server.URL+"/liar_dataset.zip")
	if !errors.Is(err, ErrDisallowed) {
		t.Errorf("expected ErrDisallowed, got %v", err)
	}
}

func TestDownloader_UsesCache(t *testing.T) {
	archive := buildZip(t, map[string]string{"train.tsv": sampleTSV})

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		hits.Add(1)
		_, _ = w.Write(archive)
	}))
	defer server.Close()

	c := cache.NewLayeredCache(time.Minute, t.TempDir(), time.Hour)
	d := NewDownloader(DownloaderOptions{HTTP: testHTTPConfig(), Cache: c})

	url := server.URL + "/liar_dataset.zip"
	for i := 0; i < 2; i++ {
		data, err := d.Fetch(context.Background(), url)
		if err != nil {
			t.Fatalf("Fetch %d: %v", i, err)
		}
		if !bytes.Equal(data, archive) {
			t.Fatalf("Fetch %d returned unexpected bytes", i)
		}
	}

	if hits.Load() != 1 {
		t.Errorf("expected one network fetch, got %d", hits.Load())
	}
}

func TestDownloader_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 2048))
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.MaxBodyBytes = 1024
	cfg.RespectRobots = false

	d := NewDownloader(DownloaderOptions{HTTP: cfg})
	if _, err := d.Fetch(context.Background(), server.URL+"/big.zip"); err == nil {
		t.Error("expected error for oversized archive")
	}
}

func TestExtract_RejectsZipSlip(t *testing.T) {
	archive := buildZip(t, map[string]string{"../escape.txt": "nope"})

	if _, err := Extract(archive, t.TempDir()); err == nil {
		t.Error("expected error for entry escaping destination")
	}
}

func TestExtract_NotAZip(t *testing.T) {
	if _, err := Extract([]byte("not a zip"), t.TempDir()); err == nil {
		t.Error("expected error for invalid archive")
	}
}

func TestPreprocess(t *testing.T) {
	dir := t.TempDir()
	trainFile := filepath.Join(dir, "train.tsv")
	processedFile := filepath.Join(dir, "out", "processed_liar.csv")

	if err := os.WriteFile(trainFile, []byte(sampleTSV), 0644); err != nil {
		t.Fatal(err)
	}

	stats, err := Preprocess(trainFile, processedFile)
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if stats.Total != 3 || stats.Missing != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	statements, err := ReadProcessed(processedFile)
	if err != nil {
		t.Fatalf("ReadProcessed: %v", err)
	}
	if len(statements) != 3 {
		t.Errorf("expected 3 processed rows, got %d", len(statements))
	}
}
