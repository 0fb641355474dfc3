package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/truthlens/internal/cache"
	"github.com/ppiankov/truthlens/internal/logger"
	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/util"
	"github.com/ppiankov/truthlens/internal/worker"
)

// ErrDisallowed is returned when robots.txt forbids fetching the dataset URL
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Downloader fetches and extracts the LIAR dataset archive
type Downloader struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	cache      cache.Cache
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	log        logger.Logger
}

// DownloaderOptions wires a Downloader. Cache may be nil to always fetch.
type DownloaderOptions struct {
	HTTP      model.HTTPConfig
	RateLimit model.RateLimitingConfig
	Cache     cache.Cache
	Logger    logger.Logger
}

// NewDownloader creates a downloader from options
func NewDownloader(opts DownloaderOptions) *Downloader {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	client := &http.Client{
		Timeout: opts.HTTP.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(opts.HTTP.HTTPProxy, opts.HTTP.HTTPSProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after 5 redirects")
			}
			return nil
		},
	}

	d := &Downloader{
		httpClient: client,
		userAgent:  opts.HTTP.UserAgent,
		maxBytes:   opts.HTTP.MaxBodyBytes,
		cache:      opts.Cache,
		limiter:    worker.NewLimiter(opts.RateLimit.RequestsPerSecond, opts.RateLimit.BurstSize),
		log:        log,
	}
	if opts.HTTP.RespectRobots {
		d.robots = util.NewRobotsChecker(opts.HTTP.UserAgent, client)
	}
	return d
}

// Fetch returns the archive bytes for rawURL, from cache when possible.
// There is no retry: a failed fetch is returned to the caller as is.
func (d *Downloader) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	key := cache.Key(rawURL)
	if d.cache != nil {
		if data, ok := d.cache.Get(key); ok {
			d.log.Info("Using cached dataset archive", logger.String("url", rawURL), logger.Int("bytes", len(data)))
			return data, nil
		}
	}

	var crawlDelay time.Duration
	if d.robots != nil {
		allowed, delay, err := d.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
		crawlDelay = delay
	}

	if err := d.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "application/zip,application/octet-stream;q=0.9,*/*;q=0.8")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := readLimited(resp.Body, d.maxBytes)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		if err := d.cache.Set(key, body, 0); err != nil {
			d.log.Warn("Failed to cache dataset archive", logger.Error(err))
		}
	}

	return body, nil
}

// Download fetches the archive at rawURL and extracts it into destDir.
// It returns the paths of the extracted files.
func (d *Downloader) Download(ctx context.Context, rawURL, destDir string) ([]string, error) {
	d.log.Info("Downloading dataset", logger.String("url", rawURL), logger.String("dest", destDir))

	data, err := d.Fetch(ctx, rawURL)
	if err != nil {
		d.log.Error("Dataset download failed", logger.String("url", rawURL), logger.Error(err))
		return nil, err
	}

	files, err := Extract(data, destDir)
	if err != nil {
		d.log.Error("Dataset extraction failed", logger.Error(err))
		return nil, err
	}

	d.log.Info("Dataset downloaded and extracted", logger.Int("files", len(files)))
	return files, nil
}

// Extract unpacks a zip archive into destDir, refusing entries that escape it
func Extract(archive []byte, destDir string) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create dest dir: %w", err)
	}

	root, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("resolve dest dir: %w", err)
	}

	var extracted []string
	for _, f := range zr.File {
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return nil, fmt.Errorf("zip entry %q escapes destination", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, fmt.Errorf("create dir %s: %w", f.Name, err)
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return nil, err
		}
		extracted = append(extracted, filepath.Join(destDir, filepath.FromSlash(f.Name)))
	}

	return extracted, nil
}

func extractFile(f *zip.File, target string) (err error) {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", f.Name, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", target, closeErr)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		body, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return body, nil
	}

	body, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return nil, fmt.Errorf("archive exceeds %d bytes", maxBytes)
	}
	return body, nil
}
