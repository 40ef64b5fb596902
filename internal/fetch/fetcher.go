// =============================================================================
// FZ10 Ingest - Report Fetcher
// =============================================================================
//
// Downloads one monthly FZ 10 workbook from the KBA download portal and
// caches the raw bytes on disk. Retrieval is idempotent per reporting period:
// at most one network fetch per period, every later call is served from the
// cache. The cache key is the (year, month) pair, encoded in the file name.
//
// The fetcher hands out opaque byte blobs; parsing is entirely the caller's
// concern.
//
// =============================================================================

package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/kbadata/fz10/internal/types"
	"github.com/kbadata/fz10/pkg/utils"
)

// DefaultURLTemplate is the KBA download URL for the FZ 10 series. The two
// verbs are the four-digit year and the zero-padded month.
const DefaultURLTemplate = "https://www.kba.de/SharedDocs/Downloads/DE/Statistik/Fahrzeuge/FZ10/fz10_%d_%02d.xlsx?__blob=publicationFile&v=3"

// Fetcher downloads and caches FZ 10 workbooks.
type Fetcher struct {
	client      *http.Client
	cacheDir    string
	urlTemplate string
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the HTTP client (used by tests and for custom
// timeouts).
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithURLTemplate replaces the download URL template.
func WithURLTemplate(template string) Option {
	return func(f *Fetcher) { f.urlTemplate = template }
}

// WithLogger replaces the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// New creates a Fetcher that caches downloads under cacheDir.
func New(cacheDir string, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: 60 * time.Second},
		cacheDir:    cacheDir,
		urlTemplate: DefaultURLTemplate,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the workbook bytes for one reporting period, downloading them
// if the cache has no entry yet.
func (f *Fetcher) Fetch(ctx context.Context, p types.Period) ([]byte, error) {
	cachePath := filepath.Join(f.cacheDir, utils.CacheFileName(p.Year, p.Month))

	if utils.FileExists(cachePath) {
		f.logger.Debug("serving report from cache",
			slog.String("period", p.String()),
			slog.String("path", cachePath))
		blob, err := os.ReadFile(cachePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read cached report: %w", err)
		}
		return blob, nil
	}

	blob, err := f.download(ctx, p)
	if err != nil {
		return nil, err
	}

	if err := utils.WriteFileAtomic(cachePath, blob); err != nil {
		return nil, fmt.Errorf("failed to cache report: %w", err)
	}
	f.logger.Info("report downloaded",
		slog.String("period", p.String()),
		slog.Int("bytes", len(blob)),
		slog.String("cache", cachePath))

	return blob, nil
}

// download performs the actual HTTP GET against the KBA portal.
func (f *Fetcher) download(ctx context.Context, p types.Period) ([]byte, error) {
	url := fmt.Sprintf(f.urlTemplate, p.Year, p.Month)
	f.logger.Debug("downloading report", slog.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download report for %s: %w", p, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("report for %s not available: server returned %s", p, resp.Status)
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return blob, nil
}
