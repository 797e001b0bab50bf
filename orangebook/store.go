package orangebook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/clock"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/entities"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/interfaces"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/logging"
	"github.com/deeyajkotecha-del/helix-biotech-sub002/metrics"
	"golang.org/x/sync/singleflight"
)

// Compile-time check to ensure Store implements OrangeBookStore
var _ interfaces.OrangeBookStore = (*Store)(nil)

const (
	DefaultURL     = "https://www.fda.gov/media/76860/download"
	DefaultTTL     = 24 * time.Hour
	DefaultTimeout = 30 * time.Second

	flightKey = "fetch"
)

// Options configures a Store. Zero values fall back to the defaults above.
type Options struct {
	URL        string
	CacheDir   string
	TTL        time.Duration
	Timeout    time.Duration
	HTTPClient *http.Client
	Clock      clock.Clock
	// Validator, when set, reports data quality for every freshly read generation
	Validator interfaces.DataValidator
}

// Store keeps the parsed Orange Book tables in memory, backed by a directory
// of cached text files, backed by the published archive.
type Store struct {
	url       string
	cacheDir  string
	ttl       time.Duration
	timeout   time.Duration
	client    *http.Client
	clock     clock.Clock
	validator interfaces.DataValidator

	mu     sync.RWMutex
	tables *entities.OrangeBookTables

	// group collapses concurrent cold loads and refreshes into one fetch
	group singleflight.Group
}

// NewStore creates a Store. Nothing is read until the first Load.
func NewStore(opts Options) *Store {
	s := &Store{
		url:       opts.URL,
		cacheDir:  opts.CacheDir,
		ttl:       opts.TTL,
		timeout:   opts.Timeout,
		client:    opts.HTTPClient,
		clock:     opts.Clock,
		validator: opts.Validator,
	}

	if s.url == "" {
		s.url = DefaultURL
	}
	if s.cacheDir == "" {
		s.cacheDir = filepath.Join(".", "files", "orangebook")
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: s.timeout}
	}
	if s.clock == nil {
		s.clock = clock.System{}
	}

	return s
}

// Tables returns the in-memory generation, or nil before the first load
func (s *Store) Tables() *entities.OrangeBookTables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables
}

// Load returns tables younger than the TTL, checking memory, then the disk
// cache, then downloading the archive. Download failures are returned as is;
// an older generation is never served in their place.
func (s *Store) Load(ctx context.Context) (*entities.OrangeBookTables, error) {
	if tables := s.freshTables(); tables != nil {
		metrics.OrangeBookLoads.WithLabelValues(string(entities.SourceMemory)).Inc()
		return tables, nil
	}

	tables, shared, err := s.fetch(ctx, func(fetchCtx context.Context) (*entities.OrangeBookTables, error) {
		// Another caller may have finished a load while we waited
		if tables := s.freshTables(); tables != nil {
			return tables, nil
		}
		if tables, ok := s.loadFromDisk(); ok {
			return tables, nil
		}
		return s.download(fetchCtx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.Debug("Orange Book load shared with a concurrent caller")
	}

	return tables, nil
}

// Refresh downloads a new archive regardless of cache age. A refresh that
// joins an in-flight load which did not download starts its own download.
func (s *Store) Refresh(ctx context.Context) (*entities.OrangeBookTables, error) {
	for {
		tables, _, err := s.fetch(ctx, s.download)
		if err != nil {
			return nil, err
		}
		if tables.Source == entities.SourceNetwork {
			return tables, nil
		}
	}
}

// fetch runs fn once for all concurrent loads and refreshes, so the cache
// files have a single writer. fn gets a context detached from the caller and
// bounded by the store timeout; a caller whose ctx ends stops waiting
// without failing the others.
func (s *Store) fetch(ctx context.Context, fn func(context.Context) (*entities.OrangeBookTables, error)) (*entities.OrangeBookTables, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	results := s.group.DoChan(flightKey, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return fn(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, res.Shared, res.Err
		}
		return res.Val.(*entities.OrangeBookTables), res.Shared, nil
	}
}

func (s *Store) freshTables() *entities.OrangeBookTables {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tables == nil {
		return nil
	}
	if s.clock.Now().Sub(s.tables.LoadedAt) >= s.ttl {
		return nil
	}
	return s.tables
}

// loadFromDisk reads the cache directory when all three files exist and are
// younger than the TTL by modification time. The oldest modification time
// becomes LoadedAt, so memory expires with the files it came from.
func (s *Store) loadFromDisk() (*entities.OrangeBookTables, bool) {
	now := s.clock.Now()
	texts := make(map[Dataset]string, len(Datasets))
	var oldest time.Time

	for _, dataset := range Datasets {
		path := filepath.Join(s.cacheDir, dataset.cacheFileName())

		info, err := os.Stat(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logging.Warn("Failed to stat Orange Book cache file", "path", path, "error", err)
			}
			return nil, false
		}
		if now.Sub(info.ModTime()) >= s.ttl {
			logging.Info("Orange Book disk cache is stale", "path", path, "modified", info.ModTime().Format(time.RFC3339))
			return nil, false
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			logging.Warn("Failed to read Orange Book cache file", "path", path, "error", err)
			return nil, false
		}
		texts[dataset] = string(raw)
		if oldest.IsZero() || info.ModTime().Before(oldest) {
			oldest = info.ModTime()
		}
	}

	return s.install(texts, entities.SourceDisk, oldest), true
}

func (s *Store) download(ctx context.Context) (*entities.OrangeBookTables, error) {
	start := time.Now()
	logging.Info("Downloading Orange Book archive", "url", s.url)

	texts, err := downloadArchive(ctx, s.client, s.url)
	if err != nil {
		metrics.OrangeBookLoadFailures.Inc()
		return nil, fmt.Errorf("orange book load failed: %w", err)
	}

	if err := writeCache(s.cacheDir, texts); err != nil {
		// The tables are still usable, the next cold start downloads again
		logging.Error("Failed to write Orange Book cache", "dir", s.cacheDir, "error", err)
	}

	tables := s.install(texts, entities.SourceNetwork, s.clock.Now())
	metrics.OrangeBookLoadDuration.Observe(time.Since(start).Seconds())
	return tables, nil
}

// install parses texts into a new generation and swaps it in. loadedAt is
// when the data was fetched from the network.
func (s *Store) install(texts map[Dataset]string, source entities.TableSource, loadedAt time.Time) *entities.OrangeBookTables {
	tables := &entities.OrangeBookTables{
		Products:      makeProducts(texts[DatasetProducts]),
		Patents:       makePatents(texts[DatasetPatents]),
		Exclusivities: makeExclusivities(texts[DatasetExclusivities]),
		LoadedAt:      loadedAt,
		Source:        source,
	}

	s.mu.Lock()
	s.tables = tables
	s.mu.Unlock()

	metrics.OrangeBookLoads.WithLabelValues(string(source)).Inc()
	metrics.OrangeBookRows.WithLabelValues(string(DatasetProducts)).Set(float64(len(tables.Products)))
	metrics.OrangeBookRows.WithLabelValues(string(DatasetPatents)).Set(float64(len(tables.Patents)))
	metrics.OrangeBookRows.WithLabelValues(string(DatasetExclusivities)).Set(float64(len(tables.Exclusivities)))

	logging.Info("Orange Book tables loaded",
		"source", source,
		"products", len(tables.Products),
		"patents", len(tables.Patents),
		"exclusivities", len(tables.Exclusivities))

	s.reportQuality(tables)
	return tables
}

func (s *Store) reportQuality(tables *entities.OrangeBookTables) {
	if s.validator == nil {
		return
	}

	report := s.validator.ReportDataQuality(tables)
	if report.DuplicatePatentRows > 0 || report.UnparsablePatentDates > 0 ||
		report.UnparsableExclusivityDates > 0 || len(report.UnclassifiedCodes) > 0 {
		logging.Warn("Orange Book data quality issues",
			"duplicate_patent_rows", report.DuplicatePatentRows,
			"unparsable_patent_dates", report.UnparsablePatentDates,
			"unparsable_exclusivity_dates", report.UnparsableExclusivityDates,
			"unclassified_codes", report.UnclassifiedCodes)
	}
}
