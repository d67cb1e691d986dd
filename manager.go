package transit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"nycboard.dev/transit/downloader"
	"nycboard.dev/transit/parse"
	"nycboard.dev/transit/storage"
)

const (
	defaultTableTimeout = 30 * time.Second
	defaultTableMaxSize = 16 << 20
	defaultTableTTL     = 6 * time.Hour
)

// Manager owns the curated station tables: it loads them from disk or
// a URL, persists them through storage, and keeps a registry swapped
// to the latest good version. A load that fails to parse leaves the
// previous registry table in place.
type Manager struct {
	Downloader downloader.Downloader
	Timeout    time.Duration

	storage  storage.Storage
	registry *Registry
}

func NewManager(s storage.Storage) *Manager {
	return &Manager{
		Downloader: downloader.NewMemoryDownloader(),
		Timeout:    defaultTableTimeout,
		storage:    s,
		registry:   &Registry{},
	}
}

// Registry returns the registry this manager keeps up to date. It is
// empty until the first successful load.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// LoadFiles loads curated tables from local CSV files. routesPath may
// be empty when no static route table is curated.
func (m *Manager) LoadFiles(stationsPath, routesPath string) error {
	stations, err := os.Open(stationsPath)
	if err != nil {
		return fmt.Errorf("opening station table: %w", err)
	}
	defer stations.Close()

	var routes io.Reader
	if routesPath != "" {
		f, err := os.Open(routesPath)
		if err != nil {
			return fmt.Errorf("opening route table: %w", err)
		}
		defer f.Close()
		routes = f
	}

	return m.load(stations, routes)
}

// LoadURLs fetches curated tables over HTTP. routesURL may be empty.
// Fetches are cached, so a periodic reload doesn't hammer the table
// host.
func (m *Manager) LoadURLs(ctx context.Context, stationsURL, routesURL string, headers map[string]string) error {
	options := downloader.GetOptions{
		Timeout:  m.Timeout,
		MaxSize:  defaultTableMaxSize,
		Cache:    true,
		CacheTTL: defaultTableTTL,
	}

	stations, err := m.Downloader.Get(ctx, stationsURL, headers, options)
	if err != nil {
		return fmt.Errorf("fetching station table: %w", err)
	}

	var routes io.Reader
	if routesURL != "" {
		body, err := m.Downloader.Get(ctx, routesURL, headers, options)
		if err != nil {
			return fmt.Errorf("fetching route table: %w", err)
		}
		routes = bytes.NewReader(body)
	}

	return m.load(bytes.NewReader(stations), routes)
}

// Refresh rebuilds the registry from whatever storage currently holds,
// without re-parsing source tables.
func (m *Manager) Refresh() error {
	return m.registry.ReloadFromStorage(m.storage)
}

func (m *Manager) load(stations, routes io.Reader) error {
	if err := parse.ParseTables(m.storage, stations, routes); err != nil {
		return fmt.Errorf("parsing tables: %w", err)
	}

	return m.registry.ReloadFromStorage(m.storage)
}
