// Package database stores page view counters for go-paradigmas
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-while/go-paradigmas/internal/config"
	"github.com/go-while/go-paradigmas/internal/models"
	_ "github.com/mattn/go-sqlite3" // SQLite3 driver
	"github.com/robfig/cron/v3"
)

// ErrClosed is returned by operations on a closed store
var ErrClosed = errors.New("view store closed")

// ViewStore counts page hits
type ViewStore interface {
	RecordHit(path string)
	PageViews() ([]*models.PageView, error)
	TotalViews() (int64, error)
	Flush() error
	Close() error
}

// DBConfig represents database configuration
type DBConfig struct {
	Path string

	FlushInterval time.Duration // scheduled flush of pending hits
	BatchSize     int           // flush once this many distinct paths are pending
	QueueSize     int           // buffered hits between handlers and the worker

	MaxOpenConns int
	WALMode      bool
	SyncMode     string // OFF, NORMAL, FULL
	CacheSize    int    // negative values are KiB
	TempStore    string // MEMORY, FILE
}

// DefaultDBConfig returns default database configuration
func DefaultDBConfig() *DBConfig {
	return &DBConfig{
		Path:          "./data/paradigmas.sq3",
		FlushInterval: config.DefaultFlushInterval,
		BatchSize:     config.DefaultBatchSize,
		QueueSize:     1024,
		MaxOpenConns:  4,
		WALMode:       true,
		SyncMode:      "NORMAL",
		CacheSize:     -4096,
		TempStore:     "MEMORY",
	}
}

// NewViewStore opens the sqlite store of cfg, or an in-memory counter
// when no path is configured.
func NewViewStore(cfg config.DatabaseConfig) (ViewStore, error) {
	if cfg.Path == "" {
		log.Printf("[DB]: No database path set, page views are kept in memory")
		return NewMemoryViews(), nil
	}
	dbconfig := DefaultDBConfig()
	dbconfig.Path = cfg.Path
	if cfg.FlushInterval > 0 {
		dbconfig.FlushInterval = cfg.FlushInterval
	}
	if cfg.BatchSize > 0 {
		dbconfig.BatchSize = cfg.BatchSize
	}
	return OpenDatabase(dbconfig)
}

// Database is the sqlite backed ViewStore
type Database struct {
	db       *sql.DB
	dbconfig *DBConfig

	hits     chan string
	flushReq chan chan error

	// viewsMux makes a commit and the release of its inflight batch
	// atomic for readers
	viewsMux   sync.RWMutex
	pendingMux sync.Mutex
	pending    map[string]*models.PageView
	inflight   map[string]*models.PageView // batch being written

	cron      *cron.Cron
	WG        *sync.WaitGroup
	StopChan  chan struct{}
	closeOnce sync.Once
}

// OpenDatabase opens (and migrates) the sqlite database of dbconfig and
// starts the hit worker and the flush schedule.
func OpenDatabase(dbconfig *DBConfig) (*Database, error) {
	if dbconfig == nil {
		dbconfig = DefaultDBConfig()
	}
	if dbconfig.BatchSize <= 0 {
		dbconfig.BatchSize = config.DefaultBatchSize
	}
	if dbconfig.QueueSize <= 0 {
		dbconfig.QueueSize = 1024
	}

	if dir := filepath.Dir(dbconfig.Path); dir != "" {
		if err := createDirIfNotExists(dir); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	log.Printf("[DB]: Opening database at: %s", dbconfig.Path)
	sqlDB, err := sql.Open("sqlite3", dbconfig.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(dbconfig.MaxOpenConns)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := applySQLitePragmas(sqlDB, dbconfig); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to apply SQLite pragmas: %w", err)
	}

	db := &Database{
		db:       sqlDB,
		dbconfig: dbconfig,
		hits:     make(chan string, dbconfig.QueueSize),
		flushReq: make(chan chan error),
		pending:  make(map[string]*models.PageView),
		WG:       &sync.WaitGroup{},
		StopChan: make(chan struct{}),
	}

	if err := db.Migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	db.WG.Add(1)
	go db.hitWorker()

	if dbconfig.FlushInterval > 0 {
		db.cron = cron.New()
		spec := fmt.Sprintf("@every %s", dbconfig.FlushInterval)
		if _, err := db.cron.AddFunc(spec, db.scheduledFlush); err != nil {
			db.Close()
			return nil, fmt.Errorf("invalid flush interval %s: %w", dbconfig.FlushInterval, err)
		}
		db.cron.Start()
	}
	return db, nil
}

// applySQLitePragmas applies performance and configuration pragmas to SQLite connection
func applySQLitePragmas(conn *sql.DB, dbconfig *DBConfig) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA cache_size = %d", dbconfig.CacheSize),
		fmt.Sprintf("PRAGMA synchronous = %s", dbconfig.SyncMode),
		fmt.Sprintf("PRAGMA temp_store = %s", dbconfig.TempStore),
		"PRAGMA busy_timeout = 30000", // 30 seconds
	}
	if dbconfig.WALMode {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma '%s': %w", pragma, err)
		}
	}
	return nil
}

// IsDBshutdown reports whether Close has been called
func (db *Database) IsDBshutdown() bool {
	select {
	case <-db.StopChan:
		return true
	default:
		return false
	}
}

// PageViews returns every stored counter plus hits not yet flushed,
// most viewed first.
func (db *Database) PageViews() ([]*models.PageView, error) {
	db.viewsMux.RLock()
	defer db.viewsMux.RUnlock()

	rows, err := retryableQuery(db.db, `SELECT path, views, last_seen FROM page_views`)
	if err != nil {
		return nil, fmt.Errorf("failed to query page views: %w", err)
	}
	defer rows.Close()

	merged := make(map[string]*models.PageView)
	for rows.Next() {
		pv := &models.PageView{}
		if err := rows.Scan(&pv.Path, &pv.Views, &pv.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan page view: %w", err)
		}
		merged[pv.Path] = pv
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating page views: %w", err)
	}

	db.pendingMux.Lock()
	mergeViews(merged, db.inflight)
	mergeViews(merged, db.pending)
	db.pendingMux.Unlock()

	return sortPageViews(merged), nil
}

// TotalViews sums every counter
func (db *Database) TotalViews() (int64, error) {
	views, err := db.PageViews()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, pv := range views {
		total += pv.Views
	}
	return total, nil
}

// Close flushes pending hits, stops the worker and closes the database
func (db *Database) Close() error {
	var err error
	db.closeOnce.Do(func() {
		if db.cron != nil {
			<-db.cron.Stop().Done()
		}
		close(db.StopChan)
		db.WG.Wait()
		if cerr := db.db.Close(); cerr != nil {
			err = fmt.Errorf("failed to close database: %w", cerr)
		}
		log.Printf("[DB]: Database closed")
	})
	return err
}

func createDirIfNotExists(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}
