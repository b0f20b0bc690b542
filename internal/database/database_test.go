package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-while/go-paradigmas/internal/config"
	"github.com/go-while/go-paradigmas/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) (*Database, string) {
	t.Helper()
	cfg := DefaultDBConfig()
	cfg.Path = filepath.Join(t.TempDir(), "data", "views.sq3")
	cfg.FlushInterval = 0
	db, err := OpenDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, cfg.Path
}

// storedRows counts rows written to page_views, pending hits excluded
func storedRows(db *Database) int {
	var n int
	rows, err := retryableQuery(db.db, `SELECT COUNT(*) FROM page_views`)
	if err != nil {
		return -1
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return -1
		}
	}
	return n
}

func TestOpenDatabaseMigrates(t *testing.T) {
	db, _ := openTestDB(t)

	applied, err := getAppliedMigrations(db.db)
	require.NoError(t, err)
	assert.True(t, applied["0001_main_page_views.sql"])

	// migrating again is a no-op
	require.NoError(t, db.Migrate())
}

func TestRecordAndFlush(t *testing.T) {
	db, _ := openTestDB(t)

	db.RecordHit("/python")
	db.RecordHit("/python")
	db.RecordHit("/javascript")
	require.NoError(t, db.Flush())
	assert.Equal(t, 2, storedRows(db))

	views, err := db.PageViews()
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "/python", views[0].Path)
	assert.Equal(t, int64(2), views[0].Views)
	assert.False(t, views[0].LastSeen.IsZero())
	assert.Equal(t, "/javascript", views[1].Path)

	db.RecordHit("/javascript")
	db.RecordHit("/javascript")
	require.NoError(t, db.Flush())

	total, err := db.TotalViews()
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	views, err = db.PageViews()
	require.NoError(t, err)
	assert.Equal(t, "/javascript", views[0].Path)
	assert.Equal(t, int64(3), views[0].Views)
}

func TestPendingHitsAreVisible(t *testing.T) {
	db, _ := openTestDB(t)
	db.addPending("/bibliografia", time.Now().UTC())

	views, err := db.PageViews()
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, int64(1), views[0].Views)
	assert.Equal(t, 0, storedRows(db))
}

func TestHitsVisibleWhileFlushIsBlocked(t *testing.T) {
	db, path := openTestDB(t)
	for i := 0; i < 5; i++ {
		db.RecordHit("/haskell")
	}

	// a second connection holds the write lock
	other, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer other.Close()
	blocker, err := other.Begin()
	require.NoError(t, err)
	_, err = blocker.Exec(`INSERT INTO page_views (path, views, last_seen) VALUES (?, ?, ?)`,
		"/elixir", 1, time.Now().UTC())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- db.Flush() }()

	require.Eventually(t, func() bool {
		db.pendingMux.Lock()
		defer db.pendingMux.Unlock()
		return len(db.inflight) == 1
	}, 2*time.Second, 5*time.Millisecond)

	for i := 0; i < 5; i++ {
		total, err := db.TotalViews()
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		time.Sleep(20 * time.Millisecond)
	}
	select {
	case err := <-done:
		t.Fatalf("flush finished while the write lock was held: %v", err)
	default:
	}

	require.NoError(t, blocker.Rollback())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("flush did not finish after the write lock was released")
	}

	total, err := db.TotalViews()
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Equal(t, 1, storedRows(db))
	db.pendingMux.Lock()
	assert.Nil(t, db.inflight)
	db.pendingMux.Unlock()
}

func TestMergeViewsKeepsLatest(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	dst := map[string]*models.PageView{"/a": {Path: "/a", Views: 2, LastSeen: late}}
	src := map[string]*models.PageView{
		"/a": {Path: "/a", Views: 3, LastSeen: early},
		"/b": {Path: "/b", Views: 1, LastSeen: early},
	}
	mergeViews(dst, src)

	assert.Equal(t, int64(5), dst["/a"].Views)
	assert.Equal(t, late, dst["/a"].LastSeen)
	assert.Equal(t, int64(1), dst["/b"].Views)
	dst["/b"].Views++
	assert.Equal(t, int64(1), src["/b"].Views)
}

func TestCloseFlushesAndPersists(t *testing.T) {
	cfg := DefaultDBConfig()
	cfg.Path = filepath.Join(t.TempDir(), "views.sq3")
	cfg.FlushInterval = 0

	db, err := OpenDatabase(cfg)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		db.RecordHit("/")
	}
	require.NoError(t, db.Close())
	assert.NoError(t, db.Close())
	assert.ErrorIs(t, db.Flush(), ErrClosed)
	db.RecordHit("/ignored")

	reopened, err := OpenDatabase(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	total, err := reopened.TotalViews()
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
}

func TestBatchSizeTriggersWrite(t *testing.T) {
	cfg := DefaultDBConfig()
	cfg.Path = filepath.Join(t.TempDir(), "views.sq3")
	cfg.FlushInterval = 0
	cfg.BatchSize = 2
	db, err := OpenDatabase(cfg)
	require.NoError(t, err)
	defer db.Close()

	db.RecordHit("/a")
	db.RecordHit("/b")

	assert.Eventually(t, func() bool {
		return storedRows(db) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScheduledFlush(t *testing.T) {
	cfg := DefaultDBConfig()
	cfg.Path = filepath.Join(t.TempDir(), "views.sq3")
	cfg.FlushInterval = time.Second
	db, err := OpenDatabase(cfg)
	require.NoError(t, err)
	defer db.Close()

	db.RecordHit("/stats")
	assert.Eventually(t, func() bool {
		return storedRows(db) == 1
	}, 4*time.Second, 50*time.Millisecond)
}

func TestConcurrentHits(t *testing.T) {
	db, _ := openTestDB(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 250; j++ {
				db.RecordHit("/python/exemplos")
			}
		}()
	}
	wg.Wait()
	require.NoError(t, db.Flush())

	total, err := db.TotalViews()
	require.NoError(t, err)
	assert.Equal(t, int64(2000), total)
}

func TestParseMigrationFileName(t *testing.T) {
	m, err := parseMigrationFileName("0001_main_page_views.sql")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Version)
	assert.Equal(t, "main", m.Type)
	assert.Equal(t, "page_views", m.Description)

	_, err = parseMigrationFileName("bad.sql")
	assert.Error(t, err)
	_, err = parseMigrationFileName("x_main_y.sql")
	assert.Error(t, err)
	_, err = parseMigrationFileName("0002_group_y.sql")
	assert.Error(t, err)
}

func TestMemoryViews(t *testing.T) {
	m := NewMemoryViews()
	m.RecordHit("/b")
	m.RecordHit("/a")
	m.RecordHit("/a")

	views, err := m.PageViews()
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "/a", views[0].Path)
	assert.Equal(t, int64(2), views[0].Views)

	total, err := m.TotalViews()
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	require.NoError(t, m.Close())
	m.RecordHit("/a")
	total, _ = m.TotalViews()
	assert.Equal(t, int64(3), total)
}

func TestNewViewStore(t *testing.T) {
	store, err := NewViewStore(config.DatabaseConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryViews{}, store)

	store, err = NewViewStore(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "v.sq3")})
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, &Database{}, store)
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.False(t, isRetryableError(assert.AnError))
	assert.True(t, isRetryableError(errors.New("database is locked")))
	assert.True(t, isRetryableError(errors.New("SQLITE_BUSY")))
}
