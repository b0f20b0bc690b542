package database

import (
	"database/sql"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/go-while/go-paradigmas/internal/models"
)

// RecordHit queues one view of path. It never blocks: when the queue is
// full the hit is counted directly in the pending batch.
func (db *Database) RecordHit(path string) {
	if db.IsDBshutdown() {
		return
	}
	select {
	case db.hits <- path:
	default:
		db.addPending(path, time.Now().UTC())
	}
}

// Flush writes every pending hit to the database
func (db *Database) Flush() error {
	reply := make(chan error, 1)
	select {
	case db.flushReq <- reply:
	case <-db.StopChan:
		return ErrClosed
	}
	return <-reply
}

func (db *Database) scheduledFlush() {
	if err := db.Flush(); err != nil && err != ErrClosed {
		log.Printf("[DB]: Scheduled flush failed: %v", err)
	}
}

// hitWorker aggregates queued hits and writes them in batches
func (db *Database) hitWorker() {
	defer db.WG.Done()
	for {
		select {
		case path := <-db.hits:
			if db.addPending(path, time.Now().UTC()) >= db.dbconfig.BatchSize {
				if err := db.writePending(); err != nil {
					log.Printf("[DB]: Batch flush failed: %v", err)
				}
			}
		case reply := <-db.flushReq:
			db.drainQueue()
			reply <- db.writePending()
		case <-db.StopChan:
			db.drainQueue()
			if err := db.writePending(); err != nil {
				log.Printf("[DB]: Final flush failed: %v", err)
			}
			return
		}
	}
}

// drainQueue moves every queued hit into the pending batch
func (db *Database) drainQueue() {
	for {
		select {
		case path := <-db.hits:
			db.addPending(path, time.Now().UTC())
		default:
			return
		}
	}
}

// addPending counts one hit and returns the number of pending paths
func (db *Database) addPending(path string, at time.Time) int {
	db.pendingMux.Lock()
	defer db.pendingMux.Unlock()
	pv, ok := db.pending[path]
	if !ok {
		pv = &models.PageView{Path: path}
		db.pending[path] = pv
	}
	pv.Views++
	pv.LastSeen = at
	return len(db.pending)
}

// writePending upserts the pending batch. The batch stays visible as
// inflight until it is committed, on failure it is kept for the next
// attempt.
func (db *Database) writePending() error {
	db.pendingMux.Lock()
	if len(db.pending) == 0 {
		db.pendingMux.Unlock()
		return nil
	}
	batch := db.pending
	db.inflight = batch
	db.pending = make(map[string]*models.PageView)
	db.pendingMux.Unlock()

	start := time.Now()
	err := retryableTransactionCommit(db.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO page_views (path, views, last_seen) VALUES (?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET views = views + excluded.views, last_seen = excluded.last_seen`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, pv := range batch {
			if _, err := stmt.Exec(pv.Path, pv.Views, pv.LastSeen); err != nil {
				return fmt.Errorf("failed to upsert %s: %w", pv.Path, err)
			}
		}
		return nil
	}, db.commitInflight)
	if err != nil {
		db.pendingMux.Lock()
		mergeViews(db.pending, batch)
		db.inflight = nil
		db.pendingMux.Unlock()
		return fmt.Errorf("failed to write %d page views: %w", len(batch), err)
	}
	log.Printf("[DB]: Flushed %d page view counters in %s", len(batch), time.Since(start))
	return nil
}

// commitInflight commits tx and drops the inflight batch with no reader
// in between
func (db *Database) commitInflight(tx *sql.Tx) error {
	db.viewsMux.Lock()
	defer db.viewsMux.Unlock()
	if err := tx.Commit(); err != nil {
		return err
	}
	db.pendingMux.Lock()
	db.inflight = nil
	db.pendingMux.Unlock()
	return nil
}

// mergeViews adds the counters of src to dst, copying paths dst lacks
func mergeViews(dst, src map[string]*models.PageView) {
	for path, p := range src {
		if pv, ok := dst[path]; ok {
			pv.Views += p.Views
			if p.LastSeen.After(pv.LastSeen) {
				pv.LastSeen = p.LastSeen
			}
			continue
		}
		cp := *p
		dst[path] = &cp
	}
}

// sortPageViews orders by views descending, then path
func sortPageViews(m map[string]*models.PageView) []*models.PageView {
	out := make([]*models.PageView, 0, len(m))
	for _, pv := range m {
		out = append(out, pv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Views != out[j].Views {
			return out[i].Views > out[j].Views
		}
		return out[i].Path < out[j].Path
	})
	return out
}
