package database

import (
	"database/sql"
	"log"
	"math/rand"
	"strings"
	"time"
)

const (
	maxRetries = 100
	baseDelay  = 10 * time.Millisecond
	maxDelay   = 25 * time.Millisecond
)

// isRetryableError checks if the error is a retryable SQLite error
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked") ||
		strings.Contains(errStr, "busy")
}

// backoff sleeps with linear backoff plus up to 50% jitter
func backoff(attempt int) {
	delay := time.Duration(attempt+1) * baseDelay
	if delay > maxDelay {
		delay = maxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay) / 2))
	time.Sleep(delay + jitter)
}

// retryableExec executes a SQL statement with retry logic for lock conflicts
func retryableExec(db *sql.DB, query string, args ...interface{}) (sql.Result, error) {
	var result sql.Result
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		result, err = db.Exec(query, args...)
		if !isRetryableError(err) {
			return result, err
		}
		log.Printf("[DB]: SQLite retry attempt %d/%d for query: %s... Error: %v",
			attempt+1, maxRetries, truncateString(query, 50), err)
		backoff(attempt)
	}
	return result, err
}

// retryableQuery executes a query that returns multiple rows with retry logic
func retryableQuery(db *sql.DB, query string, args ...interface{}) (*sql.Rows, error) {
	var rows *sql.Rows
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		rows, err = db.Query(query, args...)
		if !isRetryableError(err) {
			return rows, err
		}
		log.Printf("[DB]: SQLite retry attempt %d/%d for query: %s... Error: %v",
			attempt+1, maxRetries, truncateString(query, 50), err)
		backoff(attempt)
	}
	return rows, err
}

// retryableTransactionExec runs txFunc in a transaction, retrying the
// whole transaction on lock conflicts
func retryableTransactionExec(db *sql.DB, txFunc func(*sql.Tx) error) error {
	return retryableTransactionCommit(db, txFunc, (*sql.Tx).Commit)
}

// retryableTransactionCommit is retryableTransactionExec with the commit
// step supplied by the caller
func retryableTransactionCommit(db *sql.DB, txFunc func(*sql.Tx) error, commit func(*sql.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		var tx *sql.Tx
		tx, err = db.Begin()
		if err == nil {
			if err = txFunc(tx); err != nil {
				tx.Rollback()
			} else {
				err = commit(tx)
			}
		}
		if !isRetryableError(err) {
			return err
		}
		log.Printf("[DB]: SQLite retry attempt %d/%d for transaction: %v", attempt+1, maxRetries, err)
		backoff(attempt)
	}
	return err
}

// truncateString truncates a string to the specified length
func truncateString(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length]
}
