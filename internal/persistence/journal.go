package persistence

import (
	"database/sql"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// WriteOp represents one journal write.
type WriteOp struct {
	Query string
	Args  []any
}

// Journal batches decision/trade journal writes so the hot tick path never
// waits on sqlite. Operations are buffered and flushed in one transaction
// per batch, either on size or on a timer.
type Journal struct {
	db          *sql.DB
	buffer      []WriteOp
	mu          sync.Mutex
	maxSize     int
	flushIntval time.Duration
	done        chan struct{}
	wg          sync.WaitGroup
	metrics     JournalMetrics
}

// JournalMetrics provides statistics about batch operations.
type JournalMetrics struct {
	TotalWrites   uint64    `json:"total_writes"`
	TotalBatches  uint64    `json:"total_batches"`
	TotalErrors   uint64    `json:"total_errors"`
	LastBatchSize int       `json:"last_batch_size"`
	LastFlushTime time.Time `json:"last_flush_time"`
}

// NewJournal creates a journal writer.
// maxSize: max operations before auto-flush
// interval: time-based flush interval
func NewJournal(db *sql.DB, maxSize int, interval time.Duration) *Journal {
	if maxSize <= 0 {
		maxSize = 50
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	j := &Journal{
		db:          db,
		buffer:      make([]WriteOp, 0, maxSize),
		maxSize:     maxSize,
		flushIntval: interval,
		done:        make(chan struct{}),
	}

	j.wg.Add(1)
	go j.backgroundFlush()

	return j
}

// Write adds a write operation to the batch.
func (j *Journal) Write(op WriteOp) {
	j.mu.Lock()
	j.buffer = append(j.buffer, op)
	shouldFlush := len(j.buffer) >= j.maxSize
	j.mu.Unlock()

	if shouldFlush {
		j.Flush()
	}
}

// WriteQuery is a convenience method for simple queries.
func (j *Journal) WriteQuery(query string, args ...any) {
	j.Write(WriteOp{Query: query, Args: args})
}

// Flush immediately writes all buffered operations to the database.
func (j *Journal) Flush() error {
	j.mu.Lock()
	if len(j.buffer) == 0 {
		j.mu.Unlock()
		return nil
	}

	ops := j.buffer
	j.buffer = make([]WriteOp, 0, j.maxSize)
	j.mu.Unlock()

	return j.executeBatch(ops)
}

// executeBatch runs a batch of operations in a transaction.
func (j *Journal) executeBatch(ops []WriteOp) error {
	if len(ops) == 0 {
		return nil
	}

	atomic.AddUint64(&j.metrics.TotalWrites, uint64(len(ops)))
	atomic.AddUint64(&j.metrics.TotalBatches, 1)
	j.mu.Lock()
	j.metrics.LastBatchSize = len(ops)
	j.metrics.LastFlushTime = time.Now()
	j.mu.Unlock()

	tx, err := j.db.Begin()
	if err != nil {
		atomic.AddUint64(&j.metrics.TotalErrors, 1)
		log.Printf("❌ Journal: failed to begin transaction: %v", err)
		return err
	}

	for _, op := range ops {
		if _, err := tx.Exec(op.Query, op.Args...); err != nil {
			tx.Rollback()
			atomic.AddUint64(&j.metrics.TotalErrors, 1)
			log.Printf("❌ Journal: query failed, rolling back: %v", err)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		atomic.AddUint64(&j.metrics.TotalErrors, 1)
		log.Printf("❌ Journal: commit failed: %v", err)
		return err
	}

	return nil
}

// backgroundFlush periodically flushes the buffer.
func (j *Journal) backgroundFlush() {
	defer j.wg.Done()
	ticker := time.NewTicker(j.flushIntval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Flush(); err != nil {
				log.Printf("⚠️ Journal: background flush error: %v", err)
			}
		case <-j.done:
			// Final flush before shutdown
			if err := j.Flush(); err != nil {
				log.Printf("⚠️ Journal: final flush error: %v", err)
			}
			return
		}
	}
}

// Pending returns the number of pending operations.
func (j *Journal) Pending() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.buffer)
}

// GetMetrics returns the current journal metrics. The batch fields are read
// under the buffer mutex; executeBatch writes them under the same lock.
func (j *Journal) GetMetrics() JournalMetrics {
	j.mu.Lock()
	lastSize := j.metrics.LastBatchSize
	lastFlush := j.metrics.LastFlushTime
	j.mu.Unlock()

	return JournalMetrics{
		TotalWrites:   atomic.LoadUint64(&j.metrics.TotalWrites),
		TotalBatches:  atomic.LoadUint64(&j.metrics.TotalBatches),
		TotalErrors:   atomic.LoadUint64(&j.metrics.TotalErrors),
		LastBatchSize: lastSize,
		LastFlushTime: lastFlush,
	}
}

// Close gracefully shuts down the journal writer.
func (j *Journal) Close() error {
	close(j.done)
	j.wg.Wait()
	return nil
}
