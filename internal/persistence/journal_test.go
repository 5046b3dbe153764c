package persistence

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"adaptive-core/pkg/db"
)

func journalDB(t *testing.T) *db.Database {
	t.Helper()
	database, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if _, err := database.DB.Exec(`CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return database
}

func countNotes(t *testing.T, database *db.Database) int {
	t.Helper()
	var n int
	if err := database.DB.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestJournalBuffersUntilBatchSize(t *testing.T) {
	database := journalDB(t)
	j := NewJournal(database.DB, 3, time.Hour)
	defer j.Close()

	j.WriteQuery(`INSERT INTO notes (body) VALUES (?)`, "a")
	j.WriteQuery(`INSERT INTO notes (body) VALUES (?)`, "b")
	if got := j.Pending(); got != 2 {
		t.Fatalf("Pending=%d want 2", got)
	}
	if got := countNotes(t, database); got != 0 {
		t.Fatalf("rows=%d before batch full, want 0", got)
	}

	// Third write reaches maxSize and triggers a flush.
	j.WriteQuery(`INSERT INTO notes (body) VALUES (?)`, "c")
	if got := j.Pending(); got != 0 {
		t.Fatalf("Pending=%d after flush, want 0", got)
	}
	if got := countNotes(t, database); got != 3 {
		t.Fatalf("rows=%d want 3", got)
	}

	m := j.GetMetrics()
	if m.TotalWrites != 3 || m.TotalBatches != 1 || m.TotalErrors != 0 {
		t.Fatalf("metrics=%+v want 3 writes, 1 batch, 0 errors", m)
	}
	if m.LastBatchSize != 3 {
		t.Fatalf("LastBatchSize=%d want 3", m.LastBatchSize)
	}
}

func TestJournalFlushOnClose(t *testing.T) {
	database := journalDB(t)
	j := NewJournal(database.DB, 100, time.Hour)
	j.WriteQuery(`INSERT INTO notes (body) VALUES (?)`, "pending")

	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := countNotes(t, database); got != 1 {
		t.Fatalf("rows=%d after close, want 1", got)
	}
}

func TestJournalRollsBackFailedBatch(t *testing.T) {
	database := journalDB(t)
	j := NewJournal(database.DB, 100, time.Hour)
	defer j.Close()

	j.WriteQuery(`INSERT INTO notes (body) VALUES (?)`, "good")
	j.WriteQuery(`INSERT INTO missing_table (body) VALUES (?)`, "bad")

	if err := j.Flush(); err == nil {
		t.Fatal("expected flush error")
	}
	// Whole batch rolls back, including the valid row.
	if got := countNotes(t, database); got != 0 {
		t.Fatalf("rows=%d after rollback, want 0", got)
	}
	if m := j.GetMetrics(); m.TotalErrors != 1 {
		t.Fatalf("TotalErrors=%d want 1", m.TotalErrors)
	}
}

func TestJournalMetricsUnderConcurrentFlushes(t *testing.T) {
	database := journalDB(t)
	j := NewJournal(database.DB, 5, 10*time.Millisecond)
	defer j.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			j.WriteQuery(`INSERT INTO notes (body) VALUES (?)`, fmt.Sprintf("n%d", i))
		}
	}()
	go func() {
		defer wg.Done()
		// Readers race the flushing writer; the batch fields must stay
		// internally consistent.
		for i := 0; i < 200; i++ {
			m := j.GetMetrics()
			if m.LastBatchSize < 0 || m.LastBatchSize > 5 {
				t.Errorf("LastBatchSize=%d outside batch bounds", m.LastBatchSize)
				return
			}
		}
	}()
	wg.Wait()

	if err := j.Flush(); err != nil {
		t.Fatalf("final flush: %v", err)
	}
	if got := countNotes(t, database); got != 200 {
		t.Fatalf("rows=%d want 200", got)
	}
	if m := j.GetMetrics(); m.TotalWrites != 200 {
		t.Fatalf("TotalWrites=%d want 200", m.TotalWrites)
	}
}

func TestJournalEmptyFlush(t *testing.T) {
	database := journalDB(t)
	j := NewJournal(database.DB, 10, time.Hour)
	defer j.Close()

	if err := j.Flush(); err != nil {
		t.Fatalf("empty flush: %v", err)
	}
	if m := j.GetMetrics(); m.TotalBatches != 0 {
		t.Fatalf("TotalBatches=%d want 0 for empty flush", m.TotalBatches)
	}
}
