package duckdb

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pedrodeoliamarante/shorts-blocker-app/internal/model"
)

// DefaultFlushQueueSize is the number of batches that can be queued for async flushing.
const DefaultFlushQueueSize = 16

// InsertDecisionBatch writes a batch of decisions in one transaction.
func (s *Store) InsertDecisionBatch(decisions []*model.Decision) error {
	if len(decisions) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert tx: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO decisions
		(ts, app, event, blocked, outcome, action, signals, screen_text, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range decisions {
		signals, err := json.Marshal(d.Signals)
		if err != nil {
			signals = []byte("{}")
		}
		if _, err := stmt.Exec(
			d.Timestamp, d.App, string(d.Event), d.Blocked, string(d.Outcome),
			string(d.Action), string(signals), d.ScreenText, d.Source,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert decision: %w", err)
		}
	}

	return tx.Commit()
}

// InsertBuffer batches decisions and flushes them to DuckDB asynchronously.
// Add() never blocks on DuckDB writes - decisions are sent to a flush goroutine.
type InsertBuffer struct {
	writer        model.DecisionWriter
	mu            sync.Mutex
	pending       []*model.Decision
	flushChan     chan []*model.Decision // async flush queue
	maxBatch      int
	flushInterval time.Duration
	done          chan struct{}
	wg            sync.WaitGroup

	// backpressureCount tracks inline flushes for throttled logging.
	backpressureCount atomic.Int64
	lastBPLog         atomic.Int64 // unix timestamp of last backpressure log
}

// InsertBufferConfig holds tunable parameters for the insert buffer.
type InsertBufferConfig struct {
	BatchSize      int
	FlushInterval  time.Duration
	FlushQueueSize int
}

// NewInsertBuffer creates a new insert buffer that flushes to the store.
// The flush goroutine processes batches asynchronously so Add() never blocks on IO.
func NewInsertBuffer(writer model.DecisionWriter, conf ...InsertBufferConfig) *InsertBuffer {
	batchSize := 256
	flushInterval := 200 * time.Millisecond
	flushQueueSize := DefaultFlushQueueSize
	if len(conf) > 0 {
		if conf[0].BatchSize > 0 {
			batchSize = conf[0].BatchSize
		}
		if conf[0].FlushInterval > 0 {
			flushInterval = conf[0].FlushInterval
		}
		if conf[0].FlushQueueSize > 0 {
			flushQueueSize = conf[0].FlushQueueSize
		}
	}

	b := &InsertBuffer{
		writer:        writer,
		pending:       make([]*model.Decision, 0, batchSize),
		flushChan:     make(chan []*model.Decision, flushQueueSize),
		maxBatch:      batchSize,
		flushInterval: flushInterval,
		done:          make(chan struct{}),
	}

	b.wg.Add(1)
	go b.flushWorker()

	b.wg.Add(1)
	go b.tickLoop()

	return b
}

// Add queues one decision for insertion. Called from the engine loop.
func (b *InsertBuffer) Add(decision *model.Decision) {
	if decision == nil {
		return
	}

	b.mu.Lock()
	b.pending = append(b.pending, decision)
	full := len(b.pending) >= b.maxBatch
	b.mu.Unlock()

	if full {
		b.drainPending()
	}
}

// Flush synchronously writes everything buffered so far. Used by tests
// and shutdown paths that need the journal current before reading it.
func (b *InsertBuffer) Flush() {
	b.mu.Lock()
	batch := b.pending
	b.pending = make([]*model.Decision, 0, b.maxBatch)
	b.mu.Unlock()

	// Drain queued batches first so ordering is preserved.
	for {
		select {
		case queued := <-b.flushChan:
			b.writeBatch(queued)
		default:
			b.writeBatch(batch)
			return
		}
	}
}

// Stop drains the buffer and shuts down the flush goroutines.
func (b *InsertBuffer) Stop() {
	select {
	case <-b.done:
		return
	default:
	}
	close(b.done)
	b.wg.Wait()

	// Final synchronous drain of anything added after the workers exited.
	b.mu.Lock()
	remaining := b.pending
	b.pending = nil
	b.mu.Unlock()
	if len(remaining) > 0 {
		if err := b.writer.InsertDecisionBatch(remaining); err != nil {
			log.Printf("duckdb: final flush failed, dropped %d decisions: %v", len(remaining), err)
		}
	}
}

// tickLoop periodically drains the pending buffer.
func (b *InsertBuffer) tickLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.drainPending()
		case <-b.done:
			b.drainPending() // final drain
			return
		}
	}
}

// flushWorker writes queued batches to the store.
func (b *InsertBuffer) flushWorker() {
	defer b.wg.Done()
	for {
		select {
		case batch := <-b.flushChan:
			b.writeBatch(batch)
		case <-b.done:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case batch := <-b.flushChan:
					b.writeBatch(batch)
				default:
					return
				}
			}
		}
	}
}

func (b *InsertBuffer) writeBatch(batch []*model.Decision) {
	if len(batch) == 0 {
		return
	}
	if err := b.writer.InsertDecisionBatch(batch); err != nil {
		log.Printf("duckdb: insert batch of %d decisions failed: %v", len(batch), err)
	}
}

// drainPending moves the pending slice to the flush queue. When the queue
// is full the batch is written inline, applying backpressure to the caller.
func (b *InsertBuffer) drainPending() {
	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.pending
	b.pending = make([]*model.Decision, 0, b.maxBatch)
	b.mu.Unlock()

	select {
	case b.flushChan <- batch:
	default:
		b.logBackpressure()
		b.writeBatch(batch)
	}
}

// logBackpressure emits a throttled warning (at most once per 10 seconds)
// when the flush channel is full and an inline flush is triggered.
func (b *InsertBuffer) logBackpressure() {
	count := b.backpressureCount.Add(1)
	now := time.Now().Unix()
	last := b.lastBPLog.Load()
	if now-last >= 10 && b.lastBPLog.CompareAndSwap(last, now) {
		log.Printf("duckdb: flush queue full, %d inline flushes so far", count)
	}
}
